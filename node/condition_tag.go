package node

import (
	"sort"

	"github.com/kdocs/flowd/docs"
)

// tagCondition matches the document tag set against expected tags. Expected
// tags may come as ids or as names, names are resolved to ids first.
type tagCondition struct {
	baseExecutor
	docs docs.Repository
}

var _ Executor = new(tagCondition)

func NewTagCondition(repo docs.Repository) *tagCondition {
	return &tagCondition{
		baseExecutor: newBaseExecutor(map[string]FieldRule{
			"match_mode": {
				Type:    "string",
				Enum:    []string{"any", "all", "none", "exact", "has_any", "has_none"},
				Default: "any",
			},
			"tag_ids":   {Type: "array"},
			"tag_names": {Type: "array", Description: "alternative to tag_ids, resolved by name"},
		}),
		docs: repo,
	}
}

func (c *tagCondition) Outputs() []string {
	return conditionOutputs()
}

func (c *tagCondition) Execute(bag *ContextBag, config map[string]any) Result {
	if bag.DocumentId() == "" {
		return Failed("no document associated with execution")
	}
	documentTags, err := c.docs.GetTags(bag.DocumentId())
	if err != nil {
		return Failed("could not load document tags: " + err.Error())
	}
	documentTagIds := make([]string, 0, len(documentTags))
	documentTagNames := make([]string, 0, len(documentTags))
	for _, t := range documentTags {
		documentTagIds = append(documentTagIds, t.Id)
		documentTagNames = append(documentTagNames, t.Name)
	}

	matchMode := cfgString(config, "match_mode", "any")
	tagIds := cfgStringSlice(config, "tag_ids")
	if len(tagIds) == 0 {
		if names := cfgStringSlice(config, "tag_names"); len(names) > 0 {
			tagIds, err = c.docs.ResolveTagIds(names)
			if err != nil {
				return Failed("could not resolve tag names: " + err.Error())
			}
		}
	}

	matches := false
	switch matchMode {
	case "any":
		matches = len(intersect(documentTagIds, tagIds)) > 0
	case "all":
		matches = len(tagIds) > 0 && len(intersect(documentTagIds, tagIds)) == len(tagIds)
	case "none":
		matches = len(intersect(documentTagIds, tagIds)) == 0
	case "exact":
		matches = sameSet(documentTagIds, tagIds)
	case "has_any":
		matches = len(documentTagIds) > 0
	case "has_none":
		matches = len(documentTagIds) == 0
	}

	return SuccessOutput(map[string]any{
		"matches":            matches,
		"document_tag_ids":   documentTagIds,
		"document_tag_names": documentTagNames,
		"expected_tag_ids":   tagIds,
		"match_mode":         matchMode,
	}, boolOutput(matches))
}

func intersect(a, b []string) []string {
	set := make(map[string]bool, len(a))
	for _, v := range a {
		set[v] = true
	}
	var out []string
	for _, v := range b {
		if set[v] {
			out = append(out, v)
		}
	}
	return out
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
