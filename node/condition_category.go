package node

import (
	"strings"

	"github.com/kdocs/flowd/docs"
)

// categoryCondition matches the document type by id, name, list membership,
// "any" (typed at all) or "none" (untyped).
type categoryCondition struct {
	baseExecutor
	docs docs.Repository
}

var _ Executor = new(categoryCondition)

func NewCategoryCondition(repo docs.Repository) *categoryCondition {
	return &categoryCondition{
		baseExecutor: newBaseExecutor(map[string]FieldRule{
			"match_mode": {
				Type:    "string",
				Enum:    []string{"exact", "name", "list", "any", "none"},
				Default: "exact",
			},
			"document_type_id":   {Type: "string"},
			"document_type_ids":  {Type: "array"},
			"document_type_name": {Type: "string"},
		}),
		docs: repo,
	}
}

func (c *categoryCondition) Outputs() []string {
	return conditionOutputs()
}

func (c *categoryCondition) Execute(bag *ContextBag, config map[string]any) Result {
	if bag.DocumentId() == "" {
		return Failed("no document associated with execution")
	}
	doc, err := c.docs.GetDocument(bag.DocumentId())
	if err != nil {
		return Failed("document not found")
	}

	matchMode := cfgString(config, "match_mode", "exact")
	matches := false
	switch matchMode {
	case "none":
		matches = doc.DocumentTypeId == ""
	case "any":
		matches = doc.DocumentTypeId != ""
	case "name":
		expected := cfgString(config, "document_type_name", "")
		matches = expected != "" && strings.EqualFold(doc.DocumentTypeName, expected)
	case "list":
		for _, id := range cfgStringSlice(config, "document_type_ids") {
			if doc.DocumentTypeId != "" && doc.DocumentTypeId == id {
				matches = true
				break
			}
		}
	default: // exact
		expected := cfgString(config, "document_type_id", "")
		matches = expected != "" && doc.DocumentTypeId == expected
	}

	return SuccessOutput(map[string]any{
		"matches":            matches,
		"document_type_id":   doc.DocumentTypeId,
		"document_type_name": doc.DocumentTypeName,
		"match_mode":         matchMode,
	}, boolOutput(matches))
}
