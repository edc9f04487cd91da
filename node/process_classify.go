package node

import (
	"github.com/kdocs/flowd/docs"
)

// classifyProcessor applies the suggestions produced by an earlier ai_extract
// node to the document. Known suggestion keys map onto document fields, tag
// suggestions are attached as tags.
type classifyProcessor struct {
	baseExecutor
	docs docs.Repository
}

var _ Executor = new(classifyProcessor)

func NewClassifyProcessor(repo docs.Repository) *classifyProcessor {
	return &classifyProcessor{
		baseExecutor: newBaseExecutor(map[string]FieldRule{
			"apply_fields": {Type: "array", Description: "restrict application to these suggestion keys"},
		}),
		docs: repo,
	}
}

func (p *classifyProcessor) Execute(bag *ContextBag, config map[string]any) Result {
	if bag.DocumentId() == "" {
		return Failed("no document associated with execution")
	}
	raw := bag.Get("ai_suggestions", nil)
	suggestions, ok := raw.(map[string]any)
	if !ok || len(suggestions) == 0 {
		return Failed("no AI suggestions available")
	}
	allowed := cfgStringSlice(config, "apply_fields")
	allowedSet := make(map[string]bool, len(allowed))
	for _, name := range allowed {
		allowedSet[name] = true
	}

	updates := make(map[string]any)
	applied := make([]string, 0, len(suggestions))
	var tagIds []string
	for key, value := range suggestions {
		if len(allowedSet) > 0 && !allowedSet[key] {
			continue
		}
		switch key {
		case "correspondent_id", "document_type_id", "title", "amount":
			updates[key] = value
		case "document_date":
			updates["doc_date"] = value
		case "tags":
			switch list := value.(type) {
			case []any:
				for _, item := range list {
					tagIds = append(tagIds, asString(item))
				}
			case []string:
				tagIds = append(tagIds, list...)
			}
		default:
			continue
		}
		applied = append(applied, key)
	}

	if len(updates) > 0 {
		if err := p.docs.UpdateFields(bag.DocumentId(), updates); err != nil {
			return Failed(err.Error())
		}
	}
	for _, tagId := range tagIds {
		if err := p.docs.AddTag(bag.DocumentId(), tagId); err != nil {
			return Failed(err.Error())
		}
	}
	return Success(map[string]any{
		"applied_fields": applied,
		"tags_added":     len(tagIds),
	})
}
