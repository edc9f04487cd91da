package node

import (
	"github.com/kdocs/flowd/docs"
)

// aiExtractProcessor asks the classifier for field suggestions and stashes
// them in the execution context under ai_suggestions for a downstream
// classify node to apply.
type aiExtractProcessor struct {
	baseExecutor
	docs docs.Repository
}

var _ Executor = new(aiExtractProcessor)

func NewAiExtractProcessor(repo docs.Repository) *aiExtractProcessor {
	return &aiExtractProcessor{
		baseExecutor: newBaseExecutor(map[string]FieldRule{
			"fields": {Type: "array", Description: "restrict extraction to these field names"},
		}),
		docs: repo,
	}
}

func (p *aiExtractProcessor) Execute(bag *ContextBag, config map[string]any) Result {
	if bag.DocumentId() == "" {
		return Failed("no document associated with execution")
	}
	suggestions, err := p.docs.Classify(bag.DocumentId())
	if err != nil {
		return Failed(err.Error())
	}
	if fields := cfgStringSlice(config, "fields"); len(fields) > 0 {
		filtered := make(map[string]any, len(fields))
		for _, name := range fields {
			if value, ok := suggestions[name]; ok {
				filtered[name] = value
			}
		}
		suggestions = filtered
	}
	bag.Set("ai_suggestions", suggestions)
	return Success(map[string]any{
		"ai_suggestions": suggestions,
		"field_count":    len(suggestions),
	})
}
