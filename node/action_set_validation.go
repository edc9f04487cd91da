package node

import (
	"github.com/kdocs/flowd/docs"
)

type setValidationAction struct {
	baseExecutor
	docs docs.Repository
}

var _ Executor = new(setValidationAction)

func NewSetValidationAction(repo docs.Repository) *setValidationAction {
	return &setValidationAction{
		baseExecutor: newBaseExecutor(map[string]FieldRule{
			"status": {
				Type:     "string",
				Required: true,
				Enum:     []string{"pending", "valid", "invalid", "needs_review"},
			},
		}),
		docs: repo,
	}
}

func (a *setValidationAction) Execute(bag *ContextBag, config map[string]any) Result {
	if bag.DocumentId() == "" {
		return Failed("no document associated with execution")
	}
	status := cfgString(config, "status", "")
	if status == "" {
		return Failed("status not configured")
	}
	if err := a.docs.SetValidationStatus(bag.DocumentId(), status); err != nil {
		return Failed(err.Error())
	}
	bag.Set("validation_status", status)
	return Success(map[string]any{
		"validation_status": status,
	})
}
