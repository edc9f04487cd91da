package node

import (
	"github.com/kdocs/flowd/docs"
)

type assignUserAction struct {
	baseExecutor
	docs docs.Repository
}

var _ Executor = new(assignUserAction)

func NewAssignUserAction(repo docs.Repository) *assignUserAction {
	return &assignUserAction{
		baseExecutor: newBaseExecutor(map[string]FieldRule{
			"user_id": {Type: "string", Required: true},
		}),
		docs: repo,
	}
}

func (a *assignUserAction) Execute(bag *ContextBag, config map[string]any) Result {
	if bag.DocumentId() == "" {
		return Failed("no document associated with execution")
	}
	userId := cfgString(config, "user_id", "")
	if userId == "" {
		return Failed("user_id not configured")
	}
	if err := a.docs.AssignUser(bag.DocumentId(), userId); err != nil {
		return Failed(err.Error())
	}
	bag.Set("assigned_user_id", userId)
	return Success(map[string]any{
		"assigned_user_id": userId,
	})
}
