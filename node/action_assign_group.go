package node

import (
	"github.com/kdocs/flowd/docs"
)

// assignGroupAction routes a document to a group of users, addressed by id
// or by the stable group code configured in the designer.
type assignGroupAction struct {
	baseExecutor
	docs docs.Repository
}

var _ Executor = new(assignGroupAction)

func NewAssignGroupAction(repo docs.Repository) *assignGroupAction {
	return &assignGroupAction{
		baseExecutor: newBaseExecutor(map[string]FieldRule{
			"group_id":        {Type: "string"},
			"group_code":      {Type: "string"},
			"assignment_type": {Type: "string", Enum: []string{"owner", "reviewer", "approver", "processor"}, Default: "processor"},
			"note":            {Type: "string"},
		}),
		docs: repo,
	}
}

func (a *assignGroupAction) Execute(bag *ContextBag, config map[string]any) Result {
	if bag.DocumentId() == "" {
		return Failed("no document associated with execution")
	}
	groupId := cfgString(config, "group_id", "")
	groupCode := cfgString(config, "group_code", "")
	if groupId == "" && groupCode == "" {
		return Failed("group_id or group_code not configured")
	}

	var group *docs.Group
	var err error
	if groupId != "" {
		group, err = a.docs.GetGroup(groupId)
	} else {
		group, err = a.docs.GetGroupByCode(groupCode)
	}
	if err != nil {
		return Failed(err.Error())
	}
	if group == nil {
		return Failed("group not found")
	}

	if err := a.docs.AssignGroup(bag.DocumentId(), group.Id); err != nil {
		return Failed(err.Error())
	}
	bag.Set("assigned_group_id", group.Id)
	return Success(map[string]any{
		"group_id":        group.Id,
		"group_name":      group.Name,
		"assignment_type": cfgString(config, "assignment_type", "processor"),
	})
}
