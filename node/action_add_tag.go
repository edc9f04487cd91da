package node

import (
	"github.com/kdocs/flowd/docs"
)

type addTagAction struct {
	baseExecutor
	docs docs.Repository
}

var _ Executor = new(addTagAction)

func NewAddTagAction(repo docs.Repository) *addTagAction {
	return &addTagAction{
		baseExecutor: newBaseExecutor(map[string]FieldRule{
			"tag_ids":   {Type: "array"},
			"tag_names": {Type: "array", Description: "resolved to ids when tag_ids is empty"},
		}),
		docs: repo,
	}
}

func (a *addTagAction) Execute(bag *ContextBag, config map[string]any) Result {
	if bag.DocumentId() == "" {
		return Failed("no document associated with execution")
	}
	tagIds := cfgStringSlice(config, "tag_ids")
	if len(tagIds) == 0 {
		names := cfgStringSlice(config, "tag_names")
		if len(names) == 0 {
			return Failed("no tags configured")
		}
		resolved, err := a.docs.ResolveTagIds(names)
		if err != nil {
			return Failed(err.Error())
		}
		tagIds = resolved
	}
	if len(tagIds) == 0 {
		return Failed("no tags configured")
	}
	for _, tagId := range tagIds {
		if err := a.docs.AddTag(bag.DocumentId(), tagId); err != nil {
			return Failed(err.Error())
		}
	}
	return Success(map[string]any{
		"tags_added": tagIds,
	})
}
