package node

// triggerExecutor covers every trigger type. Event filtering happens before
// an execution is started, so by the time a trigger node runs it always
// succeeds; it only records which event kind fired.
type triggerExecutor struct {
	baseExecutor
	triggerType string
}

var _ Executor = new(triggerExecutor)

func NewTriggerExecutor(triggerType string) *triggerExecutor {
	return &triggerExecutor{
		baseExecutor: newBaseExecutor(nil),
		triggerType:  triggerType,
	}
}

func (t *triggerExecutor) Execute(bag *ContextBag, config map[string]any) Result {
	return Success(map[string]any{
		"trigger_type": t.triggerType,
		"document_id":  bag.DocumentId(),
	})
}
