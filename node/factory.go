package node

import "sort"

// Node type keys. The factory is the single registration point: adding a
// node type never touches the engine.
const (
	TYPE_TRIGGER_MANUAL             = "trigger_manual"
	TYPE_TRIGGER_SCAN               = "trigger_scan"
	TYPE_TRIGGER_UPLOAD             = "trigger_upload"
	TYPE_TRIGGER_DOCUMENT_ADDED     = "trigger_document_added"
	TYPE_TRIGGER_TAG_ADDED          = "trigger_tag_added"
	TYPE_TRIGGER_VALIDATION_CHANGED = "trigger_validation_changed"

	TYPE_PROCESS_OCR        = "process_ocr"
	TYPE_PROCESS_AI_EXTRACT = "process_ai_extract"
	TYPE_PROCESS_CLASSIFY   = "process_classify"

	TYPE_CONDITION_AMOUNT        = "condition_amount"
	TYPE_CONDITION_CATEGORY      = "condition_category"
	TYPE_CONDITION_TAG           = "condition_tag"
	TYPE_CONDITION_CORRESPONDENT = "condition_correspondent"
	TYPE_CONDITION_FIELD         = "condition_field"
	TYPE_CONDITION_SCRIPT        = "condition_script"

	TYPE_ACTION_ASSIGN_USER     = "action_assign_user"
	TYPE_ACTION_ASSIGN_GROUP    = "action_assign_group"
	TYPE_ACTION_ADD_TAG         = "action_add_tag"
	TYPE_ACTION_SET_VALIDATION  = "action_set_validation"
	TYPE_ACTION_SEND_EMAIL      = "action_send_email"
	TYPE_ACTION_WEBHOOK         = "action_webhook"
	TYPE_ACTION_CREATE_APPROVAL = "action_create_approval"

	TYPE_WAIT_APPROVAL = "wait_approval"
	TYPE_TIMER_DELAY   = "timer_delay"
)

type Constructor func(deps Deps) Executor

// NodeInfo describes one registered node type for the designer frontend.
type NodeInfo struct {
	Type         string               `json:"type"`
	Outputs      []string             `json:"outputs"`
	ConfigSchema map[string]FieldRule `json:"configSchema"`
}

type Factory struct {
	deps     Deps
	registry map[string]Constructor
}

func NewFactory(deps Deps) *Factory {
	f := &Factory{
		deps:     deps,
		registry: make(map[string]Constructor),
	}
	f.registerDefaults()
	return f
}

func (f *Factory) Register(nodeType string, c Constructor) {
	f.registry[nodeType] = c
}

// Create returns nil for an unregistered type; the engine treats that as a
// failed step.
func (f *Factory) Create(nodeType string) Executor {
	c, ok := f.registry[nodeType]
	if !ok {
		return nil
	}
	return c(f.deps)
}

func (f *Factory) IsSupported(nodeType string) bool {
	_, ok := f.registry[nodeType]
	return ok
}

func (f *Factory) Types() []string {
	types := make([]string, 0, len(f.registry))
	for t := range f.registry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func (f *Factory) Catalog() []NodeInfo {
	infos := make([]NodeInfo, 0, len(f.registry))
	for _, t := range f.Types() {
		ex := f.Create(t)
		infos = append(infos, NodeInfo{
			Type:         t,
			Outputs:      ex.Outputs(),
			ConfigSchema: ex.ConfigSchema(),
		})
	}
	return infos
}

func (f *Factory) registerDefaults() {
	for _, t := range []string{
		TYPE_TRIGGER_MANUAL,
		TYPE_TRIGGER_SCAN,
		TYPE_TRIGGER_UPLOAD,
		TYPE_TRIGGER_DOCUMENT_ADDED,
		TYPE_TRIGGER_TAG_ADDED,
		TYPE_TRIGGER_VALIDATION_CHANGED,
	} {
		triggerType := t
		f.Register(triggerType, func(deps Deps) Executor {
			return NewTriggerExecutor(triggerType)
		})
	}

	f.Register(TYPE_PROCESS_OCR, func(deps Deps) Executor { return NewOcrProcessor(deps.Docs) })
	f.Register(TYPE_PROCESS_AI_EXTRACT, func(deps Deps) Executor { return NewAiExtractProcessor(deps.Docs) })
	f.Register(TYPE_PROCESS_CLASSIFY, func(deps Deps) Executor { return NewClassifyProcessor(deps.Docs) })

	f.Register(TYPE_CONDITION_AMOUNT, func(deps Deps) Executor { return NewAmountCondition(deps.Docs) })
	f.Register(TYPE_CONDITION_CATEGORY, func(deps Deps) Executor { return NewCategoryCondition(deps.Docs) })
	f.Register(TYPE_CONDITION_TAG, func(deps Deps) Executor { return NewTagCondition(deps.Docs) })
	f.Register(TYPE_CONDITION_CORRESPONDENT, func(deps Deps) Executor { return NewCorrespondentCondition(deps.Docs) })
	f.Register(TYPE_CONDITION_FIELD, func(deps Deps) Executor { return NewFieldCondition(deps.Docs) })
	f.Register(TYPE_CONDITION_SCRIPT, func(deps Deps) Executor { return NewScriptCondition() })

	f.Register(TYPE_ACTION_ASSIGN_USER, func(deps Deps) Executor { return NewAssignUserAction(deps.Docs) })
	f.Register(TYPE_ACTION_ASSIGN_GROUP, func(deps Deps) Executor { return NewAssignGroupAction(deps.Docs) })
	f.Register(TYPE_ACTION_ADD_TAG, func(deps Deps) Executor { return NewAddTagAction(deps.Docs) })
	f.Register(TYPE_ACTION_SET_VALIDATION, func(deps Deps) Executor { return NewSetValidationAction(deps.Docs) })
	f.Register(TYPE_ACTION_SEND_EMAIL, func(deps Deps) Executor { return NewSendEmailAction(deps.Mailer) })
	f.Register(TYPE_ACTION_WEBHOOK, func(deps Deps) Executor { return NewWebhookAction(deps.HttpClient) })
	f.Register(TYPE_ACTION_CREATE_APPROVAL, func(deps Deps) Executor { return NewCreateApprovalAction(deps.Docs, deps.BaseUrl) })

	f.Register(TYPE_WAIT_APPROVAL, func(deps Deps) Executor { return NewApprovalWait(deps.Docs, deps.Timers) })
	f.Register(TYPE_TIMER_DELAY, func(deps Deps) Executor { return NewDelayTimer(deps.Timers) })
}
