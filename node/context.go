package node

// ContextBag is the mutable scratchpad nodes use to pass data to later nodes
// of the same execution. The identity fields are fixed at construction; only
// the data map mutates. The engine rebuilds the bag from the persisted
// execution row before every step and flushes it back after, so a bag never
// outlives a single step.
type ContextBag struct {
	executionId string
	documentId  string
	workflowId  string
	data        map[string]any
}

func NewContextBag(executionId string, documentId string, workflowId string, data map[string]any) *ContextBag {
	if data == nil {
		data = make(map[string]any)
	}
	return &ContextBag{
		executionId: executionId,
		documentId:  documentId,
		workflowId:  workflowId,
		data:        data,
	}
}

func (c *ContextBag) ExecutionId() string {
	return c.executionId
}

// DocumentId is empty for executions not scoped to a document.
func (c *ContextBag) DocumentId() string {
	return c.documentId
}

func (c *ContextBag) WorkflowId() string {
	return c.workflowId
}

func (c *ContextBag) Get(key string, def any) any {
	if v, ok := c.data[key]; ok {
		return v
	}
	return def
}

func (c *ContextBag) Set(key string, value any) {
	c.data[key] = value
}

func (c *ContextBag) Has(key string) bool {
	_, ok := c.data[key]
	return ok
}

// Merge shallow-merges m into the data map, later keys win.
func (c *ContextBag) Merge(m map[string]any) {
	for k, v := range m {
		c.data[k] = v
	}
}

// Data returns a copy of the data map suitable for persisting or logging.
func (c *ContextBag) Data() map[string]any {
	out := make(map[string]any, len(c.data))
	for k, v := range c.data {
		out[k] = v
	}
	return out
}
