package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kdocs/flowd/docs"
	"github.com/kdocs/flowd/metadata"
	"github.com/kdocs/flowd/model"
	"github.com/kdocs/flowd/node"
	"github.com/kdocs/flowd/persistence"
	"github.com/kdocs/flowd/persistence/inmem"
	"github.com/stretchr/testify/require"
)

type harness struct {
	storage persistence.Storage
	repo    *docs.InMemoryRepository
	factory *node.Factory
	meta    *metadata.Service
	engine  *Engine
}

func newHarness(t *testing.T, maxSteps int) *harness {
	t.Helper()
	storage := inmem.NewStorage()
	repo := docs.NewInMemoryRepository()
	factory := node.NewFactory(node.Deps{
		Docs:   repo,
		Mailer: docs.NewLogMailer(),
		Timers: &testScheduler{storage: storage},
	})
	meta := metadata.NewService(storage, factory)
	return &harness{
		storage: storage,
		repo:    repo,
		factory: factory,
		meta:    meta,
		engine:  NewEngine(meta, storage, storage, factory, maxSteps),
	}
}

type testScheduler struct {
	storage persistence.TimerStorage
}

func (s *testScheduler) Schedule(executionId string, nodeId string, timerType string, fireAt time.Time) (string, error) {
	timer := model.Timer{
		Id:          uuid.NewString(),
		ExecutionId: executionId,
		NodeId:      nodeId,
		TimerType:   timerType,
		FireAt:      fireAt,
		Status:      model.TIMER_WAITING,
	}
	return timer.Id, s.storage.SaveTimer(timer)
}

type panicExecutor struct{}

func (panicExecutor) Execute(bag *node.ContextBag, config map[string]any) node.Result {
	panic("boom")
}
func (panicExecutor) ValidateConfig(config map[string]any) []error { return nil }
func (panicExecutor) Outputs() []string                            { return []string{node.OUTPUT_DEFAULT} }
func (panicExecutor) ConfigSchema() map[string]node.FieldRule      { return nil }

func nd(id string, nodeType string, entry bool, config map[string]any) model.WorkflowNode {
	return model.WorkflowNode{Id: id, NodeType: nodeType, IsEntryPoint: entry, Config: config}
}

func conn(from string, to string, output string) model.WorkflowConnection {
	return model.WorkflowConnection{Id: from + "->" + to + ":" + output, FromNodeId: from, ToNodeId: to, OutputName: output}
}

func testGraph(nodes []model.WorkflowNode, connections []model.WorkflowConnection) model.WorkflowGraph {
	return model.WorkflowGraph{
		Definition:  model.WorkflowDefinition{Id: "wf-1", Name: "invoice flow", Enabled: true},
		Nodes:       nodes,
		Connections: connections,
	}
}

func seedDocument(h *harness, amount float64) {
	h.repo.PutDocument(&docs.Document{Id: "doc-1", Title: "invoice", Amount: &amount})
}

func TestEngine(t *testing.T) {
	for scenario, fn := range map[string]func(t *testing.T, h *harness){
		"completes a linear workflow":                 testLinearCompletion,
		"routes on condition outputs":                 testConditionRouting,
		"falls back to the default edge":              testDefaultEdgeFallback,
		"fails the execution when a node fails":       testNodeFailure,
		"parks on a delay timer":                      testDelayParksExecution,
		"resume continues along the output edge":      testResumeContinues,
		"resume on a non waiting execution is a noop": testResumeNoop,
		"resume output matching no edge completes":    testResumeNoEdge,
		"cancel stops any execution":                  testCancel,
		"cancel overrides a completed execution":      testCancelCompleted,
		"rejects a step on a running execution":       testClaimRejected,
		"fails on an unsupported node type":           testUnsupportedNodeType,
		"recovers a panicking executor":               testPanicRecovered,
		"start requires an enabled workflow":          testDisabledWorkflow,
		"start fails for an unknown workflow":         testUnknownWorkflow,
	} {
		t.Run(scenario, func(t *testing.T) {
			fn(t, newHarness(t, 0))
		})
	}
}

func testLinearCompletion(t *testing.T, h *harness) {
	seedDocument(h, 100)
	_, err := h.meta.CreateWorkflow(testGraph(
		[]model.WorkflowNode{
			nd("n1", node.TYPE_TRIGGER_MANUAL, true, nil),
			nd("n2", node.TYPE_ACTION_SET_VALIDATION, false, map[string]any{"status": "valid"}),
		},
		[]model.WorkflowConnection{conn("n1", "n2", "default")},
	))
	require.NoError(t, err)

	execution, err := h.engine.StartWorkflow("wf-1", "doc-1")
	require.NoError(t, err)
	require.Equal(t, model.EXECUTION_COMPLETED, execution.Status)
	require.Empty(t, execution.CurrentNodeId)
	require.NotNil(t, execution.CompletedAt)
	require.Equal(t, "valid", execution.Context["validation_status"])

	doc, err := h.repo.GetDocument("doc-1")
	require.NoError(t, err)
	require.Equal(t, "valid", doc.ValidationStatus)

	logs, err := h.engine.GetExecutionLogs(execution.Id)
	require.NoError(t, err)
	require.Len(t, logs, 4)
	require.Equal(t, model.LOG_STARTED, logs[0].Status)
	require.Equal(t, "n1", logs[0].NodeId)
	require.Equal(t, model.LOG_COMPLETED, logs[1].Status)
	require.Equal(t, model.LOG_STARTED, logs[2].Status)
	require.Equal(t, "n2", logs[2].NodeId)
	require.Equal(t, model.LOG_COMPLETED, logs[3].Status)
}

func testConditionRouting(t *testing.T, h *harness) {
	seedDocument(h, 250)
	_, err := h.meta.CreateWorkflow(testGraph(
		[]model.WorkflowNode{
			nd("n1", node.TYPE_TRIGGER_MANUAL, true, nil),
			nd("n2", node.TYPE_CONDITION_AMOUNT, false, map[string]any{"operator": ">", "value": 100}),
			nd("n3", node.TYPE_ACTION_SET_VALIDATION, false, map[string]any{"status": "needs_review"}),
			nd("n4", node.TYPE_ACTION_SET_VALIDATION, false, map[string]any{"status": "valid"}),
		},
		[]model.WorkflowConnection{
			conn("n1", "n2", "default"),
			conn("n2", "n3", "true"),
			conn("n2", "n4", "false"),
		},
	))
	require.NoError(t, err)

	execution, err := h.engine.StartWorkflow("wf-1", "doc-1")
	require.NoError(t, err)
	require.Equal(t, model.EXECUTION_COMPLETED, execution.Status)

	doc, _ := h.repo.GetDocument("doc-1")
	require.Equal(t, "needs_review", doc.ValidationStatus)
}

func testDefaultEdgeFallback(t *testing.T, h *harness) {
	seedDocument(h, 50)
	_, err := h.meta.CreateWorkflow(testGraph(
		[]model.WorkflowNode{
			nd("n1", node.TYPE_CONDITION_AMOUNT, true, map[string]any{"operator": ">", "value": 100}),
			nd("n2", node.TYPE_ACTION_SET_VALIDATION, false, map[string]any{"status": "pending"}),
		},
		// no edge for the false output, default catches it
		[]model.WorkflowConnection{conn("n1", "n2", "default")},
	))
	require.NoError(t, err)

	execution, err := h.engine.StartWorkflow("wf-1", "doc-1")
	require.NoError(t, err)
	require.Equal(t, model.EXECUTION_COMPLETED, execution.Status)

	doc, _ := h.repo.GetDocument("doc-1")
	require.Equal(t, "pending", doc.ValidationStatus)
}

func testNodeFailure(t *testing.T, h *harness) {
	seedDocument(h, 100)
	_, err := h.meta.CreateWorkflow(testGraph(
		[]model.WorkflowNode{
			nd("n1", node.TYPE_TRIGGER_MANUAL, true, nil),
			nd("n2", node.TYPE_ACTION_ADD_TAG, false, map[string]any{}),
		},
		[]model.WorkflowConnection{conn("n1", "n2", "default")},
	))
	require.NoError(t, err)

	execution, err := h.engine.StartWorkflow("wf-1", "doc-1")
	require.NoError(t, err)
	require.Equal(t, model.EXECUTION_FAILED, execution.Status)
	require.Equal(t, "no tags configured", execution.ErrorMessage)
	require.NotNil(t, execution.CompletedAt)

	logs, _ := h.engine.GetExecutionLogs(execution.Id)
	last := logs[len(logs)-1]
	require.Equal(t, model.LOG_FAILED, last.Status)
	require.Equal(t, "no tags configured", last.ErrorMessage)
}

func parkOnDelay(t *testing.T, h *harness) *model.WorkflowExecution {
	t.Helper()
	seedDocument(h, 100)
	_, err := h.meta.CreateWorkflow(testGraph(
		[]model.WorkflowNode{
			nd("n1", node.TYPE_TRIGGER_MANUAL, true, nil),
			nd("n2", node.TYPE_TIMER_DELAY, false, map[string]any{"delay_seconds": 60}),
			nd("n3", node.TYPE_ACTION_SET_VALIDATION, false, map[string]any{"status": "valid"}),
		},
		[]model.WorkflowConnection{
			conn("n1", "n2", "default"),
			conn("n2", "n3", "timeout"),
		},
	))
	require.NoError(t, err)

	execution, err := h.engine.StartWorkflow("wf-1", "doc-1")
	require.NoError(t, err)
	return execution
}

func testDelayParksExecution(t *testing.T, h *harness) {
	execution := parkOnDelay(t, h)
	require.Equal(t, model.EXECUTION_WAITING, execution.Status)
	require.Equal(t, "timer", execution.WaitingFor)
	require.Equal(t, "n2", execution.CurrentNodeId)
	require.NotNil(t, execution.WaitingUntil)

	timers, err := h.storage.DueTimers(time.Now().Add(2*time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, timers, 1)
	require.Equal(t, execution.Id, timers[0].ExecutionId)
	require.Equal(t, "n2", timers[0].NodeId)
	require.Equal(t, "delay", timers[0].TimerType)
}

func testResumeContinues(t *testing.T, h *harness) {
	parked := parkOnDelay(t, h)

	execution, err := h.engine.Resume(parked.Id, "timeout")
	require.NoError(t, err)
	require.Equal(t, model.EXECUTION_COMPLETED, execution.Status)
	require.Equal(t, "timeout", execution.Context["resume_output"])
	require.Empty(t, execution.WaitingFor)
	require.Nil(t, execution.WaitingUntil)

	doc, _ := h.repo.GetDocument("doc-1")
	require.Equal(t, "valid", doc.ValidationStatus)
}

func testResumeNoEdge(t *testing.T, h *harness) {
	seedDocument(h, 100)
	h.repo.PutTag("doc-1", docs.Tag{Id: "t-ok", Name: "approved"})
	_, err := h.meta.CreateWorkflow(testGraph(
		[]model.WorkflowNode{
			nd("n1", node.TYPE_TRIGGER_MANUAL, true, nil),
			nd("n2", node.TYPE_WAIT_APPROVAL, false, map[string]any{"user_id": "u-1"}),
			nd("n3", node.TYPE_ACTION_ADD_TAG, false, map[string]any{"tag_ids": []any{"t-ok"}}),
		},
		// only the approved outcome has an edge, and there is no default
		[]model.WorkflowConnection{
			conn("n1", "n2", "default"),
			conn("n2", "n3", "approved"),
		},
	))
	require.NoError(t, err)

	parked, err := h.engine.StartWorkflow("wf-1", "doc-1")
	require.NoError(t, err)
	require.Equal(t, model.EXECUTION_WAITING, parked.Status)

	execution, err := h.engine.Resume(parked.Id, "rejected")
	require.NoError(t, err)
	require.Equal(t, model.EXECUTION_COMPLETED, execution.Status)
	require.Empty(t, execution.CurrentNodeId)

	// the approved branch never ran
	tags, err := h.repo.GetTags("doc-1")
	require.NoError(t, err)
	require.Len(t, tags, 1)
}

func testResumeNoop(t *testing.T, h *harness) {
	seedDocument(h, 100)
	_, err := h.meta.CreateWorkflow(testGraph(
		[]model.WorkflowNode{nd("n1", node.TYPE_TRIGGER_MANUAL, true, nil)},
		nil,
	))
	require.NoError(t, err)
	finished, err := h.engine.StartWorkflow("wf-1", "doc-1")
	require.NoError(t, err)
	require.Equal(t, model.EXECUTION_COMPLETED, finished.Status)

	resumed, err := h.engine.Resume(finished.Id, "approved")
	require.NoError(t, err)
	require.Equal(t, model.EXECUTION_COMPLETED, resumed.Status)
	require.NotContains(t, resumed.Context, "resume_output")
}

func testCancel(t *testing.T, h *harness) {
	parked := parkOnDelay(t, h)

	cancelled, err := h.engine.Cancel(parked.Id)
	require.NoError(t, err)
	require.Equal(t, model.EXECUTION_CANCELLED, cancelled.Status)
	require.Empty(t, cancelled.WaitingFor)
	require.Nil(t, cancelled.WaitingUntil)
	require.NotNil(t, cancelled.CompletedAt)

	// a late resume after cancel is silently ignored
	after, err := h.engine.Resume(parked.Id, "timeout")
	require.NoError(t, err)
	require.Equal(t, model.EXECUTION_CANCELLED, after.Status)
}

func testCancelCompleted(t *testing.T, h *harness) {
	seedDocument(h, 100)
	_, err := h.meta.CreateWorkflow(testGraph(
		[]model.WorkflowNode{nd("n1", node.TYPE_TRIGGER_MANUAL, true, nil)},
		nil,
	))
	require.NoError(t, err)
	finished, err := h.engine.StartWorkflow("wf-1", "doc-1")
	require.NoError(t, err)
	require.Equal(t, model.EXECUTION_COMPLETED, finished.Status)

	// cancel does not check the current state, a finished row flips too
	cancelled, err := h.engine.Cancel(finished.Id)
	require.NoError(t, err)
	require.Equal(t, model.EXECUTION_CANCELLED, cancelled.Status)
	require.NotNil(t, cancelled.CompletedAt)
}

func testClaimRejected(t *testing.T, h *harness) {
	require.NoError(t, h.storage.SaveExecution(model.WorkflowExecution{
		Id:         "exec-1",
		WorkflowId: "wf-1",
		Status:     model.EXECUTION_RUNNING,
		StartedAt:  time.Now(),
	}))

	execution, err := h.engine.Step("exec-1")
	require.NoError(t, err)
	require.Equal(t, model.EXECUTION_RUNNING, execution.Status)
}

func testUnsupportedNodeType(t *testing.T, h *harness) {
	// saved directly, bypassing validation
	require.NoError(t, h.storage.SaveWorkflow(testGraph(
		[]model.WorkflowNode{nd("n1", "frobnicate", true, nil)},
		nil,
	)))

	execution, err := h.engine.StartWorkflow("wf-1", "doc-1")
	require.NoError(t, err)
	require.Equal(t, model.EXECUTION_FAILED, execution.Status)
	require.Equal(t, "unsupported node type: frobnicate", execution.ErrorMessage)
}

func testPanicRecovered(t *testing.T, h *harness) {
	h.factory.Register("explode", func(deps node.Deps) node.Executor { return panicExecutor{} })
	_, err := h.meta.CreateWorkflow(testGraph(
		[]model.WorkflowNode{nd("n1", "explode", true, nil)},
		nil,
	))
	require.NoError(t, err)

	execution, err := h.engine.StartWorkflow("wf-1", "doc-1")
	require.NoError(t, err)
	require.Equal(t, model.EXECUTION_FAILED, execution.Status)
	require.Contains(t, execution.ErrorMessage, "node panicked")
}

func testDisabledWorkflow(t *testing.T, h *harness) {
	graph := testGraph([]model.WorkflowNode{nd("n1", node.TYPE_TRIGGER_MANUAL, true, nil)}, nil)
	graph.Definition.Enabled = false
	require.NoError(t, h.storage.SaveWorkflow(graph))

	_, err := h.engine.StartWorkflow("wf-1", "doc-1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not enabled")
}

func testUnknownWorkflow(t *testing.T, h *harness) {
	_, err := h.engine.StartWorkflow("missing", "doc-1")
	require.Error(t, err)
}

func TestEngineStepLimit(t *testing.T) {
	h := newHarness(t, 5)
	seedDocument(h, 100)
	_, err := h.meta.CreateWorkflow(testGraph(
		[]model.WorkflowNode{
			nd("n1", node.TYPE_TRIGGER_MANUAL, true, nil),
			nd("n2", node.TYPE_TRIGGER_MANUAL, false, nil),
		},
		[]model.WorkflowConnection{
			conn("n1", "n2", "default"),
			conn("n2", "n1", "default"),
		},
	))
	require.NoError(t, err)

	execution, err := h.engine.StartWorkflow("wf-1", "doc-1")
	require.NoError(t, err)
	require.Equal(t, model.EXECUTION_FAILED, execution.Status)
	require.Equal(t, "step limit exceeded after 5 steps", execution.ErrorMessage)
}
