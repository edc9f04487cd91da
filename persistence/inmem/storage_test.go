package inmem

import (
	"testing"
	"time"

	"github.com/kdocs/flowd/model"
	"github.com/kdocs/flowd/persistence"
	"github.com/stretchr/testify/require"
)

func TestExecutionClaim(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.SaveExecution(model.WorkflowExecution{
		Id: "e1", WorkflowId: "wf-1", Status: model.EXECUTION_PENDING, StartedAt: time.Now(),
	}))

	claimed, ok, err := s.ClaimExecution("e1", model.EXECUTION_PENDING, model.EXECUTION_WAITING)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, model.EXECUTION_RUNNING, claimed.Status)

	// second claim loses, the row is already running
	_, ok, err = s.ClaimExecution("e1", model.EXECUTION_PENDING, model.EXECUTION_WAITING)
	require.NoError(t, err)
	require.False(t, ok)

	// waiting rows claim through the waiting status
	claimed.Status = model.EXECUTION_WAITING
	require.NoError(t, s.SaveExecution(*claimed))
	_, ok, err = s.ClaimExecution("e1", model.EXECUTION_WAITING)
	require.NoError(t, err)
	require.True(t, ok)

	_, _, err = s.ClaimExecution("missing", model.EXECUTION_PENDING)
	require.Error(t, err)
	var notFound persistence.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestListExecutionsByWorkflow(t *testing.T) {
	s := NewStorage()
	base := time.Now()
	for i, id := range []string{"e1", "e2", "e3"} {
		wf := "wf-1"
		if id == "e3" {
			wf = "wf-2"
		}
		require.NoError(t, s.SaveExecution(model.WorkflowExecution{
			Id: id, WorkflowId: wf, Status: model.EXECUTION_COMPLETED,
			StartedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	executions, err := s.ListExecutions("wf-1")
	require.NoError(t, err)
	require.Len(t, executions, 2)
	require.Equal(t, "e1", executions[0].Id)
	require.Equal(t, "e2", executions[1].Id)
}

func TestLogsAppendInOrder(t *testing.T) {
	s := NewStorage()
	for _, nodeId := range []string{"n1", "n2", "n3"} {
		require.NoError(t, s.AppendLog(model.ExecutionLog{
			Id: nodeId + "-log", ExecutionId: "e1", NodeId: nodeId, Status: model.LOG_COMPLETED, CreatedAt: time.Now(),
		}))
	}

	logs, err := s.GetLogs("e1")
	require.NoError(t, err)
	require.Len(t, logs, 3)
	require.Equal(t, "n1", logs[0].NodeId)
	require.Equal(t, "n3", logs[2].NodeId)

	logs, err = s.GetLogs("unknown")
	require.NoError(t, err)
	require.Empty(t, logs)
}

func TestTimers(t *testing.T) {
	s := NewStorage()
	now := time.Now()
	require.NoError(t, s.SaveTimer(model.Timer{Id: "t1", ExecutionId: "e1", FireAt: now.Add(-2 * time.Minute), Status: model.TIMER_WAITING}))
	require.NoError(t, s.SaveTimer(model.Timer{Id: "t2", ExecutionId: "e2", FireAt: now.Add(-1 * time.Minute), Status: model.TIMER_WAITING}))
	require.NoError(t, s.SaveTimer(model.Timer{Id: "t3", ExecutionId: "e3", FireAt: now.Add(time.Hour), Status: model.TIMER_WAITING}))
	require.NoError(t, s.SaveTimer(model.Timer{Id: "t4", ExecutionId: "e4", FireAt: now.Add(-time.Hour), Status: model.TIMER_CANCELLED}))

	due, err := s.DueTimers(now, 10)
	require.NoError(t, err)
	require.Len(t, due, 2)
	require.Equal(t, "t1", due[0].Id) // fire order
	require.Equal(t, "t2", due[1].Id)

	due, err = s.DueTimers(now, 1)
	require.NoError(t, err)
	require.Len(t, due, 1)

	require.NoError(t, s.MarkTimer("t1", model.TIMER_FIRED))
	fired, err := s.GetTimer("t1")
	require.NoError(t, err)
	require.Equal(t, model.TIMER_FIRED, fired.Status)

	due, err = s.DueTimers(now, 10)
	require.NoError(t, err)
	require.Len(t, due, 1)

	require.Error(t, s.MarkTimer("missing", model.TIMER_FIRED))
}

func TestWorkflowRoundTrip(t *testing.T) {
	s := NewStorage()
	graph := model.WorkflowGraph{
		Definition: model.WorkflowDefinition{Id: "wf-1", Name: "flow", Enabled: true},
		Nodes:      []model.WorkflowNode{{Id: "n1", NodeType: "trigger_manual", IsEntryPoint: true}},
	}
	require.NoError(t, s.SaveWorkflow(graph))

	got, err := s.GetWorkflow("wf-1")
	require.NoError(t, err)
	require.Equal(t, "flow", got.Definition.Name)

	list, err := s.ListWorkflows()
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, s.DeleteWorkflow("wf-1"))
	_, err = s.GetWorkflow("wf-1")
	var notFound persistence.NotFoundError
	require.ErrorAs(t, err, &notFound)
}
