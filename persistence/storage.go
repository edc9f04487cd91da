package persistence

import (
	"fmt"
	"time"

	"github.com/kdocs/flowd/model"
)

type StorageLayerError struct {
	Message string
}

func (e StorageLayerError) Error() string {
	return fmt.Sprintf("storage layer error %s", e.Message)
}

type NotFoundError struct {
	Kind string
	Id   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Id)
}

// MetadataStorage persists workflow graphs. A graph is saved and loaded as a
// unit; partial node or connection updates go through the metadata service.
type MetadataStorage interface {
	SaveWorkflow(graph model.WorkflowGraph) error
	GetWorkflow(id string) (*model.WorkflowGraph, error)
	ListWorkflows() ([]model.WorkflowDefinition, error)
	DeleteWorkflow(id string) error
}

// ExecutionStorage persists execution state. ClaimExecution is the engine's
// concurrency gate: it atomically moves the execution from one of the given
// statuses to running and returns the claimed row. claimed=false with a nil
// error means another caller holds the execution or its status is not
// claimable; the caller must back off, not retry blindly.
type ExecutionStorage interface {
	SaveExecution(execution model.WorkflowExecution) error
	GetExecution(id string) (*model.WorkflowExecution, error)
	ClaimExecution(id string, from ...model.ExecutionStatus) (*model.WorkflowExecution, bool, error)
	ListExecutions(workflowId string) ([]model.WorkflowExecution, error)
}

type LogStorage interface {
	AppendLog(log model.ExecutionLog) error
	GetLogs(executionId string) ([]model.ExecutionLog, error)
}

// TimerStorage keeps timers plus a due-time index. DueTimers returns timers
// with fireAt <= now in fire order without mutating them; the sweep decides
// per timer whether it fires or is cancelled and records that via MarkTimer.
type TimerStorage interface {
	SaveTimer(timer model.Timer) error
	GetTimer(id string) (*model.Timer, error)
	DueTimers(now time.Time, batchSize int) ([]model.Timer, error)
	MarkTimer(id string, status model.TimerStatus) error
}

// Storage is the full persistence surface the agent wires at startup.
type Storage interface {
	MetadataStorage
	ExecutionStorage
	LogStorage
	TimerStorage
}
