package model

import "time"

type ExecutionStatus string

const EXECUTION_PENDING ExecutionStatus = "pending"
const EXECUTION_RUNNING ExecutionStatus = "running"
const EXECUTION_WAITING ExecutionStatus = "waiting"
const EXECUTION_COMPLETED ExecutionStatus = "completed"
const EXECUTION_FAILED ExecutionStatus = "failed"
const EXECUTION_CANCELLED ExecutionStatus = "cancelled"

// IsTerminal reports whether no further stepping is possible.
func (s ExecutionStatus) IsTerminal() bool {
	return s == EXECUTION_COMPLETED || s == EXECUTION_FAILED || s == EXECUTION_CANCELLED
}

// WorkflowExecution is one run of a workflow graph. The row is the single
// source of truth for where the run is; CurrentNodeId is empty once finished.
type WorkflowExecution struct {
	Id            string          `json:"id"`
	WorkflowId    string          `json:"workflowId"`
	DocumentId    string          `json:"documentId,omitempty"`
	Status        ExecutionStatus `json:"status"`
	CurrentNodeId string          `json:"currentNodeId,omitempty"`
	Context       map[string]any  `json:"context"`
	ErrorMessage  string          `json:"errorMessage,omitempty"`
	WaitingUntil  *time.Time      `json:"waitingUntil,omitempty"`
	WaitingFor    string          `json:"waitingFor,omitempty"`
	StartedAt     time.Time       `json:"startedAt"`
	CompletedAt   *time.Time      `json:"completedAt,omitempty"`
}

type LogStatus string

const LOG_STARTED LogStatus = "started"
const LOG_COMPLETED LogStatus = "completed"
const LOG_FAILED LogStatus = "failed"

// ExecutionLog is append-only, one row per node start and one per node
// result. Never mutated after insert.
type ExecutionLog struct {
	Id           string         `json:"id"`
	ExecutionId  string         `json:"executionId"`
	NodeId       string         `json:"nodeId"`
	Status       LogStatus      `json:"status"`
	InputData    map[string]any `json:"inputData,omitempty"`
	OutputData   map[string]any `json:"outputData,omitempty"`
	ErrorMessage string         `json:"errorMessage,omitempty"`
	DurationMs   int64          `json:"durationMs"`
	CreatedAt    time.Time      `json:"createdAt"`
}

type TimerStatus string

const TIMER_WAITING TimerStatus = "waiting"
const TIMER_FIRED TimerStatus = "fired"
const TIMER_CANCELLED TimerStatus = "cancelled"

// Timer schedules a timed resumption of a waiting execution. The sweep
// validates the execution is still parked on NodeId before firing.
type Timer struct {
	Id          string      `json:"id"`
	ExecutionId string      `json:"executionId"`
	NodeId      string      `json:"nodeId"`
	TimerType   string      `json:"timerType"`
	FireAt      time.Time   `json:"fireAt"`
	Status      TimerStatus `json:"status"`
}
