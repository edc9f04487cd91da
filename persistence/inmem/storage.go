package inmem

import (
	"sort"
	"sync"
	"time"

	"github.com/kdocs/flowd/model"
	"github.com/kdocs/flowd/persistence"
)

var _ persistence.Storage = new(inMemStorage)

// inMemStorage backs the whole persistence surface with maps under one
// mutex. It serves single-process deployments and tests.
type inMemStorage struct {
	mu         sync.Mutex
	workflows  map[string]model.WorkflowGraph
	executions map[string]model.WorkflowExecution
	logs       map[string][]model.ExecutionLog
	timers     map[string]model.Timer
}

func NewStorage() *inMemStorage {
	return &inMemStorage{
		workflows:  make(map[string]model.WorkflowGraph),
		executions: make(map[string]model.WorkflowExecution),
		logs:       make(map[string][]model.ExecutionLog),
		timers:     make(map[string]model.Timer),
	}
}

func (s *inMemStorage) SaveWorkflow(graph model.WorkflowGraph) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workflows[graph.Definition.Id] = graph
	return nil
}

func (s *inMemStorage) GetWorkflow(id string) (*model.WorkflowGraph, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	graph, ok := s.workflows[id]
	if !ok {
		return nil, persistence.NotFoundError{Kind: "workflow", Id: id}
	}
	return &graph, nil
}

func (s *inMemStorage) ListWorkflows() ([]model.WorkflowDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	definitions := make([]model.WorkflowDefinition, 0, len(s.workflows))
	for _, graph := range s.workflows {
		definitions = append(definitions, graph.Definition)
	}
	sort.Slice(definitions, func(i, j int) bool { return definitions[i].Id < definitions[j].Id })
	return definitions, nil
}

func (s *inMemStorage) DeleteWorkflow(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.workflows, id)
	return nil
}

func (s *inMemStorage) SaveExecution(execution model.WorkflowExecution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.executions[execution.Id] = execution
	return nil
}

func (s *inMemStorage) GetExecution(id string) (*model.WorkflowExecution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	execution, ok := s.executions[id]
	if !ok {
		return nil, persistence.NotFoundError{Kind: "execution", Id: id}
	}
	return &execution, nil
}

func (s *inMemStorage) ClaimExecution(id string, from ...model.ExecutionStatus) (*model.WorkflowExecution, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	execution, ok := s.executions[id]
	if !ok {
		return nil, false, persistence.NotFoundError{Kind: "execution", Id: id}
	}
	claimable := false
	for _, status := range from {
		if execution.Status == status {
			claimable = true
			break
		}
	}
	if !claimable {
		return nil, false, nil
	}
	execution.Status = model.EXECUTION_RUNNING
	s.executions[id] = execution
	return &execution, true, nil
}

func (s *inMemStorage) ListExecutions(workflowId string) ([]model.WorkflowExecution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	executions := make([]model.WorkflowExecution, 0)
	for _, execution := range s.executions {
		if execution.WorkflowId == workflowId {
			executions = append(executions, execution)
		}
	}
	sort.Slice(executions, func(i, j int) bool {
		return executions[i].StartedAt.Before(executions[j].StartedAt)
	})
	return executions, nil
}

func (s *inMemStorage) AppendLog(log model.ExecutionLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[log.ExecutionId] = append(s.logs[log.ExecutionId], log)
	return nil
}

func (s *inMemStorage) GetLogs(executionId string) ([]model.ExecutionLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	logs := make([]model.ExecutionLog, len(s.logs[executionId]))
	copy(logs, s.logs[executionId])
	return logs, nil
}

func (s *inMemStorage) SaveTimer(timer model.Timer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timers[timer.Id] = timer
	return nil
}

func (s *inMemStorage) GetTimer(id string) (*model.Timer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	timer, ok := s.timers[id]
	if !ok {
		return nil, persistence.NotFoundError{Kind: "timer", Id: id}
	}
	return &timer, nil
}

func (s *inMemStorage) DueTimers(now time.Time, batchSize int) ([]model.Timer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	due := make([]model.Timer, 0)
	for _, timer := range s.timers {
		if timer.Status == model.TIMER_WAITING && !timer.FireAt.After(now) {
			due = append(due, timer)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].FireAt.Before(due[j].FireAt) })
	if batchSize > 0 && len(due) > batchSize {
		due = due[:batchSize]
	}
	return due, nil
}

func (s *inMemStorage) MarkTimer(id string, status model.TimerStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	timer, ok := s.timers[id]
	if !ok {
		return persistence.NotFoundError{Kind: "timer", Id: id}
	}
	timer.Status = status
	s.timers[id] = timer
	return nil
}
