package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kdocs/flowd/logger"
	"github.com/kdocs/flowd/metadata"
	"github.com/kdocs/flowd/model"
	"github.com/kdocs/flowd/node"
	"github.com/kdocs/flowd/persistence"
	"go.uber.org/zap"
)

const DEFAULT_MAX_STEPS = 1000

// Engine advances executions through their workflow graph one node at a
// time. Every entry point (Step, Resume) first claims the execution row via
// a CAS on its status, so two processes can never run the same execution
// concurrently; the loser of the race observes an unclaimable status and
// backs off.
type Engine struct {
	metadata   *metadata.Service
	executions persistence.ExecutionStorage
	logs       persistence.LogStorage
	factory    *node.Factory
	maxSteps   int
}

func NewEngine(meta *metadata.Service, executions persistence.ExecutionStorage, logs persistence.LogStorage, factory *node.Factory, maxSteps int) *Engine {
	if maxSteps <= 0 {
		maxSteps = DEFAULT_MAX_STEPS
	}
	return &Engine{
		metadata:   meta,
		executions: executions,
		logs:       logs,
		factory:    factory,
		maxSteps:   maxSteps,
	}
}

// StartWorkflow creates a new execution at the workflow's entry point and
// immediately runs it until it parks or finishes.
func (e *Engine) StartWorkflow(workflowId string, documentId string) (*model.WorkflowExecution, error) {
	graph, err := e.metadata.GetWorkflow(workflowId)
	if err != nil {
		return nil, err
	}
	if !graph.Definition.Enabled {
		return nil, fmt.Errorf("workflow %s is not enabled", workflowId)
	}
	entries, err := e.metadata.EntryPoints(workflowId)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("workflow %s has no entry point", workflowId)
	}
	execution := model.WorkflowExecution{
		Id:            uuid.NewString(),
		WorkflowId:    workflowId,
		DocumentId:    documentId,
		Status:        model.EXECUTION_PENDING,
		CurrentNodeId: entries[0].Id,
		Context: map[string]any{
			"document_id": documentId,
			"workflow_id": workflowId,
		},
		StartedAt: time.Now(),
	}
	if err := e.executions.SaveExecution(execution); err != nil {
		return nil, err
	}
	logger.Info("started execution", zap.String("executionId", execution.Id), zap.String("workflow", workflowId))
	return e.Step(execution.Id)
}

// Step claims the execution and drives it forward. A terminal, already
// running or otherwise unclaimable execution is returned untouched; claiming
// is the only concurrency gate, so an unclaimable status is not an error.
func (e *Engine) Step(executionId string) (*model.WorkflowExecution, error) {
	execution, claimed, err := e.executions.ClaimExecution(executionId, model.EXECUTION_PENDING, model.EXECUTION_WAITING)
	if err != nil {
		return nil, err
	}
	if !claimed {
		logger.Debug("execution not claimable", zap.String("executionId", executionId))
		return e.executions.GetExecution(executionId)
	}
	return e.runLoop(execution)
}

// Resume wakes a waiting execution with the given output and continues it.
// An execution in any other status is returned untouched; resuming something
// that is not waiting is a silent no-op, so a late approval decision after a
// cancel does not fail.
func (e *Engine) Resume(executionId string, output string) (*model.WorkflowExecution, error) {
	execution, claimed, err := e.executions.ClaimExecution(executionId, model.EXECUTION_WAITING)
	if err != nil {
		return nil, err
	}
	if !claimed {
		logger.Debug("resume ignored, execution not waiting", zap.String("executionId", executionId))
		return e.executions.GetExecution(executionId)
	}

	if output == "" {
		output = node.OUTPUT_DEFAULT
	}
	nodeId := execution.CurrentNodeId
	e.appendLog(model.ExecutionLog{
		ExecutionId: execution.Id,
		NodeId:      nodeId,
		Status:      model.LOG_COMPLETED,
		OutputData:  map[string]any{"output": output, "resumed": true},
	})
	execution.WaitingFor = ""
	execution.WaitingUntil = nil
	if execution.Context == nil {
		execution.Context = make(map[string]any)
	}
	execution.Context["resume_output"] = output

	connections, err := e.metadata.ConnectionsFrom(execution.WorkflowId, nodeId)
	if err != nil {
		return e.failExecution(execution, err.Error())
	}
	next := pickNext(connections, output)
	if next == nil {
		return e.completeExecution(execution)
	}
	execution.CurrentNodeId = next.ToNodeId
	logger.Info("resumed execution", zap.String("executionId", execution.Id), zap.String("output", output))
	return e.runLoop(execution)
}

// Cancel stops the execution unconditionally, whatever state it is in.
func (e *Engine) Cancel(executionId string) (*model.WorkflowExecution, error) {
	execution, err := e.executions.GetExecution(executionId)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	execution.Status = model.EXECUTION_CANCELLED
	execution.WaitingFor = ""
	execution.WaitingUntil = nil
	execution.CompletedAt = &now
	if err := e.executions.SaveExecution(*execution); err != nil {
		return nil, err
	}
	logger.Info("cancelled execution", zap.String("executionId", executionId))
	return execution, nil
}

func (e *Engine) GetExecution(executionId string) (*model.WorkflowExecution, error) {
	return e.executions.GetExecution(executionId)
}

func (e *Engine) GetExecutionLogs(executionId string) ([]model.ExecutionLog, error) {
	return e.logs.GetLogs(executionId)
}

func (e *Engine) ListExecutions(workflowId string) ([]model.WorkflowExecution, error) {
	return e.executions.ListExecutions(workflowId)
}

// runLoop executes nodes until the execution parks, finishes, fails or hits
// the step cap. The caller must hold the claim; the loop releases it by
// writing a non-running status before returning.
func (e *Engine) runLoop(execution *model.WorkflowExecution) (*model.WorkflowExecution, error) {
	for steps := 0; ; steps++ {
		if steps >= e.maxSteps {
			return e.failExecution(execution, fmt.Sprintf("step limit exceeded after %d steps", e.maxSteps))
		}
		currentNode, err := e.metadata.GetNode(execution.WorkflowId, execution.CurrentNodeId)
		if err != nil {
			return e.failExecution(execution, fmt.Sprintf("node not found: %s", execution.CurrentNodeId))
		}
		executor := e.factory.Create(currentNode.NodeType)
		if executor == nil {
			return e.failExecution(execution, fmt.Sprintf("unsupported node type: %s", currentNode.NodeType))
		}

		config := make(map[string]any, len(currentNode.Config)+1)
		for k, v := range currentNode.Config {
			config[k] = v
		}
		config["node_id"] = currentNode.Id

		e.appendLog(model.ExecutionLog{
			ExecutionId: execution.Id,
			NodeId:      currentNode.Id,
			Status:      model.LOG_STARTED,
			InputData:   currentNode.Config,
		})

		bag := node.NewContextBag(execution.Id, execution.DocumentId, execution.WorkflowId, execution.Context)
		started := time.Now()
		result := e.executeNode(executor, bag, config)
		durationMs := time.Since(started).Milliseconds()

		// context changes survive even a failed node
		execution.Context = bag.Data()

		e.appendLog(model.ExecutionLog{
			ExecutionId:  execution.Id,
			NodeId:       currentNode.Id,
			Status:       logStatusFor(result.Status),
			OutputData:   resultOutputData(result),
			ErrorMessage: result.Err,
			DurationMs:   durationMs,
		})

		switch result.Status {
		case node.STATUS_FAILED:
			return e.failExecution(execution, result.Err)
		case node.STATUS_WAITING:
			execution.Status = model.EXECUTION_WAITING
			execution.WaitingFor = result.WaitFor
			execution.WaitingUntil = nil
			if result.WaitSeconds > 0 {
				until := time.Now().Add(time.Duration(result.WaitSeconds) * time.Second)
				execution.WaitingUntil = &until
			}
			if err := e.executions.SaveExecution(*execution); err != nil {
				return nil, err
			}
			logger.Info("execution waiting", zap.String("executionId", execution.Id),
				zap.String("node", currentNode.Id), zap.String("waitingFor", result.WaitFor))
			return execution, nil
		}

		connections, err := e.metadata.ConnectionsFrom(execution.WorkflowId, currentNode.Id)
		if err != nil {
			return e.failExecution(execution, err.Error())
		}
		next := pickNext(connections, result.Output)
		if next == nil {
			return e.completeExecution(execution)
		}
		execution.CurrentNodeId = next.ToNodeId
		if err := e.executions.SaveExecution(*execution); err != nil {
			return nil, err
		}
	}
}

// executeNode shields the loop from a panicking executor; a panic becomes a
// failed result like any other node failure.
func (e *Engine) executeNode(executor node.Executor, bag *node.ContextBag, config map[string]any) (result node.Result) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("node executor panicked", zap.Any("panic", r))
			result = node.Failed(fmt.Sprintf("node panicked: %v", r))
		}
	}()
	return executor.Execute(bag, config)
}

func (e *Engine) completeExecution(execution *model.WorkflowExecution) (*model.WorkflowExecution, error) {
	now := time.Now()
	execution.Status = model.EXECUTION_COMPLETED
	execution.CurrentNodeId = ""
	execution.CompletedAt = &now
	if err := e.executions.SaveExecution(*execution); err != nil {
		return nil, err
	}
	logger.Info("execution completed", zap.String("executionId", execution.Id))
	return execution, nil
}

// failExecution records the failure on the row; a failed node is a state of
// the execution, not an error of the engine call.
func (e *Engine) failExecution(execution *model.WorkflowExecution, message string) (*model.WorkflowExecution, error) {
	now := time.Now()
	execution.Status = model.EXECUTION_FAILED
	execution.ErrorMessage = message
	execution.CompletedAt = &now
	if err := e.executions.SaveExecution(*execution); err != nil {
		return nil, err
	}
	logger.Error("execution failed", zap.String("executionId", execution.Id), zap.String("error", message))
	return execution, nil
}

func (e *Engine) appendLog(log model.ExecutionLog) {
	log.Id = uuid.NewString()
	log.CreatedAt = time.Now()
	if err := e.logs.AppendLog(log); err != nil {
		logger.Error("failed to append execution log", zap.String("executionId", log.ExecutionId), zap.Error(err))
	}
}

// pickNext applies the routing rule: exact output match first, then the
// default edge, otherwise the node is terminal.
func pickNext(connections []model.WorkflowConnection, output string) *model.WorkflowConnection {
	for i := range connections {
		if connections[i].OutputName == output {
			return &connections[i]
		}
	}
	for i := range connections {
		if connections[i].OutputName == node.OUTPUT_DEFAULT {
			return &connections[i]
		}
	}
	return nil
}

func logStatusFor(status node.ResultStatus) model.LogStatus {
	switch status {
	case node.STATUS_FAILED:
		return model.LOG_FAILED
	case node.STATUS_WAITING:
		return model.LOG_STARTED
	default:
		return model.LOG_COMPLETED
	}
}

func resultOutputData(result node.Result) map[string]any {
	if result.Data == nil && result.Output == "" {
		return nil
	}
	data := make(map[string]any, len(result.Data)+1)
	for k, v := range result.Data {
		data[k] = v
	}
	data["output"] = result.Output
	return data
}
