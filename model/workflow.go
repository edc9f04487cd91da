package model

import "encoding/json"

// WorkflowDefinition is the stored header of a workflow graph. CanvasData is
// an opaque blob produced by the designer UI and passed through untouched.
type WorkflowDefinition struct {
	Id          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Enabled     bool            `json:"enabled"`
	CanvasData  json.RawMessage `json:"canvasData,omitempty"`
}

type WorkflowNode struct {
	Id           string         `json:"id"`
	WorkflowId   string         `json:"workflowId"`
	NodeType     string         `json:"nodeType"`
	Config       map[string]any `json:"config"`
	IsEntryPoint bool           `json:"isEntryPoint"`
}

// WorkflowConnection is a directed edge taken when the originating node
// produces OutputName.
type WorkflowConnection struct {
	Id         string `json:"id"`
	WorkflowId string `json:"workflowId"`
	FromNodeId string `json:"fromNodeId"`
	ToNodeId   string `json:"toNodeId"`
	OutputName string `json:"outputName"`
}

// WorkflowGraph bundles a definition with its nodes and connections, the unit
// the manager creates and updates atomically.
type WorkflowGraph struct {
	Definition  WorkflowDefinition   `json:"definition"`
	Nodes       []WorkflowNode       `json:"nodes"`
	Connections []WorkflowConnection `json:"connections"`
}

type StartExecutionRequest struct {
	WorkflowId string `json:"workflowId"`
	DocumentId string `json:"documentId,omitempty"`
}

type ResumeExecutionRequest struct {
	Output string `json:"output"`
}
