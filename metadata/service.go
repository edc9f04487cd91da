package metadata

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kdocs/flowd/model"
	"github.com/kdocs/flowd/node"
	"github.com/kdocs/flowd/persistence"
	gocache "github.com/patrickmn/go-cache"
)

// Service manages workflow graphs: CRUD with validation plus the graph
// queries the engine needs while stepping. Graphs are cached because the
// engine reads the same graph on every step of an execution.
type Service struct {
	storage persistence.MetadataStorage
	factory *node.Factory
	cache   *gocache.Cache
}

func NewService(storage persistence.MetadataStorage, factory *node.Factory) *Service {
	return &Service{
		storage: storage,
		factory: factory,
		cache:   gocache.New(5*time.Minute, 10*time.Minute),
	}
}

func (s *Service) CreateWorkflow(graph model.WorkflowGraph) (*model.WorkflowGraph, error) {
	if graph.Definition.Id == "" {
		graph.Definition.Id = uuid.NewString()
	}
	for i := range graph.Nodes {
		if graph.Nodes[i].Id == "" {
			graph.Nodes[i].Id = uuid.NewString()
		}
		graph.Nodes[i].WorkflowId = graph.Definition.Id
	}
	for i := range graph.Connections {
		if graph.Connections[i].Id == "" {
			graph.Connections[i].Id = uuid.NewString()
		}
		graph.Connections[i].WorkflowId = graph.Definition.Id
	}
	if err := s.Validate(graph); err != nil {
		return nil, err
	}
	if err := s.storage.SaveWorkflow(graph); err != nil {
		return nil, err
	}
	s.cache.Set(graph.Definition.Id, graph, gocache.DefaultExpiration)
	return &graph, nil
}

func (s *Service) UpdateWorkflow(graph model.WorkflowGraph) error {
	if _, err := s.storage.GetWorkflow(graph.Definition.Id); err != nil {
		return err
	}
	for i := range graph.Nodes {
		if graph.Nodes[i].Id == "" {
			graph.Nodes[i].Id = uuid.NewString()
		}
		graph.Nodes[i].WorkflowId = graph.Definition.Id
	}
	for i := range graph.Connections {
		if graph.Connections[i].Id == "" {
			graph.Connections[i].Id = uuid.NewString()
		}
		graph.Connections[i].WorkflowId = graph.Definition.Id
	}
	if err := s.Validate(graph); err != nil {
		return err
	}
	if err := s.storage.SaveWorkflow(graph); err != nil {
		return err
	}
	s.cache.Set(graph.Definition.Id, graph, gocache.DefaultExpiration)
	return nil
}

func (s *Service) GetWorkflow(id string) (*model.WorkflowGraph, error) {
	if cached, ok := s.cache.Get(id); ok {
		graph := cached.(model.WorkflowGraph)
		return &graph, nil
	}
	graph, err := s.storage.GetWorkflow(id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(id, *graph, gocache.DefaultExpiration)
	return graph, nil
}

func (s *Service) ListWorkflows() ([]model.WorkflowDefinition, error) {
	return s.storage.ListWorkflows()
}

func (s *Service) DeleteWorkflow(id string) error {
	if err := s.storage.DeleteWorkflow(id); err != nil {
		return err
	}
	s.cache.Delete(id)
	return nil
}

func (s *Service) SetEnabled(id string, enabled bool) error {
	graph, err := s.storage.GetWorkflow(id)
	if err != nil {
		return err
	}
	graph.Definition.Enabled = enabled
	if err := s.storage.SaveWorkflow(*graph); err != nil {
		return err
	}
	s.cache.Set(id, *graph, gocache.DefaultExpiration)
	return nil
}

func (s *Service) GetNode(workflowId string, nodeId string) (*model.WorkflowNode, error) {
	graph, err := s.GetWorkflow(workflowId)
	if err != nil {
		return nil, err
	}
	for i := range graph.Nodes {
		if graph.Nodes[i].Id == nodeId {
			return &graph.Nodes[i], nil
		}
	}
	return nil, persistence.NotFoundError{Kind: "node", Id: nodeId}
}

func (s *Service) EntryPoints(workflowId string) ([]model.WorkflowNode, error) {
	graph, err := s.GetWorkflow(workflowId)
	if err != nil {
		return nil, err
	}
	var entries []model.WorkflowNode
	for _, n := range graph.Nodes {
		if n.IsEntryPoint {
			entries = append(entries, n)
		}
	}
	return entries, nil
}

func (s *Service) ConnectionsFrom(workflowId string, nodeId string) ([]model.WorkflowConnection, error) {
	graph, err := s.GetWorkflow(workflowId)
	if err != nil {
		return nil, err
	}
	var connections []model.WorkflowConnection
	for _, c := range graph.Connections {
		if c.FromNodeId == nodeId {
			connections = append(connections, c)
		}
	}
	return connections, nil
}

// Validate checks graph structure before it is persisted: a name, at least
// one entry point, only registered node types with valid configs, and
// connections that reference existing nodes without duplicating an output
// label on the same source node.
func (s *Service) Validate(graph model.WorkflowGraph) error {
	if graph.Definition.Name == "" {
		return fmt.Errorf("workflow name can not be empty")
	}
	if len(graph.Nodes) == 0 {
		return fmt.Errorf("workflow has no nodes")
	}
	nodeIds := make(map[string]bool, len(graph.Nodes))
	hasEntry := false
	for _, n := range graph.Nodes {
		if nodeIds[n.Id] {
			return fmt.Errorf("node id %s is duplicate", n.Id)
		}
		nodeIds[n.Id] = true
		if n.IsEntryPoint {
			hasEntry = true
		}
		executor := s.factory.Create(n.NodeType)
		if executor == nil {
			return fmt.Errorf("unsupported node type: %s", n.NodeType)
		}
		if errs := executor.ValidateConfig(n.Config); len(errs) > 0 {
			return fmt.Errorf("invalid config for node %s: %v", n.Id, errs[0])
		}
	}
	if !hasEntry {
		return fmt.Errorf("workflow has no entry point")
	}
	outputsSeen := make(map[string]bool)
	for _, c := range graph.Connections {
		if !nodeIds[c.FromNodeId] {
			return fmt.Errorf("connection %s references unknown source node %s", c.Id, c.FromNodeId)
		}
		if !nodeIds[c.ToNodeId] {
			return fmt.Errorf("connection %s references unknown target node %s", c.Id, c.ToNodeId)
		}
		key := c.FromNodeId + ":" + c.OutputName
		if outputsSeen[key] {
			return fmt.Errorf("node %s has more than one connection for output %q", c.FromNodeId, c.OutputName)
		}
		outputsSeen[key] = true
	}
	return nil
}
