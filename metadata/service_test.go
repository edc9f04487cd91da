package metadata

import (
	"testing"

	"github.com/kdocs/flowd/docs"
	"github.com/kdocs/flowd/model"
	"github.com/kdocs/flowd/node"
	"github.com/kdocs/flowd/persistence/inmem"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	factory := node.NewFactory(node.Deps{
		Docs:   docs.NewInMemoryRepository(),
		Mailer: docs.NewLogMailer(),
	})
	return NewService(inmem.NewStorage(), factory)
}

func validGraph() model.WorkflowGraph {
	return model.WorkflowGraph{
		Definition: model.WorkflowDefinition{Name: "invoice flow", Enabled: true},
		Nodes: []model.WorkflowNode{
			{Id: "n1", NodeType: node.TYPE_TRIGGER_UPLOAD, IsEntryPoint: true},
			{Id: "n2", NodeType: node.TYPE_ACTION_SET_VALIDATION, Config: map[string]any{"status": "valid"}},
		},
		Connections: []model.WorkflowConnection{
			{Id: "c1", FromNodeId: "n1", ToNodeId: "n2", OutputName: "default"},
		},
	}
}

func TestServiceCrud(t *testing.T) {
	s := newTestService(t)

	created, err := s.CreateWorkflow(validGraph())
	require.NoError(t, err)
	require.NotEmpty(t, created.Definition.Id)
	require.Equal(t, created.Definition.Id, created.Nodes[0].WorkflowId)

	got, err := s.GetWorkflow(created.Definition.Id)
	require.NoError(t, err)
	require.Equal(t, "invoice flow", got.Definition.Name)
	require.Len(t, got.Nodes, 2)

	got.Definition.Name = "renamed flow"
	require.NoError(t, s.UpdateWorkflow(*got))
	got, err = s.GetWorkflow(created.Definition.Id)
	require.NoError(t, err)
	require.Equal(t, "renamed flow", got.Definition.Name)

	list, err := s.ListWorkflows()
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, s.SetEnabled(created.Definition.Id, false))
	got, _ = s.GetWorkflow(created.Definition.Id)
	require.False(t, got.Definition.Enabled)

	require.NoError(t, s.DeleteWorkflow(created.Definition.Id))
	_, err = s.GetWorkflow(created.Definition.Id)
	require.Error(t, err)
}

func TestServiceGraphQueries(t *testing.T) {
	s := newTestService(t)
	created, err := s.CreateWorkflow(validGraph())
	require.NoError(t, err)
	id := created.Definition.Id

	n, err := s.GetNode(id, "n2")
	require.NoError(t, err)
	require.Equal(t, node.TYPE_ACTION_SET_VALIDATION, n.NodeType)

	_, err = s.GetNode(id, "n9")
	require.Error(t, err)

	entries, err := s.EntryPoints(id)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "n1", entries[0].Id)

	conns, err := s.ConnectionsFrom(id, "n1")
	require.NoError(t, err)
	require.Len(t, conns, 1)
	require.Equal(t, "n2", conns[0].ToNodeId)

	conns, err = s.ConnectionsFrom(id, "n2")
	require.NoError(t, err)
	require.Empty(t, conns)
}

func TestServiceValidation(t *testing.T) {
	for scenario, tc := range map[string]struct {
		mutate  func(g *model.WorkflowGraph)
		wantErr string
	}{
		"missing name": {
			func(g *model.WorkflowGraph) { g.Definition.Name = "" },
			"workflow name can not be empty"},
		"no nodes": {
			func(g *model.WorkflowGraph) { g.Nodes = nil },
			"workflow has no nodes"},
		"no entry point": {
			func(g *model.WorkflowGraph) { g.Nodes[0].IsEntryPoint = false },
			"workflow has no entry point"},
		"duplicate node id": {
			func(g *model.WorkflowGraph) { g.Nodes[1].Id = "n1" },
			"duplicate"},
		"unknown node type": {
			func(g *model.WorkflowGraph) { g.Nodes[1].NodeType = "frobnicate" },
			"unsupported node type: frobnicate"},
		"invalid node config": {
			func(g *model.WorkflowGraph) { g.Nodes[1].Config = map[string]any{} },
			"invalid config for node n2"},
		"connection from unknown node": {
			func(g *model.WorkflowGraph) { g.Connections[0].FromNodeId = "n9" },
			"unknown source node"},
		"connection to unknown node": {
			func(g *model.WorkflowGraph) { g.Connections[0].ToNodeId = "n9" },
			"unknown target node"},
		"duplicate output edge": {
			func(g *model.WorkflowGraph) {
				g.Connections = append(g.Connections, model.WorkflowConnection{
					Id: "c2", FromNodeId: "n1", ToNodeId: "n2", OutputName: "default",
				})
			},
			"more than one connection"},
	} {
		t.Run(scenario, func(t *testing.T) {
			s := newTestService(t)
			g := validGraph()
			tc.mutate(&g)
			_, err := s.CreateWorkflow(g)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestServiceAssignsIds(t *testing.T) {
	s := newTestService(t)
	g := validGraph()
	g.Nodes[0].Id = ""
	g.Connections = nil

	created, err := s.CreateWorkflow(g)
	require.NoError(t, err)
	require.NotEmpty(t, created.Nodes[0].Id)
	require.NotEqual(t, created.Nodes[0].Id, created.Nodes[1].Id)
}
