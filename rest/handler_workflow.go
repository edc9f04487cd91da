package rest

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kdocs/flowd/logger"
	"github.com/kdocs/flowd/model"
)

func (s *Server) HandleCreateWorkflow(w http.ResponseWriter, r *http.Request) {
	var graph model.WorkflowGraph
	if err := json.NewDecoder(r.Body).Decode(&graph); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	defer r.Body.Close()
	created, err := s.metadataService.CreateWorkflow(graph)
	if err != nil {
		logger.Error("error creating workflow", zap.Error(err))
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (s *Server) HandleListWorkflows(w http.ResponseWriter, r *http.Request) {
	definitions, err := s.metadataService.ListWorkflows()
	if err != nil {
		logger.Error("error listing workflows", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "error listing workflows")
		return
	}
	respondWithJSON(w, http.StatusOK, definitions)
}

func (s *Server) HandleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	graph, err := s.metadataService.GetWorkflow(id)
	if err != nil {
		logger.Info("workflow does not exist", zap.String("id", id))
		respondWithError(w, http.StatusNotFound, "workflow does not exist")
		return
	}
	respondWithJSON(w, http.StatusOK, graph)
}

func (s *Server) HandleUpdateWorkflow(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var graph model.WorkflowGraph
	if err := json.NewDecoder(r.Body).Decode(&graph); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	defer r.Body.Close()
	graph.Definition.Id = id
	if err := s.metadataService.UpdateWorkflow(graph); err != nil {
		logger.Error("error updating workflow", zap.String("id", id), zap.Error(err))
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondOK(w, map[string]any{"updated": true})
}

func (s *Server) HandleDeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.metadataService.DeleteWorkflow(id); err != nil {
		logger.Error("error deleting workflow", zap.String("id", id), zap.Error(err))
		respondWithError(w, http.StatusBadRequest, "error deleting workflow")
		return
	}
	respondOK(w, map[string]any{"deleted": true})
}

func (s *Server) HandleEnableWorkflow(w http.ResponseWriter, r *http.Request) {
	s.setEnabled(w, r, true)
}

func (s *Server) HandleDisableWorkflow(w http.ResponseWriter, r *http.Request) {
	s.setEnabled(w, r, false)
}

func (s *Server) setEnabled(w http.ResponseWriter, r *http.Request, enabled bool) {
	id := mux.Vars(r)["id"]
	if err := s.metadataService.SetEnabled(id, enabled); err != nil {
		logger.Error("error toggling workflow", zap.String("id", id), zap.Error(err))
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondOK(w, map[string]any{"enabled": enabled})
}
