package rest

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kdocs/flowd/logger"
	"github.com/kdocs/flowd/model"
)

func (s *Server) HandleStartExecution(w http.ResponseWriter, r *http.Request) {
	var req model.StartExecutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	defer r.Body.Close()
	execution, err := s.engine.StartWorkflow(req.WorkflowId, req.DocumentId)
	if err != nil {
		logger.Error("error starting workflow", zap.String("workflow", req.WorkflowId), zap.Error(err))
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusCreated, execution)
}

func (s *Server) HandleGetExecution(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	execution, err := s.engine.GetExecution(id)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "execution not found")
		return
	}
	respondWithJSON(w, http.StatusOK, execution)
}

func (s *Server) HandleGetExecutionLogs(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	logs, err := s.engine.GetExecutionLogs(id)
	if err != nil {
		logger.Error("error getting execution logs", zap.String("id", id), zap.Error(err))
		respondWithError(w, http.StatusNotFound, "execution logs not found")
		return
	}
	respondWithJSON(w, http.StatusOK, logs)
}

func (s *Server) HandleResumeExecution(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req model.ResumeExecutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	defer r.Body.Close()
	execution, err := s.engine.Resume(id, req.Output)
	if err != nil {
		logger.Error("error resuming execution", zap.String("id", id), zap.Error(err))
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, execution)
}

func (s *Server) HandleCancelExecution(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	execution, err := s.engine.Cancel(id)
	if err != nil {
		logger.Error("error cancelling execution", zap.String("id", id), zap.Error(err))
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, execution)
}

func (s *Server) HandleListExecutions(w http.ResponseWriter, r *http.Request) {
	workflowId := mux.Vars(r)["id"]
	executions, err := s.engine.ListExecutions(workflowId)
	if err != nil {
		logger.Error("error listing executions", zap.String("workflow", workflowId), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "error listing executions")
		return
	}
	respondWithJSON(w, http.StatusOK, executions)
}
