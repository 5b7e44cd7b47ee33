package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/mohitkumar/shipyard/logger"
	"github.com/mohitkumar/shipyard/model"
	"github.com/mohitkumar/shipyard/persistence"
)

// The freeze document travels as raw YAML; scope comes from query params so
// the same document can be filed at account, org or project level.
func (s *Server) HandleCreateFreeze(w http.ResponseWriter, r *http.Request) {
	accountId, orgId, projectId, ok := scopeParams(w, r)
	if !ok {
		return
	}
	yamlDoc, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	config, err := s.freezeService.Create(accountId, orgId, projectId, yamlDoc)
	if err != nil {
		logger.Error("error creating freeze config", zap.Error(err))
		var duplicate persistence.DuplicateKeyError
		if errors.As(err, &duplicate) {
			respondWithError(w, http.StatusConflict, err.Error())
			return
		}
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusCreated, config)
}

func (s *Server) HandleUpdateFreeze(w http.ResponseWriter, r *http.Request) {
	accountId, orgId, projectId, ok := scopeParams(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)
	identifier := vars["identifier"]
	yamlDoc, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	config, err := s.freezeService.Update(accountId, orgId, projectId, identifier, yamlDoc)
	if err != nil {
		logger.Error("error updating freeze config", zap.String("identifier", identifier), zap.Error(err))
		var notFound persistence.NotFoundError
		if errors.As(err, &notFound) {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, config)
}

func (s *Server) HandleGetFreeze(w http.ResponseWriter, r *http.Request) {
	accountId, orgId, projectId, ok := scopeParams(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)
	identifier := vars["identifier"]
	config, err := s.freezeService.Get(accountId, orgId, projectId, identifier)
	if err != nil {
		logger.Info("freeze config does not exist", zap.String("identifier", identifier))
		respondWithError(w, http.StatusNotFound, "freeze config does not exist")
		return
	}
	respondWithJSON(w, http.StatusOK, config)
}

func (s *Server) HandleDeleteFreeze(w http.ResponseWriter, r *http.Request) {
	accountId, orgId, projectId, ok := scopeParams(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)
	identifier := vars["identifier"]
	if err := s.freezeService.Delete(accountId, orgId, projectId, identifier); err != nil {
		logger.Error("error deleting freeze config", zap.String("identifier", identifier), zap.Error(err))
		respondWithError(w, http.StatusNotFound, "freeze config does not exist")
		return
	}
	respondOK(w, "deleted")
}

func (s *Server) HandleListFreezes(w http.ResponseWriter, r *http.Request) {
	accountId, orgId, projectId, ok := scopeParams(w, r)
	if !ok {
		return
	}
	configs, err := s.freezeService.List(accountId, orgId, projectId)
	if err != nil {
		logger.Error("error listing freeze configs", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "error listing freeze configs")
		return
	}
	respondWithJSON(w, http.StatusOK, configs)
}

func (s *Server) HandleEvaluateFreezes(w http.ResponseWriter, r *http.Request) {
	var req model.FreezeEvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	if req.AccountId == "" {
		respondWithError(w, http.StatusBadRequest, "accountId is required")
		return
	}
	active, err := s.executionService.EvaluateFreezes(req)
	if err != nil {
		logger.Error("error evaluating freezes", zap.String("accountId", req.AccountId), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "error evaluating freezes")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"blocked": len(active) > 0,
		"freezes": active,
	})
}

// HandleListFrozenExecutions returns the audit snapshots recorded for a run
// that was rejected by one or more freezes.
func (s *Server) HandleListFrozenExecutions(w http.ResponseWriter, r *http.Request) {
	accountId := r.URL.Query().Get("accountId")
	if accountId == "" {
		respondWithError(w, http.StatusBadRequest, "accountId is required")
		return
	}
	vars := mux.Vars(r)
	planExecutionId := vars["planExecutionId"]
	executions, err := s.container.GetFrozenExecutionStore().List(accountId, planExecutionId)
	if err != nil {
		logger.Error("error listing frozen executions", zap.String("planExecutionId", planExecutionId), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "error listing frozen executions")
		return
	}
	respondWithJSON(w, http.StatusOK, executions)
}

func scopeParams(w http.ResponseWriter, r *http.Request) (string, string, string, bool) {
	query := r.URL.Query()
	accountId := query.Get("accountId")
	if accountId == "" {
		respondWithError(w, http.StatusBadRequest, "accountId is required")
		return "", "", "", false
	}
	return accountId, query.Get("orgId"), query.Get("projectId"), true
}
