package rest

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/mohitkumar/shipyard/logger"
	"github.com/mohitkumar/shipyard/model"
)

func (s *Server) HandleExecuteStep(w http.ResponseWriter, r *http.Request) {
	var req model.StepExecutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	if req.Ref.RunId == "" || req.Step.Name == "" {
		respondWithError(w, http.StatusBadRequest, "runId and step name are required")
		return
	}
	resp, err := s.executionService.Execute(req)
	if err != nil {
		logger.Error("error executing step", zap.String("step", req.Step.Name), zap.String("runId", req.Ref.RunId), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "error executing step")
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) HandlePollTasks(w http.ResponseWriter, r *http.Request) {
	batchSize := 1
	if raw := r.URL.Query().Get("batchSize"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondWithError(w, http.StatusBadRequest, "invalid batchSize")
			return
		}
		batchSize = parsed
	}
	tasks, err := s.executionService.PollTasks(batchSize)
	if err != nil {
		logger.Error("error polling worker tasks", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "error polling worker tasks")
		return
	}
	respondWithJSON(w, http.StatusOK, tasks)
}

func (s *Server) HandleWorkerResult(w http.ResponseWriter, r *http.Request) {
	var result model.WorkerResult
	if err := json.NewDecoder(r.Body).Decode(&result); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	if err := s.executionService.HandleWorkerResult(result); err != nil {
		logger.Error("error handling worker result", zap.String("correlationId", result.CorrelationId), zap.Error(err))
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondOK(w, "accepted")
}
