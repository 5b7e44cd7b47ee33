package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/mohitkumar/shipyard/container"
	"github.com/mohitkumar/shipyard/freeze"
	"github.com/mohitkumar/shipyard/logger"
	"github.com/mohitkumar/shipyard/service"
	"go.uber.org/zap"
)

type Server struct {
	http.Server
	Port             int
	container        *container.DIContiner
	executionService *service.StepExecutionService
	freezeService    *freeze.Service
}

func NewServer(httpPort int, container *container.DIContiner, executionService *service.StepExecutionService, freezeService *freeze.Service) (*Server, error) {

	s := &Server{
		Server: http.Server{
			Addr: fmt.Sprintf(":%d", httpPort),
		},
		container:        container,
		executionService: executionService,
		freezeService:    freezeService,
		Port:             httpPort,
	}

	router := mux.NewRouter()
	router.HandleFunc("/freeze", s.HandleCreateFreeze).Methods(http.MethodPost)
	router.HandleFunc("/freeze", s.HandleListFreezes).Methods(http.MethodGet)
	router.HandleFunc("/freeze/evaluate", s.HandleEvaluateFreezes).Methods(http.MethodPost)
	router.HandleFunc("/freeze/{identifier}", s.HandleGetFreeze).Methods(http.MethodGet)
	router.HandleFunc("/freeze/{identifier}", s.HandleUpdateFreeze).Methods(http.MethodPut)
	router.HandleFunc("/freeze/{identifier}", s.HandleDeleteFreeze).Methods(http.MethodDelete)
	router.HandleFunc("/step/execute", s.HandleExecuteStep).Methods(http.MethodPost)
	router.HandleFunc("/execution/{planExecutionId}/freezes", s.HandleListFrozenExecutions).Methods(http.MethodGet)
	router.HandleFunc("/worker/task", s.HandlePollTasks).Methods(http.MethodGet)
	router.HandleFunc("/worker/result", s.HandleWorkerResult).Methods(http.MethodPost)
	router.Use(loggingMiddleware)
	s.Handler = router
	return s, nil
}

func (s *Server) Start() error {
	logger.Info("startting http server on", zap.Int("port", s.Port))
	if err := s.ListenAndServe(); err != nil {
		return err
	}
	return nil
}

func (s *Server) Stop() error {
	logger.Info("stopping http server")
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := s.Shutdown(ctx)
	if err != nil {
		logger.Error("error shutting down http server")
	}
	return nil
}
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Info(r.RequestURI)
		next.ServeHTTP(w, r)
	})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondOK(w http.ResponseWriter, message string) {

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)
	res, _ := json.Marshal(map[string]string{"message": message})
	w.Write(res)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
