package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mohitkumar/shipyard/dispatch"
	"github.com/mohitkumar/shipyard/executor"
	"github.com/mohitkumar/shipyard/flow"
	"github.com/mohitkumar/shipyard/freeze"
	"github.com/mohitkumar/shipyard/logger"
	"github.com/mohitkumar/shipyard/model"
	"github.com/mohitkumar/shipyard/persistence"
	"github.com/mohitkumar/shipyard/util"
	"go.uber.org/zap"
)

// StepExecutionService is the entry point for driving a deployment step. It
// gates every execution on the freeze evaluator before handing the step to
// the state machine, and registers async steps with the result executor so
// worker results find their way back.
type StepExecutionService struct {
	machine        *flow.StepMachine
	evaluator      *freeze.Evaluator
	recorder       *freeze.Recorder
	resultExecutor *executor.ResultExecutor
	outputs        persistence.SweepingOutputStore
	taskQueue      persistence.TaskQueue
	taskEncDec     util.EncoderDecoder[model.WorkerTask]
}

func NewStepExecutionService(machine *flow.StepMachine, evaluator *freeze.Evaluator, recorder *freeze.Recorder, resultExecutor *executor.ResultExecutor, outputs persistence.SweepingOutputStore, taskQueue persistence.TaskQueue, taskEncDec util.EncoderDecoder[model.WorkerTask]) *StepExecutionService {
	return &StepExecutionService{
		machine:        machine,
		evaluator:      evaluator,
		recorder:       recorder,
		resultExecutor: resultExecutor,
		outputs:        outputs,
		taskQueue:      taskQueue,
		taskEncDec:     taskEncDec,
	}
}

func (s *StepExecutionService) Execute(req model.StepExecutionRequest) (*model.ExecutionResponse, error) {
	entityMap := buildEntityMap(req)
	active, err := s.evaluator.IsBlocked(req.Ref.AccountId, req.Ref.OrgId, req.Ref.ProjectId, req.Ref.PipelineId, entityMap)
	if err != nil {
		return nil, err
	}
	if len(active) > 0 {
		if err := s.recorder.Record(&req.Ref, active); err != nil {
			logger.Error("error recording frozen execution", zap.String("runId", req.Ref.RunId), zap.Error(err))
		}
		identifiers := make([]string, 0, len(active))
		for _, summary := range active {
			identifiers = append(identifiers, summary.Identifier)
		}
		logger.Info("step rejected by deployment freeze", zap.String("step", req.Step.Name), zap.String("runId", req.Ref.RunId), zap.Strings("freezes", identifiers))
		return &model.ExecutionResponse{
			Status:       model.STATUS_FAILED,
			ErrorMessage: fmt.Sprintf("deployment freeze active: %s", strings.Join(identifiers, ", ")),
		}, nil
	}
	ec := flow.NewExecutionContext(req.Ref, req.Input, s.outputs)
	resp, err := s.machine.Execute(req.Step, ec)
	if err != nil {
		return nil, err
	}
	if resp.Async {
		pending := executor.PendingStep{
			StepName:       req.Step.Name,
			Ref:            req.Ref,
			Data:           req.Input,
			TimeoutMinutes: req.Step.TimeoutMinutes,
		}
		for _, correlationId := range resp.CorrelationIds {
			s.resultExecutor.Register(correlationId, pending)
		}
	}
	return resp, nil
}

func (s *StepExecutionService) HandleWorkerResult(result model.WorkerResult) error {
	return s.resultExecutor.Notify(result)
}

// PollTasks drains up to batchSize dispatched tasks for a worker. An empty
// queue yields an empty batch, not an error.
func (s *StepExecutionService) PollTasks(batchSize int) ([]model.WorkerTask, error) {
	messages, err := s.taskQueue.Pop(dispatch.TASK_QUEUE_NAME, batchSize)
	if err != nil {
		var empty persistence.EmptyQueueError
		if errors.As(err, &empty) {
			return []model.WorkerTask{}, nil
		}
		return nil, err
	}
	tasks := make([]model.WorkerTask, 0, len(messages))
	for _, message := range messages {
		task, err := s.taskEncDec.Decode([]byte(message))
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, nil
}

func (s *StepExecutionService) EvaluateFreezes(req model.FreezeEvaluateRequest) ([]model.FreezeSummary, error) {
	return s.evaluator.IsBlocked(req.AccountId, req.OrgId, req.ProjectId, req.PipelineId, req.EntityMap)
}

func buildEntityMap(req model.StepExecutionRequest) freeze.EntityMap {
	entityMap := make(freeze.EntityMap, len(req.EntityMap)+2)
	for entityType, ids := range req.EntityMap {
		entityMap[entityType] = ids
	}
	if req.Ref.AppId != "" {
		entityMap[model.ENTITY_TYPE_SERVICE] = append(entityMap[model.ENTITY_TYPE_SERVICE], req.Ref.AppId)
	}
	if req.Ref.EnvId != "" {
		entityMap[model.ENTITY_TYPE_ENVIRONMENT] = append(entityMap[model.ENTITY_TYPE_ENVIRONMENT], req.Ref.EnvId)
	}
	return entityMap
}
