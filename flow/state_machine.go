package flow

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/mohitkumar/shipyard/logger"
	"github.com/mohitkumar/shipyard/model"
	"github.com/mohitkumar/shipyard/persistence"
	"github.com/mohitkumar/shipyard/util"
	"go.uber.org/zap"
)

// Dispatcher hands a unit of work to the remote worker fleet and returns the
// correlation id the eventual result will carry.
type Dispatcher interface {
	Dispatch(task model.WorkerTask) (string, error)
}

// StepMachine runs every step variant through one shared lifecycle. Variants
// differ only in request building; forward and rollback never diverge in how
// they suspend, resume or record activities.
type StepMachine struct {
	dispatcher      Dispatcher
	activities      persistence.ActivityStore
	stateExecutions persistence.StateExecutionStore
}

func NewStepMachine(dispatcher Dispatcher, activities persistence.ActivityStore, stateExecutions persistence.StateExecutionStore) *StepMachine {
	return &StepMachine{
		dispatcher:      dispatcher,
		activities:      activities,
		stateExecutions: stateExecutions,
	}
}

func (m *StepMachine) Execute(step model.Step, ec *ExecutionContext) (*model.ExecutionResponse, error) {
	activity := model.ActivityRecord{
		Id:           uuid.New().String(),
		RunId:        ec.Ref.RunId,
		StepName:     step.Name,
		Status:       model.ACTIVITY_RUNNING,
		CommandUnits: commandUnits(step.Type),
	}
	if err := m.activities.Create(activity); err != nil {
		return nil, err
	}
	request, err := buildRequest(ec, step)
	if err != nil {
		// a request that can not be built is fatal to the step, no retry
		logger.Error("error building step request", zap.String("step", step.Name), zap.String("runId", ec.Ref.RunId), zap.Error(err))
		m.markActivity(activity.Id, model.ACTIVITY_FAILED)
		return &model.ExecutionResponse{
			Status:       model.STATUS_FAILED,
			ErrorMessage: err.Error(),
		}, nil
	}
	if step.Mode == model.FACILITATION_SYNC {
		return m.completeSync(step, ec, activity.Id, request)
	}
	return m.dispatchAsync(step, ec, activity.Id, request)
}

func (m *StepMachine) completeSync(step model.Step, ec *ExecutionContext, activityId string, request *builtRequest) (*model.ExecutionResponse, error) {
	if !model.IsRollbackStep(step.Type) && request.outputName != "" {
		if err := ec.SaveSweepingOutput(model.SCOPE_RUN, request.outputName, outputPayload(request, nil)); err != nil {
			m.markActivity(activityId, model.ACTIVITY_FAILED)
			return nil, err
		}
	}
	m.markActivity(activityId, model.ACTIVITY_SUCCESS)
	logger.Info("step completed", zap.String("step", step.Name), zap.String("runId", ec.Ref.RunId))
	return &model.ExecutionResponse{
		Status: model.STATUS_SUCCESS,
		Output: request.requestData,
	}, nil
}

func (m *StepMachine) dispatchAsync(step model.Step, ec *ExecutionContext, activityId string, request *builtRequest) (*model.ExecutionResponse, error) {
	task := model.WorkerTask{
		CorrelationId:  uuid.New().String(),
		RunId:          ec.Ref.RunId,
		StepName:       step.Name,
		StepType:       step.Type,
		RequestData:    request.requestData,
		TimeoutMinutes: step.TimeoutMinutes,
	}
	correlationId, err := m.dispatcher.Dispatch(task)
	if err != nil {
		m.markActivity(activityId, model.ACTIVITY_FAILED)
		return nil, err
	}
	stateData := model.StateExecutionData{
		RunId:              ec.Ref.RunId,
		StepName:           step.Name,
		StepType:           step.Type,
		ActivityId:         activityId,
		CorrelationIds:     []string{correlationId},
		DesiredCount:       request.desiredCount,
		PreviousCount:      request.previousCount,
		SweepingOutputName: request.outputName,
		TimeoutMinutes:     step.TimeoutMinutes,
	}
	if err := m.stateExecutions.Save(stateData); err != nil {
		m.markActivity(activityId, model.ACTIVITY_FAILED)
		return nil, err
	}
	logger.Info("step awaiting async response", zap.String("step", step.Name), zap.String("runId", ec.Ref.RunId), zap.String("correlationId", correlationId))
	return &model.ExecutionResponse{
		Status:             model.STATUS_AWAITING_ASYNC,
		Async:              true,
		CorrelationIds:     stateData.CorrelationIds,
		StateExecutionData: &stateData,
	}, nil
}

// HandleAsyncResponse resumes a suspended step with the worker results keyed
// by correlation id. The awaiting snapshot is consumed exactly once; a second
// delivery for the same step finds no snapshot and is rejected.
func (m *StepMachine) HandleAsyncResponse(ec *ExecutionContext, stepName string, responses map[string]model.WorkerResult) (*model.ExecutionResponse, error) {
	stateData, err := m.stateExecutions.Consume(ec.Ref.RunId, stepName)
	if err != nil {
		return nil, fmt.Errorf("no step awaiting async response for %s in run %s: %w", stepName, ec.Ref.RunId, err)
	}
	for correlationId := range responses {
		if !util.Contains(stateData.CorrelationIds, correlationId) {
			return nil, fmt.Errorf("correlation id %s does not belong to step %s in run %s", correlationId, stepName, ec.Ref.RunId)
		}
	}
	result, ok := responses[stateData.CorrelationIds[0]]
	if !ok {
		return nil, fmt.Errorf("missing response for correlation id %s of step %s", stateData.CorrelationIds[0], stepName)
	}
	if result.Status == model.WORKER_RESULT_FAILED {
		m.markActivity(stateData.ActivityId, model.ACTIVITY_FAILED)
		logger.Info("step failed", zap.String("step", stepName), zap.String("runId", ec.Ref.RunId), zap.String("error", result.ErrorMessage))
		return &model.ExecutionResponse{
			Status:       model.STATUS_FAILED,
			ErrorMessage: result.ErrorMessage,
		}, nil
	}
	if !model.IsRollbackStep(stateData.StepType) && stateData.SweepingOutputName != "" {
		payload := map[string]any{
			"previousCount": stateData.PreviousCount,
			"desiredCount":  stateData.DesiredCount,
		}
		for k, v := range result.Data {
			payload[k] = v
		}
		if err := ec.SaveSweepingOutput(model.SCOPE_RUN, stateData.SweepingOutputName, payload); err != nil {
			m.markActivity(stateData.ActivityId, model.ACTIVITY_FAILED)
			return nil, err
		}
	}
	m.markActivity(stateData.ActivityId, model.ACTIVITY_SUCCESS)
	logger.Info("step completed", zap.String("step", stepName), zap.String("runId", ec.Ref.RunId))
	return &model.ExecutionResponse{
		Status: model.STATUS_SUCCESS,
		Output: result.Data,
	}, nil
}

func (m *StepMachine) markActivity(id string, status model.ActivityStatus) {
	if err := m.activities.UpdateStatus(id, status); err != nil {
		logger.Error("error updating activity status", zap.String("id", id), zap.Error(err))
	}
}

func outputPayload(request *builtRequest, resultData map[string]any) map[string]any {
	payload := map[string]any{
		"previousCount": request.previousCount,
		"desiredCount":  request.desiredCount,
	}
	for k, v := range request.requestData {
		payload[k] = v
	}
	for k, v := range resultData {
		payload[k] = v
	}
	return payload
}

func commandUnits(stepType model.StepType) []string {
	switch stepType {
	case model.STEP_TYPE_SETUP:
		return []string{"Store Manifest", "Create Application"}
	case model.STEP_TYPE_RESIZE, model.STEP_TYPE_ROLLBACK:
		return []string{"Upsize Application", "Downsize Application"}
	case model.STEP_TYPE_MAP_ROUTE, model.STEP_TYPE_UNMAP_ROUTE:
		return []string{"Update Route Maps"}
	case model.STEP_TYPE_SWAP_ROUTES, model.STEP_TYPE_SWAP_ROUTES_ROLLBACK:
		return []string{"Swap Route Maps"}
	default:
		return nil
	}
}
