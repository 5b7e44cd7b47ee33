package flow

import (
	"fmt"
	"testing"

	"github.com/mohitkumar/shipyard/model"
	"github.com/mohitkumar/shipyard/persistence"
	"github.com/stretchr/testify/require"
)

type fakeDispatcher struct {
	tasks []model.WorkerTask
	err   error
}

func (f *fakeDispatcher) Dispatch(task model.WorkerTask) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.tasks = append(f.tasks, task)
	return task.CorrelationId, nil
}

type fakeActivityStore struct {
	activities map[string]model.ActivityRecord
}

func newFakeActivityStore() *fakeActivityStore {
	return &fakeActivityStore{activities: make(map[string]model.ActivityRecord)}
}

func (f *fakeActivityStore) Create(activity model.ActivityRecord) error {
	f.activities[activity.Id] = activity
	return nil
}

func (f *fakeActivityStore) UpdateStatus(id string, status model.ActivityStatus) error {
	activity, ok := f.activities[id]
	if !ok {
		return persistence.NotFoundError{Kind: "activity", Id: id}
	}
	activity.Status = status
	f.activities[id] = activity
	return nil
}

func (f *fakeActivityStore) Get(id string) (*model.ActivityRecord, error) {
	activity, ok := f.activities[id]
	if !ok {
		return nil, persistence.NotFoundError{Kind: "activity", Id: id}
	}
	return &activity, nil
}

func (f *fakeActivityStore) statusOf(t *testing.T, stepName string) model.ActivityStatus {
	t.Helper()
	for _, activity := range f.activities {
		if activity.StepName == stepName {
			return activity.Status
		}
	}
	t.Fatalf("no activity recorded for step %s", stepName)
	return ""
}

type fakeStateStore struct {
	states map[string]model.StateExecutionData
}

func newFakeStateStore() *fakeStateStore {
	return &fakeStateStore{states: make(map[string]model.StateExecutionData)}
}

func (f *fakeStateStore) key(runId string, stepName string) string {
	return runId + ":" + stepName
}

func (f *fakeStateStore) Save(data model.StateExecutionData) error {
	f.states[f.key(data.RunId, data.StepName)] = data
	return nil
}

func (f *fakeStateStore) Consume(runId string, stepName string) (*model.StateExecutionData, error) {
	key := f.key(runId, stepName)
	data, ok := f.states[key]
	if !ok {
		return nil, persistence.NotFoundError{Kind: "state execution", Id: key}
	}
	delete(f.states, key)
	return &data, nil
}

type fakeOutputStore struct {
	outputs map[string]model.SweepingOutput
}

func newFakeOutputStore() *fakeOutputStore {
	return &fakeOutputStore{outputs: make(map[string]model.SweepingOutput)}
}

func (f *fakeOutputStore) key(scope model.SweepingOutputScope, name string, runId string) string {
	return fmt.Sprintf("%s:%s:%s", scope, name, runId)
}

func (f *fakeOutputStore) Save(output model.SweepingOutput) error {
	key := f.key(output.Scope, output.Name, output.RunId)
	if _, ok := f.outputs[key]; ok {
		return persistence.DuplicateKeyError{Kind: "sweeping output", Key: key}
	}
	f.outputs[key] = output
	return nil
}

func (f *fakeOutputStore) Get(scope model.SweepingOutputScope, name string, runId string) (*model.SweepingOutput, error) {
	output, ok := f.outputs[f.key(scope, name, runId)]
	if !ok {
		return nil, persistence.NotFoundError{Kind: "sweeping output", Id: name}
	}
	return &output, nil
}

type machineFixture struct {
	machine    *StepMachine
	dispatcher *fakeDispatcher
	activities *fakeActivityStore
	states     *fakeStateStore
	outputs    *fakeOutputStore
	ref        model.DeploymentRef
}

func newMachineFixture() *machineFixture {
	dispatcher := &fakeDispatcher{}
	activities := newFakeActivityStore()
	states := newFakeStateStore()
	outputs := newFakeOutputStore()
	return &machineFixture{
		machine:    NewStepMachine(dispatcher, activities, states),
		dispatcher: dispatcher,
		activities: activities,
		states:     states,
		outputs:    outputs,
		ref: model.DeploymentRef{
			AccountId:  "acc",
			PipelineId: "pipe",
			StageId:    "stage1",
			RunId:      "run1",
			AppId:      "orders",
			EnvId:      "prod",
			InfraId:    "cf-space",
		},
	}
}

func (fx *machineFixture) context() *ExecutionContext {
	return NewExecutionContext(fx.ref, nil, fx.outputs)
}

func setupStep(mode model.FacilitationMode) model.Step {
	return model.Step{
		Name:         "app-setup",
		Type:         model.STEP_TYPE_SETUP,
		Mode:         mode,
		MaxInstances: 4,
		Routes:       []string{"orders.example.com"},
	}
}

func TestStepMachineSyncSuccess(t *testing.T) {
	fx := newMachineFixture()
	resp, err := fx.machine.Execute(setupStep(model.FACILITATION_SYNC), fx.context())
	require.NoError(t, err)
	require.Equal(t, model.STATUS_SUCCESS, resp.Status)
	require.False(t, resp.Async)
	require.Equal(t, model.ACTIVITY_SUCCESS, fx.activities.statusOf(t, "app-setup"))

	name := SweepingOutputName(fx.ref, model.STEP_TYPE_SETUP, false)
	output, err := fx.outputs.Get(model.SCOPE_RUN, name, "run1")
	require.NoError(t, err)
	require.Equal(t, 4, output.Payload["desiredCount"])
}

func TestStepMachineBuildFailure(t *testing.T) {
	fx := newMachineFixture()
	step := setupStep(model.FACILITATION_SYNC)
	step.MaxInstances = 0
	resp, err := fx.machine.Execute(step, fx.context())
	require.NoError(t, err)
	require.Equal(t, model.STATUS_FAILED, resp.Status)
	require.NotEmpty(t, resp.ErrorMessage)
	require.Equal(t, model.ACTIVITY_FAILED, fx.activities.statusOf(t, "app-setup"))
	require.Empty(t, fx.dispatcher.tasks)
}

func TestStepMachineAsyncDispatch(t *testing.T) {
	fx := newMachineFixture()
	resp, err := fx.machine.Execute(setupStep(model.FACILITATION_TASK), fx.context())
	require.NoError(t, err)
	require.Equal(t, model.STATUS_AWAITING_ASYNC, resp.Status)
	require.True(t, resp.Async)
	require.Len(t, resp.CorrelationIds, 1)
	require.NotNil(t, resp.StateExecutionData)
	require.Len(t, fx.dispatcher.tasks, 1)
	require.Equal(t, model.ACTIVITY_RUNNING, fx.activities.statusOf(t, "app-setup"))

	// no output until the worker responds
	name := SweepingOutputName(fx.ref, model.STEP_TYPE_SETUP, false)
	_, err = fx.outputs.Get(model.SCOPE_RUN, name, "run1")
	require.Error(t, err)
}

func TestStepMachineAsyncResume(t *testing.T) {
	fx := newMachineFixture()
	resp, err := fx.machine.Execute(setupStep(model.FACILITATION_TASK), fx.context())
	require.NoError(t, err)
	correlationId := resp.CorrelationIds[0]

	responses := map[string]model.WorkerResult{
		correlationId: {
			CorrelationId: correlationId,
			Status:        model.WORKER_RESULT_SUCCESS,
			Data:          map[string]any{"activeInstances": 4},
		},
	}
	resumed, err := fx.machine.HandleAsyncResponse(fx.context(), "app-setup", responses)
	require.NoError(t, err)
	require.Equal(t, model.STATUS_SUCCESS, resumed.Status)
	require.Equal(t, model.ACTIVITY_SUCCESS, fx.activities.statusOf(t, "app-setup"))

	name := SweepingOutputName(fx.ref, model.STEP_TYPE_SETUP, false)
	output, err := fx.outputs.Get(model.SCOPE_RUN, name, "run1")
	require.NoError(t, err)
	require.Equal(t, 4, output.Payload["desiredCount"])
	require.Equal(t, 4, output.Payload["activeInstances"])
}

func TestStepMachineDuplicateDeliveryRejected(t *testing.T) {
	fx := newMachineFixture()
	resp, err := fx.machine.Execute(setupStep(model.FACILITATION_TASK), fx.context())
	require.NoError(t, err)
	correlationId := resp.CorrelationIds[0]

	responses := map[string]model.WorkerResult{
		correlationId: {CorrelationId: correlationId, Status: model.WORKER_RESULT_SUCCESS},
	}
	_, err = fx.machine.HandleAsyncResponse(fx.context(), "app-setup", responses)
	require.NoError(t, err)

	_, err = fx.machine.HandleAsyncResponse(fx.context(), "app-setup", responses)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no step awaiting async response")
}

func TestStepMachineForeignCorrelationIdRejected(t *testing.T) {
	fx := newMachineFixture()
	_, err := fx.machine.Execute(setupStep(model.FACILITATION_TASK), fx.context())
	require.NoError(t, err)

	responses := map[string]model.WorkerResult{
		"foreign-id": {CorrelationId: "foreign-id", Status: model.WORKER_RESULT_SUCCESS},
	}
	_, err = fx.machine.HandleAsyncResponse(fx.context(), "app-setup", responses)
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not belong to step")
}

func TestStepMachineWorkerFailure(t *testing.T) {
	fx := newMachineFixture()
	resp, err := fx.machine.Execute(setupStep(model.FACILITATION_TASK), fx.context())
	require.NoError(t, err)
	correlationId := resp.CorrelationIds[0]

	responses := map[string]model.WorkerResult{
		correlationId: {
			CorrelationId: correlationId,
			Status:        model.WORKER_RESULT_FAILED,
			ErrorMessage:  "push failed",
		},
	}
	resumed, err := fx.machine.HandleAsyncResponse(fx.context(), "app-setup", responses)
	require.NoError(t, err)
	require.Equal(t, model.STATUS_FAILED, resumed.Status)
	require.Equal(t, "push failed", resumed.ErrorMessage)
	require.Equal(t, model.ACTIVITY_FAILED, fx.activities.statusOf(t, "app-setup"))
}

func TestStepMachineResizeReadsSetupOutput(t *testing.T) {
	fx := newMachineFixture()
	setupName := SweepingOutputName(fx.ref, model.STEP_TYPE_SETUP, false)
	require.NoError(t, fx.outputs.Save(model.SweepingOutput{
		Scope: model.SCOPE_RUN,
		Name:  setupName,
		RunId: "run1",
		Payload: map[string]any{
			"maxInstances":    10,
			"activeInstances": 10,
		},
	}))

	step := model.Step{
		Name:          "app-resize",
		Type:          model.STEP_TYPE_RESIZE,
		Mode:          model.FACILITATION_SYNC,
		InstanceCount: 50,
		InstanceUnit:  model.INSTANCE_UNIT_PERCENTAGE,
	}
	resp, err := fx.machine.Execute(step, fx.context())
	require.NoError(t, err)
	require.Equal(t, model.STATUS_SUCCESS, resp.Status)
	require.Equal(t, 5, resp.Output["desiredCount"])
	require.Equal(t, 5, resp.Output["downsizeCount"])

	deployName := SweepingOutputName(fx.ref, model.STEP_TYPE_RESIZE, false)
	output, err := fx.outputs.Get(model.SCOPE_RUN, deployName, "run1")
	require.NoError(t, err)
	require.Equal(t, 5, output.Payload["desiredCount"])
	require.Equal(t, 10, output.Payload["previousCount"])
}

func TestStepMachineRollbackInvertsAndNeverWrites(t *testing.T) {
	fx := newMachineFixture()
	deployName := SweepingOutputName(fx.ref, model.STEP_TYPE_RESIZE, false)
	require.NoError(t, fx.outputs.Save(model.SweepingOutput{
		Scope: model.SCOPE_RUN,
		Name:  deployName,
		RunId: "run1",
		Payload: map[string]any{
			"desiredCount":  5,
			"previousCount": 10,
		},
	}))
	outputsBefore := len(fx.outputs.outputs)

	step := model.Step{
		Name: "app-rollback",
		Type: model.STEP_TYPE_ROLLBACK,
		Mode: model.FACILITATION_SYNC,
	}
	resp, err := fx.machine.Execute(step, fx.context())
	require.NoError(t, err)
	require.Equal(t, model.STATUS_SUCCESS, resp.Status)
	require.Equal(t, 10, resp.Output["desiredCount"])
	require.Equal(t, 5, resp.Output["downsizeCount"])
	require.Equal(t, true, resp.Output["rollback"])
	require.Len(t, fx.outputs.outputs, outputsBefore)
}

func TestStepMachineRollbackReadsForwardStage(t *testing.T) {
	fx := newMachineFixture()
	forwardRef := fx.ref
	deployName := SweepingOutputName(forwardRef, model.STEP_TYPE_RESIZE, false)
	require.NoError(t, fx.outputs.Save(model.SweepingOutput{
		Scope: model.SCOPE_RUN,
		Name:  deployName,
		RunId: "run1",
		Payload: map[string]any{
			"desiredCount":  5,
			"previousCount": 10,
		},
	}))

	// rollback runs in its own stage but addresses the forward stage's output
	fx.ref.StageId = "rollback-stage"
	fx.ref.ForwardStageId = "stage1"
	step := model.Step{
		Name: "app-rollback",
		Type: model.STEP_TYPE_ROLLBACK,
		Mode: model.FACILITATION_SYNC,
	}
	resp, err := fx.machine.Execute(step, fx.context())
	require.NoError(t, err)
	require.Equal(t, model.STATUS_SUCCESS, resp.Status)
	require.Equal(t, 10, resp.Output["desiredCount"])
}
