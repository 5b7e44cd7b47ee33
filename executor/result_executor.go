package executor

import (
	"fmt"
	"sync"
	"time"

	"github.com/mohitkumar/shipyard/flow"
	"github.com/mohitkumar/shipyard/logger"
	"github.com/mohitkumar/shipyard/model"
	"github.com/mohitkumar/shipyard/persistence"
	"github.com/mohitkumar/shipyard/util"
	"go.uber.org/zap"
)

// PendingStep is what the correlator needs to rebuild an ExecutionContext
// when a worker result arrives for a suspended step. A TimeoutMinutes of zero
// means the step waits forever.
type PendingStep struct {
	StepName       string
	Ref            model.DeploymentRef
	Data           map[string]any
	TimeoutMinutes int
}

type pendingEntry struct {
	step     PendingStep
	deadline time.Time
}

var _ Executor = new(ResultExecutor)

// ResultExecutor matches inbound worker results to the steps awaiting them
// and resumes each matched step on its worker goroutine. A result with no
// pending registration is stale and dropped; a registered result whose
// awaiting snapshot is already gone is a real inconsistency and surfaces
// loudly.
type ResultExecutor struct {
	machine  *flow.StepMachine
	outputs  persistence.SweepingOutputStore
	capacity int
	worker   *util.Worker
	wg       *sync.WaitGroup
	mu       sync.Mutex
	pending  map[string]pendingEntry
}

func NewResultExecutor(machine *flow.StepMachine, outputs persistence.SweepingOutputStore, capacity int, wg *sync.WaitGroup) *ResultExecutor {
	return &ResultExecutor{
		machine:  machine,
		outputs:  outputs,
		capacity: capacity,
		wg:       wg,
		pending:  make(map[string]pendingEntry),
	}
}

func (ex *ResultExecutor) Register(correlationId string, pending PendingStep) {
	var deadline time.Time
	if pending.TimeoutMinutes > 0 {
		deadline = time.Now().Add(time.Duration(pending.TimeoutMinutes) * time.Minute)
	}
	ex.mu.Lock()
	defer ex.mu.Unlock()
	ex.pending[correlationId] = pendingEntry{step: pending, deadline: deadline}
}

// Expired returns the correlation ids of registered steps whose deadline has
// passed. Entries stay registered; the caller fails them through Notify so
// expiry takes the same path as a real worker result.
func (ex *ResultExecutor) Expired(now time.Time) []string {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	var expired []string
	for correlationId, entry := range ex.pending {
		if !entry.deadline.IsZero() && now.After(entry.deadline) {
			expired = append(expired, correlationId)
		}
	}
	return expired
}

// Notify queues a worker result for correlation. The caller's thread is
// released immediately; resumption happens on the executor's worker.
func (ex *ResultExecutor) Notify(result model.WorkerResult) error {
	if result.CorrelationId == "" {
		return fmt.Errorf("worker result without correlation id")
	}
	ex.worker.Sender() <- result
	return nil
}

func (ex *ResultExecutor) handler(task util.Task) error {
	result, ok := task.(model.WorkerResult)
	if !ok {
		return fmt.Errorf("can not handle task of type other than model.WorkerResult")
	}
	ex.mu.Lock()
	entry, found := ex.pending[result.CorrelationId]
	if found {
		delete(ex.pending, result.CorrelationId)
	}
	ex.mu.Unlock()
	if !found {
		logger.Info("no pending step for correlation id, dropping result", zap.String("correlationId", result.CorrelationId))
		return nil
	}
	pending := entry.step
	ec := flow.NewExecutionContext(pending.Ref, pending.Data, ex.outputs)
	responses := map[string]model.WorkerResult{result.CorrelationId: result}
	resp, err := ex.machine.HandleAsyncResponse(ec, pending.StepName, responses)
	if err != nil {
		logger.Error("error resuming step", zap.String("step", pending.StepName), zap.String("runId", pending.Ref.RunId), zap.Error(err))
		return err
	}
	logger.Info("step resumed", zap.String("step", pending.StepName), zap.String("runId", pending.Ref.RunId), zap.String("status", string(resp.Status)))
	return nil
}

func (ex *ResultExecutor) Start() error {
	ex.worker = util.NewWorker("result-executor", ex.wg, ex.handler, ex.capacity)
	ex.worker.Start()
	logger.Info("result executor started")
	return nil
}

func (ex *ResultExecutor) Stop() error {
	ex.worker.Stop()
	return nil
}

func (ex *ResultExecutor) Name() string {
	return "result-executor"
}
