package executor

import (
	"sync"
	"time"

	"github.com/mohitkumar/shipyard/logger"
	"github.com/mohitkumar/shipyard/model"
	"github.com/mohitkumar/shipyard/util"
	"go.uber.org/zap"
)

const timeoutSweepIntervalSeconds = 30

var _ Executor = new(TimeoutExecutor)

// TimeoutExecutor sweeps the result executor's registrations and fails every
// step that outlived its timeout. The synthesized failure goes through Notify
// so a late real result afterwards is just a stale drop.
type TimeoutExecutor struct {
	resultExecutor *ResultExecutor
	tickWorker     *util.TickWorker
	stop           chan struct{}
	wg             *sync.WaitGroup
}

func NewTimeoutExecutor(resultExecutor *ResultExecutor, wg *sync.WaitGroup) *TimeoutExecutor {
	return &TimeoutExecutor{
		resultExecutor: resultExecutor,
		stop:           make(chan struct{}),
		wg:             wg,
	}
}

func (ex *TimeoutExecutor) sweep() {
	expired := ex.resultExecutor.Expired(time.Now())
	for _, correlationId := range expired {
		logger.Info("step timed out waiting for worker result", zap.String("correlationId", correlationId))
		err := ex.resultExecutor.Notify(model.WorkerResult{
			CorrelationId: correlationId,
			Status:        model.WORKER_RESULT_FAILED,
			ErrorMessage:  "step execution timed out",
		})
		if err != nil {
			logger.Error("error failing timed out step", zap.String("correlationId", correlationId), zap.Error(err))
		}
	}
}

func (ex *TimeoutExecutor) Start() error {
	ex.tickWorker = util.NewTickWorker("timeout-executor", timeoutSweepIntervalSeconds, ex.stop, ex.sweep, ex.wg)
	ex.tickWorker.Start()
	return nil
}

func (ex *TimeoutExecutor) Stop() error {
	ex.tickWorker.Stop()
	return nil
}

func (ex *TimeoutExecutor) Name() string {
	return "timeout-executor"
}
