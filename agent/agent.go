package agent

import (
	"sync"

	"github.com/mohitkumar/shipyard/config"
	"github.com/mohitkumar/shipyard/container"
	"github.com/mohitkumar/shipyard/dispatch"
	"github.com/mohitkumar/shipyard/executor"
	"github.com/mohitkumar/shipyard/flow"
	"github.com/mohitkumar/shipyard/freeze"
	"github.com/mohitkumar/shipyard/logger"
	"github.com/mohitkumar/shipyard/rest"
	"github.com/mohitkumar/shipyard/service"
)

type Agent struct {
	Config               config.Config
	container            *container.DIContiner
	dispatcher           *dispatch.QueueDispatcher
	stepMachine          *flow.StepMachine
	resultExecutor       *executor.ResultExecutor
	timeoutExecutor      *executor.TimeoutExecutor
	freezeService        *freeze.Service
	stepExecutionService *service.StepExecutionService
	httpServer           *rest.Server
	shutdown             bool
	shutdowns            chan struct{}
	shutdownLock         sync.Mutex
	wg                   sync.WaitGroup
}

func New(config config.Config) (*Agent, error) {
	a := &Agent{
		Config:    config,
		shutdowns: make(chan struct{}),
	}
	setup := []func() error{
		a.setupContainer,
		a.setupStepMachine,
		a.setupResultExecutor,
		a.setupServices,
		a.setupHttpServer,
	}
	for _, fn := range setup {
		if err := fn(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *Agent) setupContainer() error {
	a.container = container.NewDiContainer()
	a.container.Init(a.Config)
	return nil
}

func (a *Agent) setupStepMachine() error {
	a.dispatcher = dispatch.NewQueueDispatcher(a.container.GetTaskQueue(), a.container.WorkerTaskEncDec)
	a.stepMachine = flow.NewStepMachine(a.dispatcher, a.container.GetActivityStore(), a.container.GetStateExecutionStore())
	return nil
}

func (a *Agent) setupResultExecutor() error {
	a.resultExecutor = executor.NewResultExecutor(a.stepMachine, a.container.GetSweepingOutputStore(), a.Config.CorrelatorCapacity, &a.wg)
	if err := a.resultExecutor.Start(); err != nil {
		return err
	}
	a.timeoutExecutor = executor.NewTimeoutExecutor(a.resultExecutor, &a.wg)
	return a.timeoutExecutor.Start()
}

func (a *Agent) setupServices() error {
	registry := freeze.NewStoreRegistry(a.container.GetFreezeStore(), a.container.GetFreezeSummaryCache())
	evaluator := freeze.NewEvaluator(registry)
	recorder := freeze.NewRecorder(a.container.GetFrozenExecutionStore())
	a.freezeService = freeze.NewService(a.container.GetFreezeStore(), a.container.GetFreezeSummaryCache())
	a.stepExecutionService = service.NewStepExecutionService(a.stepMachine, evaluator, recorder, a.resultExecutor, a.container.GetSweepingOutputStore(), a.container.GetTaskQueue(), a.container.WorkerTaskEncDec)
	return nil
}

func (a *Agent) setupHttpServer() error {
	var err error
	a.httpServer, err = rest.NewServer(a.Config.HttpPort, a.container, a.stepExecutionService, a.freezeService)
	if err != nil {
		return err
	}
	return nil
}

func (a *Agent) Start() error {
	var err error
	go func() error {
		err = a.httpServer.Start()
		if err != nil {
			_ = a.Shutdown()
			panic(err)
		}
		return nil
	}()
	return nil
}

func (a *Agent) Shutdown() error {
	logger.Info("shutting down server")
	a.shutdownLock.Lock()
	defer a.shutdownLock.Unlock()
	if a.shutdown {
		return nil
	}
	a.shutdown = true
	close(a.shutdowns)

	shutdown := []func() error{
		a.timeoutExecutor.Stop,
		a.resultExecutor.Stop,
		a.httpServer.Stop,
	}
	for _, fn := range shutdown {
		if err := fn(); err != nil {
			return err
		}
	}
	logger.Info("waiting for all services to shutdown...")
	a.wg.Wait()
	return nil
}
