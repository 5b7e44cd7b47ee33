package container

import (
	"time"

	"github.com/mohitkumar/shipyard/cache"
	"github.com/mohitkumar/shipyard/config"
	"github.com/mohitkumar/shipyard/model"
	"github.com/mohitkumar/shipyard/partition"
	"github.com/mohitkumar/shipyard/persistence"
	rd "github.com/mohitkumar/shipyard/persistence/redis"
	"github.com/mohitkumar/shipyard/util"
)

type DIContiner struct {
	initialized          bool
	sweepingOutputStore  persistence.SweepingOutputStore
	activityStore        persistence.ActivityStore
	stateExecutionStore  persistence.StateExecutionStore
	freezeStore          persistence.FreezeStore
	frozenExecutionStore persistence.FrozenExecutionStore
	taskQueue            persistence.TaskQueue
	freezeSummaryCache   *cache.FreezeSummaryCache
	WorkerTaskEncDec     util.EncoderDecoder[model.WorkerTask]
	WorkerResultEncDec   util.EncoderDecoder[model.WorkerResult]
}

func NewDiContainer() *DIContiner {
	return &DIContiner{
		initialized: false,
	}
}

func (d *DIContiner) setInitialized() {
	d.initialized = true
}

func (d *DIContiner) Init(conf config.Config) {
	defer d.setInitialized()

	d.WorkerTaskEncDec = util.NewJsonEncoderDecoder[model.WorkerTask]()
	d.WorkerResultEncDec = util.NewJsonEncoderDecoder[model.WorkerResult]()

	switch conf.StorageType {
	case config.STORAGE_TYPE_REDIS:
		partitioner := partition.NewPartitioner(conf.PartitionCount)
		stores := rd.NewStores(rd.Config{
			Addrs:          conf.RedisConfig.Addrs,
			Namespace:      conf.RedisConfig.Namespace,
			PartitionCount: conf.PartitionCount,
		}, partitioner, rd.EncoderDecoders{
			SweepingOutput:  util.NewJsonEncoderDecoder[model.SweepingOutput](),
			Activity:        util.NewJsonEncoderDecoder[model.ActivityRecord](),
			StateExecution:  util.NewJsonEncoderDecoder[model.StateExecutionData](),
			FreezeConfig:    util.NewJsonEncoderDecoder[model.FreezeConfig](),
			FrozenExecution: util.NewJsonEncoderDecoder[model.FrozenExecution](),
		})
		d.sweepingOutputStore = stores.SweepingOutputs
		d.activityStore = stores.Activities
		d.stateExecutionStore = stores.StateExecutions
		d.freezeStore = stores.Freezes
		d.frozenExecutionStore = stores.FrozenExecutions
		d.taskQueue = stores.TaskQueue
	}
	d.freezeSummaryCache = cache.NewFreezeSummaryCache(time.Duration(conf.FreezeCacheSeconds) * time.Second)
}

func (d *DIContiner) GetSweepingOutputStore() persistence.SweepingOutputStore {
	if !d.initialized {
		panic("persistence not initalized")
	}
	return d.sweepingOutputStore
}

func (d *DIContiner) GetActivityStore() persistence.ActivityStore {
	if !d.initialized {
		panic("persistence not initalized")
	}
	return d.activityStore
}

func (d *DIContiner) GetStateExecutionStore() persistence.StateExecutionStore {
	if !d.initialized {
		panic("persistence not initalized")
	}
	return d.stateExecutionStore
}

func (d *DIContiner) GetFreezeStore() persistence.FreezeStore {
	if !d.initialized {
		panic("persistence not initalized")
	}
	return d.freezeStore
}

func (d *DIContiner) GetFrozenExecutionStore() persistence.FrozenExecutionStore {
	if !d.initialized {
		panic("persistence not initalized")
	}
	return d.frozenExecutionStore
}

func (d *DIContiner) GetTaskQueue() persistence.TaskQueue {
	if !d.initialized {
		panic("persistence not initalized")
	}
	return d.taskQueue
}

func (d *DIContiner) GetFreezeSummaryCache() *cache.FreezeSummaryCache {
	if !d.initialized {
		panic("persistence not initalized")
	}
	return d.freezeSummaryCache
}
