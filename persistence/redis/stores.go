package redis

import (
	"github.com/mohitkumar/shipyard/model"
	"github.com/mohitkumar/shipyard/partition"
	"github.com/mohitkumar/shipyard/persistence"
	"github.com/mohitkumar/shipyard/util"
)

type Stores struct {
	SweepingOutputs  persistence.SweepingOutputStore
	Activities       persistence.ActivityStore
	StateExecutions  persistence.StateExecutionStore
	Freezes          persistence.FreezeStore
	FrozenExecutions persistence.FrozenExecutionStore
	TaskQueue        persistence.TaskQueue
}

type EncoderDecoders struct {
	SweepingOutput  util.EncoderDecoder[model.SweepingOutput]
	Activity        util.EncoderDecoder[model.ActivityRecord]
	StateExecution  util.EncoderDecoder[model.StateExecutionData]
	FreezeConfig    util.EncoderDecoder[model.FreezeConfig]
	FrozenExecution util.EncoderDecoder[model.FrozenExecution]
}

// NewStores wires every redis backed store over one shared client.
func NewStores(conf Config, partitioner *partition.Partitioner, encDecs EncoderDecoders) *Stores {
	base := newBaseDao(conf, partitioner)
	return &Stores{
		SweepingOutputs:  NewRedisSweepingOutputStore(*base, encDecs.SweepingOutput),
		Activities:       NewRedisActivityStore(*base, encDecs.Activity),
		StateExecutions:  NewRedisStateExecutionStore(*base, encDecs.StateExecution),
		Freezes:          NewRedisFreezeStore(*base, encDecs.FreezeConfig),
		FrozenExecutions: NewRedisFrozenExecutionStore(*base, encDecs.FrozenExecution),
		TaskQueue:        NewRedisTaskQueue(*base),
	}
}
