package redis

import (
	"context"

	"github.com/mohitkumar/shipyard/logger"
	"github.com/mohitkumar/shipyard/model"
	"github.com/mohitkumar/shipyard/persistence"
	"github.com/mohitkumar/shipyard/util"
	"go.uber.org/zap"
)

const FROZEN_EXECUTION_KEY string = "FROZEN_EXECUTION"

var _ persistence.FrozenExecutionStore = new(redisFrozenExecutionStore)

type redisFrozenExecutionStore struct {
	baseDao
	encoderDecoder util.EncoderDecoder[model.FrozenExecution]
}

func NewRedisFrozenExecutionStore(baseDao baseDao, encoderDecoder util.EncoderDecoder[model.FrozenExecution]) *redisFrozenExecutionStore {
	return &redisFrozenExecutionStore{
		baseDao:        baseDao,
		encoderDecoder: encoderDecoder,
	}
}

func (rf *redisFrozenExecutionStore) Save(execution model.FrozenExecution) error {
	key := rf.getNamespaceKey(FROZEN_EXECUTION_KEY, execution.AccountId, execution.PlanExecutionId)
	ctx := context.Background()
	data, err := rf.encoderDecoder.Encode(execution)
	if err != nil {
		return err
	}
	if err := rf.redisClient.RPush(ctx, key, string(data)).Err(); err != nil {
		logger.Error("error in saving frozen execution", zap.String("planExecutionId", execution.PlanExecutionId), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rf *redisFrozenExecutionStore) List(accountId string, planExecutionId string) ([]model.FrozenExecution, error) {
	key := rf.getNamespaceKey(FROZEN_EXECUTION_KEY, accountId, planExecutionId)
	ctx := context.Background()
	entries, err := rf.redisClient.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		logger.Error("error in listing frozen executions", zap.String("planExecutionId", planExecutionId), zap.Error(err))
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	executions := make([]model.FrozenExecution, 0, len(entries))
	for _, entry := range entries {
		execution, err := rf.encoderDecoder.Decode([]byte(entry))
		if err != nil {
			return nil, err
		}
		executions = append(executions, *execution)
	}
	return executions, nil
}
