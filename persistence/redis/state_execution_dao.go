package redis

import (
	"context"
	"errors"

	rd "github.com/go-redis/redis/v9"
	"github.com/mohitkumar/shipyard/logger"
	"github.com/mohitkumar/shipyard/model"
	"github.com/mohitkumar/shipyard/persistence"
	"github.com/mohitkumar/shipyard/util"
	"go.uber.org/zap"
)

const STATE_EXECUTION_KEY string = "STATE_EXECUTION"

var _ persistence.StateExecutionStore = new(redisStateExecutionStore)

type redisStateExecutionStore struct {
	baseDao
	encoderDecoder util.EncoderDecoder[model.StateExecutionData]
}

func NewRedisStateExecutionStore(baseDao baseDao, encoderDecoder util.EncoderDecoder[model.StateExecutionData]) *redisStateExecutionStore {
	return &redisStateExecutionStore{
		baseDao:        baseDao,
		encoderDecoder: encoderDecoder,
	}
}

func (rs *redisStateExecutionStore) Save(data model.StateExecutionData) error {
	key := rs.getNamespaceKey(STATE_EXECUTION_KEY, data.RunId)
	ctx := context.Background()
	encoded, err := rs.encoderDecoder.Encode(data)
	if err != nil {
		return err
	}
	if err := rs.redisClient.HSet(ctx, key, data.StepName, string(encoded)).Err(); err != nil {
		logger.Error("error in saving state execution data", zap.String("runId", data.RunId), zap.String("step", data.StepName), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

// Consume removes the snapshot while reading it. A second Consume for the
// same step finds nothing and reports NotFoundError, which is how duplicate
// async deliveries get rejected.
func (rs *redisStateExecutionStore) Consume(runId string, stepName string) (*model.StateExecutionData, error) {
	key := rs.getNamespaceKey(STATE_EXECUTION_KEY, runId)
	ctx := context.Background()
	dataStr, err := rs.redisClient.HGet(ctx, key, stepName).Result()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return nil, persistence.NotFoundError{Kind: "state execution data", Id: stepName}
		}
		logger.Error("error in getting state execution data", zap.String("runId", runId), zap.String("step", stepName), zap.Error(err))
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	removed, err := rs.redisClient.HDel(ctx, key, stepName).Result()
	if err != nil {
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	if removed == 0 {
		return nil, persistence.NotFoundError{Kind: "state execution data", Id: stepName}
	}
	return rs.encoderDecoder.Decode([]byte(dataStr))
}
