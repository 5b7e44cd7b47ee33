package redis

import (
	"context"
	"errors"
	"strconv"

	rd "github.com/go-redis/redis/v9"
	"github.com/mohitkumar/shipyard/logger"
	"github.com/mohitkumar/shipyard/persistence"
	"go.uber.org/zap"
)

var _ persistence.TaskQueue = new(redisTaskQueue)

type redisTaskQueue struct {
	baseDao
}

func NewRedisTaskQueue(baseDao baseDao) *redisTaskQueue {
	return &redisTaskQueue{
		baseDao: baseDao,
	}
}

func (rq *redisTaskQueue) Push(queueName string, runId string, message []byte) error {
	partition := strconv.Itoa(rq.getPartition(runId))
	key := rq.getNamespaceKey(queueName, partition)
	ctx := context.Background()
	err := rq.redisClient.LPush(ctx, key, message).Err()
	if err != nil {
		logger.Error("error while push to redis list", zap.String("queue", key), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rq *redisTaskQueue) Pop(queueName string, batchSize int) ([]string, error) {
	result := make([]string, 0, batchSize)
	for _, partition := range rq.partitioner.GetPartitions() {
		if len(result) >= batchSize {
			break
		}
		key := rq.getNamespaceKey(queueName, strconv.Itoa(partition))
		items, err := rq.pop(key, batchSize-len(result))
		if err != nil {
			return nil, err
		}
		result = append(result, items...)
	}
	if len(result) == 0 {
		return nil, persistence.EmptyQueueError{QueueName: queueName}
	}
	return result, nil
}

func (rq *redisTaskQueue) pop(queueName string, batchSize int) ([]string, error) {
	ctx := context.Background()
	res, err := rq.redisClient.LPopCount(ctx, queueName, batchSize).Result()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return []string{}, nil
		}
		logger.Error("error while pop from redis list", zap.String("queue", queueName), zap.Error(err))
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return res, nil
}
