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

const ACTIVITY_KEY string = "ACTIVITY"

var _ persistence.ActivityStore = new(redisActivityStore)

type redisActivityStore struct {
	baseDao
	encoderDecoder util.EncoderDecoder[model.ActivityRecord]
}

func NewRedisActivityStore(baseDao baseDao, encoderDecoder util.EncoderDecoder[model.ActivityRecord]) *redisActivityStore {
	return &redisActivityStore{
		baseDao:        baseDao,
		encoderDecoder: encoderDecoder,
	}
}

func (ra *redisActivityStore) Create(activity model.ActivityRecord) error {
	key := ra.getNamespaceKey(ACTIVITY_KEY)
	ctx := context.Background()
	data, err := ra.encoderDecoder.Encode(activity)
	if err != nil {
		return err
	}
	if err := ra.redisClient.HSet(ctx, key, activity.Id, string(data)).Err(); err != nil {
		logger.Error("error in saving activity", zap.String("id", activity.Id), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (ra *redisActivityStore) UpdateStatus(id string, status model.ActivityStatus) error {
	activity, err := ra.Get(id)
	if err != nil {
		return err
	}
	activity.Status = status
	return ra.Create(*activity)
}

func (ra *redisActivityStore) Get(id string) (*model.ActivityRecord, error) {
	key := ra.getNamespaceKey(ACTIVITY_KEY)
	ctx := context.Background()
	activityStr, err := ra.redisClient.HGet(ctx, key, id).Result()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return nil, persistence.NotFoundError{Kind: "activity", Id: id}
		}
		logger.Error("error in getting activity", zap.String("id", id), zap.Error(err))
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return ra.encoderDecoder.Decode([]byte(activityStr))
}
