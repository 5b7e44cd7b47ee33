package redis

import (
	"context"
	"errors"
	"fmt"

	rd "github.com/go-redis/redis/v9"
	"github.com/mohitkumar/shipyard/logger"
	"github.com/mohitkumar/shipyard/model"
	"github.com/mohitkumar/shipyard/persistence"
	"github.com/mohitkumar/shipyard/util"
	"go.uber.org/zap"
)

const SWEEPING_OUTPUT_KEY string = "SWEEPING_OUTPUT"

var _ persistence.SweepingOutputStore = new(redisSweepingOutputStore)

type redisSweepingOutputStore struct {
	baseDao
	encoderDecoder util.EncoderDecoder[model.SweepingOutput]
}

func NewRedisSweepingOutputStore(baseDao baseDao, encoderDecoder util.EncoderDecoder[model.SweepingOutput]) *redisSweepingOutputStore {
	return &redisSweepingOutputStore{
		baseDao:        baseDao,
		encoderDecoder: encoderDecoder,
	}
}

func (rs *redisSweepingOutputStore) Save(output model.SweepingOutput) error {
	key := rs.getNamespaceKey(SWEEPING_OUTPUT_KEY, output.RunId)
	field := fieldName(output.Scope, output.Name)
	ctx := context.Background()
	data, err := rs.encoderDecoder.Encode(output)
	if err != nil {
		return err
	}
	created, err := rs.redisClient.HSetNX(ctx, key, field, string(data)).Result()
	if err != nil {
		logger.Error("error in saving sweeping output", zap.String("runId", output.RunId), zap.String("name", output.Name), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	if !created {
		return persistence.DuplicateKeyError{Kind: "sweeping output", Key: field}
	}
	return nil
}

func (rs *redisSweepingOutputStore) Get(scope model.SweepingOutputScope, name string, runId string) (*model.SweepingOutput, error) {
	key := rs.getNamespaceKey(SWEEPING_OUTPUT_KEY, runId)
	ctx := context.Background()
	outputStr, err := rs.redisClient.HGet(ctx, key, fieldName(scope, name)).Result()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return nil, persistence.NotFoundError{Kind: "sweeping output", Id: name}
		}
		logger.Error("error in getting sweeping output", zap.String("runId", runId), zap.String("name", name), zap.Error(err))
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return rs.encoderDecoder.Decode([]byte(outputStr))
}

func fieldName(scope model.SweepingOutputScope, name string) string {
	return fmt.Sprintf("%s:%s", scope, name)
}
