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

const FREEZE_KEY string = "FREEZE"

var _ persistence.FreezeStore = new(redisFreezeStore)

type redisFreezeStore struct {
	baseDao
	encoderDecoder util.EncoderDecoder[model.FreezeConfig]
}

func NewRedisFreezeStore(baseDao baseDao, encoderDecoder util.EncoderDecoder[model.FreezeConfig]) *redisFreezeStore {
	return &redisFreezeStore{
		baseDao:        baseDao,
		encoderDecoder: encoderDecoder,
	}
}

func (rf *redisFreezeStore) scopeKey(accountId string, orgId string, projectId string) string {
	args := []string{FREEZE_KEY, accountId}
	if orgId != "" {
		args = append(args, orgId)
	}
	if projectId != "" {
		args = append(args, projectId)
	}
	return rf.getNamespaceKey(args...)
}

func (rf *redisFreezeStore) Save(config model.FreezeConfig) error {
	key := rf.scopeKey(config.AccountId, config.OrgId, config.ProjectId)
	ctx := context.Background()
	data, err := rf.encoderDecoder.Encode(config)
	if err != nil {
		return err
	}
	created, err := rf.redisClient.HSetNX(ctx, key, config.Identifier, string(data)).Result()
	if err != nil {
		logger.Error("error in saving freeze config", zap.String("identifier", config.Identifier), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	if !created {
		return persistence.DuplicateKeyError{Kind: "freeze config", Key: config.Identifier}
	}
	return nil
}

func (rf *redisFreezeStore) Update(config model.FreezeConfig) error {
	key := rf.scopeKey(config.AccountId, config.OrgId, config.ProjectId)
	ctx := context.Background()
	exists, err := rf.redisClient.HExists(ctx, key, config.Identifier).Result()
	if err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	if !exists {
		return persistence.NotFoundError{Kind: "freeze config", Id: config.Identifier}
	}
	data, err := rf.encoderDecoder.Encode(config)
	if err != nil {
		return err
	}
	if err := rf.redisClient.HSet(ctx, key, config.Identifier, string(data)).Err(); err != nil {
		logger.Error("error in updating freeze config", zap.String("identifier", config.Identifier), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rf *redisFreezeStore) Get(accountId string, orgId string, projectId string, identifier string) (*model.FreezeConfig, error) {
	key := rf.scopeKey(accountId, orgId, projectId)
	ctx := context.Background()
	configStr, err := rf.redisClient.HGet(ctx, key, identifier).Result()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return nil, persistence.NotFoundError{Kind: "freeze config", Id: identifier}
		}
		logger.Error("error in getting freeze config", zap.String("identifier", identifier), zap.Error(err))
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return rf.encoderDecoder.Decode([]byte(configStr))
}

func (rf *redisFreezeStore) Delete(accountId string, orgId string, projectId string, identifier string) error {
	key := rf.scopeKey(accountId, orgId, projectId)
	ctx := context.Background()
	removed, err := rf.redisClient.HDel(ctx, key, identifier).Result()
	if err != nil {
		logger.Error("error in deleting freeze config", zap.String("identifier", identifier), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	if removed == 0 {
		return persistence.NotFoundError{Kind: "freeze config", Id: identifier}
	}
	return nil
}

func (rf *redisFreezeStore) List(accountId string, orgId string, projectId string) ([]model.FreezeConfig, error) {
	key := rf.scopeKey(accountId, orgId, projectId)
	ctx := context.Background()
	entries, err := rf.redisClient.HGetAll(ctx, key).Result()
	if err != nil {
		logger.Error("error in listing freeze configs", zap.String("accountId", accountId), zap.Error(err))
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	configs := make([]model.FreezeConfig, 0, len(entries))
	for _, configStr := range entries {
		config, err := rf.encoderDecoder.Decode([]byte(configStr))
		if err != nil {
			return nil, err
		}
		configs = append(configs, *config)
	}
	return configs, nil
}
