package freeze

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/mohitkumar/shipyard/cache"
	"github.com/mohitkumar/shipyard/logger"
	"github.com/mohitkumar/shipyard/model"
	"github.com/mohitkumar/shipyard/persistence"
	"go.uber.org/zap"
)

// Service owns freeze config documents: YAML in, validated immutable config
// out. The stored YAML is returned unchanged on read.
type Service struct {
	store        persistence.FreezeStore
	summaryCache *cache.FreezeSummaryCache
}

func NewService(store persistence.FreezeStore, summaryCache *cache.FreezeSummaryCache) *Service {
	return &Service{
		store:        store,
		summaryCache: summaryCache,
	}
}

func (s *Service) Create(accountId string, orgId string, projectId string, yamlDoc []byte) (*model.FreezeConfig, error) {
	config, err := buildConfig(accountId, orgId, projectId, yamlDoc)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(*config); err != nil {
		return nil, err
	}
	s.summaryCache.Invalidate(accountId, orgId, projectId)
	logger.Info("freeze config created", zap.String("identifier", config.Identifier), zap.String("accountId", accountId))
	return config, nil
}

func (s *Service) Update(accountId string, orgId string, projectId string, identifier string, yamlDoc []byte) (*model.FreezeConfig, error) {
	config, err := buildConfig(accountId, orgId, projectId, yamlDoc)
	if err != nil {
		return nil, err
	}
	if config.Identifier != identifier {
		return nil, fmt.Errorf("identifier %s in document does not match %s", config.Identifier, identifier)
	}
	if err := s.store.Update(*config); err != nil {
		return nil, err
	}
	s.summaryCache.Invalidate(accountId, orgId, projectId)
	logger.Info("freeze config updated", zap.String("identifier", identifier), zap.String("accountId", accountId))
	return config, nil
}

func (s *Service) Get(accountId string, orgId string, projectId string, identifier string) (*model.FreezeConfig, error) {
	return s.store.Get(accountId, orgId, projectId, identifier)
}

func (s *Service) Delete(accountId string, orgId string, projectId string, identifier string) error {
	if err := s.store.Delete(accountId, orgId, projectId, identifier); err != nil {
		return err
	}
	s.summaryCache.Invalidate(accountId, orgId, projectId)
	logger.Info("freeze config deleted", zap.String("identifier", identifier), zap.String("accountId", accountId))
	return nil
}

func (s *Service) List(accountId string, orgId string, projectId string) ([]model.FreezeConfig, error) {
	return s.store.List(accountId, orgId, projectId)
}

func buildConfig(accountId string, orgId string, projectId string, yamlDoc []byte) (*model.FreezeConfig, error) {
	var config model.FreezeConfig
	if err := yaml.Unmarshal(yamlDoc, &config); err != nil {
		return nil, fmt.Errorf("malformed freeze config document: %w", err)
	}
	config.AccountId = accountId
	config.OrgId = orgId
	config.ProjectId = projectId
	config.Scope = scopeFor(orgId, projectId)
	if config.Type == "" {
		config.Type = model.FREEZE_TYPE_MANUAL
	}
	if config.Status == "" {
		config.Status = model.FREEZE_ENABLED
	}
	config.Yaml = string(yamlDoc)
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return &config, nil
}

func scopeFor(orgId string, projectId string) model.FreezeScope {
	if orgId == "" {
		return model.FREEZE_SCOPE_ACCOUNT
	}
	if projectId == "" {
		return model.FREEZE_SCOPE_ORG
	}
	return model.FREEZE_SCOPE_PROJECT
}

func validateConfig(config model.FreezeConfig) error {
	if config.Identifier == "" {
		return fmt.Errorf("freeze config identifier is required")
	}
	if (config.Identifier == model.GLOBAL_FREEZE_ID) != (config.Type == model.FREEZE_TYPE_GLOBAL) {
		return fmt.Errorf("identifier %s is reserved for the global freeze", model.GLOBAL_FREEZE_ID)
	}
	if len(config.Windows) == 0 {
		return fmt.Errorf("freeze config %s has no windows", config.Identifier)
	}
	for _, window := range config.Windows {
		if err := ValidateWindow(window); err != nil {
			return fmt.Errorf("freeze config %s: %w", config.Identifier, err)
		}
	}
	return nil
}
