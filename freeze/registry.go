package freeze

import (
	"errors"

	"github.com/mohitkumar/shipyard/cache"
	"github.com/mohitkumar/shipyard/model"
	"github.com/mohitkumar/shipyard/persistence"
)

// Registry is the read contract the evaluator consumes. Account, org and
// project are independent scope level lookups, not one nested query.
type Registry interface {
	ListActiveManual(accountId string, orgId string, projectId string, status model.FreezeStatus) ([]model.FreezeSummary, error)
	GetGlobalSummary(accountId string, orgId string, projectId string) (*model.FreezeSummary, error)
}

var _ Registry = new(StoreRegistry)

type StoreRegistry struct {
	store        persistence.FreezeStore
	summaryCache *cache.FreezeSummaryCache
}

func NewStoreRegistry(store persistence.FreezeStore, summaryCache *cache.FreezeSummaryCache) *StoreRegistry {
	return &StoreRegistry{
		store:        store,
		summaryCache: summaryCache,
	}
}

func (r *StoreRegistry) ListActiveManual(accountId string, orgId string, projectId string, status model.FreezeStatus) ([]model.FreezeSummary, error) {
	summaries, found := r.summaryCache.Get(accountId, orgId, projectId)
	if !found {
		configs, err := r.store.List(accountId, orgId, projectId)
		if err != nil {
			return nil, err
		}
		summaries = make([]model.FreezeSummary, 0, len(configs))
		for _, config := range configs {
			if config.Type == model.FREEZE_TYPE_MANUAL {
				summaries = append(summaries, toSummary(config))
			}
		}
		r.summaryCache.Set(accountId, orgId, projectId, summaries)
	}
	filtered := make([]model.FreezeSummary, 0, len(summaries))
	for _, summary := range summaries {
		if summary.Status == status {
			filtered = append(filtered, summary)
		}
	}
	return filtered, nil
}

func (r *StoreRegistry) GetGlobalSummary(accountId string, orgId string, projectId string) (*model.FreezeSummary, error) {
	config, err := r.store.Get(accountId, orgId, projectId, model.GLOBAL_FREEZE_ID)
	if err != nil {
		var notFound persistence.NotFoundError
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, err
	}
	summary := toSummary(*config)
	return &summary, nil
}

func toSummary(config model.FreezeConfig) model.FreezeSummary {
	return model.FreezeSummary{
		AccountId:  config.AccountId,
		OrgId:      config.OrgId,
		ProjectId:  config.ProjectId,
		Identifier: config.Identifier,
		Name:       config.Name,
		Type:       config.Type,
		Scope:      config.Scope,
		Status:     config.Status,
		Windows:    config.Windows,
		Rules:      config.Rules,
	}
}
