package cache

import (
	"fmt"
	"time"

	"github.com/mohitkumar/shipyard/model"
	c "github.com/patrickmn/go-cache"
)

// FreezeSummaryCache keeps the manual freeze summaries of one scope level hot
// between registry reads. Entries are dropped whenever the scope is written.
type FreezeSummaryCache struct {
	cache *c.Cache
}

func NewFreezeSummaryCache(ttl time.Duration) *FreezeSummaryCache {
	return &FreezeSummaryCache{
		cache: c.New(ttl, 10*time.Minute),
	}
}

func scopeKey(accountId string, orgId string, projectId string) string {
	return fmt.Sprintf("%s:%s:%s", accountId, orgId, projectId)
}

func (ch *FreezeSummaryCache) Get(accountId string, orgId string, projectId string) ([]model.FreezeSummary, bool) {
	entry, found := ch.cache.Get(scopeKey(accountId, orgId, projectId))
	if !found {
		return nil, false
	}
	summaries, ok := entry.([]model.FreezeSummary)
	return summaries, ok
}

func (ch *FreezeSummaryCache) Set(accountId string, orgId string, projectId string, summaries []model.FreezeSummary) {
	ch.cache.SetDefault(scopeKey(accountId, orgId, projectId), summaries)
}

func (ch *FreezeSummaryCache) Invalidate(accountId string, orgId string, projectId string) {
	ch.cache.Delete(scopeKey(accountId, orgId, projectId))
}
