package freeze

import (
	"fmt"
	"sync"
	"time"

	"github.com/mohitkumar/shipyard/model"
	"github.com/mohitkumar/shipyard/util"
)

// EntityMap describes the execution being gated: which ids it carries per
// freeze entity type.
type EntityMap map[model.FreezeEntityType][]string

func matchesEntityConfig(config model.EntityConfig, entityMap EntityMap) bool {
	switch config.FilterType {
	case model.FILTER_ALL:
		return true
	case model.FILTER_EQUALS:
		ids, ok := entityMap[config.FreezeEntityType]
		return ok && util.Intersects(ids, config.EntityReference)
	case model.FILTER_NOT_EQUALS:
		ids, ok := entityMap[config.FreezeEntityType]
		return !ok || !util.Intersects(ids, config.EntityReference)
	default:
		return false
	}
}

func matchesRule(rule model.FreezeEntityRule, entityMap EntityMap) bool {
	for _, config := range rule.EntityConfigs {
		if !matchesEntityConfig(config, entityMap) {
			return false
		}
	}
	return true
}

// MatchesExecution is OR across rules, AND across the entity configs of one
// rule. A freeze without rules blocks everything at its scope.
func MatchesExecution(rules []model.FreezeEntityRule, entityMap EntityMap) bool {
	if len(rules) == 0 {
		return true
	}
	for _, rule := range rules {
		if matchesRule(rule, entityMap) {
			return true
		}
	}
	return false
}

type Evaluator struct {
	registry Registry
}

func NewEvaluator(registry Registry) *Evaluator {
	return &Evaluator{
		registry: registry,
	}
}

type scopeLevel struct {
	accountId string
	orgId     string
	projectId string
}

// ActiveFreezes unions the active freezes across the queried scope levels:
// account always, org when an org id is given, project when both org and
// project ids are given. The levels are independent lookups; a failure at any
// one fails the whole evaluation so the gate never under-reports.
func (e *Evaluator) ActiveFreezes(accountId string, orgId string, projectId string, entityMap EntityMap, now time.Time) ([]model.FreezeSummary, error) {
	levels := []scopeLevel{{accountId: accountId}}
	if orgId != "" {
		levels = append(levels, scopeLevel{accountId: accountId, orgId: orgId})
		if projectId != "" {
			levels = append(levels, scopeLevel{accountId: accountId, orgId: orgId, projectId: projectId})
		}
	}
	results := make([][]model.FreezeSummary, len(levels))
	errs := make([]error, len(levels))
	var wg sync.WaitGroup
	for i, level := range levels {
		wg.Add(1)
		go func(i int, level scopeLevel) {
			defer wg.Done()
			results[i], errs[i] = e.activeAtLevel(level, entityMap, now)
		}(i, level)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("freeze evaluation failed: %w", err)
		}
	}
	var active []model.FreezeSummary
	for _, levelResult := range results {
		active = append(active, levelResult...)
	}
	return active, nil
}

func (e *Evaluator) activeAtLevel(level scopeLevel, entityMap EntityMap, now time.Time) ([]model.FreezeSummary, error) {
	var active []model.FreezeSummary
	manual, err := e.registry.ListActiveManual(level.accountId, level.orgId, level.projectId, model.FREEZE_ENABLED)
	if err != nil {
		return nil, err
	}
	for _, summary := range manual {
		windowActive, err := anyWindowActive(summary.Windows, now)
		if err != nil {
			return nil, err
		}
		if windowActive && MatchesExecution(summary.Rules, entityMap) {
			summary.NextIteration = nextIterationForWindows(summary.Windows, now)
			active = append(active, summary)
		}
	}
	global, err := e.registry.GetGlobalSummary(level.accountId, level.orgId, level.projectId)
	if err != nil {
		return nil, err
	}
	if global != nil && global.Status == model.FREEZE_ENABLED {
		windowActive, err := anyWindowActive(global.Windows, now)
		if err != nil {
			return nil, err
		}
		if windowActive {
			global.NextIteration = nextIterationForWindows(global.Windows, now)
			active = append(active, *global)
		}
	}
	return active, nil
}

// IsBlocked is the gate the pipeline scheduler consults before driving a
// step. An empty result means clear to proceed.
func (e *Evaluator) IsBlocked(accountId string, orgId string, projectId string, pipelineId string, entityMap EntityMap) ([]model.FreezeSummary, error) {
	merged := make(EntityMap, len(entityMap)+1)
	for entityType, ids := range entityMap {
		merged[entityType] = ids
	}
	if pipelineId != "" {
		merged[model.ENTITY_TYPE_PIPELINE] = append(merged[model.ENTITY_TYPE_PIPELINE], pipelineId)
	}
	return e.ActiveFreezes(accountId, orgId, projectId, merged, time.Now())
}
