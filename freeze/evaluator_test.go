package freeze

import (
	"fmt"
	"testing"
	"time"

	"github.com/mohitkumar/shipyard/model"
	"github.com/stretchr/testify/require"
)

func TestMatchesExecution(t *testing.T) {
	entityMap := EntityMap{
		model.ENTITY_TYPE_SERVICE:     {"orders"},
		model.ENTITY_TYPE_ENVIRONMENT: {"prod"},
	}
	tests := []struct {
		name     string
		rules    []model.FreezeEntityRule
		expected bool
	}{
		{"no rules blocks everything", nil, true},
		{"all filter matches", []model.FreezeEntityRule{{
			EntityConfigs: []model.EntityConfig{{FreezeEntityType: model.ENTITY_TYPE_SERVICE, FilterType: model.FILTER_ALL}},
		}}, true},
		{"equals matches listed service", []model.FreezeEntityRule{{
			EntityConfigs: []model.EntityConfig{{FreezeEntityType: model.ENTITY_TYPE_SERVICE, FilterType: model.FILTER_EQUALS, EntityReference: []string{"orders", "billing"}}},
		}}, true},
		{"equals rejects unlisted service", []model.FreezeEntityRule{{
			EntityConfigs: []model.EntityConfig{{FreezeEntityType: model.ENTITY_TYPE_SERVICE, FilterType: model.FILTER_EQUALS, EntityReference: []string{"billing"}}},
		}}, false},
		{"equals rejects absent entity type", []model.FreezeEntityRule{{
			EntityConfigs: []model.EntityConfig{{FreezeEntityType: model.ENTITY_TYPE_PIPELINE, FilterType: model.FILTER_EQUALS, EntityReference: []string{"deploy"}}},
		}}, false},
		{"not equals matches when excluded id differs", []model.FreezeEntityRule{{
			EntityConfigs: []model.EntityConfig{{FreezeEntityType: model.ENTITY_TYPE_SERVICE, FilterType: model.FILTER_NOT_EQUALS, EntityReference: []string{"billing"}}},
		}}, true},
		{"not equals rejects excluded id", []model.FreezeEntityRule{{
			EntityConfigs: []model.EntityConfig{{FreezeEntityType: model.ENTITY_TYPE_SERVICE, FilterType: model.FILTER_NOT_EQUALS, EntityReference: []string{"orders"}}},
		}}, false},
		{"not equals matches absent entity type", []model.FreezeEntityRule{{
			EntityConfigs: []model.EntityConfig{{FreezeEntityType: model.ENTITY_TYPE_PIPELINE, FilterType: model.FILTER_NOT_EQUALS, EntityReference: []string{"deploy"}}},
		}}, true},
		{"all configs of a rule must match", []model.FreezeEntityRule{{
			EntityConfigs: []model.EntityConfig{
				{FreezeEntityType: model.ENTITY_TYPE_SERVICE, FilterType: model.FILTER_EQUALS, EntityReference: []string{"orders"}},
				{FreezeEntityType: model.ENTITY_TYPE_ENVIRONMENT, FilterType: model.FILTER_EQUALS, EntityReference: []string{"staging"}},
			},
		}}, false},
		{"any rule matching is enough", []model.FreezeEntityRule{
			{EntityConfigs: []model.EntityConfig{{FreezeEntityType: model.ENTITY_TYPE_SERVICE, FilterType: model.FILTER_EQUALS, EntityReference: []string{"billing"}}}},
			{EntityConfigs: []model.EntityConfig{{FreezeEntityType: model.ENTITY_TYPE_ENVIRONMENT, FilterType: model.FILTER_EQUALS, EntityReference: []string{"prod"}}}},
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, MatchesExecution(tt.rules, entityMap))
		})
	}
}

type fakeRegistry struct {
	manual map[string][]model.FreezeSummary
	global map[string]*model.FreezeSummary
	err    error
	errAt  string
}

func registryKey(accountId string, orgId string, projectId string) string {
	return fmt.Sprintf("%s:%s:%s", accountId, orgId, projectId)
}

func (f *fakeRegistry) ListActiveManual(accountId string, orgId string, projectId string, status model.FreezeStatus) ([]model.FreezeSummary, error) {
	key := registryKey(accountId, orgId, projectId)
	if f.err != nil && key == f.errAt {
		return nil, f.err
	}
	var filtered []model.FreezeSummary
	for _, summary := range f.manual[key] {
		if summary.Status == status {
			filtered = append(filtered, summary)
		}
	}
	return filtered, nil
}

func (f *fakeRegistry) GetGlobalSummary(accountId string, orgId string, projectId string) (*model.FreezeSummary, error) {
	return f.global[registryKey(accountId, orgId, projectId)], nil
}

func activeWindow(now time.Time) model.FreezeWindow {
	return model.FreezeWindow{
		StartTime:       now.Add(-time.Hour).UnixMilli(),
		DurationMinutes: 120,
	}
}

func manualSummary(identifier string, status model.FreezeStatus, now time.Time) model.FreezeSummary {
	return model.FreezeSummary{
		Identifier: identifier,
		Type:       model.FREEZE_TYPE_MANUAL,
		Status:     status,
		Windows:    []model.FreezeWindow{activeWindow(now)},
	}
}

func TestActiveFreezes(t *testing.T) {
	now := time.Now()
	t.Run("account level only", func(t *testing.T) {
		registry := &fakeRegistry{
			manual: map[string][]model.FreezeSummary{
				registryKey("acc", "", ""): {manualSummary("fr1", model.FREEZE_ENABLED, now)},
			},
		}
		evaluator := NewEvaluator(registry)
		active, err := evaluator.ActiveFreezes("acc", "", "", nil, now)
		require.NoError(t, err)
		require.Len(t, active, 1)
		require.Equal(t, "fr1", active[0].Identifier)
	})
	t.Run("disabled freeze never blocks", func(t *testing.T) {
		registry := &fakeRegistry{
			manual: map[string][]model.FreezeSummary{
				registryKey("acc", "", ""): {manualSummary("fr1", model.FREEZE_DISABLED, now)},
			},
		}
		evaluator := NewEvaluator(registry)
		active, err := evaluator.ActiveFreezes("acc", "", "", nil, now)
		require.NoError(t, err)
		require.Empty(t, active)
	})
	t.Run("union across three scope levels", func(t *testing.T) {
		registry := &fakeRegistry{
			manual: map[string][]model.FreezeSummary{
				registryKey("acc", "", ""):        {manualSummary("acc-fr", model.FREEZE_ENABLED, now)},
				registryKey("acc", "org", ""):     {manualSummary("org-fr", model.FREEZE_ENABLED, now)},
				registryKey("acc", "org", "proj"): {manualSummary("proj-fr", model.FREEZE_ENABLED, now)},
			},
		}
		evaluator := NewEvaluator(registry)
		active, err := evaluator.ActiveFreezes("acc", "org", "proj", nil, now)
		require.NoError(t, err)
		require.Len(t, active, 3)
	})
	t.Run("global freeze joins the manual ones", func(t *testing.T) {
		global := model.FreezeSummary{
			Identifier: model.GLOBAL_FREEZE_ID,
			Type:       model.FREEZE_TYPE_GLOBAL,
			Status:     model.FREEZE_ENABLED,
			Windows:    []model.FreezeWindow{activeWindow(now)},
		}
		registry := &fakeRegistry{
			manual: map[string][]model.FreezeSummary{
				registryKey("acc", "", ""):        {manualSummary("acc-fr", model.FREEZE_ENABLED, now)},
				registryKey("acc", "org", ""):     {manualSummary("org-fr", model.FREEZE_ENABLED, now)},
				registryKey("acc", "org", "proj"): {manualSummary("proj-fr", model.FREEZE_ENABLED, now)},
			},
			global: map[string]*model.FreezeSummary{
				registryKey("acc", "", ""):        &global,
				registryKey("acc", "org", ""):     &global,
				registryKey("acc", "org", "proj"): &global,
			},
		}
		evaluator := NewEvaluator(registry)
		active, err := evaluator.ActiveFreezes("acc", "org", "proj", nil, now)
		require.NoError(t, err)
		require.Len(t, active, 6)
	})
	t.Run("expired window does not block", func(t *testing.T) {
		expired := model.FreezeSummary{
			Identifier: "old",
			Type:       model.FREEZE_TYPE_MANUAL,
			Status:     model.FREEZE_ENABLED,
			Windows: []model.FreezeWindow{{
				StartTime:       now.Add(-3 * time.Hour).UnixMilli(),
				DurationMinutes: 60,
			}},
		}
		registry := &fakeRegistry{
			manual: map[string][]model.FreezeSummary{
				registryKey("acc", "", ""): {expired},
			},
		}
		evaluator := NewEvaluator(registry)
		active, err := evaluator.ActiveFreezes("acc", "", "", nil, now)
		require.NoError(t, err)
		require.Empty(t, active)
	})
	t.Run("rules filter by entity map", func(t *testing.T) {
		summary := manualSummary("fr1", model.FREEZE_ENABLED, now)
		summary.Rules = []model.FreezeEntityRule{{
			EntityConfigs: []model.EntityConfig{{
				FreezeEntityType: model.ENTITY_TYPE_SERVICE,
				FilterType:       model.FILTER_EQUALS,
				EntityReference:  []string{"billing"},
			}},
		}}
		registry := &fakeRegistry{
			manual: map[string][]model.FreezeSummary{
				registryKey("acc", "", ""): {summary},
			},
		}
		evaluator := NewEvaluator(registry)
		active, err := evaluator.ActiveFreezes("acc", "", "", EntityMap{model.ENTITY_TYPE_SERVICE: {"orders"}}, now)
		require.NoError(t, err)
		require.Empty(t, active)

		active, err = evaluator.ActiveFreezes("acc", "", "", EntityMap{model.ENTITY_TYPE_SERVICE: {"billing"}}, now)
		require.NoError(t, err)
		require.Len(t, active, 1)
	})
	t.Run("failure at any level fails the evaluation", func(t *testing.T) {
		registry := &fakeRegistry{
			manual: map[string][]model.FreezeSummary{
				registryKey("acc", "", ""): {manualSummary("fr1", model.FREEZE_ENABLED, now)},
			},
			err:   fmt.Errorf("store unavailable"),
			errAt: registryKey("acc", "org", ""),
		}
		evaluator := NewEvaluator(registry)
		_, err := evaluator.ActiveFreezes("acc", "org", "proj", nil, now)
		require.Error(t, err)
	})
	t.Run("active freeze carries next iteration when recurring", func(t *testing.T) {
		summary := model.FreezeSummary{
			Identifier: "recurring",
			Type:       model.FREEZE_TYPE_MANUAL,
			Status:     model.FREEZE_ENABLED,
			Windows: []model.FreezeWindow{{
				StartTime:       now.Add(-30 * time.Minute).UnixMilli(),
				DurationMinutes: 60,
				Recurrence:      &model.Recurrence{Type: model.RECURRENCE_DAILY},
			}},
		}
		registry := &fakeRegistry{
			manual: map[string][]model.FreezeSummary{
				registryKey("acc", "", ""): {summary},
			},
		}
		evaluator := NewEvaluator(registry)
		active, err := evaluator.ActiveFreezes("acc", "", "", nil, now)
		require.NoError(t, err)
		require.Len(t, active, 1)
		require.NotNil(t, active[0].NextIteration)
	})
}

func TestIsBlockedAddsPipeline(t *testing.T) {
	now := time.Now()
	summary := manualSummary("pipeline-freeze", model.FREEZE_ENABLED, now)
	summary.Rules = []model.FreezeEntityRule{{
		EntityConfigs: []model.EntityConfig{{
			FreezeEntityType: model.ENTITY_TYPE_PIPELINE,
			FilterType:       model.FILTER_EQUALS,
			EntityReference:  []string{"deploy-pipeline"},
		}},
	}}
	registry := &fakeRegistry{
		manual: map[string][]model.FreezeSummary{
			registryKey("acc", "", ""): {summary},
		},
	}
	evaluator := NewEvaluator(registry)
	active, err := evaluator.IsBlocked("acc", "", "", "deploy-pipeline", nil)
	require.NoError(t, err)
	require.Len(t, active, 1)

	active, err = evaluator.IsBlocked("acc", "", "", "other-pipeline", nil)
	require.NoError(t, err)
	require.Empty(t, active)
}
