package freeze

import (
	"github.com/mohitkumar/shipyard/logger"
	"github.com/mohitkumar/shipyard/model"
	"github.com/mohitkumar/shipyard/persistence"
	"go.uber.org/zap"
)

// Recorder snapshots the freezes that were active when a run was gated. The
// snapshot is written once and never mutated.
type Recorder struct {
	store persistence.FrozenExecutionStore
}

func NewRecorder(store persistence.FrozenExecutionStore) *Recorder {
	return &Recorder{
		store: store,
	}
}

// Record is a no-op when there is nothing to record: a nil or empty execution
// ref, or no active freezes. Neither case is an error.
func (r *Recorder) Record(ref *model.DeploymentRef, active []model.FreezeSummary) error {
	if ref == nil || ref.RunId == "" {
		return nil
	}
	if len(active) == 0 {
		return nil
	}
	var manual, global []model.FreezeRef
	for _, summary := range active {
		freezeRef := model.FreezeRef{
			Identifier: summary.Identifier,
			Type:       summary.Type,
			Scope:      summary.Scope,
		}
		if summary.Type == model.FREEZE_TYPE_GLOBAL {
			global = append(global, freezeRef)
		} else {
			manual = append(manual, freezeRef)
		}
	}
	execution := model.FrozenExecution{
		AccountId:        ref.AccountId,
		OrgId:            ref.OrgId,
		ProjectId:        ref.ProjectId,
		PlanExecutionId:  ref.RunId,
		StageExecutionId: ref.StageId,
		PipelineId:       ref.PipelineId,
		ManualFreezeList: manual,
		GlobalFreezeList: global,
	}
	if err := r.store.Save(execution); err != nil {
		return err
	}
	logger.Info("recorded frozen execution", zap.String("planExecutionId", ref.RunId), zap.Int("freezes", len(active)))
	return nil
}
