package flow

import (
	"fmt"

	"github.com/mohitkumar/shipyard/model"
	"github.com/mohitkumar/shipyard/persistence"
	"github.com/mohitkumar/shipyard/util"
)

// ExecutionContext is the per run state a step executes against. It is not
// persisted; on resume it is rebuilt from the registered pending step and the
// persisted StateExecutionData.
type ExecutionContext struct {
	Ref     model.DeploymentRef
	Data    map[string]any
	outputs persistence.SweepingOutputStore
}

func NewExecutionContext(ref model.DeploymentRef, data map[string]any, outputs persistence.SweepingOutputStore) *ExecutionContext {
	if data == nil {
		data = make(map[string]any)
	}
	return &ExecutionContext{
		Ref:     ref,
		Data:    data,
		outputs: outputs,
	}
}

func (ec *ExecutionContext) RenderExpression(s string) (string, error) {
	return util.RenderString(ec.Data, s)
}

func (ec *ExecutionContext) RenderExpressions(values []string) ([]string, error) {
	return util.RenderStrings(ec.Data, values)
}

func (ec *ExecutionContext) SaveSweepingOutput(scope model.SweepingOutputScope, name string, payload map[string]any) error {
	return ec.outputs.Save(model.SweepingOutput{
		Scope:   scope,
		Name:    name,
		RunId:   ec.Ref.RunId,
		Payload: payload,
	})
}

func (ec *ExecutionContext) GetSweepingOutput(scope model.SweepingOutputScope, name string) (map[string]any, error) {
	output, err := ec.outputs.Get(scope, name, ec.Ref.RunId)
	if err != nil {
		return nil, err
	}
	return output.Payload, nil
}

const setupOutputPrefix = "setupSweepingOutput"
const deployOutputPrefix = "deploySweepingOutput"
const mapRouteOutputPrefix = "mapRouteSweepingOutput"
const unmapRouteOutputPrefix = "unmapRouteSweepingOutput"
const swapRouteOutputPrefix = "swapRouteSweepingOutput"

// SweepingOutputName derives the artifact name a step reads or writes. A
// rollback step addresses the stage its forward counterpart ran in, so forward
// and rollback lookups always agree on the name.
func SweepingOutputName(ref model.DeploymentRef, stepType model.StepType, rollback bool) string {
	var prefix string
	switch stepType {
	case model.STEP_TYPE_SETUP:
		prefix = setupOutputPrefix
	case model.STEP_TYPE_RESIZE, model.STEP_TYPE_ROLLBACK:
		prefix = deployOutputPrefix
	case model.STEP_TYPE_MAP_ROUTE:
		prefix = mapRouteOutputPrefix
	case model.STEP_TYPE_UNMAP_ROUTE:
		prefix = unmapRouteOutputPrefix
	case model.STEP_TYPE_SWAP_ROUTES, model.STEP_TYPE_SWAP_ROUTES_ROLLBACK:
		prefix = swapRouteOutputPrefix
	}
	stage := ref.StageId
	if rollback && ref.ForwardStageId != "" {
		stage = ref.ForwardStageId
	}
	return fmt.Sprintf("%s_%s", prefix, stage)
}
