package flow

import (
	"fmt"

	"github.com/mohitkumar/shipyard/model"
)

// builtRequest is what a variant's request builder hands back to the shared
// lifecycle: the worker payload plus the counts and artifact name recorded in
// StateExecutionData.
type builtRequest struct {
	requestData   map[string]any
	desiredCount  int
	previousCount int
	outputName    string
}

// buildRequest is the only point where step variants differ. The lifecycle
// around it is identical for forward and rollback steps.
func buildRequest(ec *ExecutionContext, step model.Step) (*builtRequest, error) {
	switch step.Type {
	case model.STEP_TYPE_SETUP:
		return buildSetupRequest(ec, step)
	case model.STEP_TYPE_RESIZE:
		return buildResizeRequest(ec, step)
	case model.STEP_TYPE_ROLLBACK:
		return buildRollbackRequest(ec, step)
	case model.STEP_TYPE_MAP_ROUTE, model.STEP_TYPE_UNMAP_ROUTE:
		return buildRouteRequest(ec, step)
	case model.STEP_TYPE_SWAP_ROUTES:
		return buildSwapRoutesRequest(ec, step)
	case model.STEP_TYPE_SWAP_ROUTES_ROLLBACK:
		return buildSwapRoutesRollbackRequest(ec, step)
	default:
		return nil, fmt.Errorf("unknown step type %s", step.Type)
	}
}

func buildSetupRequest(ec *ExecutionContext, step model.Step) (*builtRequest, error) {
	if step.MaxInstances <= 0 {
		return nil, fmt.Errorf("maxInstances is required for setup step %s", step.Name)
	}
	routes, err := ec.RenderExpressions(step.Routes)
	if err != nil {
		return nil, err
	}
	tempRoutes, err := ec.RenderExpressions(step.TempRoutes)
	if err != nil {
		return nil, err
	}
	return &builtRequest{
		requestData: map[string]any{
			"app":          ec.Ref.AppId,
			"env":          ec.Ref.EnvId,
			"infra":        ec.Ref.InfraId,
			"maxInstances": step.MaxInstances,
			"routes":       routes,
			"tempRoutes":   tempRoutes,
		},
		desiredCount: step.MaxInstances,
		outputName:   SweepingOutputName(ec.Ref, step.Type, false),
	}, nil
}

func buildResizeRequest(ec *ExecutionContext, step model.Step) (*builtRequest, error) {
	setupOutput, err := ec.GetSweepingOutput(model.SCOPE_RUN, SweepingOutputName(ec.Ref, model.STEP_TYPE_SETUP, false))
	if err != nil {
		return nil, fmt.Errorf("setup output not available for resize step %s: %w", step.Name, err)
	}
	maxInstances := asInt(setupOutput["maxInstances"])
	if maxInstances <= 0 {
		maxInstances = asInt(setupOutput["desiredCount"])
	}
	desired := ResolveInstanceCount(maxInstances, step.InstanceCount, step.InstanceUnit, model.RESIZE_UPSIZE)
	downsizeUnit := step.DownsizeInstanceUnit
	if downsizeUnit == "" {
		downsizeUnit = step.InstanceUnit
	}
	downsize := ResolveDownsizeCount(maxInstances, desired, step.DownsizeInstanceCount, downsizeUnit)
	return &builtRequest{
		requestData: map[string]any{
			"app":           ec.Ref.AppId,
			"desiredCount":  desired,
			"downsizeCount": downsize,
		},
		desiredCount:  desired,
		previousCount: asInt(setupOutput["activeInstances"]),
		outputName:    SweepingOutputName(ec.Ref, step.Type, false),
	}, nil
}

// buildRollbackRequest inverts the paired forward resize: the recorded
// previous and desired counts swap places. The resolver is never consulted.
func buildRollbackRequest(ec *ExecutionContext, step model.Step) (*builtRequest, error) {
	deployOutput, err := ec.GetSweepingOutput(model.SCOPE_RUN, SweepingOutputName(ec.Ref, step.Type, true))
	if err != nil {
		return nil, fmt.Errorf("deploy output not available for rollback step %s: %w", step.Name, err)
	}
	desired := asInt(deployOutput["previousCount"])
	previous := asInt(deployOutput["desiredCount"])
	return &builtRequest{
		requestData: map[string]any{
			"app":           ec.Ref.AppId,
			"desiredCount":  desired,
			"downsizeCount": previous,
			"rollback":      true,
		},
		desiredCount:  desired,
		previousCount: previous,
	}, nil
}

func buildRouteRequest(ec *ExecutionContext, step model.Step) (*builtRequest, error) {
	routes, err := ec.RenderExpressions(step.Routes)
	if err != nil {
		return nil, err
	}
	if len(routes) == 0 {
		return nil, fmt.Errorf("no routes given for step %s", step.Name)
	}
	return &builtRequest{
		requestData: map[string]any{
			"app":    ec.Ref.AppId,
			"routes": routes,
			"attach": step.Type == model.STEP_TYPE_MAP_ROUTE,
		},
		outputName: SweepingOutputName(ec.Ref, step.Type, false),
	}, nil
}

func buildSwapRoutesRequest(ec *ExecutionContext, step model.Step) (*builtRequest, error) {
	setupOutput, err := ec.GetSweepingOutput(model.SCOPE_RUN, SweepingOutputName(ec.Ref, model.STEP_TYPE_SETUP, false))
	if err != nil {
		return nil, fmt.Errorf("setup output not available for swap routes step %s: %w", step.Name, err)
	}
	finalRoutes := asStrings(setupOutput["routes"])
	tempRoutes := asStrings(setupOutput["tempRoutes"])
	return &builtRequest{
		requestData: map[string]any{
			"app":         ec.Ref.AppId,
			"finalRoutes": finalRoutes,
			"tempRoutes":  tempRoutes,
			"swapBack":    false,
		},
		outputName: SweepingOutputName(ec.Ref, step.Type, false),
	}, nil
}

// buildSwapRoutesRollbackRequest re-reads the forward swap's artifact and
// inverts the intent: final and temp route lists trade places.
func buildSwapRoutesRollbackRequest(ec *ExecutionContext, step model.Step) (*builtRequest, error) {
	swapOutput, err := ec.GetSweepingOutput(model.SCOPE_RUN, SweepingOutputName(ec.Ref, step.Type, true))
	if err != nil {
		return nil, fmt.Errorf("swap routes output not available for rollback step %s: %w", step.Name, err)
	}
	return &builtRequest{
		requestData: map[string]any{
			"app":         ec.Ref.AppId,
			"finalRoutes": asStrings(swapOutput["tempRoutes"]),
			"tempRoutes":  asStrings(swapOutput["finalRoutes"]),
			"swapBack":    true,
		},
	}, nil
}

func asInt(value any) int {
	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func asStrings(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprintf("%v", item))
		}
		return out
	default:
		return nil
	}
}
