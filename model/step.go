package model

type StepType string

const STEP_TYPE_SETUP StepType = "SETUP"
const STEP_TYPE_RESIZE StepType = "RESIZE"
const STEP_TYPE_ROLLBACK StepType = "ROLLBACK"
const STEP_TYPE_MAP_ROUTE StepType = "MAP_ROUTE"
const STEP_TYPE_UNMAP_ROUTE StepType = "UNMAP_ROUTE"
const STEP_TYPE_SWAP_ROUTES StepType = "SWAP_ROUTES"
const STEP_TYPE_SWAP_ROUTES_ROLLBACK StepType = "SWAP_ROUTES_ROLLBACK"

type FacilitationMode string

const FACILITATION_SYNC FacilitationMode = "SYNC"
const FACILITATION_ASYNC FacilitationMode = "ASYNC"
const FACILITATION_TASK FacilitationMode = "TASK"

type InstanceUnit string

const INSTANCE_UNIT_PERCENTAGE InstanceUnit = "PERCENTAGE"
const INSTANCE_UNIT_COUNT InstanceUnit = "COUNT"

type ResizeDirection string

const RESIZE_UPSIZE ResizeDirection = "UPSIZE"
const RESIZE_DOWNSIZE ResizeDirection = "DOWNSIZE"

// Step is the closed set of deployment actions the engine knows how to run.
// Variant specific parameters are flat fields; the Type discriminator decides
// which of them a request builder reads.
type Step struct {
	Name                  string           `json:"name"`
	Type                  StepType         `json:"type"`
	Mode                  FacilitationMode `json:"mode"`
	TimeoutMinutes        int              `json:"timeoutMinutes"`
	MaxInstances          int              `json:"maxInstances"`
	InstanceCount         int              `json:"instanceCount"`
	InstanceUnit          InstanceUnit     `json:"instanceUnit"`
	DownsizeInstanceCount *int             `json:"downsizeInstanceCount,omitempty"`
	DownsizeInstanceUnit  InstanceUnit     `json:"downsizeInstanceUnit,omitempty"`
	Routes                []string         `json:"routes,omitempty"`
	TempRoutes            []string         `json:"tempRoutes,omitempty"`
}

type StepExecutionStatus string

const STATUS_RUNNING StepExecutionStatus = "RUNNING"
const STATUS_AWAITING_ASYNC StepExecutionStatus = "AWAITING_ASYNC"
const STATUS_SUCCESS StepExecutionStatus = "SUCCESS"
const STATUS_FAILED StepExecutionStatus = "FAILED"

type ExecutionResponse struct {
	Status             StepExecutionStatus `json:"status"`
	Async              bool                `json:"async"`
	CorrelationIds     []string            `json:"correlationIds,omitempty"`
	StateExecutionData *StateExecutionData `json:"stateExecutionData,omitempty"`
	Output             map[string]any      `json:"output,omitempty"`
	ErrorMessage       string              `json:"errorMessage,omitempty"`
}

// StateExecutionData is the snapshot persisted when a step suspends. It holds
// everything needed to interpret the eventual worker result; it is consumed
// exactly once on resume.
type StateExecutionData struct {
	RunId              string   `json:"runId"`
	StepName           string   `json:"stepName"`
	StepType           StepType `json:"stepType"`
	ActivityId         string   `json:"activityId"`
	CorrelationIds     []string `json:"correlationIds"`
	DesiredCount       int      `json:"desiredCount"`
	PreviousCount      int      `json:"previousCount"`
	SweepingOutputName string   `json:"sweepingOutputName"`
	TimeoutMinutes     int      `json:"timeoutMinutes"`
}

type ActivityStatus string

const ACTIVITY_RUNNING ActivityStatus = "RUNNING"
const ACTIVITY_SUCCESS ActivityStatus = "SUCCESS"
const ACTIVITY_FAILED ActivityStatus = "FAILED"

type ActivityRecord struct {
	Id           string         `json:"id"`
	RunId        string         `json:"runId"`
	StepName     string         `json:"stepName"`
	Status       ActivityStatus `json:"status"`
	CommandUnits []string       `json:"commandUnits"`
}

func IsRollbackStep(t StepType) bool {
	return t == STEP_TYPE_ROLLBACK || t == STEP_TYPE_SWAP_ROUTES_ROLLBACK
}
