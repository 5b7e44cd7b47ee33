package model

// DeploymentRef carries the identifiers of one workflow run. RunId doubles as
// the plan execution id of the run. ForwardStageId is set on rollback stages
// and points at the stage whose outputs the rollback reads.
type DeploymentRef struct {
	AccountId      string `json:"accountId"`
	OrgId          string `json:"orgId,omitempty"`
	ProjectId      string `json:"projectId,omitempty"`
	PipelineId     string `json:"pipelineId,omitempty"`
	StageId        string `json:"stageId"`
	ForwardStageId string `json:"forwardStageId,omitempty"`
	RunId          string `json:"runId"`
	AppId          string `json:"appId"`
	EnvId          string `json:"envId"`
	InfraId        string `json:"infraId"`
}

type SweepingOutputScope string

const SCOPE_RUN SweepingOutputScope = "RUN"
const SCOPE_STAGE SweepingOutputScope = "STAGE"
const SCOPE_PIPELINE SweepingOutputScope = "PIPELINE"

// SweepingOutput is a write once artifact passed between steps of one run.
type SweepingOutput struct {
	Scope   SweepingOutputScope `json:"scope"`
	Name    string              `json:"name"`
	RunId   string              `json:"runId"`
	Payload map[string]any      `json:"payload"`
}
