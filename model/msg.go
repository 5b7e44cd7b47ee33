package model

// WorkerTask is the unit of work handed to the delegate dispatcher. The wire
// protocol beyond this queue payload belongs to the worker fleet.
type WorkerTask struct {
	CorrelationId  string         `json:"correlationId"`
	RunId          string         `json:"runId"`
	StepName       string         `json:"stepName"`
	StepType       StepType       `json:"stepType"`
	RequestData    map[string]any `json:"requestData"`
	TimeoutMinutes int            `json:"timeoutMinutes"`
}

type WorkerResultStatus string

const WORKER_RESULT_SUCCESS WorkerResultStatus = "SUCCESS"
const WORKER_RESULT_FAILED WorkerResultStatus = "FAILED"

type WorkerResult struct {
	CorrelationId string             `json:"correlationId"`
	Status        WorkerResultStatus `json:"status"`
	Data          map[string]any     `json:"data,omitempty"`
	ErrorMessage  string             `json:"errorMessage,omitempty"`
}

type StepExecutionRequest struct {
	Ref       DeploymentRef                 `json:"ref"`
	Step      Step                          `json:"step"`
	Input     map[string]any                `json:"input,omitempty"`
	EntityMap map[FreezeEntityType][]string `json:"entityMap,omitempty"`
}

type FreezeEvaluateRequest struct {
	AccountId  string                        `json:"accountId"`
	OrgId      string                        `json:"orgId,omitempty"`
	ProjectId  string                        `json:"projectId,omitempty"`
	PipelineId string                        `json:"pipelineId,omitempty"`
	EntityMap  map[FreezeEntityType][]string `json:"entityMap,omitempty"`
}
