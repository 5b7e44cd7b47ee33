package model

type FreezeType string

const FREEZE_TYPE_MANUAL FreezeType = "MANUAL"
const FREEZE_TYPE_GLOBAL FreezeType = "GLOBAL"

type FreezeScope string

const FREEZE_SCOPE_ACCOUNT FreezeScope = "ACCOUNT"
const FREEZE_SCOPE_ORG FreezeScope = "ORG"
const FREEZE_SCOPE_PROJECT FreezeScope = "PROJECT"

type FreezeStatus string

const FREEZE_ENABLED FreezeStatus = "ENABLED"
const FREEZE_DISABLED FreezeStatus = "DISABLED"

// GLOBAL_FREEZE_ID is the reserved identifier of the per scope global freeze
// switch. At most one enabled config may carry it at any scope level.
const GLOBAL_FREEZE_ID = "_GLOBAL_"

type RecurrenceType string

const RECURRENCE_DAILY RecurrenceType = "DAILY"
const RECURRENCE_WEEKLY RecurrenceType = "WEEKLY"
const RECURRENCE_MONTHLY RecurrenceType = "MONTHLY"
const RECURRENCE_YEARLY RecurrenceType = "YEARLY"

type Recurrence struct {
	Type  RecurrenceType `json:"type" yaml:"type"`
	Until *int64         `json:"until,omitempty" yaml:"until,omitempty"`
}

// FreezeWindow bounds are epoch millis. Exactly one of DurationMinutes and
// EndTime is set on input; validation derives the other.
type FreezeWindow struct {
	TimeZone        string      `json:"timeZone" yaml:"timeZone"`
	StartTime       int64       `json:"startTime" yaml:"startTime"`
	DurationMinutes int64       `json:"durationMinutes,omitempty" yaml:"durationMinutes,omitempty"`
	EndTime         int64       `json:"endTime,omitempty" yaml:"endTime,omitempty"`
	Recurrence      *Recurrence `json:"recurrence,omitempty" yaml:"recurrence,omitempty"`
}

type FreezeEntityType string

const ENTITY_TYPE_SERVICE FreezeEntityType = "SERVICE"
const ENTITY_TYPE_ENVIRONMENT FreezeEntityType = "ENVIRONMENT"
const ENTITY_TYPE_PIPELINE FreezeEntityType = "PIPELINE"

type EntityFilterType string

const FILTER_ALL EntityFilterType = "ALL"
const FILTER_EQUALS EntityFilterType = "EQUALS"
const FILTER_NOT_EQUALS EntityFilterType = "NOT_EQUALS"

type EntityConfig struct {
	FreezeEntityType FreezeEntityType `json:"freezeEntityType" yaml:"freezeEntityType"`
	FilterType       EntityFilterType `json:"filterType" yaml:"filterType"`
	EntityReference  []string         `json:"entityReference,omitempty" yaml:"entityReference,omitempty"`
}

type FreezeEntityRule struct {
	Name          string         `json:"name" yaml:"name"`
	EntityConfigs []EntityConfig `json:"entityConfigs" yaml:"entityConfigs"`
}

type FreezeConfig struct {
	AccountId   string             `json:"accountId" yaml:"accountId"`
	OrgId       string             `json:"orgId,omitempty" yaml:"orgId,omitempty"`
	ProjectId   string             `json:"projectId,omitempty" yaml:"projectId,omitempty"`
	Identifier  string             `json:"identifier" yaml:"identifier"`
	Name        string             `json:"name" yaml:"name"`
	Description string             `json:"description,omitempty" yaml:"description,omitempty"`
	Type        FreezeType         `json:"type" yaml:"type"`
	Scope       FreezeScope        `json:"scope" yaml:"scope"`
	Status      FreezeStatus       `json:"status" yaml:"status"`
	Windows     []FreezeWindow     `json:"windows" yaml:"windows"`
	Rules       []FreezeEntityRule `json:"rules,omitempty" yaml:"rules,omitempty"`
	Yaml        string             `json:"yaml,omitempty" yaml:"-"`
}

// FreezeSummary is the read projection the evaluator works on.
type FreezeSummary struct {
	AccountId     string             `json:"accountId"`
	OrgId         string             `json:"orgId,omitempty"`
	ProjectId     string             `json:"projectId,omitempty"`
	Identifier    string             `json:"identifier"`
	Name          string             `json:"name"`
	Type          FreezeType         `json:"type"`
	Scope         FreezeScope        `json:"scope"`
	Status        FreezeStatus       `json:"status"`
	Windows       []FreezeWindow     `json:"windows"`
	Rules         []FreezeEntityRule `json:"rules,omitempty"`
	NextIteration *int64             `json:"nextIteration,omitempty"`
}

type FreezeRef struct {
	Identifier string      `json:"identifier"`
	Type       FreezeType  `json:"type"`
	Scope      FreezeScope `json:"scope"`
}

// FrozenExecution is the append once audit snapshot of the freezes that were
// active when a run was gated. Additive schema changes only.
type FrozenExecution struct {
	AccountId        string      `json:"accountId"`
	OrgId            string      `json:"orgId,omitempty"`
	ProjectId        string      `json:"projectId,omitempty"`
	PlanExecutionId  string      `json:"planExecutionId"`
	StageExecutionId string      `json:"stageExecutionId,omitempty"`
	PipelineId       string      `json:"pipelineId,omitempty"`
	ManualFreezeList []FreezeRef `json:"manualFreezeList,omitempty"`
	GlobalFreezeList []FreezeRef `json:"globalFreezeList,omitempty"`
}
