package persistence

import (
	"fmt"

	"github.com/mohitkumar/shipyard/model"
)

type StorageLayerError struct {
	Message string
}

func (e StorageLayerError) Error() string {
	return fmt.Sprintf("storage layer error %s", e.Message)
}

type NotFoundError struct {
	Kind string
	Id   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.Id)
}

type DuplicateKeyError struct {
	Kind string
	Key  string
}

func (e DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s %s already exists", e.Kind, e.Key)
}

type EmptyQueueError struct {
	QueueName string
}

func (e EmptyQueueError) Error() string {
	return fmt.Sprintf("queue %s is empty", e.QueueName)
}

// SweepingOutputStore is create-if-absent: a second Save for the same
// (scope, name, run) fails with DuplicateKeyError.
type SweepingOutputStore interface {
	Save(output model.SweepingOutput) error
	Get(scope model.SweepingOutputScope, name string, runId string) (*model.SweepingOutput, error)
}

type ActivityStore interface {
	Create(activity model.ActivityRecord) error
	UpdateStatus(id string, status model.ActivityStatus) error
	Get(id string) (*model.ActivityRecord, error)
}

// StateExecutionStore holds the awaiting snapshot of a suspended step.
// Consume removes and returns it in one call so a resume happens exactly once.
type StateExecutionStore interface {
	Save(data model.StateExecutionData) error
	Consume(runId string, stepName string) (*model.StateExecutionData, error)
}

type FreezeStore interface {
	Save(config model.FreezeConfig) error
	Update(config model.FreezeConfig) error
	Get(accountId string, orgId string, projectId string, identifier string) (*model.FreezeConfig, error)
	Delete(accountId string, orgId string, projectId string, identifier string) error
	List(accountId string, orgId string, projectId string) ([]model.FreezeConfig, error)
}

type FrozenExecutionStore interface {
	Save(execution model.FrozenExecution) error
	List(accountId string, planExecutionId string) ([]model.FrozenExecution, error)
}

type TaskQueue interface {
	Push(queueName string, runId string, message []byte) error
	Pop(queueName string, batchSize int) ([]string, error)
}
