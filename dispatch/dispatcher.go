package dispatch

import (
	"github.com/google/uuid"
	"github.com/mohitkumar/shipyard/logger"
	"github.com/mohitkumar/shipyard/model"
	"github.com/mohitkumar/shipyard/persistence"
	"github.com/mohitkumar/shipyard/util"
	"go.uber.org/zap"
)

// TASK_QUEUE_NAME is the queue remote workers drain. Queue keys are
// partitioned by run id so runs never contend on one list.
const TASK_QUEUE_NAME string = "worker-task"

type QueueDispatcher struct {
	queue          persistence.TaskQueue
	encoderDecoder util.EncoderDecoder[model.WorkerTask]
}

func NewQueueDispatcher(queue persistence.TaskQueue, encoderDecoder util.EncoderDecoder[model.WorkerTask]) *QueueDispatcher {
	return &QueueDispatcher{
		queue:          queue,
		encoderDecoder: encoderDecoder,
	}
}

func (d *QueueDispatcher) Dispatch(task model.WorkerTask) (string, error) {
	if task.CorrelationId == "" {
		task.CorrelationId = uuid.New().String()
	}
	data, err := d.encoderDecoder.Encode(task)
	if err != nil {
		return "", err
	}
	if err := d.queue.Push(TASK_QUEUE_NAME, task.RunId, data); err != nil {
		return "", err
	}
	logger.Info("dispatched worker task", zap.String("step", task.StepName), zap.String("runId", task.RunId), zap.String("correlationId", task.CorrelationId))
	return task.CorrelationId, nil
}
