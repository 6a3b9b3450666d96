package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

var ErrAlreadyQueued = errors.New("post is already queued for publishing")

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// EnqueuePublish queues a single post for publishing after delay. The task id
// includes the post revision: asynq keeps failed tasks archived under their
// id, and recording the failure moves the post to a new revision.
func EnqueuePublish(client Enqueuer, payload PublishPostPayload, delay time.Duration) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypePublishPost, taskPayload)

	_, err = client.Enqueue(task,
		asynq.ProcessIn(delay),
		asynq.MaxRetry(0),
		asynq.TaskID(publishTaskID(payload)),
	)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return ErrAlreadyQueued
		}
		return err
	}

	slog.Info("publish task queued", "post_id", payload.PostID, "delay", delay.String())
	return nil
}

func publishTaskID(payload PublishPostPayload) string {
	return fmt.Sprintf("publish-post-%d-%d", payload.PostID, payload.Revision)
}
