package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// HandlePublishPostTask publishes the post named in the payload. The outcome
// is recorded on the post itself, so failed tasks are never retried.
func (q *Queue) HandlePublishPostTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}

	if err := q.publisher.PublishNow(ctx, payload.PostID, time.Now()); err != nil {
		slog.Warn("publish task failed", "post_id", payload.PostID, "error", err)
		return fmt.Errorf("publish post %d: %v: %w", payload.PostID, err, asynq.SkipRetry)
	}

	return nil
}
