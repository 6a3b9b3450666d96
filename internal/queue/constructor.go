package queue

import (
	"context"
	"time"
)

type PostPublisher interface {
	PublishNow(ctx context.Context, postID int64, now time.Time) error
}

type Queue struct {
	publisher PostPublisher
}

func NewQueue(publisher PostPublisher) *Queue {
	return &Queue{publisher: publisher}
}

const TaskTypePublishPost = "linkedin:publish"

type PublishPostPayload struct {
	PostID int64 `json:"post_id"`
	// Revision is the post's updated_at in unix nanoseconds when it was queued.
	Revision int64 `json:"revision"`
}
