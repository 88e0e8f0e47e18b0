package tasks

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

type TaskType string

const (
	TaskTypeSyncBook TaskType = "sync_book"
)

const (
	DefaultMaxRetries = 3
	maxRetryDelay     = 30 * time.Second
)

type TaskInterface interface {
	Execute(ctx context.Context) error
	GetID() string
	GetType() TaskType
	GetBookName() string
	GetRetryCount() int
	GetMaxRetries() int
	IncrementRetryCount()
	CanRetry() bool
	RetryDelay() time.Duration
	Start()
	GetDuration() time.Duration
}

type Task struct {
	ID         string
	Type       TaskType
	BookName   string
	RetryCount int
	MaxRetries int
	StartedAt  *time.Time
}

func (t *Task) GetID() string {
	return t.ID
}

func (t *Task) GetType() TaskType {
	return t.Type
}

func (t *Task) GetBookName() string {
	return t.BookName
}

func (t *Task) GetRetryCount() int {
	return t.RetryCount
}

func (t *Task) GetMaxRetries() int {
	return t.MaxRetries
}

func (t *Task) IncrementRetryCount() {
	t.RetryCount++
}

func (t *Task) CanRetry() bool {
	return t.RetryCount < t.MaxRetries
}

func (t *Task) Start() {
	now := time.Now()
	t.StartedAt = &now
}

func (t *Task) GetDuration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	return time.Since(*t.StartedAt)
}

func NewTask(taskType TaskType, bookName string) Task {
	uniqueID := fmt.Sprintf("%d-%d", time.Now().UnixNano(), rand.Intn(10000))

	return Task{
		ID:         uniqueID,
		Type:       taskType,
		BookName:   bookName,
		RetryCount: 0,
		MaxRetries: DefaultMaxRetries,
	}
}

// RetryDelay is the backoff before the next attempt: 1s doubled per retry, capped at 30s.
func (t *Task) RetryDelay() time.Duration {
	if t.RetryCount < 1 {
		return 0
	}
	delay := time.Duration(1<<uint(t.RetryCount-1)) * time.Second
	return min(delay, maxRetryDelay)
}
