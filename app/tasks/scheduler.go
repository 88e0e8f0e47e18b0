package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/news-rss/app/database"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	books       BookSource
	capturer    PageCapturer
	pageRepo    database.PageRepository
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
	pending     sync.Map // book name -> struct{}, while a sync task is queued or running
}

func NewScheduler(books BookSource, capturer PageCapturer, pageRepo database.PageRepository,
	interval time.Duration, workerCount int) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		books:       books,
		capturer:    capturer,
		pageRepo:    pageRepo,
		interval:    interval,
		workerCount: max(workerCount, 1),
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 300),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}

	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// SyncBook enqueues a sync of one book unless one is already pending.
func (s *Scheduler) SyncBook(bookName string) error {
	book := s.books.GetBookByName(bookName)
	if book == nil {
		return fmt.Errorf("book not found: %s", bookName)
	}

	if _, loaded := s.pending.LoadOrStore(book.Name, struct{}{}); loaded {
		slog.Debug("Book sync already pending", "book", book.Name)
		return nil
	}

	if err := s.EnqueueTask(NewSyncBookTask(book, s.capturer, s.pageRepo)); err != nil {
		s.pending.Delete(book.Name)
		return err
	}
	return nil
}

func (s *Scheduler) enqueueTasks() {
	books := s.books.GetBooks()
	if len(books) == 0 {
		slog.Debug("No books configured")
		return
	}

	slog.Debug("Scheduling book syncs", "count", len(books))

	for _, book := range books {
		if err := s.SyncBook(book.Name); err != nil {
			slog.Warn("Failed to enqueue SyncBookTask", "book", book.Name, "error", err)
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		s.pending.Delete(task.GetBookName())
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry() {
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		s.pending.Delete(task.GetBookName())
		return
	}

	task.IncrementRetryCount()
	retryDelay := task.RetryDelay()

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "book", task.GetBookName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

	go func() {
		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
		case <-time.After(retryDelay):
			if retryErr := s.EnqueueTask(task); retryErr != nil {
				slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
				s.pending.Delete(task.GetBookName())
			}
		}
	}()
}
