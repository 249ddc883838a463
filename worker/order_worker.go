package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"storefront-api/models"
	"storefront-api/queue"
	"storefront-api/services/email"
)

const (
	dequeueTimeout      = 5 * time.Second
	delayedPollInterval = 5 * time.Second
	errorBackoff        = time.Second
)

// Worker consumes background jobs: today, order confirmation emails.
type Worker struct {
	queue    *queue.Queue
	sender   email.EmailSender
	logger   *zap.Logger
	shutdown chan struct{}
	wg       sync.WaitGroup

	mu        sync.Mutex
	isRunning bool
}

func NewWorker(q *queue.Queue, sender email.EmailSender, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		queue:    q,
		sender:   sender,
		logger:   logger,
		shutdown: make(chan struct{}),
	}
}

// Start launches concurrency job processors and one delayed-job poller.
func (w *Worker) Start(concurrency int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.isRunning {
		return
	}
	w.isRunning = true

	for i := 0; i < concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(i)
	}

	w.wg.Add(1)
	go w.pollDelayedJobs()

	w.logger.Info("started worker goroutines", zap.Int("concurrency", concurrency))
}

// Stop signals every goroutine and waits for in-flight jobs to finish.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return
	}
	w.isRunning = false
	close(w.shutdown)
	w.mu.Unlock()

	w.logger.Info("stopping worker")
	w.wg.Wait()
}

func (w *Worker) stopping() bool {
	select {
	case <-w.shutdown:
		return true
	default:
		return false
	}
}

func (w *Worker) sleep(d time.Duration) {
	select {
	case <-w.shutdown:
	case <-time.After(d):
	}
}

func (w *Worker) processJobs(workerID int) {
	defer w.wg.Done()
	log := w.logger.With(zap.Int("worker_id", workerID))

	for !w.stopping() {
		ctx, cancel := context.WithTimeout(context.Background(), dequeueTimeout+10*time.Second)
		job, err := w.queue.Dequeue(ctx, dequeueTimeout)
		cancel()

		if err != nil {
			log.Error("error dequeuing job", zap.Error(err))
			w.sleep(errorBackoff)
			continue
		}
		if job == nil {
			continue
		}

		w.handle(log, job)
	}

	log.Info("worker shutting down")
}

func (w *Worker) handle(log *zap.Logger, job *queue.Job) {
	log = log.With(zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
	log.Info("processing job", zap.Int("retry", job.RetryCount))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if jobErr := w.processJob(job); jobErr != nil {
		log.Error("error processing job", zap.Error(jobErr))

		if errors.Is(jobErr, errPermanent) {
			job.RetryCount = queue.MaxRetries
		}
		if err := w.queue.FailJob(ctx, job, jobErr); err != nil {
			log.Error("error marking job as failed", zap.Error(err))
		}
		return
	}

	if err := w.queue.CompleteJob(ctx, job); err != nil {
		log.Error("error marking job as complete", zap.Error(err))
	}
}

// errPermanent marks failures that retrying cannot fix.
var errPermanent = errors.New("permanent job failure")

func (w *Worker) processJob(job *queue.Job) error {
	switch job.Type {
	case queue.JobTypeOrderConfirmation:
		return w.processOrderConfirmation(job)
	default:
		return fmt.Errorf("%w: unknown job type %s", errPermanent, job.Type)
	}
}

func (w *Worker) processOrderConfirmation(job *queue.Job) error {
	var summary models.OrderSummary
	if err := job.Decode(&summary); err != nil {
		return fmt.Errorf("%w: %v", errPermanent, err)
	}

	if err := w.sender.SendOrderConfirmation(summary); err != nil {
		if errors.Is(err, email.ErrNoRecipient) {
			return fmt.Errorf("%w: %v", errPermanent, err)
		}
		return fmt.Errorf("failed to send confirmation for %s: %w", summary.OrderNumber, err)
	}

	w.logger.Info("order confirmation sent", zap.String("order_number", summary.OrderNumber))
	return nil
}

func (w *Worker) pollDelayedJobs() {
	defer w.wg.Done()
	ticker := time.NewTicker(delayedPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.shutdown:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if _, err := w.queue.ProcessDelayedJobs(ctx); err != nil {
				w.logger.Error("error processing delayed jobs", zap.Error(err))
			}
			cancel()
		}
	}
}
