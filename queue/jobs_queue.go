package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type JobType string

const (
	JobTypeOrderConfirmation JobType = "order_confirmation"
)

const (
	MaxRetries     = 5
	BaseRetryDelay = 15 * time.Second
)

var ErrJobNotFound = errors.New("job not found in failed queue")

type Job struct {
	ID          string          `json:"id"`
	Type        JobType         `json:"type"`
	Payload     json.RawMessage `json:"payload"`
	CreatedAt   time.Time       `json:"created_at"`
	RetryCount  int             `json:"retry_count"`
	LastError   string          `json:"last_error,omitempty"`
	NextRetryAt *time.Time      `json:"next_retry_at,omitempty"`

	// raw is the exact entry held in the processing list.
	raw string
}

// Decode unmarshals the job payload into v.
func (j *Job) Decode(v interface{}) error {
	if err := json.Unmarshal(j.Payload, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", j.Type, err)
	}
	return nil
}

// IsLastAttempt reports whether a failure of this run moves the job to the failed list.
func (j *Job) IsLastAttempt() bool {
	return j.RetryCount >= MaxRetries
}

// RetryDelay is the backoff applied after the given failed attempt (1-based).
func RetryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return BaseRetryDelay * time.Duration(1<<(attempt-1))
}

type Queue struct {
	client     *redis.Client
	queueName  string
	processing string
	delayed    string
	failed     string
	logger     *zap.Logger
	now        func() time.Time
}

func NewQueue(redisURL, queueName string, logger *zap.Logger) (*Queue, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewQueueWithClient(client, queueName, logger), nil
}

func NewQueueWithClient(client *redis.Client, queueName string, logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{
		client:     client,
		queueName:  queueName,
		processing: queueName + ":processing",
		delayed:    queueName + ":delayed",
		failed:     queueName + ":failed",
		logger:     logger,
		now:        time.Now,
	}
}

func (q *Queue) newJob(jobType JobType, payload interface{}) (*Job, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal %s payload: %w", jobType, err)
	}

	job := &Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Payload:   body,
		CreatedAt: q.now().UTC(),
	}

	jobJSON, err := json.Marshal(job)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal job: %w", err)
	}
	return job, jobJSON, nil
}

func (q *Queue) Enqueue(ctx context.Context, jobType JobType, payload interface{}) (*Job, error) {
	job, jobJSON, err := q.newJob(jobType, payload)
	if err != nil {
		return nil, err
	}

	if err := q.client.RPush(ctx, q.queueName, jobJSON).Err(); err != nil {
		return nil, fmt.Errorf("failed to push job to queue: %w", err)
	}

	q.logger.Info("enqueued job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
	return job, nil
}

func (q *Queue) schedule(ctx context.Context, jobJSON []byte, at time.Time) error {
	err := q.client.ZAdd(ctx, q.delayed, &redis.Z{
		Score:  float64(at.Unix()),
		Member: jobJSON,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to push delayed job to queue: %w", err)
	}
	return nil
}

// Dequeue blocks up to timeout for the next job. It returns nil, nil when none arrived.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*Job, error) {
	result, err := q.client.BLPop(ctx, timeout, q.queueName).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job from queue: %w", err)
	}

	if len(result) < 2 {
		return nil, fmt.Errorf("unexpected BLPOP result format")
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		q.pushFailedRaw(ctx, result[1])
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	job.raw = result[1]

	if err := q.client.RPush(ctx, q.processing, result[1]).Err(); err != nil {
		q.logger.Warn("failed to move job to processing list", zap.String("job_id", job.ID), zap.Error(err))
	}

	return &job, nil
}

func (q *Queue) pushFailedRaw(ctx context.Context, raw string) {
	if err := q.client.RPush(ctx, q.failed, raw).Err(); err != nil {
		q.logger.Error("failed to park unreadable job", zap.Error(err))
	}
}

func (q *Queue) CompleteJob(ctx context.Context, job *Job) error {
	if err := q.client.LRem(ctx, q.processing, 1, job.raw).Err(); err != nil {
		return fmt.Errorf("failed to remove job from processing queue: %w", err)
	}

	q.logger.Info("completed job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
	return nil
}

// FailJob records the error and schedules a retry with exponential backoff,
// or parks the job on the failed list once MaxRetries is reached.
func (q *Queue) FailJob(ctx context.Context, job *Job, jobErr error) error {
	if err := q.client.LRem(ctx, q.processing, 1, job.raw).Err(); err != nil {
		q.logger.Warn("failed to remove job from processing list", zap.String("job_id", job.ID), zap.Error(err))
	}

	exhausted := job.IsLastAttempt()
	job.RetryCount++
	job.LastError = jobErr.Error()

	if !exhausted {
		delay := RetryDelay(job.RetryCount)
		retryAt := q.now().Add(delay)
		job.NextRetryAt = &retryAt

		jobJSON, err := json.Marshal(job)
		if err != nil {
			return fmt.Errorf("failed to marshal job: %w", err)
		}

		if err := q.schedule(ctx, jobJSON, retryAt); err != nil {
			q.logger.Warn("failed to schedule retry, moving job to failed list",
				zap.String("job_id", job.ID), zap.Error(err))
			if err := q.client.RPush(ctx, q.failed, jobJSON).Err(); err != nil {
				return fmt.Errorf("failed to push job to failed queue: %w", err)
			}
			return nil
		}

		q.logger.Warn("job scheduled for retry",
			zap.String("job_id", job.ID),
			zap.String("type", string(job.Type)),
			zap.Int("retry", job.RetryCount),
			zap.Int("max_retries", MaxRetries),
			zap.Duration("delay", delay),
			zap.Error(jobErr),
		)
		return nil
	}

	job.NextRetryAt = nil
	jobJSON, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	if err := q.client.RPush(ctx, q.failed, jobJSON).Err(); err != nil {
		return fmt.Errorf("failed to push job to failed queue: %w", err)
	}

	q.logger.Error("job moved to failed list, retries exhausted",
		zap.String("job_id", job.ID),
		zap.String("type", string(job.Type)),
		zap.Int("retries", job.RetryCount),
		zap.Error(jobErr),
	)
	return nil
}

// ProcessDelayedJobs moves every due delayed job onto the main queue.
func (q *Queue) ProcessDelayedJobs(ctx context.Context) (int, error) {
	jobs, err := q.client.ZRangeByScore(ctx, q.delayed, &redis.ZRangeBy{
		Min: "0",
		Max: fmt.Sprintf("%d", q.now().Unix()),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get delayed jobs: %w", err)
	}

	moved := 0
	for _, jobJSON := range jobs {
		// ZRem first so two pollers never both requeue the same entry.
		removed, err := q.client.ZRem(ctx, q.delayed, jobJSON).Result()
		if err != nil {
			q.logger.Warn("failed to remove job from delayed set", zap.Error(err))
			continue
		}
		if removed == 0 {
			continue
		}

		if err := q.client.RPush(ctx, q.queueName, jobJSON).Err(); err != nil {
			q.logger.Error("failed to move delayed job to main queue", zap.Error(err))
			continue
		}
		moved++
	}

	if moved > 0 {
		q.logger.Info("moved delayed jobs to main queue", zap.Int("count", moved))
	}
	return moved, nil
}

// RetryJob requeues a job from the failed list with its retry count reset.
func (q *Queue) RetryJob(ctx context.Context, jobID string) error {
	jobs, err := q.client.LRange(ctx, q.failed, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to list failed jobs: %w", err)
	}

	for _, jobJSON := range jobs {
		var job Job
		if err := json.Unmarshal([]byte(jobJSON), &job); err != nil {
			continue
		}
		if job.ID != jobID {
			continue
		}

		if err := q.client.LRem(ctx, q.failed, 1, jobJSON).Err(); err != nil {
			return fmt.Errorf("failed to remove job from failed queue: %w", err)
		}

		job.RetryCount = 0
		job.NextRetryAt = nil
		updated, err := json.Marshal(job)
		if err != nil {
			return fmt.Errorf("failed to marshal job: %w", err)
		}

		if err := q.client.RPush(ctx, q.queueName, updated).Err(); err != nil {
			return fmt.Errorf("failed to push job to main queue: %w", err)
		}

		q.logger.Info("manually requeued job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		return nil
	}

	return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
}

// Stats reports the length of each list the queue maintains.
func (q *Queue) Stats(ctx context.Context) (map[string]int64, error) {
	pipe := q.client.Pipeline()
	pending := pipe.LLen(ctx, q.queueName)
	processing := pipe.LLen(ctx, q.processing)
	delayed := pipe.ZCard(ctx, q.delayed)
	failed := pipe.LLen(ctx, q.failed)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to read queue stats: %w", err)
	}
	return map[string]int64{
		"pending":    pending.Val(),
		"processing": processing.Val(),
		"delayed":    delayed.Val(),
		"failed":     failed.Val(),
	}, nil
}

func (q *Queue) Client() *redis.Client {
	return q.client
}

func (q *Queue) Close() error {
	return q.client.Close()
}
