package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"drivedesk/internal/domain"
	"drivedesk/internal/mailer"
	"drivedesk/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// MailTask is one confirmation email waiting to be delivered.
type MailTask struct {
	Booking   *models.Booking `json:"booking"`
	Attempts  int             `json:"attempts"`
	CreatedAt time.Time       `json:"created_at"`
}

// MailWorker delivers confirmation emails off the request path. Tasks go to a
// redis list when available and to an in-memory channel otherwise; failed
// deliveries are retried with backoff and end up on a dead-letter list.
type MailWorker struct {
	mailer        domain.Mailer
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan MailTask
	redisQueueKey string
	deadLetterKey string
	pollInterval  time.Duration
	logger        *zerolog.Logger
}

// NewMailWorker builds a worker with sane defaults. redisClient may be nil.
func NewMailWorker(m domain.Mailer, redisClient *redis.Client, queueKey string, retry RetryPolicy, logger *zerolog.Logger) *MailWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 1 * time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}
	if queueKey == "" {
		queueKey = "mail:queue"
	}

	return &MailWorker{
		mailer:        m,
		redis:         redisClient,
		retryPolicy:   retry,
		queue:         make(chan MailTask, models.MailQueueSize),
		redisQueueKey: queueKey,
		deadLetterKey: queueKey + ":deadletter",
		pollInterval:  time.Second,
		logger:        logger,
	}
}

// EnqueueConfirmation schedules the confirmation email for a booking.
// Booking creation does not depend on the outcome of delivery.
func (w *MailWorker) EnqueueConfirmation(ctx context.Context, booking *models.Booking) error {
	if booking == nil || booking.ID == "" {
		return errors.New("booking is required")
	}

	task := MailTask{Booking: booking, CreatedAt: time.Now()}

	// Try redis first for durability.
	if w.redis != nil {
		if err := w.pushRedis(ctx, task); err != nil {
			w.logger.Warn().Err(err).Msg("mail_worker: redis push failed, fallback to memory queue")
		} else {
			return nil
		}
	}

	select {
	case w.queue <- task:
	default:
		w.logger.Error().Str("booking_id", booking.ID).Msg("mail_worker: queue full, confirmation dropped")
	}

	return nil
}

// Start launches the delivery loop; stops when ctx is done.
func (w *MailWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("mail_worker: started")
	defer w.logger.Info().Msg("mail_worker: stopped")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if task, ok := w.tryLocalQueue(); ok {
			w.processTask(ctx, task)
			continue
		}

		if task, ok := w.tryRedis(ctx); ok {
			w.processTask(ctx, task)
			continue
		}

		select {
		case <-ctx.Done():
			return
		case task := <-w.queue:
			w.processTask(ctx, task)
		case <-time.After(w.pollInterval):
		}
	}
}

func (w *MailWorker) tryLocalQueue() (MailTask, bool) {
	select {
	case t := <-w.queue:
		return t, true
	default:
		return MailTask{}, false
	}
}

func (w *MailWorker) tryRedis(ctx context.Context) (MailTask, bool) {
	if w.redis == nil {
		return MailTask{}, false
	}
	res, err := w.redis.BRPop(ctx, w.pollInterval, w.redisQueueKey).Result()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, redis.Nil) {
			return MailTask{}, false
		}
		w.logger.Warn().Err(err).Msg("mail_worker: redis BRPOP error")
		return MailTask{}, false
	}
	if len(res) != 2 {
		return MailTask{}, false
	}
	var task MailTask
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		w.logger.Error().Err(err).Msg("mail_worker: decode redis task")
		return MailTask{}, false
	}
	return task, true
}

func (w *MailWorker) processTask(ctx context.Context, task MailTask) {
	if task.Booking == nil {
		w.logger.Error().Msg("mail_worker: task without booking")
		return
	}

	msg := mailer.BuildConfirmation(task.Booking)
	if err := w.mailer.Send(ctx, msg); err != nil {
		w.retryOrFail(ctx, task, err)
	}
}

func (w *MailWorker) retryOrFail(ctx context.Context, task MailTask, cause error) {
	task.Attempts++
	if task.Attempts >= w.retryPolicy.MaxRetries {
		w.logger.Error().Err(cause).
			Str("booking_id", task.Booking.ID).
			Int("attempts", task.Attempts).
			Msg("mail_worker: giving up on confirmation")
		w.pushDeadLetter(ctx, task)
		return
	}

	delay := w.retryPolicy.NextDelay(task.Attempts)
	w.logger.Warn().Err(cause).
		Str("booking_id", task.Booking.ID).
		Dur("retry_in", delay).
		Msg("mail_worker: delivery failed, retrying")

	time.AfterFunc(delay, func() {
		select {
		case w.queue <- task:
		default:
			w.pushDeadLetter(context.Background(), task)
		}
	})
}

func (w *MailWorker) pushRedis(ctx context.Context, task MailTask) error {
	if w.redis == nil {
		return errors.New("redis client is nil")
	}
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return w.redis.LPush(ctx, w.redisQueueKey, data).Err()
}

func (w *MailWorker) pushDeadLetter(ctx context.Context, task MailTask) {
	if w.redis == nil {
		return
	}
	data, err := json.Marshal(task)
	if err != nil {
		w.logger.Error().Err(err).Msg("mail_worker: encode deadletter")
		return
	}
	if err := w.redis.LPush(ctx, w.deadLetterKey, data).Err(); err != nil {
		w.logger.Error().Err(err).Msg("mail_worker: deadletter push")
	}
}
