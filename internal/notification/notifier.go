package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/coop-portal-api/pkg/config"
	"github.com/noah-isme/coop-portal-api/pkg/jobs"
)

// JobType tags notification jobs on the queue.
const JobType = "eligibility_notice"

// Delivery outcomes reported to the OutcomeRecorder.
const (
	OutcomeSent     = "sent"
	OutcomeFailed   = "failed"
	OutcomeDropped  = "dropped"
	OutcomeRejected = "rejected"
)

// OutcomeRecorder receives one observation per delivery attempt.
type OutcomeRecorder interface {
	ObserveNotification(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveNotification(string) {}

// Enqueuer accepts jobs for background processing.
type Enqueuer interface {
	Enqueue(job jobs.Job) error
}

// Notifier hands notices to a worker queue and delivers them with a Dispatcher.
type Notifier struct {
	dispatcher Dispatcher
	queue      Enqueuer
	recorder   OutcomeRecorder
	logger     *zap.Logger
}

// NewNotifier wires a notifier. Call Attach with the queue built from Handle
// before enqueuing.
func NewNotifier(dispatcher Dispatcher, recorder OutcomeRecorder, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Notifier{dispatcher: dispatcher, recorder: recorder, logger: logger}
}

// Attach sets the queue used by NotifyEligible.
func (n *Notifier) Attach(queue Enqueuer) {
	n.queue = queue
}

// NotifyEligible enqueues a notice and returns without waiting for delivery.
func (n *Notifier) NotifyEligible(_ context.Context, notice Notice) error {
	if n.queue == nil {
		n.recorder.ObserveNotification(OutcomeRejected)
		return fmt.Errorf("notification queue not attached")
	}
	job := jobs.Job{ID: uuid.NewString(), Type: JobType, Payload: notice}
	if err := n.queue.Enqueue(job); err != nil {
		n.recorder.ObserveNotification(OutcomeRejected)
		return fmt.Errorf("enqueue notice: %w", err)
	}
	return nil
}

// Handle is the queue handler delivering a single notice job.
func (n *Notifier) Handle(ctx context.Context, job jobs.Job) error {
	notice, ok := job.Payload.(Notice)
	if !ok {
		n.recorder.ObserveNotification(OutcomeDropped)
		n.logger.Error("unexpected notification payload", zap.String("job_id", job.ID))
		return nil
	}
	if err := n.dispatcher.Notify(ctx, notice); err != nil {
		n.recorder.ObserveNotification(OutcomeFailed)
		n.logger.Warn("notice delivery failed",
			zap.String("job_id", job.ID),
			zap.Int("attempt", job.Attempt),
			zap.String("to", notice.RecipientEmail),
			zap.Error(err),
		)
		return err
	}
	n.recorder.ObserveNotification(OutcomeSent)
	n.logger.Debug("notice delivered", zap.String("job_id", job.ID), zap.String("to", notice.RecipientEmail))
	return nil
}

// NewDispatcher selects a dispatcher from configuration.
func NewDispatcher(cfg config.NotificationsConfig, logger *zap.Logger) Dispatcher {
	switch cfg.Driver {
	case config.NotifyDriverWebhook:
		return NewWebhookDispatcher(cfg.WebhookURL, cfg.WebhookToken, cfg.Timeout)
	case config.NotifyDriverSendGrid:
		return NewSendGridDispatcher(cfg.SendGridKey, cfg.FromName, cfg.FromEmail)
	default:
		return NewLogDispatcher(logger)
	}
}

// NewQueue builds the worker queue delivering notices for n.
func NewQueue(n *Notifier, cfg config.NotificationsConfig, logger *zap.Logger) *jobs.Queue {
	queue := jobs.NewQueue("notifications", n.Handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		JobTimeout: cfg.Timeout,
		OnExhausted: func(job jobs.Job, err error) {
			n.recorder.ObserveNotification(OutcomeDropped)
			n.logger.Error("eligibility notice abandoned", zap.String("job_id", job.ID), zap.Int("attempts", job.Attempt), zap.Error(err))
		},
		Logger: logger,
	})
	n.Attach(queue)
	return queue
}
