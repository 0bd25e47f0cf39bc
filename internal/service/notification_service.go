package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/college-notes-api/internal/models"
	"github.com/noah-isme/college-notes-api/pkg/jobs"
	"github.com/noah-isme/college-notes-api/pkg/mailer"
)

const (
	jobContentPublished = "content.published"
	jobContentRejected  = "content.rejected"
	jobEventCreated     = "event.created"
)

type recipientRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	ListInterestedRecipients(ctx context.Context, department string, category models.NotificationCategory, excludeID string) ([]models.Recipient, error)
}

type messageRenderer interface {
	Render(name, recipientName string, data interface{}) (string, string, error)
}

// NotifierConfig sizes the background queue and the per-job fan-out.
type NotifierConfig struct {
	Workers     int
	BufferSize  int
	Concurrency int
	SendTimeout time.Duration
}

// Delivery summarises one fan-out.
type Delivery struct {
	Attempted int
	Failed    int
}

// Notifier fans notices out to interested users on a bounded worker queue.
// Nothing it does is reported back to the triggering request: failures are
// logged and counted, never retried.
type Notifier struct {
	users       recipientRepository
	renderer    messageRenderer
	sender      mailer.Sender
	metrics     *MetricsService
	logger      *zap.Logger
	queue       *jobs.Queue
	concurrency int
	sendTimeout time.Duration
}

type publishedJob struct {
	Item    models.ContentItem
	Variant ContentVariant
}

type rejectedJob struct {
	Item    models.ContentItem
	Variant ContentVariant
	Reason  string
}

// NewNotifier wires the fan-out queue. Call Start before submitting notices.
func NewNotifier(users recipientRepository, renderer messageRenderer, sender mailer.Sender, metrics *MetricsService, logger *zap.Logger, cfg NotifierConfig) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 15 * time.Second
	}
	n := &Notifier{
		users:       users,
		renderer:    renderer,
		sender:      sender,
		metrics:     metrics,
		logger:      logger.With(zap.String("component", "notifier")),
		concurrency: cfg.Concurrency,
		sendTimeout: cfg.SendTimeout,
	}
	n.queue = jobs.NewQueue("notifications", n.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: 0,
		Logger:     logger,
	})
	return n
}

// Start launches the queue workers.
func (n *Notifier) Start(ctx context.Context) {
	n.queue.Start(ctx)
}

// Stop waits for queued notices to drain or ctx to expire.
func (n *Notifier) Stop(ctx context.Context) error {
	return n.queue.Stop(ctx)
}

// NotifyPublished tells interested users of the item's department about it.
func (n *Notifier) NotifyPublished(item *models.ContentItem) {
	variant, ok := VariantFor(item.Kind)
	if !ok {
		return
	}
	n.submit(jobContentPublished, publishedJob{Item: *item, Variant: variant})
}

// NotifyRejected sends a single notice to the uploader.
func (n *Notifier) NotifyRejected(item *models.ContentItem, reason string) {
	variant, ok := VariantFor(item.Kind)
	if !ok {
		return
	}
	n.submit(jobContentRejected, rejectedJob{Item: *item, Variant: variant, Reason: reason})
}

// NotifyEvent announces a new event to its department.
func (n *Notifier) NotifyEvent(event *models.Event) {
	n.submit(jobEventCreated, *event)
}

func (n *Notifier) submit(jobType string, payload interface{}) {
	if err := n.queue.Enqueue(jobs.Job{Type: jobType, Payload: payload}); err != nil {
		n.metrics.RecordNotification(jobType, OutcomeDropped)
		n.logger.Error("notification dropped", zap.String("type", jobType), zap.Error(err))
	}
}

func (n *Notifier) handle(ctx context.Context, job jobs.Job) error {
	switch payload := job.Payload.(type) {
	case publishedJob:
		return n.deliverPublished(ctx, payload)
	case rejectedJob:
		return n.deliverRejected(ctx, payload)
	case models.Event:
		return n.deliverEvent(ctx, payload)
	default:
		return fmt.Errorf("unexpected notification payload %T", job.Payload)
	}
}

func (n *Notifier) deliverPublished(ctx context.Context, job publishedJob) error {
	item := job.Item
	recipients, err := n.users.ListInterestedRecipients(ctx, item.Department, job.Variant.Notify, item.UploadedBy)
	if err != nil {
		return fmt.Errorf("resolve recipients: %w", err)
	}
	data := map[string]interface{}{
		"KindLabel":  job.Variant.Label,
		"Department": item.Department,
		"Semester":   item.Semester,
		"Title":      item.Title,
		"Subject":    item.Subject,
		"Path":       job.Variant.Path,
		"ID":         item.ID,
	}
	subject := fmt.Sprintf("New %s: %s", job.Variant.Label, item.Title)
	delivery := n.FanOut(ctx, jobContentPublished, recipients, mailer.TemplateContentPublished, subject, data)
	n.logger.Info("publication notices sent",
		zap.String("item_id", item.ID),
		zap.String("kind", string(item.Kind)),
		zap.Int("recipients", delivery.Attempted),
		zap.Int("failed", delivery.Failed),
	)
	return nil
}

func (n *Notifier) deliverRejected(ctx context.Context, job rejectedJob) error {
	uploader, err := n.users.FindByID(ctx, job.Item.UploadedBy)
	if err != nil {
		return fmt.Errorf("resolve uploader: %w", err)
	}
	data := map[string]interface{}{
		"KindLabel": job.Variant.Label,
		"Title":     job.Item.Title,
		"Reason":    job.Reason,
	}
	recipient := models.Recipient{ID: uploader.ID, Email: uploader.Email, FullName: uploader.FullName}
	subject := fmt.Sprintf("Your %s was not approved", job.Variant.Label)
	n.FanOut(ctx, jobContentRejected, []models.Recipient{recipient}, mailer.TemplateContentRejected, subject, data)
	return nil
}

func (n *Notifier) deliverEvent(ctx context.Context, event models.Event) error {
	recipients, err := n.users.ListInterestedRecipients(ctx, event.Department, models.NotifyCategoryEvents, event.CreatedBy)
	if err != nil {
		return fmt.Errorf("resolve recipients: %w", err)
	}
	data := map[string]interface{}{
		"Department": event.Department,
		"Title":      event.Title,
		"StartsAt":   event.StartsAt.Format("Mon, 02 Jan 2006 15:04 MST"),
		"Location":   event.Location,
		"ID":         event.ID,
	}
	delivery := n.FanOut(ctx, jobEventCreated, recipients, mailer.TemplateEventCreated, "New event: "+event.Title, data)
	n.logger.Info("event notices sent",
		zap.String("event_id", event.ID),
		zap.Int("recipients", delivery.Attempted),
		zap.Int("failed", delivery.Failed),
	)
	return nil
}

// FanOut sends one message per recipient with bounded concurrency and waits
// for all of them. A failed delivery never stops the others.
func (n *Notifier) FanOut(ctx context.Context, kind string, recipients []models.Recipient, template, subject string, data interface{}) Delivery {
	var failed atomic.Int64

	var g errgroup.Group
	g.SetLimit(n.concurrency)
	for _, recipient := range recipients {
		g.Go(func() error {
			if err := n.deliver(ctx, recipient, template, subject, data); err != nil {
				failed.Add(1)
				n.metrics.RecordNotification(kind, OutcomeFailure)
				n.logger.Warn("notification delivery failed",
					zap.String("type", kind),
					zap.String("recipient", recipient.Email),
					zap.Error(err),
				)
				return nil
			}
			n.metrics.RecordNotification(kind, OutcomeSuccess)
			return nil
		})
	}
	_ = g.Wait()

	delivery := Delivery{Attempted: len(recipients), Failed: int(failed.Load())}
	if delivery.Failed > 0 {
		n.logger.Error("notification fan-out incomplete",
			zap.String("type", kind),
			zap.Int("attempted", delivery.Attempted),
			zap.Int("failed", delivery.Failed),
		)
	}
	return delivery
}

func (n *Notifier) deliver(ctx context.Context, recipient models.Recipient, template, subject string, data interface{}) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sender panicked: %v", r)
		}
	}()
	if recipient.Email == "" {
		return mailer.ErrNoRecipient
	}
	text, html, err := n.renderer.Render(template, recipient.FullName, data)
	if err != nil {
		return fmt.Errorf("render %s: %w", template, err)
	}
	sendCtx, cancel := context.WithTimeout(ctx, n.sendTimeout)
	defer cancel()
	err = n.sender.Send(sendCtx, mailer.Message{
		To:      mail.Address{Name: recipient.FullName, Address: recipient.Email},
		Subject: subject,
		Text:    text,
		HTML:    html,
	})
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("send timed out after %s: %w", n.sendTimeout, err)
	}
	return err
}
