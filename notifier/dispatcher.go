package notifier

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	queueSize   = 64
	sendTimeout = 10 * time.Second
)

// Notification describes one status-change email to a customer.
type Notification struct {
	Recipient    string
	TrackingCode string
	Status       string
	Total        float64
	Notes        string
}

// Dispatcher delivers notifications from a post-commit queue so order and
// cart mutations never wait on email latency or availability. Enqueue
// never blocks; failures are logged and dropped.
type Dispatcher struct {
	sender EmailSender
	queue  chan Notification
	logger *zap.Logger
	done   chan struct{}

	mu      sync.Mutex
	stopped bool
}

func NewDispatcher(sender EmailSender, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		sender: sender,
		queue:  make(chan Notification, queueSize),
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Start launches the delivery worker. Call Stop to drain and shut down.
func (d *Dispatcher) Start() {
	go func() {
		defer close(d.done)
		for n := range d.queue {
			d.deliver(n)
		}
	}()
}

// Stop closes the queue and waits for in-flight deliveries. Safe to call
// more than once; Enqueue after Stop drops the notification.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.done
}

// Enqueue hands a notification to the worker. A full queue, a stopped
// dispatcher or a missing recipient drops the notification; the
// triggering mutation already committed and must not be affected.
func (d *Dispatcher) Enqueue(n Notification) {
	if n.Recipient == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		d.logger.Warn("Dispatcher stopped, dropping notification",
			zap.String("tracking_code", n.TrackingCode),
			zap.String("status", n.Status),
		)
		return
	}
	select {
	case d.queue <- n:
	default:
		d.logger.Warn("Notification queue full, dropping",
			zap.String("tracking_code", n.TrackingCode),
			zap.String("status", n.Status),
		)
	}
}

func (d *Dispatcher) deliver(n Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	subject, body := renderEmail(n)
	result, err := d.sender.SendEmail(ctx, n.Recipient, subject, body)
	if err != nil {
		d.logger.Warn("Notification delivery failed",
			zap.String("recipient", n.Recipient),
			zap.String("tracking_code", n.TrackingCode),
			zap.Error(err),
		)
		return
	}
	d.logger.Info("Notification delivered",
		zap.String("recipient", n.Recipient),
		zap.String("tracking_code", n.TrackingCode),
		zap.String("status", n.Status),
		zap.String("message_id", result.MessageID),
	)
}

// Per-status subject and body templates.
func renderEmail(n Notification) (subject, body string) {
	switch n.Status {
	case "pending":
		subject = fmt.Sprintf("Order confirmed - %s", n.TrackingCode)
		body = fmt.Sprintf(
			"Your order has been confirmed and is being processed.\n\nTotal: $%.2f\nTracking code: %s\n\nYou can track your order at any time using this code.",
			n.Total, n.TrackingCode,
		)
	case "confirmed":
		subject = fmt.Sprintf("Order in preparation - %s", n.TrackingCode)
		body = fmt.Sprintf(
			"Your order %s has been confirmed and is being prepared for shipment.\nEstimated preparation time: 1-2 business days.",
			n.TrackingCode,
		)
	case "in_preparation":
		subject = fmt.Sprintf("Order packed - %s", n.TrackingCode)
		body = fmt.Sprintf(
			"Your order %s has been packed and is ready to ship.",
			n.TrackingCode,
		)
	case "in_transit":
		subject = fmt.Sprintf("Order on its way - %s", n.TrackingCode)
		body = fmt.Sprintf(
			"Good news! Your order %s is out for delivery.",
			n.TrackingCode,
		)
	case "delivered":
		subject = fmt.Sprintf("Order delivered - %s", n.TrackingCode)
		body = fmt.Sprintf(
			"Your order %s has been delivered. Thank you for shopping with us!",
			n.TrackingCode,
		)
	case "cancelled":
		subject = fmt.Sprintf("Order cancelled - %s", n.TrackingCode)
		body = fmt.Sprintf(
			"Your order %s has been cancelled. Any reserved stock has been released.",
			n.TrackingCode,
		)
	default:
		subject = fmt.Sprintf("Order update - %s", n.TrackingCode)
		body = fmt.Sprintf("Your order %s is now %q.", n.TrackingCode, n.Status)
	}
	if n.Notes != "" {
		body += "\n\nNotes: " + n.Notes
	}
	return subject, body
}
