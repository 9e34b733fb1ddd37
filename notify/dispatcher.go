package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const sendTimeout = 30 * time.Second

// Dispatcher is an in-process bounded queue drained by a fixed set of workers.
// A full queue drops the event instead of blocking the caller.
type Dispatcher struct {
	mailer Mailer
	queue  chan Event
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(mailer Mailer, workers, queueSize int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	d := &Dispatcher{
		mailer: mailer,
		queue:  make(chan Event, queueSize),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
	return d
}

func (d *Dispatcher) Enqueue(event Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		log.Warn().Str("issue_id", event.IssueID).Msg("Notification dispatcher closed, dropping event")
		return
	}

	select {
	case d.queue <- event:
	default:
		log.Warn().
			Str("issue_id", event.IssueID).
			Str("kind", string(event.Kind)).
			Msg("Notification queue full, dropping event")
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for event := range d.queue {
		if err := deliver(context.Background(), d.mailer, event); err != nil {
			log.Error().Err(err).Msg("Error sending notification")
		}
	}
}

// Close stops accepting events and waits for queued ones to be delivered.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	d.wg.Wait()
	return nil
}

// deliver renders and sends one event. Events without a recipient are skipped.
func deliver(ctx context.Context, mailer Mailer, event Event) error {
	if event.Email == "" {
		return nil
	}

	msg, err := Render(event)
	if err != nil {
		return &NotificationError{IssueID: event.IssueID, Kind: event.Kind, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if err := mailer.Send(ctx, msg); err != nil {
		return &NotificationError{IssueID: event.IssueID, Kind: event.Kind, Err: err}
	}

	log.Info().
		Str("issue_id", event.IssueID).
		Str("kind", string(event.Kind)).
		Msg("Notification email sent")
	return nil
}
