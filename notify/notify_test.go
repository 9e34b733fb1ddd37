package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"civic-tracker-be/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []Message
	err  error
	gate chan struct{}
}

func (m *fakeMailer) Send(ctx context.Context, msg Message) error {
	if m.gate != nil {
		select {
		case <-m.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.sent...)
}

func sampleIssue() *models.Issue {
	return &models.Issue{
		ID:          primitive.NewObjectID(),
		Description: "Street light flickering",
		Location:    "Sector 5, Noida",
		Category:    models.Streetlight,
		Email:       "resident@example.com",
		Status:      models.StatusUnderwork,
		UpdatedAt:   time.Date(2024, 2, 2, 9, 30, 0, 0, time.UTC),
	}
}

func TestRender(t *testing.T) {
	issue := sampleIssue()

	created, err := Render(NewEvent(IssueCreated, issue))
	require.NoError(t, err)
	assert.Equal(t, "resident@example.com", created.To)
	assert.Equal(t, "Issue Submitted Successfully", created.Subject)
	assert.Contains(t, created.Body, "Your Issue ID: "+issue.ID.Hex())

	updated, err := Render(NewEvent(IssueStatusUpdated, issue))
	require.NoError(t, err)
	assert.Equal(t, "Civic Issue Progress Update", updated.Subject)
	assert.Contains(t, updated.Body, "status has been updated to: underwork")
	assert.Contains(t, updated.Body, "Location: Sector 5, Noida")
	assert.Contains(t, updated.Body, "Category: streetlight")

	_, err = Render(Event{Kind: "issue.deleted"})
	assert.Error(t, err)
}

func TestNewEvent(t *testing.T) {
	issue := sampleIssue()
	event := NewEvent(IssueStatusUpdated, issue)

	assert.Equal(t, issue.ID.Hex(), event.IssueID)
	assert.Equal(t, issue.UpdatedAt, event.OccurredAt)
	assert.Equal(t, models.StatusUnderwork, event.Status)
}

func TestDispatcher_DeliversQueuedEvents(t *testing.T) {
	mailer := &fakeMailer{}
	d := NewDispatcher(mailer, 2, 10)

	d.Enqueue(NewEvent(IssueCreated, sampleIssue()))
	d.Enqueue(NewEvent(IssueStatusUpdated, sampleIssue()))
	require.NoError(t, d.Close())

	assert.Len(t, mailer.Sent(), 2)
}

func TestDispatcher_SkipsEventsWithoutEmail(t *testing.T) {
	mailer := &fakeMailer{}
	d := NewDispatcher(mailer, 1, 10)

	issue := sampleIssue()
	issue.Email = ""
	d.Enqueue(NewEvent(IssueCreated, issue))
	require.NoError(t, d.Close())

	assert.Empty(t, mailer.Sent())
}

func TestDispatcher_FailureIsSwallowed(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("smtp: 535 authentication failed")}
	d := NewDispatcher(mailer, 1, 10)

	d.Enqueue(NewEvent(IssueCreated, sampleIssue()))
	assert.NoError(t, d.Close())
	assert.Empty(t, mailer.Sent())
}

func TestDispatcher_FullQueueDoesNotBlock(t *testing.T) {
	mailer := &fakeMailer{gate: make(chan struct{})}
	d := NewDispatcher(mailer, 1, 1)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			d.Enqueue(NewEvent(IssueCreated, sampleIssue()))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}

	close(mailer.gate)
	require.NoError(t, d.Close())
	assert.LessOrEqual(t, len(mailer.Sent()), 2)
}

func TestDispatcher_EnqueueAfterClose(t *testing.T) {
	mailer := &fakeMailer{}
	d := NewDispatcher(mailer, 1, 1)
	require.NoError(t, d.Close())

	assert.NotPanics(t, func() {
		d.Enqueue(NewEvent(IssueCreated, sampleIssue()))
	})
	assert.NoError(t, d.Close())
}

func TestDeliver_WrapsErrors(t *testing.T) {
	sendErr := errors.New("connection refused")
	event := NewEvent(IssueCreated, sampleIssue())

	err := deliver(context.Background(), &fakeMailer{err: sendErr}, event)

	var nerr *NotificationError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, event.IssueID, nerr.IssueID)
	assert.Equal(t, IssueCreated, nerr.Kind)
	assert.ErrorIs(t, err, sendErr)
}

func TestAMQPConsumer_Handle(t *testing.T) {
	mailer := &fakeMailer{}
	c := &AMQPConsumer{mailer: mailer}

	body, err := json.Marshal(NewEvent(IssueStatusUpdated, sampleIssue()))
	require.NoError(t, err)

	c.handle(context.Background(), body)
	c.handle(context.Background(), []byte("{not json"))

	sent := mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Civic Issue Progress Update", sent[0].Subject)
}

func TestNewSMTPMailer_DefaultsFrom(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "alerts@example.com"})
	assert.Equal(t, "alerts@example.com", m.cfg.From)

	m = NewSMTPMailer(SMTPConfig{Username: "alerts@example.com", From: "noreply@example.com"})
	assert.Equal(t, "noreply@example.com", m.cfg.From)
}
