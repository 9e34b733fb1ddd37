// Package notify delivers best-effort email notifications for issue lifecycle events.
// Delivery never blocks the request that triggered it and failures are only logged.
package notify

import (
	"fmt"
	"time"

	"civic-tracker-be/models"
)

// EventKind doubles as the AMQP routing key.
type EventKind string

const (
	IssueCreated       EventKind = "issue.created"
	IssueStatusUpdated EventKind = "issue.status_updated"
)

// Event is a snapshot of the issue taken right after the mutation committed.
type Event struct {
	Kind        EventKind          `json:"kind"`
	IssueID     string             `json:"issueId"`
	Email       string             `json:"email"`
	Status      models.IssueStatus `json:"status"`
	Description string             `json:"description"`
	Location    string             `json:"location"`
	Category    string             `json:"category"`
	OccurredAt  time.Time          `json:"occurredAt"`
}

// NewEvent builds an event from the stored issue.
func NewEvent(kind EventKind, issue *models.Issue) Event {
	return Event{
		Kind:        kind,
		IssueID:     issue.ID.Hex(),
		Email:       issue.Email,
		Status:      issue.Status,
		Description: issue.Description,
		Location:    issue.Location,
		Category:    string(issue.Category),
		OccurredAt:  issue.UpdatedAt,
	}
}

// Notifier accepts events for asynchronous delivery. Enqueue must not block.
type Notifier interface {
	Enqueue(event Event)
}

// Message is a rendered plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Render turns an event into the email sent to the reporter.
func Render(event Event) (Message, error) {
	switch event.Kind {
	case IssueCreated:
		return Message{
			To:      event.Email,
			Subject: "Issue Submitted Successfully",
			Body: fmt.Sprintf("Thank you for reporting your issue. Your issue has been submitted successfully.\n\n"+
				"Your Issue ID: %s\n\n"+
				"You can use this ID to track the status of your issue.\n\n"+
				"Regards,\nCivic Issue Reporting Team", event.IssueID),
		}, nil
	case IssueStatusUpdated:
		return Message{
			To:      event.Email,
			Subject: "Civic Issue Progress Update",
			Body: fmt.Sprintf("Hello,\n\nYour issue (ID: %s) status has been updated to: %s.\n\n"+
				"Description: %s\nLocation: %s\nCategory: %s\n\n"+
				"Thank you for helping improve your community!",
				event.IssueID, event.Status, event.Description, event.Location, event.Category),
		}, nil
	default:
		return Message{}, fmt.Errorf("unknown event kind %q", event.Kind)
	}
}
