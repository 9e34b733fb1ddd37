package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"civic-tracker-be/models"
	"civic-tracker-be/notify"
	"civic-tracker-be/repository"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// IssueRepository is the durable Issue Store.
type IssueRepository interface {
	Create(ctx context.Context, issue *models.Issue) error
	List(ctx context.Context) ([]models.Issue, error)
	FindByID(ctx context.Context, id string) (*models.Issue, error)
	UpdateStatus(ctx context.Context, id string, status models.IssueStatus, updatedAt time.Time) error
	DeleteAll(ctx context.Context) (int64, error)
}

type IssueService struct {
	repo     IssueRepository
	notifier notify.Notifier
	validate *validator.Validate
	now      func() time.Time
}

func NewIssueService(repo IssueRepository, notifier notify.Notifier) *IssueService {
	return &IssueService{
		repo:     repo,
		notifier: notifier,
		validate: validator.New(),
		now:      time.Now,
	}
}

// clock returns the current time at the store's millisecond precision.
func (s *IssueService) clock() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// Create validates and persists a new report in the submitted state.
func (s *IssueService) Create(ctx context.Context, input models.IssueInput) (*models.Issue, error) {
	input = normalizeInput(input)
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	department := input.Department
	if department == "" {
		department = models.DepartmentFor(models.IssueCategory(input.Category))
	}
	country := input.Country
	if country == "" {
		country = models.DefaultCountry
	}

	now := s.clock()
	issue := &models.Issue{
		Description: input.Description,
		Location:    input.Location,
		Category:    models.IssueCategory(input.Category),
		Department:  department,
		Email:       input.Email,
		State:       input.State,
		City:        input.City,
		Country:     country,
		PhotoURL:    input.PhotoURL,
		Status:      models.StatusSubmitted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, issue); err != nil {
		return nil, &PersistenceError{Op: "create issue", Err: err}
	}

	log.Info().
		Str("issue_id", issue.ID.Hex()).
		Str("category", string(issue.Category)).
		Str("department", issue.Department).
		Msg("Issue created")

	s.notify(notify.IssueCreated, issue)
	return issue, nil
}

// Validate checks a report without storing it, so callers can reject it
// before doing side work such as saving a photo.
func (s *IssueService) Validate(input models.IssueInput) error {
	return s.validateInput(normalizeInput(input))
}

// List returns all reports, newest first.
func (s *IssueService) List(ctx context.Context) ([]models.Issue, error) {
	issues, err := s.repo.List(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list issues", Err: err}
	}
	return issues, nil
}

func (s *IssueService) Get(ctx context.Context, id string) (*models.Issue, error) {
	issue, err := s.repo.FindByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, &PersistenceError{Op: "get issue", Err: err}
	}
	return issue, nil
}

// UpdateStatus applies an authority status change. Any settable status is accepted
// from any current state; updatedAt always moves strictly forward.
func (s *IssueService) UpdateStatus(ctx context.Context, id string, status models.IssueStatus) (*models.Issue, error) {
	if !status.IsUpdatable() {
		return nil, ErrInvalidStatus
	}
	id = strings.TrimSpace(id)

	issue, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updatedAt := s.clock()
	if !updatedAt.After(issue.UpdatedAt) {
		updatedAt = issue.UpdatedAt.Add(time.Millisecond)
	}

	if err := s.repo.UpdateStatus(ctx, id, status, updatedAt); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, &PersistenceError{Op: "update issue status", Err: err}
	}

	issue.Status = status
	issue.UpdatedAt = updatedAt

	log.Info().
		Str("issue_id", id).
		Str("status", string(status)).
		Msg("Issue status updated")

	s.notify(notify.IssueStatusUpdated, issue)
	return issue, nil
}

// Resubmit files a fresh report copied from a solved one. The original is left untouched.
func (s *IssueService) Resubmit(ctx context.Context, id string) (*models.Issue, error) {
	original, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if original.Status != models.StatusSolved {
		return nil, ErrNotResolved
	}

	category := original.Category
	if category == "" {
		category = models.Other
	}
	department := original.Department
	if department == "" {
		department = models.DepartmentFor(category)
	}

	input := models.IssueInput{
		Description: fmt.Sprintf("%s (Resubmitted from %s)", original.Description, original.ID.Hex()),
		Location:    original.Location,
		Category:    string(category),
		Department:  department,
		Email:       original.Email,
		State:       original.State,
		City:        original.City,
		Country:     original.Country,
	}
	return s.Create(ctx, input)
}

// Purge deletes every report. Administrative use only.
func (s *IssueService) Purge(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, &PersistenceError{Op: "purge issues", Err: err}
	}
	log.Warn().Int64("deleted", n).Msg("All issues purged")
	return n, nil
}

func (s *IssueService) notify(kind notify.EventKind, issue *models.Issue) {
	if s.notifier == nil || issue.Email == "" {
		return
	}
	s.notifier.Enqueue(notify.NewEvent(kind, issue))
}

func (s *IssueService) validateInput(input models.IssueInput) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			return &ValidationError{Field: field, Msg: "is required"}
		case "oneof":
			return &ValidationError{Field: field, Msg: "must be one of " + fe.Param()}
		default:
			return &ValidationError{Field: field, Msg: "is invalid"}
		}
	}
	return &ValidationError{Field: "input", Msg: err.Error()}
}

func normalizeInput(in models.IssueInput) models.IssueInput {
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)
	in.Category = strings.ToLower(strings.TrimSpace(in.Category))
	in.Department = strings.TrimSpace(in.Department)
	in.Email = strings.TrimSpace(in.Email)
	in.State = strings.TrimSpace(in.State)
	in.City = strings.TrimSpace(in.City)
	in.Country = strings.TrimSpace(in.Country)
	return in
}
