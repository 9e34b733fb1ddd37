package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"civic-tracker-be/models"
	"civic-tracker-be/notify"
	"civic-tracker-be/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (n *recordingNotifier) Enqueue(event notify.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) Events() []notify.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Event(nil), n.events...)
}

type failingRepo struct {
	repository.MemoryIssueRepository
	err error
}

func (r *failingRepo) Create(context.Context, *models.Issue) error { return r.err }
func (r *failingRepo) List(context.Context) ([]models.Issue, error) {
	return nil, r.err
}

// fixedClock returns t on every call; tests advance it explicitly.
type fixedClock struct{ t time.Time }

func (c *fixedClock) Now() time.Time { return c.t }

func newTestService(t *testing.T) (*IssueService, *recordingNotifier, *fixedClock) {
	t.Helper()
	n := &recordingNotifier{}
	clock := &fixedClock{t: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	svc := NewIssueService(repository.NewMemoryIssueRepository(), n)
	svc.now = clock.Now
	return svc, n, clock
}

func validInput() models.IssueInput {
	return models.IssueInput{
		Description: "Deep pothole near the school gate",
		Location:    "18.5204, 73.8567",
		Category:    "pothole",
		Email:       "citizen@example.com",
		State:       "Maharashtra",
		City:        "Pune",
	}
}

func TestCreate_AppliesDefaults(t *testing.T) {
	svc, n, clock := newTestService(t)

	issue, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	assert.False(t, issue.ID.IsZero())
	assert.Equal(t, models.StatusSubmitted, issue.Status)
	assert.Equal(t, "PWD", issue.Department)
	assert.Equal(t, models.DefaultCountry, issue.Country)
	assert.Equal(t, clock.t, issue.CreatedAt)
	assert.Equal(t, issue.CreatedAt, issue.UpdatedAt)
	assert.Nil(t, issue.PhotoURL)

	events := n.Events()
	require.Len(t, events, 1)
	assert.Equal(t, notify.IssueCreated, events[0].Kind)
	assert.Equal(t, issue.ID.Hex(), events[0].IssueID)
}

func TestCreate_KeepsExplicitDepartmentAndCountry(t *testing.T) {
	svc, _, _ := newTestService(t)

	in := validInput()
	in.Category = "Water"
	in.Department = "Jal Board"
	in.Country = "Nepal"

	issue, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, models.Water, issue.Category)
	assert.Equal(t, "Jal Board", issue.Department)
	assert.Equal(t, "Nepal", issue.Country)
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.IssueInput)
		field  string
	}{
		{"missing description", func(in *models.IssueInput) { in.Description = "  " }, "description"},
		{"missing location", func(in *models.IssueInput) { in.Location = "" }, "location"},
		{"missing email", func(in *models.IssueInput) { in.Email = "" }, "email"},
		{"missing state", func(in *models.IssueInput) { in.State = "" }, "state"},
		{"missing city", func(in *models.IssueInput) { in.City = "" }, "city"},
		{"unknown category", func(in *models.IssueInput) { in.Category = "graffiti" }, "category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, n, _ := newTestService(t)
			in := validInput()
			tt.mutate(&in)

			_, err := svc.Create(context.Background(), in)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Empty(t, n.Events())

			issues, err := svc.List(context.Background())
			require.NoError(t, err)
			assert.Empty(t, issues)
		})
	}
}

func TestCreate_PersistenceError(t *testing.T) {
	storeErr := errors.New("connection reset")
	n := &recordingNotifier{}
	svc := NewIssueService(&failingRepo{err: storeErr}, n)

	_, err := svc.Create(context.Background(), validInput())

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, storeErr)
	assert.Empty(t, n.Events())

	_, err = svc.List(context.Background())
	assert.ErrorAs(t, err, &perr)
}

func TestList_NewestFirst(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	clock.t = clock.t.Add(time.Second)
	second, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	issues, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, issues, 2)
	assert.Equal(t, second.ID, issues[0].ID)
	assert.Equal(t, first.ID, issues[1].ID)
}

func TestUpdateStatus(t *testing.T) {
	svc, n, clock := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	clock.t = clock.t.Add(time.Minute)
	updated, err := svc.UpdateStatus(ctx, created.ID.Hex(), models.StatusUnderwork)
	require.NoError(t, err)

	assert.Equal(t, models.StatusUnderwork, updated.Status)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	stored, err := svc.Get(ctx, created.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnderwork, stored.Status)
	assert.Equal(t, updated.UpdatedAt, stored.UpdatedAt)

	events := n.Events()
	require.Len(t, events, 2)
	assert.Equal(t, notify.IssueStatusUpdated, events[1].Kind)
	assert.Equal(t, models.StatusUnderwork, events[1].Status)
}

func TestUpdateStatus_StrictlyIncreasingUnderFrozenClock(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	prev := created.UpdatedAt
	for _, status := range []models.IssueStatus{models.StatusUnderwork, models.StatusSolved, models.StatusSolved} {
		updated, err := svc.UpdateStatus(ctx, created.ID.Hex(), status)
		require.NoError(t, err)
		assert.True(t, updated.UpdatedAt.After(prev))
		assert.Equal(t, created.CreatedAt, updated.CreatedAt)
		prev = updated.UpdatedAt
	}
}

func TestUpdateStatus_AnyTransitionAllowed(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, created.ID.Hex(), models.StatusSolved)
	require.NoError(t, err)
	reopened, err := svc.UpdateStatus(ctx, created.ID.Hex(), models.StatusNotSolved)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotSolved, reopened.Status)
}

func TestUpdateStatus_Errors(t *testing.T) {
	svc, n, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, created.ID.Hex(), models.StatusSubmitted)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.UpdateStatus(ctx, created.ID.Hex(), "closed")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.UpdateStatus(ctx, "64b7f0f0f0f0f0f0f0f0f0f0", models.StatusSolved)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.UpdateStatus(ctx, "not-an-id", models.StatusSolved)
	assert.ErrorIs(t, err, ErrNotFound)

	stored, err := svc.Get(ctx, created.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, stored.Status)
	assert.Len(t, n.Events(), 1)
}

func TestResubmit(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()

	original, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	solved, err := svc.UpdateStatus(ctx, original.ID.Hex(), models.StatusSolved)
	require.NoError(t, err)

	clock.t = clock.t.Add(time.Hour)
	fresh, err := svc.Resubmit(ctx, original.ID.Hex())
	require.NoError(t, err)

	assert.NotEqual(t, original.ID, fresh.ID)
	assert.Equal(t, models.StatusSubmitted, fresh.Status)
	assert.Equal(t, original.Description+" (Resubmitted from "+original.ID.Hex()+")", fresh.Description)
	assert.Equal(t, original.Location, fresh.Location)
	assert.Equal(t, original.Department, fresh.Department)
	assert.Nil(t, fresh.PhotoURL)

	untouched, err := svc.Get(ctx, original.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.StatusSolved, untouched.Status)
	assert.Equal(t, solved.UpdatedAt, untouched.UpdatedAt)

	issues, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, issues, 2)
	assert.Equal(t, fresh.ID, issues[0].ID)
}

func TestResubmit_RequiresSolved(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	_, err = svc.Resubmit(ctx, created.ID.Hex())
	assert.ErrorIs(t, err, ErrNotResolved)

	_, err = svc.Resubmit(ctx, "64b7f0f0f0f0f0f0f0f0f0f0")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNotify_SkipsWithoutNotifier(t *testing.T) {
	svc := NewIssueService(repository.NewMemoryIssueRepository(), nil)

	_, err := svc.Create(context.Background(), validInput())
	assert.NoError(t, err)
}

func TestPurge(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, validInput())
		require.NoError(t, err)
	}

	n, err := svc.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	issues, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestUpdateStatus_TrimsID(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, "  "+created.ID.Hex()+"\n", models.StatusSolved)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSolved, updated.Status)

	stored, err := svc.Get(ctx, created.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.StatusSolved, stored.Status)
}

func TestValidate_DoesNotStore(t *testing.T) {
	svc, n, _ := newTestService(t)

	assert.NoError(t, svc.Validate(validInput()))

	in := validInput()
	in.Category = " Trash "
	assert.NoError(t, svc.Validate(in))

	in.City = ""
	var verr *ValidationError
	require.ErrorAs(t, svc.Validate(in), &verr)
	assert.Equal(t, "city", verr.Field)

	issues, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, issues)
	assert.Empty(t, n.Events())
}
