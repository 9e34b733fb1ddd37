package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"civic-tracker-be/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryIssueRepository keeps issues in process memory. Used by STORE_DRIVER=memory and tests.
type MemoryIssueRepository struct {
	mu     sync.RWMutex
	issues map[primitive.ObjectID]models.Issue
}

func NewMemoryIssueRepository() *MemoryIssueRepository {
	return &MemoryIssueRepository{issues: make(map[primitive.ObjectID]models.Issue)}
}

func (r *MemoryIssueRepository) Create(_ context.Context, issue *models.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	r.issues[issue.ID] = *issue
	return nil
}

func (r *MemoryIssueRepository) List(_ context.Context) ([]models.Issue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	issues := make([]models.Issue, 0, len(r.issues))
	for _, issue := range r.issues {
		issues = append(issues, issue)
	}
	// ObjectIDs grow monotonically within a process, so they break createdAt ties.
	sort.Slice(issues, func(i, j int) bool {
		if issues[i].CreatedAt.Equal(issues[j].CreatedAt) {
			return issues[i].ID.Hex() > issues[j].ID.Hex()
		}
		return issues[i].CreatedAt.After(issues[j].CreatedAt)
	})
	return issues, nil
}

func (r *MemoryIssueRepository) FindByID(_ context.Context, id string) (*models.Issue, error) {
	issueID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	issue, ok := r.issues[issueID]
	if !ok {
		return nil, ErrNotFound
	}
	return &issue, nil
}

func (r *MemoryIssueRepository) UpdateStatus(_ context.Context, id string, status models.IssueStatus, updatedAt time.Time) error {
	issueID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	issue, ok := r.issues[issueID]
	if !ok {
		return ErrNotFound
	}
	issue.Status = status
	issue.UpdatedAt = updatedAt
	r.issues[issueID] = issue
	return nil
}

func (r *MemoryIssueRepository) DeleteAll(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := int64(len(r.issues))
	r.issues = make(map[primitive.ObjectID]models.Issue)
	return n, nil
}
