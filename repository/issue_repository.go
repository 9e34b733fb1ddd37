package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"civic-tracker-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IssueCollection is the name of the collection holding issue reports.
const IssueCollection = "issues"

// ErrNotFound is returned when no issue matches the given identifier.
var ErrNotFound = errors.New("issue not found")

// MongoIssueRepository stores issue reports in a single MongoDB collection.
type MongoIssueRepository struct {
	coll *mongo.Collection
}

func NewMongoIssueRepository(coll *mongo.Collection) *MongoIssueRepository {
	return &MongoIssueRepository{coll: coll}
}

// EnsureIndexes creates the createdAt index used by the newest-first listing.
func (r *MongoIssueRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	}

	_, err := r.coll.Indexes().CreateOne(ctx, indexModel)
	return err
}

func (r *MongoIssueRepository) Create(ctx context.Context, issue *models.Issue) error {
	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, issue); err != nil {
		return fmt.Errorf("insert issue: %w", err)
	}
	return nil
}

// List returns every issue, newest-created first.
func (r *MongoIssueRepository) List(ctx context.Context) ([]models.Issue, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.coll.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("find issues: %w", err)
	}
	defer cursor.Close(ctx)

	issues := []models.Issue{}
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, fmt.Errorf("decode issues: %w", err)
	}
	return issues, nil
}

func (r *MongoIssueRepository) FindByID(ctx context.Context, id string) (*models.Issue, error) {
	issueID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var issue models.Issue
	err = r.coll.FindOne(ctx, bson.M{"_id": issueID}).Decode(&issue)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find issue %s: %w", id, err)
	}
	return &issue, nil
}

// UpdateStatus sets status and updatedAt. Concurrent writers race; the last write wins.
func (r *MongoIssueRepository) UpdateStatus(ctx context.Context, id string, status models.IssueStatus, updatedAt time.Time) error {
	issueID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	update := bson.M{"$set": bson.M{"status": status, "updatedAt": updatedAt}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": issueID}, update)
	if err != nil {
		return fmt.Errorf("update issue %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll removes every issue. Administrative purge only.
func (r *MongoIssueRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.coll.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("delete issues: %w", err)
	}
	return result.DeletedCount, nil
}
