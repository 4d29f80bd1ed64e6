package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/ctfquest07/ctf-server1-sub000/internal/model"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateChallenge inserts a new challenge
func (r *MongoRepository) CreateChallenge(ctx context.Context, c *model.Challenge) error {
	c.ID = uuid.New().String()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	if c.SolvedBy == nil {
		c.SolvedBy = []string{}
	}

	_, err := r.challenges.InsertOne(ctx, c)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: challenge title %q", ErrDuplicateKey, c.Title)
	}
	return err
}

// GetChallenge loads a challenge by ID, secret flag included. Callers
// decide what is safe to serialize.
func (r *MongoRepository) GetChallenge(ctx context.Context, challengeID string) (*model.Challenge, error) {
	var c model.Challenge
	err := r.challenges.FindOne(ctx, bson.M{"_id": challengeID}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load challenge: %w", err)
	}
	return &c, nil
}

// ListChallenges returns challenges paginated, newest first. When
// visibleOnly is set hidden challenges are filtered out.
func (r *MongoRepository) ListChallenges(ctx context.Context, visibleOnly bool, page, pageSize int) ([]model.Challenge, error) {
	if page < 1 || pageSize < 1 {
		return nil, fmt.Errorf("invalid pagination")
	}

	filter := bson.M{}
	if visibleOnly {
		filter["is_visible"] = true
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := r.challenges.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []model.Challenge
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// UpdateChallenge applies an admin edit to mutable fields.
func (r *MongoRepository) UpdateChallenge(ctx context.Context, c *model.Challenge) error {
	update := bson.M{"$set": bson.M{
		"title":               c.Title,
		"description":         c.Description,
		"category":            c.Category,
		"difficulty":          c.Difficulty,
		"points":              c.Points,
		"flag":                c.Flag,
		"dynamic":             c.Dynamic,
		"is_visible":          c.IsVisible,
		"submissions_allowed": c.SubmissionsAllowed,
		"updated_at":          time.Now(),
	}}
	res, err := r.challenges.UpdateOne(ctx, bson.M{"_id": c.ID}, update)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: challenge title %q", ErrDuplicateKey, c.Title)
	}
	if err != nil {
		return fmt.Errorf("failed to update challenge: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteChallenge removes a challenge.
func (r *MongoRepository) DeleteChallenge(ctx context.Context, challengeID string) error {
	res, err := r.challenges.DeleteOne(ctx, bson.M{"_id": challengeID})
	if err != nil {
		return fmt.Errorf("failed to delete challenge: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddSolver appends the user to the challenge's solver set. $addToSet
// keeps the set append-only and duplicate-free, so the call is safe to
// retry.
func (r *MongoRepository) AddSolver(ctx context.Context, challengeID, userID string) error {
	update := bson.M{"$addToSet": bson.M{"solved_by": userID}}
	res, err := r.challenges.UpdateOne(ctx, bson.M{"_id": challengeID}, update)
	if err != nil {
		return fmt.Errorf("failed to record solver: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ResetSolveState clears solver sets on every challenge. Part of the
// admin platform reset.
func (r *MongoRepository) ResetSolveState(ctx context.Context) error {
	_, err := r.challenges.UpdateMany(ctx, bson.M{}, bson.M{"$set": bson.M{"solved_by": []string{}}})
	if err != nil {
		return fmt.Errorf("failed to reset challenge solve state: %w", err)
	}
	return nil
}
