package repo

import (
	"context"
	"fmt"

	"github.com/ctfquest07/ctf-server1-sub000/internal/model"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RecordAttempt appends one submission attempt to the audit trail.
// For a correct submission the insert doubles as the win decision:
// the partial unique index on (user_id, challenge_id, is_correct=true)
// admits exactly one winner, and the loser gets ErrAlreadySolved.
func (r *MongoRepository) RecordAttempt(ctx context.Context, s *model.Submission) error {
	s.ID = uuid.New().String()

	_, err := r.submissions.InsertOne(ctx, s)
	if mongo.IsDuplicateKeyError(err) {
		return ErrAlreadySolved
	}
	if err != nil {
		return fmt.Errorf("failed to record submission: %w", err)
	}
	return nil
}

// ListSubmissions pages through the attempt log, newest first,
// optionally filtered by user and/or challenge. Admin audit surface.
func (r *MongoRepository) ListSubmissions(ctx context.Context, userID, challengeID string, page, pageSize int) ([]model.Submission, error) {
	if page < 1 || pageSize < 1 {
		return nil, fmt.Errorf("invalid pagination")
	}

	filter := bson.M{}
	if userID != "" {
		filter["user_id"] = userID
	}
	if challengeID != "" {
		filter["challenge_id"] = challengeID
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "submitted_at", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := r.submissions.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []model.Submission
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// ResetSubmissions drops the whole attempt log. Part of the admin
// platform reset; the only path that ever deletes audit rows.
func (r *MongoRepository) ResetSubmissions(ctx context.Context) error {
	if _, err := r.submissions.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("failed to reset submissions: %w", err)
	}
	return nil
}
