package repo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound = errors.New("document not found")

	// ErrAlreadySolved is returned when inserting a correct submission
	// loses the race against the partial unique index. The caller
	// translates it to a duplicate_solve outcome, never a server error.
	ErrAlreadySolved = errors.New("challenge already solved by user")

	ErrDuplicateKey = errors.New("duplicate key")
)

type MongoRepository struct {
	users       *mongo.Collection
	teams       *mongo.Collection
	challenges  *mongo.Collection
	submissions *mongo.Collection
	eventState  *mongo.Collection
}

func NewMongoRepository(client *mongo.Client, dbName string) *MongoRepository {
	db := client.Database(dbName)
	return &MongoRepository{
		users:       db.Collection("users"),
		teams:       db.Collection("teams"),
		challenges:  db.Collection("challenges"),
		submissions: db.Collection("submissions"),
		eventState:  db.Collection("event_state"),
	}
}

// EnsureIndexes creates the indexes the correctness model depends on.
// The partial unique index on submissions is the race-condition
// defense: concurrent correct submissions for one (user, challenge)
// pair get exactly one winner, decided by the store, not by
// check-then-act application code.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.submissions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "challenge_id", Value: 1}},
		Options: options.Index().
			SetName("unique_correct_submission").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"is_correct": true}),
	})
	if err != nil {
		return fmt.Errorf("failed to create submission index: %w", err)
	}

	_, err = r.challenges.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "title", Value: 1}},
		Options: options.Index().SetName("unique_title").SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create challenge index: %w", err)
	}

	_, err = r.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetName("unique_username").SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create user index: %w", err)
	}

	_, err = r.teams.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetName("unique_team_name").SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create team index: %w", err)
	}

	return nil
}
