package repo

import (
	"context"
	"fmt"

	"github.com/ctfquest07/ctf-server1-sub000/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetEventState loads the lifecycle singleton, creating the default
// not_started document on first read.
func (r *MongoRepository) GetEventState(ctx context.Context) (*model.EventState, error) {
	var state model.EventState
	err := r.eventState.FindOne(ctx, bson.M{"_id": model.EventStateID}).Decode(&state)
	if err == mongo.ErrNoDocuments {
		state := model.DefaultEventState()
		if _, err := r.eventState.InsertOne(ctx, state); err != nil && !mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("failed to initialize event state: %w", err)
		}
		return state, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load event state: %w", err)
	}
	return &state, nil
}

// SaveEventState overwrites the singleton document.
func (r *MongoRepository) SaveEventState(ctx context.Context, state *model.EventState) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := r.eventState.ReplaceOne(ctx, bson.M{"_id": model.EventStateID}, state, opts); err != nil {
		return fmt.Errorf("failed to save event state: %w", err)
	}
	return nil
}
