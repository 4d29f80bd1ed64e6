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

func (r *MongoRepository) CreateTeam(ctx context.Context, t *model.Team) error {
	t.ID = uuid.New().String()
	t.CreatedAt = time.Now()
	if t.Members == nil {
		t.Members = []string{}
	}

	_, err := r.teams.InsertOne(ctx, t)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: team name %q", ErrDuplicateKey, t.Name)
	}
	return err
}

func (r *MongoRepository) GetTeam(ctx context.Context, teamID string) (*model.Team, error) {
	var t model.Team
	err := r.teams.FindOne(ctx, bson.M{"_id": teamID}).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load team: %w", err)
	}
	return &t, nil
}

func (r *MongoRepository) ListTeams(ctx context.Context) ([]model.Team, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.teams.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []model.Team
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// AddTeamMember appends a user to a team only while the roster is
// below maxMembers. The size check lives in the filter so two
// concurrent joins cannot overfill the team.
func (r *MongoRepository) AddTeamMember(ctx context.Context, teamID, userID string, maxMembers int) error {
	filter := bson.M{
		"_id": teamID,
		fmt.Sprintf("members.%d", maxMembers-1): bson.M{"$exists": false},
	}
	res, err := r.teams.UpdateOne(ctx, filter, bson.M{"$addToSet": bson.M{"members": userID}})
	if err != nil {
		return fmt.Errorf("failed to add team member: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: team missing or full", ErrNotFound)
	}
	return nil
}
