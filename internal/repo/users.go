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

// CreateUser inserts an admin-provisioned user.
func (r *MongoRepository) CreateUser(ctx context.Context, u *model.User) error {
	u.ID = uuid.New().String()
	u.CreatedAt = time.Now()
	if u.SolvedChallenges == nil {
		u.SolvedChallenges = []string{}
	}

	_, err := r.users.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: username %q", ErrDuplicateKey, u.Username)
	}
	return err
}

func (r *MongoRepository) GetUser(ctx context.Context, userID string) (*model.User, error) {
	var u model.User
	err := r.users.FindOne(ctx, bson.M{"_id": userID}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &u, nil
}

func (r *MongoRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := r.users.FindOne(ctx, bson.M{"username": username}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &u, nil
}

// ListUsers returns users sorted by points for scoreboard assembly.
func (r *MongoRepository) ListUsers(ctx context.Context) ([]model.User, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "points", Value: -1},
		{Key: "last_solve_time", Value: 1},
		{Key: "username", Value: 1},
	})

	cursor, err := r.users.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []model.User
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// ApplySolveCredit credits a winning submission: one atomic update
// that bumps points, appends the challenge to the solve set and stamps
// the solve time. $addToSet makes the append idempotent if the credit
// step is retried after a crash.
func (r *MongoRepository) ApplySolveCredit(ctx context.Context, userID, challengeID string, points int, solvedAt time.Time) error {
	update := bson.M{
		"$inc":      bson.M{"points": points},
		"$addToSet": bson.M{"solved_challenges": challengeID},
		"$set":      bson.M{"last_solve_time": solvedAt},
	}
	res, err := r.users.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return fmt.Errorf("failed to credit solve: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetUserFlags toggles the admin-controlled gates on a user account.
func (r *MongoRepository) SetUserFlags(ctx context.Context, userID string, isBlocked, canSubmitFlags bool) error {
	update := bson.M{"$set": bson.M{
		"is_blocked":       isBlocked,
		"can_submit_flags": canSubmitFlags,
	}}
	res, err := r.users.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return fmt.Errorf("failed to update user flags: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) SetUserTeam(ctx context.Context, userID, teamID string) error {
	res, err := r.users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{"team_id": teamID}})
	if err != nil {
		return fmt.Errorf("failed to set user team: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ResetUserProgress zeroes points and solve state on every user. Part
// of the admin platform reset.
func (r *MongoRepository) ResetUserProgress(ctx context.Context) error {
	update := bson.M{
		"$set":   bson.M{"points": 0, "solved_challenges": []string{}},
		"$unset": bson.M{"last_solve_time": ""},
	}
	_, err := r.users.UpdateMany(ctx, bson.M{}, update)
	if err != nil {
		return fmt.Errorf("failed to reset user progress: %w", err)
	}
	return nil
}
