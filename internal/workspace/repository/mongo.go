package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/knowledgecopilot/backend/internal/workspace"
)

var (
	ErrNotFound = errors.New("workspace not found")
	// ErrVersionConflict is returned when a conditional write lost against a
	// concurrent mutation of the same workspace. Callers re-read and retry.
	ErrVersionConflict = errors.New("workspace version conflict")
)

// Repository defines persistence operations for workspaces. Update is a
// compare-and-swap keyed on Workspace.Version.
type Repository interface {
	Create(ctx context.Context, ws *workspace.Workspace) (string, error)
	Get(ctx context.Context, id string) (*workspace.Workspace, error)
	ListForUser(ctx context.Context, userID string) ([]*workspace.Workspace, error)
	Update(ctx context.Context, ws *workspace.Workspace) error
	Delete(ctx context.Context, id string) error
}

// MongoRepo implements Repository using MongoDB.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	// index for "which workspaces contain this user" lookups
	idxModel := mongo.IndexModel{Keys: bson.D{{Key: "members.userId", Value: 1}}}
	col.Indexes().CreateOne(context.Background(), idxModel)
	return &MongoRepo{col: col}
}

func (r *MongoRepo) Create(ctx context.Context, ws *workspace.Workspace) (string, error) {
	now := time.Now().UTC()
	if ws.ID == "" {
		ws.ID = primitive.NewObjectID().Hex()
	}
	ws.Version = 1
	ws.CreatedAt = now
	ws.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, ws); err != nil {
		return "", err
	}
	return ws.ID, nil
}

func (r *MongoRepo) Get(ctx context.Context, id string) (*workspace.Workspace, error) {
	var ws workspace.Workspace
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&ws); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ws, nil
}

func (r *MongoRepo) ListForUser(ctx context.Context, userID string) ([]*workspace.Workspace, error) {
	cur, err := r.col.Find(ctx, bson.M{"members.userId": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*workspace.Workspace{}
	for cur.Next(ctx) {
		var ws workspace.Workspace
		if err := cur.Decode(&ws); err != nil {
			return nil, err
		}
		out = append(out, &ws)
	}
	return out, cur.Err()
}

// Update writes the full membership state conditional on the version the
// caller read. A matched-count of zero means either the workspace is gone
// or another writer got there first; the two are disambiguated with a
// follow-up existence check.
func (r *MongoRepo) Update(ctx context.Context, ws *workspace.Workspace) error {
	filter := bson.M{"_id": ws.ID, "version": ws.Version}
	update := bson.M{
		"$set": bson.M{
			"name":      ws.Name,
			"members":   ws.Members,
			"updatedAt": time.Now().UTC(),
		},
		"$inc": bson.M{"version": 1},
	}
	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if err := r.col.FindOne(ctx, bson.M{"_id": ws.ID}).Err(); err == mongo.ErrNoDocuments {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	return nil
}

func (r *MongoRepo) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
