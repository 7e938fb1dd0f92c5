package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/knowledgecopilot/backend/internal/document"
)

var ErrNotFound = errors.New("document not found")

// ListFilter narrows ListByWorkspace. Limit counts requested rows; the
// implementation fetches one extra so the caller can compute hasMore.
type ListFilter struct {
	Status document.Status
	Limit  int
	Offset int
}

// Repository defines persistence operations for document metadata.
type Repository interface {
	Create(ctx context.Context, doc *document.Document) (string, error)
	Get(ctx context.Context, id string) (*document.Document, error)
	ListByWorkspace(ctx context.Context, workspaceID string, f ListFilter) ([]*document.Document, int64, error)
	ListByStatus(ctx context.Context, status document.Status, limit int) ([]*document.Document, error)
	UpdateStatus(ctx context.Context, id string, status document.Status, errMsg string) (*document.Document, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, workspaceID string) (*document.Stats, error)
}

// MongoRepo implements Repository using MongoDB.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	// compound indexes for workspace listing and status scans
	col.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "workspaceId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "workspaceId", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	return &MongoRepo{col: col}
}

func (r *MongoRepo) Create(ctx context.Context, doc *document.Document) (string, error) {
	now := time.Now().UTC()
	if doc.ID == "" {
		doc.ID = primitive.NewObjectID().Hex()
	}
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return "", err
	}
	return doc.ID, nil
}

func (r *MongoRepo) Get(ctx context.Context, id string) (*document.Document, error) {
	var doc document.Document
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// ListByWorkspace returns up to Limit+1 documents newest first, plus the
// total count matching the filter.
func (r *MongoRepo) ListByWorkspace(ctx context.Context, workspaceID string, f ListFilter) ([]*document.Document, int64, error) {
	filter := bson.M{"workspaceId": workspaceID}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(f.Offset)).
		SetLimit(int64(f.Limit + 1))
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	docs := []*document.Document{}
	for cur.Next(ctx) {
		var doc document.Document
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, err
		}
		docs = append(docs, &doc)
	}
	return docs, total, cur.Err()
}

// ListByStatus returns documents in the given status oldest first, for
// batch processing.
func (r *MongoRepo) ListByStatus(ctx context.Context, status document.Status, limit int) ([]*document.Document, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, bson.M{"status": status}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	docs := []*document.Document{}
	for cur.Next(ctx) {
		var doc document.Document
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		docs = append(docs, &doc)
	}
	return docs, cur.Err()
}

func (r *MongoRepo) UpdateStatus(ctx context.Context, id string, status document.Status, errMsg string) (*document.Document, error) {
	set := bson.M{"status": status, "updatedAt": time.Now().UTC()}
	if errMsg != "" {
		set["errorMessage"] = errMsg
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc document.Document
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
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

// Stats aggregates per-status counts and byte sizes for a workspace.
func (r *MongoRepo) Stats(ctx context.Context, workspaceID string) (*document.Stats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"workspaceId": workspaceID}}},
		{{Key: "$group", Value: bson.M{
			"_id":       "$status",
			"count":     bson.M{"$sum": 1},
			"totalSize": bson.M{"$sum": "$size"},
		}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	stats := &document.Stats{ByStatus: make(map[document.Status]int64)}
	for cur.Next(ctx) {
		var row struct {
			Status    document.Status `bson:"_id"`
			Count     int64           `bson:"count"`
			TotalSize int64           `bson:"totalSize"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		stats.ByStatus[row.Status] = row.Count
		stats.Total += row.Count
		stats.TotalSize += row.TotalSize
	}
	return stats, cur.Err()
}
