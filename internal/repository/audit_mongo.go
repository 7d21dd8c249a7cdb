package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/adminsys/backoffice/internal/config"
	"github.com/adminsys/backoffice/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoAuditRepo stores entries in a single collection (default "systemlogs").
type MongoAuditRepo struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

type mongoAuditDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      *string            `bson:"userId,omitempty"`
	Username    string             `bson:"username"`
	ActionType  string             `bson:"actionType"`
	Module      string             `bson:"module"`
	Description string             `bson:"description"`
	Status      string             `bson:"status"`
	IP          string             `bson:"ip,omitempty"`
	UserAgent   string             `bson:"userAgent,omitempty"`
	Details     *model.Details     `bson:"details,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d *mongoAuditDoc) toModel() *model.AuditEntry {
	return &model.AuditEntry{
		ID:          d.ID.Hex(),
		UserID:      d.UserID,
		Username:    d.Username,
		ActionType:  model.ActionType(d.ActionType),
		Module:      model.Module(d.Module),
		Description: d.Description,
		Status:      model.Status(d.Status),
		IP:          d.IP,
		UserAgent:   d.UserAgent,
		Details:     d.Details,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// NewMongoAuditRepo connects and pings the primary before returning.
func NewMongoAuditRepo(ctx context.Context, cfg config.MongoConfig) (*MongoAuditRepo, error) {
	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(20 * time.Second).
		SetServerSelectionTimeout(15 * time.Second).
		SetMaxPoolSize(50)

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to create MongoDB client: %w", err)
	}

	pingCtx, cancelPing := context.WithTimeout(ctx, 10*time.Second)
	defer cancelPing()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	return &MongoAuditRepo{client: client, coll: coll, now: time.Now}, nil
}

// EnsureIndexes mirrors the Postgres index set.
func (r *MongoAuditRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "actionType", Value: 1}}},
		{Keys: bson.D{{Key: "module", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	return err
}

func (r *MongoAuditRepo) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoAuditRepo) Insert(ctx context.Context, entry *model.AuditEntry) error {
	if entry == nil {
		return nil
	}
	// Mongo keeps millisecond precision
	now := r.now().UTC().Truncate(time.Millisecond)
	doc := mongoAuditDoc{
		ID:          primitive.NewObjectID(),
		UserID:      entry.UserID,
		Username:    entry.Username,
		ActionType:  string(entry.ActionType),
		Module:      string(entry.Module),
		Description: entry.Description,
		Status:      string(entry.Status),
		IP:          entry.IP,
		UserAgent:   entry.UserAgent,
		Details:     entry.Details,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return err
	}
	entry.ID = doc.ID.Hex()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	return nil
}

func (r *MongoAuditRepo) Get(ctx context.Context, id string) (*model.AuditEntry, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var doc mongoAuditDoc
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}

func (r *MongoAuditRepo) List(ctx context.Context, q model.AuditQuery) ([]*model.AuditEntry, int64, error) {
	filter := buildMongoFilter(q.Filter)
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(buildMongoSort(q.Sort)).
		SetSkip(int64(q.Offset()))
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	entries := []*model.AuditEntry{}
	for cur.Next(ctx) {
		var doc mongoAuditDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, err
		}
		entries = append(entries, doc.toModel())
	}
	return entries, total, cur.Err()
}

func (r *MongoAuditRepo) Count(ctx context.Context, f model.AuditFilter) (int64, error) {
	return r.coll.CountDocuments(ctx, buildMongoFilter(f))
}

func (r *MongoAuditRepo) CountBy(ctx context.Context, field model.GroupField, f model.AuditFilter) (map[string]int64, error) {
	pipeline, err := buildGroupPipeline(field, f)
	if err != nil {
		return nil, err
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]int64{}
	for cur.Next(ctx) {
		var row struct {
			Key   string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out[row.Key] = row.Count
	}
	return out, cur.Err()
}

func (r *MongoAuditRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"createdAt": bson.M{"$lt": cutoff.UTC()}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func buildMongoFilter(f model.AuditFilter) bson.M {
	filter := bson.M{}
	if f.Module != "" {
		filter["module"] = string(f.Module)
	}
	if f.ActionType != "" {
		filter["actionType"] = string(f.ActionType)
	}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	if f.Username != "" {
		filter["username"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Username), Options: "i"}
	}
	if f.UserID != "" {
		filter["userId"] = f.UserID
	}
	if f.From != nil || f.To != nil {
		rng := bson.M{}
		if f.From != nil {
			rng["$gte"] = f.From.UTC()
		}
		if f.To != nil {
			rng["$lte"] = f.To.UTC()
		}
		filter["createdAt"] = rng
	}
	return filter
}

// SortField values double as document field names.
func buildMongoSort(s model.Sort) bson.D {
	if s.Field == "" {
		s = model.DefaultSort
	}
	dir := 1
	if s.Desc {
		dir = -1
	}
	return bson.D{{Key: string(s.Field), Value: dir}, {Key: "_id", Value: dir}}
}

func buildGroupPipeline(field model.GroupField, f model.AuditFilter) (mongo.Pipeline, error) {
	switch field {
	case model.GroupActionType, model.GroupModule:
	default:
		return nil, fmt.Errorf("unsupported group field %q", field)
	}
	return mongo.Pipeline{
		{{Key: "$match", Value: buildMongoFilter(f)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + string(field)},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}, nil
}
