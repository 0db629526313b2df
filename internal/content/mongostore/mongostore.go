// Package mongostore implements the content store on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brueckenwerk/cms/internal/content"
	"github.com/brueckenwerk/cms/internal/models"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names as used by the website.
const (
	ProjectsCollection    = "projects"
	TeamMembersCollection = "teamMembers"
	CoursesCollection     = "courses"
	BlogPostsCollection   = "blogPosts"
	MediaCollection       = "media"
	UsersCollection       = "users"
)

// Open connects to MongoDB, verifies the connection and ensures indexes.
func Open(ctx context.Context, uri, database string) (*content.Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	db := client.Database(database)
	if err := ensureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	log.Info().Str("database", database).Msg("MongoDB content store ready")

	return &content.Store{
		Projects:    NewCollection[models.Project](db.Collection(ProjectsCollection)),
		TeamMembers: NewCollection[models.TeamMember](db.Collection(TeamMembersCollection)),
		Courses:     NewCollection[models.Course](db.Collection(CoursesCollection)),
		BlogPosts:   NewCollection[models.BlogPost](db.Collection(BlogPostsCollection)),
		Media:       &Media{coll: db.Collection(MediaCollection)},
		Users:       &Users{Collection: NewCollection[models.User](db.Collection(UsersCollection))},
		Ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
		Close: client.Disconnect,
	}, nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := []struct{ coll, field string }{
		{MediaCollection, "key"},
		{UsersCollection, "email"},
	}
	for _, u := range unique {
		_, err := db.Collection(u.coll).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: u.field, Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			return fmt.Errorf("create index %s.%s: %w", u.coll, u.field, err)
		}
	}
	return nil
}

// Collection is a Repository over one MongoDB collection. Records use their
// ID as _id.
type Collection[T models.Document] struct {
	coll *mongo.Collection
}

func NewCollection[T models.Document](coll *mongo.Collection) *Collection[T] {
	return &Collection[T]{coll: coll}
}

func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	cur, err := c.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", c.coll.Name(), err)
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.coll.Name(), err)
	}
	return out, nil
}

func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var doc T
	err := c.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return doc, content.ErrNotFound
	}
	if err != nil {
		return doc, fmt.Errorf("get %s %s: %w", c.coll.Name(), id, err)
	}
	return doc, nil
}

func (c *Collection[T]) Insert(ctx context.Context, doc T) error {
	_, err := c.coll.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return content.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert %s: %w", c.coll.Name(), err)
	}
	return nil
}

func (c *Collection[T]) Replace(ctx context.Context, doc T) error {
	res, err := c.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: doc.DocID()}}, doc)
	if mongo.IsDuplicateKeyError(err) {
		return content.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("replace %s %s: %w", c.coll.Name(), doc.DocID(), err)
	}
	if res.MatchedCount == 0 {
		return content.ErrNotFound
	}
	return nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	res, err := c.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", c.coll.Name(), id, err)
	}
	if res.DeletedCount == 0 {
		return content.ErrNotFound
	}
	return nil
}

// Users adds the email lookup. Emails are stored lowercased.
type Users struct {
	*Collection[models.User]
}

func (u *Users) ByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := u.coll.FindOne(ctx, bson.D{{Key: "email", Value: strings.ToLower(email)}}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return user, content.ErrNotFound
	}
	if err != nil {
		return user, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

// Media stores {key, noindex, createdAt, updatedAt} side records.
type Media struct {
	coll *mongo.Collection
}

func (m *Media) List(ctx context.Context) ([]models.MediaMeta, error) {
	cur, err := m.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "key", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find media: %w", err)
	}
	out := []models.MediaMeta{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode media: %w", err)
	}
	return out, nil
}

func (m *Media) Get(ctx context.Context, key string) (models.MediaMeta, error) {
	var meta models.MediaMeta
	err := m.coll.FindOne(ctx, bson.D{{Key: "key", Value: key}}).Decode(&meta)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return meta, content.ErrNotFound
	}
	if err != nil {
		return meta, fmt.Errorf("get media %s: %w", key, err)
	}
	return meta, nil
}

func (m *Media) Upsert(ctx context.Context, key string) error {
	now := time.Now().UTC()
	_, err := m.coll.UpdateOne(ctx,
		bson.D{{Key: "key", Value: key}},
		bson.D{
			{Key: "$setOnInsert", Value: bson.D{{Key: "noindex", Value: false}, {Key: "createdAt", Value: now}}},
			{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: now}}},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert media %s: %w", key, err)
	}
	return nil
}

func (m *Media) SetNoIndex(ctx context.Context, key string, noindex bool) error {
	now := time.Now().UTC()
	_, err := m.coll.UpdateOne(ctx,
		bson.D{{Key: "key", Value: key}},
		bson.D{
			{Key: "$setOnInsert", Value: bson.D{{Key: "createdAt", Value: now}}},
			{Key: "$set", Value: bson.D{{Key: "noindex", Value: noindex}, {Key: "updatedAt", Value: now}}},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("set noindex %s: %w", key, err)
	}
	return nil
}

func (m *Media) Delete(ctx context.Context, key string) error {
	res, err := m.coll.DeleteOne(ctx, bson.D{{Key: "key", Value: key}})
	if err != nil {
		return fmt.Errorf("delete media %s: %w", key, err)
	}
	if res.DeletedCount == 0 {
		return content.ErrNotFound
	}
	return nil
}
