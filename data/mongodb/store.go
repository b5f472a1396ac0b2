package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ncobase/feedsync/config"
	"github.com/ncobase/feedsync/data"
	"github.com/ncobase/feedsync/data/nanoid"
	"github.com/ncobase/feedsync/logging/logger"
	"github.com/ncobase/feedsync/structs"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func init() {
	data.RegisterDriver(&driver{})
}

type driver struct{}

func (d *driver) Name() string { return "mongodb" }

func (d *driver) Open(ctx context.Context, cfg *config.Data) (data.Store, error) {
	if cfg == nil || cfg.MongoDB == nil {
		return nil, errors.New("mongodb: missing data.mongodb configuration")
	}
	return Open(ctx, cfg.MongoDB)
}

// Store implements data.Store on MongoDB.
type Store struct {
	mgr          *MongoManager
	db           string
	pollInterval time.Duration
	now          func() time.Time
}

// TxStore is a Store whose deployment supports multi-document
// transactions.
type TxStore struct {
	*Store
}

// Open connects, ensures indexes and returns a *TxStore on replica sets
// or a *Store on standalone servers.
func Open(ctx context.Context, conf *config.MongoDB) (data.Store, error) {
	mgr, err := NewMongoManager(ctx, conf)
	if err != nil {
		return nil, err
	}
	s := &Store{
		mgr:          mgr,
		db:           conf.Database,
		pollInterval: conf.PollInterval,
		now:          func() time.Time { return time.Now().UTC() },
	}
	if s.db == "" {
		s.db = "feedsync"
	}
	if s.pollInterval <= 0 {
		s.pollInterval = 5 * time.Second
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = mgr.Close(ctx)
		return nil, err
	}
	if mgr.SupportsTransactions(ctx) {
		return &TxStore{Store: s}, nil
	}
	logger.Info(ctx, "mongodb deployment has no transaction support, follow writes will use compensation")
	return s, nil
}

// WithTransaction runs fn inside a multi-document transaction.
func (s *TxStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.mgr.WithTransaction(ctx, func(sctx mongo.SessionContext) error {
		return fn(sctx)
	})
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		data.CollectionPosts: {
			{Keys: bson.D{{Key: fieldCreatedAt, Value: -1}, {Key: fieldID, Value: -1}}},
			{Keys: bson.D{{Key: "uid", Value: 1}, {Key: fieldCreatedAt, Value: -1}}},
			{Keys: bson.D{{Key: structs.FieldLikedBy, Value: 1}}},
			{Keys: bson.D{{Key: structs.FieldBookmarks, Value: 1}}},
		},
		data.CollectionUsers: {
			{Keys: bson.D{{Key: "username", Value: 1}}},
		},
		data.CollectionAccounts: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for coll, models := range indexes {
		if _, err := s.collection(coll, false).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("mongodb: create %s indexes: %w", coll, err)
		}
	}
	return nil
}

func (s *Store) collection(name string, readOnly bool) *mongo.Collection {
	return s.mgr.GetCollection(s.db, name, readOnly)
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return data.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", data.ErrDuplicate, err)
	}
	return err
}

func matched(res *mongo.UpdateResult, err error) error {
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return data.ErrNotFound
	}
	return nil
}

// Posts

func (s *Store) FindPosts(ctx context.Context, q *data.Query) ([]*structs.Post, error) {
	filter, err := buildFilter(q)
	if err != nil {
		return nil, err
	}
	cur, err := s.collection(data.CollectionPosts, true).Find(ctx, filter, findOptions(q))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	posts := make([]*structs.Post, 0, q.Limit)
	for cur.Next(ctx) {
		var p structs.Post
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		posts = append(posts, &p)
	}
	return posts, cur.Err()
}

func (s *Store) GetPost(ctx context.Context, id string) (*structs.Post, error) {
	// Point reads follow writes, so they go to the master.
	var p structs.Post
	err := s.collection(data.CollectionPosts, false).FindOne(ctx, bson.D{{Key: fieldID, Value: id}}).Decode(&p)
	if err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (s *Store) CreatePost(ctx context.Context, p *structs.Post) (*structs.Post, error) {
	out := p.Clone()
	id, err := nanoid.New()
	if err != nil {
		return nil, err
	}
	out.ID = id
	// Stored dates have millisecond precision; truncate so cursors built
	// from the returned post match what later reads see.
	out.CreatedAt = s.now().Truncate(time.Millisecond)
	if out.LikedBy == nil {
		out.LikedBy = []string{}
	}
	if out.Bookmarks == nil {
		out.Bookmarks = []string{}
	}
	if out.Comments == nil {
		out.Comments = []structs.Comment{}
	}
	if _, err := s.collection(data.CollectionPosts, false).InsertOne(ctx, out); err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

func (s *Store) SetPostMembers(ctx context.Context, id, field string, members []string) error {
	if members == nil {
		members = []string{}
	}
	return s.update(ctx, data.CollectionPosts, id, "$set", field, members)
}

func (s *Store) AddPostMember(ctx context.Context, id, field, uid string) error {
	return s.update(ctx, data.CollectionPosts, id, "$addToSet", field, uid)
}

func (s *Store) RemovePostMember(ctx context.Context, id, field, uid string) error {
	return s.update(ctx, data.CollectionPosts, id, "$pull", field, uid)
}

func (s *Store) AppendComment(ctx context.Context, id string, c structs.Comment) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now().Truncate(time.Millisecond)
	}
	return s.update(ctx, data.CollectionPosts, id, "$push", "comments", c)
}

func (s *Store) update(ctx context.Context, coll, id, op, field string, value any) error {
	res, err := s.collection(coll, false).UpdateOne(ctx,
		bson.D{{Key: fieldID, Value: id}},
		bson.D{{Key: op, Value: bson.D{{Key: field, Value: value}}}},
	)
	return matched(res, err)
}

// Users

func (s *Store) GetUser(ctx context.Context, uid string) (*structs.User, error) {
	var u structs.User
	err := s.collection(data.CollectionUsers, false).FindOne(ctx, bson.D{{Key: fieldID, Value: uid}}).Decode(&u)
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *structs.User) error {
	doc := u.Clone()
	if doc.Followers == nil {
		doc.Followers = []string{}
	}
	if doc.Following == nil {
		doc.Following = []string{}
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = s.now().Truncate(time.Millisecond)
	}
	_, err := s.collection(data.CollectionUsers, false).InsertOne(ctx, doc)
	return mapErr(err)
}

func (s *Store) SearchUsers(ctx context.Context, term string, limit int) ([]*structs.User, error) {
	rx := bson.D{{Key: "$regex", Value: regexp.QuoteMeta(term)}, {Key: "$options", Value: "i"}}
	filter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "username", Value: rx}},
		bson.D{{Key: "name", Value: rx}},
	}}}
	opts := options.Find().SetSort(bson.D{{Key: "username", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.collection(data.CollectionUsers, true).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var users []*structs.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) SetUserMembers(ctx context.Context, uid, field string, members []string) error {
	if members == nil {
		members = []string{}
	}
	return s.update(ctx, data.CollectionUsers, uid, "$set", field, members)
}

func (s *Store) AddUserMember(ctx context.Context, uid, field, member string) error {
	return s.update(ctx, data.CollectionUsers, uid, "$addToSet", field, member)
}

func (s *Store) RemoveUserMember(ctx context.Context, uid, field, member string) error {
	return s.update(ctx, data.CollectionUsers, uid, "$pull", field, member)
}

// Accounts

func (s *Store) CreateAccount(ctx context.Context, a *structs.Account) error {
	doc := *a
	doc.Email = strings.ToLower(strings.TrimSpace(doc.Email))
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = s.now().Truncate(time.Millisecond)
	}
	_, err := s.collection(data.CollectionAccounts, false).InsertOne(ctx, &doc)
	return mapErr(err)
}

func (s *Store) GetAccount(ctx context.Context, uid string) (*structs.Account, error) {
	var a structs.Account
	err := s.collection(data.CollectionAccounts, false).FindOne(ctx, bson.D{{Key: fieldID, Value: uid}}).Decode(&a)
	if err != nil {
		return nil, mapErr(err)
	}
	return &a, nil
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*structs.Account, error) {
	var a structs.Account
	filter := bson.D{{Key: "email", Value: strings.ToLower(strings.TrimSpace(email))}}
	if err := s.collection(data.CollectionAccounts, false).FindOne(ctx, filter).Decode(&a); err != nil {
		return nil, mapErr(err)
	}
	return &a, nil
}

func (s *Store) DeleteAccount(ctx context.Context, uid string) error {
	res, err := s.collection(data.CollectionAccounts, false).DeleteOne(ctx, bson.D{{Key: fieldID, Value: uid}})
	if err != nil {
		return mapErr(err)
	}
	if res.DeletedCount == 0 {
		return data.ErrNotFound
	}
	return nil
}

func (s *Store) Health(ctx context.Context) error {
	return s.mgr.Health(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	return s.mgr.Close(ctx)
}
