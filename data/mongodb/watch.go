package mongodb

import (
	"context"
	"time"

	"github.com/ncobase/feedsync/data"
	"github.com/ncobase/feedsync/logging/logger"
	"github.com/ncobase/feedsync/structs"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var changeOps = mongo.Pipeline{
	{{Key: "$match", Value: bson.D{{Key: "operationType", Value: bson.D{
		{Key: "$in", Value: bson.A{"insert", "update", "replace", "delete"}},
	}}}}},
}

// WatchPosts re-runs q after every change on the posts collection. When
// change streams are unavailable it re-runs q every poll interval.
func (s *Store) WatchPosts(ctx context.Context, q *data.Query) (<-chan []*structs.Post, error) {
	initial, err := s.FindPosts(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make(chan []*structs.Post, 1)
	out <- initial

	stream, err := s.collection(data.CollectionPosts, false).Watch(ctx, changeOps)
	if err != nil {
		logger.Debug(ctx, "change stream unavailable, polling", logger.ErrorKey, err, "interval", s.pollInterval)
	}

	go func() {
		defer close(out)
		if stream != nil {
			s.follow(ctx, stream, q, out)
			if ctx.Err() != nil {
				return
			}
		}
		s.poll(ctx, q, out)
	}()
	return out, nil
}

func (s *Store) follow(ctx context.Context, stream *mongo.ChangeStream, q *data.Query, out chan []*structs.Post) {
	defer stream.Close(context.Background())
	for stream.Next(ctx) {
		s.refresh(ctx, q, out)
	}
	if err := stream.Err(); err != nil && ctx.Err() == nil {
		logger.Warn(ctx, "change stream ended, falling back to polling", logger.ErrorKey, err)
	}
}

func (s *Store) poll(ctx context.Context, q *data.Query, out chan []*structs.Post) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refresh(ctx, q, out)
		}
	}
}

func (s *Store) refresh(ctx context.Context, q *data.Query, out chan []*structs.Post) {
	posts, err := s.FindPosts(ctx, q)
	if err != nil {
		if ctx.Err() == nil {
			logger.Warn(ctx, "refresh watched query failed", "query", q.String(), logger.ErrorKey, err)
		}
		return
	}
	emitLatest(out, posts)
}

// emitLatest replaces any undelivered result with posts. out has a single
// sender so the drain-then-send cannot block.
func emitLatest(out chan []*structs.Post, posts []*structs.Post) {
	select {
	case <-out:
	default:
	}
	out <- posts
}
