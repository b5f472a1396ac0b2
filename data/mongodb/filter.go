package mongodb

import (
	"fmt"
	"regexp"

	"github.com/ncobase/feedsync/data"
	"github.com/ncobase/feedsync/paging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	fieldID        = "_id"
	fieldCreatedAt = "createdAt"
)

func fieldName(f string) string {
	if f == "id" {
		return fieldID
	}
	return f
}

// buildFilter translates q into a mongo filter document.
func buildFilter(q *data.Query) (bson.D, error) {
	var and bson.A
	for _, f := range q.Filters {
		cond, err := filterCond(f)
		if err != nil {
			return nil, err
		}
		and = append(and, cond)
	}
	if q.StartAfter != nil {
		and = append(and, cursorCond(q.OrderBy, q.Desc, q.StartAfter))
	}
	switch len(and) {
	case 0:
		return bson.D{}, nil
	case 1:
		return and[0].(bson.D), nil
	}
	return bson.D{{Key: "$and", Value: and}}, nil
}

func filterCond(f data.Filter) (bson.D, error) {
	name := fieldName(f.Field)
	switch f.Op {
	case data.OpEq, data.OpArrayContains:
		// Equality on an array field matches any element.
		return bson.D{{Key: name, Value: f.Value}}, nil
	case data.OpIn:
		return bson.D{{Key: name, Value: bson.D{{Key: "$in", Value: f.Value}}}}, nil
	case data.OpContains:
		s, ok := f.Value.(string)
		if !ok {
			return nil, fmt.Errorf("mongodb: contains filter on %s needs a string, got %T", f.Field, f.Value)
		}
		return bson.D{{Key: name, Value: bson.D{
			{Key: "$regex", Value: regexp.QuoteMeta(s)},
			{Key: "$options", Value: "i"},
		}}}, nil
	}
	return nil, fmt.Errorf("mongodb: unsupported operator %s", f.Op)
}

// cursorCond selects documents strictly after c in (orderBy, _id) order.
func cursorCond(orderBy string, desc bool, c *paging.Cursor) bson.D {
	if orderBy == "" {
		orderBy = fieldCreatedAt
	}
	op := "$gt"
	if desc {
		op = "$lt"
	}
	return bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: orderBy, Value: bson.D{{Key: op, Value: c.CreatedAt}}}},
		bson.D{
			{Key: orderBy, Value: c.CreatedAt},
			{Key: fieldID, Value: bson.D{{Key: op, Value: c.ID}}},
		},
	}}}
}

func findOptions(q *data.Query) *options.FindOptions {
	orderBy := q.OrderBy
	if orderBy == "" {
		orderBy = fieldCreatedAt
	}
	dir := 1
	if q.Desc {
		dir = -1
	}
	opts := options.Find().SetSort(bson.D{{Key: orderBy, Value: dir}, {Key: fieldID, Value: dir}})
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	return opts
}
