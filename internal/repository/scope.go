package repository

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Scope narrows every read-style operation of a repository. It is applied to
// query filters and prepended to aggregation pipelines.
type Scope interface {
	Filter(filter bson.M) bson.M
	Pipeline(pipeline mongo.Pipeline) mongo.Pipeline
}

var secretPredicate = bson.M{"$ne": true}

// HideSecret excludes tours flagged secretTour from results.
type HideSecret struct{}

func (HideSecret) Filter(filter bson.M) bson.M {
	out := make(bson.M, len(filter)+1)
	for k, v := range filter {
		out[k] = v
	}

	if existing, ok := out["secretTour"]; ok {
		out["$and"] = append(andClauses(out["$and"]),
			bson.M{"secretTour": existing},
			bson.M{"secretTour": secretPredicate},
		)
		delete(out, "secretTour")
		return out
	}

	out["secretTour"] = secretPredicate
	return out
}

func (HideSecret) Pipeline(pipeline mongo.Pipeline) mongo.Pipeline {
	out := make(mongo.Pipeline, 0, len(pipeline)+1)
	out = append(out, bson.D{{Key: "$match", Value: bson.M{"secretTour": secretPredicate}}})
	return append(out, pipeline...)
}

// Unscoped sees every document. It is for internal batch jobs only.
type Unscoped struct{}

func (Unscoped) Filter(filter bson.M) bson.M {
	if filter == nil {
		return bson.M{}
	}
	return filter
}

func (Unscoped) Pipeline(pipeline mongo.Pipeline) mongo.Pipeline {
	return pipeline
}

func andClauses(v any) []any {
	switch c := v.(type) {
	case []any:
		return c
	case bson.A:
		return c
	case []bson.M:
		out := make([]any, len(c))
		for i := range c {
			out[i] = c[i]
		}
		return out
	}
	return nil
}
