package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestHideSecret_Filter(t *testing.T) {
	t.Run("adds predicate to empty filter", func(t *testing.T) {
		got := HideSecret{}.Filter(nil)
		assert.Equal(t, bson.M{"secretTour": bson.M{"$ne": true}}, got)
	})

	t.Run("keeps caller conditions", func(t *testing.T) {
		in := bson.M{"price": bson.M{"$lt": 500}}
		got := HideSecret{}.Filter(in)

		assert.Equal(t, bson.M{"$lt": 500}, got["price"])
		assert.Equal(t, bson.M{"$ne": true}, got["secretTour"])
		assert.NotContains(t, in, "secretTour", "input filter must not be mutated")
	})

	t.Run("caller asking for secret tours still gets the predicate", func(t *testing.T) {
		got := HideSecret{}.Filter(bson.M{"secretTour": true})

		assert.NotContains(t, got, "secretTour")
		and, ok := got["$and"].([]any)
		assert.True(t, ok)
		assert.Contains(t, and, bson.M{"secretTour": true})
		assert.Contains(t, and, bson.M{"secretTour": bson.M{"$ne": true}})
	})
}

func TestHideSecret_PipelinePrependsMatch(t *testing.T) {
	in := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$difficulty"}}},
	}
	got := HideSecret{}.Pipeline(in)

	assert.Len(t, got, 2)
	assert.Equal(t, bson.D{{Key: "$match", Value: bson.M{"secretTour": bson.M{"$ne": true}}}}, got[0])
	assert.Equal(t, in[0], got[1])
	assert.Len(t, in, 1)
}

func TestUnscoped(t *testing.T) {
	assert.Equal(t, bson.M{}, Unscoped{}.Filter(nil))

	f := bson.M{"name": "x"}
	assert.Equal(t, f, Unscoped{}.Filter(f))

	p := mongo.Pipeline{{{Key: "$limit", Value: 1}}}
	assert.Equal(t, p, Unscoped{}.Pipeline(p))
}
