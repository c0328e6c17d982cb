package seed

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"natours-api/internal/repository"
	"natours-api/internal/utils"
)

const seedData = `[
  {
    "name": "The Forest Hiker",
    "duration": 5,
    "maxGroupSize": 25,
    "difficulty": "easy",
    "ratingAverage": 4.7,
    "ratingQuantity": 37,
    "price": 397,
    "summary": "Breathtaking hike through the Canadian Banff National Park",
    "imageCover": "tour-1-cover.jpg",
    "startDates": ["2021-04-25T09:00:00Z", "2021-07-20T09:00:00Z"]
  },
  {
    "name": "The Secret Snow Trail",
    "duration": 4,
    "maxGroupSize": 10,
    "difficulty": "difficult",
    "price": 997,
    "summary": "Exciting adventure in the snow with snowboarding and skiing",
    "imageCover": "tour-3-cover.jpg",
    "secretTour": true
  }
]`

func TestLoad(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tours, err := Load(strings.NewReader(seedData), now)
	require.NoError(t, err)
	require.Len(t, tours, 2)

	assert.Equal(t, "the-forest-hiker", tours[0].Slug)
	assert.Len(t, tours[0].StartDates, 2)
	assert.Equal(t, 4.5, tours[1].RatingAverage)
	assert.True(t, tours[1].SecretTour)
	assert.Equal(t, now, tours[1].CreatedAt)
}

func TestLoad_InvalidRecordAbortsLoad(t *testing.T) {
	_, err := Load(strings.NewReader(`[{"name":"Too short"}]`), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed record 0")
}

func TestLoad_MalformedJSON(t *testing.T) {
	_, err := Load(strings.NewReader(`{"name":`), time.Now())
	assert.Error(t, err)
}

func TestImportAndDelete(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("import inserts every tour", func(mt *mtest.T) {
		repo := repository.NewTourRepository(mt.Coll)
		audit := &utils.Logger{Collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(), mtest.CreateSuccessResponse())

		n, err := Import(context.Background(), repo, strings.NewReader(seedData), audit)
		require.NoError(mt, err)
		assert.Equal(mt, 2, n)
	})

	mt.Run("invalid data writes nothing", func(mt *mtest.T) {
		repo := repository.NewTourRepository(mt.Coll)

		_, err := Import(context.Background(), repo, strings.NewReader(`[{"name":"x"}]`), nil)
		require.Error(mt, err)
		assert.Nil(mt, mt.GetStartedEvent())
	})

	mt.Run("delete removes all tours", func(mt *mtest.T) {
		repo := repository.NewTourRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}))

		n, err := Delete(context.Background(), repo, nil)
		require.NoError(mt, err)
		assert.Equal(mt, int64(2), n)

		assert.Equal(mt, "delete", mt.GetStartedEvent().CommandName)
	})
}
