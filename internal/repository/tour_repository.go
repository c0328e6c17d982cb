package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"natours-api/internal/models"
)

var ErrNotFound = errors.New("tour not found")

// ListOptions is a fully resolved list query.
type ListOptions struct {
	Filter     bson.M
	Sort       bson.D
	Projection bson.M
	Skip       int64
	Limit      int64
}

type TourStats struct {
	Difficulty string  `bson:"_id" json:"_id"`
	NumTours   int     `bson:"numTours" json:"numTours"`
	NumRatings int     `bson:"numRatings" json:"numRatings"`
	AvgRating  float64 `bson:"avgRating" json:"avgRating"`
	AvgPrice   float64 `bson:"avgPrice" json:"avgPrice"`
	MinPrice   float64 `bson:"minPrice" json:"minPrice"`
	MaxPrice   float64 `bson:"maxPrice" json:"maxPrice"`
}

type MonthlyPlan struct {
	Month         int      `bson:"month" json:"month"`
	NumTourStarts int      `bson:"numTourStarts" json:"numTourStarts"`
	Tours         []string `bson:"tours" json:"tours"`
}

// TourRepository is the only code that talks to the tours collection. Every
// read goes through its Scope.
type TourRepository struct {
	coll  *mongo.Collection
	scope Scope
}

func NewTourRepository(coll *mongo.Collection) *TourRepository {
	return &TourRepository{coll: coll, scope: HideSecret{}}
}

// WithScope returns a copy of the repository reading through s.
func (r *TourRepository) WithScope(s Scope) *TourRepository {
	return &TourRepository{coll: r.coll, scope: s}
}

func (r *TourRepository) Find(ctx context.Context, opts ListOptions) ([]models.Tour, error) {
	findOpts := options.Find()
	if len(opts.Sort) > 0 {
		findOpts.SetSort(opts.Sort)
	}
	if len(opts.Projection) > 0 {
		findOpts.SetProjection(opts.Projection)
	}
	if opts.Skip > 0 {
		findOpts.SetSkip(opts.Skip)
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}

	cursor, err := r.coll.Find(ctx, r.scope.Filter(opts.Filter), findOpts)
	if err != nil {
		return nil, fmt.Errorf("find tours: %w", err)
	}
	defer cursor.Close(ctx)

	tours := []models.Tour{}
	if err := cursor.All(ctx, &tours); err != nil {
		return nil, fmt.Errorf("decode tours: %w", err)
	}
	return tours, nil
}

func (r *TourRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Tour, error) {
	var tour models.Tour
	err := r.coll.FindOne(ctx, r.scope.Filter(bson.M{"_id": id})).Decode(&tour)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find tour %s: %w", id.Hex(), err)
	}
	return &tour, nil
}

func (r *TourRepository) Create(ctx context.Context, tour *models.Tour) error {
	if tour.ID.IsZero() {
		tour.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, tour); err != nil {
		return fmt.Errorf("insert tour: %w", err)
	}
	return nil
}

func (r *TourRepository) InsertMany(ctx context.Context, tours []*models.Tour) (int, error) {
	if len(tours) == 0 {
		return 0, nil
	}
	docs := make([]any, len(tours))
	for i, t := range tours {
		if t.ID.IsZero() {
			t.ID = primitive.NewObjectID()
		}
		docs[i] = t
	}

	res, err := r.coll.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("insert tours: %w", err)
	}
	return len(res.InsertedIDs), nil
}

// Update applies set to a visible tour and returns the updated document.
func (r *TourRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Tour, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var tour models.Tour
	err := r.coll.FindOneAndUpdate(ctx, r.scope.Filter(bson.M{"_id": id}), bson.M{"$set": set}, opts).Decode(&tour)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update tour %s: %w", id.Hex(), err)
	}
	return &tour, nil
}

func (r *TourRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	err := r.coll.FindOneAndDelete(ctx, r.scope.Filter(bson.M{"_id": id})).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete tour %s: %w", id.Hex(), err)
	}
	return nil
}

// DeleteAll removes every tour matched by the scope's filter.
func (r *TourRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, r.scope.Filter(bson.M{}))
	if err != nil {
		return 0, fmt.Errorf("delete tours: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *TourRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline, out any) error {
	cursor, err := r.coll.Aggregate(ctx, r.scope.Pipeline(pipeline))
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

// Stats groups tours rated at least minRating by difficulty, cheapest first.
func (r *TourRepository) Stats(ctx context.Context, minRating float64) ([]TourStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"ratingAverage": bson.M{"$gte": minRating}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.M{"$toUpper": "$difficulty"}},
			{Key: "numTours", Value: bson.M{"$sum": 1}},
			{Key: "numRatings", Value: bson.M{"$sum": "$ratingQuantity"}},
			{Key: "avgRating", Value: bson.M{"$avg": "$ratingAverage"}},
			{Key: "avgPrice", Value: bson.M{"$avg": "$price"}},
			{Key: "minPrice", Value: bson.M{"$min": "$price"}},
			{Key: "maxPrice", Value: bson.M{"$max": "$price"}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "avgPrice", Value: 1}}}},
	}

	stats := []TourStats{}
	if err := r.aggregate(ctx, pipeline, &stats); err != nil {
		return nil, fmt.Errorf("tour stats: %w", err)
	}
	return stats, nil
}

// MonthlyPlan counts tour starts per month of year, busiest month first.
func (r *TourRepository) MonthlyPlan(ctx context.Context, year int) ([]MonthlyPlan, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$startDates"}},
		{{Key: "$match", Value: bson.M{"startDates": bson.M{"$gte": from, "$lt": to}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.M{"$month": "$startDates"}},
			{Key: "numTourStarts", Value: bson.M{"$sum": 1}},
			{Key: "tours", Value: bson.M{"$push": "$name"}},
		}}},
		{{Key: "$addFields", Value: bson.M{"month": "$_id"}}},
		{{Key: "$project", Value: bson.M{"_id": 0}}},
		{{Key: "$sort", Value: bson.D{{Key: "numTourStarts", Value: -1}, {Key: "month", Value: 1}}}},
		{{Key: "$limit", Value: 12}},
	}

	plan := []MonthlyPlan{}
	if err := r.aggregate(ctx, pipeline, &plan); err != nil {
		return nil, fmt.Errorf("monthly plan %d: %w", year, err)
	}
	return plan, nil
}
