package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Difficulty string

const (
	DifficultyEasy      Difficulty = "easy"
	DifficultyMedium    Difficulty = "medium"
	DifficultyDifficult Difficulty = "difficult"

	TourEntity = "tour"

	DefaultRatingAverage = 4.5
)

var ValidDifficulties = map[string]bool{
	string(DifficultyEasy):      true,
	string(DifficultyMedium):    true,
	string(DifficultyDifficult): true,
}

func IsValidDifficulty(d string) bool {
	return ValidDifficulties[d]
}

// Tour is the stored document. DurationWeeks is computed on output and never
// persisted.
type Tour struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Slug           string             `bson:"slug" json:"slug"`
	Duration       float64            `bson:"duration" json:"duration"`
	MaxGroupSize   int                `bson:"maxGroupSize" json:"maxGroupSize"`
	Difficulty     Difficulty         `bson:"difficulty" json:"difficulty"`
	RatingAverage  float64            `bson:"ratingAverage" json:"ratingAverage"`
	RatingQuantity int                `bson:"ratingQuantity" json:"ratingQuantity"`
	Price          float64            `bson:"price" json:"price"`
	PriceDiscount  *float64           `bson:"priceDiscount,omitempty" json:"priceDiscount,omitempty"`
	Summary        string             `bson:"summary" json:"summary"`
	Description    string             `bson:"description,omitempty" json:"description,omitempty"`
	ImageCover     string             `bson:"imageCover" json:"imageCover"`
	Images         []string           `bson:"images" json:"images"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	StartDates     []time.Time        `bson:"startDates" json:"startDates"`
	SecretTour     bool               `bson:"secretTour" json:"secretTour"`
}

func (t Tour) DurationWeeks() float64 {
	return t.Duration / 7
}

func (t Tour) MarshalJSON() ([]byte, error) {
	type plain Tour
	return json.Marshal(struct {
		plain
		DurationWeeks float64 `json:"durationWeeks"`
	}{plain(t), t.DurationWeeks()})
}

// TourInput is the create payload. Pointers distinguish "absent" from zero so
// required fields and defaults behave like the document schema.
type TourInput struct {
	Name           string       `json:"name" validate:"required,min=10,max=40"`
	Duration       *float64     `json:"duration" validate:"required,gt=0"`
	MaxGroupSize   *int         `json:"maxGroupSize" validate:"required,gt=0"`
	Difficulty     string       `json:"difficulty" validate:"required,difficulty"`
	RatingAverage  *float64     `json:"ratingAverage" validate:"omitempty,gte=1,lte=5"`
	RatingQuantity *int         `json:"ratingQuantity" validate:"omitempty,gte=0"`
	Price          *float64     `json:"price" validate:"required,gt=0"`
	PriceDiscount  *float64     `json:"priceDiscount" validate:"omitempty,gte=0"`
	Summary        string       `json:"summary" validate:"required"`
	Description    string       `json:"description"`
	ImageCover     string       `json:"imageCover" validate:"required"`
	Images         []string     `json:"images"`
	CreatedAt      *time.Time   `json:"createdAt"`
	StartDates     []time.Time  `json:"startDates"`
	SecretTour     *bool        `json:"secretTour"`
}

// NewTour validates the input and builds the document to insert: trims text,
// applies defaults and derives the slug from the name.
func NewTour(in TourInput, now time.Time) (*Tour, error) {
	in.Summary = strings.TrimSpace(in.Summary)
	in.Description = strings.TrimSpace(in.Description)

	if err := ValidateTourInput(&in); err != nil {
		return nil, err
	}

	t := &Tour{
		ID:            primitive.NewObjectID(),
		Name:          in.Name,
		Slug:          Slugify(in.Name),
		Duration:      *in.Duration,
		MaxGroupSize:  *in.MaxGroupSize,
		Difficulty:    Difficulty(in.Difficulty),
		RatingAverage: DefaultRatingAverage,
		Price:         *in.Price,
		PriceDiscount: in.PriceDiscount,
		Summary:       in.Summary,
		Description:   in.Description,
		ImageCover:    in.ImageCover,
		Images:        in.Images,
		CreatedAt:     now,
		StartDates:    in.StartDates,
	}
	if in.RatingAverage != nil {
		t.RatingAverage = *in.RatingAverage
	}
	if in.RatingQuantity != nil {
		t.RatingQuantity = *in.RatingQuantity
	}
	if in.CreatedAt != nil {
		t.CreatedAt = *in.CreatedAt
	}
	if in.SecretTour != nil {
		t.SecretTour = *in.SecretTour
	}
	if t.Images == nil {
		t.Images = []string{}
	}
	if t.StartDates == nil {
		t.StartDates = []time.Time{}
	}
	return t, nil
}

func Slugify(name string) string {
	return slug.Make(name)
}

// TourPatch is a partial update. Only non-nil fields are written. The
// discount/price relationship is not re-checked here and the slug is not
// re-derived from a new name.
type TourPatch struct {
	Name           *string      `json:"name" validate:"omitempty,min=10,max=40"`
	Duration       *float64     `json:"duration" validate:"omitempty,gt=0"`
	MaxGroupSize   *int         `json:"maxGroupSize" validate:"omitempty,gt=0"`
	Difficulty     *string      `json:"difficulty" validate:"omitempty,difficulty"`
	RatingAverage  *float64     `json:"ratingAverage" validate:"omitempty,gte=1,lte=5"`
	RatingQuantity *int         `json:"ratingQuantity" validate:"omitempty,gte=0"`
	Price          *float64     `json:"price" validate:"omitempty,gt=0"`
	PriceDiscount  *float64     `json:"priceDiscount" validate:"omitempty,gte=0"`
	Summary        *string      `json:"summary" validate:"omitempty,min=1"`
	Description    *string      `json:"description"`
	ImageCover     *string      `json:"imageCover" validate:"omitempty,min=1"`
	Images         *[]string    `json:"images"`
	StartDates     *[]time.Time `json:"startDates"`
	SecretTour     *bool        `json:"secretTour"`
}

// Set returns the $set document for the patch, keyed by stored field name.
func (p TourPatch) Set() map[string]any {
	set := map[string]any{}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Duration != nil {
		set["duration"] = *p.Duration
	}
	if p.MaxGroupSize != nil {
		set["maxGroupSize"] = *p.MaxGroupSize
	}
	if p.Difficulty != nil {
		set["difficulty"] = *p.Difficulty
	}
	if p.RatingAverage != nil {
		set["ratingAverage"] = *p.RatingAverage
	}
	if p.RatingQuantity != nil {
		set["ratingQuantity"] = *p.RatingQuantity
	}
	if p.Price != nil {
		set["price"] = *p.Price
	}
	if p.PriceDiscount != nil {
		set["priceDiscount"] = *p.PriceDiscount
	}
	if p.Summary != nil {
		set["summary"] = strings.TrimSpace(*p.Summary)
	}
	if p.Description != nil {
		set["description"] = strings.TrimSpace(*p.Description)
	}
	if p.ImageCover != nil {
		set["imageCover"] = *p.ImageCover
	}
	if p.Images != nil {
		set["images"] = *p.Images
	}
	if p.StartDates != nil {
		set["startDates"] = *p.StartDates
	}
	if p.SecretTour != nil {
		set["secretTour"] = *p.SecretTour
	}
	return set
}

// FieldKind tells the query layer how to cast filter values.
type FieldKind int

const (
	KindString FieldKind = iota
	KindNumber
	KindInt
	KindBool
	KindDate
)

// TourFields lists the filterable/sortable fields of a tour.
var TourFields = map[string]FieldKind{
	"_id":            KindString,
	"name":           KindString,
	"slug":           KindString,
	"duration":       KindNumber,
	"maxGroupSize":   KindInt,
	"difficulty":     KindString,
	"ratingAverage":  KindNumber,
	"ratingQuantity": KindInt,
	"price":          KindNumber,
	"priceDiscount":  KindNumber,
	"summary":        KindString,
	"description":    KindString,
	"imageCover":     KindString,
	"images":         KindString,
	"createdAt":      KindDate,
	"startDates":     KindDate,
	"secretTour":     KindBool,
}
