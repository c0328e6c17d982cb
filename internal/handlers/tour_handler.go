package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"natours-api/internal/apperror"
	"natours-api/internal/middleware"
	"natours-api/internal/models"
	"natours-api/internal/query"
	"natours-api/internal/repository"
	"natours-api/internal/utils"
)

const (
	tourNotFound   = "No tour found with that ID"
	statsMinRating = 4.5
)

// MutationRecorder counts successful tour writes.
type MutationRecorder interface {
	RecordTourMutation(action string, n int)
}

type TourHandler struct {
	Repo        *repository.TourRepository
	AuditLogger *utils.Logger
	Metrics     MutationRecorder
	now         func() time.Time
}

func NewTourHandler(repo *repository.TourRepository, auditLogger *utils.Logger, recorder MutationRecorder) *TourHandler {
	return &TourHandler{
		Repo:        repo,
		AuditLogger: auditLogger,
		Metrics:     recorder,
		now:         time.Now,
	}
}

func (h *TourHandler) clock() time.Time {
	if h.now == nil {
		return time.Now()
	}
	return h.now()
}

// GetAllTours lists visible tours with filtering, sorting, field selection
// and pagination taken from the query string.
func (h *TourHandler) GetAllTours(w http.ResponseWriter, r *http.Request) error {
	features, err := query.Parse(r.URL.Query(), models.TourFields)
	if err != nil {
		return err
	}

	tours, err := h.Repo.Find(r.Context(), features.Options())
	if err != nil {
		return err
	}

	shaped := make([]map[string]any, 0, len(tours))
	for _, t := range tours {
		doc, err := shapeTour(t, features)
		if err != nil {
			return err
		}
		shaped = append(shaped, doc)
	}

	requestedAt := middleware.RequestTime(r.Context())
	if requestedAt.IsZero() {
		requestedAt = h.clock()
	}

	utils.JSON(w, http.StatusOK, map[string]any{
		"status":      "success",
		"requestedAt": requestedAt.UTC().Format(time.RFC3339Nano),
		"results":     len(shaped),
		"data":        map[string]any{"tours": shaped},
	})
	return nil
}

// AliasTopTours presets the query for the five cheapest, best rated tours.
func (h *TourHandler) AliasTopTours(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	q.Set("limit", "5")
	q.Set("sort", "price,-ratingAverage")
	q.Set("fields", "name,price,ratingAverage,summary,difficulty")

	r2 := r.Clone(r.Context())
	r2.URL.RawQuery = q.Encode()
	return h.GetAllTours(w, r2)
}

func (h *TourHandler) GetTour(w http.ResponseWriter, r *http.Request) error {
	id, err := tourID(r)
	if err != nil {
		return err
	}

	tour, err := h.Repo.FindByID(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound(tourNotFound)
	}
	if err != nil {
		return err
	}

	utils.JSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   map[string]any{"tour": tour},
	})
	return nil
}

func (h *TourHandler) CreateTour(w http.ResponseWriter, r *http.Request) error {
	var in models.TourInput
	if err := decodeJSON(r, &in); err != nil {
		return err
	}

	tour, err := models.NewTour(in, h.clock())
	if err != nil {
		return err
	}

	if err := h.Repo.Create(r.Context(), tour); err != nil {
		return err
	}
	h.record(r, models.ActionCreate, tour)

	utils.JSON(w, http.StatusCreated, map[string]any{
		"status": "success",
		"data":   map[string]any{"tour": tour},
	})
	return nil
}

// UpdateTour applies a partial update. Only the fields present in the body
// are validated and written.
func (h *TourHandler) UpdateTour(w http.ResponseWriter, r *http.Request) error {
	id, err := tourID(r)
	if err != nil {
		return err
	}

	var patch models.TourPatch
	if err := decodeJSON(r, &patch); err != nil {
		return err
	}
	if err := models.ValidateTourPatch(&patch); err != nil {
		return err
	}

	set := patch.Set()
	if len(set) == 0 {
		return apperror.BadRequest("No updatable fields provided")
	}

	tour, err := h.Repo.Update(r.Context(), id, bson.M(set))
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound(tourNotFound)
	}
	if err != nil {
		return err
	}
	h.record(r, models.ActionUpdate, set)

	utils.JSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   map[string]any{"tour": tour},
	})
	return nil
}

func (h *TourHandler) DeleteTour(w http.ResponseWriter, r *http.Request) error {
	id, err := tourID(r)
	if err != nil {
		return err
	}

	err = h.Repo.Delete(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound(tourNotFound)
	}
	if err != nil {
		return err
	}
	h.record(r, models.ActionDelete, bson.M{"_id": id})

	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *TourHandler) GetTourStats(w http.ResponseWriter, r *http.Request) error {
	stats, err := h.Repo.Stats(r.Context(), statsMinRating)
	if err != nil {
		return err
	}

	utils.JSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   map[string]any{"stats": stats},
	})
	return nil
}

func (h *TourHandler) GetMonthlyPlan(w http.ResponseWriter, r *http.Request) error {
	year, err := strconv.Atoi(mux.Vars(r)["year"])
	if err != nil || year < 1 || year > 9999 {
		return apperror.BadRequest("Invalid year: " + mux.Vars(r)["year"])
	}

	plan, err := h.Repo.MonthlyPlan(r.Context(), year)
	if err != nil {
		return err
	}

	utils.JSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   map[string]any{"plan": plan},
	})
	return nil
}

// record writes the audit entry and bumps the mutation counter. Audit
// failures are logged by the audit logger and never fail the request.
func (h *TourHandler) record(r *http.Request, action string, data any) {
	performedBy := "anonymous"
	if id, ok := middleware.IdentityFrom(r.Context()); ok {
		performedBy = id.UserID
	}
	_ = h.AuditLogger.Log(r.Context(), models.TourEntity, action, performedBy, data)

	if h.Metrics != nil {
		h.Metrics.RecordTourMutation(action, 1)
	}
}

// tourID treats a malformed id the same as a missing tour.
func tourID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		return primitive.NilObjectID, apperror.NotFound(tourNotFound)
	}
	return id, nil
}

func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return apperror.BadRequest("Request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return apperror.Validation(map[string]string{
				typeErr.Field: "Invalid value for " + typeErr.Field,
			})
		}
		return apperror.BadRequest("Invalid request body")
	}
	return nil
}

// shapeTour renders a tour as JSON and keeps only the selected fields. The
// id is always kept; durationWeeks follows duration.
func shapeTour(t models.Tour, f *query.Features) (map[string]any, error) {
	raw, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	if len(f.Fields) > 0 {
		keep := map[string]bool{"id": true}
		for _, name := range f.Fields {
			keep[outputName(name)] = true
			if name == "duration" {
				keep["durationWeeks"] = true
			}
		}
		for k := range doc {
			if !keep[k] {
				delete(doc, k)
			}
		}
	}

	for _, name := range f.Excluded {
		delete(doc, outputName(name))
		if name == "duration" {
			delete(doc, "durationWeeks")
		}
	}
	return doc, nil
}

func outputName(field string) string {
	if field == "_id" {
		return "id"
	}
	return field
}
