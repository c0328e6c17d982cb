// Package seed loads development tour data into the store and clears it.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"natours-api/internal/models"
	"natours-api/internal/repository"
	"natours-api/internal/utils"
)

const DefaultFile = "dev-data/data/tours-simple.json"

// Load decodes a JSON array of tours and runs each through the creation
// rules, so imported tours get the same slug and defaults as API-created
// ones. The first invalid record aborts the load.
func Load(r io.Reader, now time.Time) ([]*models.Tour, error) {
	var inputs []models.TourInput
	if err := json.NewDecoder(r).Decode(&inputs); err != nil {
		return nil, fmt.Errorf("decode seed data: %w", err)
	}

	tours := make([]*models.Tour, 0, len(inputs))
	for i, in := range inputs {
		t, err := models.NewTour(in, now)
		if err != nil {
			return nil, fmt.Errorf("seed record %d (%q): %w", i, in.Name, err)
		}
		tours = append(tours, t)
	}
	return tours, nil
}

// Import loads r and inserts every tour. Nothing is written unless all
// records are valid.
func Import(ctx context.Context, repo *repository.TourRepository, r io.Reader, audit *utils.Logger) (int, error) {
	tours, err := Load(r, time.Now())
	if err != nil {
		return 0, err
	}

	n, err := repo.InsertMany(ctx, tours)
	if err != nil {
		return 0, err
	}
	_ = audit.Log(ctx, models.TourEntity, models.ActionImport, "system", map[string]int{"inserted": n})
	return n, nil
}

// Delete removes every tour, secret ones included.
func Delete(ctx context.Context, repo *repository.TourRepository, audit *utils.Logger) (int64, error) {
	n, err := repo.WithScope(repository.Unscoped{}).DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	_ = audit.Log(ctx, models.TourEntity, models.ActionDelete, "system", map[string]int64{"deleted": n})
	return n, nil
}
