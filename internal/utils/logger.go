package utils

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"natours-api/internal/models"
)

// Logger writes audit entries for tour writes. A nil Collection turns it
// into a no-op so handlers can run without an audit store.
type Logger struct {
	Collection *mongo.Collection
}

func (l *Logger) Log(ctx context.Context, entity, action, performedBy string, data any) error {
	if l == nil || l.Collection == nil {
		return nil
	}
	entry := models.AuditLog{
		Timestamp:   time.Now(),
		Entity:      entity,
		Action:      action,
		PerformedBy: performedBy,
		Data:        data,
	}
	_, err := l.Collection.InsertOne(ctx, entry)
	if err != nil {
		log.Printf("audit log %s %s failed: %v", entity, action, err)
	}
	return err
}
