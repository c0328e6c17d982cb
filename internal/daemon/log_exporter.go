package daemon

import (
	"context"
	"io"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"natours-api/internal/models"
	"natours-api/internal/utils"
)

// LogExporter periodically ships unexported audit entries and marks them
// exported.
type LogExporter struct {
	Coll     *mongo.Collection
	Out      io.Writer
	Interval time.Duration
	// OnExport, when set, observes every scheduled run.
	OnExport func(exported int, err error)
}

// Start runs the export loop until ctx is cancelled. The returned channel is
// closed once the loop has stopped.
func (l *LogExporter) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	interval := l.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := l.ExportOnce(ctx)
				if err != nil {
					log.Printf("audit export failed: %v", err)
				}
				if l.OnExport != nil {
					l.OnExport(n, err)
				}
			}
		}
	}()
	return done
}

func (l *LogExporter) ExportOnce(ctx context.Context) (int, error) {
	res, err := l.Coll.Find(ctx, bson.M{"exported": false})
	if err != nil {
		return 0, err
	}

	var logs []models.AuditLog
	if err := res.All(ctx, &logs); err != nil {
		return 0, err
	}
	if len(logs) == 0 {
		return 0, nil
	}

	if err := utils.ExportData(l.Out, logs); err != nil {
		return 0, err
	}

	updateIds := make([]primitive.ObjectID, 0, len(logs))
	for i := 0; i < len(logs); i++ {
		updateIds = append(updateIds, logs[i].ID)
	}

	_, err = l.Coll.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": updateIds}}, bson.M{"$set": bson.M{"exported": true}})
	if err != nil {
		return 0, err
	}
	return len(logs), nil
}
