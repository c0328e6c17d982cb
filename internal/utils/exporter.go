package utils

import (
	"io"
	"log"

	"natours-api/internal/models"
)

// ExportData writes audit entries as log lines to w.
func ExportData(w io.Writer, logs []models.AuditLog) error {
	l := log.New(w, "[AUDIT] ", log.LstdFlags|log.LUTC)
	for _, entry := range logs {
		l.Printf("%s %s %s by=%s data=%v", entry.Timestamp.Format("2006-01-02T15:04:05Z07:00"), entry.Entity, entry.Action, entry.PerformedBy, entry.Data)
	}
	return nil
}
