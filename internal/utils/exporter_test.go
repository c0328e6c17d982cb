package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"natours-api/internal/models"
)

func TestExportData(t *testing.T) {
	var buf bytes.Buffer
	err := ExportData(&buf, []models.AuditLog{{Entity: "tour", Action: models.ActionUpdate, PerformedBy: "u7"}})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "tour UPDATE by=u7")
}
