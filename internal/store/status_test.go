package store

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/NoahAizen44/SmarterTips/schema"
	"github.com/stretchr/testify/assert"
)

func TestPrintStoreStatus(t *testing.T) {
	tests := []struct {
		name     string
		league   schema.StoreStatus
		models   schema.StoreStatus
		contains []string
		excludes []string
	}{
		{
			name:     "disconnected",
			league:   schema.StoreStatus{Backend: "none"},
			contains: []string{"Store Backend: none", "Connected: false"},
			excludes: []string{"Teams:"},
		},
		{
			name: "connected with models",
			league: schema.StoreStatus{
				Backend: "sqlite", Connected: true, Teams: 2, Games: 120, DatabaseSizeKB: 64,
				TableSizes: map[string]int64{gamesTable: 120},
			},
			models: schema.StoreStatus{
				Models: 3, LastModelTime: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
				TableSizes: map[string]int64{fitsTable: 3},
			},
			contains: []string{
				"Teams: 2", "Games: 120", "Models: 3",
				"Last Model Update: 2024-03-01 12:00:00", "Database Size: 64 KB",
				"  games: 120 rows", "  usage_model_fits: 3 rows",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			PrintStoreStatus(&buf, tt.league, tt.models)
			out := buf.String()
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestPrintRunStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintRunStatus(&buf, schema.RunStatus{
		Backend: "sqlite", Connected: true, TotalRuns: 2, LastRunID: 2, LastRunUUID: "abc",
		TotalTrained: 10,
		TableSizes:   map[string]int64{runsTable: 2, outcomesTable: 12},
	})
	out := buf.String()
	assert.Contains(t, out, "Last Run ID: 2 (abc)")
	assert.Contains(t, out, "Total Targets Trained: 10")
	// Table sizes are sorted by name
	assert.Less(t, strings.Index(out, outcomesTable), strings.Index(out, runsTable+":"))
}
