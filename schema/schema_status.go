package schema

import "time"

// StoreStatus represents the status of the league and coefficient store.
type StoreStatus struct {
	Backend        string           `json:"backend"`
	Connected      bool             `json:"connected"`
	Teams          int              `json:"teams"`
	Games          int              `json:"games"`
	Models         int              `json:"models"`
	LastModelTime  time.Time        `json:"last_model_time"`
	TableSizes     map[string]int64 `json:"table_sizes"`
	DatabaseSizeKB int64            `json:"database_size_kb"`
}

// RunStatus represents the status of the retrain run store.
type RunStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int              `json:"total_runs"`
	LastRunID     int64            `json:"last_run_id"`
	LastRunUUID   string           `json:"last_run_uuid"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TotalTrained  int              `json:"total_trained"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}
