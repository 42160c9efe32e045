package schema

import (
	"strings"
	"time"
)

// GameDateLayout is the storage and display layout of calendar game dates.
const GameDateLayout = "2006-01-02"

// Game is one team's participation in one NBA game on one calendar date.
type Game struct {
	Team          string    `json:"team"`
	GameDate      time.Time `json:"game_date"`
	GameID        string    `json:"game_id"`
	Opponent      string    `json:"opponent"`
	Home          bool      `json:"home"`
	Result        string    `json:"result"`
	TeamScore     int       `json:"team_score"`
	OpponentScore int       `json:"opponent_score"`
}

// UsageObservation is one row of a player's per-game usage series.
type UsageObservation struct {
	Team     string    `json:"team"`
	Player   string    `json:"player"`
	GameDate time.Time `json:"game_date"`
	Minutes  float64   `json:"minutes"`
	UsagePct float64   `json:"usage_pct"`
}

// PlayerAggregate holds per-player season aggregates used for qualification.
type PlayerAggregate struct {
	Player      string  `json:"player"`
	GamesPlayed int     `json:"games_played"`
	AvgMinutes  float64 `json:"avg_minutes"`
}

// TrainingRow is one game the target played, with teammate absence flags.
type TrainingRow struct {
	GameDate time.Time
	Usage    float64
	Absent   map[string]bool
}

// SplitRow is one game of a player's usage series joined with whether a
// reference teammate played in that game.
type SplitRow struct {
	Player          string
	GameDate        time.Time
	UsagePct        float64
	ReferencePlayed bool
}

// CoefficientRecord represents a row from the usage_model_coefficients table.
type CoefficientRecord struct {
	Player        string    `json:"player"`
	Team          string    `json:"team"`
	Teammate      string    `json:"teammate"`
	ModelVersion  string    `json:"model_version"`
	UsageDelta    float64   `json:"usage_delta"`
	BaselineUsage float64   `json:"baseline_usage"`
	PValue        float64   `json:"p_value"`
	GamesUsed     int       `json:"games_used"`
	RSquared      float64   `json:"r_squared"`
	LowConfidence bool      `json:"low_confidence"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// FitRecord represents a row from the usage_model_fits table.
type FitRecord struct {
	Player          string    `json:"player"`
	Team            string    `json:"team"`
	ModelVersion    string    `json:"model_version"`
	BaselineUsage   float64   `json:"baseline_usage"`
	GamesUsed       int       `json:"games_used"`
	RSquared        float64   `json:"r_squared"`
	ConditionNumber float64   `json:"condition_number"`
	LowConfidence   bool      `json:"low_confidence"`
	Dropped         []string  `json:"dropped,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// RunRecord represents a row from the retrain_runs table.
type RunRecord struct {
	RunID               int64
	RunUUID             string
	StartTime           time.Time
	EndTime             *time.Time
	RunDurationMs       *int32
	TotalTargets        int32
	Trained             int32
	Skipped             int32
	Failed              int32
	CoefficientsWritten int32
	ConfigParams        *string
}

// OutcomeRecord represents a row from the retrain_outcomes table.
type OutcomeRecord struct {
	RunID        int64
	Team         string
	Player       string
	Status       OutcomeStatus
	GamesUsed    int32
	Coefficients int32
	Message      *string
	RecordedAt   time.Time
}

// ParseGameDate parses a calendar game date in GameDateLayout.
func ParseGameDate(s string) (time.Time, error) {
	return time.Parse(GameDateLayout, strings.TrimSpace(s))
}
