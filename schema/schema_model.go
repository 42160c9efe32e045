package schema

import "time"

// Thresholds are the tunable business thresholds for qualification and fitting.
type Thresholds struct {
	MinMPG         float64 `json:"min_mpg"`
	MinGamesMissed int     `json:"min_games_missed"`
	MinGamesPlayed int     `json:"min_games_played"`
	MinSample      int     `json:"min_sample"`
}

// QualifyingPlayer is a player eligible to be a regression target or predictor.
type QualifyingPlayer struct {
	Player      string  `json:"player"`
	GamesPlayed int     `json:"games_played"`
	GamesMissed int     `json:"games_missed"`
	AvgMinutes  float64 `json:"avg_minutes"`
}

// TeammateCoefficient is the fitted absence effect of one teammate.
type TeammateCoefficient struct {
	Teammate string  `json:"teammate"`
	Delta    float64 `json:"usage_delta"`
	PValue   float64 `json:"p_value"`
}

// ModelFit is the output of one usage regression for a target player.
type ModelFit struct {
	Player          string                `json:"player"`
	Team            string                `json:"team"`
	ModelVersion    string                `json:"model_version"`
	Baseline        float64               `json:"baseline_usage"`
	GamesUsed       int                   `json:"games_used"`
	RSquared        float64               `json:"r_squared"`
	ConditionNumber float64               `json:"condition_number"`
	LowConfidence   bool                  `json:"low_confidence"`
	Dropped         []string              `json:"dropped,omitempty"`
	Coefficients    []TeammateCoefficient `json:"coefficients"`
}

// PlayerModel is a stored model: the fit header plus coefficients by teammate.
type PlayerModel struct {
	Fit          FitRecord                      `json:"fit"`
	Coefficients map[string]TeammateCoefficient `json:"coefficients"`
}

// ModelSummary is a compact listing entry for a stored model.
type ModelSummary struct {
	Player        string    `json:"player"`
	Team          string    `json:"team"`
	ModelVersion  string    `json:"model_version"`
	BaselineUsage float64   `json:"baseline_usage"`
	GamesUsed     int       `json:"games_used"`
	RSquared      float64   `json:"r_squared"`
	Teammates     int       `json:"teammates"`
	LowConfidence bool      `json:"low_confidence"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TrainOutcome is the result of retraining a single target player.
type TrainOutcome struct {
	Team         string        `json:"team"`
	Player       string        `json:"player"`
	Status       OutcomeStatus `json:"status"`
	GamesUsed    int           `json:"games_used"`
	Coefficients int           `json:"coefficients"`
	Message      string        `json:"message,omitempty"`
}

// RetrainSummary aggregates the outcomes of a batch retraining run.
type RetrainSummary struct {
	RunUUID             string         `json:"run_uuid"`
	ModelVersion        string         `json:"model_version"`
	Teams               int            `json:"teams"`
	TotalTargets        int            `json:"total_targets"`
	Trained             int            `json:"trained"`
	Skipped             int            `json:"skipped"`
	Failed              int            `json:"failed"`
	CoefficientsWritten int            `json:"coefficients_written"`
	Elapsed             time.Duration  `json:"elapsed_ns"`
	Outcomes            []TrainOutcome `json:"outcomes"`
}

// AveragePerTarget returns the mean elapsed time per attempted target.
func (s RetrainSummary) AveragePerTarget() time.Duration {
	if s.TotalTargets == 0 {
		return 0
	}
	return s.Elapsed / time.Duration(s.TotalTargets)
}

// PredictRequest asks for a usage prediction under a hypothetical absence set.
type PredictRequest struct {
	Player       string   `json:"player"`
	Team         string   `json:"team"`
	Absent       []string `json:"absent"`
	ModelVersion string   `json:"model_version"`
}

// BreakdownEntry is one absent teammate's contribution to a prediction.
// Known is false when the teammate has no coefficient against the target,
// which is different from a known effect of zero.
type BreakdownEntry struct {
	Teammate  string  `json:"teammate"`
	Delta     float64 `json:"delta"`
	PValue    float64 `json:"p_value"`
	GamesUsed int     `json:"games_used"`
	Known     bool    `json:"known"`
	Note      string  `json:"note,omitempty"`
}

// Prediction is the additive usage prediction for a target player.
type Prediction struct {
	Player         string           `json:"player"`
	Team           string           `json:"team"`
	ModelVersion   string           `json:"model_version"`
	PredictedUsage float64          `json:"predicted_usage"`
	BaselineUsage  float64          `json:"baseline_usage"`
	TotalDelta     float64          `json:"total_delta"`
	Breakdown      []BreakdownEntry `json:"breakdown"`
	Confidence     Confidence       `json:"confidence"`
}

// ImpactResult is one player's usage split with and without an absent teammate.
type ImpactResult struct {
	Rank         int     `json:"rank"`
	Player       string  `json:"player"`
	WithUsage    float64 `json:"with_usage"`
	WithoutUsage float64 `json:"without_usage"`
	ImpactPct    float64 `json:"impact_pct"`
	GamesWith    int     `json:"games_with"`
	GamesWithout int     `json:"games_without"`
}

// BoxScore holds the counting stats the usage proxy is computed from.
type BoxScore struct {
	FGA     float64 `json:"fga"`
	FTA     float64 `json:"fta"`
	TOV     float64 `json:"tov"`
	Minutes float64 `json:"minutes"`
}

// DNPBoxScore is the box score of a did-not-play game.
func DNPBoxScore() BoxScore {
	return BoxScore{}
}
