package metrics

// Attribute keys attached to retrain instruments.
const (
	AttrTeam    = "team"
	AttrOutcome = "outcome"
	AttrVersion = "model_version"
)
