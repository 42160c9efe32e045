package core

import (
	"errors"
	"fmt"
)

// InsufficientDataError reports a target with too few played games to fit.
// It is absorbed by the trainer and counted as a skip.
type InsufficientDataError struct {
	Player   string
	Games    int
	Required int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s: %d games, need %d", e.Player, e.Games, e.Required)
}

// AsInsufficientData reports whether err wraps an InsufficientDataError.
func AsInsufficientData(err error) (*InsufficientDataError, bool) {
	var ie *InsufficientDataError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}

// NoModelFoundError reports a prediction request for a target without a stored model.
type NoModelFoundError struct {
	Player       string
	Team         string
	ModelVersion string
}

func (e *NoModelFoundError) Error() string {
	if e.Team != "" {
		return fmt.Sprintf("no model found for %s (%s) at version %s", e.Player, e.Team, e.ModelVersion)
	}
	return fmt.Sprintf("no model found for %s at version %s", e.Player, e.ModelVersion)
}

// AsNoModelFound reports whether err wraps a NoModelFoundError.
func AsNoModelFound(err error) (*NoModelFoundError, bool) {
	var ne *NoModelFoundError
	if errors.As(err, &ne) {
		return ne, true
	}
	return nil, false
}
