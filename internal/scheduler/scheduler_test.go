package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/NoahAizen44/SmarterTips/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewRejectsNonPositiveInterval(t *testing.T) {
	_, err := New(context.Background(), 0, nil, quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interval must be positive")
}

func TestRunStartsImmediately(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	ran := make(chan struct{}, 1)
	s, err := New(ctx, time.Hour, func(context.Context) (schema.RetrainSummary, error) {
		calls.Add(1)
		select {
		case ran <- struct{}{}:
		default:
		}
		return schema.RetrainSummary{Trained: 1}, nil
	}, quietLogger())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("retrain job did not run")
	}
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestRunOnceLogsFailures(t *testing.T) {
	s := &Scheduler{logger: quietLogger()}
	called := false
	s.runOnce(context.Background(), func(context.Context) (schema.RetrainSummary, error) {
		called = true
		return schema.RetrainSummary{}, errors.New("store offline")
	})
	assert.True(t, called)
}
