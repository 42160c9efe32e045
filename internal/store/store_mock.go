package store

import (
	"context"
	"time"

	"github.com/NoahAizen44/SmarterTips/internal/contract"
	"github.com/NoahAizen44/SmarterTips/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetLeagueStore implements the StoreManager interface.
func (m *MockStoreManager) GetLeagueStore() contract.LeagueStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.LeagueStore)
	return store
}

// GetCoefficientStore implements the StoreManager interface.
func (m *MockStoreManager) GetCoefficientStore() contract.CoefficientStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.CoefficientStore)
	return store
}

// GetRunStore implements the StoreManager interface.
func (m *MockStoreManager) GetRunStore() contract.RunStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.RunStore)
	return store
}

// MockLeagueStore is a mock implementation of LeagueStore for testing.
type MockLeagueStore struct {
	mock.Mock
}

var _ contract.LeagueStore = &MockLeagueStore{} // Compile-time check

// UpsertGame implements the LeagueStore interface.
func (m *MockLeagueStore) UpsertGame(ctx context.Context, game schema.Game) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

// RecordParticipation implements the LeagueStore interface.
func (m *MockLeagueStore) RecordParticipation(ctx context.Context, team, player string, date time.Time, played bool) error {
	args := m.Called(ctx, team, player, date, played)
	return args.Error(0)
}

// UpsertUsage implements the LeagueStore interface.
func (m *MockLeagueStore) UpsertUsage(ctx context.Context, obs schema.UsageObservation) error {
	args := m.Called(ctx, obs)
	return args.Error(0)
}

// CountTeamGames implements the LeagueStore interface.
func (m *MockLeagueStore) CountTeamGames(ctx context.Context, team string) (int, error) {
	args := m.Called(ctx, team)
	return args.Int(0), args.Error(1)
}

// GetPlayerAggregates implements the LeagueStore interface.
func (m *MockLeagueStore) GetPlayerAggregates(ctx context.Context, team string) ([]schema.PlayerAggregate, error) {
	args := m.Called(ctx, team)
	aggs, _ := args.Get(0).([]schema.PlayerAggregate)
	return aggs, args.Error(1)
}

// GetTrainingRows implements the LeagueStore interface.
func (m *MockLeagueStore) GetTrainingRows(ctx context.Context, team, target string, teammates []string) ([]schema.TrainingRow, error) {
	args := m.Called(ctx, team, target, teammates)
	rows, _ := args.Get(0).([]schema.TrainingRow)
	return rows, args.Error(1)
}

// GetUsageSplits implements the LeagueStore interface.
func (m *MockLeagueStore) GetUsageSplits(ctx context.Context, team, reference string) ([]schema.SplitRow, error) {
	args := m.Called(ctx, team, reference)
	rows, _ := args.Get(0).([]schema.SplitRow)
	return rows, args.Error(1)
}

// ListTeams implements the LeagueStore interface.
func (m *MockLeagueStore) ListTeams(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	teams, _ := args.Get(0).([]string)
	return teams, args.Error(1)
}

// GetStatus implements the LeagueStore interface.
func (m *MockLeagueStore) GetStatus() (schema.StoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Close implements the LeagueStore interface.
func (m *MockLeagueStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockCoefficientStore is a mock implementation of CoefficientStore for testing.
type MockCoefficientStore struct {
	mock.Mock
}

var _ contract.CoefficientStore = &MockCoefficientStore{} // Compile-time check

// Upsert implements the CoefficientStore interface.
func (m *MockCoefficientStore) Upsert(ctx context.Context, rec schema.CoefficientRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

// ReplaceAllForTarget implements the CoefficientStore interface.
func (m *MockCoefficientStore) ReplaceAllForTarget(ctx context.Context, fit schema.ModelFit) error {
	args := m.Called(ctx, fit)
	return args.Error(0)
}

// Get implements the CoefficientStore interface.
func (m *MockCoefficientStore) Get(ctx context.Context, target, version string) (schema.PlayerModel, error) {
	args := m.Called(ctx, target, version)
	return args.Get(0).(schema.PlayerModel), args.Error(1)
}

// LatestVersion implements the CoefficientStore interface.
func (m *MockCoefficientStore) LatestVersion(ctx context.Context, target string) (string, error) {
	args := m.Called(ctx, target)
	return args.String(0), args.Error(1)
}

// ListModels implements the CoefficientStore interface.
func (m *MockCoefficientStore) ListModels(ctx context.Context, team string) ([]schema.ModelSummary, error) {
	args := m.Called(ctx, team)
	models, _ := args.Get(0).([]schema.ModelSummary)
	return models, args.Error(1)
}

// GetAllFits implements the CoefficientStore interface.
func (m *MockCoefficientStore) GetAllFits(ctx context.Context) ([]schema.FitRecord, error) {
	args := m.Called(ctx)
	fits, _ := args.Get(0).([]schema.FitRecord)
	return fits, args.Error(1)
}

// GetAllCoefficients implements the CoefficientStore interface.
func (m *MockCoefficientStore) GetAllCoefficients(ctx context.Context) ([]schema.CoefficientRecord, error) {
	args := m.Called(ctx)
	recs, _ := args.Get(0).([]schema.CoefficientRecord)
	return recs, args.Error(1)
}

// GetStatus implements the CoefficientStore interface.
func (m *MockCoefficientStore) GetStatus() (schema.StoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Close implements the CoefficientStore interface.
func (m *MockCoefficientStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockRunStore is a mock implementation of RunStore for testing.
type MockRunStore struct {
	mock.Mock
}

var _ contract.RunStore = &MockRunStore{} // Compile-time check

// BeginRun implements the RunStore interface.
func (m *MockRunStore) BeginRun(startTime time.Time, configParams map[string]any) (int64, string, error) {
	args := m.Called(startTime, configParams)
	return args.Get(0).(int64), args.String(1), args.Error(2)
}

// EndRun implements the RunStore interface.
func (m *MockRunStore) EndRun(runID int64, endTime time.Time, summary schema.RetrainSummary) error {
	args := m.Called(runID, endTime, summary)
	return args.Error(0)
}

// RecordOutcome implements the RunStore interface.
func (m *MockRunStore) RecordOutcome(runID int64, outcome schema.TrainOutcome) error {
	args := m.Called(runID, outcome)
	return args.Error(0)
}

// GetStatus implements the RunStore interface.
func (m *MockRunStore) GetStatus() (schema.RunStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.RunStatus), args.Error(1)
}

// GetAllRuns implements the RunStore interface.
func (m *MockRunStore) GetAllRuns() ([]schema.RunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.RunRecord)
	return runs, args.Error(1)
}

// GetAllOutcomes implements the RunStore interface.
func (m *MockRunStore) GetAllOutcomes() ([]schema.OutcomeRecord, error) {
	args := m.Called()
	outcomes, _ := args.Get(0).([]schema.OutcomeRecord)
	return outcomes, args.Error(1)
}

// Close implements the RunStore interface.
func (m *MockRunStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
