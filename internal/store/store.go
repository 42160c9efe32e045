// Package store persists league data, fitted usage models and retrain runs
// across SQLite, MySQL and PostgreSQL.
package store

import (
	"sync"

	"github.com/NoahAizen44/SmarterTips/internal/contract"
)

// StoreManager holds the store instances built at startup.
type StoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	league       contract.LeagueStore
	coefficients contract.CoefficientStore
	runs         contract.RunStore
}

var _ contract.StoreManager = &StoreManager{} // Compile-time check

// NewStoreManager wraps already constructed stores. Any of them may be nil.
func NewStoreManager(league contract.LeagueStore, coefficients contract.CoefficientStore, runs contract.RunStore) *StoreManager {
	return &StoreManager{league: league, coefficients: coefficients, runs: runs}
}

// GetLeagueStore returns the league store.
func (mgr *StoreManager) GetLeagueStore() contract.LeagueStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.league
}

// GetCoefficientStore returns the coefficient store.
func (mgr *StoreManager) GetCoefficientStore() contract.CoefficientStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.coefficients
}

// GetRunStore returns the run store, or nil when run tracking is disabled.
func (mgr *StoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}
