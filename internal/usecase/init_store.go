package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/taskdeck/internal/domain"
)

// InitStoreInput contains the parameters for initializing the data store.
type InitStoreInput struct {
	HomeDir string // Data directory (for display)
}

// InitStoreOutput contains the result of initialization.
type InitStoreOutput struct {
	HomeDir            string
	AlreadyInitialized bool
}

// InitStore creates an empty data set with the default projects.
type InitStore struct {
	storeInit domain.StoreInitializer
	logger    domain.Logger
}

// NewInitStore creates a new InitStore use case.
func NewInitStore(storeInit domain.StoreInitializer, logger domain.Logger) *InitStore {
	return &InitStore{storeInit: storeInit, logger: logger}
}

// Execute initializes the store. Running it on an initialized store
// still calls Initialize so backend metadata gets repaired.
func (uc *InitStore) Execute(_ context.Context, in InitStoreInput) (*InitStoreOutput, error) {
	out := &InitStoreOutput{
		HomeDir:            in.HomeDir,
		AlreadyInitialized: uc.storeInit.IsInitialized(),
	}
	if err := uc.storeInit.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize store: %w", err)
	}
	if !out.AlreadyInitialized {
		uc.logger.Info(0, "init", "initialized "+in.HomeDir)
	}
	return out, nil
}
