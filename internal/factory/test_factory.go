package factory

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/dependencies/mocks"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/model"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/realtime"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/storage/memory"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	MockIDs   *mocks.MockIDGenerator
	Memory    *memory.Storage
}

// NewTestApp creates an App configured for testing with mocked dependencies
// and the default game
func NewTestApp() *TestApp {
	return NewTestAppWithGame(model.DefaultGameConfig())
}

// NewTestAppWithGame creates a test App bound to game
func NewTestAppWithGame(game model.GameConfig) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockIDs := mocks.NewMockIDGenerator()

	app := newWithDependencies(store, mockClock, mockIDs, game, realtime.DefaultConfig(),
		prometheus.NewRegistry(), testutil.NopLogger())

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		MockIDs:   mockIDs,
		Memory:    store,
	}
}
