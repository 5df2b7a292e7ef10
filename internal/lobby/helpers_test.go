package lobby

import (
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/pokeronline/internal/game"
)

var epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func newMockClock(t *testing.T) *quartz.Mock {
	clock := quartz.NewMock(t)
	clock.Set(epoch)
	return clock
}

func newTestRegistry(t *testing.T, maxTables int, clock quartz.Clock) *Registry {
	t.Helper()
	return NewRegistry(maxTables, WithClock(clock), WithSeed(7), WithLogger(testLogger()))
}

func template(seats int) Template {
	cfg := game.DefaultConfig()
	cfg.MaxSeats = seats
	return Template{Name: "test", Config: cfg, StartingChips: 100}
}
