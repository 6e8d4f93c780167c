package errorhandler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neo/pkg/neoerrors"
)

// stubStrategy scripts CanRecover/Recover outcomes for handler tests.
type stubStrategy struct {
	eligible   bool
	recoverErr error
	attempted  bool
}

func (s *stubStrategy) CanRecover(_ *neoerrors.AppError) bool {
	return s.eligible
}

func (s *stubStrategy) Recover(_ context.Context, _ *neoerrors.AppError) error {
	s.attempted = true
	return s.recoverErr
}

func newTestHandler(out io.Writer, exit func(int)) *Handler {
	return NewHandler(log.New(io.Discard), WithOutput(out), WithExitFunc(exit))
}

func TestHandler_ExitsWhenNoStrategyRegistered(t *testing.T) {
	var buf bytes.Buffer
	exitCode := -1
	h := newTestHandler(&buf, func(code int) { exitCode = code })

	h.Handle(context.Background(), neoerrors.NewCommandError("sync", "sync failed"))

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, buf.String(), "sync failed")
}

func TestHandler_RecoveryStopsTermination(t *testing.T) {
	exitCode := -1
	h := newTestHandler(io.Discard, func(code int) { exitCode = code })

	strategy := &stubStrategy{eligible: true}
	h.RegisterStrategy(strategy)

	h.Handle(context.Background(), neoerrors.NewNetworkError("https://x", 0, "timeout"))

	assert.True(t, strategy.attempted)
	assert.Equal(t, -1, exitCode, "successful recovery must not terminate")
}

func TestHandler_TriesStrategiesInOrder(t *testing.T) {
	exitCode := -1
	h := newTestHandler(io.Discard, func(code int) { exitCode = code })

	skipped := &stubStrategy{eligible: false}
	failing := &stubStrategy{eligible: true, recoverErr: errors.New("still down")}
	succeeding := &stubStrategy{eligible: true}
	h.RegisterStrategy(skipped)
	h.RegisterStrategy(failing)
	h.RegisterStrategy(succeeding)

	h.Handle(context.Background(), neoerrors.NewNetworkError("https://x", 0, "timeout"))

	assert.False(t, skipped.attempted, "ineligible strategies are not attempted")
	assert.True(t, failing.attempted)
	assert.True(t, succeeding.attempted, "a failed recovery falls through to the next strategy")
	assert.Equal(t, -1, exitCode)
}

func TestHandler_ExitsWhenEveryStrategyFails(t *testing.T) {
	exitCode := -1
	h := newTestHandler(io.Discard, func(code int) { exitCode = code })

	h.RegisterStrategy(&stubStrategy{eligible: true, recoverErr: errors.New("no luck")})

	h.Handle(context.Background(), neoerrors.NewNetworkError("https://x", 0, "timeout"))
	assert.Equal(t, 1, exitCode)
}

func TestHandler_NormalizesArbitraryFailures(t *testing.T) {
	var buf bytes.Buffer
	exits := 0
	h := newTestHandler(&buf, func(int) { exits++ })

	h.Handle(context.Background(), "raw string panic")
	h.Handle(context.Background(), errors.New("plain error"))

	assert.Equal(t, 2, exits)
	assert.Contains(t, buf.String(), "raw string panic")
	assert.Contains(t, buf.String(), "plain error")
}

func TestHandler_HandleCommandResult(t *testing.T) {
	t.Run("success is a no-op", func(t *testing.T) {
		h := newTestHandler(io.Discard, func(int) { t.Fatal("must not exit on success") })
		h.HandleCommandResult(neoerrors.OkUnit())
	})

	t.Run("failure prints message and suggestions then exits 1", func(t *testing.T) {
		var buf bytes.Buffer
		exitCode := -1
		h := newTestHandler(&buf, func(code int) { exitCode = code })

		err := neoerrors.NewCommandError("pr", "pr creation failed", "Check the remote")
		h.HandleCommandResult(neoerrors.Fail[neoerrors.Unit](err))

		require.Equal(t, 1, exitCode)
		assert.Contains(t, buf.String(), "pr creation failed")
		assert.Contains(t, buf.String(), "Check the remote")
	})
}
