package errorhandler

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"neo/pkg/neoerrors"
)

var (
	errorTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	suggestionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

// Handler is the process-wide failure coordinator. One instance is
// constructed at startup and injected wherever unrecoverable failures
// surface.
type Handler struct {
	logger     *log.Logger
	out        io.Writer
	strategies []RecoveryStrategy
	exit       func(code int)
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithOutput redirects the user-facing report (default os.Stderr).
func WithOutput(w io.Writer) HandlerOption {
	return func(h *Handler) { h.out = w }
}

// WithExitFunc replaces process termination, for tests.
func WithExitFunc(exit func(code int)) HandlerOption {
	return func(h *Handler) { h.exit = exit }
}

// NewHandler creates a handler with no registered strategies.
func NewHandler(logger *log.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		logger: logger,
		out:    os.Stderr,
		exit:   os.Exit,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterStrategy appends a recovery strategy. Strategies are tried in
// registration order.
func (h *Handler) RegisterStrategy(s RecoveryStrategy) {
	h.strategies = append(h.strategies, s)
}

// Handle normalizes any failure value (an *AppError, a plain error, or a
// raw string) into the taxonomy, prints its report, and tries each
// registered strategy in order. The first strategy whose CanRecover returns
// true has its Recover invoked; if that succeeds, handling stops without
// terminating the process. If every eligible strategy fails, or none is
// eligible, the process terminates with exit status 1.
func (h *Handler) Handle(ctx context.Context, failure any) {
	appErr := neoerrors.Normalize(failure)

	h.logger.Error("Unhandled failure", "code", appErr.Code, "category", appErr.Category, "severity", appErr.Severity)
	fmt.Fprintln(h.out, errorTitleStyle.Render("Error: ")+appErr.UserMessage())
	h.logger.Debug(appErr.Report())

	for _, strategy := range h.strategies {
		if !strategy.CanRecover(appErr) {
			continue
		}
		h.logger.Info("Attempting recovery", "code", appErr.Code)
		if err := strategy.Recover(ctx, appErr); err != nil {
			h.logger.Warn("Recovery attempt failed", "code", appErr.Code, "error", err)
			continue
		}
		h.logger.Info("Recovered", "code", appErr.Code)
		return
	}

	h.exit(1)
}

// HandleCommandResult implements the same contract at single-command
// granularity: a failure result prints the error's message and suggestions
// and terminates with exit status 1; a success is a no-op.
func (h *Handler) HandleCommandResult(result neoerrors.Result[neoerrors.Unit]) {
	if result.IsSuccess() {
		return
	}

	appErr := result.Err()
	fmt.Fprintln(h.out, errorTitleStyle.Render("Error: ")+appErr.Message)
	for _, s := range appErr.Suggestions {
		fmt.Fprintln(h.out, suggestionStyle.Render("  - "+s))
	}
	h.exit(1)
}
