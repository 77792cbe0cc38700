package tui

import (
	"context"
	"fmt"

	"github.com/andresuchdata/reorder-dashboard/internal/dashboard"
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the terminal dashboard and blocks until the user quits or ctx
// ends. Log output must already point away from the terminal.
func Run(ctx context.Context, ctrl *dashboard.Controller) error {
	updates := make(chan dashboard.State, 32)
	unsubscribe := ctrl.Subscribe(func(s dashboard.State) {
		select {
		case updates <- s:
		default:
		}
	})
	defer unsubscribe()

	p := tea.NewProgram(New(ctx, ctrl, updates), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("terminal dashboard: %w", err)
	}
	return nil
}
