package runner

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Interceptor can veto a command before it runs. It returns true if the
// command should proceed.
type Interceptor func(ctx context.Context, cmd Command, snap *domain.Snapshot) (bool, error)

// MultiInterceptor chains interceptors; the first veto wins.
func MultiInterceptor(interceptors ...Interceptor) Interceptor {
	return func(ctx context.Context, cmd Command, snap *domain.Snapshot) (bool, error) {
		for _, interceptor := range interceptors {
			allowed, err := interceptor(ctx, cmd, snap)
			if err != nil || !allowed {
				return false, err
			}
		}
		return true, nil
	}
}

// ConfirmationMiddleware asks the player before destructive commands.
func ConfirmationMiddleware(handler IOHandler) Interceptor {
	return func(ctx context.Context, cmd Command, snap *domain.Snapshot) (bool, error) {
		if !cmd.Destructive() {
			return true, nil
		}

		target := cmd.Args[0]
		for _, s := range snap.Steps {
			if s.ID == target {
				target = fmt.Sprintf("%q (%s)", s.Title, s.ID)
				break
			}
		}
		if err := handler.SystemOutput(ctx, fmt.Sprintf("Delete step %s? [y/N]", target)); err != nil {
			return false, err
		}

		input, err := handler.Input(ctx)
		if err != nil {
			return false, err
		}
		input = strings.TrimSpace(strings.ToLower(input))
		return input == "y" || input == "yes", nil
	}
}

// AutoApproveMiddleware allows everything.
func AutoApproveMiddleware() Interceptor {
	return func(ctx context.Context, cmd Command, snap *domain.Snapshot) (bool, error) {
		return true, nil
	}
}
