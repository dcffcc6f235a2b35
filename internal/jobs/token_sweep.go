package jobs

import (
	"context"

	"github.com/yungbote/skillquest-backend/internal/services"
)

const TaskTokenSweep = "token_sweep"

// RegisterTokenSweep schedules deletion of expired user tokens.
func RegisterTokenSweep(s *Scheduler, spec string, sweeper services.TokenSweeper) error {
	return s.Register(TaskTokenSweep, spec, func(ctx context.Context) error {
		_, err := sweeper.Sweep(ctx)
		return err
	})
}
