package services

import (
	"context"
	"fmt"

	"github.com/yungbote/skillquest-backend/internal/data/repos"
	"github.com/yungbote/skillquest-backend/internal/observability"
	"github.com/yungbote/skillquest-backend/internal/platform/dbctx"
	"github.com/yungbote/skillquest-backend/internal/platform/logger"
)

// TokenSweeper removes user_token rows whose refresh window has passed.
type TokenSweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

type tokenSweeper struct {
	log           *logger.Logger
	userTokenRepo repos.UserTokenRepo
	metrics       *observability.Metrics
	clock         Clock
}

func NewTokenSweeper(log *logger.Logger, userTokenRepo repos.UserTokenRepo, metrics *observability.Metrics, clock Clock) TokenSweeper {
	return &tokenSweeper{
		log:           log.With("service", "TokenSweeper"),
		userTokenRepo: userTokenRepo,
		metrics:       metrics,
		clock:         clockOrSystem(clock),
	}
}

func (ts *tokenSweeper) Sweep(ctx context.Context) (int64, error) {
	n, err := ts.userTokenRepo.DeleteExpired(dbctx.Context{Ctx: ctx}, ts.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("delete expired tokens: %w", err)
	}
	ts.metrics.AddTokensSwept(n)
	if n > 0 {
		ts.log.Info("Expired user tokens removed", "count", n)
	}
	return n, nil
}
