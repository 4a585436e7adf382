package scheduler

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Throttle выдерживает минимальный интервал между операциями. Первая
// операция проходит сразу.
type Throttle struct {
	lim *rate.Limiter
}

func NewThrottle(spacing time.Duration) *Throttle {
	limit := rate.Inf
	if spacing > 0 {
		limit = rate.Every(spacing)
	}
	return &Throttle{lim: rate.NewLimiter(limit, 1)}
}

func (t *Throttle) Wait(ctx context.Context) error {
	return t.lim.Wait(ctx)
}
