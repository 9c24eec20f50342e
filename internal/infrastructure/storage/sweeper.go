package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// IdleCartSweeper is implemented by cart stores that need explicit expiry
type IdleCartSweeper interface {
	SweepIdle(ctx context.Context, maxIdle time.Duration) (int, error)
}

// Sweeper periodically removes idle carts on a cron schedule
type Sweeper struct {
	store   IdleCartSweeper
	maxIdle time.Duration
	cron    *cron.Cron
}

// NewSweeper schedules store.SweepIdle according to schedule (standard cron
// syntax or descriptors such as "@every 10m")
func NewSweeper(store IdleCartSweeper, maxIdle time.Duration, schedule string) (*Sweeper, error) {
	if maxIdle <= 0 {
		maxIdle = defaultCartTTL
	}

	s := &Sweeper{
		store:   store,
		maxIdle: maxIdle,
		cron:    cron.New(),
	}

	if _, err := s.cron.AddFunc(schedule, s.runOnce); err != nil {
		return nil, errors.Wrapf(err, "invalid sweep schedule %q", schedule)
	}
	return s, nil
}

func (s *Sweeper) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	removed, err := s.store.SweepIdle(ctx, s.maxIdle)
	if err != nil {
		zap.S().Errorf("cart sweep failed: %v", err)
		return
	}
	if removed > 0 {
		zap.S().Infof("cart sweep removed %d idle carts", removed)
	}
}

// Start begins running the schedule in the background
func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running sweep to finish
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}
