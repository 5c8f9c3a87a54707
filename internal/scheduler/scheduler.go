package scheduler

import (
	"context"
	"log"
	"time"
)

type ArticleSweeper interface {
	Sweep(now time.Time) (int, error)
}

// Scheduler drives the article lifecycle independently of requests: on a
// fixed interval it asks the store to apply the publish/unpublish
// transitions that have come due.
type Scheduler struct {
	articles ArticleSweeper

	sweepInterval time.Duration
}

func New(articles ArticleSweeper, sweepInterval time.Duration) *Scheduler {
	return &Scheduler{
		articles:      articles,
		sweepInterval: sweepInterval,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	if err := s.Sweep(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.Sweep(); err != nil {
				return err
			}
		}
	}
}

func (s *Scheduler) Sweep() error {
	flipped, err := s.articles.Sweep(time.Now().UTC())
	if err != nil {
		return err
	}
	if flipped > 0 {
		log.Printf("[INFO] lifecycle sweep applied %d transition(s)", flipped)
	}
	return nil
}
