package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"golfwatch/internal/watch"
)

// Scheduler periodically runs the evaluation cycle.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *watch.Service
	interval  time.Duration
}

// New creates a new Scheduler.
func New(interval time.Duration, service *watch.Service) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		interval:  interval,
	}
}

// Start schedules the periodic cycle and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 60
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		log.Println("scheduler: running evaluation cycle")

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		m, err := s.service.RunCycle(ctx)
		if err != nil {
			log.Printf("scheduler: evaluation cycle failed: %v", err)
			return
		}
		log.Printf("scheduler: evaluation cycle complete: %s", m.Kind)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
