package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Settings is the part of the session the scheduler reads and updates.
type Settings interface {
	NotificationsEnabled(ctx context.Context) (bool, error)
	OneShotInactivitySent(ctx context.Context) (bool, error)
	MarkOneShotInactivitySent(ctx context.Context) error
}

type Config struct {
	InitialDelay   time.Duration
	RepeatInterval time.Duration
	OneShotDelay   time.Duration
}

func DefaultConfig() Config {
	return Config{
		InitialDelay:   30 * time.Second,
		RepeatInterval: 2 * time.Minute,
		OneShotDelay:   time.Minute,
	}
}

// Scheduler runs the inactivity reminders on a cron runner. At most one
// repeating and one one-shot reminder are scheduled at a time.
type Scheduler struct {
	cron     *cron.Cron
	settings Settings
	notifier Notifier
	cfg      Config
	log      logrus.FieldLogger
	now      func() time.Time

	mu        sync.Mutex
	repeating cron.EntryID
	oneShot   cron.EntryID
}

func NewScheduler(settings Settings, notifier Notifier, cfg Config, log logrus.FieldLogger) *Scheduler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("component", "notify")
	return &Scheduler{
		cron:     cron.New(cron.WithLogger(cron.PrintfLogger(log))),
		settings: settings,
		notifier: notifier,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the runner and waits for running reminders until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// Schedule replaces any pending reminders. Nothing is scheduled while
// notifications are disabled, and the one-shot reminder is skipped once it
// has been sent.
func (s *Scheduler) Schedule(ctx context.Context) error {
	enabled, err := s.settings.NotificationsEnabled(ctx)
	if err != nil {
		return fmt.Errorf("read notification setting: %w", err)
	}
	sent, err := s.settings.OneShotInactivitySent(ctx)
	if err != nil {
		return fmt.Errorf("read one-shot flag: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	if !enabled {
		return nil
	}

	now := s.now()
	s.repeating = s.cron.Schedule(
		repeatingSchedule{first: now.Add(s.cfg.InitialDelay), every: s.cfg.RepeatInterval},
		cron.FuncJob(s.runRepeating),
	)
	if !sent {
		s.oneShot = s.cron.Schedule(
			oneShotSchedule{at: now.Add(s.cfg.OneShotDelay)},
			cron.FuncJob(s.runOneShot),
		)
	}
	s.log.WithField("one_shot", !sent).Debug("Inactivity reminders scheduled")
	return nil
}

// Cancel removes both reminders.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
}

func (s *Scheduler) cancelLocked() {
	if s.repeating != 0 {
		s.cron.Remove(s.repeating)
		s.repeating = 0
	}
	if s.oneShot != 0 {
		s.cron.Remove(s.oneShot)
		s.oneShot = 0
	}
}

func (s *Scheduler) runRepeating() {
	if err := s.notifier.Notify(context.Background(), repeatingNotification); err != nil {
		s.log.WithError(err).Warn("Failed to deliver reminder")
	}
}

func (s *Scheduler) runOneShot() {
	ctx := context.Background()
	sent, err := s.settings.OneShotInactivitySent(ctx)
	if err != nil {
		s.log.WithError(err).Warn("Failed to read one-shot flag")
		return
	}
	if sent {
		return
	}
	if err := s.notifier.Notify(ctx, oneShotNotification); err != nil {
		s.log.WithError(err).Warn("Failed to deliver reminder")
		return
	}
	if err := s.settings.MarkOneShotInactivitySent(ctx); err != nil {
		s.log.WithError(err).Warn("Failed to mark one-shot reminder")
	}
}
