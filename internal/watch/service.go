package watch

import (
	"context"
	"fmt"
	"log"
	"time"

	"golfwatch/internal/forecast"
	"golfwatch/internal/notify"
	"golfwatch/internal/reservation"
	"golfwatch/internal/settings"
	"golfwatch/internal/store"
)

// Service runs the evaluation cycle: refresh the forecast, match the
// persisted reserved date against it, and alert recipients when that day is
// unplayable.
type Service struct {
	source     forecast.Source
	rules      forecast.Rules
	store      *store.MemoryStore
	settings   settings.Store
	dispatcher *notify.Dispatcher
	courseName string
	now        func() time.Time
}

func NewService(
	source forecast.Source,
	rules forecast.Rules,
	st *store.MemoryStore,
	settingsStore settings.Store,
	dispatcher *notify.Dispatcher,
	courseName string,
) *Service {
	return &Service{
		source:     source,
		rules:      rules,
		store:      st,
		settings:   settingsStore,
		dispatcher: dispatcher,
		courseName: courseName,
		now:        time.Now,
	}
}

// Refresh fetches the raw horizon and replaces the cached table. Any
// upstream failure leaves the cache untouched and aborts the cycle: a
// verdict is never derived from absent data.
func (s *Service) Refresh(ctx context.Context) (forecast.Table, error) {
	raw, err := s.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch forecast from %s: %w", s.source.Name(), err)
	}

	table, err := s.rules.BuildTable(raw)
	if err != nil {
		return nil, fmt.Errorf("build forecast table: %w", err)
	}

	s.store.SaveTable(table, s.now().UTC())
	return table, nil
}

// Latest returns the cached snapshot.
func (s *Service) Latest() (store.Snapshot, error) {
	return s.store.Latest()
}

// CheckReservation matches the persisted reserved date against the cached
// table and dispatches an alert when the matched day is unplayable. The
// match is always returned; a dispatch failure comes back alongside it so
// callers can log it without losing the verdict.
func (s *Service) CheckReservation(ctx context.Context) (reservation.Match, error) {
	snap, err := s.store.Latest()
	if err != nil {
		return reservation.Match{}, err
	}

	rec, _, err := s.settings.Load(ctx)
	if err != nil {
		return reservation.Match{}, fmt.Errorf("load settings: %w", err)
	}

	reserved, ok, err := rec.ReservedDay()
	if err != nil {
		return reservation.Match{}, err
	}

	m := reservation.MatchDate(snap.Table, reserved, ok)
	switch m.Kind {
	case reservation.NoReservation:
		log.Println("watch: no reserved date set")
	case reservation.OutOfHorizon:
		log.Printf("watch: reserved date %s is outside the %d-day horizon", rec.ReservedDate, s.rules.HorizonDays)
	case reservation.Matched:
		log.Printf("watch: reserved date %s evaluated: %s (%s)",
			rec.ReservedDate, m.Day.Verdict.Glyph(), m.Day.Verdict.ReasonText())
		if m.NeedsAlert() {
			subject, body := notify.FormatReservationAlert(s.courseName, m.Day)
			if err := s.dispatcher.Send(ctx, notify.Message{
				Subject:    subject,
				Body:       body,
				Recipients: rec.Emails,
			}); err != nil {
				return m, fmt.Errorf("dispatch alert: %w", err)
			}
		}
	}

	return m, nil
}

// RunCycle refreshes the forecast and then checks the reservation.
func (s *Service) RunCycle(ctx context.Context) (reservation.Match, error) {
	if _, err := s.Refresh(ctx); err != nil {
		return reservation.Match{}, err
	}
	return s.CheckReservation(ctx)
}

// SendReport mails the whole evaluated table to the recipient list.
func (s *Service) SendReport(ctx context.Context) error {
	snap, err := s.store.Latest()
	if err != nil {
		return err
	}

	rec, _, err := s.settings.Load(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	subject, body := notify.FormatTableReport(s.courseName, snap.Table)
	return s.dispatcher.Send(ctx, notify.Message{
		Subject:    subject,
		Body:       body,
		Recipients: rec.Emails,
	})
}

// Settings returns the persisted record and its conflict token.
func (s *Service) Settings(ctx context.Context) (settings.Settings, string, error) {
	return s.settings.Load(ctx)
}

// UpdateSettings validates and persists a new record. The caller's token
// must be current; settings.ErrConflict is passed through for stale writes.
func (s *Service) UpdateSettings(ctx context.Context, rec settings.Settings, token string) (settings.Settings, string, error) {
	rec = rec.Normalize()
	if _, _, err := rec.ReservedDay(); err != nil {
		return settings.Settings{}, "", err
	}

	newToken, err := s.settings.Save(ctx, rec, token)
	if err != nil {
		return settings.Settings{}, "", err
	}
	return rec, newToken, nil
}
