package watch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golfwatch/internal/forecast"
	"golfwatch/internal/notify"
	"golfwatch/internal/reservation"
	"golfwatch/internal/settings"
	"golfwatch/internal/store"
)

type fakeSource struct {
	days []forecast.RawDay
	err  error
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Fetch(ctx context.Context) ([]forecast.RawDay, error) {
	return f.days, f.err
}

type fakeSettingsStore struct {
	rec     settings.Settings
	token   string
	loadErr error
	saveErr error
	saved   []settings.Settings
}

func (f *fakeSettingsStore) Load(ctx context.Context) (settings.Settings, string, error) {
	return f.rec, f.token, f.loadErr
}

func (f *fakeSettingsStore) Save(ctx context.Context, s settings.Settings, token string) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.saved = append(f.saved, s)
	return "next", nil
}

type recordingTransport struct {
	sent []notify.Message
}

func (r *recordingTransport) Name() string { return "recording" }

func (r *recordingTransport) Send(ctx context.Context, msg notify.Message) error {
	r.sent = append(r.sent, msg)
	return nil
}

func rawHorizon(wind map[int]string, sky map[int]string) []forecast.RawDay {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	days := make([]forecast.RawDay, 0, 14)
	for i := 0; i < 14; i++ {
		d := forecast.RawDay{
			Date:          base.AddDate(0, 0, i).Format(forecast.DateLayout),
			Sky:           "clear",
			Precipitation: "0.0",
			Wind:          "2.0",
		}
		if w, ok := wind[i]; ok {
			d.Wind = w
		}
		if s, ok := sky[i]; ok {
			d.Sky = s
		}
		days = append(days, d)
	}
	return days
}

func newTestService(source forecast.Source, settingsStore settings.Store, transport notify.Transport) *Service {
	return NewService(
		source,
		forecast.DefaultRules(),
		store.NewMemoryStore(),
		settingsStore,
		notify.NewDispatcher(transport),
		"Yaita CC",
	)
}

func TestRunCycleAlertsOnUnplayableReservedDay(t *testing.T) {
	source := &fakeSource{days: rawHorizon(map[int]string{3: "6.0"}, nil)}
	settingsStore := &fakeSettingsStore{
		rec:   settings.Settings{ReservedDate: "2026-03-04", Emails: []string{"a@example.com"}},
		token: "1",
	}
	transport := &recordingTransport{}
	svc := newTestService(source, settingsStore, transport)

	m, err := svc.RunCycle(context.Background())
	require.NoError(t, err)
	require.Equal(t, reservation.Matched, m.Kind)
	assert.True(t, m.NeedsAlert())

	require.Len(t, transport.sent, 1)
	msg := transport.sent[0]
	assert.Contains(t, msg.Subject, "2026-03-04")
	assert.Contains(t, msg.Subject, "× unplayable")
	assert.Contains(t, msg.Body, "wind_exceeded")
	assert.Equal(t, []string{"a@example.com"}, msg.Recipients)
}

func TestRunCyclePlayableReservedDayStaysQuiet(t *testing.T) {
	source := &fakeSource{days: rawHorizon(nil, nil)}
	settingsStore := &fakeSettingsStore{
		rec:   settings.Settings{ReservedDate: "2026-03-04", Emails: []string{"a@example.com"}},
		token: "1",
	}
	transport := &recordingTransport{}
	svc := newTestService(source, settingsStore, transport)

	m, err := svc.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, reservation.Matched, m.Kind)
	assert.False(t, m.NeedsAlert())
	assert.Empty(t, transport.sent)
}

func TestRunCycleNoReservation(t *testing.T) {
	source := &fakeSource{days: rawHorizon(nil, nil)}
	settingsStore := &fakeSettingsStore{rec: settings.Settings{Emails: []string{"a@example.com"}}}
	transport := &recordingTransport{}
	svc := newTestService(source, settingsStore, transport)

	m, err := svc.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, reservation.NoReservation, m.Kind)
	assert.Empty(t, transport.sent)
}

func TestRunCycleOutOfHorizon(t *testing.T) {
	source := &fakeSource{days: rawHorizon(nil, nil)}
	settingsStore := &fakeSettingsStore{
		rec: settings.Settings{ReservedDate: "2026-06-01", Emails: []string{"a@example.com"}},
	}
	transport := &recordingTransport{}
	svc := newTestService(source, settingsStore, transport)

	m, err := svc.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, reservation.OutOfHorizon, m.Kind)
	assert.Empty(t, transport.sent)
}

func TestRunCycleFailsClosedOnFetchError(t *testing.T) {
	source := &fakeSource{err: errors.New("upstream down")}
	settingsStore := &fakeSettingsStore{
		rec: settings.Settings{ReservedDate: "2026-03-04", Emails: []string{"a@example.com"}},
	}
	transport := &recordingTransport{}
	svc := newTestService(source, settingsStore, transport)

	_, err := svc.RunCycle(context.Background())
	require.Error(t, err)
	assert.Empty(t, transport.sent, "no notification without data")

	_, err = svc.Latest()
	assert.ErrorIs(t, err, store.ErrNotFound, "no table cached after a failed fetch")
}

func TestCheckReservationRequiresTable(t *testing.T) {
	svc := newTestService(&fakeSource{}, &fakeSettingsStore{}, &recordingTransport{})

	_, err := svc.CheckReservation(context.Background())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRefreshCachesEvaluatedTable(t *testing.T) {
	source := &fakeSource{days: rawHorizon(nil, map[int]string{10: "rain showers"})}
	svc := newTestService(source, &fakeSettingsStore{}, &recordingTransport{})

	table, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, table, 14)
	assert.Equal(t, []string{forecast.ReasonRainText}, table[10].Verdict.Reasons)

	snap, err := svc.Latest()
	require.NoError(t, err)
	assert.Equal(t, table, snap.Table)
	assert.False(t, snap.FetchedAt.IsZero())
}

func TestSendReportDeliversWholeTable(t *testing.T) {
	source := &fakeSource{days: rawHorizon(nil, nil)}
	settingsStore := &fakeSettingsStore{rec: settings.Settings{Emails: []string{"a@example.com"}}}
	transport := &recordingTransport{}
	svc := newTestService(source, settingsStore, transport)

	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	require.NoError(t, svc.SendReport(context.Background()))

	require.Len(t, transport.sent, 1)
	assert.Contains(t, transport.sent[0].Subject, "forecast report")
	assert.Contains(t, transport.sent[0].Body, "2026-03-01 (Sun)")
	assert.Contains(t, transport.sent[0].Body, "2026-03-14 (Sat)")
}

func TestUpdateSettingsNormalizesAndValidates(t *testing.T) {
	settingsStore := &fakeSettingsStore{}
	svc := newTestService(&fakeSource{}, settingsStore, &recordingTransport{})

	rec, token, err := svc.UpdateSettings(context.Background(), settings.Settings{
		ReservedDate: "2026-03-04",
		Emails:       []string{"a@example.com", "a@example.com"},
	}, "1")
	require.NoError(t, err)
	assert.Equal(t, "next", token)
	assert.Equal(t, []string{"a@example.com"}, rec.Emails)

	_, _, err = svc.UpdateSettings(context.Background(), settings.Settings{
		ReservedDate: "bad-date",
		Emails:       []string{"a@example.com"},
	}, "1")
	require.Error(t, err)
	assert.Empty(t, settingsStore.saved[1:], "invalid record never reaches the store")
}

func TestUpdateSettingsPassesThroughConflict(t *testing.T) {
	settingsStore := &fakeSettingsStore{saveErr: settings.ErrConflict}
	svc := newTestService(&fakeSource{}, settingsStore, &recordingTransport{})

	_, _, err := svc.UpdateSettings(context.Background(), settings.Settings{
		Emails: []string{"a@example.com"},
	}, "stale")
	assert.ErrorIs(t, err, settings.ErrConflict)
}
