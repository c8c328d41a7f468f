package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golfwatch/internal/forecast"
)

// ErrConflict is returned by Save when the caller's token is stale: someone
// else wrote the record since it was loaded. The caller must reload and
// retry; the store never silently overwrites concurrent changes.
var ErrConflict = errors.New("settings: conflicting update")

// Settings is the persisted reservation record. ReservedDate is empty when
// no reservation is set. The JSON shape matches the settings.json the course
// tooling has always used.
type Settings struct {
	ReservedDate string   `json:"reserved_date"`
	Emails       []string `json:"emails"`
}

// Store owns durability of the reservation record. Load returns the record
// plus an opaque conflict token; Save fails with ErrConflict when the token
// is stale and otherwise returns the successor token. The record is never
// deleted, only overwritten.
type Store interface {
	Load(ctx context.Context) (Settings, string, error)
	Save(ctx context.Context, s Settings, token string) (string, error)
}

// Default returns the record used when nothing has been persisted yet.
func Default(recipient string) Settings {
	s := Settings{Emails: []string{}}
	if recipient != "" {
		s.Emails = []string{recipient}
	}
	return s
}

// Normalize trims recipients and removes duplicates while preserving
// first-seen order, so repeated saves of the same logical record are
// byte-identical.
func (s Settings) Normalize() Settings {
	out := Settings{
		ReservedDate: strings.TrimSpace(s.ReservedDate),
		Emails:       make([]string, 0, len(s.Emails)),
	}
	seen := make(map[string]bool, len(s.Emails))
	for _, e := range s.Emails {
		e = strings.TrimSpace(e)
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		out.Emails = append(out.Emails, e)
	}
	return out
}

// ReservedDay parses the reserved date. ok is false when no reservation is
// set; a malformed date is an error, not an absent reservation.
func (s Settings) ReservedDay() (time.Time, bool, error) {
	d := strings.TrimSpace(s.ReservedDate)
	if d == "" {
		return time.Time{}, false, nil
	}
	t, err := time.ParseInLocation(forecast.DateLayout, d, time.UTC)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("settings: invalid reserved_date %q: %w", d, err)
	}
	return t, true, nil
}
