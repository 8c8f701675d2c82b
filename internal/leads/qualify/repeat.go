package qualify

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/summitwebteam/lead-fire-cursor/platform/phone"
)

// HistoryStore records the most recent sighting of each contact identity.
// It is a last-write-wins key-value structure, not an append log. The batch
// classifier uses the in-memory implementation; a live ingestion pipeline can
// inject a transactional store instead, which must make the get-then-put
// sequence atomic.
type HistoryStore interface {
	// LastSeen returns the previous sighting timestamp for an identity key,
	// and whether the identity was seen before.
	LastSeen(ctx context.Context, key string) (time.Time, bool, error)
	// Record overwrites the last-seen timestamp for an identity key.
	Record(ctx context.Context, key string, seenAt time.Time) error
}

// MemoryStore is the in-memory HistoryStore used for single-batch
// classification runs. It is rebuilt from the full lead set each run.
type MemoryStore struct {
	mu   sync.Mutex
	seen map[string]time.Time
}

// NewMemoryStore creates an empty in-memory history store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seen: make(map[string]time.Time)}
}

var _ HistoryStore = (*MemoryStore)(nil)

// LastSeen returns the previous sighting for the key.
func (s *MemoryStore) LastSeen(_ context.Context, key string) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.seen[key]
	return t, ok, nil
}

// Record overwrites the last-seen timestamp for the key.
func (s *MemoryStore) Record(_ context.Context, key string, seenAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[key] = seenAt
	return nil
}

// Observation is the repeat detector's answer for a single lead.
type Observation struct {
	// SeenBefore is true when any identity on the lead was contacted earlier.
	SeenBefore bool
	// DaysSince is the whole days elapsed since the most recent prior
	// sighting across the lead's identities. Only meaningful when SeenBefore.
	DaysSince int
}

// Detector checks lead identities against a HistoryStore.
type Detector struct {
	store HistoryStore
}

// NewDetector creates a repeat detector over the given store.
func NewDetector(store HistoryStore) *Detector {
	return &Detector{store: store}
}

// PhoneKey normalizes a phone identity for history lookups. Returns "" when
// the identity is absent.
func PhoneKey(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return "phone:" + phone.NormalizeE164(trimmed)
}

// EmailKey normalizes an email identity for history lookups. Returns "" when
// the identity is absent.
func EmailKey(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return ""
	}
	return "email:" + trimmed
}

// Observe checks the phone and email identities independently against the
// store and then records the current sighting for every identity present.
// The sighting is always recorded, even when the lead will not qualify, so a
// chain of contacts inherits the most recent sighting rather than the first.
// Absent identities are skipped entirely.
func (d *Detector) Observe(ctx context.Context, phoneRaw, emailRaw string, seenAt time.Time) (Observation, error) {
	var obs Observation

	for _, key := range []string{PhoneKey(phoneRaw), EmailKey(emailRaw)} {
		if key == "" {
			continue
		}
		last, ok, err := d.store.LastSeen(ctx, key)
		if err != nil {
			return Observation{}, err
		}
		if ok {
			days := wholeDaysBetween(last, seenAt)
			if !obs.SeenBefore || days < obs.DaysSince {
				obs.DaysSince = days
			}
			obs.SeenBefore = true
		}
		if err := d.store.Record(ctx, key, seenAt); err != nil {
			return Observation{}, err
		}
	}

	return obs, nil
}

// wholeDaysBetween returns the number of whole days from earlier to later.
func wholeDaysBetween(earlier, later time.Time) int {
	diff := later.Sub(earlier)
	if diff < 0 {
		diff = -diff
	}
	return int(diff.Hours() / 24)
}
