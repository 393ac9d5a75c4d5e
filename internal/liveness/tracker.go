package liveness

import (
	"sort"
	"time"
)

// Tracker derives producer liveness from the passive arrival of messages.
// It is not safe for concurrent use; the relay loop owns it.
type Tracker struct {
	window   time.Duration
	lastSeen map[string]time.Time
}

type ProducerStatus struct {
	DeviceID string    `json:"deviceID"`
	Online   bool      `json:"online"`
	LastSeen time.Time `json:"lastSeen"`
}

func NewTracker(window time.Duration) *Tracker {
	return &Tracker{
		window:   window,
		lastSeen: make(map[string]time.Time),
	}
}

// Touch records that producerID was heard from at the given time. An older
// timestamp never moves last-seen backwards.
func (t *Tracker) Touch(producerID string, at time.Time) {
	if seen, ok := t.lastSeen[producerID]; ok && seen.After(at) {
		return
	}
	t.lastSeen[producerID] = at
}

// IsOnline reports whether now - lastSeen < window. Unknown producers are offline.
func (t *Tracker) IsOnline(producerID string, now time.Time) bool {
	seen, ok := t.lastSeen[producerID]
	if !ok {
		return false
	}
	return now.Sub(seen) < t.window
}

func (t *Tracker) LastSeen(producerID string) (time.Time, bool) {
	seen, ok := t.lastSeen[producerID]
	return seen, ok
}

// Producers evaluates every producer heard from since start, sorted by ID.
func (t *Tracker) Producers(now time.Time) []ProducerStatus {
	statuses := make([]ProducerStatus, 0, len(t.lastSeen))
	for id, seen := range t.lastSeen {
		statuses = append(statuses, ProducerStatus{
			DeviceID: id,
			Online:   now.Sub(seen) < t.window,
			LastSeen: seen,
		})
	}
	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].DeviceID < statuses[j].DeviceID
	})
	return statuses
}

// MostRecent returns the producer heard from last, evaluated at now.
func (t *Tracker) MostRecent(now time.Time) (ProducerStatus, bool) {
	var latest ProducerStatus
	found := false
	for id, seen := range t.lastSeen {
		if !found || seen.After(latest.LastSeen) || (seen.Equal(latest.LastSeen) && id < latest.DeviceID) {
			latest = ProducerStatus{DeviceID: id, LastSeen: seen}
			found = true
		}
	}
	if found {
		latest.Online = now.Sub(latest.LastSeen) < t.window
	}
	return latest, found
}
