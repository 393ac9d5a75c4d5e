package liveness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const window = 8 * time.Second

func TestTracker_StalenessBoundary(t *testing.T) {
	tracker := NewTracker(window)
	seen := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tracker.Touch("ESP32MedBox001", seen)

	assert.True(t, tracker.IsOnline("ESP32MedBox001", seen))
	assert.True(t, tracker.IsOnline("ESP32MedBox001", seen.Add(window-time.Millisecond)))
	assert.False(t, tracker.IsOnline("ESP32MedBox001", seen.Add(window)))
	assert.False(t, tracker.IsOnline("ESP32MedBox001", seen.Add(window+time.Millisecond)))
}

func TestTracker_NeverSeenIsOffline(t *testing.T) {
	tracker := NewTracker(window)
	assert.False(t, tracker.IsOnline("ghost", time.Now()))

	_, ok := tracker.LastSeen("ghost")
	assert.False(t, ok)
}

func TestTracker_TouchRefreshesAndNeverRewinds(t *testing.T) {
	tracker := NewTracker(window)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tracker.Touch("box", base)
	tracker.Touch("box", base.Add(5*time.Second))
	assert.True(t, tracker.IsOnline("box", base.Add(12*time.Second)))

	tracker.Touch("box", base)
	seen, ok := tracker.LastSeen("box")
	require.True(t, ok)
	assert.Equal(t, base.Add(5*time.Second), seen)
}

func TestTracker_Producers(t *testing.T) {
	tracker := NewTracker(window)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tracker.Touch("b", base)
	tracker.Touch("a", base.Add(6*time.Second))

	producers := tracker.Producers(base.Add(9 * time.Second))
	require.Len(t, producers, 2)
	assert.Equal(t, "a", producers[0].DeviceID)
	assert.True(t, producers[0].Online)
	assert.Equal(t, "b", producers[1].DeviceID)
	assert.False(t, producers[1].Online)
	assert.Equal(t, base, producers[1].LastSeen)
}

func TestTracker_MostRecent(t *testing.T) {
	tracker := NewTracker(window)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, ok := tracker.MostRecent(base)
	assert.False(t, ok)

	tracker.Touch("Cabinet-7", base.Add(3*time.Second))
	tracker.Touch("ESP32MedBox001", base)

	latest, ok := tracker.MostRecent(base.Add(4 * time.Second))
	require.True(t, ok)
	assert.Equal(t, "Cabinet-7", latest.DeviceID)
	assert.True(t, latest.Online)

	latest, _ = tracker.MostRecent(base.Add(3*time.Second + window))
	assert.Equal(t, "Cabinet-7", latest.DeviceID)
	assert.False(t, latest.Online)
}
