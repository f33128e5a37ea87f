package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestIsAliveBoundary(t *testing.T) {
	cutoff := 10 * time.Minute
	now := epoch

	atCutoff := Record{UpdatedAt: now.Add(-cutoff)}
	assert.False(t, IsAlive(atCutoff, now, cutoff), "exactly cutoff old is stale")

	justInside := Record{UpdatedAt: now.Add(-cutoff + time.Nanosecond)}
	assert.True(t, IsAlive(justInside, now, cutoff))

	justInsideSecond := Record{UpdatedAt: now.Add(-cutoff + time.Second)}
	assert.True(t, IsAlive(justInsideSecond, now, cutoff))

	fromFuture := Record{UpdatedAt: now.Add(time.Minute)}
	assert.True(t, IsAlive(fromFuture, now, cutoff))
}

func TestIsAliveDisabledCutoff(t *testing.T) {
	ancient := Record{UpdatedAt: epoch.Add(-24 * 365 * time.Hour)}
	assert.True(t, IsAlive(ancient, epoch, 0))
}

func TestPartition(t *testing.T) {
	s := Sessions{
		"fresh": {UpdatedAt: epoch.Add(-time.Second)},
		"old":   {UpdatedAt: epoch.Add(-2 * time.Hour)},
	}
	alive, stale := Partition(s, epoch, time.Hour)

	assert.Equal(t, []string{"fresh"}, keys(alive))
	assert.Equal(t, []string{"old"}, keys(stale))
	assert.Len(t, s, 2, "input must not be modified")
}

func TestPruneStale(t *testing.T) {
	prune := PruneStale(epoch, time.Hour)

	got := prune(Sessions{
		"fresh": {UpdatedAt: epoch.Add(-time.Minute)},
		"old":   {UpdatedAt: epoch.Add(-time.Hour)},
	})
	assert.Equal(t, []string{"fresh"}, keys(got))

	assert.NotNil(t, prune(nil))
}

func keys(s Sessions) []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	return out
}
