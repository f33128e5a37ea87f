package session

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionsWith(statuses ...Status) Sessions {
	s := Sessions{}
	for i, st := range statuses {
		s[string(rune('a'+i))] = Record{Status: st}
	}
	return s
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name string
		in   Sessions
		want Status
	}{
		{"empty", Sessions{}, StatusIdle},
		{"nil", nil, StatusIdle},
		{"working wins", sessionsWith(StatusIdle, StatusWaiting, StatusWorking), StatusWorking},
		{"active over idle", sessionsWith(StatusIdle, StatusActive), StatusActive},
		{"waiting over active", sessionsWith(StatusActive, StatusWaiting), StatusWaiting},
		{"idle over unknown", sessionsWith(StatusUnknown, StatusIdle), StatusIdle},
		{"only unknown", sessionsWith(StatusUnknown), StatusUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Aggregate(tt.in))
		})
	}
}

func TestPriorityIsTotal(t *testing.T) {
	order := []Status{StatusWorking, StatusWaiting, StatusActive, StatusIdle, StatusUnknown}
	for i := 1; i < len(order); i++ {
		assert.Greater(t, order[i-1].Priority(), order[i].Priority(), "%s vs %s", order[i-1], order[i])
	}
}

func TestParseStatus(t *testing.T) {
	assert.Equal(t, StatusWorking, ParseStatus("working"))
	assert.Equal(t, StatusIdle, ParseStatus("idle"))
	assert.Equal(t, StatusUnknown, ParseStatus("running"))
	assert.Equal(t, StatusUnknown, ParseStatus(""))
}

func TestStatusUnmarshalJSON(t *testing.T) {
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(`{"status":"dead"}`), &rec))
	assert.Equal(t, StatusUnknown, rec.Status)

	require.NoError(t, json.Unmarshal([]byte(`{"status":"waiting"}`), &rec))
	assert.Equal(t, StatusWaiting, rec.Status)
}
