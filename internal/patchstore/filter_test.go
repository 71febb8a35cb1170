package patchstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCriteria_Matches(t *testing.T) {
	r := &Record{Name: "night-drive-7", State: "converged", CreatedAtMs: 5000}

	tests := []struct {
		name     string
		criteria *Criteria
		want     bool
	}{
		{"nil matches all", nil, true},
		{"empty matches all", &Criteria{}, true},
		{"since before", &Criteria{SinceMs: 4000}, true},
		{"since after", &Criteria{SinceMs: 6000}, false},
		{"until after", &Criteria{UntilMs: 6000}, true},
		{"until before", &Criteria{UntilMs: 4000}, false},
		{"name glob", &Criteria{NameGlob: "night-*"}, true},
		{"name glob miss", &Criteria{NameGlob: "day-*"}, false},
		{"bad glob", &Criteria{NameGlob: "["}, false},
		{"state", &Criteria{State: "converged"}, true},
		{"state miss", &Criteria{State: "exhausted"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.criteria.Matches(r))
		})
	}
}

func TestList_WithCriteria(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	for i, name := range []string{"night-1", "day-2", "night-3"} {
		r := testRecord(name, int64(i))
		r.CreatedAtMs = int64(1000 * (i + 1))
		require.NoError(t, client.Save(ctx, r))
	}

	records, err := client.List(ctx, &Criteria{SinceMs: 2000})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "day-2", records[0].Name)

	records, err = client.List(ctx, &Criteria{UntilMs: 2000, NameGlob: "night-*"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "night-1", records[0].Name)
}

func TestParseTime(t *testing.T) {
	ms, err := ParseTime("2026-01-02T15:04:05Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC).UnixMilli(), ms)

	before := time.Now().Add(-time.Hour).UnixMilli()
	ms, err = ParseTime("1h")
	require.NoError(t, err)
	assert.InDelta(t, before, ms, 1000)

	_, err = ParseTime("")
	assert.Error(t, err)
	_, err = ParseTime("yesterday")
	assert.ErrorContains(t, err, "invalid time specification")
}

func TestParseRange(t *testing.T) {
	since, until, err := ParseRange("", "")
	require.NoError(t, err)
	assert.Zero(t, since)
	assert.Zero(t, until)

	since, until, err = ParseRange("2h", "1h")
	require.NoError(t, err)
	assert.Less(t, since, until)

	_, _, err = ParseRange("1h", "2h")
	assert.ErrorContains(t, err, "--since must be before --until")

	_, _, err = ParseRange("bogus", "")
	assert.ErrorContains(t, err, "invalid --since")
}
