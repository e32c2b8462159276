package service

import (
	"testing"
	"time"

	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentStreak(t *testing.T) {
	// D, D-1, D-2 claimed, gap at D-3, older claims before the gap
	dates := []time.Time{day("2024-05-10"), day("2024-05-09"), day("2024-05-08"), day("2024-05-06"), day("2024-05-05")}

	tests := []struct {
		name  string
		today time.Time
		want  int
	}{
		{"today is D", day("2024-05-10"), 3},
		{"today is D+1", day("2024-05-11"), 0},
		{"today is D, late in the day", day("2024-05-10").Add(23 * time.Hour), 3},
		{"today is D-3, the gap", day("2024-05-07"), 0},
		{"today is D-4", day("2024-05-06"), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CurrentStreak(dates, tt.today))
		})
	}
}

func TestCarriedStreak(t *testing.T) {
	dates := []time.Time{day("2024-05-10"), day("2024-05-09"), day("2024-05-08")}

	assert.Equal(t, 3, CarriedStreak(dates, day("2024-05-11")))
	assert.Equal(t, 2, CarriedStreak(dates, day("2024-05-10")))
	assert.Equal(t, 0, CarriedStreak(dates, day("2024-05-12")))
}

func TestCurrentStreak_UnorderedAndDuplicateDates(t *testing.T) {
	dates := []time.Time{day("2024-05-08"), day("2024-05-10"), day("2024-05-09"), day("2024-05-10")}
	assert.Equal(t, 3, CurrentStreak(dates, day("2024-05-10")))
	assert.Equal(t, 0, CurrentStreak(nil, day("2024-05-10")))
}

func TestWeekView(t *testing.T) {
	// claimed every day this week except yesterday
	dates := []time.Time{day("2024-05-04"), day("2024-05-05"), day("2024-05-06"), day("2024-05-07"), day("2024-05-08"), day("2024-05-10")}

	week := WeekView(dates, day("2024-05-10"))
	require.Len(t, week, 7)
	assert.Equal(t, "2024-05-04", week[0].Date)
	assert.Equal(t, "Sat", week[0].Weekday)
	assert.True(t, week[0].Claimed)
	assert.False(t, week[5].Claimed)
	assert.True(t, week[6].Claimed)
	assert.True(t, week[6].Today)

	assert.Equal(t, 1, CurrentStreak(dates, day("2024-05-10")))
}

func TestClaimDates_SkipsMalformedKeys(t *testing.T) {
	claims := []domain.ClaimRecord{
		{EventType: domain.EventDaily, Key: "2024-05-10"},
		{EventType: domain.EventDaily, Key: "yesterday"},
		{EventType: domain.EventShareStack, Key: domain.KeyOnce},
	}
	dates := ClaimDates(claims)
	require.Len(t, dates, 1)
	assert.Equal(t, "2024-05-10", domain.DateKey(dates[0]))
}
