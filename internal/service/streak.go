package service

import (
	"time"

	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"
)

// Daily claim history considered by the streak calculator
const StreakHistoryDays = 30

// DayStatus is one cell of the week view
type DayStatus struct {
	Date    string `json:"date"`
	Weekday string `json:"weekday"`
	Claimed bool   `json:"claimed"`
	Today   bool   `json:"today"`
}

func dateSet(dates []time.Time) map[string]bool {
	set := make(map[string]bool, len(dates))
	for _, d := range dates {
		set[domain.DateKey(d)] = true
	}
	return set
}

func runFrom(set map[string]bool, day time.Time) int {
	n := 0
	for set[domain.DateKey(day)] {
		n++
		day = day.AddDate(0, 0, -1)
	}
	return n
}

// CurrentStreak counts consecutive claimed days walking back from today.
// An unclaimed today yields 0.
func CurrentStreak(dates []time.Time, today time.Time) int {
	return runFrom(dateSet(dates), today.UTC())
}

// CarriedStreak is the run ending yesterday, the streak a claim today would extend
func CarriedStreak(dates []time.Time, today time.Time) int {
	return runFrom(dateSet(dates), today.UTC().AddDate(0, 0, -1))
}

// WeekView reports, for the last 7 days ending today, whether each was claimed
func WeekView(dates []time.Time, today time.Time) []DayStatus {
	set := dateSet(dates)
	today = today.UTC()

	week := make([]DayStatus, 0, 7)
	for i := 6; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		key := domain.DateKey(day)
		week = append(week, DayStatus{
			Date:    key,
			Weekday: day.Weekday().String()[:3],
			Claimed: set[key],
			Today:   i == 0,
		})
	}
	return week
}

// ClaimDates extracts the dates of daily claims, skipping malformed keys
func ClaimDates(claims []domain.ClaimRecord) []time.Time {
	dates := make([]time.Time, 0, len(claims))
	for _, c := range claims {
		if c.EventType != domain.EventDaily {
			continue
		}
		d, err := domain.ParseDateKey(c.Key)
		if err != nil {
			continue
		}
		dates = append(dates, d)
	}
	return dates
}
