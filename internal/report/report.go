// Package report groups coffee items into calendar days for display.
package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/coffeelog/coffee/internal/model"
)

// DateLayout is the layout of Day.Date and of the CLI date filter.
const DateLayout = "2006-01-02"

// Entry is a single consumption within a day.
type Entry struct {
	Time  time.Time
	Shots int32
}

// Day holds every entry of one calendar day and their shot total.
type Day struct {
	Date    string
	Entries []Entry
	Total   int64
}

// GroupByDay buckets items by calendar day in loc.
// Days are ordered newest first, and so are the entries within a day.
func GroupByDay(items []model.CoffeeItem, loc *time.Location) []Day {
	if loc == nil {
		loc = time.UTC
	}

	index := make(map[string]int)
	days := make([]Day, 0)

	for _, item := range items {
		t := item.Time().In(loc)
		date := t.Format(DateLayout)

		i, ok := index[date]
		if !ok {
			i = len(days)
			index[date] = i
			days = append(days, Day{Date: date})
		}
		days[i].Entries = append(days[i].Entries, Entry{Time: t, Shots: item.Shots})
		days[i].Total += int64(item.Shots)
	}

	for i := range days {
		entries := days[i].Entries
		sort.SliceStable(entries, func(a, b int) bool {
			return entries[a].Time.After(entries[b].Time)
		})
	}
	// DateLayout sorts lexically in date order.
	sort.Slice(days, func(a, b int) bool {
		return days[a].Date > days[b].Date
	})

	return days
}

// FilterDay returns only the day matching date (YYYY-MM-DD).
func FilterDay(days []Day, date string) ([]Day, error) {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
	}

	for _, d := range days {
		if d.Date == date {
			return []Day{d}, nil
		}
	}
	return []Day{}, nil
}

// Write renders days as plain text.
func Write(w io.Writer, days []Day) error {
	if len(days) == 0 {
		_, err := fmt.Fprintln(w, "Nothing found :(")
		return err
	}

	for _, d := range days {
		if _, err := fmt.Fprintln(w, d.Date); err != nil {
			return err
		}
		for _, e := range d.Entries {
			if _, err := fmt.Fprintf(w, "%16s%-10s: %d\n", "", e.Time.Format("15:04:05"), e.Shots); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%-26s%d\n", "Daily Total:", d.Total); err != nil {
			return err
		}
	}
	return nil
}
