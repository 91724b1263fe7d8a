package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// WorkStage is the event phase a shift belongs to.
type WorkStage string

const (
	StageSetup    WorkStage = "setup"
	StageEvent    WorkStage = "event"
	StageTeardown WorkStage = "teardown"
)

// WorkPeriod is the half of the day a shift covers.
type WorkPeriod string

const (
	PeriodDay   WorkPeriod = "day"
	PeriodNight WorkPeriod = "night"
)

var stageRank = map[WorkStage]int{
	StageSetup:    0,
	StageEvent:    1,
	StageTeardown: 2,
}

var periodRank = map[WorkPeriod]int{
	PeriodDay:   0,
	PeriodNight: 1,
}

// Shift identifies one work session of an event: a calendar date plus the
// event phase and the day/night period. Dates are kept as YYYY-MM-DD strings
// so lexicographic order matches chronological order.
type Shift struct {
	Date   string     `json:"date"`
	Stage  WorkStage  `json:"stage"`
	Period WorkPeriod `json:"period"`
}

// ParseShiftKey parses a composite key of the form "2026-03-14-setup-day".
func ParseShiftKey(key string) (Shift, error) {
	parts := strings.Split(strings.TrimSpace(key), "-")
	if len(parts) != 5 {
		return Shift{}, fmt.Errorf("invalid shift key %q: want date-stage-period", key)
	}

	date := strings.Join(parts[:3], "-")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return Shift{}, fmt.Errorf("invalid shift date %q: %w", date, err)
	}

	stage := WorkStage(parts[3])
	if _, ok := stageRank[stage]; !ok {
		return Shift{}, fmt.Errorf("invalid shift stage %q", parts[3])
	}

	period := WorkPeriod(parts[4])
	if _, ok := periodRank[period]; !ok {
		return Shift{}, fmt.Errorf("invalid shift period %q", parts[4])
	}

	return Shift{Date: date, Stage: stage, Period: period}, nil
}

// Key returns the composite key the shift was parsed from.
func (s Shift) Key() string {
	return fmt.Sprintf("%s-%s-%s", s.Date, s.Stage, s.Period)
}

// Less orders shifts by (date, stage, period) with setup < event < teardown
// and day < night.
func (s Shift) Less(other Shift) bool {
	if s.Date != other.Date {
		return s.Date < other.Date
	}
	if s.Stage != other.Stage {
		return stageRank[s.Stage] < stageRank[other.Stage]
	}
	return periodRank[s.Period] < periodRank[other.Period]
}

// SortShifts sorts shifts in place into their canonical order.
func SortShifts(shifts []Shift) {
	sort.Slice(shifts, func(i, j int) bool {
		return shifts[i].Less(shifts[j])
	})
}
