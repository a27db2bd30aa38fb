package engine

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mesh-intelligence/trackora/pkg/types"
)

// Tier names a discipline score band.
type Tier string

// Discipline tiers, best first.
const (
	TierElite      Tier = "Elite"
	TierPro        Tier = "Pro"
	TierConsistent Tier = "Consistent"
	TierBeginner   Tier = "Beginner"
)

// ScoreTier maps a discipline score to its tier.
func ScoreTier(score float64) Tier {
	switch {
	case score >= 90:
		return TierElite
	case score >= 75:
		return TierPro
	case score >= 50:
		return TierConsistent
	default:
		return TierBeginner
	}
}

const (
	maxDisplayName = 30
	unnamed        = "Unnamed"
	fallbackColor  = "#06b6d4"
)

// DisplayName returns the label shown for a protocol: trimmed to 30
// characters, or "Unnamed" when blank.
func DisplayName(label string) string {
	if strings.TrimSpace(label) == "" {
		return unnamed
	}
	if utf8.RuneCountInString(label) <= maxDisplayName {
		return label
	}
	return string([]rune(label)[:maxDisplayName])
}

func clampPercent(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 100:
		return 100
	default:
		return x
	}
}

// DisciplineScore returns the share of possible protocol-days completed in
// the target month, from 0 to 100. A month without protocols scores 0.
func DisciplineScore(doc types.TrackerDocument, t Target) float64 {
	m := monthData(doc, t)
	days := t.Month.Days()
	if len(m.Protocols) == 0 {
		return 0
	}
	completed := 0
	for d := 1; d <= days; d++ {
		completed += completedOn(m, t.Month, d)
	}
	return clampPercent(SafeDivide(completed, len(m.Protocols)*days, 0) * 100)
}

// ProtocolStat is the monthly completion of one protocol.
type ProtocolStat struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Color      string `json:"color" yaml:"color"`
	Completed  int    `json:"completed" yaml:"completed"`
	Percentage int    `json:"percentage" yaml:"percentage"`
}

// ProtocolStats returns the completion of every protocol in the target
// month, in display order.
func ProtocolStats(doc types.TrackerDocument, t Target) []ProtocolStat {
	m := monthData(doc, t)
	days := t.Month.Days()
	stats := make([]ProtocolStat, 0, len(m.Protocols))
	for _, p := range m.Protocols {
		completed := 0
		for d := 1; d <= days; d++ {
			if c, ok := m.Cell(types.CompletionKey(p.ID, t.Month.Date(d))); ok && c.Completed {
				completed++
			}
		}
		color := p.Color
		if color == "" {
			color = fallbackColor
		}
		stats = append(stats, ProtocolStat{
			ID:         p.ID,
			Name:       DisplayName(p.Label),
			Color:      color,
			Completed:  completed,
			Percentage: int(clampPercent(float64(SafePercentage(completed, days)))),
		})
	}
	return stats
}

// Streak counts consecutive days with at least one completion, walking
// back from today. Today may have no completions yet without ending the
// streak. The walk stops at the first day of the month, and a month that
// does not contain today has no streak.
func Streak(doc types.TrackerDocument, t Target, today time.Time) int {
	if !t.Month.Includes(today) {
		return 0
	}
	m := monthData(doc, t)
	streak := 0
	for d := today.Day(); d >= 1; d-- {
		if completedOn(m, t.Month, d) > 0 {
			streak++
			continue
		}
		if d == today.Day() {
			continue
		}
		break
	}
	return streak
}

// DayCompletion summarizes one calendar day.
type DayCompletion struct {
	Day        int          `json:"day" yaml:"day"`
	Date       string       `json:"date" yaml:"date"`
	Weekday    time.Weekday `json:"weekday" yaml:"weekday"`
	Completed  int          `json:"completed" yaml:"completed"`
	Percentage int          `json:"percentage" yaml:"percentage"`
	SleepHours float64      `json:"sleepHours" yaml:"sleepHours"`
}

func dayCompletion(m types.MonthData, month types.Month, day int) DayCompletion {
	completed := completedOn(m, month, day)
	var sleep float64
	if c, ok := m.Cell(types.SleepKey(month.Date(day))); ok {
		sleep = SafeNumber(c.Text, 0)
	}
	return DayCompletion{
		Day:        day,
		Date:       month.Date(day),
		Weekday:    month.Weekday(day),
		Completed:  completed,
		Percentage: SafePercentage(completed, len(m.Protocols)),
		SleepHours: sleep,
	}
}

// MonthlySummary is the monthly analysis of one target.
type MonthlySummary struct {
	Month             string         `json:"month" yaml:"month"`
	Protocols         int            `json:"protocols" yaml:"protocols"`
	Days              int            `json:"days" yaml:"days"`
	OverallCompletion int            `json:"overallCompletion" yaml:"overallCompletion"`
	Score             float64        `json:"score" yaml:"score"`
	Tier              Tier           `json:"tier" yaml:"tier"`
	Stats             []ProtocolStat `json:"stats" yaml:"stats"`
	Rankings          []ProtocolStat `json:"rankings" yaml:"rankings"`
	Best              *ProtocolStat  `json:"best,omitempty" yaml:"best,omitempty"`
	Worst             *ProtocolStat  `json:"worst,omitempty" yaml:"worst,omitempty"`
	AverageSleep      float64        `json:"averageSleep" yaml:"averageSleep"`
	SleepDaysTracked  int            `json:"sleepDaysTracked" yaml:"sleepDaysTracked"`
	BestDay           DayCompletion  `json:"bestDay" yaml:"bestDay"`
	Streak            int            `json:"streak" yaml:"streak"`
}

// Monthly computes the monthly analysis of the target month. BestDay is
// the first day with the most completions; when nothing was completed it
// is day 1 with zero completions.
func Monthly(doc types.TrackerDocument, t Target, today time.Time) MonthlySummary {
	m := monthData(doc, t)
	days := t.Month.Days()
	stats := ProtocolStats(doc, t)
	score := DisciplineScore(doc, t)

	s := MonthlySummary{
		Month:     t.Month.Key(),
		Protocols: len(m.Protocols),
		Days:      days,
		Score:     score,
		Tier:      ScoreTier(score),
		Stats:     stats,
		Streak:    Streak(doc, t, today),
	}

	total := 0
	for _, st := range stats {
		total += st.Completed
	}
	s.OverallCompletion = int(clampPercent(float64(SafePercentage(total, len(stats)*days))))

	s.Rankings = append([]ProtocolStat(nil), stats...)
	sort.SliceStable(s.Rankings, func(i, j int) bool {
		return s.Rankings[i].Percentage > s.Rankings[j].Percentage
	})
	for i := range stats {
		if s.Best == nil || stats[i].Percentage > s.Best.Percentage {
			best := stats[i]
			s.Best = &best
		}
		if s.Worst == nil || stats[i].Percentage < s.Worst.Percentage {
			worst := stats[i]
			s.Worst = &worst
		}
	}

	var sleep []any
	s.BestDay = DayCompletion{Day: 1, Date: t.Month.Date(1), Weekday: t.Month.Weekday(1)}
	for d := 1; d <= days; d++ {
		if label, ok := m.Cell(types.SleepKey(t.Month.Date(d))); ok && label.Text != "" {
			s.SleepDaysTracked++
			sleep = append(sleep, label.Text)
		}
		if dc := dayCompletion(m, t.Month, d); dc.Completed > s.BestDay.Completed {
			s.BestDay = dc
		}
	}
	s.AverageSleep = SafeAverage(sleep)
	return s
}

// WeeklySummary is the analysis of the last seven days up to today.
type WeeklySummary struct {
	Available         bool            `json:"available" yaml:"available"`
	Month             string          `json:"month" yaml:"month"`
	Days              []DayCompletion `json:"days" yaml:"days"`
	AverageCompletion int             `json:"averageCompletion" yaml:"averageCompletion"`
	AverageSleep      float64         `json:"averageSleep" yaml:"averageSleep"`
	Streak            int             `json:"streak" yaml:"streak"`
	BestDay           *DayCompletion  `json:"bestDay,omitempty" yaml:"bestDay,omitempty"`
}

// Weekly computes the analysis of up to seven days ending today. It is
// only available when the target month contains today, and never reaches
// into the previous month.
func Weekly(doc types.TrackerDocument, t Target, today time.Time) WeeklySummary {
	s := WeeklySummary{Month: t.Month.Key(), Days: []DayCompletion{}}
	if !t.Month.Includes(today) {
		return s
	}
	s.Available = true

	m := monthData(doc, t)
	first := today.Day() - 6
	if first < 1 {
		first = 1
	}
	var pct, sleep []any
	for d := first; d <= today.Day(); d++ {
		dc := dayCompletion(m, t.Month, d)
		s.Days = append(s.Days, dc)
		pct = append(pct, dc.Percentage)
		sleep = append(sleep, dc.SleepHours)
	}

	s.AverageCompletion = int(round(SafeDivide(SafeSum(pct), len(pct), 0)))
	s.AverageSleep = SafeAverage(sleep)
	s.Streak = Streak(doc, t, today)
	for i := range s.Days {
		if s.Days[i].Percentage > 0 && (s.BestDay == nil || s.Days[i].Percentage > s.BestDay.Percentage) {
			best := s.Days[i]
			s.BestDay = &best
		}
	}
	return s
}
