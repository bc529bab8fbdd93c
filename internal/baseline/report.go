package baseline

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"

	"github.com/ashureev/restwell/internal/chart"
)

// Tone is the color class of a badge.
type Tone string

const (
	ToneBlue  Tone = "blue"
	ToneGreen Tone = "green"
	ToneRed   Tone = "red"
)

// Direction says which side of the average a value sits on.
type Direction string

const (
	DirAbove Direction = "above"
	DirBelow Direction = "below"
)

// Badge is the short status label shown next to a section.
type Badge struct {
	Label string `json:"label"`
	Tone  Tone   `json:"tone"`
}

// Section is the render model for either the sleep or the caffeine result.
type Section struct {
	Status    Status    `json:"status"`
	Badge     Badge     `json:"badge"`
	Estimated bool      `json:"estimated,omitempty"`
	Summary   string    `json:"summary"`
	Diff      float64   `json:"diff"`
	Direction Direction `json:"direction"`
	Tips      []string  `json:"tips,omitempty"`
	Congrats  string    `json:"congrats,omitempty"`
}

// Report is everything needed to display one assessment.
type Report struct {
	Assessment Assessment `json:"assessment"`
	Baseline   Baseline   `json:"baseline"`
	Comparison Comparison `json:"comparison"`
	Sleep      Section    `json:"sleep"`
	Caffeine   Section    `json:"caffeine"`
	Chart      chart.Spec `json:"chart"`
}

// Assessor turns form input into a Report.
type Assessor struct {
	table   *Table
	shuffle ShuffleFunc
}

// AssessorOption configures an Assessor.
type AssessorOption func(*Assessor)

// WithShuffle replaces the tip shuffler, mostly for deterministic tests.
func WithShuffle(fn ShuffleFunc) AssessorOption {
	return func(a *Assessor) {
		a.shuffle = fn
	}
}

// NewAssessor creates an Assessor over table. A nil table means Default().
func NewAssessor(table *Table, opts ...AssessorOption) *Assessor {
	if table == nil {
		table = Default()
	}
	a := &Assessor{table: table, shuffle: rand.Shuffle}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Table returns the baseline table the assessor reads from.
func (a *Assessor) Table() *Table {
	return a.table
}

// Assess validates the input and builds the full report.
func (a *Assessor) Assess(in Input) (*Report, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	asmt := a.table.Assess(in)
	base := a.table.Lookup(asmt.Bucket, asmt.Gender)
	cmp := Compare(asmt, base)

	return &Report{
		Assessment: asmt,
		Baseline:   base,
		Comparison: cmp,
		Sleep:      a.sleepSection(asmt, base, cmp),
		Caffeine:   a.caffeineSection(asmt, base, cmp),
		Chart:      ChartSpec(asmt, base),
	}, nil
}

// ChartSpec places the user, the bucket average and the healthy zone.
func ChartSpec(asmt Assessment, base Baseline) chart.Spec {
	return chart.Spec{
		User:    &chart.Point{CaffeineMg: asmt.CaffeineMg, SleepHours: asmt.SleepHours},
		Average: &chart.Point{CaffeineMg: base.Caffeine.Avg, SleepHours: base.Sleep.Avg},
		Zone: &chart.Zone{
			XMin: 0,
			XMax: base.Caffeine.Max,
			YMin: base.Sleep.Min,
			YMax: base.Sleep.Max,
		},
	}
}

func (a *Assessor) sleepSection(asmt Assessment, base Baseline, cmp Comparison) Section {
	s := Section{Status: cmp.Sleep}

	switch cmp.Sleep {
	case InRange:
		s.Badge = Badge{Label: "✓ IN RANGE", Tone: ToneBlue}
		s.Congrats = "Great! Your sleep is in the healthy range!"
	case AboveAvg:
		s.Badge = Badge{Label: "↑ ABOVE AVG", Tone: ToneGreen}
	default:
		s.Badge = Badge{Label: "↓ BELOW AVG", Tone: ToneRed}
	}

	s.Diff = roundTo(math.Abs(asmt.SleepHours-base.Sleep.Avg), 1)
	s.Direction = DirBelow
	if asmt.SleepHours >= base.Sleep.Avg {
		s.Direction = DirAbove
	}
	s.Summary = fmt.Sprintf("You: %sh | Avg: %sh | %sh %s",
		formatNumber(asmt.SleepHours),
		formatNumber(base.Sleep.Avg),
		strconv.FormatFloat(s.Diff, 'f', 1, 64),
		s.Direction,
	)

	if asmt.SleepHours < base.Sleep.Min {
		s.Tips = PickTips(a.shuffle, SleepTips, tipsPerSection)
	}
	return s
}

func (a *Assessor) caffeineSection(asmt Assessment, base Baseline, cmp Comparison) Section {
	s := Section{Status: cmp.Caffeine, Estimated: asmt.CaffeineEstimated}

	switch {
	case cmp.Caffeine == BelowAvg:
		s.Badge = Badge{Label: "↓ BELOW AVG", Tone: ToneGreen}
	case cmp.CaffeineUnsafe:
		s.Badge = Badge{Label: "↑ ABOVE AVG", Tone: ToneRed}
	default:
		s.Badge = Badge{Label: "↑ ABOVE AVG", Tone: ToneBlue}
	}

	s.Diff = math.Round(math.Abs(asmt.CaffeineMg - base.Caffeine.Avg))
	s.Direction = DirBelow
	if asmt.CaffeineMg > base.Caffeine.Avg {
		s.Direction = DirAbove
	}
	s.Summary = fmt.Sprintf("You: %smg | Avg: %smg | %smg %s",
		formatNumber(asmt.CaffeineMg),
		formatNumber(base.Caffeine.Avg),
		strconv.FormatFloat(s.Diff, 'f', 0, 64),
		s.Direction,
	)

	if cmp.CaffeineUnsafe {
		s.Tips = PickTips(a.shuffle, CaffeineTips, tipsPerSection)
	} else if cmp.Caffeine == BelowAvg {
		s.Congrats = "Excellent! Below average and within safe limits!"
	}
	return s
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func roundTo(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
