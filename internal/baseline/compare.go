package baseline

import (
	"errors"
	"math"
)

// caffeinePerSleepHour is the estimated extra caffeine per hour of sleep deficit.
const caffeinePerSleepHour = 35

// ErrMissingFields is returned when age, gender or sleep hours are absent.
var ErrMissingFields = errors.New("Please fill in age, gender, and sleep hours")

// ErrOutOfRange is returned when a numeric field is not finite or outside
// what a person can report.
var ErrOutOfRange = errors.New("age, sleep hours or caffeine out of range")

// Input limits.
const (
	MaxAge        = 150
	MaxSleepHours = 24
	MaxCaffeineMg = 10000
)

// Status is the outcome of comparing one value against its baseline.
type Status string

const (
	InRange  Status = "IN_RANGE"
	AboveAvg Status = "ABOVE_AVG"
	BelowAvg Status = "BELOW_AVG"
)

// Input is the raw form submission. CaffeineMg is nil when the user left it blank.
type Input struct {
	Age        int      `json:"age"`
	Gender     string   `json:"gender"`
	SleepHours float64  `json:"sleepHours"`
	CaffeineMg *float64 `json:"caffeineMg,omitempty"`
}

// Validate reports whether the required fields are present and in range. Zero
// age or zero sleep count as missing.
func (in Input) Validate() error {
	if in.Age == 0 || in.Gender == "" || in.SleepHours == 0 {
		return ErrMissingFields
	}
	if in.Age < 0 || in.Age > MaxAge || !inRange(in.SleepHours, MaxSleepHours) {
		return ErrOutOfRange
	}
	if in.CaffeineMg != nil && !inRange(*in.CaffeineMg, MaxCaffeineMg) {
		return ErrOutOfRange
	}
	return nil
}

func inRange(v, upper float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0 && v <= upper
}

// Assessment is the derived per-submission view of the user.
type Assessment struct {
	Age               int       `json:"age"`
	Gender            Gender    `json:"gender"`
	Bucket            AgeBucket `json:"bucket"`
	SleepHours        float64   `json:"sleepHours"`
	CaffeineMg        float64   `json:"caffeineMg"`
	CaffeineEstimated bool      `json:"caffeineEstimated"`
}

// Comparison holds the statuses of an assessment against its baseline.
// CaffeineUnsafe is independent of the Caffeine status: a value can sit at or
// below average and still exceed the safe maximum.
type Comparison struct {
	Sleep          Status `json:"sleep"`
	Caffeine       Status `json:"caffeine"`
	CaffeineUnsafe bool   `json:"caffeineUnsafe"`
}

// EstimateCaffeine infers daily caffeine from the sleep deficit against the
// bucket average, floored at zero.
func (t *Table) EstimateCaffeine(sleepHours float64, age int, gender Gender) float64 {
	b := t.ForAge(age, gender)
	est := math.Round(b.Caffeine.Avg + (b.Sleep.Avg-sleepHours)*caffeinePerSleepHour)
	return math.Max(0, est)
}

// Assess builds the assessment for a validated input, estimating caffeine when
// it was not supplied.
func (t *Table) Assess(in Input) Assessment {
	g := ParseGender(in.Gender)
	a := Assessment{
		Age:        in.Age,
		Gender:     g,
		Bucket:     BucketFor(in.Age),
		SleepHours: in.SleepHours,
	}
	if in.CaffeineMg != nil {
		a.CaffeineMg = *in.CaffeineMg
	} else {
		a.CaffeineMg = t.EstimateCaffeine(in.SleepHours, in.Age, g)
		a.CaffeineEstimated = true
	}
	return a
}

// Compare classifies the assessment against b. Sleep equal to min or max is in
// range; caffeine equal to the average is not above it.
func Compare(a Assessment, b Baseline) Comparison {
	var c Comparison

	switch {
	case a.SleepHours >= b.Sleep.Min && a.SleepHours <= b.Sleep.Max:
		c.Sleep = InRange
	case a.SleepHours >= b.Sleep.Avg:
		c.Sleep = AboveAvg
	default:
		c.Sleep = BelowAvg
	}

	if a.CaffeineMg > b.Caffeine.Avg {
		c.Caffeine = AboveAvg
	} else {
		c.Caffeine = BelowAvg
	}
	c.CaffeineUnsafe = a.CaffeineMg > b.Caffeine.Max

	return c
}
