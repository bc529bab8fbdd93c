// Package baseline holds the population reference data for sleep and caffeine
// and compares a user's self-reported values against it.
package baseline

import (
	"strings"
)

// AgeBucket is one of the fixed population age ranges.
type AgeBucket string

const (
	Bucket5To13  AgeBucket = "5-13"
	Bucket14To17 AgeBucket = "14-17"
	Bucket18To25 AgeBucket = "18-25"
	Bucket26To64 AgeBucket = "26-64"
	Bucket65Plus AgeBucket = "65+"
)

// Buckets returns every age bucket in ascending order.
func Buckets() []AgeBucket {
	return []AgeBucket{Bucket5To13, Bucket14To17, Bucket18To25, Bucket26To64, Bucket65Plus}
}

// BucketFor maps an age in years to its bucket.
func BucketFor(age int) AgeBucket {
	switch {
	case age <= 13:
		return Bucket5To13
	case age <= 17:
		return Bucket14To17
	case age <= 25:
		return Bucket18To25
	case age <= 64:
		return Bucket26To64
	default:
		return Bucket65Plus
	}
}

// Gender selects the baseline column. Only male and female exist.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// ParseGender normalizes user input. Anything that is not "female" or "male"
// falls back to Male.
func ParseGender(s string) Gender {
	switch Gender(strings.ToLower(strings.TrimSpace(s))) {
	case Female:
		return Female
	default:
		return Male
	}
}

// SleepBaseline is the nightly sleep reference in hours.
type SleepBaseline struct {
	Avg float64 `json:"avg"`
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// CaffeineBaseline is the daily caffeine reference in milligrams.
type CaffeineBaseline struct {
	Avg float64 `json:"avg"`
	Max float64 `json:"max"`
}

// Baseline is one (bucket, gender) cell of the table.
type Baseline struct {
	Bucket   AgeBucket        `json:"bucket"`
	Gender   Gender           `json:"gender"`
	Sleep    SleepBaseline    `json:"sleep"`
	Caffeine CaffeineBaseline `json:"caffeine"`
}

type cell struct {
	bucket AgeBucket
	gender Gender
}

// Table is the immutable baseline lookup. The zero value is not usable; use Default.
type Table struct {
	sleep    map[cell]SleepBaseline
	caffeine map[cell]CaffeineBaseline
}

var defaultTable = &Table{
	sleep: map[cell]SleepBaseline{
		{Bucket5To13, Male}:    {Avg: 10, Min: 9, Max: 12},
		{Bucket5To13, Female}:  {Avg: 10.2, Min: 9, Max: 12},
		{Bucket14To17, Male}:   {Avg: 7.5, Min: 8, Max: 10},
		{Bucket14To17, Female}: {Avg: 7.3, Min: 8, Max: 10},
		{Bucket18To25, Male}:   {Avg: 6.9, Min: 7, Max: 9},
		{Bucket18To25, Female}: {Avg: 7.2, Min: 7, Max: 9},
		{Bucket26To64, Male}:   {Avg: 6.8, Min: 7, Max: 9},
		{Bucket26To64, Female}: {Avg: 7.0, Min: 7, Max: 9},
		{Bucket65Plus, Male}:   {Avg: 6.5, Min: 7, Max: 8},
		{Bucket65Plus, Female}: {Avg: 6.7, Min: 7, Max: 8},
	},
	caffeine: map[cell]CaffeineBaseline{
		{Bucket5To13, Male}:    {Avg: 25, Max: 45},
		{Bucket5To13, Female}:  {Avg: 20, Max: 45},
		{Bucket14To17, Male}:   {Avg: 110, Max: 100},
		{Bucket14To17, Female}: {Avg: 90, Max: 100},
		{Bucket18To25, Male}:   {Avg: 180, Max: 400},
		{Bucket18To25, Female}: {Avg: 150, Max: 400},
		{Bucket26To64, Male}:   {Avg: 220, Max: 400},
		{Bucket26To64, Female}: {Avg: 180, Max: 400},
		{Bucket65Plus, Male}:   {Avg: 200, Max: 300},
		{Bucket65Plus, Female}: {Avg: 165, Max: 300},
	},
}

// Default returns the built-in baseline table.
func Default() *Table {
	return defaultTable
}

// Lookup returns the baseline cell for a bucket and gender.
func (t *Table) Lookup(bucket AgeBucket, gender Gender) Baseline {
	if gender != Female {
		gender = Male
	}
	c := cell{bucket, gender}
	return Baseline{
		Bucket:   bucket,
		Gender:   gender,
		Sleep:    t.sleep[c],
		Caffeine: t.caffeine[c],
	}
}

// ForAge is Lookup with the bucket derived from age.
func (t *Table) ForAge(age int, gender Gender) Baseline {
	return t.Lookup(BucketFor(age), gender)
}

// All returns every cell, ordered by bucket then gender (male first).
func (t *Table) All() []Baseline {
	out := make([]Baseline, 0, len(t.sleep))
	for _, b := range Buckets() {
		out = append(out, t.Lookup(b, Male), t.Lookup(b, Female))
	}
	return out
}
