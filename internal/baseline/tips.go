package baseline

import "math/rand/v2"

// tipsPerSection is how many tips a report shows for a flagged value.
const tipsPerSection = 3

// SleepTips are offered when sleep falls below the bucket minimum.
var SleepTips = []string{
	"Keep a consistent sleep schedule",
	"Keep bedroom cool and dark",
	"Avoid screens before bed",
	"Limit caffeine after 2 PM",
	"Create a relaxing bedtime routine",
}

// CaffeineTips are offered when caffeine exceeds the safe maximum.
var CaffeineTips = []string{
	"Reduce intake gradually by 25% weekly",
	"Switch to half-caff or decaf",
	"Replace afternoon coffee with tea",
	"Stay hydrated with water",
	"Try a power nap instead",
}

// ShuffleFunc permutes n elements through swap, matching rand.Shuffle.
type ShuffleFunc func(n int, swap func(i, j int))

// PickTips returns n distinct tips from list in random order. The input slice
// is never modified.
func PickTips(shuffle ShuffleFunc, list []string, n int) []string {
	if shuffle == nil {
		shuffle = rand.Shuffle
	}
	picked := make([]string, len(list))
	copy(picked, list)
	shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})
	if n < len(picked) {
		picked = picked[:n]
	}
	return picked
}
