package chart

// Canvas geometry shared by every rendition.
const (
	Width  = 380
	Height = 240

	MarginTop    = 20
	MarginRight  = 20
	MarginBottom = 40
	MarginLeft   = 50

	CaffeineMin = 0
	CaffeineMax = 500
	SleepMin    = 4
	SleepMax    = 12
)

// Ticks on each axis.
var (
	CaffeineTicks = []float64{0, 100, 200, 300, 400, 500}
	SleepTicks    = []float64{4, 6, 8, 10, 12}
)

// Scale is a linear map from a domain interval onto a pixel interval starting
// at Offset. Inverted scales grow towards Offset as the value grows.
type Scale struct {
	DomainMin float64
	DomainMax float64
	Offset    float64
	Length    float64
	Inverted  bool
}

// Map converts a domain value to a canvas coordinate. Values outside the
// domain extrapolate linearly.
func (s Scale) Map(v float64) float64 {
	span := s.DomainMax - s.DomainMin
	if s.Inverted {
		return s.Offset + ((s.DomainMax-v)/span)*s.Length
	}
	return s.Offset + ((v-s.DomainMin)/span)*s.Length
}

// XScale maps milligrams of caffeine onto the horizontal plot area.
func XScale() Scale {
	return Scale{
		DomainMin: CaffeineMin,
		DomainMax: CaffeineMax,
		Offset:    MarginLeft,
		Length:    Width - MarginLeft - MarginRight,
	}
}

// YScale maps hours of sleep onto the vertical plot area, higher values on top.
func YScale() Scale {
	return Scale{
		DomainMin: SleepMin,
		DomainMax: SleepMax,
		Offset:    MarginTop,
		Length:    Height - MarginTop - MarginBottom,
		Inverted:  true,
	}
}
