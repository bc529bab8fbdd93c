// Package chart turns a comparison into a fixed-axis scatter chart. Render is
// a pure function producing a Scene; encoders in this package write it as SVG
// or PNG.
package chart

import "strconv"

// Point is one position on the chart.
type Point struct {
	CaffeineMg float64 `json:"caffeineMg"`
	SleepHours float64 `json:"sleepHours"`
}

// Zone is the healthy rectangle in domain units.
type Zone struct {
	XMin float64 `json:"xMin"`
	XMax float64 `json:"xMax"`
	YMin float64 `json:"yMin"`
	YMax float64 `json:"yMax"`
}

// Spec is the chart input. Nil fields omit their element.
type Spec struct {
	User    *Point `json:"user,omitempty"`
	Average *Point `json:"average,omitempty"`
	Zone    *Zone  `json:"zone,omitempty"`
}

// Role identifies what an element represents.
type Role string

const (
	RoleBackground Role = "background"
	RoleGrid       Role = "grid"
	RoleTickLabel  Role = "tick-label"
	RoleCaption    Role = "caption"
	RoleZone       Role = "zone"
	RoleAverage    Role = "average"
	RoleUser       Role = "user"
	RoleUserLabel  Role = "user-label"
)

// Colors used by the scene.
const (
	ColorBackground  = "#1e293b"
	ColorGrid        = "#334155"
	ColorLabel       = "#94a3b8"
	ColorZoneFill    = "rgba(52,211,153,0.25)"
	ColorZoneStroke  = "rgba(52,211,153,0.8)"
	ColorAverage     = "#fbbf24"
	ColorUser        = "#38bdf8"
	ColorUserOutline = "#fff"
)

// Element is one drawable primitive of a Scene.
type Element interface {
	ElementRole() Role
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	Role          Role
	X, Y          float64
	Width, Height float64
	Radius        float64
	Fill          string
	Stroke        string
	StrokeWidth   float64
}

// Line is a straight segment.
type Line struct {
	Role           Role
	X1, Y1, X2, Y2 float64
	Stroke         string
}

// Anchor is the horizontal text alignment.
type Anchor string

const (
	AnchorStart  Anchor = "start"
	AnchorMiddle Anchor = "middle"
	AnchorEnd    Anchor = "end"
)

// Text is a label. Rotate is in degrees around (X, Y).
type Text struct {
	Role     Role
	X, Y     float64
	Body     string
	Fill     string
	FontSize float64
	Bold     bool
	Anchor   Anchor
	Rotate   float64
}

// Polygon is a closed shape through Points.
type Polygon struct {
	Role   Role
	Points [][2]float64
	Fill   string
}

// Circle is a filled disc.
type Circle struct {
	Role        Role
	CX, CY, R   float64
	Fill        string
	Stroke      string
	StrokeWidth float64
}

func (e Rect) ElementRole() Role    { return e.Role }
func (e Line) ElementRole() Role    { return e.Role }
func (e Text) ElementRole() Role    { return e.Role }
func (e Polygon) ElementRole() Role { return e.Role }
func (e Circle) ElementRole() Role  { return e.Role }

// Scene is an ordered list of elements on a Width x Height canvas. Later
// elements draw over earlier ones.
type Scene struct {
	Width    float64
	Height   float64
	Elements []Element
}

// Count returns how many elements carry role r.
func (s Scene) Count(r Role) int {
	n := 0
	for _, e := range s.Elements {
		if e.ElementRole() == r {
			n++
		}
	}
	return n
}

// Render lays out the chart for spec.
func Render(spec Spec) Scene {
	sx, sy := XScale(), YScale()
	s := Scene{Width: Width, Height: Height}
	add := func(e Element) { s.Elements = append(s.Elements, e) }

	add(Rect{Role: RoleBackground, Width: Width, Height: Height, Radius: 8, Fill: ColorBackground})

	for _, v := range CaffeineTicks {
		x := sx.Map(v)
		add(Line{Role: RoleGrid, X1: x, Y1: MarginTop, X2: x, Y2: Height - MarginBottom, Stroke: ColorGrid})
		add(Text{
			Role: RoleTickLabel, X: x, Y: Height - MarginBottom + 16,
			Body: formatTick(v), Fill: ColorLabel, FontSize: 10, Anchor: AnchorMiddle,
		})
	}
	for _, v := range SleepTicks {
		y := sy.Map(v)
		add(Line{Role: RoleGrid, X1: MarginLeft, Y1: y, X2: Width - MarginRight, Y2: y, Stroke: ColorGrid})
		add(Text{
			Role: RoleTickLabel, X: MarginLeft - 8, Y: y + 4,
			Body: formatTick(v) + "h", Fill: ColorLabel, FontSize: 10, Anchor: AnchorEnd,
		})
	}

	add(Text{
		Role: RoleCaption, X: Width / 2, Y: Height - 5,
		Body: "Caffeine (mg/day)", Fill: ColorLabel, FontSize: 11, Anchor: AnchorMiddle,
	})
	add(Text{
		Role: RoleCaption, X: 14, Y: Height / 2,
		Body: "Sleep (hours)", Fill: ColorLabel, FontSize: 11, Anchor: AnchorMiddle, Rotate: -90,
	})

	if z := spec.Zone; z != nil {
		x0 := sx.Map(z.XMin)
		y0 := sy.Map(z.YMax)
		add(Rect{
			Role:   RoleZone,
			X:      x0,
			Y:      y0,
			Width:  sx.Map(z.XMax) - x0,
			Height: sy.Map(z.YMin) - y0,
			Fill:   ColorZoneFill, Stroke: ColorZoneStroke, StrokeWidth: 2,
		})
	}

	if p := spec.Average; p != nil {
		x, y := sx.Map(p.CaffeineMg), sy.Map(p.SleepHours)
		add(Polygon{
			Role:   RoleAverage,
			Points: [][2]float64{{x, y - 10}, {x - 8, y + 6}, {x + 8, y + 6}},
			Fill:   ColorAverage,
		})
	}

	if p := spec.User; p != nil {
		x, y := sx.Map(p.CaffeineMg), sy.Map(p.SleepHours)
		add(Circle{Role: RoleUser, CX: x, CY: y, R: 14, Fill: ColorUser, Stroke: ColorUserOutline, StrokeWidth: 3})
		add(Text{
			Role: RoleUserLabel, X: x, Y: y + 4,
			Body: "YOU", Fill: ColorUserOutline, FontSize: 8, Bold: true, Anchor: AnchorMiddle,
		})
	}

	return s
}

func formatTick(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
