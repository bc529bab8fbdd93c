package chart

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// WriteSVG encodes the scene as a standalone SVG document.
func (s Scene) WriteSVG(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		num(s.Width), num(s.Height), num(s.Width), num(s.Height))
	for _, e := range s.Elements {
		if err := writeElement(bw, e); err != nil {
			return err
		}
	}
	bw.WriteString("</svg>\n")
	return bw.Flush()
}

// SVG returns the scene as an SVG string.
func (s Scene) SVG() string {
	var buf bytes.Buffer
	_ = s.WriteSVG(&buf)
	return buf.String()
}

func writeElement(w *bufio.Writer, e Element) error {
	switch el := e.(type) {
	case Rect:
		fmt.Fprintf(w, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s"`,
			num(el.X), num(el.Y), num(el.Width), num(el.Height), el.Fill)
		if el.Radius > 0 {
			fmt.Fprintf(w, ` rx="%s"`, num(el.Radius))
		}
		if el.Stroke != "" {
			fmt.Fprintf(w, ` stroke="%s" stroke-width="%s"`, el.Stroke, num(el.StrokeWidth))
		}
		w.WriteString("/>")
	case Line:
		fmt.Fprintf(w, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s"/>`,
			num(el.X1), num(el.Y1), num(el.X2), num(el.Y2), el.Stroke)
	case Text:
		fmt.Fprintf(w, `<text x="%s" y="%s" fill="%s" font-size="%s"`,
			num(el.X), num(el.Y), el.Fill, num(el.FontSize))
		if el.Bold {
			w.WriteString(` font-weight="bold"`)
		}
		fmt.Fprintf(w, ` text-anchor="%s"`, el.Anchor)
		if el.Rotate != 0 {
			fmt.Fprintf(w, ` transform="rotate(%s, %s, %s)"`, num(el.Rotate), num(el.X), num(el.Y))
		}
		w.WriteString(">")
		if err := xml.EscapeText(w, []byte(el.Body)); err != nil {
			return fmt.Errorf("escape text: %w", err)
		}
		w.WriteString("</text>")
	case Polygon:
		pts := make([]string, len(el.Points))
		for i, p := range el.Points {
			pts[i] = num(p[0]) + "," + num(p[1])
		}
		fmt.Fprintf(w, `<polygon points="%s" fill="%s"/>`, strings.Join(pts, " "), el.Fill)
	case Circle:
		fmt.Fprintf(w, `<circle cx="%s" cy="%s" r="%s" fill="%s" stroke="%s" stroke-width="%s"/>`,
			num(el.CX), num(el.CY), num(el.R), el.Fill, el.Stroke, num(el.StrokeWidth))
	default:
		return fmt.Errorf("unsupported element %T", e)
	}
	return nil
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
