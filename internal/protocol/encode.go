package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ivlev/rviewer/internal/figure"
	"github.com/ivlev/rviewer/internal/geom"
)

// Encode writes f back as a protocol line. Every field is written
// explicitly, so Decode(Encode(f)) yields f regardless of the defaults in
// effect. Text containing a double quote or a ';' cannot be represented.
func Encode(f figure.Figure) string {
	var b lineBuilder
	switch f := f.(type) {
	case figure.Rect:
		b.word("rect")
		b.point("c", f.Center)
		b.point("s", f.Size)
		b.float("w", f.Width)
		b.bool("f", f.Fill)
		b.kv("a", f.Align.String())
		b.common(f.Params)
	case figure.Circle:
		b.word("circle")
		b.point("c", f.Center)
		b.float("r", f.Radius)
		if f.Arc != nil {
			b.point("arc", geom.Pt(f.Arc.From, f.Arc.To))
		}
		b.float("w", f.Width)
		b.bool("f", f.Fill)
		b.common(f.Params)
	case figure.Line:
		b.word("line")
		b.point("s", f.Start)
		b.point("f", f.Finish)
		b.float("w", f.Width)
		b.common(f.Params)
	case figure.Grid:
		b.word("grid")
		b.point("c", f.Center)
		b.point("s", f.Size)
		b.kv("d", fmt.Sprintf("(%d,%d)", f.Cols, f.Rows))
		b.float("w", f.Width)
		b.kv("a", f.Align.String())
		b.common(f.Params)
	case figure.Poly:
		b.word("poly")
		for _, p := range f.Points {
			b.point("p", p)
		}
		b.float("w", f.Width)
		b.bool("f", f.Fill)
		b.common(f.Params)
	case figure.Text:
		b.word("text")
		b.kv("m", `"`+strings.ReplaceAll(f.Text, "\n", ";")+`"`)
		b.point("c", f.Center)
		b.float("s", f.Font)
		b.kv("a", f.Align.String())
		b.common(f.Params)
	case figure.Message:
		return "msg " + f.Text
	}
	return b.String()
}

type lineBuilder struct {
	strings.Builder
}

func (b *lineBuilder) word(s string) {
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
	b.WriteString(s)
}

func (b *lineBuilder) kv(k, v string) {
	b.word(k + "=" + v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (b *lineBuilder) float(k string, v float64) {
	b.kv(k, formatFloat(v))
}

func (b *lineBuilder) point(k string, p geom.Point) {
	b.kv(k, "("+formatFloat(p.X)+","+formatFloat(p.Y)+")")
}

func (b *lineBuilder) bool(k string, v bool) {
	if v {
		b.kv(k, "1")
	} else {
		b.kv(k, "0")
	}
}

func (b *lineBuilder) common(c figure.CommonParams) {
	b.kv("col", fmt.Sprintf("(%d,%d,%d,%d)", c.Color.R, c.Color.G, c.Color.B, c.Color.A))
	for _, t := range c.Tags {
		b.kv("t", t)
	}
	if c.Keep {
		b.word("k")
	}
	if c.HasID {
		b.kv("id", strconv.Itoa(c.ID))
	}
	if c.Curve != "" {
		b.kv("fu", c.Curve)
	}
}
