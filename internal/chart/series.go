package chart

import (
	"fmt"
	"strconv"
	"strings"

	"coindash/internal/market"
)

const fillAlpha = "0.2"

// Point is one chart sample: x is the candle start in unix milliseconds,
// y the close price.
type Point struct {
	X int64   `json:"x"`
	Y float64 `json:"y"`
}

// Style is a validated per-symbol rendering style. Build with NewStyle so
// malformed colors fail at configuration time.
type Style struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Fill  string `json:"fill"`
}

// Series is a renderable line series for one symbol.
type Series struct {
	Name   string  `json:"name"`
	Color  string  `json:"color"`
	Fill   string  `json:"fill"`
	Points []Point `json:"points"`
}

// NewStyle validates a #rrggbb line color and derives the translucent fill
// from the same channels.
func NewStyle(name, color string) (Style, error) {
	fill, err := fillColor(color)
	if err != nil {
		return Style{}, err
	}
	return Style{Name: name, Color: color, Fill: fill}, nil
}

// Build maps each candle to an (x, y) point in input order. No resampling,
// no gap filling; an empty series maps to an empty series.
func Build(candles []market.Candle, style Style) Series {
	points := make([]Point, 0, len(candles))
	for _, c := range candles {
		points = append(points, Point{X: c.Start.UnixMilli(), Y: c.Close})
	}
	return Series{Name: style.Name, Color: style.Color, Fill: style.Fill, Points: points}
}

func fillColor(color string) (string, error) {
	hex := strings.TrimPrefix(color, "#")
	if len(hex) != 6 {
		return "", fmt.Errorf("color %q is not #rrggbb", color)
	}
	var rgb [3]uint64
	for i := range rgb {
		v, err := strconv.ParseUint(hex[2*i:2*i+2], 16, 8)
		if err != nil {
			return "", fmt.Errorf("color %q is not #rrggbb", color)
		}
		rgb[i] = v
	}
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", rgb[0], rgb[1], rgb[2], fillAlpha), nil
}
