package maprender

import (
	"fmt"
	"math"
	"sort"

	"github.com/leap-analytics/gymscope/internal/model"
)

// rgb is a color in 8-bit channels.
type rgb struct{ r, g, b uint8 }

func (c rgb) hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.r, c.g, c.b)
}

// Named colors matching the CSS names the original color ramps use.
var (
	colorRed        = rgb{0xff, 0x00, 0x00}
	colorOrange     = rgb{0xff, 0xa5, 0x00}
	colorYellow     = rgb{0xff, 0xff, 0x00}
	colorLightGreen = rgb{0x90, 0xee, 0x90}
	colorGreen      = rgb{0x00, 0x80, 0x00}
)

// Colormap linearly interpolates between evenly spaced color stops over
// [Min, Max]. Values outside the domain clamp to the end colors.
type Colormap struct {
	stops []rgb
	Min   float64
	Max   float64
}

// Color maps a metric value to a hex fill color.
func (c Colormap) Color(v float64) string {
	if len(c.stops) == 1 {
		return c.stops[0].hex()
	}

	// Degenerate domain (all values equal): use the ramp midpoint.
	t := 0.5
	if c.Max > c.Min {
		t = (v - c.Min) / (c.Max - c.Min)
	}
	if t <= 0 {
		return c.stops[0].hex()
	}
	if t >= 1 {
		return c.stops[len(c.stops)-1].hex()
	}

	segment := t * float64(len(c.stops)-1)
	i := int(segment)
	frac := segment - float64(i)
	lo, hi := c.stops[i], c.stops[i+1]
	return rgb{
		r: lerp(lo.r, hi.r, frac),
		g: lerp(lo.g, hi.g, frac),
		b: lerp(lo.b, hi.b, frac),
	}.hex()
}

// StopHexes returns the ramp's stop colors for the legend.
func (c Colormap) StopHexes() []string {
	out := make([]string, len(c.stops))
	for i, s := range c.stops {
		out[i] = s.hex()
	}
	return out
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

// quantile computes the q-quantile of values with linear interpolation
// between order statistics. Callers must not pass an empty slice.
func quantile(values []float64, q float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	frac := pos - float64(lo)
	if lo+1 >= len(sorted) {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[lo+1]-sorted[lo])*frac
}

// scaleFor selects the color scale and legend caption for a metric, computed
// over the input records only (not the full dataset).
//
// The opportunity score uses a 5th..95th percentile domain so a handful of
// extreme outliers cannot compress the visual contrast for the bulk of the
// records. The other metrics use a fixed 0 minimum and the observed maximum;
// distance reverses the ramp since far is bad. Unrecognized metrics fall back
// to the opportunity scale rather than failing the render.
func scaleFor(metric model.Metric, records []model.BlockGroup) (Colormap, string) {
	values := make([]float64, len(records))
	for i, r := range records {
		values[i] = metric.Value(r)
	}

	switch metric {
	case model.MetricGymsHalfMile:
		return Colormap{
			stops: []rgb{colorRed, colorOrange, colorYellow, colorGreen},
			Min:   0,
			Max:   maxOf(values),
		}, "Gyms within 0.5 miles (Green = More Gyms)"

	case model.MetricDistanceMiles:
		return Colormap{
			stops: []rgb{colorGreen, colorYellow, colorOrange, colorRed},
			Min:   0,
			Max:   maxOf(values),
		}, "Distance to Nearest Gym (Red = Farther)"

	default:
		return Colormap{
			stops: []rgb{colorRed, colorOrange, colorYellow, colorLightGreen, colorGreen},
			Min:   quantile(values, 0.05),
			Max:   quantile(values, 0.95),
		}, "Opportunity Score (Green = High Opportunity)"
	}
}

func maxOf(values []float64) float64 {
	var max float64
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	return max
}
