package tradebook

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/etnz/tradebook/date"
	"github.com/shopspring/decimal"
)

// DailyEarning is the earning of one owner on one settlement day.
type DailyEarning struct {
	Owner      string          `json:"owner"`
	Date       date.Date       `json:"date"`
	Earning    decimal.Decimal `json:"earning"`
	Cumulative decimal.Decimal `json:"cumulative"` // running sum for the owner
}

// DailyCumulative groups earnings by owner and settlement day, sorted by owner
// then date, with a running sum per owner.
//
// The result does not depend on the order of rows.
func DailyCumulative(rows []PricedTransaction) []DailyEarning {
	type key struct {
		owner string
		day   date.Date
	}
	sums := make(map[key]decimal.Decimal)
	for _, r := range rows {
		on, ok := r.Settlement()
		if !ok || !r.HasEarning() {
			continue
		}
		k := key{r.Owner, on}
		sums[k] = sums[k].Add(r.Earning.Decimal())
	}

	res := make([]DailyEarning, 0, len(sums))
	for k, v := range sums {
		res = append(res, DailyEarning{Owner: k.owner, Date: k.day, Earning: v})
	}
	slices.SortFunc(res, func(a, b DailyEarning) int {
		return cmp.Or(strings.Compare(a.Owner, b.Owner), a.Date.Time().Compare(b.Date.Time()))
	})

	var running decimal.Decimal
	for i := range res {
		if i == 0 || res[i].Owner != res[i-1].Owner {
			running = decimal.Zero
		}
		running = running.Add(res[i].Earning)
		res[i].Cumulative = running
	}
	return res
}

// Point is a chart sample.
type Point struct {
	X time.Time `json:"x"`
	Y float64   `json:"y"`
}

// Segment is a run of points of the same sign.
type Segment []Point

// Curve returns the cumulative earning of owner as chart points.
func Curve(daily []DailyEarning, owner string) []Point {
	var res []Point
	for _, d := range daily {
		if d.Owner == owner {
			res = append(res, Point{X: d.Date.Time(), Y: d.Cumulative.InexactFloat64()})
		}
	}
	return res
}

// ZeroCrossingSegments splits series into positive and negative segments.
//
// A point with y >= 0 is positive. When the sign flips between two samples the
// crossing is interpolated: the current segment ends at (x, 0) and the next one
// starts there.
func ZeroCrossingSegments(series []Point) (pos, neg []Segment) {
	if len(series) == 0 {
		return nil, nil
	}
	flush := func(s Segment, positive bool) {
		if positive {
			pos = append(pos, s)
		} else {
			neg = append(neg, s)
		}
	}

	positive := series[0].Y >= 0
	current := Segment{series[0]}
	for i := 1; i < len(series); i++ {
		p0, p1 := series[i-1], series[i]
		if (p1.Y >= 0) == positive {
			current = append(current, p1)
			continue
		}
		t := -p0.Y / (p1.Y - p0.Y)
		cross := Point{X: p0.X.Add(time.Duration(float64(p1.X.Sub(p0.X)) * t)), Y: 0}
		flush(append(current, cross), positive)
		positive = !positive
		current = Segment{cross, p1}
	}
	flush(current, positive)
	return pos, neg
}
