// Package heat computes residual decay heat by piecewise-linear interpolation over an assembly's
// per-breakpoint heat curve.
package heat

import (
	"fmt"
	"math"
	"time"

	"poolsim/internal/fault"
	"poolsim/internal/fuel"
)

// DefaultBreakpoints are the exposure days, since the last campaign end, of the 14 heat samples.
var DefaultBreakpoints = [fuel.Points]int{0, 5, 15, 30, 90, 183, 365, 730, 1095, 1460, 1825, 3650, 7300, 10960}

// Model interpolates heat curves aligned to Breakpoints.
type Model struct {
	Breakpoints [fuel.Points]int
}

// NewModel returns a model over DefaultBreakpoints.
func NewModel() *Model {
	return &Model{Breakpoints: DefaultBreakpoints}
}

// Validate checks that the breakpoints are strictly increasing.
func (m *Model) Validate() error {
	for i := 1; i < len(m.Breakpoints); i++ {
		if m.Breakpoints[i] <= m.Breakpoints[i-1] {
			return fault.New(fault.KindConfig, "heat breakpoints",
				"breakpoint %d (%d) does not follow %d", i, m.Breakpoints[i], m.Breakpoints[i-1])
		}
	}
	return nil
}

// Exposure is the whole number of days from end to at, rounded toward negative infinity.
func Exposure(at, end time.Time) int {
	return int(math.Floor(at.Sub(end).Hours() / 24))
}

// Heat returns the assembly's residual heat at the given date. Failures are recoverable: the returned
// heat is 0 and the error is a HistoryError or DateRangeError diagnostic.
func (m *Model) Heat(a *fuel.Assembly, at time.Time) (float64, error) {
	last, ok := a.LastCampaign()
	if !ok {
		return 0, fault.New(fault.KindHistory, a.ID, "no campaign history")
	}
	if last.End.IsZero() {
		return 0, fault.New(fault.KindHistory, a.ID, "campaign %d has no end date", last.Number)
	}
	return m.Interpolate(a.HeatCurve, Exposure(at, last.End), a.ID)
}

// Interpolate evaluates curve at the given exposure. subject names the curve in errors.
func (m *Model) Interpolate(curve [fuel.Points]float64, exposure int, subject string) (float64, error) {
	bp := m.Breakpoints
	first, last := bp[0], bp[len(bp)-1]
	if exposure < first || exposure > last {
		return 0, fault.Wrap(fault.KindDateRange, subject,
			fmt.Errorf("exposure %d days outside [%d, %d]", exposure, first, last))
	}
	i := 0
	for bp[i] < exposure {
		i++
	}
	if bp[i] == exposure {
		return curve[i], nil
	}
	x1, x2 := float64(bp[i-1]), float64(bp[i])
	y1, y2 := curve[i-1], curve[i]
	return y1 + (float64(exposure)-x1)*(y2-y1)/(x2-x1), nil
}
