package inventory

import (
	"time"

	"go.uber.org/zap"

	"poolsim/internal/fuel"
	"poolsim/internal/record"
)

// newAssembly derives the domain entity from a decoded record. Campaign dates that do not parse are kept
// as zero times; the heat model reports them when it needs them.
func newAssembly(rec *record.Record, log *zap.Logger) *fuel.Assembly {
	a := &fuel.Assembly{
		ID:         rec.ID.String(),
		Coordinate: fuel.Coordinate{Bridge: int(rec.Bridge), Cart: int(rec.Cart)},
		Isotopes: fuel.Isotopes{
			U235:  rec.Masses.U235,
			U236:  rec.Masses.U236,
			U238:  rec.Masses.U238,
			Pu238: rec.Masses.Pu238,
			Pu239: rec.Masses.Pu239,
			Pu240: rec.Masses.Pu240,
			Pu241: rec.Masses.Pu241,
			Pu242: rec.Masses.Pu242,
		},
		Mass:      rec.Masses.Assembly,
		Ownership: fuel.OwnershipFromCode(rec.Owner),

		ControlProgram: rec.Control.Serial,
		Design:         rec.Design,
		Produced:       rec.Produced,
		Loaded:         rec.Loaded,
		Unloaded:       rec.Unloaded,
		Burnup:         rec.Burnup,
		Cell60:         int(rec.Cell60),
		Cell360:        int(rec.Cell360),
		UO2:            rec.Masses.UO2,
		U235Fresh:      rec.Masses.U235Fresh,
	}
	a.IsotopeTotal = a.Isotopes.Total()

	for i, s := range rec.Activity {
		a.HeatCurve[i] = s.ResidualHeat
		a.Activity[i] = s.Activity
	}

	for _, c := range rec.Campaigns {
		a.History = append(a.History, fuel.Campaign{
			Slot:           c.Slot,
			Number:         int(c.Number),
			Begin:          parseOrZero(c.Begin, a.ID, "begin", log),
			End:            parseOrZero(c.End, a.ID, "end", log),
			ControlProgram: c.Control,
			BurnupEnd:      c.Burnup,
			EffectiveTime:  c.EffectiveTime,
			Position:       fuel.Coordinate{Bridge: int(c.Bridge), Cart: int(c.Cart)},
			Cell60:         int(c.Cell60),
			Cell360:        int(c.Cell360),
		})
	}
	return a
}

func parseOrZero(s, id, which string, log *zap.Logger) time.Time {
	t, err := fuel.ParseDate(s)
	if err != nil {
		log.Debug("Campaign date unreadable",
			zap.String("assembly", id),
			zap.String("field", which),
			zap.String("value", s))
		return time.Time{}
	}
	return t
}
