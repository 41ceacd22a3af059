package record

import (
	"fmt"

	"poolsim/internal/fixedtext"
)

// Template describes a synthetic record for building inventory files in tests of this and dependent
// packages. Every value goes through the same offset table the decoder reads.
type Template struct {
	Family, Serial, Index string
	Control               string
	Design                string
	Bridge, Cart          int
	Owner                 byte
	Heat                  [ActivityPoints]float64
	Activity              [ActivityPoints]float64
	Campaigns             []TemplateCampaign
	Masses                Masses
	Unloaded              string
}

// TemplateCampaign is one campaign slot of a Template.
type TemplateCampaign struct {
	Number     int
	Begin, End string
	Burnup     float64
}

// Build encodes t into a fresh chunk.
func (t Template) Build(cp fixedtext.CodePage) (Chunk, error) {
	c := make(Chunk, Size)
	w := NewWriter(cp)

	owner := t.Owner
	if owner == 0 {
		owner = ' '
	}

	steps := []func() error{
		func() error { return w.SetText(c, "id.family", t.Family) },
		func() error { return w.SetText(c, "id.serial", t.Serial) },
		func() error { return w.SetText(c, "id.index", t.Index) },
		func() error { return w.SetText(c, "control.serial", t.Control) },
		func() error { return w.SetText(c, "design", t.Design) },
		func() error { return w.SetText(c, "unloaded", t.Unloaded) },
		func() error { return w.SetByte(c, "bridge", t.Bridge) },
		func() error { return w.SetByte(c, "cart", t.Cart) },
		func() error { return w.SetByte(c, "owner", int(owner)) },
		func() error { return w.SetReal48(c, "uo2", t.Masses.UO2) },
		func() error { return w.SetReal48(c, "u235", t.Masses.U235) },
		func() error { return w.SetReal48(c, "u236", t.Masses.U236) },
		func() error { return w.SetReal48(c, "u238", t.Masses.U238) },
		func() error { return w.SetReal48(c, "pu238", t.Masses.Pu238) },
		func() error { return w.SetReal48(c, "pu239", t.Masses.Pu239) },
		func() error { return w.SetReal48(c, "pu240", t.Masses.Pu240) },
		func() error { return w.SetReal48(c, "pu241", t.Masses.Pu241) },
		func() error { return w.SetReal48(c, "pu242", t.Masses.Pu242) },
		func() error { return w.SetReal48(c, "mass", t.Masses.Assembly) },
	}
	for i := 0; i < ActivityPoints; i++ {
		i := i
		steps = append(steps,
			func() error { return w.SetReal48(c, fmt.Sprintf("activity[%d].heat", i), t.Heat[i]) },
			func() error { return w.SetReal48(c, fmt.Sprintf("activity[%d].activity", i), t.Activity[i]) },
		)
	}
	if len(t.Campaigns) > CampaignSlots {
		return nil, fmt.Errorf("template %s: %d campaigns, at most %d", t.Family+t.Serial+t.Index, len(t.Campaigns), CampaignSlots)
	}
	for i, camp := range t.Campaigns {
		camp := camp
		p := fmt.Sprintf("history.campaigns[%d].", i)
		steps = append(steps,
			func() error { return w.SetByte(c, p+"number", camp.Number) },
			func() error { return w.SetText(c, p+"begin", camp.Begin) },
			func() error { return w.SetText(c, p+"end", camp.End) },
			func() error { return w.SetReal48(c, p+"burnup", camp.Burnup) },
		)
	}

	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return c, nil
}
