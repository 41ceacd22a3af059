// Package fuel holds the domain entities of the spent-fuel pool: assemblies, their campaign history,
// bridge/cart coordinates and the storage sections those coordinates fall into.
package fuel

import (
	"strings"
	"time"
)

// Date layouts used by the inventory database and the relocation plans.
const (
	DateLayout      = "02.01.2006"
	TimestampLayout = "02.01.2006 15:04"
)

// ParseDate parses a dd.mm.yyyy calendar date in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
}

// ParseTimestamp parses a dd.mm.yyyy HH:MM window boundary in UTC. A bare date is accepted as midnight.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) == len(DateLayout) {
		return ParseDate(s)
	}
	return time.ParseInLocation(TimestampLayout, s, time.UTC)
}

// Midnight truncates t to the start of its day.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Coordinate is a two-axis crane position.
type Coordinate struct {
	Bridge int
	Cart   int
}

// Section classifies the coordinate.
func (c Coordinate) Section() Section { return Classify(c.Bridge) }

// Ownership is the category derived from the record's one-byte owner code.
type Ownership string

const (
	OwnershipA Ownership = "A"
	OwnershipB Ownership = "B"
)

// OwnershipFromCode maps a space to category A and anything else to category B.
func OwnershipFromCode(code byte) Ownership {
	if code == ' ' {
		return OwnershipA
	}
	return OwnershipB
}

// Isotopes is the isotope mass vector in grams.
type Isotopes struct {
	U235, U236, U238                  float64
	Pu238, Pu239, Pu240, Pu241, Pu242 float64
}

// Total sums the heavy-metal masses the plant reports. U236 is tracked but not part of the total.
func (i Isotopes) Total() float64 {
	return i.U235 + i.U238 + i.Pu238 + i.Pu239 + i.Pu240 + i.Pu241 + i.Pu242
}

// Campaign is one operating cycle in the core. A zero End means the record's end date was unreadable.
type Campaign struct {
	Slot           int
	Number         int
	Begin, End     time.Time
	ControlProgram string
	BurnupEnd      float64
	EffectiveTime  float64
	Position       Coordinate
	Cell60         int
	Cell360        int
}

// Points is the number of samples in an assembly's heat and activity curves.
const Points = 14

// Assembly is one fuel bundle. Coordinate is mutated only by the schedule engine.
type Assembly struct {
	ID         string
	Coordinate Coordinate
	Isotopes   Isotopes
	// IsotopeTotal is Isotopes.Total() at decode time.
	IsotopeTotal float64
	Mass         float64
	HeatCurve    [Points]float64
	Activity     [Points]float64
	History      []Campaign
	Ownership    Ownership

	ControlProgram string
	Design         string
	Produced       string
	Loaded         string
	Unloaded       string
	Burnup         float64
	Cell60         int
	Cell360        int
	UO2            float64
	U235Fresh      float64
}

// Section classifies the assembly's current coordinate.
func (a *Assembly) Section() Section { return a.Coordinate.Section() }

// LastCampaign returns the most recent campaign in history.
func (a *Assembly) LastCampaign() (Campaign, bool) {
	if len(a.History) == 0 {
		return Campaign{}, false
	}
	return a.History[len(a.History)-1], true
}
