package record

import (
	"encoding/binary"
	"errors"
	"fmt"

	"poolsim/internal/fixedtext"
	"poolsim/internal/real48"
)

// Identifier is the decoded assembly id.
type Identifier struct {
	Family, Serial, Index string
}

// String concatenates the parts into the assembly's unique id.
func (id Identifier) String() string {
	return id.Family + id.Serial + id.Index
}

// ControlHistory is one decoded control-program placement.
type ControlHistory struct {
	Campaign, Group, Slot uint8
	Assembly              string
	Bridge, Cart          uint16
}

// ControlProgram is the decoded control-program sub-record.
type ControlProgram struct {
	Serial        string
	Type          string
	Design        string
	Campaigns     uint8
	Effectiveness float64
	MaxCoreTime   uint16
	MaxPoolTime   uint16
	History       [ControlHistorySize]ControlHistory
	Loaded        string
	Unloaded      string
	Shipped       string
	CoreTime      uint32
	PoolTime      uint32
	CoreRemainder float64
	PoolRemainder float64
	Context       string
}

// ActivitySample pairs residual heat with activity at one exposure breakpoint.
type ActivitySample struct {
	ResidualHeat float64
	Activity     float64
}

// CampaignEntry is a used campaign slot. Dates stay as text; the inventory builder parses them.
type CampaignEntry struct {
	Slot          int
	Number        uint8
	Begin, End    string
	Control       string
	Burnup        float64
	EffectiveTime float64
	Cell60        uint8
	Cell360       uint8
	Bridge, Cart  uint8
}

// MoveEntry is one relocation log entry.
type MoveEntry struct {
	Bridge, Cart uint8
	When         string
}

// Masses are the isotope and bulk masses, grams unless noted.
type Masses struct {
	UO2       float64
	U58       float64 // U235 + U238
	U235Fresh float64 // U235 when the assembly was fresh
	U235      float64
	U236      float64
	U238      float64
	Pu238     float64
	Pu239     float64
	Pu240     float64
	Pu241     float64
	Pu242     float64
	Assembly  float64 // whole assembly, kg
}

// Record is the pass-2 result for one chunk.
type Record struct {
	ID       Identifier
	Control  ControlProgram
	Activity [ActivityPoints]ActivitySample

	Location string
	Way      uint16
	Spec     string
	Design   string
	Produced string
	Received string
	Loaded   string
	Unloaded string
	Shipped  string
	Burnup   float64

	Bridge, Cart  uint8
	Cell360       uint8
	Cell60        uint8
	CampaignsDone uint8
	LastCampaign  uint8

	Masses       Masses
	ResidualHeat float64
	Mark         string

	Campaigns []CampaignEntry // used slots only, in slot order
	Moves     [MoveSlots]MoveEntry

	Supplier      string
	Consignee     string
	Arrival       string
	Cask          string
	Waybill       string
	Owner         byte
	CaskSlot      uint8
	WaybillOut    string
	TotalActivity float64
	ActivityDate  string
	Context       string
}

// FieldError is a pass-2 failure of one field.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string { return fmt.Sprintf("field %s: %v", e.Field, e.Err) }

// Unwrap returns the codec error.
func (e *FieldError) Unwrap() error { return e.Err }

// Decoder is pass 2. It carries the code page explicitly; there is no package-level default.
type Decoder struct {
	CodePage fixedtext.CodePage
}

// NewDecoder returns a decoder for the given code page.
func NewDecoder(cp fixedtext.CodePage) *Decoder {
	return &Decoder{CodePage: cp}
}

// Decode applies field-level decoding to a pass-1 view. Every field is attempted; when any fails the
// returned error joins one FieldError per failed field and the record is nil.
func (d *Decoder) Decode(r RawRecord) (*Record, error) {
	fd := &fieldDecoder{cp: d.CodePage}
	out := &Record{}

	out.ID = Identifier{
		Family: fd.text("id.family", r.ID.Family),
		Serial: fd.text("id.serial", r.ID.Serial),
		Index:  fd.text("id.index", r.ID.Index),
	}
	out.Control = fd.control(r.Control)

	for i, a := range r.Activity {
		out.Activity[i] = ActivitySample{
			ResidualHeat: fd.real(fmt.Sprintf("activity[%d].heat", i), a.Heat),
			Activity:     fd.real(fmt.Sprintf("activity[%d].activity", i), a.Activity),
		}
	}

	out.Location = fd.text("location", r.Location)
	out.Way = word(r.Way)
	out.Spec = fd.text("spec", r.Spec)
	out.Design = fd.text("design", r.Design)
	out.Produced = fd.text("produced", r.Produced)
	out.Received = fd.text("received", r.Received)
	out.Loaded = fd.text("loaded", r.Loaded)
	out.Unloaded = fd.text("unloaded", r.Unloaded)
	out.Shipped = fd.text("shipped", r.Shipped)
	out.Burnup = fd.real("burnup", r.Burnup)

	out.Bridge = r.Bridge[0]
	out.Cart = r.Cart[0]
	out.Cell360 = r.Cell360[0]
	out.Cell60 = r.Cell60[0]
	out.CampaignsDone = r.CampaignsDone[0]
	out.LastCampaign = r.LastCampaign[0]

	out.Masses = Masses{
		UO2:       fd.real("uo2", r.UO2),
		U58:       fd.real("u58", r.U58),
		U235Fresh: fd.real("u235_fresh", r.U235Fresh),
		U235:      fd.real("u235", r.U235),
		U236:      fd.real("u236", r.U236),
		U238:      fd.real("u238", r.U238),
		Pu238:     fd.real("pu238", r.Pu238),
		Pu239:     fd.real("pu239", r.Pu239),
		Pu240:     fd.real("pu240", r.Pu240),
		Pu241:     fd.real("pu241", r.Pu241),
		Pu242:     fd.real("pu242", r.Pu242),
		Assembly:  fd.real("mass", r.Mass),
	}
	out.ResidualHeat = fd.real("residual_heat", r.ResidualHeat)
	out.Mark = fd.text("mark", r.Mark)

	for i, c := range r.Campaigns {
		if c.Unused() {
			continue
		}
		out.Campaigns = append(out.Campaigns, fd.campaign(i, c))
	}
	for i, m := range r.Moves {
		out.Moves[i] = MoveEntry{
			Bridge: m.Bridge[0],
			Cart:   m.Cart[0],
			When:   fd.text(fmt.Sprintf("moves[%d].when", i), m.When),
		}
	}

	out.Supplier = fd.text("supplier", r.Supplier)
	out.Consignee = fd.text("consignee", r.Consignee)
	out.Arrival = fd.text("arrival", r.Arrival)
	out.Cask = fd.text("cask", r.Cask)
	out.Waybill = fd.text("waybill", r.Waybill)
	out.Owner = r.Owner[0]
	out.CaskSlot = r.CaskSlot[0]
	out.WaybillOut = fd.text("waybill_out", r.WaybillOut)
	out.TotalActivity = fd.real("total_activity", r.TotalActivity)
	out.ActivityDate = fd.text("activity_date", r.ActivityDate)
	out.Context = fd.text("context", r.Context)

	if len(fd.errs) > 0 {
		return nil, errors.Join(fd.errs...)
	}
	return out, nil
}

// DecodeChunk validates, slices and decodes one chunk.
func (d *Decoder) DecodeChunk(c Chunk, recordSize int) (*Record, error) {
	if err := ValidateSize(c, recordSize); err != nil {
		return nil, err
	}
	return d.Decode(Slice(c))
}

type fieldDecoder struct {
	cp   fixedtext.CodePage
	errs []error
}

func (fd *fieldDecoder) fail(name string, err error) {
	fd.errs = append(fd.errs, &FieldError{Field: name, Err: err})
}

func (fd *fieldDecoder) text(name string, b []byte) string {
	s, err := fixedtext.Decode(b, fd.cp)
	if err != nil {
		fd.fail(name, err)
	}
	return s
}

func (fd *fieldDecoder) real(name string, b []byte) float64 {
	v, err := real48.Decode(b)
	if err != nil {
		fd.fail(name, err)
	}
	return v
}

func (fd *fieldDecoder) control(r RawControlProgram) ControlProgram {
	cp := ControlProgram{
		Serial:        fd.text("control.serial", r.Serial),
		Type:          fd.text("control.type", r.Type),
		Design:        fd.text("control.design", r.Design),
		Campaigns:     r.Campaigns[0],
		Effectiveness: fd.real("control.effectiveness", r.Effectiveness),
		MaxCoreTime:   word(r.MaxCoreTime),
		MaxPoolTime:   word(r.MaxPoolTime),
		Loaded:        fd.text("control.loaded", r.Loaded),
		Unloaded:      fd.text("control.unloaded", r.Unloaded),
		Shipped:       fd.text("control.shipped", r.Shipped),
		CoreTime:      binary.LittleEndian.Uint32(r.CoreTime),
		PoolTime:      binary.LittleEndian.Uint32(r.PoolTime),
		CoreRemainder: fd.real("control.core_remainder", r.CoreRemainder),
		PoolRemainder: fd.real("control.pool_remainder", r.PoolRemainder),
		Context:       fd.text("control.context", r.Context),
	}
	for i, h := range r.History {
		cp.History[i] = ControlHistory{
			Campaign: h.Campaign[0],
			Group:    h.Group[0],
			Slot:     h.Slot[0],
			Assembly: fd.text(fmt.Sprintf("control.history[%d].assembly", i), h.Assembly),
			Bridge:   word(h.Bridge),
			Cart:     word(h.Cart),
		}
	}
	return cp
}

func (fd *fieldDecoder) campaign(slot int, c RawCampaign) CampaignEntry {
	prefix := fmt.Sprintf("history.campaigns[%d].", slot)
	return CampaignEntry{
		Slot:          slot,
		Number:        c.Number[0],
		Begin:         fd.text(prefix+"begin", c.Begin),
		End:           fd.text(prefix+"end", c.End),
		Control:       fd.text(prefix+"control", c.Control),
		Burnup:        fd.real(prefix+"burnup", c.Burnup),
		EffectiveTime: fd.real(prefix+"effective_time", c.EffectiveTime),
		Cell60:        c.Cell60[0],
		Cell360:       c.Cell360[0],
		Bridge:        c.Bridge[0],
		Cart:          c.Cart[0],
	}
}

func word(b []byte) uint16 {
	return binary.LittleEndian.Uint16(b)
}
