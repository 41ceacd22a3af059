// Package record decodes the fixed-size assembly records of the plant inventory database.
//
// Decoding runs in two passes. Slice (pass 1) cuts a chunk into named byte views at the offsets of
// AssemblyLayout; it is pure and cannot fail once the chunk size has been validated. Decoder.Decode
// (pass 2) turns those views into values with the real48 and fixedtext codecs, collecting failures
// per field.
package record

import (
	"poolsim/internal/fault"
)

// Chunk is one raw inventory slot, exactly Size bytes.
type Chunk []byte

// ValidateSize checks a chunk against the externally supplied record size.
func ValidateSize(c Chunk, recordSize int) error {
	if recordSize != Size {
		return fault.New(fault.KindConfig, "record size", "layout is %d bytes, configured %d", Size, recordSize)
	}
	if len(c) != recordSize {
		return fault.New(fault.KindFormat, "record size", "chunk is %d bytes, want %d", len(c), recordSize)
	}
	return nil
}

// RawIdentifier holds the three id text fields.
type RawIdentifier struct {
	Family, Serial, Index []byte
}

// RawControlHistory is one control-program placement entry.
type RawControlHistory struct {
	Campaign, Group, Slot, Assembly, Bridge, Cart []byte
}

// RawControlProgram holds the control-program sub-record.
type RawControlProgram struct {
	Serial, Type, Design     []byte
	Campaigns                []byte
	Effectiveness            []byte
	MaxCoreTime, MaxPoolTime []byte
	History                  [ControlHistorySize]RawControlHistory
	Loaded, Unloaded         []byte
	Shipped                  []byte
	CoreTime, PoolTime       []byte
	CoreRemainder            []byte
	PoolRemainder            []byte
	Context                  []byte
}

// RawActivity is one (residual heat, activity) sample.
type RawActivity struct {
	Heat, Activity []byte
}

// RawCampaign is one campaign slot of the movement history.
type RawCampaign struct {
	Number, Begin, End, Control []byte
	Burnup, EffectiveTime       []byte
	Cell60, Cell360             []byte
	Bridge, Cart                []byte
}

// Unused reports whether the slot was never written: its begin-date field is all zero bytes.
func (c RawCampaign) Unused() bool {
	for _, b := range c.Begin {
		if b != 0 {
			return false
		}
	}
	return true
}

// RawMove is one entry of the relocation log.
type RawMove struct {
	Bridge, Cart, When []byte
}

// RawRecord is the pass-1 view of a chunk. Every field aliases the chunk's bytes.
type RawRecord struct {
	ID       RawIdentifier
	Control  RawControlProgram
	Activity [ActivityPoints]RawActivity

	Location, Way, Spec, Design                   []byte
	Produced, Received, Loaded, Unloaded, Shipped []byte
	Burnup                                        []byte
	Bridge, Cart, Cell360, Cell60                 []byte
	CampaignsDone, LastCampaign                   []byte

	UO2, U58, U235Fresh               []byte
	U235, U236, U238                  []byte
	Pu238, Pu239, Pu240, Pu241, Pu242 []byte
	Mass, ResidualHeat                []byte
	Mark                              []byte

	Campaigns [CampaignSlots]RawCampaign
	Moves     [MoveSlots]RawMove

	Supplier, Consignee, Arrival, Cask, Waybill []byte
	Owner, CaskSlot                             []byte
	WaybillOut                                  []byte
	TotalActivity, ActivityDate, Context        []byte
	Tail                                        []byte
}

// Slice is pass 1. The chunk must already have passed ValidateSize.
func Slice(c Chunk) RawRecord {
	b := []byte(c)
	a := AssemblyLayout
	var r RawRecord

	id := a.view(b, "id")
	r.ID = RawIdentifier{
		Family: IdentifierLayout.view(id, "family"),
		Serial: IdentifierLayout.view(id, "serial"),
		Index:  IdentifierLayout.view(id, "index"),
	}

	r.Control = sliceControl(a.view(b, "control"))

	for i := range r.Activity {
		e := a.elem(b, "activity", i)
		r.Activity[i] = RawActivity{
			Heat:     ActivityLayout.view(e, "heat"),
			Activity: ActivityLayout.view(e, "activity"),
		}
	}

	r.Location = a.view(b, "location")
	r.Way = a.view(b, "way")
	r.Spec = a.view(b, "spec")
	r.Design = a.view(b, "design")
	r.Produced = a.view(b, "produced")
	r.Received = a.view(b, "received")
	r.Loaded = a.view(b, "loaded")
	r.Unloaded = a.view(b, "unloaded")
	r.Shipped = a.view(b, "shipped")
	r.Burnup = a.view(b, "burnup")
	r.Bridge = a.view(b, "bridge")
	r.Cart = a.view(b, "cart")
	r.Cell360 = a.view(b, "cell360")
	r.Cell60 = a.view(b, "cell60")
	r.CampaignsDone = a.view(b, "campaigns_done")
	r.LastCampaign = a.view(b, "last_campaign")

	r.UO2 = a.view(b, "uo2")
	r.U58 = a.view(b, "u58")
	r.U235Fresh = a.view(b, "u235_fresh")
	r.U235 = a.view(b, "u235")
	r.U236 = a.view(b, "u236")
	r.U238 = a.view(b, "u238")
	r.Pu238 = a.view(b, "pu238")
	r.Pu239 = a.view(b, "pu239")
	r.Pu240 = a.view(b, "pu240")
	r.Pu241 = a.view(b, "pu241")
	r.Pu242 = a.view(b, "pu242")
	r.Mass = a.view(b, "mass")
	r.ResidualHeat = a.view(b, "residual_heat")
	r.Mark = a.view(b, "mark")

	h := a.view(b, "history")
	for i := range r.Campaigns {
		r.Campaigns[i] = sliceCampaign(HistoryLayout.elem(h, "campaigns", i))
	}
	for i := range r.Moves {
		m := HistoryLayout.elem(h, "moves", i)
		r.Moves[i] = RawMove{
			Bridge: MoveLayout.view(m, "bridge"),
			Cart:   MoveLayout.view(m, "cart"),
			When:   MoveLayout.view(m, "when"),
		}
	}

	r.Supplier = a.view(b, "supplier")
	r.Consignee = a.view(b, "consignee")
	r.Arrival = a.view(b, "arrival")
	r.Cask = a.view(b, "cask")
	r.Waybill = a.view(b, "waybill")
	r.Owner = a.view(b, "owner")
	r.CaskSlot = a.view(b, "cask_slot")
	r.WaybillOut = a.view(b, "waybill_out")
	r.TotalActivity = a.view(b, "total_activity")
	r.ActivityDate = a.view(b, "activity_date")
	r.Context = a.view(b, "context")
	r.Tail = a.view(b, "tail")
	return r
}

func sliceControl(b []byte) RawControlProgram {
	l := ControlProgramLayout
	cp := RawControlProgram{
		Serial:        l.view(b, "serial"),
		Type:          l.view(b, "type"),
		Design:        l.view(b, "design"),
		Campaigns:     l.view(b, "campaigns"),
		Effectiveness: l.view(b, "effectiveness"),
		MaxCoreTime:   l.view(b, "max_core_time"),
		MaxPoolTime:   l.view(b, "max_pool_time"),
		Loaded:        l.view(b, "loaded"),
		Unloaded:      l.view(b, "unloaded"),
		Shipped:       l.view(b, "shipped"),
		CoreTime:      l.view(b, "core_time"),
		PoolTime:      l.view(b, "pool_time"),
		CoreRemainder: l.view(b, "core_remainder"),
		PoolRemainder: l.view(b, "pool_remainder"),
		Context:       l.view(b, "context"),
	}
	for i := range cp.History {
		e := l.elem(b, "history", i)
		h := ControlHistoryLayout
		cp.History[i] = RawControlHistory{
			Campaign: h.view(e, "campaign"),
			Group:    h.view(e, "group"),
			Slot:     h.view(e, "slot"),
			Assembly: h.view(e, "assembly"),
			Bridge:   h.view(e, "bridge"),
			Cart:     h.view(e, "cart"),
		}
	}
	return cp
}

func sliceCampaign(b []byte) RawCampaign {
	l := CampaignLayout
	return RawCampaign{
		Number:        l.view(b, "number"),
		Begin:         l.view(b, "begin"),
		End:           l.view(b, "end"),
		Control:       l.view(b, "control"),
		Burnup:        l.view(b, "burnup"),
		EffectiveTime: l.view(b, "effective_time"),
		Cell60:        l.view(b, "cell60"),
		Cell360:       l.view(b, "cell360"),
		Bridge:        l.view(b, "bridge"),
		Cart:          l.view(b, "cart"),
	}
}
