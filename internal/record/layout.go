package record

import (
	"fmt"
	"strconv"
	"strings"
)

// FieldKind is the storage type of a field.
type FieldKind uint8

const (
	KindBlock    FieldKind = iota // nested record (Elem set, Count == 0)
	KindArray                     // Count consecutive Elem records
	KindByte                      // uint8
	KindWord                      // uint16, little-endian
	KindLongWord                  // uint32, little-endian
	KindReal48                    // 6-byte Real48
	KindText                      // length-prefixed text, Size = capacity
	KindOpaque                    // undocumented bytes, carried verbatim
)

// Field is one entry of an offset table.
type Field struct {
	Name   string
	Offset int
	Size   int
	Kind   FieldKind
	Elem   *Layout // KindBlock, KindArray
	Count  int     // KindArray
}

// Layout is the offset table of one record type. It is the single place offsets are written down;
// slicing (pass 1) and the write-back helpers both read it.
type Layout struct {
	Name   string
	Size   int
	Fields []Field
	index  map[string]int
}

func newLayout(name string, size int, fields ...Field) *Layout {
	l := &Layout{Name: name, Size: size, Fields: fields, index: make(map[string]int, len(fields))}
	end := 0
	for i, f := range fields {
		if f.Offset != end {
			panic(fmt.Sprintf("record: layout %s: field %s at %d, want %d", name, f.Name, f.Offset, end))
		}
		switch f.Kind {
		case KindBlock:
			if f.Elem.Size != f.Size {
				panic(fmt.Sprintf("record: layout %s: block %s size %d, elem %d", name, f.Name, f.Size, f.Elem.Size))
			}
		case KindArray:
			if f.Elem.Size*f.Count != f.Size {
				panic(fmt.Sprintf("record: layout %s: array %s size %d, want %d", name, f.Name, f.Size, f.Elem.Size*f.Count))
			}
		}
		l.index[f.Name] = i
		end = f.Offset + f.Size
	}
	if end != size {
		panic(fmt.Sprintf("record: layout %s covers %d bytes, want %d", name, end, size))
	}
	return l
}

// field returns the named field; unknown names are programming errors.
func (l *Layout) field(name string) Field {
	i, ok := l.index[name]
	if !ok {
		panic(fmt.Sprintf("record: layout %s has no field %q", l.Name, name))
	}
	return l.Fields[i]
}

// view returns the sub-slice of b holding the named field. b must be l.Size long.
func (l *Layout) view(b []byte, name string) []byte {
	f := l.field(name)
	return b[f.Offset : f.Offset+f.Size : f.Offset+f.Size]
}

// elem returns element i of the named array field.
func (l *Layout) elem(b []byte, name string, i int) []byte {
	f := l.field(name)
	if f.Kind != KindArray || i < 0 || i >= f.Count {
		panic(fmt.Sprintf("record: layout %s: %s[%d] out of range", l.Name, name, i))
	}
	start := f.Offset + i*f.Elem.Size
	return b[start : start+f.Elem.Size : start+f.Elem.Size]
}

// Locate resolves a dotted path such as "history.campaigns[2].end" to an absolute offset and its leaf field.
func (l *Layout) Locate(path string) (int, Field, error) {
	cur := l
	base := 0
	parts := strings.Split(path, ".")
	for n, part := range parts {
		name, idx, hasIdx, err := splitIndex(part)
		if err != nil {
			return 0, Field{}, fmt.Errorf("path %q: %w", path, err)
		}
		i, ok := cur.index[name]
		if !ok {
			return 0, Field{}, fmt.Errorf("path %q: %s has no field %q", path, cur.Name, name)
		}
		f := cur.Fields[i]
		off := base + f.Offset
		last := n == len(parts)-1

		switch {
		case hasIdx:
			if f.Kind != KindArray {
				return 0, Field{}, fmt.Errorf("path %q: %s is not an array", path, name)
			}
			if idx < 0 || idx >= f.Count {
				return 0, Field{}, fmt.Errorf("path %q: index %d out of range [0,%d)", path, idx, f.Count)
			}
			off += idx * f.Elem.Size
			if last {
				return off, Field{Name: part, Offset: off, Size: f.Elem.Size, Kind: KindBlock, Elem: f.Elem}, nil
			}
			cur, base = f.Elem, off
		case f.Kind == KindBlock:
			if last {
				return off, f, nil
			}
			cur, base = f.Elem, off
		default:
			if !last {
				return 0, Field{}, fmt.Errorf("path %q: %s is a leaf", path, name)
			}
			return off, f, nil
		}
	}
	return 0, Field{}, fmt.Errorf("path %q: empty", path)
}

func splitIndex(part string) (name string, idx int, ok bool, err error) {
	open := strings.IndexByte(part, '[')
	if open < 0 {
		return part, 0, false, nil
	}
	if !strings.HasSuffix(part, "]") {
		return "", 0, false, fmt.Errorf("malformed index in %q", part)
	}
	idx, err = strconv.Atoi(part[open+1 : len(part)-1])
	if err != nil {
		return "", 0, false, fmt.Errorf("malformed index in %q: %w", part, err)
	}
	return part[:open], idx, true, nil
}

// Sizes of the fixed record types.
const (
	Size               = 1749 // one inventory slot as stored on disk
	DocumentedSize     = 1686 // size declared by the legacy type; the rest is an undocumented tail
	ActivityPoints     = 14
	ControlHistorySize = 15
	CampaignSlots      = 5
	MoveSlots          = 13
)

// IdentifierLayout: assembly id (family + serial + index code).
var IdentifierLayout = newLayout("identifier", 26,
	Field{Name: "family", Offset: 0, Size: 11, Kind: KindText},
	Field{Name: "serial", Offset: 11, Size: 11, Kind: KindText},
	Field{Name: "index", Offset: 22, Size: 4, Kind: KindText},
)

// ControlHistoryLayout: one past placement of a control program.
var ControlHistoryLayout = newLayout("control_history", 28,
	Field{Name: "campaign", Offset: 0, Size: 1, Kind: KindByte},
	Field{Name: "group", Offset: 1, Size: 1, Kind: KindByte},
	Field{Name: "slot", Offset: 2, Size: 1, Kind: KindByte},
	Field{Name: "assembly", Offset: 3, Size: 21, Kind: KindText},
	Field{Name: "bridge", Offset: 24, Size: 2, Kind: KindWord},
	Field{Name: "cart", Offset: 26, Size: 2, Kind: KindWord},
)

// ControlProgramLayout: the control program (absorber) installed in the assembly.
var ControlProgramLayout = newLayout("control_program", 592,
	Field{Name: "serial", Offset: 0, Size: 11, Kind: KindText},
	Field{Name: "type", Offset: 11, Size: 31, Kind: KindText},
	Field{Name: "design", Offset: 42, Size: 31, Kind: KindText},
	Field{Name: "campaigns", Offset: 73, Size: 1, Kind: KindByte},
	Field{Name: "effectiveness", Offset: 74, Size: 6, Kind: KindReal48},
	Field{Name: "max_core_time", Offset: 80, Size: 2, Kind: KindWord},
	Field{Name: "max_pool_time", Offset: 82, Size: 2, Kind: KindWord},
	Field{Name: "history", Offset: 84, Size: 420, Kind: KindArray, Elem: ControlHistoryLayout, Count: ControlHistorySize},
	Field{Name: "loaded", Offset: 504, Size: 11, Kind: KindText},
	Field{Name: "unloaded", Offset: 515, Size: 11, Kind: KindText},
	Field{Name: "shipped", Offset: 526, Size: 11, Kind: KindText},
	Field{Name: "core_time", Offset: 537, Size: 4, Kind: KindLongWord},
	Field{Name: "pool_time", Offset: 541, Size: 4, Kind: KindLongWord},
	Field{Name: "core_remainder", Offset: 545, Size: 6, Kind: KindReal48},
	Field{Name: "pool_remainder", Offset: 551, Size: 6, Kind: KindReal48},
	Field{Name: "context", Offset: 557, Size: 35, Kind: KindText},
)

// ActivityLayout: one (residual heat, activity) sample.
var ActivityLayout = newLayout("activity", 12,
	Field{Name: "heat", Offset: 0, Size: 6, Kind: KindReal48},
	Field{Name: "activity", Offset: 6, Size: 6, Kind: KindReal48},
)

// CampaignLayout: one operating campaign of the assembly.
var CampaignLayout = newLayout("campaign", 50,
	Field{Name: "number", Offset: 0, Size: 1, Kind: KindByte},
	Field{Name: "begin", Offset: 1, Size: 11, Kind: KindText},
	Field{Name: "end", Offset: 12, Size: 11, Kind: KindText},
	Field{Name: "control", Offset: 23, Size: 11, Kind: KindText},
	Field{Name: "burnup", Offset: 34, Size: 6, Kind: KindReal48},
	Field{Name: "effective_time", Offset: 40, Size: 6, Kind: KindReal48},
	Field{Name: "cell60", Offset: 46, Size: 1, Kind: KindByte},
	Field{Name: "cell360", Offset: 47, Size: 1, Kind: KindByte},
	Field{Name: "bridge", Offset: 48, Size: 1, Kind: KindByte},
	Field{Name: "cart", Offset: 49, Size: 1, Kind: KindByte},
)

// MoveLayout: one logged relocation.
var MoveLayout = newLayout("move", 13,
	Field{Name: "bridge", Offset: 0, Size: 1, Kind: KindByte},
	Field{Name: "cart", Offset: 1, Size: 1, Kind: KindByte},
	Field{Name: "when", Offset: 2, Size: 11, Kind: KindText},
)

// HistoryLayout: campaigns followed by the move log.
var HistoryLayout = newLayout("history", 419,
	Field{Name: "campaigns", Offset: 0, Size: 250, Kind: KindArray, Elem: CampaignLayout, Count: CampaignSlots},
	Field{Name: "moves", Offset: 250, Size: 169, Kind: KindArray, Elem: MoveLayout, Count: MoveSlots},
)

// AssemblyLayout: one inventory slot.
var AssemblyLayout = newLayout("assembly", Size,
	Field{Name: "id", Offset: 0, Size: 26, Kind: KindBlock, Elem: IdentifierLayout},
	Field{Name: "control", Offset: 26, Size: 592, Kind: KindBlock, Elem: ControlProgramLayout},
	Field{Name: "activity", Offset: 618, Size: 168, Kind: KindArray, Elem: ActivityLayout, Count: ActivityPoints},
	Field{Name: "location", Offset: 786, Size: 5, Kind: KindText},
	Field{Name: "way", Offset: 791, Size: 2, Kind: KindWord},
	Field{Name: "spec", Offset: 793, Size: 31, Kind: KindText},
	Field{Name: "design", Offset: 824, Size: 31, Kind: KindText},
	Field{Name: "produced", Offset: 855, Size: 11, Kind: KindText},
	Field{Name: "received", Offset: 866, Size: 11, Kind: KindText},
	Field{Name: "loaded", Offset: 877, Size: 11, Kind: KindText},
	Field{Name: "unloaded", Offset: 888, Size: 11, Kind: KindText},
	Field{Name: "shipped", Offset: 899, Size: 11, Kind: KindText},
	Field{Name: "burnup", Offset: 910, Size: 6, Kind: KindReal48},
	Field{Name: "bridge", Offset: 916, Size: 1, Kind: KindByte},
	Field{Name: "cart", Offset: 917, Size: 1, Kind: KindByte},
	Field{Name: "cell360", Offset: 918, Size: 1, Kind: KindByte},
	Field{Name: "cell60", Offset: 919, Size: 1, Kind: KindByte},
	Field{Name: "campaigns_done", Offset: 920, Size: 1, Kind: KindByte},
	Field{Name: "last_campaign", Offset: 921, Size: 1, Kind: KindByte},
	Field{Name: "uo2", Offset: 922, Size: 6, Kind: KindReal48},
	Field{Name: "u58", Offset: 928, Size: 6, Kind: KindReal48},
	Field{Name: "u235_fresh", Offset: 934, Size: 6, Kind: KindReal48},
	Field{Name: "u235", Offset: 940, Size: 6, Kind: KindReal48},
	Field{Name: "u236", Offset: 946, Size: 6, Kind: KindReal48},
	Field{Name: "u238", Offset: 952, Size: 6, Kind: KindReal48},
	Field{Name: "pu238", Offset: 958, Size: 6, Kind: KindReal48},
	Field{Name: "pu239", Offset: 964, Size: 6, Kind: KindReal48},
	Field{Name: "pu240", Offset: 970, Size: 6, Kind: KindReal48},
	Field{Name: "pu241", Offset: 976, Size: 6, Kind: KindReal48},
	Field{Name: "pu242", Offset: 982, Size: 6, Kind: KindReal48},
	Field{Name: "mass", Offset: 988, Size: 6, Kind: KindReal48},
	Field{Name: "residual_heat", Offset: 994, Size: 6, Kind: KindReal48},
	Field{Name: "mark", Offset: 1000, Size: 11, Kind: KindText},
	Field{Name: "history", Offset: 1011, Size: 419, Kind: KindBlock, Elem: HistoryLayout},
	Field{Name: "supplier", Offset: 1430, Size: 23, Kind: KindText},
	Field{Name: "consignee", Offset: 1453, Size: 20, Kind: KindText},
	Field{Name: "arrival", Offset: 1473, Size: 20, Kind: KindText},
	Field{Name: "cask", Offset: 1493, Size: 20, Kind: KindText},
	Field{Name: "waybill", Offset: 1513, Size: 72, Kind: KindText},
	Field{Name: "owner", Offset: 1585, Size: 1, Kind: KindByte},
	Field{Name: "cask_slot", Offset: 1586, Size: 1, Kind: KindByte},
	Field{Name: "waybill_out", Offset: 1587, Size: 50, Kind: KindText},
	Field{Name: "total_activity", Offset: 1637, Size: 6, Kind: KindReal48},
	Field{Name: "activity_date", Offset: 1643, Size: 11, Kind: KindText},
	Field{Name: "context", Offset: 1654, Size: 32, Kind: KindText},
	Field{Name: "tail", Offset: DocumentedSize, Size: Size - DocumentedSize, Kind: KindOpaque},
)
