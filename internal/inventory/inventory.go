package inventory

import (
	"fmt"
	"io"

	"poolsim/internal/fuel"
	"poolsim/internal/record"
)

// Inventory is the id-keyed assembly map together with the chunks it was decoded from.
// Only the schedule engine mutates assembly coordinates; everything else reads.
type Inventory struct {
	chunks []record.Chunk
	byID   map[string]*fuel.Assembly
	index  map[string]int // id -> chunk index
	order  []string
}

func newInventory(chunks []record.Chunk) *Inventory {
	return &Inventory{
		chunks: chunks,
		byID:   make(map[string]*fuel.Assembly, len(chunks)),
		index:  make(map[string]int, len(chunks)),
	}
}

func (inv *Inventory) insert(i int, a *fuel.Assembly) {
	inv.byID[a.ID] = a
	inv.index[a.ID] = i
	inv.order = append(inv.order, a.ID)
}

// Get returns the assembly with the given id.
func (inv *Inventory) Get(id string) (*fuel.Assembly, bool) {
	a, ok := inv.byID[id]
	return a, ok
}

// Len returns the number of loaded assemblies.
func (inv *Inventory) Len() int { return len(inv.order) }

// IDs returns the loaded ids in file order.
func (inv *Inventory) IDs() []string {
	return append([]string(nil), inv.order...)
}

// Assemblies returns the loaded assemblies in file order.
func (inv *Inventory) Assemblies() []*fuel.Assembly {
	out := make([]*fuel.Assembly, len(inv.order))
	for i, id := range inv.order {
		out[i] = inv.byID[id]
	}
	return out
}

// ChunkIndex returns the file position of the record an assembly was loaded from.
func (inv *Inventory) ChunkIndex(id string) (int, bool) {
	i, ok := inv.index[id]
	return i, ok
}

// BySection groups the assemblies by their current section, each group in file order.
func (inv *Inventory) BySection() map[fuel.Section][]*fuel.Assembly {
	out := make(map[fuel.Section][]*fuel.Assembly)
	for _, id := range inv.order {
		a := inv.byID[id]
		s := a.Section()
		out[s] = append(out[s], a)
	}
	return out
}

// WriteState re-emits every chunk in file order with the loaded assemblies' current coordinates patched in.
// Chunks that failed to decode or were dropped as duplicates are written unchanged. A coordinate that does
// not fit the record's byte fields, such as a container destination, is written as 0/0.
func (inv *Inventory) WriteState(w io.Writer) error {
	owner := make(map[int]*fuel.Assembly, len(inv.index))
	for id, i := range inv.index {
		owner[i] = inv.byID[id]
	}

	buf := make(record.Chunk, 0)
	for i, c := range inv.chunks {
		out := c
		if a, ok := owner[i]; ok {
			buf = append(buf[:0], c...)
			bridge, cart := a.Coordinate.Bridge, a.Coordinate.Cart
			if bridge < 0 || bridge > 0xFF || cart < 0 || cart > 0xFF {
				bridge, cart = 0, 0
			}
			if err := record.PatchCoordinate(buf, bridge, cart); err != nil {
				return fmt.Errorf("failed to patch %s: %w", a.ID, err)
			}
			out = buf
		}
		if _, err := w.Write(out); err != nil {
			return fmt.Errorf("failed to write state: %w", err)
		}
	}
	return nil
}
