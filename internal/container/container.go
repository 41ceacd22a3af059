// Package container assigns spent assemblies to the cells of a 12-cell transport container.
package container

import (
	"fmt"
	"sort"

	"poolsim/internal/fault"
	"poolsim/internal/fuel"
	"poolsim/internal/schedule"
)

// Cells is the container's cell count.
const Cells = 12

// DestinationBase is added to the container number to form the bridge coordinate of a loaded assembly.
const DestinationBase = 1000

// CellOrder is a loading priority permutation of cell numbers 1..12.
type CellOrder [Cells]int

var (
	// OrderStandard loads the centre cells first.
	OrderStandard = CellOrder{7, 10, 12, 9, 8, 11, 1, 4, 5, 2, 3, 6}
	// OrderEdgeReserved leaves cells 1 and 5, nearest the neighbouring trains, for last.
	OrderEdgeReserved = CellOrder{7, 10, 12, 9, 8, 11, 2, 4, 3, 6, 1, 5}
)

// OrderByName resolves a configured order name.
func OrderByName(name string) (CellOrder, error) {
	switch name {
	case "", "standard":
		return OrderStandard, nil
	case "edge_reserved":
		return OrderEdgeReserved, nil
	default:
		return CellOrder{}, fault.New(fault.KindConfig, "cell order", "unknown order %q", name)
	}
}

// Candidate is an assembly selected for shipment with its heat at the shipment date.
type Candidate struct {
	Assembly *fuel.Assembly
	Heat     float64
}

// Cell is one container slot. Assembly is nil when the cell is empty.
type Cell struct {
	Number   int
	Assembly *fuel.Assembly
	Heat     float64
}

// Empty reports whether the cell holds nothing.
func (c Cell) Empty() bool { return c.Assembly == nil }

// Container is a packed transport container. Cells are indexed by number-1.
type Container struct {
	Number int
	Cells  [Cells]Cell
}

// Pack sorts candidates by ascending heat, stable in selection order, then walks order giving each cell the
// hottest remaining candidate. More than 12 candidates is a ConfigError.
func Pack(number int, candidates []Candidate, order CellOrder) (*Container, error) {
	if len(candidates) > Cells {
		return nil, fault.New(fault.KindConfig, fmt.Sprintf("container %d", number),
			"%d candidates for %d cells", len(candidates), Cells)
	}
	if err := order.validate(); err != nil {
		return nil, err
	}

	sorted := append([]Candidate(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Heat < sorted[j].Heat })

	c := &Container{Number: number}
	for i := range c.Cells {
		c.Cells[i].Number = i + 1
	}
	for _, n := range order {
		if len(sorted) == 0 {
			break
		}
		top := sorted[len(sorted)-1]
		sorted = sorted[:len(sorted)-1]
		c.Cells[n-1].Assembly = top.Assembly
		c.Cells[n-1].Heat = top.Heat
	}
	return c, nil
}

func (o CellOrder) validate() error {
	var seen [Cells + 1]bool
	for _, n := range o {
		if n < 1 || n > Cells || seen[n] {
			return fault.New(fault.KindConfig, "cell order", "%v is not a permutation of 1..%d", o, Cells)
		}
		seen[n] = true
	}
	return nil
}

// Cell returns the cell with the given number (1..12).
func (c *Container) Cell(n int) Cell { return c.Cells[n-1] }

// Count returns the number of occupied cells.
func (c *Container) Count() int {
	n := 0
	for _, cell := range c.Cells {
		if !cell.Empty() {
			n++
		}
	}
	return n
}

// Heat returns the summed heat of the loaded assemblies.
func (c *Container) Heat() float64 {
	var h float64
	for _, cell := range c.Cells {
		h += cell.Heat
	}
	return h
}

// RemovedBySection counts occupants by the pool section they are taken from. Occupants outside every section
// are reported as informational UnclassifiedSectionErrors; core occupants are counted under core.
func (c *Container) RemovedBySection() (map[fuel.Section]int, []error) {
	out := make(map[fuel.Section]int)
	var diags []error
	for _, cell := range c.Cells {
		if cell.Empty() {
			continue
		}
		s := cell.Assembly.Section()
		if s == fuel.SectionUnclassified {
			diags = append(diags, fault.New(fault.KindUnclassifiedSection, cell.Assembly.ID,
				"loaded from %d-%d, outside every section", cell.Assembly.Coordinate.Bridge, cell.Assembly.Coordinate.Cart))
			continue
		}
		out[s]++
	}
	return out, diags
}

// Relocations returns the shipment instructions that move each occupant into its cell, in cell order.
func (c *Container) Relocations() []schedule.Instruction {
	var out []schedule.Instruction
	for _, cell := range c.Cells {
		if cell.Empty() {
			continue
		}
		a := cell.Assembly
		out = append(out, schedule.Instruction{
			Code:        schedule.CodeFor(a),
			AssemblyID:  a.ID,
			From:        a.Coordinate,
			Destination: fuel.Coordinate{Bridge: DestinationBase + c.Number, Cart: cell.Number},
		})
	}
	return out
}
