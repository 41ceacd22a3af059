package fuel

// Section is a named storage area of the facility.
type Section int

const (
	SectionUnclassified Section = iota
	SectionCore
	SectionA
	SectionB
	SectionC
)

// Sections lists every section in report order.
var Sections = []Section{SectionCore, SectionA, SectionB, SectionC, SectionUnclassified}

// Classify maps a bridge coordinate to its section.
func Classify(bridge int) Section {
	switch {
	case bridge >= 1 && bridge <= 15:
		return SectionCore
	case bridge >= 43 && bridge <= 58:
		return SectionC
	case bridge >= 60 && bridge <= 75:
		return SectionA
	case bridge >= 76 && bridge <= 90:
		return SectionB
	default:
		return SectionUnclassified
	}
}

// InPool reports whether the section is one of the pool storage areas.
func (s Section) InPool() bool {
	return s == SectionA || s == SectionB || s == SectionC
}

func (s Section) String() string {
	switch s {
	case SectionCore:
		return "core"
	case SectionA:
		return "section-A"
	case SectionB:
		return "section-B"
	case SectionC:
		return "section-C"
	default:
		return "unclassified"
	}
}
