package regionvar

// Category is the breadth classification of one variant-allele event: how
// widely the allele's carriers are distributed across regions.
type Category uint8

const (
	OnePerson Category = iota
	OneRegion
	SomeRegions
	AllRegions
)

// Categories lists every category in chart stacking order.
var Categories = [...]Category{AllRegions, SomeRegions, OneRegion, OnePerson}

// Column returns the category's counter column name in the individual table
// (also the key in the num_regions totals table).
func (c Category) Column() string {
	switch c {
	case OnePerson:
		return "one_person"
	case OneRegion:
		return "one_region"
	case SomeRegions:
		return "some_regions"
	case AllRegions:
		return "all_regions"

	default:
		return "Illegal selection"
	}
}

// Label returns the category's human-readable name as used in reports and
// chart legends.
func (c Category) Label() string {
	switch c {
	case OnePerson:
		return "One person"
	case OneRegion:
		return "One region"
	case SomeRegions:
		return "Some regions"
	case AllRegions:
		return "All regions"

	default:
		return "Illegal selection"
	}
}

// ClassifyCarriers assigns exactly one category to an allele's deduplicated
// carrier set. A single carrier individual is one_person regardless of its
// region; otherwise the category depends on how many of the dataset's
// numRegions distinct regions the carriers span.
func ClassifyCarriers(carriers map[int32]struct{}, regionOf map[int32]string, numRegions int) Category {
	if len(carriers) == 1 {
		return OnePerson
	}

	seen := map[string]struct{}{}
	for id := range carriers {
		seen[regionOf[id]] = struct{}{}
	}

	switch {
	case len(seen) == 1:
		return OneRegion
	case len(seen) < numRegions:
		return SomeRegions
	default:
		return AllRegions
	}
}
