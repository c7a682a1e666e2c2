package regionvar

import (
	"testing"
)

func TestClassifyCarriers(t *testing.T) {
	// Three regions in the dataset.
	regionOf := map[int32]string{
		0: "A", 1: "A",
		2: "B",
		3: "C",
	}
	const numRegions = 3

	set := func(ids ...int32) map[int32]struct{} {
		s := map[int32]struct{}{}
		for _, id := range ids {
			s[id] = struct{}{}
		}
		return s
	}

	for _, tc := range []struct {
		name     string
		carriers map[int32]struct{}
		want     Category
	}{
		{"spanning every region", set(0, 2, 3), AllRegions},
		{"spanning two of three regions", set(0, 2), SomeRegions},
		{"two individuals in one region", set(0, 1), OneRegion},
		{"exactly one individual", set(0), OnePerson},
		{"one individual in a multi-region dataset is still one person", set(3), OnePerson},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyCarriers(tc.carriers, regionOf, numRegions); got != tc.want {
				t.Errorf("ClassifyCarriers == %s, want %s", got.Column(), tc.want.Column())
			}
		})
	}
}

// Exactly one category applies per carrier set: classification is a total
// function over non-empty carrier sets and the four outcomes are mutually
// exclusive by construction.
func TestClassifyCarriersTotal(t *testing.T) {
	regionOf := map[int32]string{0: "A", 1: "A", 2: "B", 3: "C"}

	for mask := 1; mask < 16; mask++ {
		carriers := map[int32]struct{}{}
		for id := int32(0); id < 4; id++ {
			if mask&(1<<id) != 0 {
				carriers[id] = struct{}{}
			}
		}
		got := ClassifyCarriers(carriers, regionOf, 3)
		switch got {
		case OnePerson, OneRegion, SomeRegions, AllRegions:
		default:
			t.Errorf("carrier set %b: unexpected category %d", mask, got)
		}
		if len(carriers) == 1 && got != OnePerson {
			t.Errorf("carrier set %b: single carrier classified %s", mask, got.Column())
		}
	}
}

func TestCategoryColumns(t *testing.T) {
	want := map[Category]string{
		AllRegions:  "all_regions",
		SomeRegions: "some_regions",
		OneRegion:   "one_region",
		OnePerson:   "one_person",
	}
	seen := map[string]bool{}
	for _, c := range Categories {
		col := c.Column()
		if col != want[c] {
			t.Errorf("%d.Column() == %q, want %q", c, col, want[c])
		}
		if seen[col] {
			t.Errorf("duplicate column %q", col)
		}
		seen[col] = true
	}
	if len(seen) != 4 {
		t.Errorf("Categories covers %d columns, want 4", len(seen))
	}
}
