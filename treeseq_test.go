package regionvar

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// The test dataset: six individuals from all three sources across three
// regions, twelve diploid sample nodes, five sites.
//
//	i0 HG00096   TGP  GBR      North  nodes 0,1
//	i1 HG00097   TGP  GBR      North  nodes 2,3
//	i2 NA18939   TGP  JPT      East   nodes 4,5
//	i3 NA18486   TGP  YRI      South  nodes 6,7
//	i4 S_French-1 SGDP French  North  nodes 8,9
//	i5 HGDP00511 HGDP Orcadian North  nodes 10,11
func testRegionMap() *RegionMap {
	return NewRegionMap(map[RegionKey]string{
		{SourceTGP, "GBR"}:       "North",
		{SourceTGP, "JPT"}:       "East",
		{SourceTGP, "YRI"}:       "South",
		{SourceSGDP, "French"}:   "North",
		{SourceHGDP, "Orcadian"}: "North",
	})
}

func testTables(layout ColumnLayout) *TreeSeqTables {
	return &TreeSeqTables{
		Populations: []json.RawMessage{
			json.RawMessage(`{"name":"GBR"}`),
			json.RawMessage(`{"name":"JPT"}`),
			json.RawMessage(`{"name":"YRI"}`),
			json.RawMessage(`{"name":"French"}`),
			json.RawMessage(`{"name":"Orcadian"}`),
		},
		Individuals: []json.RawMessage{
			json.RawMessage(`{"individual_id":"HG00096"}`),
			json.RawMessage(`{"individual_id":"HG00097"}`),
			json.RawMessage(`{"individual_id":"NA18939"}`),
			json.RawMessage(`{"individual_id":"NA18486"}`),
			json.RawMessage(`{"sgdp_id":"S_French-1"}`),
			json.RawMessage(`{"sample":"HGDP00511"}`),
		},
		Nodes: []Node{
			{0, 0}, {0, 0},
			{1, 0}, {1, 0},
			{2, 1}, {2, 1},
			{3, 2}, {3, 2},
			{4, 3}, {4, 3},
			{5, 4}, {5, 4},
		},
		Layout: layout,
	}
}

func testSites() []SiteData {
	return []SiteData{
		// Carriers span North, East, South: all regions.
		{Position: 100, Alleles: []Allele{"A", "T"},
			Genotypes: []uint8{1, 0, 0, 0, 1, 0, 1, 0, 0, 0, 0, 0}},
		// Carriers span North, East: some regions.
		{Position: 200, Alleles: []Allele{"C", "G"},
			Genotypes: []uint8{0, 1, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0}},
		// Two carriers, both North: one region.
		{Position: 300, Alleles: []Allele{"G", "A"},
			Genotypes: []uint8{1, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0}},
		// Both carrier nodes belong to one individual: one person.
		{Position: 400, Alleles: []Allele{"T", "C"},
			Genotypes: []uint8{0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 0, 0}},
		// Allele 1 is a missing call and must be skipped; allele 2 spans
		// South and North: some regions.
		{Position: 500, Alleles: []Allele{"A", "", "T"},
			Genotypes: []uint8{0, 0, 0, 0, 0, 0, 0, 2, 0, 0, 2, 0}},
	}
}

// writeTestTreeSeq encodes the test dataset into dir and returns its path.
func writeTestTreeSeq(t *testing.T, dir string, layout ColumnLayout) string {
	t.Helper()
	path := filepath.Join(dir, "test_chr1_p.trees")
	if err := WriteTreeSeqFile(path, testTables(layout), testSites()); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpenHeader(t *testing.T) {
	path := writeTestTreeSeq(t, t.TempDir(), ColumnBytes)
	ts, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer ts.Close()

	if ts.Version != FormatVersion {
		t.Errorf("Version == %d, want %d", ts.Version, FormatVersion)
	}
	if ts.Layout != ColumnBytes {
		t.Errorf("Layout == %s, want %s", ts.Layout, ColumnBytes)
	}
	if ts.NPopulations != 5 || ts.NIndividuals != 6 || ts.NNodes != 12 || ts.NSites != 5 {
		t.Errorf("table counts == %d/%d/%d/%d, want 5/6/12/5",
			ts.NPopulations, ts.NIndividuals, ts.NNodes, ts.NSites)
	}
	if len(ts.Nodes()) != 12 {
		t.Errorf("len(Nodes()) == %d, want 12", len(ts.Nodes()))
	}
	if got := ts.Nodes()[8]; got.Individual != 4 || got.Population != 3 {
		t.Errorf("Nodes()[8] == %+v, want {4 3}", got)
	}
}

func TestOpenRejectsWrongMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bogus.trees")
	if err := WriteTreeSeqFile(path, testTables(ColumnBytes), nil); err != nil {
		t.Fatal(err)
	}
	// Overwrite the magic number.
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteAt([]byte("nope"), 0); err != nil {
		t.Fatal(err)
	}
	f.Close()

	if _, err := Open(path); err == nil {
		t.Error("Open accepted a file with a bad magic number")
	}
}

func TestVariantReaderRoundtrip(t *testing.T) {
	for _, layout := range []ColumnLayout{ColumnBytes, ColumnPacked} {
		t.Run(layout.String(), func(t *testing.T) {
			path := writeTestTreeSeq(t, t.TempDir(), layout)
			ts, err := Open(path)
			if err != nil {
				t.Fatal(err)
			}
			defer ts.Close()

			want := testSites()
			vr := ts.NewVariantReader()
			for i := 0; ; i++ {
				v := vr.Read()
				if v == nil {
					if i != len(want) {
						t.Fatalf("reader stopped after %d sites, want %d", i, len(want))
					}
					break
				}
				if v.Position != want[i].Position {
					t.Errorf("site %d: Position == %v, want %v", i, v.Position, want[i].Position)
				}
				if !reflect.DeepEqual(v.Alleles, want[i].Alleles) {
					t.Errorf("site %d: Alleles == %v, want %v", i, v.Alleles, want[i].Alleles)
				}
				if !reflect.DeepEqual(v.Genotypes, want[i].Genotypes) {
					t.Errorf("site %d: Genotypes == %v, want %v", i, v.Genotypes, want[i].Genotypes)
				}
			}
			if vr.Error() != nil {
				t.Fatal(vr.Error())
			}
			if vr.SitesSeen != uint32(len(want)) {
				t.Errorf("SitesSeen == %d, want %d", vr.SitesSeen, len(want))
			}
		})
	}
}

func TestVariantCarriers(t *testing.T) {
	v := &Variant{
		Alleles:   []Allele{"A", "", "T"},
		Genotypes: []uint8{0, 0, 0, 0, 0, 0, 0, 2, 0, 0, 2, 0},
	}
	got := v.Carriers(2)
	want := []int32{7, 10}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Carriers(2) == %v, want %v", got, want)
	}
	if carriers := v.Carriers(1); carriers != nil {
		t.Errorf("Carriers(1) == %v, want none", carriers)
	}
}

func TestIndividualsResolveIdentity(t *testing.T) {
	path := writeTestTreeSeq(t, t.TempDir(), ColumnBytes)
	ts, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer ts.Close()

	records, err := ts.Individuals(testRegionMap())
	if err != nil {
		t.Fatal(err)
	}
	want := []IndividualRecord{
		{0, "HG00096", SourceTGP, "GBR", "North"},
		{1, "HG00097", SourceTGP, "GBR", "North"},
		{2, "NA18939", SourceTGP, "JPT", "East"},
		{3, "NA18486", SourceTGP, "YRI", "South"},
		{4, "S_French-1", SourceSGDP, "French", "North"},
		{5, "HGDP00511", SourceHGDP, "Orcadian", "North"},
	}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("Individuals == %+v, want %+v", records, want)
	}
}

func TestIndividualsRejectUnknownPopulation(t *testing.T) {
	path := writeTestTreeSeq(t, t.TempDir(), ColumnBytes)
	ts, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer ts.Close()

	// A map that lacks the TGP/YRI assignment.
	rm := NewRegionMap(map[RegionKey]string{
		{SourceTGP, "GBR"}:       "North",
		{SourceTGP, "JPT"}:       "East",
		{SourceSGDP, "French"}:   "North",
		{SourceHGDP, "Orcadian"}: "North",
	})
	if _, err := ts.Individuals(rm); err == nil {
		t.Error("Individuals resolved against a map with a missing population")
	}
}
