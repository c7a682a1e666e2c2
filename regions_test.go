package regionvar

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestRegionMapLookup(t *testing.T) {
	rm := testRegionMap()

	region, err := rm.Lookup(SourceTGP, "GBR")
	if err != nil {
		t.Fatal(err)
	}
	if region != "North" {
		t.Errorf("Lookup(TGP, GBR) == %q, want North", region)
	}

	// The same population name under another source is a different key.
	if _, err := rm.Lookup(SourceHGDP, "GBR"); err == nil {
		t.Error("Lookup(HGDP, GBR) should fail: the pair is not mapped")
	}
	if _, err := rm.Lookup(SourceTGP, "Atlantis"); err == nil {
		t.Error("Lookup of an unmapped population should fail")
	}
}

func TestRegionMapRegions(t *testing.T) {
	rm := testRegionMap()
	if rm.NumRegions() != 3 {
		t.Errorf("NumRegions == %d, want 3", rm.NumRegions())
	}
	want := []string{"East", "North", "South"}
	if got := rm.Regions(); !reflect.DeepEqual(got, want) {
		t.Errorf("Regions == %v, want %v", got, want)
	}
}

func TestDefaultRegionMap(t *testing.T) {
	rm := DefaultRegionMap()
	if rm.NumRegions() != 7 {
		t.Errorf("NumRegions == %d, want 7", rm.NumRegions())
	}

	for _, tc := range []struct {
		source     Source
		population string
		want       string
	}{
		{SourceTGP, "GBR", "Europe"},
		{SourceTGP, "YRI", "Africa"},
		{SourceHGDP, "Karitiana", "America"},
		{SourceHGDP, "Papuan", "Oceania"},
		{SourceSGDP, "Druze", "Middle East"},
		{SourceSGDP, "Punjabi", "Central South Asia"},
	} {
		got, err := rm.Lookup(tc.source, tc.population)
		if err != nil {
			t.Errorf("Lookup(%s, %s): %v", tc.source, tc.population, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Lookup(%s, %s) == %q, want %q", tc.source, tc.population, got, tc.want)
		}
	}
}

func TestLoadRegionMap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regions.json")
	err := os.WriteFile(path, []byte(`[
		{"source": "TGP", "population": "GBR", "region": "West"},
		{"source": "HGDP", "population": "Han", "region": "East"}
	]`), 0644)
	if err != nil {
		t.Fatal(err)
	}

	rm, err := LoadRegionMap(path)
	if err != nil {
		t.Fatal(err)
	}
	if rm.NumRegions() != 2 {
		t.Errorf("NumRegions == %d, want 2", rm.NumRegions())
	}
	if region, err := rm.Lookup(SourceHGDP, "Han"); err != nil || region != "East" {
		t.Errorf("Lookup(HGDP, Han) == %q, %v; want East", region, err)
	}
}

func TestLoadRegionMapRejectsBadInput(t *testing.T) {
	dir := t.TempDir()

	for name, body := range map[string]string{
		"empty.json":      `[]`,
		"incomplete.json": `[{"source": "TGP", "population": "GBR"}]`,
		"invalid.json":    `{"source": "TGP"}`,
	} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadRegionMap(path); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestIdentifyMetadataShapes(t *testing.T) {
	for _, tc := range []struct {
		metadata   string
		wantSource Source
		wantName   string
	}{
		{`{"sgdp_id": "S_Yoruba-1"}`, SourceSGDP, "S_Yoruba-1"},
		{`{"sample": "HGDP00001"}`, SourceHGDP, "HGDP00001"},
		{`{"individual_id": "HG00096"}`, SourceTGP, "HG00096"},
		{`{"sample": "HGDP00001", "extra": 7}`, SourceHGDP, "HGDP00001"},
	} {
		source, name, err := identify([]byte(tc.metadata))
		if err != nil {
			t.Errorf("identify(%s): %v", tc.metadata, err)
			continue
		}
		if source != tc.wantSource || name != tc.wantName {
			t.Errorf("identify(%s) == %s, %q; want %s, %q", tc.metadata, source, name, tc.wantSource, tc.wantName)
		}
	}
}

func TestIdentifyRejectsUnknownShape(t *testing.T) {
	for _, metadata := range []string{
		`{}`,
		`{"participant": "X1"}`,
		`not json`,
	} {
		if _, _, err := identify([]byte(metadata)); err == nil {
			t.Errorf("identify(%s): expected an error", metadata)
		}
	}
}
