package regionvar

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/carbocation/pfx"
)

// RegionKey identifies one source population. Population names are reused
// between sources, so the source is part of the key.
type RegionKey struct {
	Source     Source
	Population string
}

// RegionMap is the immutable (source, population) -> region assignment used
// to resolve individual identities. The distinct-region count is fixed at
// construction and judged over the whole map, not over any one file's
// carriers: "all regions" means full regional coverage.
type RegionMap struct {
	regions    map[RegionKey]string
	numRegions int
}

func NewRegionMap(entries map[RegionKey]string) *RegionMap {
	regions := make(map[RegionKey]string, len(entries))
	distinct := map[string]struct{}{}
	for key, region := range entries {
		regions[key] = region
		distinct[region] = struct{}{}
	}
	return &RegionMap{regions: regions, numRegions: len(distinct)}
}

// Lookup returns the region for a source population. A missing pair is a
// configuration/data error: the caller should abort the run rather than
// guess or skip.
func (rm *RegionMap) Lookup(source Source, population string) (string, error) {
	region, ok := rm.regions[RegionKey{Source: source, Population: population}]
	if !ok {
		return "", fmt.Errorf("no region assignment for population %q from source %s", population, source)
	}
	return region, nil
}

// NumRegions returns the number of distinct regions across the whole map.
func (rm *RegionMap) NumRegions() int {
	return rm.numRegions
}

// Regions returns the sorted distinct region names.
func (rm *RegionMap) Regions() []string {
	distinct := map[string]struct{}{}
	for _, region := range rm.regions {
		distinct[region] = struct{}{}
	}
	names := make([]string, 0, len(distinct))
	for region := range distinct {
		names = append(names, region)
	}
	sort.Strings(names)
	return names
}

type regionEntry struct {
	Source     Source `json:"source"`
	Population string `json:"population"`
	Region     string `json:"region"`
}

// LoadRegionMap reads a region assignment table from a JSON file holding an
// array of {"source", "population", "region"} objects, replacing the built-in
// default table.
func LoadRegionMap(path string) (*RegionMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	var entries []regionEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, pfx.Err(fmt.Errorf("region map %s: %w", path, err))
	}
	m := make(map[RegionKey]string, len(entries))
	for _, e := range entries {
		if e.Source == "" || e.Population == "" || e.Region == "" {
			return nil, pfx.Err(fmt.Errorf("region map %s: entry %+v is incomplete", path, e))
		}
		m[RegionKey{Source: e.Source, Population: e.Population}] = e.Region
	}
	if len(m) == 0 {
		return nil, pfx.Err(fmt.Errorf("region map %s holds no entries", path))
	}
	return NewRegionMap(m), nil
}

// DefaultRegionMap returns the built-in assignment of source populations to
// the seven coarse regions. Population spellings follow each source's own
// metadata.
func DefaultRegionMap() *RegionMap {
	entries := map[RegionKey]string{}
	add := func(source Source, region string, populations ...string) {
		for _, p := range populations {
			entries[RegionKey{Source: source, Population: p}] = region
		}
	}

	// 1000 Genomes Project, by super-population.
	add(SourceTGP, "Africa", "ACB", "ASW", "ESN", "GWD", "LWK", "MSL", "YRI")
	add(SourceTGP, "America", "CLM", "MXL", "PEL", "PUR")
	add(SourceTGP, "Central South Asia", "BEB", "GIH", "ITU", "PJL", "STU")
	add(SourceTGP, "East Asia", "CDX", "CHB", "CHS", "JPT", "KHV")
	add(SourceTGP, "Europe", "CEU", "FIN", "GBR", "IBS", "TSI")

	// Human Genome Diversity Project.
	add(SourceHGDP, "Africa",
		"BantuKenya", "BantuSouthAfrica", "BiakaPygmy", "Mandenka",
		"MbutiPygmy", "San", "Yoruba")
	add(SourceHGDP, "America",
		"Colombian", "Karitiana", "Maya", "Pima", "Surui")
	add(SourceHGDP, "Central South Asia",
		"Balochi", "Brahui", "Burusho", "Hazara", "Kalash", "Makrani",
		"Pathan", "Sindhi", "Uygur")
	add(SourceHGDP, "East Asia",
		"Cambodian", "Dai", "Daur", "Han", "Hezhen", "Japanese", "Lahu",
		"Miao", "Mongola", "Naxi", "Oroqen", "She", "Tu", "Tujia", "Xibo",
		"Yakut", "Yi")
	add(SourceHGDP, "Europe",
		"Adygei", "Basque", "French", "Italian", "Orcadian", "Russian",
		"Sardinian", "Tuscan")
	add(SourceHGDP, "Middle East",
		"Bedouin", "Druze", "Mozabite", "Palestinian")
	add(SourceHGDP, "Oceania",
		"Melanesian", "Papuan")

	// Simons Genome Diversity Project.
	add(SourceSGDP, "Africa",
		"BantuHerero", "BantuKenya", "BantuTswana", "Biaka", "Dinka",
		"Esan", "Gambian", "Ju_hoan_North", "Khomani_San", "Luhya", "Luo",
		"Mandenka", "Masai", "Mbuti", "Mende", "Mozabite", "Saharawi",
		"Somali", "Yoruba")
	add(SourceSGDP, "America",
		"Chane", "Karitiana", "Mayan", "Mixe", "Mixtec", "Nahua",
		"Piapoco", "Pima", "Quechua", "Surui", "Zapotec")
	add(SourceSGDP, "Central South Asia",
		"Balochi", "Bengali", "Brahmin", "Brahui", "Burusho", "Hazara",
		"Irula", "Kalash", "Kapu", "Khonda_Dora", "Kusunda", "Madiga",
		"Makrani", "Mala", "Pathan", "Punjabi", "Relli", "Sindhi",
		"Telugu", "Yadava")
	add(SourceSGDP, "East Asia",
		"Aleut", "Altaian", "Ami", "Atayal", "Burmese", "Cambodian",
		"Chukchi", "Dai", "Daur", "Eskimo_Chaplin", "Eskimo_Naukan",
		"Eskimo_Sireniki", "Even", "Han", "Hezhen", "Itelman", "Japanese",
		"Kinh", "Korean", "Kyrgyz", "Lahu", "Mansi", "Miao", "Mongola",
		"Naxi", "Oroqen", "She", "Thai", "Tlingit", "Tu", "Tubalar",
		"Tujia", "Ulchi", "Uygur", "Xibo", "Yakut", "Yi")
	add(SourceSGDP, "Europe",
		"Abkhasian", "Adygei", "Albanian", "Basque", "Bulgarian",
		"Chechen", "Crete", "Czech", "English", "Estonian", "Finnish",
		"French", "Georgian", "Greek", "Hungarian", "Icelandic",
		"Lezgin", "North_Ossetian", "Norwegian", "Orcadian", "Polish",
		"Russian", "Saami", "Sardinian", "Spanish", "Tajik", "Tuscan",
		"Ukrainian")
	add(SourceSGDP, "Middle East",
		"Armenian", "BedouinB", "Druze", "Iranian", "Iraqi_Jew",
		"Jordanian", "Palestinian", "Samaritan", "Turkish",
		"Yemenite_Jew")
	add(SourceSGDP, "Oceania",
		"Australian", "Bougainville", "Dusun", "Hawaiian", "Igorot",
		"Maori", "Papuan")

	return NewRegionMap(entries)
}
