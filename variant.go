package regionvar

// Allele is one observed state at a variant site. The empty string represents
// a missing call.
type Allele string

// Variant is a single site's worth of data: the site position, the allele
// strings observed there, and one genotype call per sample node. Index 0 of
// Alleles is the ancestral state. Variants are transient: consumed by the
// aggregation scan and discarded, never persisted.
type Variant struct {
	Site      uint32
	Position  float64
	NAlleles  uint16
	Alleles   []Allele
	Genotypes []uint8
}

// Carriers returns the sample-node indexes whose call at this site is
// alleleIndex.
func (v *Variant) Carriers(alleleIndex int) []int32 {
	var nodes []int32
	for node, call := range v.Genotypes {
		if int(call) == alleleIndex {
			nodes = append(nodes, int32(node))
		}
	}
	return nodes
}
