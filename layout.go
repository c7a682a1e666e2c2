package regionvar

// ColumnLayout describes how a site's genotype column is encoded in the
// container file.
type ColumnLayout uint32

const (
	// ColumnBytes stores one byte per sample-node call.
	ColumnBytes ColumnLayout = iota
	// ColumnPacked stores each call in the minimum number of bits for the
	// site's allele count, padded to a byte boundary per site.
	ColumnPacked
)

func (l ColumnLayout) String() string {
	switch l {
	case ColumnBytes:
		return "ColumnBytes"
	case ColumnPacked:
		return "ColumnPacked"

	default:
		return "Illegal selection"
	}
}
