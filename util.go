package regionvar

// bitsPerCall returns the width of one bit-packed genotype call at a site
// with nAlleles possible states (minimum 1 bit).
func bitsPerCall(nAlleles int) int {
	bits := 1
	for 1<<bits < nAlleles {
		bits++
	}
	return bits
}

func WhichSQLiteDriver() string {
	return whichSQLiteDriver
}
