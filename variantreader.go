package regionvar

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/carbocation/pfx"
)

// VariantReader iterates over the site records of a treeseq container in file
// order. Read returns nil after the last site; check Error afterwards.
type VariantReader struct {
	SitesSeen     uint32
	ts            *TreeSeq
	currentOffset int64
	err           error

	// Cached values
	buffer []byte
}

func (ts *TreeSeq) NewVariantReader() *VariantReader {
	return &VariantReader{
		currentOffset: ts.SitesStart,
		ts:            ts,
	}
}

func (vr *VariantReader) Error() error {
	return vr.err
}

func (vr *VariantReader) Read() *Variant {
	if vr.err != nil || vr.SitesSeen >= vr.ts.NSites {
		return nil
	}

	v, newOffset, err := vr.parseSiteAtOffset(vr.currentOffset)
	if err != nil {
		vr.err = pfx.Err(fmt.Errorf("site %d: %w", vr.SitesSeen, err))
		return nil
	}
	v.Site = vr.SitesSeen

	vr.SitesSeen++
	vr.currentOffset = newOffset

	return v
}

// parseSiteAtOffset does not mutate the VariantReader except for its reusable
// buffer.
func (vr *VariantReader) parseSiteAtOffset(offset int64) (*Variant, int64, error) {
	v := &Variant{}
	var err error

SiteLoop:
	for {
		// Position
		if err = vr.readNBytesAtOffset(8, offset); err != nil {
			break
		}
		offset += 8
		v.Position = math.Float64frombits(binary.LittleEndian.Uint64(vr.buffer[:8]))

		// NAlleles
		if err = vr.readNBytesAtOffset(2, offset); err != nil {
			break
		}
		offset += 2
		v.NAlleles = binary.LittleEndian.Uint16(vr.buffer[:2])
		if v.NAlleles == 0 {
			err = fmt.Errorf("site with zero alleles")
			break
		}

		// Allele slice
		var alleleLength int
		for i := uint16(0); i < v.NAlleles; i++ {
			if err = vr.readNBytesAtOffset(4, offset); err != nil {
				break SiteLoop
			}
			offset += 4
			alleleLength = int(binary.LittleEndian.Uint32(vr.buffer[:4]))

			if err = vr.readNBytesAtOffset(alleleLength, offset); err != nil {
				break SiteLoop
			}
			offset += int64(alleleLength)
			v.Alleles = append(v.Alleles, Allele(string(vr.buffer[:alleleLength])))
		}

		// Genotype column
		nNodes := int(vr.ts.NNodes)
		switch vr.ts.Layout {
		case ColumnBytes:
			if err = vr.readNBytesAtOffset(nNodes, offset); err != nil {
				break SiteLoop
			}
			offset += int64(nNodes)
			v.Genotypes = make([]uint8, nNodes)
			copy(v.Genotypes, vr.buffer[:nNodes])

		case ColumnPacked:
			bits := bitsPerCall(int(v.NAlleles))
			columnBytes := (nNodes*bits + 7) / 8
			if err = vr.readNBytesAtOffset(columnBytes, offset); err != nil {
				break SiteLoop
			}
			offset += int64(columnBytes)

			br := newBitReader(bytes.NewReader(vr.buffer[:columnBytes]))
			v.Genotypes = make([]uint8, nNodes)
			for node := 0; node < nNodes; node++ {
				var call uint64
				if call, err = br.ReadUint(bits); err != nil {
					break SiteLoop
				}
				if call >= uint64(v.NAlleles) {
					err = fmt.Errorf("call %d exceeds allele count %d", call, v.NAlleles)
					break SiteLoop
				}
				v.Genotypes[node] = uint8(call)
			}

		default:
			err = fmt.Errorf("unsupported genotype column layout %s", vr.ts.Layout)
		}

		break
	}

	return v, offset, err
}

func (vr *VariantReader) readNBytesAtOffset(n int, offset int64) error {
	if vr.buffer == nil || len(vr.buffer) < n {
		vr.buffer = make([]byte, n)
	}

	_, err := vr.ts.File.ReadAt(vr.buffer[:n], offset)
	return err
}
