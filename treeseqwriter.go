package regionvar

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/carbocation/pfx"
)

// TreeSeqTables holds the encoder-side metadata tables for one container
// file.
type TreeSeqTables struct {
	Populations []json.RawMessage
	Individuals []json.RawMessage
	Nodes       []Node
	Layout      ColumnLayout
}

// SiteData is one site to be encoded: its position, allele strings, and one
// genotype call per entry of the node table.
type SiteData struct {
	Position  float64
	Alleles   []Allele
	Genotypes []uint8
}

// WriteTreeSeq encodes a container stream: header, metadata tables, then the
// sites in order.
func WriteTreeSeq(w io.Writer, tables *TreeSeqTables, sites []SiteData) error {
	bufw := bufio.NewWriter(w)

	var flags uint32
	if tables.Layout == ColumnPacked {
		flags |= flagPackedColumns
	}

	header := make([]byte, headerSize)
	copy(header[offsetMagicNumber:], MagicNumber)
	binary.LittleEndian.PutUint32(header[offsetVersion:], FormatVersion)
	binary.LittleEndian.PutUint32(header[offsetFlags:], flags)
	binary.LittleEndian.PutUint32(header[offsetNPopulations:], uint32(len(tables.Populations)))
	binary.LittleEndian.PutUint32(header[offsetNIndividuals:], uint32(len(tables.Individuals)))
	binary.LittleEndian.PutUint32(header[offsetNNodes:], uint32(len(tables.Nodes)))
	binary.LittleEndian.PutUint32(header[offsetNSites:], uint32(len(sites)))
	if _, err := bufw.Write(header); err != nil {
		return pfx.Err(err)
	}

	if err := writeMetadataTable(bufw, tables.Populations); err != nil {
		return pfx.Err(err)
	}
	if err := writeMetadataTable(bufw, tables.Individuals); err != nil {
		return pfx.Err(err)
	}

	node := make([]byte, 8)
	for _, n := range tables.Nodes {
		binary.LittleEndian.PutUint32(node[:4], uint32(n.Individual))
		binary.LittleEndian.PutUint32(node[4:], uint32(n.Population))
		if _, err := bufw.Write(node); err != nil {
			return pfx.Err(err)
		}
	}

	for i, site := range sites {
		if err := writeSite(bufw, tables, site); err != nil {
			return pfx.Err(fmt.Errorf("site %d: %w", i, err))
		}
	}

	return pfx.Err(bufw.Flush())
}

func writeMetadataTable(w io.Writer, records []json.RawMessage) error {
	buffer := make([]byte, 2)
	for _, record := range records {
		if len(record) > math.MaxUint16 {
			return fmt.Errorf("metadata record of %d bytes exceeds the format's limit", len(record))
		}
		binary.LittleEndian.PutUint16(buffer, uint16(len(record)))
		if _, err := w.Write(buffer); err != nil {
			return err
		}
		if _, err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func writeSite(w io.Writer, tables *TreeSeqTables, site SiteData) error {
	if len(site.Genotypes) != len(tables.Nodes) {
		return fmt.Errorf("genotype column holds %d calls for %d nodes", len(site.Genotypes), len(tables.Nodes))
	}
	nAlleles := len(site.Alleles)
	if nAlleles == 0 || nAlleles > math.MaxUint16 {
		return fmt.Errorf("site has %d alleles", nAlleles)
	}

	buffer := make([]byte, 8)
	binary.LittleEndian.PutUint64(buffer, math.Float64bits(site.Position))
	if _, err := w.Write(buffer); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(buffer[:2], uint16(nAlleles))
	if _, err := w.Write(buffer[:2]); err != nil {
		return err
	}

	for _, allele := range site.Alleles {
		binary.LittleEndian.PutUint32(buffer[:4], uint32(len(allele)))
		if _, err := w.Write(buffer[:4]); err != nil {
			return err
		}
		if _, err := io.WriteString(w, string(allele)); err != nil {
			return err
		}
	}

	for _, call := range site.Genotypes {
		if int(call) >= nAlleles {
			return fmt.Errorf("call %d exceeds allele count %d", call, nAlleles)
		}
	}

	switch tables.Layout {
	case ColumnBytes:
		if _, err := w.Write(site.Genotypes); err != nil {
			return err
		}
	case ColumnPacked:
		bits := bitsPerCall(nAlleles)
		column := make([]byte, (len(site.Genotypes)*bits+7)/8)
		bit := 0
		for _, call := range site.Genotypes {
			for i := bits - 1; i >= 0; i-- {
				if call&(1<<uint(i)) != 0 {
					column[bit/8] |= 0x80 >> uint(bit%8)
				}
				bit++
			}
		}
		if _, err := w.Write(column); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported genotype column layout %s", tables.Layout)
	}

	return nil
}

// WriteTreeSeqFile encodes a container into a file.
func WriteTreeSeqFile(path string, tables *TreeSeqTables, sites []SiteData) error {
	f, err := os.Create(path)
	if err != nil {
		return pfx.Err(err)
	}
	if err := WriteTreeSeq(f, tables, sites); err != nil {
		f.Close()
		return err
	}
	return pfx.Err(f.Close())
}

// WriteArchive encodes a container into a zstd-compressed .tsz archive.
func WriteArchive(path string, tables *TreeSeqTables, sites []SiteData) error {
	f, err := os.Create(path)
	if err != nil {
		return pfx.Err(err)
	}
	enc, err := newArchiveWriter(f)
	if err != nil {
		f.Close()
		return pfx.Err(err)
	}
	if err := WriteTreeSeq(enc, tables, sites); err != nil {
		enc.Close()
		f.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return pfx.Err(err)
	}
	return pfx.Err(f.Close())
}
