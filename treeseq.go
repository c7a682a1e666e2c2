package regionvar

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/carbocation/pfx"
)

// MagicNumber identifies a treeseq container file.
const MagicNumber = "tseq"

// FormatVersion is the container version this package reads and writes.
const FormatVersion = 1

const (
	offsetMagicNumber  = 0
	offsetVersion      = 4
	offsetFlags        = 8
	offsetNPopulations = 12
	offsetNIndividuals = 16
	offsetNNodes       = 20
	offsetNSites       = 24
	headerSize         = 32
)

const flagPackedColumns = 1

// TreeSeq is a handle on one chromosome arm's worth of variant-call data: the
// population and individual metadata tables, the sample-node table, and a
// stream of variant sites. The small tables are loaded at Open; sites are
// consumed through a VariantReader.
type TreeSeq struct {
	FilePath     string
	File         *os.File
	Version      uint32
	Layout       ColumnLayout
	NPopulations uint32
	NIndividuals uint32
	NNodes       uint32
	NSites       uint32
	SitesStart   int64

	populations []json.RawMessage
	individuals []json.RawMessage
	nodes       []Node
}

// Node is one sample node: a single sequenced genome copy, owned by an
// individual and drawn from a population. Individual is -1 when the node
// belongs to no individual.
type Node struct {
	Individual int32
	Population int32
}

// Open reads the header and metadata tables of the treeseq container at
// path. The returned TreeSeq holds the file open for streaming sites; the
// caller must Close it.
func Open(path string) (*TreeSeq, error) {
	ts := &TreeSeq{
		FilePath: path,
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	ts.File = file

	if err := populateHeader(ts); err != nil {
		file.Close()
		return nil, pfx.Err(err)
	}

	if err := populateTables(ts); err != nil {
		file.Close()
		return nil, pfx.Err(err)
	}

	return ts, nil
}

// Close releases the underlying file.
func (ts *TreeSeq) Close() error {
	return ts.File.Close()
}

// Nodes returns the sample-node table. Genotype columns are indexed the same
// way as this slice.
func (ts *TreeSeq) Nodes() []Node {
	return ts.nodes
}

func populateHeader(ts *TreeSeq) error {
	buffer := make([]byte, 4)

	if err := ts.parseAtOffsetWithBuffer(offsetMagicNumber, buffer); err != nil {
		return pfx.Err(err)
	}
	if MagicNumber != string(buffer) {
		return pfx.Err(fmt.Errorf("treeseq header at offset %d is expected to hold the magic number %q but holds %v", offsetMagicNumber, MagicNumber, buffer))
	}

	if err := ts.parseAtOffsetWithBuffer(offsetVersion, buffer); err != nil {
		return pfx.Err(err)
	}
	ts.Version = binary.LittleEndian.Uint32(buffer)
	if ts.Version != FormatVersion {
		return pfx.Err(fmt.Errorf("treeseq container version %d is not supported (want %d)", ts.Version, FormatVersion))
	}

	if err := ts.parseAtOffsetWithBuffer(offsetFlags, buffer); err != nil {
		return pfx.Err(err)
	}
	if flags := binary.LittleEndian.Uint32(buffer); flags&flagPackedColumns != 0 {
		ts.Layout = ColumnPacked
	} else {
		ts.Layout = ColumnBytes
	}

	if err := ts.parseAtOffsetWithBuffer(offsetNPopulations, buffer); err != nil {
		return pfx.Err(err)
	}
	ts.NPopulations = binary.LittleEndian.Uint32(buffer)

	if err := ts.parseAtOffsetWithBuffer(offsetNIndividuals, buffer); err != nil {
		return pfx.Err(err)
	}
	ts.NIndividuals = binary.LittleEndian.Uint32(buffer)

	if err := ts.parseAtOffsetWithBuffer(offsetNNodes, buffer); err != nil {
		return pfx.Err(err)
	}
	ts.NNodes = binary.LittleEndian.Uint32(buffer)

	if err := ts.parseAtOffsetWithBuffer(offsetNSites, buffer); err != nil {
		return pfx.Err(err)
	}
	ts.NSites = binary.LittleEndian.Uint32(buffer)

	return nil
}

// populateTables reads the population, individual, and node tables that sit
// between the header and the first site record.
func populateTables(ts *TreeSeq) error {
	if _, err := ts.File.Seek(headerSize, io.SeekStart); err != nil {
		return pfx.Err(err)
	}
	counter := &countingReader{reader: bufio.NewReader(ts.File)}

	var err error
	ts.populations, err = readMetadataTable(counter, int(ts.NPopulations))
	if err != nil {
		return pfx.Err(fmt.Errorf("population table: %w", err))
	}

	ts.individuals, err = readMetadataTable(counter, int(ts.NIndividuals))
	if err != nil {
		return pfx.Err(fmt.Errorf("individual table: %w", err))
	}

	ts.nodes = make([]Node, ts.NNodes)
	buffer := make([]byte, 8)
	for i := range ts.nodes {
		if _, err := io.ReadFull(counter, buffer); err != nil {
			return pfx.Err(fmt.Errorf("node table: %w", err))
		}
		ts.nodes[i].Individual = int32(binary.LittleEndian.Uint32(buffer[:4]))
		ts.nodes[i].Population = int32(binary.LittleEndian.Uint32(buffer[4:]))
	}

	ts.SitesStart = headerSize + counter.n
	return nil
}

// readMetadataTable reads n length-prefixed JSON metadata records.
func readMetadataTable(r io.Reader, n int) ([]json.RawMessage, error) {
	records := make([]json.RawMessage, 0, n)
	buffer := make([]byte, 2)
	for i := 0; i < n; i++ {
		if _, err := io.ReadFull(r, buffer); err != nil {
			return nil, err
		}
		size := binary.LittleEndian.Uint16(buffer)
		record := make([]byte, size)
		if _, err := io.ReadFull(r, record); err != nil {
			return nil, err
		}
		records = append(records, json.RawMessage(record))
	}
	return records, nil
}

func (ts *TreeSeq) parseAtOffsetWithBuffer(offset int64, buffer []byte) error {
	_, err := ts.File.ReadAt(buffer, offset)
	return err
}

// countingReader tracks how many bytes have been consumed, so that the site
// stream's starting offset can be recorded after the variable-length tables.
type countingReader struct {
	reader io.Reader
	n      int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.reader.Read(p)
	c.n += int64(n)
	return n, err
}
