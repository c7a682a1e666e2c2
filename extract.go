package regionvar

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/carbocation/pfx"
	log "github.com/sirupsen/logrus"
)

// ArchiveSuffix is appended to a treeseq file name to form its compressed
// archive name.
const ArchiveSuffix = ".tsz"

// ExtractedName strips the archive suffix from a .tsz name.
func ExtractedName(archive string) string {
	return strings.TrimSuffix(archive, ArchiveSuffix)
}

// Extract decompresses <downloadFolder>/<treeseqFile>.tsz into
// <extractionFolder>/<treeseqFile>, leaving the archive in place. The
// extraction is staged through a temporary file so an interrupted run never
// leaves a truncated container behind.
func Extract(downloadFolder, extractionFolder, treeseqFile string) error {
	archive := filepath.Join(downloadFolder, treeseqFile+ArchiveSuffix)
	dst := filepath.Join(extractionFolder, treeseqFile)

	in, err := os.Open(archive)
	if err != nil {
		return pfx.Err(err)
	}
	defer in.Close()

	dec, err := newArchiveReader(in)
	if err != nil {
		return pfx.Err(err)
	}
	defer dec.Close()

	tmp, err := os.CreateTemp(extractionFolder, treeseqFile+".*")
	if err != nil {
		return pfx.Err(err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, dec)
	if err != nil {
		tmp.Close()
		return pfx.Err(err)
	}
	if err := tmp.Close(); err != nil {
		return pfx.Err(err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return pfx.Err(err)
	}

	log.Infof("extracted %s (%d bytes) to %s", archive, n, dst)
	return nil
}

// Delete removes an extracted treeseq container to reclaim space. A missing
// file is not an error.
func Delete(extractionFolder, treeseqFile string) error {
	path := filepath.Join(extractionFolder, treeseqFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	log.Infof("deleting %s", path)
	return pfx.Err(os.Remove(path))
}
