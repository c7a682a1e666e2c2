package regionvar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	log "github.com/sirupsen/logrus"
)

// treeseqPlaceholder is the substitution token in URL templates.
const treeseqPlaceholder = "{treeseq_file}"

// Download fetches the archive for treeseqFile into the download folder. The
// URL is formed by substituting the treeseq file name into urlTemplate (which
// is expected to append the .tsz suffix itself). http(s):// and gs:// schemes
// are supported. Failures are not retried.
func Download(ctx context.Context, urlTemplate, downloadFolder, treeseqFile string) error {
	url := strings.ReplaceAll(urlTemplate, treeseqPlaceholder, treeseqFile)
	dst := filepath.Join(downloadFolder, treeseqFile+ArchiveSuffix)

	log.Infof("downloading %s to %s", url, dst)

	var body io.ReadCloser
	switch {
	case strings.HasPrefix(url, "gs://"):
		var err error
		body, err = openGoogleStorage(ctx, url)
		if err != nil {
			return err
		}
	default:
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return pfx.Err(err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return pfx.Err(err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return pfx.Err(fmt.Errorf("GET %s: %s", url, resp.Status))
		}
		body = resp.Body
	}
	defer body.Close()

	tmp, err := os.CreateTemp(downloadFolder, treeseqFile+".*")
	if err != nil {
		return pfx.Err(err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, body)
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

	log.Infof("downloaded %d bytes", n)
	return nil
}

// openGoogleStorage opens gs://bucket/object for reading.
func openGoogleStorage(ctx context.Context, url string) (io.ReadCloser, error) {
	path := strings.TrimPrefix(url, "gs://")
	bucket, object, found := strings.Cut(path, "/")
	if !found || bucket == "" || object == "" {
		return nil, pfx.Err(fmt.Errorf("malformed google storage URL %q", url))
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, pfx.Err(err)
	}

	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		client.Close()
		return nil, pfx.Err(fmt.Errorf("gs://%s/%s: %w", bucket, object, err))
	}

	return &gsReader{ReadCloser: r, client: client}, nil
}

// gsReader closes the storage client along with the object reader.
type gsReader struct {
	io.ReadCloser
	client *storage.Client
}

func (g *gsReader) Close() error {
	err := g.ReadCloser.Close()
	if cerr := g.client.Close(); err == nil {
		err = cerr
	}
	return err
}
