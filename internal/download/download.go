// Package download fetches the corpus archive over HTTP and extracts the
// data files into the dataset directory.
//
// Design goals:
//
//  1. Idempotent: when the dataset directory already holds every expected
//     file, Ensure returns without touching the network. A previously
//     downloaded archive is re-extracted instead of re-fetched.
//  2. Cheap failure first: the first two bytes of the URL are peeked and
//     checked against the gzip magic number before the multi-megabyte
//     download starts.
//  3. Traversal-safe extraction: archive entries are placed by base name
//     only, so a hostile entry path cannot escape the target directory.
package download

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/zeebo/xxh3"

	"moviecorpus/internal/dataset"
	"moviecorpus/internal/datasource/httpds"
)

var gzipMagic = []byte{0x1f, 0x8b}

// Ensure makes dir hold a complete set of corpus data files, downloading and
// extracting the archive at url when needed.
func Ensure(ctx context.Context, client *httpds.Client, url, dir string) error {
	if haveAll(dir) {
		log.Printf("download: %s already holds all data files; skipping", dir)
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("download: create %s: %w", dir, err)
	}

	archive := filepath.Join(dir, httpds.ArchiveFilename(url))
	if _, err := os.Stat(archive); errors.Is(err, os.ErrNotExist) {
		if err := fetch(ctx, client, url, archive); err != nil {
			return err
		}
	} else if err != nil {
		return fmt.Errorf("download: stat %s: %w", archive, err)
	} else {
		log.Printf("download: reusing archive %s", archive)
	}

	if err := extract(archive, dir); err != nil {
		return err
	}
	if !haveAll(dir) {
		return fmt.Errorf("download: archive %s did not contain every expected data file", archive)
	}
	return nil
}

// haveAll reports whether dir contains every expected data file.
func haveAll(dir string) bool {
	for _, name := range dataset.ExpectedFiles() {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return false
		}
	}
	return true
}

// fetch streams the archive at url into dest, hashing the bytes on the way
// down so the digest of what was actually received lands in the log.
func fetch(ctx context.Context, client *httpds.Client, url, dest string) error {
	head, err := client.FetchFirstBytes(ctx, url, 2)
	if err != nil {
		return fmt.Errorf("download: peek %s: %w", url, err)
	}
	if len(head) < 2 || head[0] != gzipMagic[0] || head[1] != gzipMagic[1] {
		return fmt.Errorf("download: %s does not serve a gzip archive (got % x)", url, head)
	}

	resp, err := client.Get(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("download: get %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download: get %s: status %d", url, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return fmt.Errorf("download: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	h := xxh3.New()
	written, err := io.Copy(tmp, io.TeeReader(resp.Body, h))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("download: write %s: %w", dest, err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("download: finalize %s: %w", dest, err)
	}

	log.Printf("download: fetched %s (%s, xxh3=%016x)", url, humanize.Bytes(uint64(written)), h.Sum64())
	return nil
}

// extract unpacks the expected data files from a tar.gz archive into dir.
// Entries are matched by base name, which both flattens the archive's inner
// directory and discards anything the loader would not recognize.
func extract(archive, dir string) error {
	f, err := os.Open(archive)
	if err != nil {
		return fmt.Errorf("download: open %s: %w", archive, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("download: %s is not a gzip archive: %w", archive, err)
	}
	defer gz.Close()

	wanted := make(map[string]bool)
	for _, name := range dataset.ExpectedFiles() {
		wanted[name] = true
	}

	tr := tar.NewReader(gz)
	extracted := 0
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("download: read %s: %w", archive, err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		base := path.Base(hdr.Name)
		if !wanted[base] {
			continue
		}
		if err := writeEntry(filepath.Join(dir, base), tr); err != nil {
			return err
		}
		extracted++
	}

	log.Printf("download: extracted %d data files from %s", extracted, archive)
	return nil
}

func writeEntry(dest string, r io.Reader) error {
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("download: create %s: %w", dest, err)
	}
	_, err = io.Copy(out, r)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("download: extract %s: %w", dest, err)
	}
	return nil
}
