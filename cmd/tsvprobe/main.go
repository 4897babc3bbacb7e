// Command tsvprobe samples a TSV source (local path or URL) and prints one
// line per column: index, label, inferred kind, fill rate, example values.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"moviecorpus/internal/datasource/file"
	"moviecorpus/internal/datasource/httpds"
	"moviecorpus/internal/tsvprobe"
)

func main() {
	header := flag.Bool("header", false, "treat the first line as column labels")
	rows := flag.Int("rows", 1000, "maximum data rows to sample")
	samples := flag.Int("samples", 3, "example values to keep per column")
	maxBytes := flag.Int("max-bytes", 1<<20, "bytes to fetch when sampling a URL")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: tsvprobe [flags] <path-or-url>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	target := flag.Arg(0)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	r, err := openSample(ctx, target, *maxBytes)
	if err != nil {
		log.Fatalf("tsvprobe: %v", err)
	}
	defer r.Close()

	cols, err := tsvprobe.Probe(r, tsvprobe.Options{
		MaxRows:    *rows,
		HasHeader:  *header,
		MaxSamples: *samples,
	})
	if err != nil {
		log.Fatalf("tsvprobe: %v", err)
	}
	fmt.Print(tsvprobe.Render(cols))
}

// openSample opens a local path directly; for URLs it fetches the first
// maxBytes and cuts the sample at the last full line.
func openSample(ctx context.Context, target string, maxBytes int) (io.ReadCloser, error) {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		client := httpds.NewClient(httpds.Config{})
		data, err := client.FetchFirstBytes(ctx, target, maxBytes)
		if err != nil {
			return nil, err
		}
		if i := bytes.LastIndexByte(data, '\n'); i > 0 {
			data = data[:i+1]
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	return file.NewLocal(target).Open(ctx)
}
