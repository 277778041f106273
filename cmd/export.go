package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/pipeline"
	"github.com/sells-group/leadgen-cli/internal/table"
)

// Output formats accepted by --format.
const (
	formatCSV  = "csv"
	formatXLSX = "xlsx"
	formatBoth = "both"
)

// exportPaths resolves the files to write for a format. An explicit output
// path is used as-is for a single format; for "both" its extension is
// replaced per format.
func exportPaths(output, format, prefix string, now time.Time) (map[string]string, error) {
	var exts []string
	switch strings.ToLower(format) {
	case "", formatCSV:
		exts = []string{formatCSV}
	case formatXLSX:
		exts = []string{formatXLSX}
	case formatBoth:
		exts = []string{formatCSV, formatXLSX}
	default:
		return nil, eris.Errorf("unknown format %q (want csv, xlsx or both)", format)
	}

	paths := make(map[string]string, len(exts))
	for _, ext := range exts {
		switch {
		case output == "":
			paths[ext] = table.Filename(prefix, now, ext)
		case len(exts) == 1:
			paths[ext] = output
		default:
			paths[ext] = strings.TrimSuffix(output, filepath.Ext(output)) + "." + ext
		}
	}
	return paths, nil
}

// writeExports writes t in each requested format and returns the written
// paths in csv, xlsx order.
func writeExports(t table.Table, output, format, prefix string, now time.Time) ([]string, error) {
	paths, err := exportPaths(output, format, prefix, now)
	if err != nil {
		return nil, err
	}

	var written []string
	for _, ext := range []string{formatCSV, formatXLSX} {
		path, ok := paths[ext]
		if !ok {
			continue
		}
		var buf bytes.Buffer
		if err := encodeTable(&buf, t, ext); err != nil {
			return written, err
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return written, eris.Wrapf(err, "write %s", path)
		}
		zap.L().Info("wrote output", zap.String("path", path), zap.Int("rows", t.Len()))
		written = append(written, path)
	}
	return written, nil
}

func encodeTable(w io.Writer, t table.Table, format string) error {
	if format == formatXLSX {
		return table.WriteXLSX(w, t)
	}
	return table.WriteCSV(w, t)
}

// readInput loads a CSV or XLSX lead table based on the file extension.
func readInput(path string) (table.Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return table.ReadXLSX(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return table.Table{}, eris.Wrapf(err, "open %s", path)
	}
	defer f.Close() //nolint:errcheck
	return table.ReadCSV(f)
}

// printProgress reports each finished lead on w.
func printProgress(w io.Writer) func(pipeline.Progress) {
	return func(p pipeline.Progress) {
		status := "ok"
		if !p.Result.Processed {
			status = "failed"
		}
		fmt.Fprintf(w, "Processing %d/%d: %s (%s)\n", p.Done, p.Total, p.Company, status)
	}
}
