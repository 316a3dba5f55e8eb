// Package export converts one directory's sidecar metadata for a
// single identifier into a tabular structure, one row per sidecar
// instance found.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/sidecarkit/sidecar"
)

// Table is the collected result: Columns is the sorted union of every
// row's keys, Rows holds one metadata record per matching sidecar.
type Table struct {
	Columns []string
	Rows    []sidecar.Record
}

// Collect gathers the metadata of every sidecar with the given
// identifier in dir.
//
// A path that is not a directory is reported to errw and yields an
// empty table rather than an error. A listed sidecar whose metadata is
// absent or empty is reported to errw and skipped. Rows are ordered by
// primary file name. errw defaults to os.Stderr when nil.
func Collect(dir, identifier string, errw io.Writer) (*Table, error) {
	if errw == nil {
		errw = os.Stderr
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		fmt.Fprintf(errw, "Error: %q is not a directory\n", dir)
		return &Table{}, nil
	}

	_, sidecars, err := sidecar.ListDirectory(dir)
	if err != nil {
		return nil, err
	}

	primaries := make([]string, 0, len(sidecars))
	for primary := range sidecars {
		primaries = append(primaries, primary)
	}
	sort.Strings(primaries)

	table := &Table{}
	for _, primary := range primaries {
		handler := sidecar.NewHandlerLazy(filepath.Join(dir, primary))
		for _, entry := range sidecars[primary] {
			_, id, ok := sidecar.Split(entry)
			if !ok || id != identifier {
				continue
			}

			rec, err := handler.Get(id)
			if err != nil {
				return nil, err
			}
			if len(rec) == 0 {
				fmt.Fprintf(errw, "Warning: no %s metadata found for %q in directory %q\n", identifier, entry, dir)
				continue
			}

			table.Rows = append(table.Rows, rec)
		}
	}

	table.Columns = columnUnion(table.Rows)
	return table, nil
}

func columnUnion(rows []sidecar.Record) []string {
	seen := make(map[string]bool)
	for _, row := range rows {
		for key := range row {
			seen[key] = true
		}
	}

	columns := make([]string, 0, len(seen))
	for key := range seen {
		columns = append(columns, key)
	}
	sort.Strings(columns)
	return columns
}

// WriteCSV writes the table to w with a header line. Values are
// rendered with %v; a row missing a column gets an empty cell.
func (t *Table) WriteCSV(w io.Writer) error {
	if len(t.Columns) == 0 {
		return nil
	}

	cw := csv.NewWriter(w)

	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	cells := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, column := range t.Columns {
			if value, ok := row[column]; ok {
				cells[i] = fmt.Sprintf("%v", value)
			} else {
				cells[i] = ""
			}
		}
		if err := cw.Write(cells); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
