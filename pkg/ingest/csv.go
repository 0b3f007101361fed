// Package ingest reads peak tables and reference tables from CSV and
// writes the combined result matrix back out.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	facore "github.com/xhn-ccc/fat-analysis-tool"
)

var (
	ErrMissingColumn = errors.New("required column not found")
	ErrEmptyFile     = errors.New("file has no data rows")
)

// ReadReference parses a reference table CSV with columns
// "name" and "expected_time".
func ReadReference(r io.Reader) (*facore.ReferenceTable, error) {
	rows, header, err := readAll(r)
	if err != nil {
		return nil, err
	}

	nameIdx, err := columnIndex(header, "name")
	if err != nil {
		return nil, err
	}
	timeIdx, err := columnIndex(header, "expected_time")
	if err != nil {
		return nil, err
	}

	entries := make([]facore.ReferenceEntry, 0, len(rows))
	for i, row := range rows {
		t, err := cast.ToFloat64E(strings.TrimSpace(row[timeIdx]))
		if err != nil {
			return nil, fmt.Errorf("row %d: bad expected_time %q: %w", i+2, row[timeIdx], err)
		}
		entries = append(entries, facore.ReferenceEntry{
			Name:         strings.TrimSpace(row[nameIdx]),
			ExpectedTime: t,
		})
	}
	return facore.NewReferenceTable(entries)
}

// ReadSample parses one sample's peak list. The retention time and area
// columns are named explicitly; there is no header guessing. Rows whose
// time cell is blank or non-numeric are dropped and counted.
func ReadSample(r io.Reader, sampleID, timeCol, areaCol string) (facore.Sample, int, error) {
	rows, header, err := readAll(r)
	if err != nil {
		return facore.Sample{}, 0, err
	}

	timeIdx, err := columnIndex(header, timeCol)
	if err != nil {
		return facore.Sample{}, 0, err
	}
	areaIdx, err := columnIndex(header, areaCol)
	if err != nil {
		return facore.Sample{}, 0, err
	}

	sample := facore.Sample{ID: sampleID}
	dropped := 0
	for _, row := range rows {
		t, err := cast.ToFloat64E(strings.TrimSpace(row[timeIdx]))
		if err != nil || math.IsNaN(t) || math.IsInf(t, 0) {
			dropped++
			continue
		}
		// A missing area is kept as zero so the peak still participates
		// in matching.
		area, err := cast.ToFloat64E(strings.TrimSpace(row[areaIdx]))
		if err != nil {
			area = 0
		}
		sample.Peaks = append(sample.Peaks, facore.ObservedPeak{Time: t, Area: area})
	}
	return sample, dropped, nil
}

// WriteCombined writes the multi-sample matrix as CSV, compounds as rows
// and samples as columns.
func WriteCombined(w io.Writer, combined facore.CombinedResult) error {
	cw := csv.NewWriter(w)

	header := append([]string{"compound"}, combined.Samples...)
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, name := range combined.Compounds {
		row := make([]string, 0, len(combined.Samples)+1)
		row = append(row, name)
		for _, sampleID := range combined.Samples {
			row = append(row, strconv.FormatFloat(combined.Values[name][sampleID], 'f', -1, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func readAll(r io.Reader) (rows [][]string, header []string, err error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	all, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	if len(all) < 2 {
		return nil, nil, ErrEmptyFile
	}
	return all[1:], all[0], nil
}

func columnIndex(header []string, name string) (int, error) {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrMissingColumn, name)
}
