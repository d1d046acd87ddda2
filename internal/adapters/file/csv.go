package file

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"

	"github.com/samirrijal/gridgeo/internal/core/domain"
)

// CSV column names.
const (
	colElement = "power_system_resource"
	colSeq     = "seq"
	colX       = "x"
	colY       = "y"
	colCRSName = "crs_name"
	colCRSURN  = "crs_urn"
	colName    = "name"
)

var csvHeader = []string{colElement, colSeq, colX, colY, colCRSName, colCRSURN, colName}

// CSVRecords reads records from a CSV file with a header row. Column order is free;
// power_system_resource, seq, x and y are required.
func CSVRecords(ctx context.Context, r io.Reader) iter.Seq2[domain.CoordinateRecord, error] {
	return func(yield func(domain.CoordinateRecord, error) bool) {
		reader := csv.NewReader(r)
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1
		reader.ReuseRecord = true

		header, err := reader.Read()
		if err != nil {
			yield(domain.CoordinateRecord{}, fmt.Errorf("read csv header: %w", err))
			return
		}
		cols := indexColumns(header)
		for _, required := range []string{colElement, colSeq, colX, colY} {
			if _, ok := cols[required]; !ok {
				yield(domain.CoordinateRecord{}, fmt.Errorf("csv header: missing column %q", required))
				return
			}
		}

		for {
			if err := ctx.Err(); err != nil {
				yield(domain.CoordinateRecord{}, err)
				return
			}
			row, err := reader.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(domain.CoordinateRecord{}, fmt.Errorf("read csv: %w", err))
				return
			}
			rec, err := parseCSVRow(row, cols)
			if !yield(rec, err) || err != nil {
				return
			}
		}
	}
}

func parseCSVRow(row []string, cols map[string]int) (domain.CoordinateRecord, error) {
	rec := domain.CoordinateRecord{
		ElementID:   getField(row, cols, colElement),
		CRSName:     getField(row, cols, colCRSName),
		CRSURN:      getField(row, cols, colCRSURN),
		DisplayName: getField(row, cols, colName),
	}

	raw := getField(row, cols, colSeq)
	seq, err := strconv.Atoi(raw)
	if err != nil {
		return rec, &domain.MalformedRecordError{ElementID: rec.ElementID, Field: colSeq, Value: raw, Err: err}
	}
	rec.Sequence = seq

	raw = getField(row, cols, colX)
	if rec.Longitude, err = strconv.ParseFloat(raw, 64); err != nil {
		return rec, &domain.MalformedRecordError{ElementID: rec.ElementID, Field: colX, Value: raw, Err: err}
	}
	raw = getField(row, cols, colY)
	if rec.Latitude, err = strconv.ParseFloat(raw, 64); err != nil {
		return rec, &domain.MalformedRecordError{ElementID: rec.ElementID, Field: colY, Value: raw, Err: err}
	}
	return rec, nil
}

// WriteCSV writes records with a header row.
func WriteCSV(w io.Writer, records []domain.CoordinateRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.ElementID,
			strconv.Itoa(r.Sequence),
			strconv.FormatFloat(r.Longitude, 'f', -1, 64),
			strconv.FormatFloat(r.Latitude, 'f', -1, 64),
			r.CRSName,
			r.CRSURN,
			r.DisplayName,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func indexColumns(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, col := range header {
		// Strip BOM from first column
		col = strings.TrimPrefix(col, "\xef\xbb\xbf")
		m[strings.ToLower(strings.TrimSpace(col))] = i
	}
	return m
}

func getField(record []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
