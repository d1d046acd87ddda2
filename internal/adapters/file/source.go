package file

import (
	"context"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/samirrijal/gridgeo/internal/core/domain"
)

// Format identifies a position record file encoding.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatJSONL   Format = "jsonl"
	FormatMsgpack Format = "msgpack"
	FormatCGMES   Format = "cgmes"
)

// DetectFormat picks a format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".jsonl", ".ndjson":
		return FormatJSONL, nil
	case ".msgpack", ".mpk":
		return FormatMsgpack, nil
	case ".xml", ".rdf":
		return FormatCGMES, nil
	default:
		return "", fmt.Errorf("unknown record file extension %q", filepath.Ext(path))
	}
}

// ReadRecords decodes r in the given format.
func ReadRecords(ctx context.Context, r io.Reader, format Format) iter.Seq2[domain.CoordinateRecord, error] {
	switch format {
	case FormatCSV:
		return CSVRecords(ctx, r)
	case FormatJSONL:
		return JSONLRecords(ctx, r)
	case FormatMsgpack:
		return MsgpackRecords(ctx, r)
	case FormatCGMES:
		return CGMESRecords(ctx, r)
	default:
		return failed(fmt.Errorf("unsupported record format %q", format))
	}
}

// WriteRecords encodes records in the given format. CGMES output is not supported.
func WriteRecords(w io.Writer, format Format, records []domain.CoordinateRecord) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, records)
	case FormatJSONL:
		return WriteJSONL(w, records)
	case FormatMsgpack:
		return WriteMsgpack(w, records)
	default:
		return fmt.Errorf("cannot write records as %q", format)
	}
}

// RecordSource reads position records from a single file. The network id is
// ignored: the file holds the records of one network.
type RecordSource struct {
	path   string
	format Format
}

// NewRecordSource creates a RecordSource, detecting the format from path.
func NewRecordSource(path string) (*RecordSource, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	return &RecordSource{path: path, format: format}, nil
}

// PositionRecords opens the file on every call.
func (s *RecordSource) PositionRecords(ctx context.Context, networkID string) iter.Seq2[domain.CoordinateRecord, error] {
	return func(yield func(domain.CoordinateRecord, error) bool) {
		f, err := os.Open(s.path)
		if err != nil {
			yield(domain.CoordinateRecord{}, fmt.Errorf("open %s: %w", s.path, err))
			return
		}
		defer f.Close()
		for rec, err := range ReadRecords(ctx, f, s.format) {
			if !yield(rec, err) || err != nil {
				return
			}
		}
	}
}

// Collect drains records into a slice, stopping at the first error.
func Collect(records iter.Seq2[domain.CoordinateRecord, error]) ([]domain.CoordinateRecord, error) {
	var out []domain.CoordinateRecord
	for rec, err := range records {
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func failed(err error) iter.Seq2[domain.CoordinateRecord, error] {
	return func(yield func(domain.CoordinateRecord, error) bool) {
		yield(domain.CoordinateRecord{}, err)
	}
}

// recordDTO is the wire shape of a record in JSONL and MessagePack files. Field names
// follow the CGMES GL query columns.
type recordDTO struct {
	ElementID string   `json:"power_system_resource" msgpack:"power_system_resource"`
	Seq       *int     `json:"seq" msgpack:"seq"`
	X         *float64 `json:"x" msgpack:"x"`
	Y         *float64 `json:"y" msgpack:"y"`
	CRSName   string   `json:"crs_name,omitempty" msgpack:"crs_name,omitempty"`
	CRSURN    string   `json:"crs_urn,omitempty" msgpack:"crs_urn,omitempty"`
	Name      string   `json:"name,omitempty" msgpack:"name,omitempty"`
}

func toDTO(r domain.CoordinateRecord) recordDTO {
	seq, x, y := r.Sequence, r.Longitude, r.Latitude
	return recordDTO{
		ElementID: r.ElementID,
		Seq:       &seq,
		X:         &x,
		Y:         &y,
		CRSName:   r.CRSName,
		CRSURN:    r.CRSURN,
		Name:      r.DisplayName,
	}
}

// record converts the DTO, x being the longitude and y the latitude.
func (d recordDTO) record() (domain.CoordinateRecord, error) {
	switch {
	case d.Seq == nil:
		return domain.CoordinateRecord{}, &domain.MalformedRecordError{ElementID: d.ElementID, Field: "seq"}
	case d.X == nil:
		return domain.CoordinateRecord{}, &domain.MalformedRecordError{ElementID: d.ElementID, Field: "x"}
	case d.Y == nil:
		return domain.CoordinateRecord{}, &domain.MalformedRecordError{ElementID: d.ElementID, Field: "y"}
	}
	return domain.CoordinateRecord{
		ElementID:   d.ElementID,
		Sequence:    *d.Seq,
		Latitude:    *d.Y,
		Longitude:   *d.X,
		CRSName:     d.CRSName,
		CRSURN:      d.CRSURN,
		DisplayName: d.Name,
	}, nil
}
