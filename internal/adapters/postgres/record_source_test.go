package postgres

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/samirrijal/gridgeo/internal/core/domain"
)

func TestPointRow_SequenceRange(t *testing.T) {
	tests := []struct {
		name    string
		seq     int
		wantErr bool
	}{
		{"zero", 0, false},
		{"max int32", math.MaxInt32, false},
		{"min int32", math.MinInt32, false},
		{"above int32", 3000000000, true},
		{"below int32", math.MinInt32 - 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := domain.CoordinateRecord{ElementID: "L1", Sequence: tt.seq, Latitude: 1, Longitude: 2}
			row, err := pointRow("net1", rec)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrMalformedRecord) {
					t.Fatalf("expected malformed record error, got %v", err)
				}
				var mre *domain.MalformedRecordError
				if !errors.As(err, &mre) || mre.Field != "seq" || mre.ElementID != "L1" {
					t.Errorf("unexpected error detail: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := row[2].(int32); int(got) != tt.seq {
				t.Errorf("seq column = %d, want %d", got, tt.seq)
			}
			if row[3] != 2.0 || row[4] != 1.0 {
				t.Errorf("expected x=lon, y=lat, got x=%v y=%v", row[3], row[4])
			}
		})
	}
}

func TestAppendRecords_RejectsOutOfRangeBeforeCopy(t *testing.T) {
	// A nil pool would panic if the copy were attempted.
	src := NewRecordSource(&DB{})
	records := []domain.CoordinateRecord{
		{ElementID: "L1", Sequence: 1, Latitude: 2, Longitude: 2},
		{ElementID: "L1", Sequence: 3000000000, Latitude: 1, Longitude: 1},
	}

	n, err := src.AppendRecords(context.Background(), "net1", records)
	if !errors.Is(err, domain.ErrMalformedRecord) {
		t.Fatalf("expected malformed record error, got %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 rows copied, got %d", n)
	}
}
