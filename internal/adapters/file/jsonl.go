package file

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"

	"github.com/samirrijal/gridgeo/internal/core/domain"
)

const maxJSONLLine = 1 << 20

// JSONLRecords reads one JSON object per line. Blank lines are ignored.
func JSONLRecords(ctx context.Context, r io.Reader) iter.Seq2[domain.CoordinateRecord, error] {
	return func(yield func(domain.CoordinateRecord, error) bool) {
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 64*1024), maxJSONLLine)
		line := 0
		for sc.Scan() {
			line++
			if err := ctx.Err(); err != nil {
				yield(domain.CoordinateRecord{}, err)
				return
			}
			b := bytes.TrimSpace(sc.Bytes())
			if len(b) == 0 {
				continue
			}
			var dto recordDTO
			if err := json.Unmarshal(b, &dto); err != nil {
				yield(domain.CoordinateRecord{}, &domain.MalformedRecordError{
					Field: fmt.Sprintf("line %d", line),
					Err:   err,
				})
				return
			}
			rec, err := dto.record()
			if !yield(rec, err) || err != nil {
				return
			}
		}
		if err := sc.Err(); err != nil {
			yield(domain.CoordinateRecord{}, fmt.Errorf("read jsonl: %w", err))
		}
	}
}

// WriteJSONL writes one JSON object per record.
func WriteJSONL(w io.Writer, records []domain.CoordinateRecord) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, r := range records {
		if err := enc.Encode(toDTO(r)); err != nil {
			return err
		}
	}
	return bw.Flush()
}
