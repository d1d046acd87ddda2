package file

import (
	"context"
	"fmt"
	"io"
	"iter"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/samirrijal/gridgeo/internal/core/domain"
)

// WriteMsgpack writes records as a MessagePack array stream.
func WriteMsgpack(w io.Writer, records []domain.CoordinateRecord) error {
	enc := msgpack.NewEncoder(w)
	// write array header
	if err := enc.EncodeArrayLen(len(records)); err != nil {
		return err
	}
	for _, r := range records {
		if err := enc.Encode(toDTO(r)); err != nil {
			return err
		}
	}
	return nil
}

// MsgpackRecords reads records encoded as a MessagePack array.
func MsgpackRecords(ctx context.Context, r io.Reader) iter.Seq2[domain.CoordinateRecord, error] {
	return func(yield func(domain.CoordinateRecord, error) bool) {
		dec := msgpack.NewDecoder(r)
		n, err := dec.DecodeArrayLen()
		if err != nil {
			yield(domain.CoordinateRecord{}, fmt.Errorf("read msgpack header: %w", err))
			return
		}
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				yield(domain.CoordinateRecord{}, err)
				return
			}
			var dto recordDTO
			if err := dec.Decode(&dto); err != nil {
				yield(domain.CoordinateRecord{}, &domain.MalformedRecordError{
					Field: fmt.Sprintf("item %d", i),
					Err:   err,
				})
				return
			}
			rec, err := dto.record()
			if !yield(rec, err) || err != nil {
				return
			}
		}
	}
}
