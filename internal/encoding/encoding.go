// Package encoding converts sparse vectors to and from their on-disk blob
// form: a little-endian pair count followed by (uint32 index, float32 value)
// pairs in ascending index order.
package encoding

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrInvalidBlob is returned when a blob cannot be decoded
var ErrInvalidBlob = errors.New("invalid sparse vector blob")

// Pair is one nonzero entry of a sparse vector.
type Pair struct {
	Index uint32
	Value float32
}

// EncodeSparse encodes an ascending-index sparse vector to bytes.
// A nil or empty vector encodes to a blob with a zero pair count.
func EncodeSparse(pairs []Pair) ([]byte, error) {
	if len(pairs) > math.MaxInt32 {
		return nil, fmt.Errorf("sparse vector too large: %d pairs", len(pairs))
	}
	buf := make([]byte, 4+8*len(pairs))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(pairs)))
	off := 4
	for _, p := range pairs {
		binary.LittleEndian.PutUint32(buf[off:off+4], p.Index)
		binary.LittleEndian.PutUint32(buf[off+4:off+8], math.Float32bits(p.Value))
		off += 8
	}
	return buf, nil
}

// DecodeSparse decodes bytes produced by EncodeSparse.
func DecodeSparse(data []byte) ([]Pair, error) {
	if len(data) < 4 {
		return nil, ErrInvalidBlob
	}
	count := binary.LittleEndian.Uint32(data[0:4])
	if count > math.MaxInt32 {
		return nil, ErrInvalidBlob
	}
	expected := 4 + 8*int(count)
	if len(data) != expected {
		return nil, ErrInvalidBlob
	}
	if count == 0 {
		return nil, nil
	}
	pairs := make([]Pair, count)
	off := 4
	for i := range pairs {
		pairs[i].Index = binary.LittleEndian.Uint32(data[off : off+4])
		pairs[i].Value = math.Float32frombits(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		off += 8
	}
	return pairs, nil
}
