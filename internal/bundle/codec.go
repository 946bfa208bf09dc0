package bundle

import (
	"bytes"
	"fmt"

	xdr "github.com/davecgh/go-xdr/xdr2"
	"github.com/golang/snappy"
	"github.com/google/uuid"

	"github.com/go-sod/b2t/pkg/math/vector"
)

// Payload part names, shared by every Store backend.
const (
	PartMeta     = "meta"
	PartIDs      = "ids"
	PartLabels   = "labels"
	PartFeatures = "features"
)

// Parts lists payload parts in write order.
var Parts = []string{PartMeta, PartIDs, PartLabels, PartFeatures}

type meta struct {
	ID      string
	Split   string
	Rows    uint32
	Dim     uint32
	Labeled bool
}

type matrix struct {
	Data []float64
}

// Encode serializes b into named parts. Doubles are written as XDR
// IEEE-754 values, so Decode(Encode(b)) reproduces every bit.
func Encode(b *Bundle) (map[string][]byte, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	flat := make([]float64, 0, b.Len()*b.Dim)
	for _, row := range b.Features {
		flat = append(flat, row...)
	}
	labels := b.Labels
	if labels == nil {
		labels = []string{}
	}

	parts := make(map[string][]byte, len(Parts))
	values := map[string]interface{}{
		PartMeta: meta{
			ID:      b.ID.String(),
			Split:   b.Split,
			Rows:    uint32(b.Len()),
			Dim:     uint32(b.Dim),
			Labeled: b.Labeled(),
		},
		PartIDs:      b.IDs,
		PartLabels:   labels,
		PartFeatures: matrix{Data: flat},
	}
	for _, part := range Parts {
		data, err := Marshal(values[part])
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", part, err)
		}
		parts[part] = data
	}
	return parts, nil
}

// Decode rebuilds a bundle from parts produced by Encode.
func Decode(parts map[string][]byte) (*Bundle, error) {
	for _, part := range Parts {
		if _, ok := parts[part]; !ok {
			return nil, fmt.Errorf("%w: missing %s", ErrCorrupt, part)
		}
	}
	var (
		m      meta
		ids    []string
		labels []string
		mat    matrix
	)
	if err := Unmarshal(parts[PartMeta], &m); err != nil {
		return nil, fmt.Errorf("decode %s: %w", PartMeta, err)
	}
	if err := Unmarshal(parts[PartIDs], &ids); err != nil {
		return nil, fmt.Errorf("decode %s: %w", PartIDs, err)
	}
	if err := Unmarshal(parts[PartLabels], &labels); err != nil {
		return nil, fmt.Errorf("decode %s: %w", PartLabels, err)
	}
	if err := Unmarshal(parts[PartFeatures], &mat); err != nil {
		return nil, fmt.Errorf("decode %s: %w", PartFeatures, err)
	}
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: bundle id: %v", ErrCorrupt, err)
	}

	rows, dim := int(m.Rows), int(m.Dim)
	if len(mat.Data) != rows*dim {
		return nil, fmt.Errorf("%w: %d values for %dx%d matrix", ErrCorrupt, len(mat.Data), rows, dim)
	}
	features := make([]vector.V, rows)
	for i := range features {
		features[i] = mat.Data[i*dim : (i+1)*dim : (i+1)*dim]
	}
	if !m.Labeled {
		labels = nil
	}
	if ids == nil {
		ids = []string{}
	}

	b := &Bundle{ID: id, Split: m.Split, Dim: dim, Features: features, IDs: ids, Labels: labels}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return b, nil
}

// Marshal XDR-encodes v and compresses the result with snappy.
func Marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := xdr.Marshal(&buf, v); err != nil {
		return nil, err
	}
	return snappy.Encode(nil, buf.Bytes()), nil
}

// Unmarshal reverses Marshal into v, which must be a pointer.
func Unmarshal(data []byte, v interface{}) error {
	raw, err := snappy.Decode(nil, data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if _, err := xdr.Unmarshal(bytes.NewReader(raw), v); err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return nil
}
