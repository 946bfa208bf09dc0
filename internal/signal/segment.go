// Package signal holds raw recordings as they come out of the dataset loader.
package signal

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Segment is one recording: Data is time_steps x channels.
type Segment struct {
	ID    string      `json:"id"`
	Label string      `json:"label,omitempty"`
	Data  [][]float64 `json:"signal"`
}

func (s Segment) Steps() int {
	return len(s.Data)
}

func (s Segment) Channels() int {
	if len(s.Data) == 0 {
		return 0
	}
	return len(s.Data[0])
}

// Dataset is an ordered split of segments.
type Dataset struct {
	Split    string
	Segments []Segment
}

func (d *Dataset) Len() int {
	return len(d.Segments)
}

// LoadFile reads a stream of JSON segment objects, usually one per line.
// Files ending in .gz are decompressed first.
func LoadFile(path, split string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("error loading %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	ds, err := Decode(r, split)
	if err != nil {
		return nil, fmt.Errorf("error loading %s: %w", path, err)
	}
	return ds, nil
}

// Decode reads segments from r until EOF, preserving their order.
func Decode(r io.Reader, split string) (*Dataset, error) {
	ds := &Dataset{Split: split}
	d := json.NewDecoder(r)
	for {
		var seg Segment
		err := d.Decode(&seg)
		if errors.Is(err, io.EOF) {
			return ds, nil
		}
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", len(ds.Segments), err)
		}
		ds.Segments = append(ds.Segments, seg)
	}
}
