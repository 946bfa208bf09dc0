// Package report writes prediction tables and evaluation summaries.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/gocarina/gocsv"

	"github.com/go-sod/b2t/internal/predictor"
	"github.com/go-sod/b2t/internal/score"
)

// WriteTable writes one row per record: the query id followed by exactly
// topK candidate columns, empty where fewer candidates exist.
func WriteTable(w io.Writer, records []predictor.Record, topK int) error {
	if topK < 1 {
		return fmt.Errorf("%w: top_k=%d", predictor.ErrInvalidK, topK)
	}
	cw := csv.NewWriter(w)

	header := make([]string, 0, topK+1)
	header = append(header, "id")
	for i := 1; i <= topK; i++ {
		header = append(header, "pred_"+strconv.Itoa(i))
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write table header: %w", err)
	}

	row := make([]string, topK+1)
	for _, rec := range records {
		for i := range row {
			row[i] = ""
		}
		row[0] = rec.QueryID
		copy(row[1:], rec.Candidates(topK))
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write table row %s: %w", rec.QueryID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

type neighborRow struct {
	QueryID    string  `csv:"query_id"`
	Rank       int     `csv:"rank"`
	Label      string  `csv:"label"`
	Distance   float64 `csv:"distance"`
	TrainIndex int     `csv:"train_index"`
}

// WriteNeighbors writes the raw neighbour lists in long form, one row per
// (query, rank).
func WriteNeighbors(w io.Writer, records []predictor.Record) error {
	rows := make([]*neighborRow, 0, len(records))
	for _, rec := range records {
		for i := range rec.Labels {
			row := &neighborRow{
				QueryID: rec.QueryID,
				Rank:    i + 1,
				Label:   rec.Labels[i],
			}
			if i < len(rec.Distances) {
				row.Distance = rec.Distances[i]
			}
			if i < len(rec.Indices) {
				row.TrainIndex = rec.Indices[i]
			}
			rows = append(rows, row)
		}
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("write neighbors: %w", err)
	}
	return nil
}

// WriteSummary writes m as indented JSON.
func WriteSummary(w io.Writer, m score.Metrics) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}
