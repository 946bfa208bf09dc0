// Package score computes validation accuracy of ranked predictions.
package score

import (
	"errors"
	"fmt"

	"github.com/montanaflynn/stats"

	"github.com/go-sod/b2t/internal/predictor"
)

var ErrLabelSetMismatch = errors.New("predictions and ground truth are not aligned")

type Metrics struct {
	Top1Accuracy       float64 `json:"top1_accuracy"`
	TopKAccuracy       float64 `json:"topk_accuracy"`
	NExamples          int     `json:"n_examples"`
	TopK               int     `json:"top_k"`
	MeanTop1Distance   float64 `json:"mean_top1_distance"`
	MedianTop1Distance float64 `json:"median_top1_distance"`
}

// Score compares records against the ground truth labels of ids. records,
// ids and labels must be parallel. Candidate lists are deduplicated and cut
// to topK before matching; topK <= 0 keeps every candidate.
func Score(records []predictor.Record, ids, labels []string, topK int) (Metrics, error) {
	if len(records) != len(labels) || len(ids) != len(labels) {
		return Metrics{}, fmt.Errorf(
			"%w: %d predictions, %d ids, %d labels",
			ErrLabelSetMismatch, len(records), len(ids), len(labels),
		)
	}
	for i := range records {
		if records[i].QueryID != ids[i] {
			return Metrics{}, fmt.Errorf(
				"%w: row %d prediction id %q, ground truth id %q",
				ErrLabelSetMismatch, i, records[i].QueryID, ids[i],
			)
		}
	}

	m := Metrics{NExamples: len(records), TopK: topK}
	if len(records) == 0 {
		return m, nil
	}

	var top1, topk int
	distances := make(stats.Float64Data, 0, len(records))
	for i, rec := range records {
		if rec.Top() == labels[i] {
			top1++
		}
		for _, c := range rec.Candidates(topK) {
			if c == labels[i] {
				topk++
				break
			}
		}
		if len(rec.Distances) > 0 {
			distances = append(distances, rec.Distances[0])
		}
	}

	m.Top1Accuracy = float64(top1) / float64(len(records))
	m.TopKAccuracy = float64(topk) / float64(len(records))
	if len(distances) > 0 {
		m.MeanTop1Distance, _ = distances.Mean()
		m.MedianTop1Distance, _ = distances.Median()
	}
	return m, nil
}
