// Package artifact describes a trained decoder as it is persisted: the
// training features and labels, k, the metric and the extraction settings
// the features were produced with.
package artifact

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/go-sod/b2t/internal/bundle"
	"github.com/go-sod/b2t/internal/extract"
	"github.com/go-sod/b2t/internal/geom"
	"github.com/go-sod/b2t/internal/predictor"
)

var ErrNotFound = errors.New("model artifact not found")

type Model struct {
	ID        uuid.UUID
	K         int
	Metric    geom.MetricType
	Method    extract.Method
	Window    extract.WindowSpec
	CreatedAt time.Time
	Train     *bundle.Bundle
}

func New(train *bundle.Bundle, k int, metric geom.MetricType, spec extract.WindowSpec, method extract.Method) (*Model, error) {
	m := &Model{
		ID:        uuid.New(),
		K:         k,
		Metric:    metric,
		Method:    method,
		Window:    spec,
		CreatedAt: time.Now().UTC(),
		Train:     train,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) Validate() error {
	if m.K < 1 {
		return fmt.Errorf("model %s: %w: got %d", m.ID, predictor.ErrInvalidK, m.K)
	}
	if _, err := geom.DistanceFuncFor(m.Metric); err != nil {
		return fmt.Errorf("model %s: %w", m.ID, err)
	}
	if _, err := extract.ParseMethod(string(m.Method)); err != nil {
		return fmt.Errorf("model %s: %w", m.ID, err)
	}
	if err := m.Window.Validate(); err != nil {
		return fmt.Errorf("model %s: %w", m.ID, err)
	}
	if m.Train == nil || m.Train.Len() == 0 {
		return fmt.Errorf("model %s: %w", m.ID, bundle.ErrEmptyBundle)
	}
	if err := m.Train.Validate(); err != nil {
		return fmt.Errorf("model %s: %w", m.ID, err)
	}
	return nil
}
