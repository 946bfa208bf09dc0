// Package featurize serves feature extraction for raw segments, using the
// window settings of the loaded model.
package featurize

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-sod/b2t/internal/bundle"
	"github.com/go-sod/b2t/internal/extract"
	"github.com/go-sod/b2t/internal/httputil"
	"github.com/go-sod/b2t/internal/logging"
	"github.com/go-sod/b2t/internal/signal"
)

const requestSplit = "request"

type request struct {
	Data []signal.Segment `json:"data"`
}

type item struct {
	ID  string    `json:"id"`
	Vec []float64 `json:"vector"`
}

type response struct {
	Method string `json:"method"`
	Window int    `json:"window"`
	Stride int    `json:"stride"`
	Length int    `json:"length,omitempty"`
	Data   []item `json:"data"`
}

func NewHandler(cfg *Config, spec extract.WindowSpec, method extract.Method) (http.Handler, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if _, err := extract.ParseMethod(string(method)); err != nil {
		return nil, err
	}
	s := &handler{
		cfg:    cfg,
		spec:   spec,
		method: method,
	}
	return s, nil
}

type handler struct {
	cfg    *Config
	spec   extract.WindowSpec
	method extract.Method
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()
	logger := logging.FromContext(ctx)

	if !httputil.DecodeJSON(ctx, w, r, &req) {
		return
	}
	if len(req.Data) > h.cfg.MaxSegments {
		httputil.RespBadRequest(ctx, w, `{"error": "too many segments, max allowed len is %d"}`, h.cfg.MaxSegments)
		return
	}

	b, err := bundle.Build(ctx,
		&signal.Dataset{Split: requestSplit, Segments: req.Data},
		h.spec, h.method,
		bundle.WithWorkers(h.cfg.Workers),
	)
	if err != nil {
		switch {
		case errors.Is(err, extract.ErrEmptySegment),
			errors.Is(err, extract.ErrShortSegment),
			errors.Is(err, extract.ErrRaggedSegment),
			errors.Is(err, bundle.ErrEmptyBundle),
			errors.Is(err, bundle.ErrInconsistentFeatureLength):
			httputil.RespBadRequest(ctx, w, `{"error": "%v"}`, err)
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
			httputil.RespUnavailable(ctx, w, `{"error": "%v"}`, err)
		default:
			httputil.RespInternalError(ctx, w, `{"error": "extract processing error, %v"}`, err)
		}
		return
	}

	resp := response{
		Method: string(h.method),
		Window: h.spec.Window,
		Stride: h.spec.Stride,
		Length: h.spec.Length,
		Data:   make([]item, b.Len()),
	}
	for i := range b.Features {
		resp.Data[i] = item{ID: b.IDs[i], Vec: b.Features[i]}
	}

	logger.Debugf("Extracted %d segments", b.Len())
	httputil.RespJSON(ctx, w, resp)
}
