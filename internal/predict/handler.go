// Package predict serves ranked label candidates for feature vectors.
package predict

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/errgroup"

	"github.com/go-sod/b2t/internal/httputil"
	"github.com/go-sod/b2t/internal/logging"
	"github.com/go-sod/b2t/internal/predictor"
	"github.com/go-sod/b2t/internal/util"
)

// Decoder is the part of a fitted decoder the handler needs.
type Decoder interface {
	PredictVector(id string, vec []float64) (predictor.Record, error)
}

type request struct {
	Data []struct {
		ID  string    `json:"id"`
		Vec []float64 `json:"vector"`
	} `json:"data"`
}

type item struct {
	ID         string    `json:"id"`
	Candidates []string  `json:"candidates"`
	Labels     []string  `json:"labels"`
	Distances  []float64 `json:"distances"`
	Cached     bool      `json:"cached"`
}

type response struct {
	Data []item `json:"data"`
}

// NewHandler ranks request vectors with dec and returns up to topK
// distinct candidates per vector. Results are cached by vector content.
func NewHandler(cfg *Config, dec Decoder, topK int) (http.Handler, error) {
	if topK < 1 {
		return nil, fmt.Errorf("%w: top_k=%d", predictor.ErrInvalidK, topK)
	}
	size := cfg.CacheSize
	if size <= 0 {
		size = 1
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("create predict cache: %w", err)
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	return &handler{
		cfg:     cfg,
		decoder: dec,
		cache:   cache,
		topK:    topK,
		workers: workers,
	}, nil
}

type handler struct {
	decoder Decoder
	cfg     *Config
	cache   *lru.Cache
	topK    int
	workers int
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()
	logger := logging.FromContext(ctx)

	if !httputil.DecodeJSON(ctx, w, r, &req) {
		return
	}

	if len(req.Data) > h.cfg.MaxDataItemsLen {
		httputil.RespBadRequest(ctx, w, `{"error": "data items is too large, max allowed len is %d"}`, h.cfg.MaxDataItemsLen)
		return
	}

	respData := make([]item, len(req.Data))
	errGrp, grpCtx := errgroup.WithContext(ctx)
	errGrp.SetLimit(h.workers)
	for i := range req.Data {
		if grpCtx.Err() != nil {
			break
		}
		i := i
		errGrp.Go(func() error {
			id := req.Data[i].ID
			if id == "" {
				id = strconv.Itoa(i)
			}
			rec, cached, err := h.predict(id, req.Data[i].Vec)
			if err != nil {
				return err
			}
			respData[i] = item{
				ID:         id,
				Candidates: rec.Candidates(h.topK),
				Labels:     rec.Labels,
				Distances:  rec.Distances,
				Cached:     cached,
			}
			return nil
		})
	}
	if err := errGrp.Wait(); err != nil {
		switch {
		case errors.Is(err, predictor.ErrDimensionMismatch):
			httputil.RespBadRequest(ctx, w, `{"error": "%v"}`, err)
		case errors.Is(err, predictor.ErrNotFitted):
			httputil.RespUnavailable(ctx, w, `{"error": "%v"}`, err)
		default:
			httputil.RespInternalError(ctx, w, `{"error": "predict processing error, %v"}`, err)
		}
		return
	}
	if err := ctx.Err(); err != nil {
		httputil.RespUnavailable(ctx, w, `{"error": "%v"}`, err)
		return
	}

	logger.Debugf("Predicted %d vectors", len(respData))
	httputil.RespJSON(ctx, w, response{Data: respData})
}

func (h *handler) predict(id string, vec []float64) (predictor.Record, bool, error) {
	key := util.HashVector(vec)
	if v, ok := h.cache.Get(key); ok {
		rec := v.(predictor.Record)
		rec.QueryID = id
		return rec, true, nil
	}
	rec, err := h.decoder.PredictVector(id, vec)
	if err != nil {
		return predictor.Record{}, false, err
	}
	h.cache.Add(key, rec)
	return rec, false, nil
}
