// Package server implements the stub HTTP endpoint.
package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/wesleyorama2/ratestub/internal/delay"
	"github.com/wesleyorama2/ratestub/internal/metrics"
	"github.com/wesleyorama2/ratestub/internal/output"
)

// Handler answers every request with a success body after the configured
// delay and reports one metrics.Event per completed request.
type Handler struct {
	policy    delay.Policy
	emitter   *metrics.Emitter
	formatter output.FormatProvider
	logger    *zap.Logger
	now       func() time.Time
}

// NewHandler creates a Handler. A nil logger disables request logging.
func NewHandler(policy delay.Policy, emitter *metrics.Emitter, formatter output.FormatProvider, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		policy:    policy,
		emitter:   emitter,
		formatter: formatter,
		logger:    logger,
		now:       time.Now,
	}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	t0 := h.now()
	d := h.policy.Sample()

	if d > 0 {
		timer := time.NewTimer(d)
		select {
		case <-timer.C:
		case <-r.Context().Done():
			// Client went away; nothing is written and nothing is counted.
			timer.Stop()
			h.logger.Debug("request aborted during delay",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("delay", d),
			)
			return
		}
	}

	resp := output.NewResponse(r.Method, r.URL.Path, t0, h.now().Sub(t0), d)
	body, err := h.formatter.FormatResponse(resp)
	if err != nil {
		h.logger.Error("failed to format response", zap.Error(err))
		body = nil
	}

	w.Header().Set("Content-Type", h.formatter.ContentType())
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.logger.Debug("failed to write response", zap.Error(err))
	}

	t1 := h.now()
	h.emitter.TrySend(metrics.Event{
		CompletedAt: t1,
		Latency:     t1.Sub(t0),
		Method:      r.Method,
		Path:        r.URL.Path,
		Status:      http.StatusOK,
	})
}
