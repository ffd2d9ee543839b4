package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"time"

	"github.com/teamarena/quotakit/pkg/async"
	"github.com/teamarena/quotakit/pkg/logger"
)

// Health statuses reported by HealthHandler.
const (
	StatusAlive    = "alive"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
)

// HealthReport is the JSON body written by HealthHandler.
type HealthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"` // name -> "ok" or the error text
}

// HealthHandler serves liveness when checks is empty and readiness otherwise.
// Checks run concurrently, each bounded by timeout when it is positive.
// Any failing check answers 503 and lists every result.
func HealthHandler(log *slog.Logger, timeout time.Duration, checks map[string]func(context.Context) error) http.HandlerFunc {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	names := slices.Sorted(maps.Keys(checks))

	return func(w http.ResponseWriter, r *http.Request) {
		if len(names) == 0 {
			writeHealth(w, http.StatusOK, HealthReport{Status: StatusAlive})
			return
		}

		ctx := r.Context()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		_, errs := async.Settle(async.Each(ctx, names, func(ctx context.Context, name string) (struct{}, error) {
			return struct{}{}, checks[name](ctx)
		})...)

		report := HealthReport{Status: StatusReady, Checks: make(map[string]string, len(names))}
		code := http.StatusOK
		for i, name := range names {
			if errs[i] != nil {
				log.ErrorContext(ctx, "readiness check failed", slog.String("check", name), logger.Error(errs[i]))
				report.Checks[name] = errs[i].Error()
				report.Status = StatusNotReady
				code = http.StatusServiceUnavailable
				continue
			}
			report.Checks[name] = "ok"
		}
		writeHealth(w, code, report)
	}
}

func writeHealth(w http.ResponseWriter, code int, report HealthReport) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(report)
}
