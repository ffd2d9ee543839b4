package billing

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/teamarena/quotakit/pkg/logger"
)

// Routes mounts the Paddle webhook endpoint at POST /paddle.
//
// Verification and decoding failures answer 400 so Paddle stops retrying a
// request it cannot fix; events that cannot be mapped to a plan are logged and
// acknowledged; store failures answer 500 so Paddle retries later.
func Routes(parser EventParser, syncer *Syncer, log *slog.Logger) chi.Router {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(logger.Component("billing_webhook"))

	r := chi.NewRouter()
	r.Post("/paddle", func(w http.ResponseWriter, req *http.Request) {
		req.Body = http.MaxBytesReader(w, req.Body, maxPayloadBytes)
		ctx := req.Context()

		ev, err := parser.ParseRequest(req)
		if err != nil {
			log.WarnContext(ctx, "rejected billing webhook", logger.Error(err))
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		err = syncer.Apply(ctx, ev)
		switch {
		case err == nil:
		case errors.Is(err, ErrMissingOrganization), errors.Is(err, ErrUnknownPrice):
			log.WarnContext(ctx, "billing event not applied",
				logger.Event(string(ev.Type)),
				slog.String("event_id", ev.ID),
				logger.Error(err),
			)
		default:
			log.ErrorContext(ctx, "billing event failed",
				logger.Event(string(ev.Type)),
				slog.String("event_id", ev.ID),
				logger.Error(err),
			)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
	})
	return r
}
