package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/angelmondragon/gearmart-backend/api/responses"
	"github.com/angelmondragon/gearmart-backend/internal/cart"
	"github.com/angelmondragon/gearmart-backend/internal/events"
	pkgerrors "github.com/angelmondragon/gearmart-backend/pkg/errors"
	"github.com/angelmondragon/gearmart-backend/pkg/logger"
)

// CartStream streams cart snapshots over SSE. The current snapshot is sent
// immediately, then one event per mutation until the client disconnects.
func CartStream(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "streaming unsupported"))
			return
		}

		sub, err := store.Observe(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setSSEHeaders(w)
		for snapshot := range sub {
			if err := writeSSE(w, "cart", snapshot); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// EventStream streams one-shot notifications over SSE. Attaching replaces any
// previous consumer; events fired before attachment are not replayed beyond
// the channel's small pending buffer.
func EventStream(channel *events.Channel, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if channel == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "event channel unavailable"))
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "streaming unsupported"))
			return
		}

		sub := channel.Subscribe(r.Context())

		setSSEHeaders(w)
		flusher.Flush()
		for event := range sub {
			if err := writeSSE(w, string(event.Kind), event); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}

func writeSSE(w http.ResponseWriter, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
