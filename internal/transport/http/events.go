package http

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"atelieconnect/internal/lib/logger/sl"
	workflow "atelieconnect/internal/services/workflow_service"
	"atelieconnect/internal/storage/memory"

	"github.com/labstack/echo/v4"
)

const (
	eventCatalog = "catalog"
	eventState   = "state"
	eventOutcome = "outcome"

	eventBuffer   = 64
	keepAliveTick = 15 * time.Second
)

type event struct {
	name string
	data any
}

// Events streams catalog changes plus the session's flow transitions and
// submit outcomes as server-sent events. Events are dropped for a client
// that cannot keep up.
func (r *Routers) Events(c echo.Context) error {
	const op = "http.routers.Events"

	log := r.log.With(slog.String("op", op))

	events := make(chan event, eventBuffer)
	push := func(name string, data any) {
		select {
		case events <- event{name: name, data: data}:
		default:
			log.Warn("event dropped", slog.String("event", name))
		}
	}

	wf := r.workflow(c)

	unsubscribe := []func(){
		r.Catalog.Changes().Subscribe(func(e memory.CatalogChanged) { push(eventCatalog, e) }),
		wf.States().Subscribe(func(e workflow.StateChanged) { push(eventState, e) }),
		wf.Outcomes().Subscribe(func(o workflow.Outcome) { push(eventOutcome, o) }),
	}
	defer func() {
		for _, fn := range unsubscribe {
			fn()
		}
	}()

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	ticker := time.NewTicker(keepAliveTick)
	defer ticker.Stop()

	ctx := c.Request().Context()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := io.WriteString(w, ": keep-alive\n\n"); err != nil {
				return nil
			}
			w.Flush()
		case ev := <-events:
			if err := writeEvent(w, ev.name, ev.data); err != nil {
				log.Debug("client gone", sl.Err(err))
				return nil
			}
			w.Flush()
		}
	}
}

func writeEvent(w io.Writer, name string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", name, err)
	}

	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, payload)

	return err
}
