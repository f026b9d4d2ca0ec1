package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	redisclient "github.com/AbhishekS200607/MEDIHUB/internal/redis"
	"github.com/AbhishekS200607/MEDIHUB/internal/token"
)

const sseHeartbeat = 30 * time.Second

// queueEventsHandler streams a doctor's queue over server-sent events. The
// stream pushes the full queue on connect and again on every change tick from
// the subscriber; clients render whatever the latest event carries.
func queueEventsHandler(svc AppointmentService, subs redisclient.Subscriber) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, err := uuid.Parse(chi.URLParam(r, "doctorID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctor id must be a valid UUID")
			return
		}

		day := r.URL.Query().Get("date")
		if day == "" {
			day = token.Today()
		}
		if !token.ValidDay(day) {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming_unsupported", "response writer does not support streaming")
			return
		}

		ticks, cancel, err := subs.SubscribeQueue(r.Context(), doctorID, day)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		defer cancel()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		if err := pushQueue(w, flusher, svc, r, doctorID, day); err != nil {
			return
		}

		heartbeat := time.NewTicker(sseHeartbeat)
		defer heartbeat.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case _, open := <-ticks:
				if !open {
					return
				}
				if err := pushQueue(w, flusher, svc, r, doctorID, day); err != nil {
					return
				}
			case <-heartbeat.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

func pushQueue(w http.ResponseWriter, flusher http.Flusher, svc AppointmentService, r *http.Request, doctorID uuid.UUID, day string) error {
	queue, err := svc.Queue(r.Context(), doctorID, day)
	if err != nil {
		return err
	}

	data, err := json.Marshal(map[string]any{
		"queue": toAppointmentResponses(queue),
		"date":  day,
	})
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "event: queue\ndata: %s\n\n", data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
