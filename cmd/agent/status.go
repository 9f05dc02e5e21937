package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"jobtrack-agent/internal/agent"
	"jobtrack-agent/internal/events"
	"jobtrack-agent/internal/ledger"
	"jobtrack-agent/internal/store"
)

// serveStatus runs the local status endpoint until ctx is cancelled. It binds
// loopback only; this is an introspection surface, not an API.
func serveStatus(ctx context.Context, port int, hub *events.Hub, led *ledger.Ledger, apps *store.Store, lastStats *atomic.Value) error {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"ok": true, "time": time.Now().Format(time.RFC3339)})
	})

	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		total, today := led.Stats()
		writeJSON(w, map[string]any{
			"last_run":     lastStats.Load().(agent.Stats),
			"ledger_total": total,
			"ledger_today": today,
			"ledger_fresh": led.IsFirstRun(),
		})
	})

	mux.HandleFunc("/applications", func(w http.ResponseWriter, r *http.Request) {
		rows, err := apps.All(r.Context())
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, rows)
	})

	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", 500)
			return
		}

		ch := hub.Subscribe()
		defer hub.Unsubscribe(ch)

		fmt.Fprintf(w, "event: ping\ndata: %s\n\n", `{"type":"ping"}`)
		flusher.Flush()

		for {
			select {
			case <-r.Context().Done():
				return
			case msg := <-ch:
				fmt.Fprintf(w, "event: message\ndata: %s\n\n", msg)
				flusher.Flush()
			}
		}
	})

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("status listen: %w", err)
	}
	log.Printf("[status] listening on http://%s", addr)

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
	}()

	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
