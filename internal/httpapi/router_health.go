package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"
)

func (r *router) handleHealthz(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (r *router) handleReady(w http.ResponseWriter, req *http.Request) {
	if r.deps.Store != nil {
		if err := r.deps.Store.Ping(req.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not-ready", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (r *router) handleHealth(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	payload := map[string]any{
		"status":      "UP",
		"environment": r.deps.Config.Environment,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"uptime":      fmt.Sprintf("%d seconds", int(time.Since(r.deps.StartedAt).Seconds())),
		"memory": map[string]string{
			"used":  fmt.Sprintf("%d MB", memStats.HeapAlloc/1024/1024),
			"total": fmt.Sprintf("%d MB", memStats.HeapSys/1024/1024),
		},
	}

	if r.deps.Prober != nil {
		probeCtx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
		defer cancel()
		if err := r.deps.Prober.Probe(probeCtx); err != nil {
			payload["completion_service"] = "offline"
		} else {
			payload["completion_service"] = "online"
		}
	}

	writeJSON(w, http.StatusOK, payload)
}

func (r *router) handleKnowledge(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if r.deps.Knowledge == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "knowledge base is unavailable"})
		return
	}

	topics := r.deps.Knowledge.Topics()
	status := "OK"
	message := fmt.Sprintf("%d topics loaded", len(topics))
	if len(topics) == 0 {
		status = "ALERT"
		message = "no knowledge topics loaded"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  status,
		"message": message,
		"topics":  topics,
	})
}
