// cmd/calc-server/main.go — HTTP and websocket server for the calculus tools
//
// Usage:
//   go run ./cmd/calc-server -port 8080 -rate 50 -burst 100
//
// Tool call endpoint: POST /tool
// Tool stream:        GET  /ws   (one JSON request per text frame)
// Schema endpoint:    GET  /schema
// Health endpoint:    GET  /health
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/njchilds90/calculus/tool"
)

type config struct {
	maxBody int64
	limiter *rate.Limiter
}

func main() {
	port := flag.Int("port", 8080, "Port to listen on")
	perSecond := flag.Float64("rate", 50, "Tool calls allowed per second across all clients")
	burst := flag.Int("burst", 100, "Maximum burst of tool calls")
	maxBody := flag.Int64("max-body", 1<<20, "Maximum request body in bytes")
	flag.Parse()

	cfg := config{
		maxBody: *maxBody,
		limiter: rate.NewLimiter(rate.Limit(*perSecond), *burst),
	}

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("calculus server listening on %s", addr)
	log.Printf("  POST /tool   — execute a tool call")
	log.Printf("  GET  /ws     — stream tool calls over a websocket")
	log.Printf("  GET  /schema — tool schema for agent registration")
	log.Printf("  GET  /health — health check")

	srv := &http.Server{
		Addr:              addr,
		Handler:           newHandler(cfg),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

func newHandler(cfg config) http.Handler {
	mux := http.NewServeMux()

	// POST /tool — handle a tool call
	mux.HandleFunc("/tool", func(w http.ResponseWriter, r *http.Request) {
		defer recoverPanic(w, "/tool")

		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if !cfg.limiter.Allow() {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, cfg.maxBody)
		defer r.Body.Close()

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var req tool.Request
		if err := dec.Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		// Ensure there's no trailing junk.
		if dec.More() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: trailing data"})
			return
		}

		writeJSON(w, http.StatusOK, tool.Handle(req))
	})

	// GET /ws — one response per request frame until the client hangs up
	upgrader := websocket.Upgrader{ReadBufferSize: 4096, WriteBufferSize: 4096}
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		id := w.Header().Get("X-Request-ID")
		conn, err := upgrader.Upgrade(w, r, http.Header{"X-Request-ID": {id}})
		if err != nil {
			log.Printf("ws %s: upgrade: %v", id, err)
			return
		}
		defer conn.Close()
		conn.SetReadLimit(cfg.maxBody)
		serveStream(conn, cfg.limiter, id)
	})

	// GET /schema — return tool schema for agent registration
	mux.HandleFunc("/schema", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, tool.Spec())
	})

	// GET /health — liveness check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	return withRequestID(mux)
}

func serveStream(conn *websocket.Conn, limiter *rate.Limiter, id string) {
	for {
		var req tool.Request
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("ws %s: %v", id, err)
			}
			return
		}
		resp := tool.Response{Error: "rate limit exceeded"}
		if limiter.Allow() {
			resp = handleSafely(req, id)
		}
		if err := conn.WriteJSON(resp); err != nil {
			log.Printf("ws %s: write: %v", id, err)
			return
		}
	}
}

func handleSafely(req tool.Request, id string) (resp tool.Response) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("panic in /ws %s: %v\n%s", id, rec, string(debug.Stack()))
			resp = tool.Response{Error: "internal server error"}
		}
	}()
	return tool.Handle(req)
}

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func recoverPanic(w http.ResponseWriter, route string) {
	if rec := recover(); rec != nil {
		log.Printf("panic in %s %s: %v\n%s", route, w.Header().Get("X-Request-ID"), rec, string(debug.Stack()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
