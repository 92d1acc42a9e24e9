// Package api exposes the transfer orchestrator and history log over HTTP,
// with live progress pushed to WebSocket observers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"sftpgrab/internal/config"
	"sftpgrab/internal/history"
	"sftpgrab/internal/models"
	"sftpgrab/internal/progress"
	"sftpgrab/internal/transfer"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Server struct {
	cfg   config.Config
	store history.Store
	orch  *transfer.Orchestrator
	log   zerolog.Logger

	wsClients map[*websocket.Conn]bool
	wsMu      sync.Mutex

	// busy serializes attempts: one transfer in flight per instance.
	busy atomic.Bool
}

func NewServer(cfg config.Config, store history.Store, orch *transfer.Orchestrator, log zerolog.Logger) *Server {
	return &Server{
		cfg:       cfg,
		store:     store,
		orch:      orch,
		log:       log,
		wsClients: make(map[*websocket.Conn]bool),
	}
}

func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/transfer/upload", s.handleUpload)
	mux.HandleFunc("/api/transfer/download", s.handleDownload)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/history/clear", s.handleClear)
	mux.HandleFunc("/ws", s.handleWS)

	addr := fmt.Sprintf(":%d", s.cfg.ServePort)
	s.log.Info().Str("addr", addr).Msg("status server listening")
	return http.ListenAndServe(addr, mux)
}

// Broadcast sends a JSON message to all connected WebSocket clients.
func (s *Server) Broadcast(msgType string, payload interface{}) {
	s.wsMu.Lock()
	defer s.wsMu.Unlock()
	msg := map[string]interface{}{"type": msgType, "payload": payload}
	for conn := range s.wsClients {
		if err := conn.WriteJSON(msg); err != nil {
			conn.Close()
			delete(s.wsClients, conn)
		}
	}
}

// ---- Transfer Handlers ----

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", 405)
		return
	}
	var body struct {
		LocalPath  string `json:"localPath"`
		RemoteName string `json:"remoteName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "Invalid request", 400)
		return
	}
	s.startAttempt(w, models.TransferRequest{
		Direction:  models.DirectionUpload,
		LocalPath:  body.LocalPath,
		RemoteName: body.RemoteName,
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", 405)
		return
	}
	var body struct {
		RemoteName string `json:"remoteName"`
		SavePath   string `json:"savePath"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "Invalid request", 400)
		return
	}
	s.startAttempt(w, models.TransferRequest{
		Direction:     models.DirectionDownload,
		RemoteName:    body.RemoteName,
		LocalSavePath: body.SavePath,
	})
}

// startAttempt launches one attempt on a background goroutine and streams
// its progress to the WebSocket observers. Requests arriving while an
// attempt is in flight are rejected; this server is the collaborator that
// serializes use of the orchestrator.
func (s *Server) startAttempt(w http.ResponseWriter, req models.TransferRequest) {
	if !s.busy.CompareAndSwap(false, true) {
		jsonError(w, "a transfer is already in flight", http.StatusConflict)
		return
	}

	fileName := req.FileName()
	rep := progress.NewReporter()

	go func() {
		defer s.busy.Store(false)

		done := make(chan models.Result, 1)
		go func() {
			done <- s.orch.Run(context.Background(), s.cfg.Params(), req, rep)
		}()

		for sample := range rep.Samples() {
			s.Broadcast("transferUpdate", map[string]interface{}{
				"direction":   req.Direction,
				"file":        fileName,
				"transferred": sample.Transferred,
				"total":       sample.Total,
			})
		}

		res := <-done
		payload := map[string]interface{}{
			"direction":     req.Direction,
			"file":          fileName,
			"outcome":       res.Outcome,
			"effectivePath": res.EffectivePath,
		}
		if res.Err != nil {
			payload["error"] = res.Err.Error()
		}
		s.Broadcast("transferDone", payload)
	}()

	jsonOK(w, "transfer initiated")
}

// ---- History Handlers ----

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.Load()
	if err != nil {
		jsonError(w, "history unavailable", 500)
		return
	}
	// Newest first for display.
	out := make([]models.HistoryEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, entries[i])
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", 405)
		return
	}
	if err := s.store.Clear(); err != nil {
		jsonError(w, "could not clear history", 500)
		return
	}
	jsonOK(w, "history cleared")
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.wsMu.Lock()
	s.wsClients[conn] = true
	s.wsMu.Unlock()

	// Read pump to detect disconnects.
	go func() {
		defer func() {
			s.wsMu.Lock()
			delete(s.wsClients, conn)
			s.wsMu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

// ---- Helpers ----

func jsonOK(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok", "message": msg})
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
