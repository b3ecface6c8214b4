package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aretw0/pfc/pkg/validator"
)

// allCharts is the subscription key receiving every report.
const allCharts = "*"

// StreamManager fans validation reports out to SSE subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	logger      *slog.Logger
	subscribers map[string]map[chan<- string]struct{} // chart name -> set of channels
}

// NewStreamManager creates an empty StreamManager.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	return &StreamManager{
		logger:      logger,
		subscribers: make(map[string]map[chan<- string]struct{}),
	}
}

// Subscribe registers a channel for reports of chart, or of every chart when
// chart is empty. The returned func unsubscribes and closes the channel.
func (sm *StreamManager) Subscribe(chart string) (<-chan string, func()) {
	if chart == "" {
		chart = allCharts
	}
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[chart]; !ok {
		sm.subscribers[chart] = make(map[chan<- string]struct{})
	}
	sm.subscribers[chart][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[chart]; ok {
			if _, live := subs[ch]; !live {
				return
			}
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, chart)
			}
		}
	}
}

// Publish sends r to the subscribers of its chart and of every chart.
func (sm *StreamManager) Publish(r *validator.Report) {
	payload, err := json.Marshal(r)
	if err != nil {
		sm.logger.Error("StreamManager: encode failed", "chart", r.Chart, "error", err)
		return
	}
	msg := string(payload)

	sm.mu.RLock()
	defer sm.mu.RUnlock()
	for _, key := range []string{r.Chart, allCharts} {
		for ch := range sm.subscribers[key] {
			select {
			case ch <- msg:
			default:
				// Drop message if channel is full (slow client)
				sm.logger.Warn("SSE: client buffer full, dropping report", "chart", r.Chart)
			}
		}
	}
}

// Hooks returns validator hooks that publish every completed report, for
// validations that do not go through the HTTP API.
func (sm *StreamManager) Hooks() validator.Hooks {
	return validator.Hooks{
		OnComplete: func(_ context.Context, r *validator.Report) { sm.Publish(r) },
	}
}

// SubscribeEvents handles the GET /events request (SSE). The optional chart
// query parameter narrows the stream to one chart.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(r.URL.Query().Get("chart"))
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: report\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
