package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/staceybot/stacey/internal/bot"
)

type Server struct {
	router *chi.Mux
	bot    *bot.Router
	port   int
}

// inboundActivity is the minimal webhook shape: a conversation
// reference plus either text or a structured value.
type inboundActivity struct {
	Conversation struct {
		ID string `json:"id"`
	} `json:"conversation"`
	Text        string          `json:"text"`
	Value       json.RawMessage `json:"value"`
	ChannelData json.RawMessage `json:"channelData"`
}

type outboundActivity struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func NewServer(port int, botRouter *bot.Router) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router: router,
		bot:    botRouter,
		port:   port,
	}

	router.Post("/api/messages", s.messages)
	router.Get("/health", s.health)
	router.Get("/api/v1/stacey/status", s.status)

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) messages(w http.ResponseWriter, r *http.Request) {
	var activity inboundActivity
	if err := json.NewDecoder(r.Body).Decode(&activity); err != nil {
		http.Error(w, "malformed activity", http.StatusBadRequest)
		return
	}
	if activity.Conversation.ID == "" {
		http.Error(w, "missing conversation id", http.StatusBadRequest)
		return
	}

	reply := s.bot.Route(r.Context(), bot.Turn{
		ConversationID: activity.Conversation.ID,
		Text:           activity.Text,
		Value:          activity.Value,
		ChannelData:    activity.ChannelData,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(outboundActivity{Type: "message", Text: reply.Text})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"agent":  "stacey",
		"status": "ready",
	})
}
