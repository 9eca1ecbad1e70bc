package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"anzeigen-bot/internal/monitor"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// StatsSource fornece o resumo do monitoramento
type StatsSource interface {
	Stats() monitor.Stats
}

// NewRouter cria as rotas de status (/healthz e /stats)
func NewRouter(stats StatsSource) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/stats", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, stats.Stats())
	})

	return r
}

// NewServer cria o servidor HTTP de status
func NewServer(addr string, stats StatsSource) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           NewRouter(stats),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Erro ao escrever resposta: %v", err)
	}
}
