package webserv

import (
	"fmt"
	"net/http"

	"steinberg/sources/platform"
	"steinberg/sources/tracing"
)

type Webserv struct {
	log    *tracing.Logger
	config *WebservConfig
	server *http.Server
}

func NewWebserv(log *tracing.Logger, config *WebservConfig, advisors *AdvisorHandlers, sessions *SessionHandlers) *Webserv {
	mux := platform.Curry(http.NewServeMux, func(m *http.ServeMux) {
		m.HandleFunc("POST /api/chat", advisors.Chat)
		m.HandleFunc("POST /api/summarize", advisors.Summarize)

		m.HandleFunc("POST /api/session/{sid}/send", sessions.Send)
		m.HandleFunc("POST /api/session/{sid}/reset", sessions.Reset)
		m.HandleFunc("POST /api/session/{sid}/switch", sessions.Switch)
		m.HandleFunc("GET /api/session/{sid}/conversation", sessions.Current)
		m.HandleFunc("GET /api/session/{sid}/conversations", sessions.List)
		m.HandleFunc("POST /api/session/{sid}/conversations/{id}/rename", sessions.Rename)
		m.HandleFunc("DELETE /api/session/{sid}/conversations/{id}", sessions.Delete)
		m.HandleFunc("GET /api/session/{sid}/conversations/{id}/export", sessions.Export)
		m.HandleFunc("GET /api/session/{sid}/quota", sessions.Quota)
		m.HandleFunc("POST /api/session/{sid}/quota/unlock", sessions.Unlock)
		m.HandleFunc("POST /api/session/{sid}/quota/vip", sessions.RedeemVIP)
		m.HandleFunc("POST /api/session/{sid}/feedback", sessions.Feedback)

		m.HandleFunc("GET /api/quick-replies", sessions.QuickReplies)
	})

	return &Webserv{
		log:    log,
		config: config,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", config.Port),
			Handler: cors(config.AllowedOrigin, mux),
		},
	}
}

func (x *Webserv) serve() {
	x.log.I("Widget API server is starting", "port", x.config.Port)

	if err := x.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		x.log.F("Failed to start widget API server", tracing.InnerError, err)
	}
}

func cors(origin string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
