package httpapi

import (
	"net/http"
	"strconv"

	"parish-backend-go/internal/services"

	"github.com/gorilla/websocket"
)

type MetricsHistoryResponse struct {
	Items []services.MetricSample `json:"items"`
}

func parseInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}

func (s *Server) MetricsHistory(w http.ResponseWriter, r *http.Request) {
	limit := parseInt(r.URL.Query().Get("limit"), 120)
	if limit > 500 {
		limit = 500
	}
	WriteJSON(w, http.StatusOK, MetricsHistoryResponse{Items: s.Metrics.Latest(limit)})
}

// MetricsSocket streams live samples to admins. Browsers cannot set headers
// on a websocket handshake, so the session token may also come as ?token=.
func (s *Server) MetricsSocket(w http.ResponseWriter, r *http.Request) {
	if !IsAdmin(r.Context()) && !s.queryTokenIsAdmin(r) {
		WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	upgrader := websocket.Upgrader{
		CheckOrigin: s.allowedOrigin,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.MetricsHub.Add(conn)
	defer func() {
		s.MetricsHub.Remove(conn)
		_ = conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (s *Server) queryTokenIsAdmin(r *http.Request) bool {
	token := r.URL.Query().Get("token")
	if token == "" {
		return false
	}
	claims, err := s.Tokens.ParseSessionToken(token)
	if err != nil || !claims.Admin {
		return false
	}
	revoked, err := s.Revocations.IsRevoked(r.Context(), claims.ID)
	return err == nil && !revoked
}

func (s *Server) allowedOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(s.Config.CorsOrigins) == 0 {
		return true
	}
	for _, allowed := range s.Config.CorsOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
