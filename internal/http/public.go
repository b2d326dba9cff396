package httpapi

import "net/http"

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) LoginLogs(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, s.LoginLog.List(r.Context()))
}
