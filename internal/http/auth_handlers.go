package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"parish-backend-go/internal/models"
	"parish-backend-go/internal/services"
)

type GoogleVerifyRequest struct {
	IDToken    string `json:"id_token"`
	Credential string `json:"credential"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// sessionTransportHeader lets API clients that cannot keep cookies ask for
// the session token in the response body.
const sessionTransportHeader = "X-Session-Transport"

type SessionResponse struct {
	Success bool                `json:"success"`
	User    *models.SessionUser `json:"user"`
	Token   string              `json:"token,omitempty"`
}

type MeResponse struct {
	User *models.SessionUser `json:"user"`
}

type PublicConfigResponse struct {
	GoogleClientID string   `json:"googleClientId"`
	AdminEmails    []string `json:"adminEmails"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

func decodeOptionalJSON(r *http.Request, dst interface{}) {
	if r.Body == nil {
		return
	}
	_ = json.NewDecoder(r.Body).Decode(dst)
}

func (s *Server) PublicConfig(w http.ResponseWriter, r *http.Request) {
	emails := s.Config.AdminEmails
	if emails == nil {
		emails = []string{}
	}
	WriteJSON(w, http.StatusOK, PublicConfigResponse{GoogleClientID: s.Config.GoogleClientID, AdminEmails: emails})
}

func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, MeResponse{User: CurrentUser(r.Context())})
}

func (s *Server) GoogleVerify(w http.ResponseWriter, r *http.Request) {
	var req GoogleVerifyRequest
	decodeOptionalJSON(r, &req)
	token := strings.TrimSpace(req.IDToken)
	if token == "" {
		token = strings.TrimSpace(req.Credential)
	}
	if token == "" {
		WriteError(w, http.StatusBadRequest, "Missing id_token")
		return
	}
	if s.Config.GoogleClientID == "" {
		WriteError(w, http.StatusInternalServerError, "Server missing GOOGLE_CLIENT_ID")
		return
	}
	identity, err := s.Identity.Verify(r.Context(), token)
	if err != nil {
		var serr services.ServiceError
		if errors.As(err, &serr) {
			WriteError(w, serr.Status, serr.Message)
			return
		}
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	user := models.SessionUser{
		Email:   identity.Email,
		Name:    identity.Name,
		Picture: identity.Picture,
		Sub:     identity.Subject,
		Admin:   s.Admins.Contains(identity.Email),
	}
	s.startSession(w, r, user)
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	if !s.Credentials.Configured() {
		WriteError(w, http.StatusInternalServerError, "Server not configured for fallback login")
		return
	}
	var req LoginRequest
	decodeOptionalJSON(r, &req)
	username := strings.TrimSpace(req.Username)
	password := strings.TrimSpace(req.Password)
	if username == "" || password == "" {
		WriteError(w, http.StatusBadRequest, "Missing username or password")
		return
	}
	if !s.Credentials.Check(s.Tokens, username, password) {
		log.Printf("fallback login rejected for %q", username)
		WriteError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	s.startSession(w, r, models.SessionUser{Email: username, Name: username, Admin: true})
}

func (s *Server) DevLogin(w http.ResponseWriter, r *http.Request) {
	if !s.Config.DevMode {
		WriteError(w, http.StatusForbidden, "Not available")
		return
	}
	s.startSession(w, r, models.SessionUser{Email: "dev-admin@example.com", Name: "Dev Admin", Admin: true})
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request, user models.SessionUser) {
	token, claims, err := s.Tokens.CreateSessionToken(user)
	if err != nil {
		log.Printf("session token: %v", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if user.Admin {
		if err := s.LoginLog.Open(r.Context(), user.Email, user.Name); err != nil {
			log.Printf("login log for %s: %v", user.Email, err)
		}
	}
	s.setSessionCookie(w, r, token, claims.ExpiresAt.Time)
	resp := SessionResponse{Success: true, User: &user}
	if strings.EqualFold(strings.TrimSpace(r.Header.Get(sessionTransportHeader)), "bearer") {
		resp.Token = token
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if claims, ok := currentClaims(r.Context()); ok {
		if claims.Admin {
			if _, err := s.LoginLog.Close(r.Context(), claims.Subject); err != nil {
				log.Printf("login log close for %s: %v", claims.Subject, err)
			}
		}
		if err := s.Revocations.Revoke(r.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
			log.Printf("session revoke: %v", err)
		}
	}
	clearSessionCookie(w)
	WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}
