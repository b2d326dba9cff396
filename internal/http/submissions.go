package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"parish-backend-go/internal/models"
	"parish-backend-go/internal/services"
)

type PrayerRequest struct {
	Name string  `json:"name"`
	Text string  `json:"text"`
	Anon bool    `json:"anon"`
	TS   float64 `json:"ts"`
}

type SubmitResponse struct {
	Success bool `json:"success"`
	ID      int  `json:"id"`
}

type MembershipSubmitResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	PendingID       int    `json:"pending_id"`
	FamilyPhoto     string `json:"family_photo,omitempty"`
	MemberSignature string `json:"member_signature,omitempty"`
}

func (s *Server) tooLarge(w http.ResponseWriter) {
	WriteError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large. Limit is %d MB", s.Config.MaxUploadMB))
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func (s *Server) SubmitPrayer(w http.ResponseWriter, r *http.Request) {
	var req PrayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && isTooLarge(err) {
		s.tooLarge(w)
		return
	}
	id, err := s.Prayers.Submit(r.Context(), models.Prayer{
		Name: req.Name,
		Text: req.Text,
		Anon: req.Anon,
		TS:   int64(req.TS),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, SubmitResponse{Success: true, ID: id})
}

var attachmentFields = []string{services.FieldFamilyPhoto, services.FieldMemberSignature}

func (s *Server) SubmitMembership(w http.ResponseWriter, r *http.Request) {
	err := r.ParseMultipartForm(8 << 20)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		if isTooLarge(err) {
			s.tooLarge(w)
			return
		}
		WriteError(w, http.StatusBadRequest, "Invalid form data")
		return
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	uploads := []services.Upload{}
	for _, field := range attachmentFields {
		file, header, err := r.FormFile(field)
		if err != nil {
			continue
		}
		defer func(f multipart.File) { _ = f.Close() }(file)
		uploads = append(uploads, services.Upload{
			Field:       field,
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Body:        file,
		})
	}

	result, err := s.Intake.Submit(r.Context(), membershipFromForm(r.Form), uploads)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, MembershipSubmitResponse{
		Success:         true,
		Message:         "Submitted for review",
		PendingID:       result.PendingID,
		FamilyPhoto:     result.URLs[services.FieldFamilyPhoto],
		MemberSignature: result.URLs[services.FieldMemberSignature],
	})
}
