package httpapi

import (
	"bytes"
	"encoding/json"
	"log"
	"mime"
	"net/http"
	"strconv"

	"parish-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
)

type ApproveResponse struct {
	Success bool `json:"success"`
	ID      int  `json:"id"`
}

type ImportResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Saved   int    `json:"saved"`
	IDs     []int  `json:"ids"`
}

func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	return id, err == nil
}

func listPending[T services.Record[T]](wf *services.Workflow[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := wf.ListPending(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, items)
	}
}

func listApproved[T services.Record[T]](wf *services.Workflow[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := wf.ListApproved(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, items)
	}
}

func approvePending[T services.Record[T]](wf *services.Workflow[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			WriteError(w, http.StatusNotFound, "Not found")
			return
		}
		approvedID, err := wf.Approve(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, ApproveResponse{Success: true, ID: approvedID})
	}
}

func rejectPending[T services.Record[T]](wf *services.Workflow[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			WriteError(w, http.StatusNotFound, "Not found")
			return
		}
		if err := wf.Reject(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
	}
}

// importApproved accepts a JSON array and appends its objects to the approved
// collection. Elements that are not objects of the right shape are skipped.
func importApproved[T services.Record[T]](wf *services.Workflow[T], message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !IsAdmin(r.Context()) {
			WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if mediaType != "application/json" {
			WriteError(w, http.StatusBadRequest, "Expected application/json")
			return
		}
		var raw []json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			if isTooLarge(err) {
				WriteError(w, http.StatusRequestEntityTooLarge, "Request too large")
				return
			}
			WriteError(w, http.StatusBadRequest, "Expected a JSON array")
			return
		}
		if raw == nil {
			WriteError(w, http.StatusBadRequest, "Expected a JSON array")
			return
		}

		items := make([]T, 0, len(raw))
		for i, doc := range raw {
			if trimmed := bytes.TrimSpace(doc); len(trimmed) == 0 || trimmed[0] != '{' {
				continue
			}
			var item T
			if err := json.Unmarshal(doc, &item); err != nil {
				log.Printf("import %s: skipping element %d: %v", wf.Kind(), i, err)
				continue
			}
			items = append(items, item)
		}

		ids, err := wf.Import(r.Context(), items)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, ImportResponse{Success: true, Message: message, Saved: len(ids), IDs: ids})
	}
}
