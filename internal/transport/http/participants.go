package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/Vinicius-cybertron/Event-Ticketing-Platform/internal/domain"
)

// ParticipantService is the minimal interface for the participant routes.
type ParticipantService interface {
	Register(ctx context.Context, owner string) (domain.Participant, error)
	RegisterForEvent(ctx context.Context, participantID, eventID string) (domain.Participant, error)
	CheckIn(ctx context.Context, participantID, eventID string) error
	RateEvent(ctx context.Context, participantID, eventID string, rating int) error
	Subscribe(ctx context.Context, participantID, eventID string) (domain.Participant, error)
}

// HandleParticipants returns an HTTP handler for participant registration.
func HandleParticipants(svc ParticipantService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req registerParticipantRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.Owner == "" {
			writeError(w, http.StatusBadRequest, codeAccountRequired, domain.ErrAccountRequired.Error())
			return
		}

		p, err := svc.Register(r.Context(), req.Owner)
		if err != nil {
			switch err {
			case domain.ErrAccountRequired:
				writeDomainError(w, err)
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(toParticipantResponse(p))
	}
}

// HandleParticipantActions returns an HTTP handler for the per-participant
// routes: POST /participants/{id}/registrations, /checkins, /ratings, and
// /subscriptions.
func HandleParticipantActions(svc ParticipantService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		participantID, action, ok := parseParticipantPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req participantActionRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		switch action {
		case "registrations":
			p, err := svc.RegisterForEvent(r.Context(), participantID, req.EventID)
			if err != nil {
				writeParticipantActionError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(toParticipantResponse(p))
		case "checkins":
			if err := svc.CheckIn(r.Context(), participantID, req.EventID); err != nil {
				writeParticipantActionError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		case "ratings":
			if err := svc.RateEvent(r.Context(), participantID, req.EventID, req.Rating); err != nil {
				writeParticipantActionError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		case "subscriptions":
			p, err := svc.Subscribe(r.Context(), participantID, req.EventID)
			if err != nil {
				writeParticipantActionError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(toParticipantResponse(p))
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

func writeParticipantActionError(w http.ResponseWriter, err error) {
	switch err {
	case domain.ErrInvalidID, domain.ErrParticipantNotFound, domain.ErrEventNotFound,
		domain.ErrAlreadyRegistered, domain.ErrNotRegistered, domain.ErrInvalidRating:
		writeDomainError(w, err)
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

func parseParticipantPath(path string) (string, string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 {
		return "", "", false
	}
	if parts[0] != "participants" || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

type registerParticipantRequest struct {
	Owner string `json:"owner"`
}

type participantActionRequest struct {
	EventID string `json:"event_id"`
	Rating  int    `json:"rating,omitempty"`
}

type participantResponse struct {
	ID            string    `json:"id"`
	Owner         string    `json:"owner"`
	Registered    []string  `json:"registered"`
	Notifications []string  `json:"notifications"`
	CreatedAt     time.Time `json:"created_at"`
}

func toParticipantResponse(p domain.Participant) participantResponse {
	resp := participantResponse{
		ID:            p.ID,
		Owner:         p.Owner,
		Registered:    p.Registered,
		Notifications: p.Notifications,
		CreatedAt:     p.CreatedAt,
	}
	if resp.Registered == nil {
		resp.Registered = []string{}
	}
	if resp.Notifications == nil {
		resp.Notifications = []string{}
	}
	return resp
}
