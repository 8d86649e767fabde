package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/Vinicius-cybertron/Event-Ticketing-Platform/internal/domain"
)

// adminHeader carries the admin cap seeded at startup.
const adminHeader = "X-Admin-Key"

// ProfileService is the minimal interface for the profile routes.
type ProfileService interface {
	Register(ctx context.Context, owner string) (domain.Profile, error)
	VerifyProfile(ctx context.Context, adminCapID, profileID string) (domain.Profile, error)
	UpdateReputation(ctx context.Context, adminCapID, profileID string, score int64) (domain.Profile, error)
}

// HandleProfiles returns an HTTP handler for profile registration.
func HandleProfiles(svc ProfileService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req registerProfileRequest
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
		_ = json.NewEncoder(w).Encode(toProfileResponse(p))
	}
}

// HandleProfileActions returns an HTTP handler for POST /profiles/{id}/verify
// and POST /profiles/{id}/reputation. Both require the admin key.
func HandleProfileActions(svc ProfileService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID, action, ok := parseProfilePath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		adminKey := r.Header.Get(adminHeader)

		switch action {
		case "verify":
			p, err := svc.VerifyProfile(r.Context(), adminKey, profileID)
			if err != nil {
				writeProfileActionError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(toProfileResponse(p))
		case "reputation":
			var req updateReputationRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			p, err := svc.UpdateReputation(r.Context(), adminKey, profileID, req.Score)
			if err != nil {
				writeProfileActionError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(toProfileResponse(p))
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

func writeProfileActionError(w http.ResponseWriter, err error) {
	switch err {
	case domain.ErrUnauthorized, domain.ErrInvalidID, domain.ErrProfileNotFound,
		domain.ErrInvalidReputation:
		writeDomainError(w, err)
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

func parseProfilePath(path string) (string, string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 {
		return "", "", false
	}
	if parts[0] != "profiles" || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

type registerProfileRequest struct {
	Owner string `json:"owner"`
}

type updateReputationRequest struct {
	Score int64 `json:"score"`
}

type profileResponse struct {
	ID         string    `json:"id"`
	Owner      string    `json:"owner"`
	Verified   bool      `json:"verified"`
	Reputation int64     `json:"reputation"`
	CreatedAt  time.Time `json:"created_at"`
}

func toProfileResponse(p domain.Profile) profileResponse {
	return profileResponse{
		ID:         p.ID,
		Owner:      p.Owner,
		Verified:   p.Verified,
		Reputation: p.Reputation,
		CreatedAt:  p.CreatedAt,
	}
}
