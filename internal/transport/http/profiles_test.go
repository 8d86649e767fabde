package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Vinicius-cybertron/Event-Ticketing-Platform/internal/domain"
)

func TestHandleProfiles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		body           string
		serviceErr     error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "success",
			body:           `{"owner":"acct-alice"}`,
			expectedStatus: http.StatusCreated,
			expectedSubstr: `"verified":false`,
		},
		{
			name:           "invalid json",
			body:           `{"owner":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing owner",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "internal error",
			body:           `{"owner":"acct-alice"}`,
			serviceErr:     errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubProfileService{
				profile: domain.Profile{ID: "prof-123", Owner: "acct-alice"},
				err:     tt.serviceErr,
			}
			req := httptest.NewRequest(http.MethodPost, "/profiles", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			HandleProfiles(svc).ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
			if tt.expectedSubstr != "" {
				body := rec.Body.String()
				if !strings.Contains(body, tt.expectedSubstr) {
					t.Fatalf("expected response to contain %q, got %q", tt.expectedSubstr, body)
				}
			}
		})
	}
}

func TestHandleProfileActions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		path           string
		body           string
		serviceErr     error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "verify succeeds",
			path:           "/profiles/prof-1/verify",
			body:           ``,
			expectedStatus: http.StatusOK,
			expectedSubstr: `"verified":true`,
		},
		{
			name:           "verify without the admin key",
			path:           "/profiles/prof-1/verify",
			body:           ``,
			serviceErr:     domain.ErrUnauthorized,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "verify rejects an unknown profile",
			path:           "/profiles/prof-missing/verify",
			body:           ``,
			serviceErr:     domain.ErrProfileNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "reputation succeeds",
			path:           "/profiles/prof-1/reputation",
			body:           `{"score":42}`,
			expectedStatus: http.StatusOK,
			expectedSubstr: `"reputation":42`,
		},
		{
			name:           "reputation rejects invalid json",
			path:           "/profiles/prof-1/reputation",
			body:           `{"score":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "reputation rejects a negative score",
			path:           "/profiles/prof-1/reputation",
			body:           `{"score":-1}`,
			serviceErr:     domain.ErrInvalidReputation,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown action",
			path:           "/profiles/prof-1/promote",
			body:           ``,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "internal error",
			path:           "/profiles/prof-1/verify",
			body:           ``,
			serviceErr:     errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubProfileService{
				profile: domain.Profile{ID: "prof-1", Owner: "acct-alice", Verified: true, Reputation: 42},
				err:     tt.serviceErr,
			}
			req := httptest.NewRequest(http.MethodPost, tt.path, bytes.NewBufferString(tt.body))
			req.Header.Set(adminHeader, "admin-1")
			rec := httptest.NewRecorder()

			HandleProfileActions(svc).ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
			if tt.expectedSubstr != "" {
				body := rec.Body.String()
				if !strings.Contains(body, tt.expectedSubstr) {
					t.Fatalf("expected response to contain %q, got %q", tt.expectedSubstr, body)
				}
			}
		})
	}

	t.Run("forwards the admin key", func(t *testing.T) {
		t.Parallel()
		svc := &stubProfileService{profile: domain.Profile{ID: "prof-1", Verified: true}}
		req := httptest.NewRequest(http.MethodPost, "/profiles/prof-1/verify", nil)
		req.Header.Set(adminHeader, "admin-77")
		rec := httptest.NewRecorder()

		HandleProfileActions(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if svc.gotAdminKey != "admin-77" || svc.gotProfileID != "prof-1" {
			t.Fatalf("unexpected forwarding: key=%q profile=%q", svc.gotAdminKey, svc.gotProfileID)
		}
	})

	t.Run("rejects other methods", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/profiles/prof-1/verify", nil)
		rec := httptest.NewRecorder()

		HandleProfileActions(&stubProfileService{}).ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected status 405, got %d", rec.Code)
		}
	})
}

type stubProfileService struct {
	profile      domain.Profile
	err          error
	gotAdminKey  string
	gotProfileID string
	gotScore     int64
}

func (s *stubProfileService) Register(_ context.Context, _ string) (domain.Profile, error) {
	if s.err != nil {
		return domain.Profile{}, s.err
	}
	return s.profile, nil
}

func (s *stubProfileService) VerifyProfile(_ context.Context, adminCapID, profileID string) (domain.Profile, error) {
	s.gotAdminKey, s.gotProfileID = adminCapID, profileID
	if s.err != nil {
		return domain.Profile{}, s.err
	}
	return s.profile, nil
}

func (s *stubProfileService) UpdateReputation(_ context.Context, adminCapID, profileID string, score int64) (domain.Profile, error) {
	s.gotAdminKey, s.gotProfileID, s.gotScore = adminCapID, profileID, score
	if s.err != nil {
		return domain.Profile{}, s.err
	}
	return s.profile, nil
}
