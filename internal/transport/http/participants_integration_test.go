package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Vinicius-cybertron/Event-Ticketing-Platform/internal/app"
	"github.com/Vinicius-cybertron/Event-Ticketing-Platform/internal/clock"
	"github.com/Vinicius-cybertron/Event-Ticketing-Platform/internal/storage/postgres"
	"github.com/Vinicius-cybertron/Event-Ticketing-Platform/internal/testutil"
)

func TestParticipantFlow_HTTPIntegration(t *testing.T) {
	pool := testutil.NewTestPool(t)
	testutil.ApplyMigrations(t, context.Background(), pool)

	now := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	eventRepo := postgres.NewEventRepository(pool)
	participantRepo := postgres.NewParticipantRepository(pool)
	eventSvc := app.NewEventService(eventRepo, clock.NewFixed(now))
	participantSvc := app.NewParticipantService(participantRepo, clock.NewFixed(now))

	ctx := context.Background()
	testutil.TruncateAll(t, ctx, pool)

	mux := http.NewServeMux()
	mux.Handle("/events", HandleEvents(eventSvc))
	mux.Handle("/participants", HandleParticipants(participantSvc))
	mux.Handle("/participants/", HandleParticipantActions(participantSvc))

	createEvent := func(name string) string {
		t.Helper()
		body := []byte(`{"name":"` + name + `","owner":"acct-organizer"}`)
		req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewBuffer(body))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d", rec.Code)
		}
		var created createEventResponse
		if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		return created.ID
	}
	gooseID := createEvent("Goose Fest")
	duckID := createEvent("Duck Expo")

	registerBody := []byte(`{"owner":"acct-dana"}`)
	req := httptest.NewRequest(http.MethodPost, "/participants", bytes.NewBuffer(registerBody))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var participant participantResponse
	if err := json.NewDecoder(rec.Body).Decode(&participant); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if participant.Owner != "acct-dana" || len(participant.Registered) != 0 || len(participant.Notifications) != 0 {
		t.Fatalf("unexpected participant: %+v", participant)
	}

	regReq := httptest.NewRequest(http.MethodPost, "/participants/"+participant.ID+"/registrations", bytes.NewBuffer([]byte(`{"event_id":"`+gooseID+`"}`)))
	regRec := httptest.NewRecorder()
	mux.ServeHTTP(regRec, regReq)

	if regRec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", regRec.Code, regRec.Body.String())
	}
	var registered participantResponse
	if err := json.NewDecoder(regRec.Body).Decode(&registered); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(registered.Registered) != 1 || registered.Registered[0] != gooseID {
		t.Fatalf("unexpected registrations: %v", registered.Registered)
	}

	// Explicit registration is once per event.
	dupReq := httptest.NewRequest(http.MethodPost, "/participants/"+participant.ID+"/registrations", bytes.NewBuffer([]byte(`{"event_id":"`+gooseID+`"}`)))
	dupRec := httptest.NewRecorder()
	mux.ServeHTTP(dupRec, dupReq)
	if dupRec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", dupRec.Code)
	}

	checkinReq := httptest.NewRequest(http.MethodPost, "/participants/"+participant.ID+"/checkins", bytes.NewBuffer([]byte(`{"event_id":"`+gooseID+`"}`)))
	checkinRec := httptest.NewRecorder()
	mux.ServeHTTP(checkinRec, checkinReq)
	if checkinRec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d: %s", checkinRec.Code, checkinRec.Body.String())
	}

	strangerReq := httptest.NewRequest(http.MethodPost, "/participants/"+participant.ID+"/checkins", bytes.NewBuffer([]byte(`{"event_id":"`+duckID+`"}`)))
	strangerRec := httptest.NewRecorder()
	mux.ServeHTTP(strangerRec, strangerReq)
	if strangerRec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", strangerRec.Code)
	}

	rateReq := httptest.NewRequest(http.MethodPost, "/participants/"+participant.ID+"/ratings", bytes.NewBuffer([]byte(`{"event_id":"`+gooseID+`","rating":5}`)))
	rateRec := httptest.NewRecorder()
	mux.ServeHTTP(rateRec, rateReq)
	if rateRec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d: %s", rateRec.Code, rateRec.Body.String())
	}

	badRateReq := httptest.NewRequest(http.MethodPost, "/participants/"+participant.ID+"/ratings", bytes.NewBuffer([]byte(`{"event_id":"`+gooseID+`","rating":-1}`)))
	badRateRec := httptest.NewRecorder()
	mux.ServeHTTP(badRateRec, badRateReq)
	if badRateRec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", badRateRec.Code)
	}

	// Subscribing registers as a side effect and leaves a notification.
	subReq := httptest.NewRequest(http.MethodPost, "/participants/"+participant.ID+"/subscriptions", bytes.NewBuffer([]byte(`{"event_id":"`+duckID+`"}`)))
	subRec := httptest.NewRecorder()
	mux.ServeHTTP(subRec, subReq)

	if subRec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", subRec.Code, subRec.Body.String())
	}
	var subscribed participantResponse
	if err := json.NewDecoder(subRec.Body).Decode(&subscribed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(subscribed.Registered) != 2 || subscribed.Registered[1] != duckID {
		t.Fatalf("unexpected registrations: %v", subscribed.Registered)
	}
	if len(subscribed.Notifications) != 1 || subscribed.Notifications[0] != "subscribed to notifications for Duck Expo" {
		t.Fatalf("unexpected notifications: %v", subscribed.Notifications)
	}

	var regCount, noteCount int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM participant_registrations WHERE participant_id = $1`, participant.ID).Scan(&regCount); err != nil {
		t.Fatalf("query registrations: %v", err)
	}
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM participant_notifications WHERE participant_id = $1`, participant.ID).Scan(&noteCount); err != nil {
		t.Fatalf("query notifications: %v", err)
	}
	if regCount != 2 || noteCount != 1 {
		t.Fatalf("expected 2 registrations and 1 notification, got %d and %d", regCount, noteCount)
	}
}
