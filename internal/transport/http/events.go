package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/Vinicius-cybertron/Event-Ticketing-Platform/internal/app"
	"github.com/Vinicius-cybertron/Event-Ticketing-Platform/internal/domain"
)

// capabilityHeader carries the organizer cap minted at event creation.
const capabilityHeader = "X-Capability-Key"

// EventCatalogService is the minimal interface for the public event catalog.
type EventCatalogService interface {
	CreateEvent(ctx context.Context, in app.CreateEventInput) (domain.Event, domain.OrganizerCap, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
}

// EventAdminService is the minimal interface for capability-gated event
// endpoints.
type EventAdminService interface {
	UpdateEventDetails(ctx context.Context, capID, eventID, description string) (domain.Event, error)
	CancelEvent(ctx context.Context, capID, eventID string) (domain.Event, error)
	Withdraw(ctx context.Context, capID, eventID string) (app.Payout, error)
}

// TicketSeller is the minimal interface needed to sell tickets.
type TicketSeller interface {
	BuyTicket(ctx context.Context, in app.BuyTicketInput) (domain.Ticket, error)
}

// HandleEvents returns an HTTP handler for event creation and listing.
func HandleEvents(svc EventCatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			events, err := svc.ListEvents(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				return
			}
			resp := make([]eventResponse, 0, len(events))
			for _, event := range events {
				resp = append(resp, toEventResponse(event))
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)
			return
		case http.MethodPost:
			var req createEventRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}
			if err := req.validate(); err != nil {
				writeDomainError(w, err)
				return
			}

			event, cap, err := svc.CreateEvent(r.Context(), app.CreateEventInput{
				Name:         req.Name,
				Description:  req.Description,
				TicketPrice:  req.TicketPrice,
				TotalTickets: req.TotalTickets,
				StartOffset:  time.Duration(req.StartOffsetMS) * time.Millisecond,
				EndOffset:    time.Duration(req.EndOffsetMS) * time.Millisecond,
				Owner:        req.Owner,
			})
			if err != nil {
				switch err {
				case domain.ErrEventNameRequired, domain.ErrAccountRequired, domain.ErrInvalidPrice, domain.ErrInvalidCapacity:
					writeDomainError(w, err)
				default:
					writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				}
				return
			}

			resp := createEventResponse{
				eventResponse: toEventResponse(event),
				CapabilityKey: cap.ID,
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(resp)
			return
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
	}
}

// HandleEventActions returns an HTTP handler for the per-event routes:
// PATCH /events/{id} and POST /events/{id}/cancel, /events/{id}/withdraw,
// /events/{id}/tickets.
func HandleEventActions(admin EventAdminService, seller TicketSeller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, action, ok := parseEventPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch action {
		case "":
			if r.Method != http.MethodPatch {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			handleUpdateEvent(w, r, admin, eventID)
		case "cancel":
			if r.Method != http.MethodPost {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			handleCancelEvent(w, r, admin, eventID)
		case "withdraw":
			if r.Method != http.MethodPost {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			handleWithdraw(w, r, admin, eventID)
		case "tickets":
			if r.Method != http.MethodPost {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			handleBuyTicket(w, r, seller, eventID)
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

func handleUpdateEvent(w http.ResponseWriter, r *http.Request, svc EventAdminService, eventID string) {
	var req updateEventRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	event, err := svc.UpdateEventDetails(r.Context(), r.Header.Get(capabilityHeader), eventID, req.Description)
	if err != nil {
		switch err {
		case domain.ErrUnauthorized, domain.ErrInvalidID, domain.ErrEventNotFound:
			writeDomainError(w, err)
		default:
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toEventResponse(event))
}

func handleCancelEvent(w http.ResponseWriter, r *http.Request, svc EventAdminService, eventID string) {
	event, err := svc.CancelEvent(r.Context(), r.Header.Get(capabilityHeader), eventID)
	if err != nil {
		switch err {
		case domain.ErrUnauthorized, domain.ErrInvalidID, domain.ErrEventNotFound:
			writeDomainError(w, err)
		default:
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toEventResponse(event))
}

func handleWithdraw(w http.ResponseWriter, r *http.Request, svc EventAdminService, eventID string) {
	payout, err := svc.Withdraw(r.Context(), r.Header.Get(capabilityHeader), eventID)
	if err != nil {
		switch err {
		case domain.ErrUnauthorized, domain.ErrInvalidID, domain.ErrEventNotFound:
			writeDomainError(w, err)
		default:
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payoutResponse{
		Amount:    payout.Amount,
		Recipient: payout.Recipient,
	})
}

func handleBuyTicket(w http.ResponseWriter, r *http.Request, svc TicketSeller, eventID string) {
	var req buyTicketRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}
	if req.Buyer == "" {
		writeError(w, http.StatusBadRequest, codeAccountRequired, domain.ErrAccountRequired.Error())
		return
	}

	ticket, err := svc.BuyTicket(r.Context(), app.BuyTicketInput{
		EventID: eventID,
		Payment: req.Payment,
		Buyer:   req.Buyer,
	})
	if err != nil {
		switch err {
		case domain.ErrAccountRequired, domain.ErrInvalidID, domain.ErrEventNotFound,
			domain.ErrInsufficientFunds, domain.ErrCapacityReached:
			writeDomainError(w, err)
		default:
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toTicketResponse(ticket))
}

func parseEventPath(path string) (string, string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || len(parts) > 3 {
		return "", "", false
	}
	if parts[0] != "events" || parts[1] == "" {
		return "", "", false
	}
	if len(parts) == 2 {
		return parts[1], "", true
	}
	if parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

type createEventRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	TicketPrice   int64  `json:"ticket_price"`
	TotalTickets  int    `json:"total_tickets"`
	StartOffsetMS int64  `json:"start_offset_ms"`
	EndOffsetMS   int64  `json:"end_offset_ms"`
	Owner         string `json:"owner"`
}

func (r createEventRequest) validate() error {
	if r.Name == "" {
		return domain.ErrEventNameRequired
	}
	if r.Owner == "" {
		return domain.ErrAccountRequired
	}
	if r.TicketPrice < 0 {
		return domain.ErrInvalidPrice
	}
	if r.TotalTickets < 0 {
		return domain.ErrInvalidCapacity
	}
	return nil
}

type updateEventRequest struct {
	Description string `json:"description"`
}

type buyTicketRequest struct {
	Payment int64  `json:"payment"`
	Buyer   string `json:"buyer"`
}

type eventResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	TicketPrice  int64     `json:"ticket_price"`
	TotalTickets int       `json:"total_tickets"`
	SoldTickets  int       `json:"sold_tickets"`
	Pool         int64     `json:"pool"`
	StartsAt     time.Time `json:"starts_at"`
	EndsAt       time.Time `json:"ends_at"`
	Cancelled    bool      `json:"cancelled"`
	CreatedAt    time.Time `json:"created_at"`
}

func toEventResponse(e domain.Event) eventResponse {
	return eventResponse{
		ID:           e.ID,
		Name:         e.Name,
		Description:  e.Description,
		TicketPrice:  e.TicketPrice,
		TotalTickets: e.TotalTickets,
		SoldTickets:  e.SoldTickets,
		Pool:         e.Pool,
		StartsAt:     e.StartsAt,
		EndsAt:       e.EndsAt,
		Cancelled:    e.Cancelled,
		CreatedAt:    e.CreatedAt,
	}
}

type createEventResponse struct {
	eventResponse
	CapabilityKey string `json:"capability_key"`
}

type payoutResponse struct {
	Amount    int64  `json:"amount"`
	Recipient string `json:"recipient"`
}
