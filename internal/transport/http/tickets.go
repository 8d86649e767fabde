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

// TicketLifecycleService is the minimal interface for the per-ticket routes.
type TicketLifecycleService interface {
	ValidateTicket(ctx context.Context, ticketID, eventID string) error
	RefundTicket(ctx context.Context, in app.RefundTicketInput) (app.Payout, error)
	ResellTicket(ctx context.Context, in app.ResellTicketInput) (app.Payout, error)
}

// HandleTicketActions returns an HTTP handler for POST /tickets/{id}/validate,
// /tickets/{id}/refund, and /tickets/{id}/resell.
func HandleTicketActions(svc TicketLifecycleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ticketID, action, ok := parseTicketPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		switch action {
		case "validate":
			handleValidateTicket(w, r, svc, ticketID)
		case "refund":
			handleRefundTicket(w, r, svc, ticketID)
		case "resell":
			handleResellTicket(w, r, svc, ticketID)
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

func handleValidateTicket(w http.ResponseWriter, r *http.Request, svc TicketLifecycleService, ticketID string) {
	var req validateTicketRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	err := svc.ValidateTicket(r.Context(), ticketID, req.EventID)
	if err != nil {
		switch err {
		case domain.ErrInvalidID, domain.ErrEventNotFound, domain.ErrTicketNotFound,
			domain.ErrEventNotActive, domain.ErrTicketMismatch:
			writeDomainError(w, err)
		default:
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func handleRefundTicket(w http.ResponseWriter, r *http.Request, svc TicketLifecycleService, ticketID string) {
	var req refundTicketRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	payout, err := svc.RefundTicket(r.Context(), app.RefundTicketInput{
		TicketID: ticketID,
		EventID:  req.EventID,
		CapID:    r.Header.Get(capabilityHeader),
	})
	if err != nil {
		switch err {
		case domain.ErrInvalidID, domain.ErrEventNotFound, domain.ErrTicketNotFound,
			domain.ErrUnauthorized, domain.ErrTicketMismatch, domain.ErrAlreadyRefunded,
			domain.ErrInsufficientPoolFunds:
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

func handleResellTicket(w http.ResponseWriter, r *http.Request, svc TicketLifecycleService, ticketID string) {
	var req resellTicketRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}
	if req.NewOwner == "" {
		writeError(w, http.StatusBadRequest, codeAccountRequired, domain.ErrAccountRequired.Error())
		return
	}

	payout, err := svc.ResellTicket(r.Context(), app.ResellTicketInput{
		TicketID: ticketID,
		EventID:  req.EventID,
		NewOwner: req.NewOwner,
		Payment:  req.Payment,
		Seller:   req.Seller,
	})
	if err != nil {
		switch err {
		case domain.ErrAccountRequired, domain.ErrInvalidID, domain.ErrEventNotFound,
			domain.ErrTicketNotFound, domain.ErrUnauthorized, domain.ErrInsufficientFunds:
			writeDomainError(w, err)
		default:
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		}
		return
	}

	resp := resellTicketResponse{
		TicketID: ticketID,
		Owner:    req.NewOwner,
	}
	if payout.Recipient != "" {
		resp.Payout = &payoutResponse{
			Amount:    payout.Amount,
			Recipient: payout.Recipient,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func parseTicketPath(path string) (string, string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 {
		return "", "", false
	}
	if parts[0] != "tickets" || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

type validateTicketRequest struct {
	EventID string `json:"event_id"`
}

type refundTicketRequest struct {
	EventID string `json:"event_id"`
}

type resellTicketRequest struct {
	EventID  string `json:"event_id"`
	NewOwner string `json:"new_owner"`
	Payment  int64  `json:"payment"`
	Seller   string `json:"seller"`
}

type resellTicketResponse struct {
	TicketID string          `json:"ticket_id"`
	Owner    string          `json:"owner"`
	Payout   *payoutResponse `json:"payout,omitempty"`
}

type ticketResponse struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	Owner     string    `json:"owner"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toTicketResponse(t domain.Ticket) ticketResponse {
	return ticketResponse{
		ID:        t.ID,
		EventID:   t.EventID,
		Owner:     t.Owner,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
	}
}
