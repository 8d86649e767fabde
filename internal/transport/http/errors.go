package http

import (
	"encoding/json"
	"net/http"

	"github.com/Vinicius-cybertron/Event-Ticketing-Platform/internal/domain"
)

const (
	codeMethodNotAllowed      = "method_not_allowed"
	codeNotFound              = "not_found"
	codeInvalidRequestBody    = "invalid_request_body"
	codeInvalidID             = "invalid_id"
	codeEventNameRequired     = "event_name_required"
	codeAccountRequired       = "account_required"
	codeInvalidPrice          = "invalid_price"
	codeInvalidCapacity       = "invalid_capacity"
	codeInvalidRating         = "invalid_rating"
	codeInvalidReputation     = "invalid_reputation"
	codeEventNotFound         = "event_not_found"
	codeTicketNotFound        = "ticket_not_found"
	codeParticipantNotFound   = "participant_not_found"
	codeProfileNotFound       = "profile_not_found"
	codeUnauthorized          = "unauthorized"
	codeInsufficientFunds     = "insufficient_funds"
	codeCapacityReached       = "capacity_reached"
	codeEventNotActive        = "event_not_active"
	codeTicketMismatch        = "ticket_mismatch"
	codeAlreadyRefunded       = "already_refunded"
	codeInsufficientPoolFunds = "insufficient_pool_funds"
	codeAlreadyRegistered     = "already_registered"
	codeNotRegistered         = "not_registered"
	codeForbidden             = "forbidden"
	codeInternalError         = "internal_error"
)

// domainStatus maps each domain sentinel to its HTTP status and stable code.
// Handlers decide which sentinels an endpoint can produce; this table decides
// how they go over the wire.
var domainStatus = map[error]struct {
	status int
	code   string
}{
	domain.ErrEventNameRequired:     {http.StatusBadRequest, codeEventNameRequired},
	domain.ErrAccountRequired:       {http.StatusBadRequest, codeAccountRequired},
	domain.ErrInvalidPrice:          {http.StatusBadRequest, codeInvalidPrice},
	domain.ErrInvalidCapacity:       {http.StatusBadRequest, codeInvalidCapacity},
	domain.ErrInvalidRating:         {http.StatusBadRequest, codeInvalidRating},
	domain.ErrInvalidReputation:     {http.StatusBadRequest, codeInvalidReputation},
	domain.ErrInvalidID:             {http.StatusBadRequest, codeInvalidID},
	domain.ErrEventNotFound:         {http.StatusNotFound, codeEventNotFound},
	domain.ErrTicketNotFound:        {http.StatusNotFound, codeTicketNotFound},
	domain.ErrParticipantNotFound:   {http.StatusNotFound, codeParticipantNotFound},
	domain.ErrProfileNotFound:       {http.StatusNotFound, codeProfileNotFound},
	domain.ErrUnauthorized:          {http.StatusForbidden, codeUnauthorized},
	domain.ErrInsufficientFunds:     {http.StatusConflict, codeInsufficientFunds},
	domain.ErrCapacityReached:       {http.StatusConflict, codeCapacityReached},
	domain.ErrEventNotActive:        {http.StatusConflict, codeEventNotActive},
	domain.ErrTicketMismatch:        {http.StatusConflict, codeTicketMismatch},
	domain.ErrAlreadyRefunded:       {http.StatusConflict, codeAlreadyRefunded},
	domain.ErrInsufficientPoolFunds: {http.StatusConflict, codeInsufficientPoolFunds},
	domain.ErrAlreadyRegistered:     {http.StatusConflict, codeAlreadyRegistered},
	domain.ErrNotRegistered:         {http.StatusConflict, codeNotRegistered},
}

func writeDomainError(w http.ResponseWriter, err error) {
	if m, ok := domainStatus[err]; ok {
		writeError(w, m.status, m.code, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}
