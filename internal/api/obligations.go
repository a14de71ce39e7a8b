package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hearthledger/hearthledger/internal/middleware"
	"github.com/hearthledger/hearthledger/internal/models"
	"github.com/hearthledger/hearthledger/internal/service"
)

// splitPayload is the tagged wire form of a split request: every method
// carries exactly one of the per-participant input fields.
type splitPayload struct {
	TotalCents    int64              `json:"total_cents"`
	Method        models.SplitMethod `json:"method"`
	Participants  []string           `json:"participants,omitempty"`
	Weights       map[string]int64   `json:"weights,omitempty"`
	AmountsCents  map[string]int64   `json:"amounts_cents,omitempty"`
	PercentBps    map[string]int64   `json:"percent_bps,omitempty"`
	FillRemainder bool               `json:"fill_remainder,omitempty"`
}

// inputs selects the per-participant field matching the method and
// rejects payloads that mix inputs from different methods.
func (p *splitPayload) inputs() (map[string]int64, string) {
	given := 0
	for _, m := range []map[string]int64{p.Weights, p.AmountsCents, p.PercentBps} {
		if len(m) > 0 {
			given++
		}
	}
	if given > 1 {
		return nil, "supply only the input field matching the split method"
	}

	switch p.Method {
	case models.SplitEqual:
		if given > 0 {
			return nil, "equal splits take no per-participant inputs"
		}
		return nil, ""
	case models.SplitByWeight:
		if len(p.Weights) == 0 {
			return nil, "by_weight splits require weights"
		}
		return p.Weights, ""
	case models.SplitExactAmounts:
		if len(p.AmountsCents) == 0 {
			return nil, "exact_amounts splits require amounts_cents"
		}
		return p.AmountsCents, ""
	case models.SplitPercentage:
		if len(p.PercentBps) == 0 {
			return nil, "percentage splits require percent_bps"
		}
		return p.PercentBps, ""
	default:
		return nil, "unknown split method: " + string(p.Method)
	}
}

type createObligationRequest struct {
	HouseholdID string          `json:"household_id"`
	Description string          `json:"description"`
	Category    models.Category `json:"category,omitempty"`
	splitPayload
}

type updateObligationRequest struct {
	Description    string          `json:"description"`
	Category       models.Category `json:"category,omitempty"`
	ConfirmReduced bool            `json:"confirm_reduced,omitempty"`
	splitPayload
}

type paymentRequest struct {
	AmountCents    int64  `json:"amount_cents"`
	PaidBy         string `json:"paid_by,omitempty"`
	Method         string `json:"method,omitempty"`
	Note           string `json:"note,omitempty"`
	CapToRemaining bool   `json:"cap_to_remaining,omitempty"`
}

type settleRequest struct {
	Method string `json:"method,omitempty"`
}

type obligationResponse struct {
	ID            string              `json:"id"`
	HouseholdID   string              `json:"household_id"`
	Description   string              `json:"description"`
	Category      models.Category     `json:"category"`
	TotalCents    int64               `json:"total_cents"`
	Method        models.SplitMethod  `json:"method"`
	Participants  []string            `json:"participants"`
	Inputs        map[string]int64    `json:"inputs,omitempty"`
	FillRemainder bool                `json:"fill_remainder,omitempty"`
	Split         *models.SplitResult `json:"split"`
	CreatedBy     string              `json:"created_by"`
	Version       int64               `json:"version"`
	CreatedAt     int64               `json:"created_at"`
	UpdatedAt     int64               `json:"updated_at"`
}

func toObligationResponse(o *models.Obligation) obligationResponse {
	return obligationResponse{
		ID:            o.ID,
		HouseholdID:   o.HouseholdID,
		Description:   o.Description,
		Category:      o.Category,
		TotalCents:    o.TotalCents,
		Method:        o.Method,
		Participants:  o.Participants,
		Inputs:        o.Inputs,
		FillRemainder: o.FillRemainder,
		Split:         o.Split,
		CreatedBy:     o.CreatedBy,
		Version:       o.Version,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func (s *Server) handlePreviewSplit(w http.ResponseWriter, r *http.Request) {
	var req splitPayload
	if !decodeJSON(w, r, &req) {
		return
	}
	inputs, msg := req.inputs()
	if msg != "" {
		badRequest(w, msg)
		return
	}

	split, err := s.obligations.Preview(service.ObligationInput{
		TotalCents:    req.TotalCents,
		Method:        req.Method,
		Participants:  req.Participants,
		Inputs:        inputs,
		FillRemainder: req.FillRemainder,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	splitsComputed.WithLabelValues(string(req.Method)).Inc()
	writeJSON(w, http.StatusOK, split)
}

func (s *Server) handleCreateObligation(w http.ResponseWriter, r *http.Request) {
	var req createObligationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	inputs, msg := req.inputs()
	if msg != "" {
		badRequest(w, msg)
		return
	}

	obl, err := s.obligations.Create(r.Context(), middleware.GetUserID(r.Context()), service.ObligationInput{
		HouseholdID:   req.HouseholdID,
		Description:   req.Description,
		Category:      req.Category,
		TotalCents:    req.TotalCents,
		Method:        req.Method,
		Participants:  req.Participants,
		Inputs:        inputs,
		FillRemainder: req.FillRemainder,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	splitsComputed.WithLabelValues(string(obl.Method)).Inc()
	writeJSON(w, http.StatusCreated, toObligationResponse(obl))
}

func (s *Server) handleGetObligation(w http.ResponseWriter, r *http.Request) {
	obl, err := s.obligations.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	// Membership gate: the household lookup enforces it.
	if _, err := s.households.Get(r.Context(), middleware.GetUserID(r.Context()), obl.HouseholdID); err != nil {
		writeError(w, err)
		return
	}

	status, err := s.ledger.Status(r.Context(), obl.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Obligation obligationResponse      `json:"obligation"`
		Status     models.ObligationStatus `json:"status"`
	}{toObligationResponse(obl), status})
}

func (s *Server) handleUpdateObligation(w http.ResponseWriter, r *http.Request) {
	var req updateObligationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	inputs, msg := req.inputs()
	if msg != "" {
		badRequest(w, msg)
		return
	}

	obl, err := s.obligations.Update(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), service.UpdateInput{
		Description:    req.Description,
		Category:       req.Category,
		TotalCents:     req.TotalCents,
		Method:         req.Method,
		Participants:   req.Participants,
		Inputs:         inputs,
		FillRemainder:  req.FillRemainder,
		ConfirmReduced: req.ConfirmReduced,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	splitsComputed.WithLabelValues(string(obl.Method)).Inc()
	writeJSON(w, http.StatusOK, toObligationResponse(obl))
}

func (s *Server) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	obl, err := s.obligations.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	requester := middleware.GetUserID(r.Context())
	// Membership gate: the household lookup enforces it.
	if _, err := s.households.Get(r.Context(), requester, obl.HouseholdID); err != nil {
		writeError(w, err)
		return
	}

	paidBy := req.PaidBy
	if paidBy == "" {
		paidBy = requester
	}

	balance, err := s.ledger.RecordPayment(r.Context(), obl.ID, paidBy, req.AmountCents, service.PaymentOptions{
		Method:         req.Method,
		Note:           req.Note,
		CapToRemaining: req.CapToRemaining,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	paymentsRecorded.Inc()
	writeJSON(w, http.StatusOK, balance)
}

func (s *Server) handleSettle(w http.ResponseWriter, r *http.Request) {
	var req settleRequest
	if r.ContentLength > 0 && !decodeJSON(w, r, &req) {
		return
	}

	obl, err := s.obligations.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	// Membership gate: the household lookup enforces it.
	if _, err := s.households.Get(r.Context(), middleware.GetUserID(r.Context()), obl.HouseholdID); err != nil {
		writeError(w, err)
		return
	}

	balance, err := s.ledger.MarkPaid(r.Context(), obl.ID, chi.URLParam(r, "userID"), req.Method)
	if err != nil {
		writeError(w, err)
		return
	}

	paymentsRecorded.Inc()
	writeJSON(w, http.StatusOK, balance)
}
