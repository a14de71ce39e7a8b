package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hearthledger/hearthledger/internal/calculator"
	"github.com/hearthledger/hearthledger/internal/middleware"
	"github.com/hearthledger/hearthledger/internal/models"
)

type createHouseholdRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members,omitempty"`
}

type addMembersRequest struct {
	UserIDs []string `json:"user_ids"`
}

type householdResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Members   []string `json:"members"`
	CreatedBy string   `json:"created_by"`
	CreatedAt int64    `json:"created_at"`
}

func toHouseholdResponse(h *models.Household) householdResponse {
	return householdResponse{
		ID:        h.ID,
		Name:      h.Name,
		Members:   h.Members,
		CreatedBy: h.CreatedBy,
		CreatedAt: h.CreatedAt,
	}
}

func (s *Server) handleCreateHousehold(w http.ResponseWriter, r *http.Request) {
	var req createHouseholdRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		badRequest(w, "name is required")
		return
	}

	household, err := s.households.Create(r.Context(), middleware.GetUserID(r.Context()), req.Name, req.Members)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toHouseholdResponse(household))
}

func (s *Server) handleGetHousehold(w http.ResponseWriter, r *http.Request) {
	household, err := s.households.Get(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHouseholdResponse(household))
}

func (s *Server) handleAddMembers(w http.ResponseWriter, r *http.Request) {
	var req addMembersRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.UserIDs) == 0 {
		badRequest(w, "user_ids is required")
		return
	}

	household, err := s.households.AddMembers(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), req.UserIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHouseholdResponse(household))
}

func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	err := s.households.RemoveMember(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListObligations(w http.ResponseWriter, r *http.Request) {
	obligations, err := s.households.ListObligations(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]obligationResponse, 0, len(obligations))
	for _, o := range obligations {
		out = append(out, toObligationResponse(o))
	}
	writeJSON(w, http.StatusOK, struct {
		Obligations []obligationResponse `json:"obligations"`
	}{out})
}

func (s *Server) handleHouseholdBalances(w http.ResponseWriter, r *http.Request) {
	members, debts, err := s.households.Balances(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Members []calculator.MemberBalance `json:"members"`
		Debts   []calculator.DebtEdge      `json:"debts"`
	}{members, debts})
}
