package calculator

import (
	"sort"

	"github.com/hearthledger/hearthledger/internal/models"
)

// DeriveStatus builds the settlement picture for one obligation from
// its stored split and the append-only payment log. Balances are
// derived here every time, never stored, so they cannot drift from the
// payment history. A negative remaining amount means overpaid and is
// surfaced as-is.
func DeriveStatus(obl *models.Obligation, payments []models.Payment) models.ObligationStatus {
	paidBy := make(map[string]int64, len(obl.Participants))
	for _, p := range payments {
		paidBy[p.PaidBy] += p.AmountCents
	}

	var shares []models.Share
	if obl.Split != nil {
		shares = obl.Split.Shares
	}

	balances := make([]models.Balance, len(shares))
	settled := true
	for i, s := range shares {
		balances[i] = models.NewBalance(s.UserID, s.OwedCents, paidBy[s.UserID])
		if !balances[i].FullyPaid {
			settled = false
		}
	}

	return models.ObligationStatus{
		ObligationID: obl.ID,
		TotalCents:   obl.TotalCents,
		Shares:       shares,
		Balances:     balances,
		Payments:     payments,
		FullySettled: settled,
	}
}

// MemberBalance is one member's aggregate position across a household's
// obligations. Positive NetCents means the member is owed money.
type MemberBalance struct {
	UserID    string `json:"user_id"`
	NetCents  int64  `json:"net_cents"`
	PaidCents int64  `json:"paid_cents"`
	OwedCents int64  `json:"owed_cents"`
}

// DebtEdge is a simplified debt from one member to another.
type DebtEdge struct {
	From        string `json:"from"`
	To          string `json:"to"`
	AmountCents int64  `json:"amount_cents"`
}

// ObligationLedger pairs an obligation with its recorded payments, the
// minimal input for household-level aggregation.
type ObligationLedger struct {
	Obligation *models.Obligation
	Payments   []models.Payment
}

// HouseholdBalances aggregates every member's position across a
// household's obligations. The creator of each obligation is treated as
// having fronted its full amount; each participant owes their share;
// recorded payments move value from the payer back to the creator. The
// debt matrix is then simplified by walking debtors against creditors
// and settling the smaller outstanding amount at each step.
//
// Output ordering is deterministic: members sort by user ID, edges by
// the matching walk over that order.
func HouseholdBalances(ledgers []ObligationLedger) ([]MemberBalance, []DebtEdge) {
	balances := make(map[string]*MemberBalance)
	member := func(id string) *MemberBalance {
		b, ok := balances[id]
		if !ok {
			b = &MemberBalance{UserID: id}
			balances[id] = b
		}
		return b
	}

	for _, l := range ledgers {
		obl := l.Obligation
		if obl.Split == nil || obl.CreatedBy == "" {
			continue
		}

		member(obl.CreatedBy).PaidCents += obl.TotalCents
		for _, s := range obl.Split.Shares {
			member(s.UserID).OwedCents += s.OwedCents
		}

		// A payment settles part of the payer's debt to whoever
		// fronted the cost.
		for _, p := range l.Payments {
			if p.PaidBy == obl.CreatedBy {
				continue
			}
			member(p.PaidBy).PaidCents += p.AmountCents
			member(obl.CreatedBy).OwedCents += p.AmountCents
		}
	}

	ids := make([]string, 0, len(balances))
	for id, b := range balances {
		b.NetCents = b.PaidCents - b.OwedCents
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]MemberBalance, 0, len(ids))
	var creditors, debtors []MemberBalance
	for _, id := range ids {
		b := *balances[id]
		out = append(out, b)
		switch {
		case b.NetCents > 0:
			creditors = append(creditors, b)
		case b.NetCents < 0:
			debtors = append(debtors, b)
		}
	}

	// Greedy matching: walk debtors against creditors, settling the
	// smaller of the two outstanding amounts each step.
	var edges []DebtEdge
	i, j := 0, 0
	var debtorLeft, creditorLeft int64
	for i < len(debtors) && j < len(creditors) {
		if debtorLeft == 0 {
			debtorLeft = -debtors[i].NetCents
		}
		if creditorLeft == 0 {
			creditorLeft = creditors[j].NetCents
		}

		amount := debtorLeft
		if creditorLeft < amount {
			amount = creditorLeft
		}
		if amount > 0 {
			edges = append(edges, DebtEdge{
				From:        debtors[i].UserID,
				To:          creditors[j].UserID,
				AmountCents: amount,
			})
		}

		debtorLeft -= amount
		creditorLeft -= amount
		if debtorLeft == 0 {
			i++
		}
		if creditorLeft == 0 {
			j++
		}
	}

	return out, edges
}
