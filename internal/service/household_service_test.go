package service

import (
	"context"
	"errors"
	"testing"

	"github.com/hearthledger/hearthledger/internal/calculator"
	"github.com/hearthledger/hearthledger/internal/models"
)

func TestHouseholdService(t *testing.T) {
	store := newTestStore(t)
	svc := NewHouseholdService(store)
	ctx := context.Background()

	t.Run("creator leads the roster", func(t *testing.T) {
		h, err := svc.Create(ctx, "alice", "Maple St", []string{"bob", "alice", "carol"})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		want := []string{"alice", "bob", "carol"}
		if len(h.Members) != len(want) {
			t.Fatalf("members = %v, want %v", h.Members, want)
		}
		for i := range want {
			if h.Members[i] != want[i] {
				t.Errorf("members = %v, want %v", h.Members, want)
				break
			}
		}
	})

	t.Run("membership gates access", func(t *testing.T) {
		h, err := svc.Create(ctx, "alice", "Flat 4", nil)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		if _, err := svc.Get(ctx, "alice", h.ID); err != nil {
			t.Errorf("member Get failed: %v", err)
		}
		if _, err := svc.Get(ctx, "mallory", h.ID); !errors.Is(err, ErrPermissionDenied) {
			t.Errorf("err = %v, want ErrPermissionDenied", err)
		}
		if _, err := svc.ListObligations(ctx, "mallory", h.ID); !errors.Is(err, ErrPermissionDenied) {
			t.Errorf("err = %v, want ErrPermissionDenied", err)
		}
		if _, _, err := svc.Balances(ctx, "mallory", h.ID); !errors.Is(err, ErrPermissionDenied) {
			t.Errorf("err = %v, want ErrPermissionDenied", err)
		}
	})

	t.Run("roster changes", func(t *testing.T) {
		h, err := svc.Create(ctx, "alice", "Shared Loft", nil)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		h, err = svc.AddMembers(ctx, "alice", h.ID, []string{"bob", "carol"})
		if err != nil {
			t.Fatalf("AddMembers failed: %v", err)
		}
		if len(h.Members) != 3 {
			t.Fatalf("members = %v, want 3", h.Members)
		}

		if err := svc.RemoveMember(ctx, "alice", h.ID, "bob"); err != nil {
			t.Fatalf("RemoveMember failed: %v", err)
		}
		h, err = svc.Get(ctx, "alice", h.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if len(h.Members) != 2 || h.HasMember("bob") {
			t.Errorf("members = %v, want bob gone", h.Members)
		}
	})
}

func TestHouseholdServiceBalances(t *testing.T) {
	store := newTestStore(t)
	households := NewHouseholdService(store)
	obligations := NewObligationService(store)
	ledger := NewLedgerService(store)
	ctx := context.Background()

	h, err := households.Create(ctx, "alice", "Maple St", []string{"bob", "carol"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Alice fronts 90 split three ways; bob pays his 30 back.
	obl, err := obligations.Create(ctx, "alice", ObligationInput{
		HouseholdID: h.ID,
		Description: "groceries",
		Category:    models.CategoryGroceries,
		TotalCents:  90,
		Method:      models.SplitEqual,
	})
	if err != nil {
		t.Fatalf("Create obligation failed: %v", err)
	}
	if _, err := ledger.RecordPayment(ctx, obl.ID, "bob", 30, PaymentOptions{}); err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}

	members, debts, err := households.Balances(ctx, "alice", h.ID)
	if err != nil {
		t.Fatalf("Balances failed: %v", err)
	}

	byID := make(map[string]calculator.MemberBalance, len(members))
	for _, m := range members {
		byID[m.UserID] = m
	}
	if byID["alice"].NetCents != 30 {
		t.Errorf("alice net = %d, want 30", byID["alice"].NetCents)
	}
	if byID["bob"].NetCents != 0 {
		t.Errorf("bob net = %d, want 0", byID["bob"].NetCents)
	}
	if byID["carol"].NetCents != -30 {
		t.Errorf("carol net = %d, want -30", byID["carol"].NetCents)
	}

	if len(debts) != 1 {
		t.Fatalf("debts = %+v, want a single carol->alice edge", debts)
	}
	if debts[0].From != "carol" || debts[0].To != "alice" || debts[0].AmountCents != 30 {
		t.Errorf("debt = %+v, want carol owes alice 30", debts[0])
	}
}
