package calculator

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/hearthledger/hearthledger/internal/models"
)

func owedAmounts(t *testing.T, result *models.SplitResult) map[string]int64 {
	t.Helper()
	out := make(map[string]int64, len(result.Shares))
	for _, s := range result.Shares {
		out[s.UserID] = s.OwedCents
	}
	return out
}

func TestComputeSplit(t *testing.T) {
	tests := []struct {
		name         string
		req          SplitRequest
		wantErr      bool
		wantOwed     map[string]int64
		validateFunc func(t *testing.T, result *models.SplitResult)
	}{
		{
			name: "equal split without remainder",
			req: SplitRequest{
				TotalCents:   300,
				Method:       models.SplitEqual,
				Participants: []string{"alice", "bob", "carol"},
			},
			wantOwed: map[string]int64{"alice": 100, "bob": 100, "carol": 100},
		},
		{
			name: "equal split remainder goes to first participants",
			req: SplitRequest{
				TotalCents:   301,
				Method:       models.SplitEqual,
				Participants: []string{"alice", "bob", "carol"},
			},
			wantOwed: map[string]int64{"alice": 101, "bob": 100, "carol": 100},
			validateFunc: func(t *testing.T, result *models.SplitResult) {
				if result.Shares[0].RoundingAdjCents != 1 {
					t.Errorf("alice RoundingAdjCents = %d, want 1", result.Shares[0].RoundingAdjCents)
				}
				if result.Shares[1].RoundingAdjCents != 0 {
					t.Errorf("bob RoundingAdjCents = %d, want 0", result.Shares[1].RoundingAdjCents)
				}
			},
		},
		{
			name: "equal weights behave like equal split",
			req: SplitRequest{
				TotalCents:   100,
				Method:       models.SplitByWeight,
				Participants: []string{"alice", "bob", "carol"},
				Inputs:       map[string]int64{"alice": 1, "bob": 1, "carol": 1},
			},
			wantOwed: map[string]int64{"alice": 34, "bob": 33, "carol": 33},
		},
		{
			name: "weights divide exactly",
			req: SplitRequest{
				TotalCents:   1000,
				Method:       models.SplitByWeight,
				Participants: []string{"alice", "bob", "carol"},
				Inputs:       map[string]int64{"alice": 2, "bob": 3, "carol": 5},
			},
			wantOwed: map[string]int64{"alice": 200, "bob": 300, "carol": 500},
		},
		{
			name: "weights round half-up",
			req: SplitRequest{
				TotalCents:   100,
				Method:       models.SplitByWeight,
				Participants: []string{"alice", "bob"},
				Inputs:       map[string]int64{"alice": 1, "bob": 2},
			},
			wantOwed: map[string]int64{"alice": 33, "bob": 67},
		},
		{
			name: "excess cent comes back from the first tied participant",
			req: SplitRequest{
				TotalCents:   101,
				Method:       models.SplitByWeight,
				Participants: []string{"alice", "bob"},
				Inputs:       map[string]int64{"alice": 1, "bob": 1},
			},
			wantOwed: map[string]int64{"alice": 50, "bob": 51},
			validateFunc: func(t *testing.T, result *models.SplitResult) {
				if result.Shares[0].RoundingAdjCents != -1 {
					t.Errorf("alice RoundingAdjCents = %d, want -1", result.Shares[0].RoundingAdjCents)
				}
			},
		},
		{
			name: "zero weight participant owes nothing",
			req: SplitRequest{
				TotalCents:   100,
				Method:       models.SplitByWeight,
				Participants: []string{"alice", "bob"},
				Inputs:       map[string]int64{"alice": 0, "bob": 1},
			},
			wantOwed: map[string]int64{"alice": 0, "bob": 100},
		},
		{
			name: "all weights zero",
			req: SplitRequest{
				TotalCents:   100,
				Method:       models.SplitByWeight,
				Participants: []string{"alice", "bob"},
				Inputs:       map[string]int64{"alice": 0, "bob": 0},
			},
			wantErr: true,
		},
		{
			name: "missing weight",
			req: SplitRequest{
				TotalCents:   100,
				Method:       models.SplitByWeight,
				Participants: []string{"alice", "bob"},
				Inputs:       map[string]int64{"alice": 1},
			},
			wantErr: true,
		},
		{
			name: "weight product overflows",
			req: SplitRequest{
				TotalCents:   1000,
				Method:       models.SplitByWeight,
				Participants: []string{"alice", "bob"},
				Inputs:       map[string]int64{"alice": math.MaxInt64 / 2, "bob": 1},
			},
			wantErr: true,
		},
		{
			name: "weight sum overflows",
			req: SplitRequest{
				TotalCents:   1,
				Method:       models.SplitByWeight,
				Participants: []string{"alice", "bob"},
				Inputs:       map[string]int64{"alice": math.MaxInt64, "bob": math.MaxInt64},
			},
			wantErr: true,
		},
		{
			name: "percentage product overflows",
			req: SplitRequest{
				TotalCents:   math.MaxInt64 / 2,
				Method:       models.SplitPercentage,
				Participants: []string{"alice", "bob"},
				Inputs:       map[string]int64{"alice": 5000, "bob": 5000},
			},
			wantErr: true,
		},
		{
			name: "percentages divide with reconciliation",
			req: SplitRequest{
				TotalCents:   101,
				Method:       models.SplitPercentage,
				Participants: []string{"alice", "bob"},
				Inputs:       map[string]int64{"alice": 5000, "bob": 5000},
			},
			wantOwed: map[string]int64{"alice": 50, "bob": 51},
		},
		{
			name: "percentages 60/40",
			req: SplitRequest{
				TotalCents:   100,
				Method:       models.SplitPercentage,
				Participants: []string{"alice", "bob"},
				Inputs:       map[string]int64{"alice": 6000, "bob": 4000},
			},
			wantOwed: map[string]int64{"alice": 60, "bob": 40},
		},
		{
			name: "one basis point under total is tolerated",
			req: SplitRequest{
				TotalCents:   100,
				Method:       models.SplitPercentage,
				Participants: []string{"alice", "bob"},
				Inputs:       map[string]int64{"alice": 6000, "bob": 3999},
			},
			wantOwed: map[string]int64{"alice": 60, "bob": 40},
		},
		{
			name: "exact amounts that match the total",
			req: SplitRequest{
				TotalCents:   150,
				Method:       models.SplitExactAmounts,
				Participants: []string{"alice", "bob"},
				Inputs:       map[string]int64{"alice": 100, "bob": 50},
			},
			wantOwed: map[string]int64{"alice": 100, "bob": 50},
		},
		{
			name: "unlisted participants fill the remainder equally",
			req: SplitRequest{
				TotalCents:    100,
				Method:        models.SplitExactAmounts,
				Participants:  []string{"alice", "bob", "carol"},
				Inputs:        map[string]int64{"alice": 40},
				FillRemainder: true,
			},
			wantOwed: map[string]int64{"alice": 40, "bob": 30, "carol": 30},
			validateFunc: func(t *testing.T, result *models.SplitResult) {
				if result.Shares[0].Basis != "exact" {
					t.Errorf("alice basis = %q, want %q", result.Shares[0].Basis, "exact")
				}
				if result.Shares[1].Basis != "remainder" {
					t.Errorf("bob basis = %q, want %q", result.Shares[1].Basis, "remainder")
				}
			},
		},
		{
			name: "missing exact amount without fill-remainder",
			req: SplitRequest{
				TotalCents:   100,
				Method:       models.SplitExactAmounts,
				Participants: []string{"alice", "bob"},
				Inputs:       map[string]int64{"alice": 100},
			},
			wantErr: true,
		},
		{
			name: "zero total",
			req: SplitRequest{
				TotalCents:   0,
				Method:       models.SplitEqual,
				Participants: []string{"alice"},
			},
			wantErr: true,
		},
		{
			name: "no participants",
			req: SplitRequest{
				TotalCents: 100,
				Method:     models.SplitEqual,
			},
			wantErr: true,
		},
		{
			name: "duplicate participant",
			req: SplitRequest{
				TotalCents:   100,
				Method:       models.SplitEqual,
				Participants: []string{"alice", "alice"},
			},
			wantErr: true,
		},
		{
			name: "input for a non-participant",
			req: SplitRequest{
				TotalCents:   100,
				Method:       models.SplitByWeight,
				Participants: []string{"alice"},
				Inputs:       map[string]int64{"alice": 1, "mallory": 1},
			},
			wantErr: true,
		},
		{
			name: "negative input",
			req: SplitRequest{
				TotalCents:   100,
				Method:       models.SplitByWeight,
				Participants: []string{"alice", "bob"},
				Inputs:       map[string]int64{"alice": -1, "bob": 1},
			},
			wantErr: true,
		},
		{
			name: "fill-remainder outside exact amounts",
			req: SplitRequest{
				TotalCents:    100,
				Method:        models.SplitEqual,
				Participants:  []string{"alice"},
				FillRemainder: true,
			},
			wantErr: true,
		},
		{
			name: "unknown method",
			req: SplitRequest{
				TotalCents:   100,
				Method:       models.SplitMethod("random"),
				Participants: []string{"alice"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ComputeSplit(tt.req)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ComputeSplit failed: %v", err)
			}

			var sum int64
			for _, s := range result.Shares {
				sum += s.OwedCents
			}
			if sum != tt.req.TotalCents {
				t.Errorf("shares sum to %d, want %d", sum, tt.req.TotalCents)
			}

			if len(result.Shares) != len(tt.req.Participants) {
				t.Fatalf("got %d shares, want %d", len(result.Shares), len(tt.req.Participants))
			}
			for i, p := range tt.req.Participants {
				if result.Shares[i].UserID != p {
					t.Errorf("share %d is for %q, want %q (participant order)", i, result.Shares[i].UserID, p)
				}
			}

			got := owedAmounts(t, result)
			for user, want := range tt.wantOwed {
				if got[user] != want {
					t.Errorf("%s owes %d, want %d", user, got[user], want)
				}
			}

			if tt.validateFunc != nil {
				tt.validateFunc(t, result)
			}
		})
	}
}

func TestComputeSplitMismatchErrors(t *testing.T) {
	t.Run("exact amounts one cent short", func(t *testing.T) {
		_, err := ComputeSplit(SplitRequest{
			TotalCents:   150,
			Method:       models.SplitExactAmounts,
			Participants: []string{"alice", "bob"},
			Inputs:       map[string]int64{"alice": 100, "bob": 49},
		})
		var mismatch *MismatchError
		if !errors.As(err, &mismatch) {
			t.Fatalf("expected MismatchError, got %v", err)
		}
		if mismatch.Delta != 1 || mismatch.Unit != "cents" {
			t.Errorf("got delta=%d unit=%q, want delta=1 unit=cents", mismatch.Delta, mismatch.Unit)
		}
	})

	t.Run("percentages one percent short", func(t *testing.T) {
		_, err := ComputeSplit(SplitRequest{
			TotalCents:   100,
			Method:       models.SplitPercentage,
			Participants: []string{"alice", "bob"},
			Inputs:       map[string]int64{"alice": 6000, "bob": 3900},
		})
		var mismatch *MismatchError
		if !errors.As(err, &mismatch) {
			t.Fatalf("expected MismatchError, got %v", err)
		}
		if mismatch.Delta != 100 || mismatch.Unit != "bps" {
			t.Errorf("got delta=%d unit=%q, want delta=100 unit=bps", mismatch.Delta, mismatch.Unit)
		}
	})

	t.Run("fill-remainder overshoot", func(t *testing.T) {
		_, err := ComputeSplit(SplitRequest{
			TotalCents:    100,
			Method:        models.SplitExactAmounts,
			Participants:  []string{"alice", "bob"},
			Inputs:        map[string]int64{"alice": 120},
			FillRemainder: true,
		})
		var mismatch *MismatchError
		if !errors.As(err, &mismatch) {
			t.Fatalf("expected MismatchError, got %v", err)
		}
		if mismatch.Delta != -20 {
			t.Errorf("got delta=%d, want -20", mismatch.Delta)
		}
	})
}

func TestComputeSplitSumInvariant(t *testing.T) {
	// Odd weights against a sweep of totals: the exact-sum guarantee
	// must hold regardless of how ugly the division gets.
	weights := map[string]int64{"alice": 3, "bob": 7, "carol": 11}
	participants := []string{"alice", "bob", "carol"}

	for total := int64(1); total <= 500; total++ {
		result, err := ComputeSplit(SplitRequest{
			TotalCents:   total,
			Method:       models.SplitByWeight,
			Participants: participants,
			Inputs:       weights,
		})
		if err != nil {
			t.Fatalf("total %d: %v", total, err)
		}
		var sum int64
		for _, s := range result.Shares {
			sum += s.OwedCents
		}
		if sum != total {
			t.Fatalf("total %d: shares sum to %d", total, sum)
		}
	}
}

func TestComputeSplitDeterministic(t *testing.T) {
	req := SplitRequest{
		TotalCents:   997,
		Method:       models.SplitPercentage,
		Participants: []string{"alice", "bob", "carol"},
		Inputs:       map[string]int64{"alice": 3333, "bob": 3333, "carol": 3334},
	}

	first, err := ComputeSplit(req)
	if err != nil {
		t.Fatalf("ComputeSplit failed: %v", err)
	}
	if first.Details.ComputedAt != 0 {
		t.Errorf("ComputedAt = %d, want 0 from the pure computation", first.Details.ComputedAt)
	}
	for i := 0; i < 50; i++ {
		again, err := ComputeSplit(req)
		if err != nil {
			t.Fatalf("ComputeSplit failed: %v", err)
		}
		if !reflect.DeepEqual(again, first) {
			t.Fatalf("run %d: result = %+v, want %+v", i, again, first)
		}
	}
}
