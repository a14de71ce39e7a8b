// Package calculator implements the split engine: pure, deterministic
// division of an obligation total across participants, in integer minor
// units, with an exact-sum guarantee.
//
// # Rounding policy
//
// Proportional methods (by_weight, percentage) round each raw share
// half-up. The signed discrepancy between the total and the sum of
// rounded shares is then reconciled one cent at a time using the
// largest remainder method: when cents are missing they go to the
// participants with the largest fractional remainders first; when there
// is an excess it is taken back from the smallest fractional remainders
// first. Ties break by participant order. Equal splits use the simpler
// canonical policy: the first total%n participants each get one extra
// cent.
package calculator

import (
	"fmt"
	"math"
	"sort"

	"github.com/hearthledger/hearthledger/internal/models"
)

// percentage inputs are basis points and must sum to 10000 within this
// tolerance.
const (
	bpsTotal     = 10000
	bpsTolerance = 1
)

// SplitRequest carries everything ComputeSplit needs. Inputs is keyed
// by participant and holds weights (by_weight), cent amounts
// (exact_amounts), or basis points (percentage); it must be empty for
// equal splits.
type SplitRequest struct {
	TotalCents   int64
	Method       models.SplitMethod
	Participants []string
	Inputs       map[string]int64

	// FillRemainder is the explicit exact_amounts sub-mode in which
	// participants absent from Inputs split the leftover equally.
	// Without it, an omitted participant is an error.
	FillRemainder bool
}

// ComputeSplit divides the total across the participants. It is a pure
// function: no side effects, and identical inputs produce identical
// output, so the same call serves both previews and persisted creates.
// The returned shares are in participant order and sum exactly to
// TotalCents.
func ComputeSplit(req SplitRequest) (*models.SplitResult, error) {
	if req.TotalCents <= 0 {
		return nil, fmt.Errorf("%w: got %d cents", ErrInvalidAmount, req.TotalCents)
	}
	if len(req.Participants) == 0 {
		return nil, fmt.Errorf("%w: no participants", ErrInvalidSplit)
	}
	if !req.Method.Valid() {
		return nil, fmt.Errorf("%w: unknown method %q", ErrInvalidSplit, req.Method)
	}
	if req.FillRemainder && req.Method != models.SplitExactAmounts {
		return nil, fmt.Errorf("%w: fill-remainder only applies to exact amounts", ErrInvalidSplit)
	}

	seen := make(map[string]bool, len(req.Participants))
	for _, p := range req.Participants {
		if p == "" {
			return nil, fmt.Errorf("%w: empty participant id", ErrInvalidSplit)
		}
		if seen[p] {
			return nil, fmt.Errorf("%w: duplicate participant %q", ErrInvalidSplit, p)
		}
		seen[p] = true
	}
	for id, v := range req.Inputs {
		if !seen[id] {
			return nil, fmt.Errorf("%w: input for %q who is not a participant", ErrInvalidSplit, id)
		}
		if v < 0 {
			return nil, fmt.Errorf("%w: negative input %d for %q", ErrInvalidSplit, v, id)
		}
	}

	var (
		shares []models.Share
		err    error
	)
	switch req.Method {
	case models.SplitEqual:
		if len(req.Inputs) != 0 {
			return nil, fmt.Errorf("%w: equal split takes no custom inputs", ErrInvalidSplit)
		}
		shares = equalShares(req.TotalCents, req.Participants)
	case models.SplitByWeight:
		shares, err = weightedShares(req.TotalCents, req.Participants, req.Inputs)
	case models.SplitPercentage:
		shares, err = percentageShares(req.TotalCents, req.Participants, req.Inputs)
	case models.SplitExactAmounts:
		shares, err = exactShares(req.TotalCents, req.Participants, req.Inputs, req.FillRemainder)
	}
	if err != nil {
		return nil, err
	}

	var sum int64
	for _, s := range shares {
		sum += s.OwedCents
	}
	if sum != req.TotalCents {
		return nil, fmt.Errorf("split reconciliation failed: shares sum to %d, total is %d", sum, req.TotalCents)
	}

	return &models.SplitResult{
		Shares: shares,
		Details: models.SplitDetails{
			Method:     req.Method,
			TotalCents: req.TotalCents,
			Inputs:     copyInputs(req.Inputs),
		},
	}, nil
}

// equalShares divides total evenly, handing the remainder out one cent
// at a time to the first total%n participants.
func equalShares(total int64, participants []string) []models.Share {
	n := int64(len(participants))
	base := total / n
	rem := total % n

	shares := make([]models.Share, len(participants))
	for i, p := range participants {
		owed := base
		var adj int64
		if int64(i) < rem {
			owed++
			adj = 1
		}
		shares[i] = models.Share{
			UserID:           p,
			OwedCents:        owed,
			Basis:            "equal",
			RoundingAdjCents: adj,
		}
	}
	return shares
}

// weightedShares divides total proportionally to integer weights,
// rounding half-up and reconciling with the largest remainder method.
func weightedShares(total int64, participants []string, weights map[string]int64) ([]models.Share, error) {
	var sumW int64
	for _, p := range participants {
		w, ok := weights[p]
		if !ok {
			return nil, fmt.Errorf("%w: missing weight for %q", ErrInvalidSplit, p)
		}
		// The proportional step computes total*w; reject inputs where
		// that product (or the weight sum) would overflow int64.
		if w > 0 && total > math.MaxInt64/w {
			return nil, fmt.Errorf("%w: weight %d for %q is too large for total %d", ErrInvalidSplit, w, p, total)
		}
		if sumW > math.MaxInt64-w {
			return nil, fmt.Errorf("%w: weights overflow", ErrInvalidSplit)
		}
		sumW += w
	}
	if sumW == 0 {
		return nil, fmt.Errorf("%w: all weights are zero", ErrInvalidSplit)
	}

	shares := make([]models.Share, len(participants))
	fracs := make([]int64, len(participants))
	for i, p := range participants {
		w := weights[p]
		num := total * w
		owed := num / sumW
		frac := num % sumW
		if frac*2 >= sumW {
			owed++
		}
		shares[i] = models.Share{
			UserID:    p,
			OwedCents: owed,
			Basis:     fmt.Sprintf("weight=%d", w),
		}
		fracs[i] = frac
	}
	reconcile(shares, fracs, total)
	return shares, nil
}

// percentageShares validates that the basis points sum to 10000 within
// tolerance, then divides proportionally like weightedShares. The
// supplied sum (not the nominal 10000) is the denominator, so a 9999 or
// 10001 total still yields shares summing exactly to the obligation.
func percentageShares(total int64, participants []string, bps map[string]int64) ([]models.Share, error) {
	var sumBps int64
	for _, p := range participants {
		bp, ok := bps[p]
		if !ok {
			return nil, fmt.Errorf("%w: missing percentage for %q", ErrInvalidSplit, p)
		}
		// Same overflow guard as weightedShares: total*bp must fit.
		if bp > 0 && total > math.MaxInt64/bp {
			return nil, fmt.Errorf("%w: percentage %d bps for %q is too large for total %d", ErrInvalidSplit, bp, p, total)
		}
		if sumBps > math.MaxInt64-bp {
			return nil, fmt.Errorf("%w: percentages overflow", ErrInvalidSplit)
		}
		sumBps += bp
	}
	if sumBps == 0 {
		return nil, fmt.Errorf("%w: all percentages are zero", ErrInvalidSplit)
	}
	if delta := bpsTotal - sumBps; delta > bpsTolerance || delta < -bpsTolerance {
		return nil, &MismatchError{Delta: delta, Unit: "bps"}
	}

	shares := make([]models.Share, len(participants))
	fracs := make([]int64, len(participants))
	for i, p := range participants {
		bp := bps[p]
		num := total * bp
		owed := num / sumBps
		frac := num % sumBps
		if frac*2 >= sumBps {
			owed++
		}
		shares[i] = models.Share{
			UserID:    p,
			OwedCents: owed,
			Basis:     fmt.Sprintf("%d.%02d%%", bp/100, bp%100),
		}
		fracs[i] = frac
	}
	reconcile(shares, fracs, total)
	return shares, nil
}

// exactShares validates caller-supplied cent amounts. Every participant
// must be listed unless fillRemainder is set, in which case unlisted
// participants split the leftover equally.
func exactShares(total int64, participants []string, amounts map[string]int64, fillRemainder bool) ([]models.Share, error) {
	var (
		listedSum int64
		unlisted  []string
	)
	for _, p := range participants {
		amt, ok := amounts[p]
		if !ok {
			if !fillRemainder {
				return nil, fmt.Errorf("%w: no amount for %q", ErrInvalidSplit, p)
			}
			unlisted = append(unlisted, p)
			continue
		}
		listedSum += amt
	}

	remainder := total - listedSum
	if !fillRemainder {
		if remainder != 0 {
			return nil, &MismatchError{Delta: remainder, Unit: "cents"}
		}
	} else if remainder < 0 || (len(unlisted) == 0 && remainder != 0) {
		return nil, &MismatchError{Delta: remainder, Unit: "cents"}
	}

	// Equal-split remainder policy on the unlisted subset.
	var fill []models.Share
	if len(unlisted) > 0 {
		if remainder > 0 {
			fill = equalShares(remainder, unlisted)
		} else {
			fill = make([]models.Share, len(unlisted))
			for i, p := range unlisted {
				fill[i] = models.Share{UserID: p}
			}
		}
		for i := range fill {
			fill[i].Basis = "remainder"
		}
	}

	shares := make([]models.Share, 0, len(participants))
	fi := 0
	for _, p := range participants {
		if amt, ok := amounts[p]; ok {
			shares = append(shares, models.Share{UserID: p, OwedCents: amt, Basis: "exact"})
			continue
		}
		shares = append(shares, fill[fi])
		fi++
	}
	return shares, nil
}

// reconcile zeroes the discrepancy between total and the rounded shares
// by moving single cents. Missing cents go to the largest fractional
// remainders first; excess cents come off the smallest remainders
// first, skipping zero shares. Ties break by participant order.
func reconcile(shares []models.Share, fracs []int64, total int64) {
	var sum int64
	for _, s := range shares {
		sum += s.OwedCents
	}
	delta := total - sum
	if delta == 0 {
		return
	}

	order := make([]int, len(shares))
	for i := range order {
		order[i] = i
	}
	if delta > 0 {
		sort.SliceStable(order, func(a, b int) bool {
			return fracs[order[a]] > fracs[order[b]]
		})
		for _, idx := range order {
			if delta == 0 {
				break
			}
			shares[idx].OwedCents++
			shares[idx].RoundingAdjCents++
			delta--
		}
	} else {
		sort.SliceStable(order, func(a, b int) bool {
			return fracs[order[a]] < fracs[order[b]]
		})
		for _, idx := range order {
			if delta == 0 {
				break
			}
			if shares[idx].OwedCents == 0 {
				continue
			}
			shares[idx].OwedCents--
			shares[idx].RoundingAdjCents--
			delta++
		}
	}
}

func copyInputs(in map[string]int64) map[string]int64 {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]int64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
