package models

// SplitMethod selects how an obligation's total divides across its
// participants.
type SplitMethod string

const (
	// SplitEqual divides the total evenly; the leftover cents go to the
	// first participants in roster order, one cent each.
	SplitEqual SplitMethod = "equal"

	// SplitByWeight divides proportionally to integer usage weights.
	SplitByWeight SplitMethod = "by_weight"

	// SplitExactAmounts takes caller-supplied cent amounts per
	// participant and only validates that they sum to the total.
	SplitExactAmounts SplitMethod = "exact_amounts"

	// SplitPercentage divides by caller-supplied basis points
	// (hundredths of a percent) that must sum to 10000.
	SplitPercentage SplitMethod = "percentage"
)

// Valid reports whether m is a known split method.
func (m SplitMethod) Valid() bool {
	switch m {
	case SplitEqual, SplitByWeight, SplitExactAmounts, SplitPercentage:
		return true
	}
	return false
}

// Category classifies what the obligation was for.
type Category string

const (
	CategoryGroceries     Category = "groceries"
	CategoryUtilities     Category = "utilities"
	CategoryRent          Category = "rent"
	CategoryCleaning      Category = "cleaning"
	CategoryEntertainment Category = "entertainment"
	CategoryMaintenance   Category = "maintenance"
	CategoryInternet      Category = "internet"
	CategoryTransport     Category = "transportation"
	CategoryOther         Category = "other"
)

// Obligation is a shared cost (an expense or a bill instance) that must
// be divided among household participants.
type Obligation struct {
	// ID is the unique identifier for the obligation (UUID format).
	ID string

	// HouseholdID is the household this obligation belongs to.
	HouseholdID string

	// Description is the human-readable label (e.g., "March electricity").
	Description string

	// Category classifies the cost (groceries, rent, ...).
	Category Category

	// TotalCents is the full amount in minor units. Always positive.
	TotalCents int64

	// Method is how the total divides across participants.
	Method SplitMethod

	// Participants is the ordered list of member user IDs. Order is
	// significant: it is the tie-break for remainder distribution.
	Participants []string

	// Inputs carries the per-participant weight, exact cent amount, or
	// basis points, depending on Method. Empty for equal splits.
	Inputs map[string]int64

	// FillRemainder opts unlisted participants into an equal share of
	// whatever exact amounts leave over. Only meaningful with
	// SplitExactAmounts.
	FillRemainder bool

	// Split is the computed result, stored alongside the obligation as
	// its audit trail. Recomputed on edit, never mutated by payments.
	Split *SplitResult

	// CreatedBy is the user who created the obligation.
	CreatedBy string

	// Version increments on every edit. Updates compare-and-swap on it
	// so concurrent edits cannot silently overwrite each other.
	Version int64

	// CreatedAt / UpdatedAt are Unix timestamps.
	CreatedAt int64
	UpdatedAt int64
}

// Share is one participant's computed portion of an obligation.
type Share struct {
	// UserID identifies the participant.
	UserID string `json:"user_id"`

	// OwedCents is the amount this participant owes, in minor units.
	OwedCents int64 `json:"owed_cents"`

	// Basis records how the amount was derived before rounding:
	// "equal", "weight=3", "25.00%", "exact", or "remainder".
	Basis string `json:"basis"`

	// RoundingAdjCents is the signed cent correction applied during
	// remainder reconciliation (0 for most participants).
	RoundingAdjCents int64 `json:"rounding_adj_cents,omitempty"`
}

// SplitDetails is the audit trail for a computed split: the method and
// raw inputs that produced it. ComputedAt is stamped when the split is
// persisted; a pure preview leaves it zero.
type SplitDetails struct {
	Method     SplitMethod      `json:"method"`
	TotalCents int64            `json:"total_cents"`
	Inputs     map[string]int64 `json:"inputs,omitempty"`
	ComputedAt int64            `json:"computed_at,omitempty"`
}

// SplitResult is the outcome of a split computation. The shares are in
// participant order and always sum exactly to Details.TotalCents.
type SplitResult struct {
	Shares  []Share      `json:"shares"`
	Details SplitDetails `json:"details"`
}

// Share returns the share for the given user, or nil if the user is not
// part of this split.
func (r *SplitResult) Share(userID string) *Share {
	for i := range r.Shares {
		if r.Shares[i].UserID == userID {
			return &r.Shares[i]
		}
	}
	return nil
}
