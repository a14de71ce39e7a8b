package models

// Household is a roster of members who share obligations. The engine
// never queries membership itself; services pass the roster in.
type Household struct {
	// ID is the unique identifier for the household (UUID format).
	ID string

	// Name is the display name (e.g., "Maple St House").
	Name string

	// Members is the ordered list of member user IDs. The order is the
	// default participant order for equal-split remainder assignment.
	Members []string

	// CreatedBy is the user who created the household.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the household was created.
	CreatedAt int64
}

// HasMember reports whether userID is on the roster.
func (h *Household) HasMember(userID string) bool {
	for _, m := range h.Members {
		if m == userID {
			return true
		}
	}
	return false
}
