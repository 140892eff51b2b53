package users

import "time"

// User is a profile record owned by this service.
type User struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Mail      string    `json:"mail"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Update carries the replaceable user fields; all three are required on update.
type Update struct {
	FirstName string
	LastName  string
	Mail      string
}

// Filter narrows list and count queries by exact field match. Zero values are
// ignored.
type Filter struct {
	FirstName string
	LastName  string
	Mail      string
}

// Page controls pagination and sorting of list queries.
type Page struct {
	Limit    int
	Offset   int
	SortBy   string
	SortDesc bool
}

// Normalize clamps pagination values into the supported range.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
