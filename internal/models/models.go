package models

import "time"

// User is the canonical user record. ID and CreatedAt are immutable after
// creation; UpdatedAt is refreshed on every successful mutation.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserPatch carries a partial update. An empty string means the field was
// not provided and must be left untouched.
type UserPatch struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type CreateUserRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required"`
}

// PaginatedUsers is the response shape for a paginated listing. Total always
// reflects the full live count, independent of the returned slice.
type PaginatedUsers struct {
	Users  []User `json:"users"`
	Total  int    `json:"total"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
}

type UserStats struct {
	TotalUsers       int `json:"totalUsers"`
	ConnectionsCount int `json:"connectionsCount"`
}
