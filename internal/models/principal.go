package models

// Principal is the authenticated identity attached to a request.
type Principal struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}
