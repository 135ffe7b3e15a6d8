package domain

import "time"

// Client is a person holding zero or more accounts. Each client maps 1:1 to a
// user identity.
type Client struct {
	ID         string
	UserID     string
	Name       string
	DocumentID string
	CreatedAt  time.Time
}
