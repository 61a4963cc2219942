package domain

// Client is the requester a ticket is filed for.
type Client struct {
	ID      int64
	Name    string
	Email   string
	Company *string
	Phone   *string
}
