package entity

// User is a directory entry resolved for validation and notification addressing
type User struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	LarkID string `json:"lark_id,omitempty"`
}

// Actor is the authenticated caller performing an operation, supplied by the
// transport layer
type Actor struct {
	ID   int64
	Name string
	Role string
}
