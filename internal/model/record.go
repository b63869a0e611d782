package model

// Record is one row of user data shown in the dashboard table.
// ID is assigned by the store and never changes afterwards.
type Record struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Phone string  `json:"phone,omitempty"`
}
