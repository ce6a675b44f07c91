package location

// Home is a managed household.
type Home struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Address *string `json:"address"`
}

// Room is a named space within a home.
type Room struct {
	ID     int64  `json:"id"`
	HomeID int64  `json:"home_id"`
	Name   string `json:"name"`
}
