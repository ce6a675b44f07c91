package automation

// Rule is a stored condition/action pair scoped to a home.
type Rule struct {
	ID        int64  `json:"id"`
	HomeID    int64  `json:"home_id"`
	Condition string `json:"condition"`
	Action    string `json:"action"`
}
