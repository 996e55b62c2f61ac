package model

// Client is read-only reference data fetched once per session.
type Client struct {
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
}

// Group is a pre-configured account group. The wire shape varies between
// backend versions; the gateway normalizes every variant into this form.
type Group struct {
	GroupName   string   `json:"group_name"`
	NoOfClients int      `json:"no_of_clients"`
	Multiplier  float64  `json:"multiplier"`
	ClientNames []string `json:"client_names"`
}

// SymbolOption is one normalized symbol-search result.
type SymbolOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}
