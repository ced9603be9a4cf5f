package resume

// Storage keys of the session marker. The values are read back by the web client
// on reload, so these strings must not change.
const (
	KeyCurrentPage = "funnelfit_current_page"
	KeyAccountType = "funnelfit_account_type"
	KeyUserEmail   = "funnelfit_user_email"
)

// Marker is the minimal state needed to reopen the app on the same screen
type Marker struct {
	CurrentPage string `json:"current_page"`
	AccountType string `json:"account_type"`
	UserEmail   string `json:"user_email"`
}

// Record is one row of the key-value table
type Record struct {
	Key   string `json:"key" db:"key" dynamodbav:"key"`
	Value string `json:"value" db:"value" dynamodbav:"value"`
}
