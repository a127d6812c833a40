package integration

import "context"

// ---------------------------------------------------------------------------
// Commerce platform (VTEX)
// ---------------------------------------------------------------------------

// StoreCredentials authenticate against a VTEX store
type StoreCredentials struct {
	Domain   string `json:"domain"`
	AppKey   string `json:"app_key"`
	AppToken string `json:"app_token"`
}

// CommercePlatform checks and reads a store
type CommercePlatform interface {
	// CheckCredentials returns nil when the store accepts the credentials
	CheckCredentials(ctx context.Context, creds StoreCredentials) error
}
