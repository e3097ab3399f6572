package domain

import "time"

// ProviderTikTok is the only external provider this service brokers.
const ProviderTikTok = "tiktok"

// LinkedAccount is one external provider account attached to a local
// identity, identified by (Provider, ProviderID). The access token is the
// raw bearer string returned by the provider's token endpoint.
type LinkedAccount struct {
	Provider    string `json:"provider" db:"provider"`
	ProviderID  string `json:"provider_id" db:"provider_id"`
	DisplayName string `json:"display_name" db:"display_name"`
	AvatarURL   string `json:"avatar_url" db:"avatar_url"`
	AccessToken string `json:"access_token" db:"access_token"`
}

// AccountRecord maps a local identity (email) to its linked external
// accounts. At most one LinkedAccount per (provider, provider_id) pair.
type AccountRecord struct {
	ID             string          `json:"id" db:"id"`
	Identity       string          `json:"identity" db:"identity"`
	LinkedAccounts []LinkedAccount `json:"linked_accounts" db:"linked_accounts"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// Clone returns a deep copy so callers can mutate records without
// aliasing store-owned memory.
func (r *AccountRecord) Clone() *AccountRecord {
	if r == nil {
		return nil
	}
	cp := *r
	cp.LinkedAccounts = make([]LinkedAccount, len(r.LinkedAccounts))
	copy(cp.LinkedAccounts, r.LinkedAccounts)
	return &cp
}

// AccountSummary is the caller-facing projection of a linked account.
type AccountSummary struct {
	Name      string `json:"name"`
	AccountID string `json:"account_id"`
	Avatar    string `json:"avatar"`
}
