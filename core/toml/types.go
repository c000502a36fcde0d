// Package toml fetches and publishes stellar.toml files (SEP-1) and reads the
// network parameters a client needs from them.
//
// The Resolver fetches and caches stellar.toml files from home domains, while
// the Publisher renders stellar.toml content for a server to serve.
package toml

// NetworkInfo is the subset of a stellar.toml file this library uses.
type NetworkInfo struct {
	// NetworkPassphrase identifies the network the domain operates on.
	NetworkPassphrase string `toml:"NETWORK_PASSPHRASE,omitempty"`

	// HorizonURL is the domain's public Horizon instance.
	HorizonURL string `toml:"HORIZON_URL,omitempty"`

	// SigningKey is the domain's public signing key (G...).
	SigningKey string `toml:"SIGNING_KEY,omitempty"`

	// Accounts lists the accounts the domain controls.
	Accounts []string `toml:"ACCOUNTS,omitempty"`

	Currencies []CurrencyInfo `toml:"CURRENCIES,omitempty"`
}

// CurrencyInfo describes an asset issued or supported by the domain.
type CurrencyInfo struct {
	Code            string `toml:"code"`
	Issuer          string `toml:"issuer,omitempty"`
	Status          string `toml:"status,omitempty"`
	DisplayDecimals int    `toml:"display_decimals,omitempty"`
	Desc            string `toml:"desc,omitempty"`
}
