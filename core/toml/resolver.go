package toml

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/marwen-abid/stellarkit-go/core/net"
	"github.com/marwen-abid/stellarkit-go/errors"
	"github.com/marwen-abid/stellarkit-go/network"
	"github.com/marwen-abid/stellarkit-go/strkey"
	"github.com/marwen-abid/stellarkit-go/xdr"
)

const (
	defaultCacheTTL   = 5 * time.Minute
	wellKnownPath     = "/.well-known/stellar.toml"
	maxCurrencyArrays = 100
	maxTomlSize       = 1024 * 1024
)

type cacheEntry struct {
	info      *NetworkInfo
	fetchedAt time.Time
}

// Resolver fetches stellar.toml files and caches them per domain.
type Resolver struct {
	client   *net.Client
	cache    map[string]*cacheEntry
	cacheTTL time.Duration
	mu       sync.RWMutex
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithCacheTTL sets how long a fetched file is reused (default: 5m).
func WithCacheTTL(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.cacheTTL = d
	}
}

// NewResolver creates a resolver that fetches through client.
func NewResolver(client *net.Client, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		client:   client,
		cache:    make(map[string]*cacheEntry),
		cacheTTL: defaultCacheTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the stellar.toml of domain, fetching it over https unless a
// fresh copy is cached.
func (r *Resolver) Resolve(ctx context.Context, domain string) (*NetworkInfo, error) {
	domain = strings.TrimSuffix(strings.TrimPrefix(domain, "https://"), "/")

	r.mu.RLock()
	entry, exists := r.cache[domain]
	r.mu.RUnlock()

	if exists && time.Since(entry.fetchedAt) < r.cacheTTL {
		return entry.info, nil
	}

	resp, err := r.client.Get(ctx, "https://"+domain+wellKnownPath)
	if err != nil {
		return nil, errors.NewNetworkError(errors.TOML_FETCH_FAILED, fmt.Sprintf("failed to fetch stellar.toml from %s", domain), err)
	}
	body, err := resp.ReadBody(maxTomlSize)
	if err != nil {
		return nil, errors.NewNetworkError(errors.TOML_FETCH_FAILED, "failed to read stellar.toml response", err)
	}
	if resp.StatusCode != 200 {
		return nil, errors.NewNetworkError(errors.TOML_FETCH_FAILED, fmt.Sprintf("stellar.toml fetch returned status %d", resp.StatusCode), nil).
			With("domain", domain)
	}

	info, err := Parse(body)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[domain] = &cacheEntry{
		info:      info,
		fetchedAt: time.Now(),
	}
	r.mu.Unlock()

	return info, nil
}

// Parse decodes and validates stellar.toml content.
func Parse(content []byte) (*NetworkInfo, error) {
	info := &NetworkInfo{}
	if _, err := toml.Decode(string(content), info); err != nil {
		return nil, errors.NewNetworkError(errors.TOML_INVALID, "failed to parse stellar.toml", err)
	}
	if len(info.Currencies) > maxCurrencyArrays {
		info.Currencies = info.Currencies[:maxCurrencyArrays]
	}

	if info.SigningKey != "" && !strkey.IsValid(strkey.Ed25519PublicKey, info.SigningKey) {
		return nil, errors.NewNetworkError(errors.TOML_INVALID, fmt.Sprintf("invalid SIGNING_KEY: %s", info.SigningKey), nil)
	}
	for _, acc := range info.Accounts {
		if !strkey.IsValid(strkey.Ed25519PublicKey, acc) {
			return nil, errors.NewNetworkError(errors.TOML_INVALID, fmt.Sprintf("invalid account in ACCOUNTS: %s", acc), nil)
		}
	}
	for _, c := range info.Currencies {
		if c.Issuer != "" && !strkey.IsValid(strkey.Ed25519PublicKey, c.Issuer) {
			return nil, errors.NewNetworkError(errors.TOML_INVALID, fmt.Sprintf("invalid issuer for %s: %s", c.Code, c.Issuer), nil)
		}
	}
	return info, nil
}

// Network returns the network the domain declares.
func (i *NetworkInfo) Network() (network.ID, error) {
	if i.NetworkPassphrase == "" {
		return "", errors.NewNetworkError(errors.TOML_INVALID, "stellar.toml has no NETWORK_PASSPHRASE", nil)
	}
	return network.ID(i.NetworkPassphrase), nil
}

// Asset returns the declared currency with the given code as an asset.
func (i *NetworkInfo) Asset(code string) (xdr.Asset, error) {
	for _, c := range i.Currencies {
		if c.Code == code && c.Issuer != "" {
			return xdr.ParseAsset(c.Code, c.Issuer)
		}
	}
	return xdr.Asset{}, errors.NewNetworkError(errors.TOML_INVALID, fmt.Sprintf("stellar.toml declares no currency %s", code), nil)
}
