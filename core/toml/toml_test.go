package toml

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marwen-abid/stellarkit-go/core/net"
	"github.com/marwen-abid/stellarkit-go/errors"
	"github.com/marwen-abid/stellarkit-go/network"
	"github.com/marwen-abid/stellarkit-go/xdr"
)

const issuer = "GAAZI4TCR3TY5OJHCTJC2A4QSY6CJWJH5IAJTGKIN2ER7LBNVKOCCWN7"

func sampleInfo() *NetworkInfo {
	return &NetworkInfo{
		NetworkPassphrase: string(network.Test),
		HorizonURL:        "https://horizon-testnet.stellar.org",
		SigningKey:        issuer,
		Accounts:          []string{issuer},
		Currencies: []CurrencyInfo{
			{Code: "USD", Issuer: issuer, DisplayDecimals: 2},
			{Code: "BTC", Status: "test"},
		},
	}
}

func testResolver(t *testing.T, handler http.Handler, opts ...ResolverOption) (*Resolver, string) {
	t.Helper()
	srv := httptest.NewTLSServer(handler)
	t.Cleanup(srv.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	client := net.NewClient(
		net.WithHTTPClient(srv.Client()),
		net.WithMaxRetries(0),
		net.WithLogger(logger),
	)
	return NewResolver(client, opts...), strings.TrimPrefix(srv.URL, "https://")
}

func TestResolvePublishedFile(t *testing.T) {
	var hits int32
	handler := NewPublisher(sampleInfo()).Handler()
	mux := http.NewServeMux()
	mux.HandleFunc(wellKnownPath, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	})
	r, domain := testResolver(t, mux)

	info, err := r.Resolve(context.Background(), domain)
	require.NoError(t, err)
	assert.Equal(t, issuer, info.SigningKey)
	require.Len(t, info.Currencies, 2)

	id, err := info.Network()
	require.NoError(t, err)
	assert.Equal(t, network.Test, id)

	usd, err := info.Asset("USD")
	require.NoError(t, err)
	assert.Equal(t, xdr.AssetTypeCreditAlphanum4, usd.Type)
	assert.Equal(t, "USD:"+issuer, usd.String())

	_, err = info.Asset("BTC")
	assert.Equal(t, errors.TOML_INVALID, errors.CodeOf(err))

	_, err = r.Resolve(context.Background(), "https://"+domain+"/")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestResolveCacheExpires(t *testing.T) {
	var hits int32
	handler := NewPublisher(sampleInfo()).Handler()
	r, domain := testResolver(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, req)
	}), WithCacheTTL(time.Nanosecond))

	for i := 0; i < 2; i++ {
		_, err := r.Resolve(context.Background(), domain)
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestResolveFailures(t *testing.T) {
	r, domain := testResolver(t, http.NotFoundHandler())
	_, err := r.Resolve(context.Background(), domain)
	assert.Equal(t, errors.TOML_FETCH_FAILED, errors.CodeOf(err))

	r, domain = testResolver(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		io.WriteString(w, "SIGNING_KEY = [")
	}))
	_, err = r.Resolve(context.Background(), domain)
	assert.Equal(t, errors.TOML_INVALID, errors.CodeOf(err))
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad signing key", `SIGNING_KEY = "GBAD"`},
		{"bad account", `ACCOUNTS = ["` + issuer + `", "nope"]`},
		{"bad issuer", "[[CURRENCIES]]\ncode = \"USD\"\nissuer = \"SBAD\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content))
			assert.Equal(t, errors.TOML_INVALID, errors.CodeOf(err))
		})
	}

	_, err := (&NetworkInfo{}).Network()
	assert.Equal(t, errors.TOML_INVALID, errors.CodeOf(err))
}

func TestParseTruncatesCurrencies(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 120; i++ {
		b.WriteString("[[CURRENCIES]]\ncode = \"C\"\n")
	}
	info, err := Parse([]byte(b.String()))
	require.NoError(t, err)
	assert.Len(t, info.Currencies, maxCurrencyArrays)
}

func TestRenderRoundTrip(t *testing.T) {
	body, err := NewPublisher(sampleInfo()).Render()
	require.NoError(t, err)
	assert.Contains(t, string(body), "NETWORK_PASSPHRASE")

	info, err := Parse(body)
	require.NoError(t, err)
	assert.Equal(t, sampleInfo(), info)
}
