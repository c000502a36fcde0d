package toml

import (
	"bytes"
	"net/http"

	"github.com/BurntSushi/toml"

	"github.com/marwen-abid/stellarkit-go/errors"
)

// Publisher renders a stellar.toml file.
type Publisher struct {
	info *NetworkInfo
}

// NewPublisher creates a publisher for info.
func NewPublisher(info *NetworkInfo) *Publisher {
	return &Publisher{info: info}
}

// Render encodes the file.
func (p *Publisher) Render() ([]byte, error) {
	var b bytes.Buffer
	if err := toml.NewEncoder(&b).Encode(p.info); err != nil {
		return nil, errors.NewNetworkError(errors.TOML_INVALID, "failed to encode stellar.toml", err)
	}
	return b.Bytes(), nil
}

// Handler serves the file at /.well-known/stellar.toml.
func (p *Publisher) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := p.Render()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	}
}
