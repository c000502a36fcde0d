package horizon

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/marwen-abid/stellarkit-go/errors"
	"github.com/marwen-abid/stellarkit-go/xdr"
)

// ResultCodes are the Horizon-style codes attached to a rejected submission.
type ResultCodes struct {
	Transaction      string   `json:"transaction"`
	InnerTransaction string   `json:"inner_transaction,omitempty"`
	Operations       []string `json:"operations,omitempty"`
}

// problem is the subset of a Horizon problem document we read.
type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
	Extras struct {
		EnvelopeXDR string      `json:"envelope_xdr"`
		ResultXDR   string      `json:"result_xdr"`
		ResultCodes ResultCodes `json:"result_codes"`
	} `json:"extras"`
}

// SubmissionError reports a submission Horizon did not accept. It matches
// errors.ErrSubmissionRejected.
type SubmissionError struct {
	Status      int
	Title       string
	Detail      string
	ResultCodes ResultCodes
	// Result is the decoded result_xdr, when Horizon returned one.
	Result *xdr.TransactionResult
}

func (e *SubmissionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "submission rejected (%d)", e.Status)
	if e.Title != "" {
		b.WriteString(": " + e.Title)
	}
	if e.ResultCodes.Transaction != "" {
		b.WriteString(": " + e.ResultCodes.Transaction)
		if len(e.ResultCodes.Operations) > 0 {
			b.WriteString(" [" + strings.Join(e.ResultCodes.Operations, ", ") + "]")
		}
	}
	return b.String()
}

// Is matches the SUBMISSION_REJECTED code.
func (e *SubmissionError) Is(target error) bool {
	return errors.CodeOf(target) == errors.SUBMISSION_REJECTED
}

func parseSubmissionError(status int, body []byte) *SubmissionError {
	out := &SubmissionError{Status: status}

	var p problem
	if err := json.Unmarshal(body, &p); err != nil {
		out.Detail = strings.TrimSpace(string(body))
		return out
	}
	out.Title = p.Title
	out.Detail = p.Detail
	out.ResultCodes = p.Extras.ResultCodes

	if p.Extras.ResultXDR != "" {
		var r xdr.TransactionResult
		if err := xdr.UnmarshalBase64(p.Extras.ResultXDR, &r); err == nil {
			out.Result = &r
		}
	}
	return out
}
