package observer

import (
	"context"
	"encoding/hex"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/marwen-abid/stellarkit-go/errors"
	"github.com/marwen-abid/stellarkit-go/xdr"
)

// PaymentMatcher receives payments to a watched account together with the
// key rendered from their memo.
type PaymentMatcher func(ctx context.Context, key string, evt PaymentEvent) error

// MemoKey renders a memo as a lookup key: the text itself, the decimal id, or
// the lowercase hex of a hash or return memo. It returns "" for no memo.
func MemoKey(m xdr.Memo) string {
	switch m.Type {
	case xdr.MemoTypeText:
		return m.Text
	case xdr.MemoTypeID:
		return strconv.FormatUint(m.ID, 10)
	case xdr.MemoTypeHash, xdr.MemoTypeReturn:
		return hex.EncodeToString(m.Hash[:])
	}
	return ""
}

// MatchPayments registers a handler that hands every payment to destination
// with a memo to match. Payments without a memo are logged and skipped;
// matcher errors are logged and do not stop the stream.
//
// This is the usual way of attributing deposits to customers when many of
// them share one receiving account:
//
//	err := observer.MatchPayments(obs, "GBBD47UZQ...", func(ctx context.Context, key string, evt observer.PaymentEvent) error {
//	    return deposits.Credit(ctx, key, evt.Amount)
//	}, logrus.StandardLogger())
func MatchPayments(obs Observer, destination string, matcher PaymentMatcher, logger logrus.FieldLogger) error {
	if obs == nil {
		return errors.NewObserverError(errors.STREAM_ERROR, "observer is nil", nil)
	}
	if matcher == nil {
		return errors.NewObserverError(errors.STREAM_ERROR, "matcher is nil", nil)
	}
	if destination == "" {
		return errors.NewObserverError(errors.STREAM_ERROR, "destination account is empty", nil)
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	obs.OnPayment(
		func(evt PaymentEvent) error {
			log := logger.WithFields(logrus.Fields{"payment": evt.ID, "tx_hash": evt.TransactionHash})

			key := MemoKey(evt.Memo)
			if key == "" {
				log.Info("payment has no memo, skipping")
				return nil
			}

			if err := matcher(context.Background(), key, evt); err != nil {
				log.WithError(err).WithField("memo", key).Warn("payment not matched")
				return nil
			}

			log.WithFields(logrus.Fields{"memo": key, "amount": evt.Amount, "asset": evt.Asset}).Info("payment matched")
			return nil
		},
		WithDestination(destination),
	)

	return nil
}
