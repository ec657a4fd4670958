package trader

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a trade or PnL failure so callers can branch on the
// category without matching message strings.
type ErrorKind string

const (
	// KindInvalidInput marks requests rejected before any network or
	// storage call (non-positive amount, empty mint, bad slippage).
	KindInvalidInput ErrorKind = "invalid_input"
	// KindQuoteUnavailable marks transport failures, timeouts and
	// non-success responses from the quote provider.
	KindQuoteUnavailable ErrorKind = "quote_unavailable"
	// KindNoHoldings marks a sell-all against a flat or negative position.
	KindNoHoldings ErrorKind = "no_holdings"
	// KindNoTrades marks a PnL request for a mint with no ledger entries.
	KindNoTrades ErrorKind = "no_trades"
	// KindStorageFailure marks ledger reads or writes that did not
	// complete. Never conflated with quote problems: a storage failure
	// after a successful quote still means the trade did not happen.
	KindStorageFailure ErrorKind = "storage_failure"
)

// TradeError is the typed failure result of the orchestrator.
type TradeError struct {
	Kind ErrorKind
	Err  error
}

func (e *TradeError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *TradeError) Unwrap() error { return e.Err }

func newError(kind ErrorKind, format string, args ...any) *TradeError {
	return &TradeError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the ErrorKind from an error, or empty string when the
// error did not originate here.
func KindOf(err error) ErrorKind {
	var te *TradeError
	if errors.As(err, &te) {
		return te.Kind
	}
	return ""
}
