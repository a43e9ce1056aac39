package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies an evaluate-time rejection. Programmatic consumers key off
// Kind, never the formatted message.
type Kind string

const (
	KindInsufficientBalance       Kind = "insufficient_balance"
	KindInsufficientFee           Kind = "insufficient_fee"
	KindInsufficientFeePool       Kind = "insufficient_fee_pool"
	KindUnauthorizedFeeAsset      Kind = "unauthorized_fee_asset"
	KindTransferFromNotWhitelisted Kind = "transfer_from_not_whitelisted"
	KindTransferToNotWhitelisted  Kind = "transfer_to_not_whitelisted"
	KindTransferRestricted        Kind = "transfer_restricted"
	KindOverrideNotPermitted      Kind = "override_not_permitted"
	KindPrecondHardfork           Kind = "precond_hardfork"
	KindInvalidPayload            Kind = "invalid_payload"

	// KindInvariantViolation marks a defensive check that fired inside Apply,
	// after Evaluate already reported success. Reaching one is a programmer
	// bug, not a classified evaluate-time rejection — callers that see this
	// Kind should treat it as fatal rather than retry or surface it to a user.
	KindInvariantViolation Kind = "invariant_violation"
)

// Error is a classified evaluate-time failure: a Kind plus a context bundle
// of account ids, asset ids, and pretty-printed amounts. The Message is
// non-semantic; Kind is what tests and callers branch on.
type Error struct {
	Kind    Kind
	Message string
	Context map[string]string
}

// New creates a classified error with an empty context bundle.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Context: make(map[string]string)}
}

// With attaches a context key/value pair and returns the receiver for
// chaining at the call site.
func (e *Error) With(key, value string) *Error {
	if e == nil {
		return e
	}
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// Error renders the classified failure as a single line: the message
// followed by context pairs in deterministic (sorted-key) order.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if len(e.Context) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, e.Context[k]))
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(pairs, ", "))
}

// KindOf returns err's Kind if it is a classified Error, or "" otherwise.
// Callers use this to label metrics without a type switch at every call site.
func KindOf(err error) Kind {
	var classified *Error
	if !stderrors.As(err, &classified) {
		return ""
	}
	return classified.Kind
}

// HasKind reports whether err is a classified Error of the given kind.
// errors.Is(err, errors.KindInsufficientBalance)-style checks are not
// supported since Kind is not an error; HasKind covers that use.
func HasKind(err error, kind Kind) bool {
	var classified *Error
	if !stderrors.As(err, &classified) {
		return false
	}
	return classified.Kind == kind
}

// Simple preconditions that are programmer errors rather than classified
// evaluate-time rejections (nil input, unconfigured state) use plain
// sentinels in a package-level var block instead of the classified Error type.
var (
	ErrNilOperation    = stderrors.New("errors: nil operation")
	ErrStateUnavailable = stderrors.New("errors: state not configured")
)
