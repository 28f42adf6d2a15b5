package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies a failure so callers can branch on it.
type Kind int

const (
	KindUnknown Kind = iota
	KindArchive
	KindFormat
	KindCrypto
	KindSelection
	KindBrandLookup
	KindAuthentication
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindArchive:
		return "archive"
	case KindFormat:
		return "format"
	case KindCrypto:
		return "crypto"
	case KindSelection:
		return "selection"
	case KindBrandLookup:
		return "brand lookup"
	case KindAuthentication:
		return "authentication"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// Reason narrows a Kind. Only crypto and authentication failures carry one.
type Reason string

const (
	ReasonNone Reason = ""

	// Crypto reasons
	ReasonWrongPassphrase    Reason = "wrong passphrase"
	ReasonUnsupportedCipher  Reason = "unsupported cipher"
	ReasonMalformedContainer Reason = "malformed container"

	// Authentication reasons
	ReasonRejected           Reason = "rejected"
	ReasonLookupFailed       Reason = "lookup failed"
	ReasonTokenRequestFailed Reason = "token request failed"
)

// Error is the tagged error returned by every package of this module.
type Error struct {
	Kind    Kind
	Reason  Reason
	Op      string            // operation that failed, e.g. "apk.Extract"
	Details map[string]string // structured server-side error details, if any
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	b.WriteString(" error")
	if e.Reason != ReasonNone {
		b.WriteString(" (")
		b.WriteString(string(e.Reason))
		b.WriteString(")")
	}
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" [")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%s", k, e.Details[k])
		}
		b.WriteString("]")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same Kind. A target with a Reason also
// requires the Reason to match.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Reason == ReasonNone || t.Reason == e.Reason
}

// Sentinels for use with errors.Is
var (
	ErrArchive     = &Error{Kind: KindArchive}
	ErrFormat      = &Error{Kind: KindFormat}
	ErrSelection   = &Error{Kind: KindSelection}
	ErrBrandLookup = &Error{Kind: KindBrandLookup}
	ErrNetwork     = &Error{Kind: KindNetwork}

	ErrCrypto             = &Error{Kind: KindCrypto}
	ErrWrongPassphrase    = &Error{Kind: KindCrypto, Reason: ReasonWrongPassphrase}
	ErrUnsupportedCipher  = &Error{Kind: KindCrypto, Reason: ReasonUnsupportedCipher}
	ErrMalformedContainer = &Error{Kind: KindCrypto, Reason: ReasonMalformedContainer}

	ErrAuthentication     = &Error{Kind: KindAuthentication}
	ErrRejected           = &Error{Kind: KindAuthentication, Reason: ReasonRejected}
	ErrLookupFailed       = &Error{Kind: KindAuthentication, Reason: ReasonLookupFailed}
	ErrTokenRequestFailed = &Error{Kind: KindAuthentication, Reason: ReasonTokenRequestFailed}
)

// New creates a tagged error with a formatted message as its cause.
func New(kind Kind, op string, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Wrap tags err with kind. An err that is already tagged keeps its own tag.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	var tagged *Error
	if errors.As(err, &tagged) {
		return err
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// WithReason returns a copy of e carrying reason.
func (e *Error) WithReason(reason Reason) *Error {
	c := *e
	c.Reason = reason
	return &c
}

// WithDetails returns a copy of e carrying details.
func (e *Error) WithDetails(details map[string]string) *Error {
	c := *e
	c.Details = details
	return &c
}

// KindOf returns the Kind of the first tagged error in err's chain.
func KindOf(err error) Kind {
	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged.Kind
	}
	return KindUnknown
}

// ReasonOf returns the Reason of the first tagged error in err's chain.
func ReasonOf(err error) Reason {
	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged.Reason
	}
	return ReasonNone
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
