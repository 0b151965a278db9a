package docbind

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Error taxonomy. Concrete failures are marked with one of these sentinels so
// callers can classify them with errors.Is regardless of how much context was
// wrapped around them.
var (
	// ErrUnsupportedType is returned when no factory produced an adapter.
	ErrUnsupportedType = errors.New("docbind: unsupported type")
	// ErrUnknownVariant is returned when an enum name matches no variant.
	ErrUnknownVariant = errors.New("docbind: unknown enum variant")
	// ErrMalformedToken is returned when a token stream violates the expected
	// structure or a scalar cannot be coerced to the requested kind.
	ErrMalformedToken = errors.New("docbind: malformed token stream")
	// ErrKeyCoercion is returned when a map or enum key string cannot be parsed
	// back into its typed form.
	ErrKeyCoercion = errors.New("docbind: key coercion failed")
	// ErrAccess marks accessor/mutator failures on structured objects. These are
	// logged and never abort a traversal.
	ErrAccess = errors.New("docbind: field access failed")
	// ErrKeyUnsupported is a programming error: key encoding was requested from
	// an adapter that cannot appear in key position.
	ErrKeyUnsupported = errors.New("docbind: type cannot be used as a map key")
	// ErrBackend marks failures raised by a format backend (I/O, syntax).
	ErrBackend = errors.New("docbind: backend failure")
	// ErrRegistryFrozen is returned when a registry is reconfigured after
	// resolution has started.
	ErrRegistryFrozen = errors.New("docbind: registry is frozen")
	// ErrInvalidValue is returned when a value handed to an adapter does not
	// have a Go representation the adapter understands.
	ErrInvalidValue = errors.New("docbind: invalid value for type")
)

// UnsupportedTypeError identifies the exact descriptor that failed to resolve.
type UnsupportedTypeError struct {
	Type Type
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("docbind: unsupported type %s", e.Type)
}

// Is reports true for ErrUnsupportedType.
func (e *UnsupportedTypeError) Is(target error) bool { return target == ErrUnsupportedType }

// UnknownVariantError records the attempted name and the enum type.
type UnknownVariantError struct {
	Type Type
	Name string
}

func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("docbind: unknown variant %q for enum %s", e.Name, e.Type)
}

// Is reports true for ErrUnknownVariant.
func (e *UnknownVariantError) Is(target error) bool { return target == ErrUnknownVariant }

// Malformed builds an ErrMalformedToken error.
func Malformed(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrMalformedToken)
}

// Unexpected builds the standard error for a token that does not match what
// the caller asked to consume.
func Unexpected(want string, got TokenKind) error {
	return Malformed("docbind: expected %s, found %s", want, got)
}

// BackendError wraps a backend failure so it is distinguishable from adapter
// logic errors. Errors already classified by the taxonomy pass through.
func BackendError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if IsClassified(err) {
		return err
	}
	return errors.Mark(errors.Wrap(err, msg), ErrBackend)
}

// IsClassified reports whether err already carries one of the taxonomy
// sentinels.
func IsClassified(err error) bool {
	return errors.IsAny(err,
		ErrUnsupportedType, ErrUnknownVariant, ErrMalformedToken, ErrKeyCoercion,
		ErrAccess, ErrKeyUnsupported, ErrBackend, ErrRegistryFrozen, ErrInvalidValue)
}

func invalidValue(t Type, v any) error {
	return errors.Mark(errors.Newf("docbind: cannot encode %T as %s", v, t), ErrInvalidValue)
}

func keyCoercion(t Type, raw string, cause error) error {
	err := errors.Newf("docbind: cannot parse key %q as %s", raw, t)
	if cause != nil {
		err = errors.WithSecondaryError(err, cause)
	}
	return errors.Mark(err, ErrKeyCoercion)
}
