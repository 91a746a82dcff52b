package hx

import (
	"context"
	"errors"
	"html"
	"io"

	"github.com/a-h/templ"

	"github.com/pthm/ccpricing/hx/encoding"
)

// Sentinel errors for component operations.
var (
	ErrNotFound         = errors.New("hx: resource not found")
	ErrDecryptFailed    = errors.New("hx: parameter decryption failed")
	ErrSignatureInvalid = errors.New("hx: signature verification failed")
	ErrInvalidFormat    = errors.New("hx: invalid parameter format")
	ErrHydrationFailed  = errors.New("hx: hydration failed")
	ErrMethodNotAllowed = errors.New("hx: method not allowed")
)

// IsNotFound checks if err is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDecryptionError checks if err is a decryption or signature error.
func IsDecryptionError(err error) bool {
	return errors.Is(err, ErrDecryptFailed) || errors.Is(err, ErrSignatureInvalid)
}

// IsBadRequest reports errors caused by a malformed or forged request.
func IsBadRequest(err error) bool {
	return IsDecryptionError(err) || errors.Is(err, ErrInvalidFormat)
}

// WrapDecodeError maps encoding errors onto the hx sentinels. Other errors
// pass through unchanged.
func WrapDecodeError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, encoding.ErrInvalidFormat):
		return ErrInvalidFormat
	case errors.Is(err, encoding.ErrSignatureInvalid):
		return ErrSignatureInvalid
	case errors.Is(err, encoding.ErrDecryptFailed):
		return ErrDecryptFailed
	}
	return err
}

// ErrorComponent renders a hydration failure inline.
func ErrorComponent(err error) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, werr := io.WriteString(w, `<div class="hx-error">Hydration error: `+html.EscapeString(err.Error())+`</div>`)
		return werr
	})
}
