// Package adapters defines the contracts for the device and platform
// collaborators the app core talks to: camera, signature pad, media library,
// telephony and directions. Real devices live out of process; the local
// implementations here are deterministic stand-ins used by the wiring and
// the tests.
package adapters

import (
	"context"
	"errors"
	"fmt"

	"gitlab.com/swifttrack/driver-app/internal/model"
)

// PermissionDenied is terminal for the capability for the rest of the
// session.
type PermissionDenied struct {
	Capability string
}

func (e *PermissionDenied) Error() string {
	return fmt.Sprintf("permission denied for %s", e.Capability)
}

// CaptureError is a retryable camera I/O failure.
type CaptureError struct {
	Err error
}

func (e *CaptureError) Error() string { return "capture failed: " + e.Err.Error() }
func (e *CaptureError) Unwrap() error { return e.Err }

// StorageError is a retryable media library I/O failure.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string { return "media save failed: " + e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }

// ErrSignatureEmpty is returned when the pad is confirmed with no strokes.
var ErrSignatureEmpty = errors.New("signature pad confirmed empty")

// ErrCancelled is returned when the driver dismisses a capture modal.
var ErrCancelled = errors.New("capture cancelled")

type CaptureOptions struct {
	Quality float64
}

// Camera captures delivery photos. Capture blocks until the driver confirms
// or dismisses the camera modal.
type Camera interface {
	RequestPermission(ctx context.Context) error
	Capture(ctx context.Context, opts CaptureOptions) (model.ImageRef, error)
}

// SignaturePad presents the signing canvas. Open blocks until confirm,
// confirm-empty (ErrSignatureEmpty) or cancel (ErrCancelled).
type SignaturePad interface {
	Open(ctx context.Context) (model.ImageRef, error)
}

// MediaLibrary persists captured images.
type MediaLibrary interface {
	RequestPermission(ctx context.Context) error
	Save(ctx context.Context, ref model.ImageRef) (model.ImageRef, error)
}

// Telephony dials the customer.
type Telephony interface {
	Dial(ctx context.Context, phoneNumber string) error
}

// Directions hands an address to the navigation provider.
type Directions interface {
	OpenDirections(ctx context.Context, address string) error
}
