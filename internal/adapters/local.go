package adapters

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gitlab.com/swifttrack/driver-app/internal/model"
)

// LocalCamera grants permission and mints fresh image refs. Stands in for
// the device camera in local runs and tests.
type LocalCamera struct {
	log *zap.Logger
}

func NewLocalCamera(log *zap.Logger) *LocalCamera {
	if log == nil {
		log = zap.NewNop()
	}
	return &LocalCamera{log: log}
}

func (c *LocalCamera) RequestPermission(ctx context.Context) error {
	return ctx.Err()
}

func (c *LocalCamera) Capture(ctx context.Context, opts CaptureOptions) (model.ImageRef, error) {
	if err := ctx.Err(); err != nil {
		return "", &CaptureError{Err: err}
	}
	ref := model.ImageRef("photo-" + uuid.NewString())
	c.log.Debug("camera capture", zap.String("ref", string(ref)), zap.Float64("quality", opts.Quality))
	return ref, nil
}

// LocalSignaturePad always confirms with a fresh ref.
type LocalSignaturePad struct{}

func (p *LocalSignaturePad) Open(ctx context.Context) (model.ImageRef, error) {
	if err := ctx.Err(); err != nil {
		return "", ErrCancelled
	}
	return model.ImageRef("sig-" + uuid.NewString()), nil
}

// LocalMediaLibrary stores nothing and returns the ref unchanged, prefixed
// so saved refs are distinguishable in logs.
type LocalMediaLibrary struct {
	log *zap.Logger
}

func NewLocalMediaLibrary(log *zap.Logger) *LocalMediaLibrary {
	if log == nil {
		log = zap.NewNop()
	}
	return &LocalMediaLibrary{log: log}
}

func (m *LocalMediaLibrary) RequestPermission(ctx context.Context) error {
	return ctx.Err()
}

func (m *LocalMediaLibrary) Save(ctx context.Context, ref model.ImageRef) (model.ImageRef, error) {
	if err := ctx.Err(); err != nil {
		return "", &StorageError{Err: err}
	}
	saved := model.ImageRef("saved-" + string(ref))
	m.log.Debug("media saved", zap.String("ref", string(saved)))
	return saved, nil
}

// LogTelephony logs the dial instead of placing a call.
type LogTelephony struct {
	log *zap.Logger
}

func NewLogTelephony(log *zap.Logger) *LogTelephony {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogTelephony{log: log}
}

func (t *LogTelephony) Dial(ctx context.Context, phoneNumber string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.log.Info("dialing customer", zap.String("phone", phoneNumber))
	return nil
}

// LogDirections logs the handoff instead of opening a navigator.
type LogDirections struct {
	log *zap.Logger
}

func NewLogDirections(log *zap.Logger) *LogDirections {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogDirections{log: log}
}

func (d *LogDirections) OpenDirections(ctx context.Context, address string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.log.Info("opening directions", zap.String("address", address))
	return nil
}
