package proof_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gitlab.com/swifttrack/driver-app/internal/adapters"
	"gitlab.com/swifttrack/driver-app/internal/delivery"
	"gitlab.com/swifttrack/driver-app/internal/model"
	"gitlab.com/swifttrack/driver-app/internal/proof"
)

type fakeCamera struct {
	permissionErr error
	captureErr    error
	captures      int
}

func (c *fakeCamera) RequestPermission(context.Context) error { return c.permissionErr }

func (c *fakeCamera) Capture(context.Context, adapters.CaptureOptions) (model.ImageRef, error) {
	if c.captureErr != nil {
		return "", c.captureErr
	}
	c.captures++
	return model.ImageRef("photo-" + string(rune('0'+c.captures))), nil
}

type fakePad struct {
	ref model.ImageRef
	err error
	// block holds the modal open until released, for exclusivity tests.
	block chan struct{}
}

func (p *fakePad) Open(ctx context.Context) (model.ImageRef, error) {
	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
			return "", adapters.ErrCancelled
		}
	}
	if p.err != nil {
		return "", p.err
	}
	return p.ref, nil
}

type fakeMedia struct {
	permissionErr error
	saveErr       error
}

func (m *fakeMedia) RequestPermission(context.Context) error { return m.permissionErr }

func (m *fakeMedia) Save(_ context.Context, ref model.ImageRef) (model.ImageRef, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	return "saved-" + ref, nil
}

func newRegistry(camera adapters.Camera, pad adapters.SignaturePad, media adapters.MediaLibrary) *proof.Registry {
	return proof.NewRegistry(camera, pad, media, zap.NewNop())
}

func TestFullCaptureFlow(t *testing.T) {
	reg := newRegistry(&fakeCamera{}, &fakePad{ref: "sig-1"}, &fakeMedia{})
	c := reg.Open("PKG-1")

	ref, err := c.AttachPhoto(context.Background(), adapters.CaptureOptions{Quality: 0.7})
	require.NoError(t, err)
	assert.Equal(t, model.ImageRef("saved-photo-1"), ref)

	sig, err := c.AttachSignature(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.ImageRef("sig-1"), sig)

	require.NoError(t, c.SetRecipientName("  Alice Johnson  "))
	require.NoError(t, c.SetNotes("left at front desk"))

	p, err := c.Complete()
	require.NoError(t, err)
	assert.Equal(t, "Alice Johnson", p.RecipientName)
	assert.Equal(t, model.ImageRef("saved-photo-1"), p.PhotoImage)
	assert.Equal(t, model.ImageRef("sig-1"), p.SignatureImage)
	assert.Equal(t, "left at front desk", p.Notes)
	assert.False(t, p.CapturedAt.IsZero())
}

func TestCompleteRejectsIncompleteProof(t *testing.T) {
	reg := newRegistry(&fakeCamera{}, &fakePad{ref: "sig-1"}, &fakeMedia{})
	c := reg.Open("PKG-1")

	_, err := c.Complete()
	var incomplete *delivery.ProofIncomplete
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, []string{"recipient_name", "image"}, incomplete.Missing)

	// The flow stays usable after the rejection.
	require.NoError(t, c.SetRecipientName("Alice"))
	_, err = c.AttachSignature(context.Background())
	require.NoError(t, err)
	_, err = c.Complete()
	require.NoError(t, err)
}

func TestPhotoRetakeReplacesRef(t *testing.T) {
	camera := &fakeCamera{}
	reg := newRegistry(camera, &fakePad{}, &fakeMedia{})
	c := reg.Open("PKG-1")

	first, err := c.AttachPhoto(context.Background(), adapters.CaptureOptions{})
	require.NoError(t, err)
	require.NoError(t, c.ClearPhoto())
	assert.Empty(t, c.Draft().PhotoImage)

	second, err := c.AttachPhoto(context.Background(), adapters.CaptureOptions{})
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Equal(t, second, c.Draft().PhotoImage)
}

func TestPermissionDeniedIsRemembered(t *testing.T) {
	camera := &fakeCamera{permissionErr: &adapters.PermissionDenied{Capability: "camera"}}
	reg := newRegistry(camera, &fakePad{}, &fakeMedia{})
	c := reg.Open("PKG-1")

	_, err := c.AttachPhoto(context.Background(), adapters.CaptureOptions{})
	var denied *adapters.PermissionDenied
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, "camera", denied.Capability)

	// Even if the collaborator would now grant it, the denial is sticky for
	// the session.
	camera.permissionErr = nil
	_, err = c.AttachPhoto(context.Background(), adapters.CaptureOptions{})
	require.ErrorAs(t, err, &denied)
}

func TestCaptureFailureLeavesDraftIntact(t *testing.T) {
	camera := &fakeCamera{}
	reg := newRegistry(camera, &fakePad{ref: "sig-1"}, &fakeMedia{})
	c := reg.Open("PKG-1")

	_, err := c.AttachSignature(context.Background())
	require.NoError(t, err)

	camera.captureErr = &adapters.CaptureError{Err: errors.New("shutter jam")}
	_, err = c.AttachPhoto(context.Background(), adapters.CaptureOptions{})
	var capture *adapters.CaptureError
	require.ErrorAs(t, err, &capture)

	draft := c.Draft()
	assert.Equal(t, model.ImageRef("sig-1"), draft.SignatureImage, "collected proof survives a failed capture")
}

func TestEmptySignatureRejected(t *testing.T) {
	reg := newRegistry(&fakeCamera{}, &fakePad{err: adapters.ErrSignatureEmpty}, &fakeMedia{})
	c := reg.Open("PKG-1")

	_, err := c.AttachSignature(context.Background())
	require.ErrorIs(t, err, adapters.ErrSignatureEmpty)
	assert.Empty(t, c.Draft().SignatureImage)
}

func TestModalExclusivity(t *testing.T) {
	block := make(chan struct{})
	pad := &fakePad{ref: "sig-1", block: block}
	reg := newRegistry(&fakeCamera{}, pad, &fakeMedia{})
	a := reg.Open("PKG-1")
	b := reg.Open("PKG-2")

	done := make(chan error, 1)
	go func() {
		_, err := a.AttachSignature(context.Background())
		done <- err
	}()

	// Wait for the first modal to hold the gate, then try to open a second.
	require.Eventually(t, func() bool {
		_, err := b.AttachPhoto(context.Background(), adapters.CaptureOptions{})
		return errors.Is(err, proof.ErrBusy)
	}, time.Second, 5*time.Millisecond)

	close(block)
	require.NoError(t, <-done)

	// Gate released: the second flow proceeds.
	_, err := b.AttachPhoto(context.Background(), adapters.CaptureOptions{})
	require.NoError(t, err)
}

func TestCancelAbandonsFlow(t *testing.T) {
	reg := newRegistry(&fakeCamera{}, &fakePad{ref: "sig-1"}, &fakeMedia{})
	c := reg.Open("PKG-1")

	require.NoError(t, c.SetRecipientName("Alice"))
	c.Cancel()

	require.Error(t, c.SetNotes("too late"))
	_, err := c.Complete()
	require.Error(t, err)

	// The registry no longer tracks a closed flow.
	reg.Close("PKG-1")
	_, err = reg.Get("PKG-1")
	require.ErrorIs(t, err, proof.ErrNoFlow)
}

func TestRegistryReturnsSameFlow(t *testing.T) {
	reg := newRegistry(&fakeCamera{}, &fakePad{}, &fakeMedia{})
	a := reg.Open("PKG-1")
	require.NoError(t, a.SetRecipientName("Alice"))

	b := reg.Open("PKG-1")
	assert.Equal(t, "Alice", b.Draft().RecipientName, "reopening keeps collected proof")

	got, err := reg.Get("PKG-1")
	require.NoError(t, err)
	assert.Same(t, a, got)
}
