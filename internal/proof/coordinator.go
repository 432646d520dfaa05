// Package proof implements the short-lived capture workflow that gates the
// Delivered transition. A coordinator collects photo, signature, recipient
// name and notes for one package; completing it yields a ProofOfDelivery the
// state machine can accept. The coordinator never touches the package.
package proof

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"gitlab.com/swifttrack/driver-app/internal/adapters"
	"gitlab.com/swifttrack/driver-app/internal/delivery"
	"gitlab.com/swifttrack/driver-app/internal/metrics"
	"gitlab.com/swifttrack/driver-app/internal/model"
)

// ErrBusy rejects opening a second exclusive capture modal while one is
// already on screen.
var ErrBusy = errors.New("another capture modal is open")

// ModalGate serializes the camera, media library and signature pad. They
// share one physical screen, so at most one modal may be open.
type ModalGate struct {
	mu   sync.Mutex
	open bool
}

func (g *ModalGate) acquire() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.open {
		return ErrBusy
	}
	g.open = true
	return nil
}

func (g *ModalGate) release() {
	g.mu.Lock()
	g.open = false
	g.mu.Unlock()
}

// Coordinator owns the capture flow state for one package. Collaborator
// failures leave partially collected proof intact for retry; a denied
// permission is remembered and short-circuits further attempts on that
// capability for the session.
type Coordinator struct {
	packageID string
	gate      *ModalGate
	camera    adapters.Camera
	signature adapters.SignaturePad
	media     adapters.MediaLibrary
	log       *zap.Logger

	mu            sync.Mutex
	recipientName string
	notes         string
	photo         model.ImageRef
	sig           model.ImageRef
	denied        map[string]bool
	cancelled     bool
}

func NewCoordinator(
	packageID string,
	gate *ModalGate,
	camera adapters.Camera,
	signature adapters.SignaturePad,
	media adapters.MediaLibrary,
	log *zap.Logger,
) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{
		packageID: packageID,
		gate:      gate,
		camera:    camera,
		signature: signature,
		media:     media,
		log:       log.With(zap.String("package_id", packageID)),
		denied:    make(map[string]bool),
	}
}

func (c *Coordinator) PackageID() string { return c.packageID }

// AttachPhoto runs the camera flow: permission, capture, media save. The
// saved ref replaces any previous photo.
func (c *Coordinator) AttachPhoto(ctx context.Context, opts adapters.CaptureOptions) (model.ImageRef, error) {
	if err := c.checkOpen(); err != nil {
		return "", err
	}
	if err := c.gate.acquire(); err != nil {
		return "", err
	}
	defer c.gate.release()

	if err := c.requestPermission(ctx, "camera", c.camera.RequestPermission); err != nil {
		return "", err
	}
	if err := c.requestPermission(ctx, "media_library", c.media.RequestPermission); err != nil {
		return "", err
	}

	ref, err := c.camera.Capture(ctx, opts)
	if err != nil {
		c.log.Warn("photo capture failed", zap.Error(err))
		return "", err
	}
	saved, err := c.media.Save(ctx, ref)
	if err != nil {
		c.log.Warn("photo save failed", zap.Error(err))
		return "", err
	}

	c.mu.Lock()
	c.photo = saved
	c.mu.Unlock()
	metrics.ProofCapturesTotal.WithLabelValues("photo").Inc()
	c.log.Info("photo attached", zap.String("ref", string(saved)))
	return saved, nil
}

// AttachSignature opens the signature pad. Confirming an empty canvas or
// cancelling leaves the flow unchanged.
func (c *Coordinator) AttachSignature(ctx context.Context) (model.ImageRef, error) {
	if err := c.checkOpen(); err != nil {
		return "", err
	}
	if err := c.gate.acquire(); err != nil {
		return "", err
	}
	defer c.gate.release()

	ref, err := c.signature.Open(ctx)
	if err != nil {
		if !errors.Is(err, adapters.ErrCancelled) {
			c.log.Warn("signature capture failed", zap.Error(err))
		}
		return "", err
	}

	c.mu.Lock()
	c.sig = ref
	c.mu.Unlock()
	metrics.ProofCapturesTotal.WithLabelValues("signature").Inc()
	c.log.Info("signature attached", zap.String("ref", string(ref)))
	return ref, nil
}

func (c *Coordinator) SetRecipientName(name string) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	c.mu.Lock()
	c.recipientName = name
	c.mu.Unlock()
	return nil
}

func (c *Coordinator) SetNotes(notes string) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	c.mu.Lock()
	c.notes = notes
	c.mu.Unlock()
	return nil
}

func (c *Coordinator) ClearPhoto() error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	c.mu.Lock()
	c.photo = ""
	c.mu.Unlock()
	return nil
}

func (c *Coordinator) ClearSignature() error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	c.mu.Lock()
	c.sig = ""
	c.mu.Unlock()
	return nil
}

// Draft returns the proof as collected so far, without completeness checks.
func (c *Coordinator) Draft() model.ProofOfDelivery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return model.ProofOfDelivery{
		RecipientName:  c.recipientName,
		SignatureImage: c.sig,
		PhotoImage:     c.photo,
		Notes:          c.notes,
	}
}

// Complete validates the collected proof and returns it, stamped with the
// capture time. Incomplete proof is rejected with ProofIncomplete and the
// flow stays open for retry.
func (c *Coordinator) Complete() (model.ProofOfDelivery, error) {
	if err := c.checkOpen(); err != nil {
		return model.ProofOfDelivery{}, err
	}
	p := c.Draft()
	if missing := p.Missing(); len(missing) > 0 {
		return model.ProofOfDelivery{}, &delivery.ProofIncomplete{Missing: missing}
	}
	p.RecipientName = strings.TrimSpace(p.RecipientName)
	p.CapturedAt = time.Now()
	return p, nil
}

// Cancel abandons the flow. No observable change is made to the package;
// the coordinator refuses further use.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	c.cancelled = true
	c.mu.Unlock()
	c.log.Info("proof capture cancelled")
}

func (c *Coordinator) checkOpen() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelled {
		return fmt.Errorf("proof capture for %s was cancelled", c.packageID)
	}
	return nil
}

func (c *Coordinator) requestPermission(ctx context.Context, capability string, request func(context.Context) error) error {
	c.mu.Lock()
	if c.denied[capability] {
		c.mu.Unlock()
		return &adapters.PermissionDenied{Capability: capability}
	}
	c.mu.Unlock()

	err := request(ctx)
	if err == nil {
		return nil
	}
	var denied *adapters.PermissionDenied
	if errors.As(err, &denied) {
		c.mu.Lock()
		c.denied[capability] = true
		c.mu.Unlock()
	}
	return err
}
