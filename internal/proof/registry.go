package proof

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"gitlab.com/swifttrack/driver-app/internal/adapters"
)

// ErrNoFlow means no capture flow is open for the package.
var ErrNoFlow = errors.New("no proof capture flow open for package")

// Registry tracks the open capture flows, at most one per package, all
// sharing the single modal gate.
type Registry struct {
	gate      *ModalGate
	camera    adapters.Camera
	signature adapters.SignaturePad
	media     adapters.MediaLibrary
	log       *zap.Logger

	mu    sync.Mutex
	flows map[string]*Coordinator
}

func NewRegistry(camera adapters.Camera, signature adapters.SignaturePad, media adapters.MediaLibrary, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		gate:      &ModalGate{},
		camera:    camera,
		signature: signature,
		media:     media,
		log:       log,
		flows:     make(map[string]*Coordinator),
	}
}

// Open returns the flow for the package, starting one if none is open.
// Reopening an existing flow keeps its collected proof.
func (r *Registry) Open(packageID string) *Coordinator {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.flows[packageID]; ok {
		return c
	}
	c := NewCoordinator(packageID, r.gate, r.camera, r.signature, r.media, r.log)
	r.flows[packageID] = c
	return c
}

func (r *Registry) Get(packageID string) (*Coordinator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.flows[packageID]
	if !ok {
		return nil, ErrNoFlow
	}
	return c, nil
}

// Close drops the flow. Called after completion hands the proof to the state
// machine, or after cancel.
func (r *Registry) Close(packageID string) {
	r.mu.Lock()
	delete(r.flows, packageID)
	r.mu.Unlock()
}
