package delivery

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"gitlab.com/swifttrack/driver-app/internal/metrics"
	"gitlab.com/swifttrack/driver-app/internal/model"
	"gitlab.com/swifttrack/driver-app/internal/store"
)

// Machine validates and applies delivery state transitions. All mutations go
// through the store, which emits the change events; the machine itself is
// stateless.
type Machine struct {
	store   *store.Store
	catalog *Catalog
	log     *zap.Logger
}

func NewMachine(st *store.Store, catalog *Catalog, log *zap.Logger) *Machine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Machine{store: st, catalog: catalog, log: log}
}

func (m *Machine) Catalog() *Catalog {
	return m.catalog
}

// MarkInTransit moves a Pending package to InTransit.
func (m *Machine) MarkInTransit(packageID string) (*model.Package, error) {
	pkg, err := m.store.Apply(packageID, func(p *model.Package) error {
		if p.Status != model.StatusPending {
			return &IllegalTransition{From: p.Status, Event: EventMarkInTransit}
		}
		p.Status = model.StatusInTransit
		return nil
	})
	if err != nil {
		metrics.TransitionErrorsTotal.WithLabelValues(EventMarkInTransit).Inc()
		return nil, err
	}
	return pkg, nil
}

// MarkDelivered moves a Pending or InTransit package to Delivered, storing
// the proof. The proof must carry a trimmed non-empty recipient name and at
// least one image.
func (m *Machine) MarkDelivered(packageID string, proof model.ProofOfDelivery) (*model.Package, error) {
	pkg, err := m.store.Apply(packageID, func(p *model.Package) error {
		if p.Status != model.StatusPending && p.Status != model.StatusInTransit {
			return &IllegalTransition{From: p.Status, Event: EventMarkDelivered}
		}
		if missing := proof.Missing(); len(missing) > 0 {
			return &ProofIncomplete{Missing: missing}
		}
		stored := proof
		stored.RecipientName = strings.TrimSpace(proof.RecipientName)
		if stored.CapturedAt.IsZero() {
			stored.CapturedAt = time.Now()
		}
		p.Status = model.StatusDelivered
		p.Proof = &stored
		return nil
	})
	if err != nil {
		metrics.TransitionErrorsTotal.WithLabelValues(EventMarkDelivered).Inc()
		return nil, err
	}
	metrics.PackagesDeliveredTotal.Inc()
	m.log.Info("package delivered",
		zap.String("package_id", packageID),
		zap.String("recipient", pkg.Proof.RecipientName))
	return pkg, nil
}

// MarkFailed moves a Pending or InTransit package to Failed, storing the
// failure record. The reason must exist in the catalog and carry a trimmed
// non-empty note when the catalog entry demands one.
func (m *Machine) MarkFailed(packageID string, failure model.FailureRecord) (*model.Package, error) {
	pkg, err := m.store.Apply(packageID, func(p *model.Package) error {
		if p.Status != model.StatusPending && p.Status != model.StatusInTransit {
			return &IllegalTransition{From: p.Status, Event: EventMarkFailed}
		}
		reason, ok := m.catalog.Lookup(failure.ReasonID)
		if !ok {
			return &FailureReasonInvalid{ReasonID: failure.ReasonID}
		}
		stored := failure
		stored.Note = strings.TrimSpace(failure.Note)
		if reason.RequiresNote && stored.Note == "" {
			return &FailureReasonInvalid{ReasonID: failure.ReasonID, MissingNote: true}
		}
		if !reason.RequiresNote {
			stored.Note = ""
		}
		if stored.RecordedAt.IsZero() {
			stored.RecordedAt = time.Now()
		}
		p.Status = model.StatusFailed
		p.Failure = &stored
		return nil
	})
	if err != nil {
		metrics.TransitionErrorsTotal.WithLabelValues(EventMarkFailed).Inc()
		return nil, err
	}
	metrics.PackagesFailedTotal.WithLabelValues(pkg.Failure.ReasonID).Inc()
	m.log.Info("package failed",
		zap.String("package_id", packageID),
		zap.String("reason", pkg.Failure.ReasonID))
	return pkg, nil
}
