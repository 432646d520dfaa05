package model

import (
	"strings"
	"time"
)

// ImageRef is an opaque reference to a captured image, handed out by the
// camera or signature collaborator and resolvable by the media library.
type ImageRef string

// ProofOfDelivery justifies a Delivered transition. At least one of the two
// images must be present and the recipient name must be non-empty.
type ProofOfDelivery struct {
	RecipientName  string    `json:"recipient_name"`
	SignatureImage ImageRef  `json:"signature_image,omitempty"`
	PhotoImage     ImageRef  `json:"photo_image,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	CapturedAt     time.Time `json:"captured_at"`
}

// Missing reports which required parts are absent, in stable order.
func (p *ProofOfDelivery) Missing() []string {
	var missing []string
	if p == nil {
		return []string{"recipient_name", "image"}
	}
	if strings.TrimSpace(p.RecipientName) == "" {
		missing = append(missing, "recipient_name")
	}
	if p.SignatureImage == "" && p.PhotoImage == "" {
		missing = append(missing, "image")
	}
	return missing
}

func (p *ProofOfDelivery) Complete() bool {
	return len(p.Missing()) == 0
}

// FailureRecord justifies a Failed transition. ReasonID must name a catalog
// entry; Note is required when that entry demands one.
type FailureRecord struct {
	ReasonID   string    `json:"reason_id"`
	Note       string    `json:"note,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}
