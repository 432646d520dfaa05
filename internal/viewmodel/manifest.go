package viewmodel

import (
	"strings"

	"gitlab.com/swifttrack/driver-app/internal/model"
)

type StatusFilter string

const (
	FilterAll       StatusFilter = "all"
	FilterPending   StatusFilter = "pending"
	FilterDelivered StatusFilter = "delivered"
	FilterFailed    StatusFilter = "failed"
)

// Summary counts over the unfiltered package set. Displayed next to the
// manifest regardless of the active filter or search.
type Summary struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
}

// Manifest is the filtered package list plus the unfiltered summary.
type Manifest struct {
	Packages []*model.Package `json:"packages"`
	Summary  Summary          `json:"summary"`
}

// BuildManifest applies the status filter and the case-insensitive search
// (customer name, package id, address) in stable input order. The summary is
// always computed over the full input.
func BuildManifest(pkgs []*model.Package, filter StatusFilter, search string) Manifest {
	m := Manifest{
		Packages: make([]*model.Package, 0, len(pkgs)),
		Summary:  Summarize(pkgs),
	}
	needle := strings.ToLower(strings.TrimSpace(search))
	for _, p := range pkgs {
		if !matchesFilter(p, filter) {
			continue
		}
		if needle != "" && !matchesSearch(p, needle) {
			continue
		}
		m.Packages = append(m.Packages, p)
	}
	return m
}

func Summarize(pkgs []*model.Package) Summary {
	s := Summary{Total: len(pkgs)}
	for _, p := range pkgs {
		switch p.Status {
		case model.StatusPending:
			s.Pending++
		case model.StatusDelivered:
			s.Delivered++
		case model.StatusFailed:
			s.Failed++
		}
	}
	return s
}

func matchesFilter(p *model.Package, filter StatusFilter) bool {
	switch filter {
	case FilterPending:
		return p.Status == model.StatusPending
	case FilterDelivered:
		return p.Status == model.StatusDelivered
	case FilterFailed:
		return p.Status == model.StatusFailed
	default:
		return true
	}
}

func matchesSearch(p *model.Package, needle string) bool {
	return strings.Contains(strings.ToLower(p.Customer.Name), needle) ||
		strings.Contains(strings.ToLower(p.ID), needle) ||
		strings.Contains(strings.ToLower(p.Customer.Address), needle)
}
