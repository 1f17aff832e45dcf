package model

import (
	"time"

	"github.com/civicworks/mdi/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Issue represents a reported maintenance problem on an asset. An
// issue transitions open -> resolved exactly once and is immutable
// afterwards; unresolved issues accrue debt past their SLA window.
type Issue struct {
	ID                  types.IssueID
	AssetID             types.AssetID
	Category            string // Free-form problem category (e.g. "pothole")
	Severity            types.SeverityID
	EstimatedRepairCost float64 // 0 means use the asset's base repair cost
	ReportDate          time.Time
	Status              types.IssueStatus
	ResolvedDate        *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// NewIssue creates a new open Issue with a generated ID
func NewIssue(assetID types.AssetID, category string, severity types.SeverityID, reportDate time.Time) (*Issue, error) {
	if assetID == "" {
		return nil, goerr.Wrap(ErrInvalidInput, "asset ID is required")
	}
	if severity == "" {
		return nil, goerr.Wrap(ErrInvalidInput, "severity is required")
	}
	if reportDate.IsZero() {
		return nil, goerr.Wrap(ErrInvalidInput, "report date is required")
	}

	now := time.Now()
	return &Issue{
		ID:         types.NewIssueID(),
		AssetID:    assetID,
		Category:   category,
		Severity:   severity,
		ReportDate: reportDate,
		Status:     types.IssueStatusOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Validate validates the issue
func (i *Issue) Validate() error {
	if i.ID == "" {
		return goerr.Wrap(ErrInvalidInput, "issue ID is required")
	}
	if i.AssetID == "" {
		return goerr.Wrap(ErrInvalidInput, "issue asset ID is required",
			goerr.V("issueID", i.ID))
	}
	if i.ReportDate.IsZero() {
		return goerr.Wrap(ErrInvalidInput, "issue report date is required",
			goerr.V("issueID", i.ID))
	}
	if !i.Status.Validate() {
		return goerr.Wrap(ErrInvalidInput, "unknown issue status",
			goerr.V("issueID", i.ID),
			goerr.V("status", i.Status))
	}
	if i.EstimatedRepairCost < 0 {
		return goerr.Wrap(ErrInvalidInput, "estimated repair cost must not be negative",
			goerr.V("issueID", i.ID),
			goerr.V("estimatedRepairCost", i.EstimatedRepairCost))
	}
	if i.Status == types.IssueStatusResolved {
		if i.ResolvedDate == nil {
			return goerr.Wrap(ErrInvalidInput, "resolved issue must have a resolved date",
				goerr.V("issueID", i.ID))
		}
		if i.ResolvedDate.Before(i.ReportDate) {
			return goerr.Wrap(ErrInvalidInput, "resolved date must not precede report date",
				goerr.V("issueID", i.ID),
				goerr.V("reportDate", i.ReportDate),
				goerr.V("resolvedDate", *i.ResolvedDate))
		}
	}
	return nil
}

// IsResolved returns true when the issue has been closed
func (i *Issue) IsResolved() bool {
	return i.Status == types.IssueStatusResolved
}

// Resolve marks the issue as resolved at the given time. Resolving an
// already-resolved issue or resolving before the report date is
// rejected.
func (i *Issue) Resolve(at time.Time) error {
	if i.IsResolved() {
		return goerr.Wrap(ErrInvalidInput, "issue is already resolved",
			goerr.V("issueID", i.ID))
	}
	if at.Before(i.ReportDate) {
		return goerr.Wrap(ErrInvalidInput, "resolved date must not precede report date",
			goerr.V("issueID", i.ID),
			goerr.V("reportDate", i.ReportDate),
			goerr.V("resolvedDate", at))
	}
	i.Status = types.IssueStatusResolved
	i.ResolvedDate = &at
	i.UpdatedAt = time.Now()
	return nil
}

// BaseCost returns the issue's own estimate when set, otherwise the
// asset's base repair cost
func (i *Issue) BaseCost(asset *Asset) float64 {
	if i.EstimatedRepairCost > 0 {
		return i.EstimatedRepairCost
	}
	return asset.BaseRepairCost
}
