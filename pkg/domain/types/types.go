package types

import (
	"time"

	"github.com/google/uuid"
)

// AssetID represents an infrastructure asset identifier
type AssetID string

// String returns the string representation
func (id AssetID) String() string {
	return string(id)
}

// NewAssetID creates a new AssetID
func NewAssetID() AssetID {
	return AssetID(uuid.New().String())
}

// IssueID represents a maintenance issue identifier
type IssueID string

// String returns the string representation
func (id IssueID) String() string {
	return string(id)
}

// NewIssueID creates a new IssueID
func NewIssueID() IssueID {
	return IssueID(uuid.New().String())
}

// WardID represents an administrative ward identifier
type WardID string

// String returns the string representation
func (id WardID) String() string {
	return string(id)
}

// NewWardID creates a new WardID
func NewWardID() WardID {
	return WardID(uuid.New().String())
}

// SnapshotID represents a snapshot record identifier
type SnapshotID string

// String returns the string representation
func (id SnapshotID) String() string {
	return string(id)
}

// NewSnapshotID creates a new SnapshotID
func NewSnapshotID() SnapshotID {
	return SnapshotID(uuid.New().String())
}

// AssetTypeID identifies an asset type in the engine configuration
// (e.g. "road", "drain", "streetlight")
type AssetTypeID string

// String returns the string representation
func (id AssetTypeID) String() string {
	return string(id)
}

// SeverityID identifies a severity level in the engine configuration
type SeverityID string

// String returns the string representation
func (id SeverityID) String() string {
	return string(id)
}

// Well-known severity IDs from the default configuration. Custom
// configurations may define others; only "critical" carries special
// meaning in aggregation (critical issue counts).
const (
	SeverityLow      SeverityID = "low"
	SeverityMedium   SeverityID = "medium"
	SeverityHigh     SeverityID = "high"
	SeverityCritical SeverityID = "critical"
)

// IssueStatus represents the lifecycle state of an issue
type IssueStatus string

const (
	IssueStatusOpen     IssueStatus = "open"
	IssueStatusResolved IssueStatus = "resolved"
)

// String returns the string representation
func (s IssueStatus) String() string {
	return string(s)
}

// Validate checks if the status is a known value
func (s IssueStatus) Validate() bool {
	switch s {
	case IssueStatusOpen, IssueStatusResolved:
		return true
	default:
		return false
	}
}

// EntityType identifies the aggregation level of a snapshot or query
type EntityType string

const (
	EntityTypeAsset EntityType = "asset"
	EntityTypeWard  EntityType = "ward"
	EntityTypeCity  EntityType = "city"
)

// String returns the string representation
func (t EntityType) String() string {
	return string(t)
}

// Validate checks if the entity type is a known value
func (t EntityType) Validate() bool {
	switch t {
	case EntityTypeAsset, EntityTypeWard, EntityTypeCity:
		return true
	default:
		return false
	}
}

// CityEntityID is the fixed entity ID used for city-level snapshots
const CityEntityID = "city"

// Period identifies one snapshot scheduling period (one calendar day, UTC)
type Period string

const periodLayout = "2006-01-02"

// String returns the string representation
func (p Period) String() string {
	return string(p)
}

// PeriodOf returns the period containing the given time
func PeriodOf(t time.Time) Period {
	return Period(t.UTC().Format(periodLayout))
}

// ParsePeriod parses a period string in YYYY-MM-DD form
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse(periodLayout, s)
	if err != nil {
		return "", err
	}
	return PeriodOf(t), nil
}

// Time returns the start of the period as a UTC time
func (p Period) Time() (time.Time, error) {
	return time.Parse(periodLayout, string(p))
}
