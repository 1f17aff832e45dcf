package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/civicworks/mdi/pkg/domain/interfaces"
	"github.com/civicworks/mdi/pkg/domain/model"
	"github.com/civicworks/mdi/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Memory implements Repository interface with in-memory storage
type Memory struct {
	mu        sync.RWMutex
	assets    map[types.AssetID]*model.Asset
	wards     map[types.WardID]*model.Ward
	issues    map[types.IssueID]*model.Issue
	snapshots map[string]*model.Snapshot // keyed by Snapshot.Key()
}

// NewMemory creates a new memory repository
func NewMemory() interfaces.Repository {
	return &Memory{
		assets:    make(map[types.AssetID]*model.Asset),
		wards:     make(map[types.WardID]*model.Ward),
		issues:    make(map[types.IssueID]*model.Issue),
		snapshots: make(map[string]*model.Snapshot),
	}
}

// PutAsset saves an asset to memory
func (m *Memory) PutAsset(ctx context.Context, asset *model.Asset) error {
	if asset == nil {
		return goerr.New("asset is nil")
	}
	if err := asset.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Copy to prevent external modification
	assetCopy := *asset
	m.assets[asset.ID] = &assetCopy
	return nil
}

// GetAsset retrieves an asset by ID
func (m *Memory) GetAsset(ctx context.Context, id types.AssetID) (*model.Asset, error) {
	if id == "" {
		return nil, goerr.New("asset ID is empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	asset, exists := m.assets[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrAssetNotFound, "asset not in repository",
			goerr.V("assetID", id))
	}

	assetCopy := *asset
	return &assetCopy, nil
}

// ListAssets lists all assets ordered by code
func (m *Memory) ListAssets(ctx context.Context) ([]*model.Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	assets := make([]*model.Asset, 0, len(m.assets))
	for _, a := range m.assets {
		assetCopy := *a
		assets = append(assets, &assetCopy)
	}

	sort.Slice(assets, func(i, j int) bool {
		return assets[i].Code < assets[j].Code
	})
	return assets, nil
}

// ListAssetsByWard lists the assets assigned to a ward, ordered by code
func (m *Memory) ListAssetsByWard(ctx context.Context, wardID types.WardID) ([]*model.Asset, error) {
	if wardID == "" {
		return nil, goerr.New("ward ID is empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var assets []*model.Asset
	for _, a := range m.assets {
		if a.WardID == wardID {
			assetCopy := *a
			assets = append(assets, &assetCopy)
		}
	}

	sort.Slice(assets, func(i, j int) bool {
		return assets[i].Code < assets[j].Code
	})
	return assets, nil
}

// PutWard saves a ward to memory
func (m *Memory) PutWard(ctx context.Context, ward *model.Ward) error {
	if ward == nil {
		return goerr.New("ward is nil")
	}
	if err := ward.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	wardCopy := *ward
	m.wards[ward.ID] = &wardCopy
	return nil
}

// GetWard retrieves a ward by ID
func (m *Memory) GetWard(ctx context.Context, id types.WardID) (*model.Ward, error) {
	if id == "" {
		return nil, goerr.New("ward ID is empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	ward, exists := m.wards[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrWardNotFound, "ward not in repository",
			goerr.V("wardID", id))
	}

	wardCopy := *ward
	return &wardCopy, nil
}

// ListWards lists all wards ordered by code
func (m *Memory) ListWards(ctx context.Context) ([]*model.Ward, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	wards := make([]*model.Ward, 0, len(m.wards))
	for _, w := range m.wards {
		wardCopy := *w
		wards = append(wards, &wardCopy)
	}

	sort.Slice(wards, func(i, j int) bool {
		return wards[i].Code < wards[j].Code
	})
	return wards, nil
}

// PutIssue saves an issue to memory
func (m *Memory) PutIssue(ctx context.Context, issue *model.Issue) error {
	if issue == nil {
		return goerr.New("issue is nil")
	}
	if err := issue.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	issueCopy := *issue
	m.issues[issue.ID] = &issueCopy
	return nil
}

// GetIssue retrieves an issue by ID
func (m *Memory) GetIssue(ctx context.Context, id types.IssueID) (*model.Issue, error) {
	if id == "" {
		return nil, goerr.New("issue ID is empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	issue, exists := m.issues[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrIssueNotFound, "issue not in repository",
			goerr.V("issueID", id))
	}

	issueCopy := *issue
	return &issueCopy, nil
}

// ListIssuesByAsset lists all issues of an asset ordered by report date
func (m *Memory) ListIssuesByAsset(ctx context.Context, assetID types.AssetID) ([]*model.Issue, error) {
	if assetID == "" {
		return nil, goerr.New("asset ID is empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var issues []*model.Issue
	for _, i := range m.issues {
		if i.AssetID == assetID {
			issueCopy := *i
			issues = append(issues, &issueCopy)
		}
	}

	sort.Slice(issues, func(i, j int) bool {
		return issues[i].ReportDate.Before(issues[j].ReportDate)
	})
	return issues, nil
}

// PutSnapshot upserts a snapshot keyed by (entity type, entity ID,
// period). A second write for the same slot overwrites.
func (m *Memory) PutSnapshot(ctx context.Context, snapshot *model.Snapshot) error {
	if snapshot == nil {
		return goerr.New("snapshot is nil")
	}
	if err := snapshot.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	snapCopy := *snapshot
	m.snapshots[snapshot.Key()] = &snapCopy
	return nil
}

// GetSnapshot retrieves one snapshot slot
func (m *Memory) GetSnapshot(ctx context.Context, entityType types.EntityType, entityID string, period types.Period) (*model.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap, exists := m.snapshots[model.SnapshotKey(entityType, entityID, period)]
	if !exists {
		return nil, goerr.Wrap(model.ErrSnapshotNotFound, "snapshot not in repository",
			goerr.V("entityType", entityType),
			goerr.V("entityID", entityID),
			goerr.V("period", period))
	}

	snapCopy := *snap
	return &snapCopy, nil
}

// ListSnapshots lists an entity's snapshots from the given period
// onward, ascending by period
func (m *Memory) ListSnapshots(ctx context.Context, entityType types.EntityType, entityID string, from types.Period) ([]*model.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var snaps []*model.Snapshot
	for _, s := range m.snapshots {
		if s.EntityType == entityType && s.EntityID == entityID && s.Period >= from {
			snapCopy := *s
			snaps = append(snaps, &snapCopy)
		}
	}

	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].Period < snaps[j].Period
	})
	return snaps, nil
}

// Close closes the repository (no-op for memory)
func (m *Memory) Close() error {
	return nil
}
