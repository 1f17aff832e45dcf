package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/civicworks/mdi/pkg/domain/interfaces"
	"github.com/civicworks/mdi/pkg/domain/model"
	"github.com/civicworks/mdi/pkg/domain/types"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	// Collection names
	assetsCollection    = "assets"
	wardsCollection     = "wards"
	issuesCollection    = "issues"
	snapshotsCollection = "snapshots"
)

// Firestore implements Repository interface with Firestore
type Firestore struct {
	client *firestore.Client
}

// NewFirestore creates a new Firestore repository
func NewFirestore(ctx context.Context, projectID, databaseID string) (interfaces.Repository, error) {
	logger := ctxlog.From(ctx)

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client")
	}

	// Fail fast on bad project ID or missing permissions; an empty
	// collection is fine.
	_, err = client.Collection(assetsCollection).Limit(1).Documents(ctx).Next()
	if err != nil && err != iterator.Done {
		if status.Code(err) == codes.PermissionDenied || status.Code(err) == codes.Unauthenticated {
			_ = client.Close()
			return nil, goerr.Wrap(err, "failed to connect to firestore project",
				goerr.V("firestore error code", status.Code(err).String()),
			)
		}
		logger.Debug("Firestore connection test returned error (may be empty collection)",
			"error", err,
			"errorCode", status.Code(err).String(),
		)
	}

	logger.Info("Firestore repository initialized successfully",
		"projectID", projectID,
		"databaseID", databaseID,
	)

	return &Firestore{
		client: client,
	}, nil
}

// PutAsset saves an asset to Firestore
func (f *Firestore) PutAsset(ctx context.Context, asset *model.Asset) error {
	if asset == nil {
		return goerr.New("asset is nil")
	}
	if err := asset.Validate(); err != nil {
		return err
	}

	_, err := f.client.Collection(assetsCollection).Doc(asset.ID.String()).Set(ctx, asset)
	if err != nil {
		return goerr.Wrap(err, "failed to save asset to firestore",
			goerr.V("assetID", asset.ID))
	}
	return nil
}

// GetAsset retrieves an asset by ID
func (f *Firestore) GetAsset(ctx context.Context, id types.AssetID) (*model.Asset, error) {
	if id == "" {
		return nil, goerr.New("asset ID is empty")
	}

	doc, err := f.client.Collection(assetsCollection).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrAssetNotFound, "asset not in firestore",
				goerr.V("assetID", id))
		}
		return nil, goerr.Wrap(err, "failed to get asset from firestore",
			goerr.V("assetID", id))
	}

	var asset model.Asset
	if err := doc.DataTo(&asset); err != nil {
		return nil, goerr.Wrap(err, "failed to decode asset")
	}
	return &asset, nil
}

// ListAssets lists all assets ordered by code
func (f *Firestore) ListAssets(ctx context.Context) ([]*model.Asset, error) {
	iter := f.client.Collection(assetsCollection).OrderBy("Code", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var assets []*model.Asset
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate assets")
		}

		var asset model.Asset
		if err := doc.DataTo(&asset); err != nil {
			return nil, goerr.Wrap(err, "failed to decode asset",
				goerr.V("docID", doc.Ref.ID))
		}
		assets = append(assets, &asset)
	}
	return assets, nil
}

// ListAssetsByWard lists the assets assigned to a ward
func (f *Firestore) ListAssetsByWard(ctx context.Context, wardID types.WardID) ([]*model.Asset, error) {
	if wardID == "" {
		return nil, goerr.New("ward ID is empty")
	}

	iter := f.client.Collection(assetsCollection).
		Where("WardID", "==", wardID.String()).
		Documents(ctx)
	defer iter.Stop()

	var assets []*model.Asset
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate ward assets",
				goerr.V("wardID", wardID))
		}

		var asset model.Asset
		if err := doc.DataTo(&asset); err != nil {
			return nil, goerr.Wrap(err, "failed to decode asset",
				goerr.V("docID", doc.Ref.ID))
		}
		assets = append(assets, &asset)
	}
	return assets, nil
}

// PutWard saves a ward to Firestore
func (f *Firestore) PutWard(ctx context.Context, ward *model.Ward) error {
	if ward == nil {
		return goerr.New("ward is nil")
	}
	if err := ward.Validate(); err != nil {
		return err
	}

	_, err := f.client.Collection(wardsCollection).Doc(ward.ID.String()).Set(ctx, ward)
	if err != nil {
		return goerr.Wrap(err, "failed to save ward to firestore",
			goerr.V("wardID", ward.ID))
	}
	return nil
}

// GetWard retrieves a ward by ID
func (f *Firestore) GetWard(ctx context.Context, id types.WardID) (*model.Ward, error) {
	if id == "" {
		return nil, goerr.New("ward ID is empty")
	}

	doc, err := f.client.Collection(wardsCollection).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrWardNotFound, "ward not in firestore",
				goerr.V("wardID", id))
		}
		return nil, goerr.Wrap(err, "failed to get ward from firestore",
			goerr.V("wardID", id))
	}

	var ward model.Ward
	if err := doc.DataTo(&ward); err != nil {
		return nil, goerr.Wrap(err, "failed to decode ward")
	}
	return &ward, nil
}

// ListWards lists all wards ordered by code
func (f *Firestore) ListWards(ctx context.Context) ([]*model.Ward, error) {
	iter := f.client.Collection(wardsCollection).OrderBy("Code", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var wards []*model.Ward
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate wards")
		}

		var ward model.Ward
		if err := doc.DataTo(&ward); err != nil {
			return nil, goerr.Wrap(err, "failed to decode ward",
				goerr.V("docID", doc.Ref.ID))
		}
		wards = append(wards, &ward)
	}
	return wards, nil
}

// PutIssue saves an issue to Firestore
func (f *Firestore) PutIssue(ctx context.Context, issue *model.Issue) error {
	if issue == nil {
		return goerr.New("issue is nil")
	}
	if err := issue.Validate(); err != nil {
		return err
	}

	_, err := f.client.Collection(issuesCollection).Doc(issue.ID.String()).Set(ctx, issue)
	if err != nil {
		return goerr.Wrap(err, "failed to save issue to firestore",
			goerr.V("issueID", issue.ID))
	}
	return nil
}

// GetIssue retrieves an issue by ID
func (f *Firestore) GetIssue(ctx context.Context, id types.IssueID) (*model.Issue, error) {
	if id == "" {
		return nil, goerr.New("issue ID is empty")
	}

	doc, err := f.client.Collection(issuesCollection).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrIssueNotFound, "issue not in firestore",
				goerr.V("issueID", id))
		}
		return nil, goerr.Wrap(err, "failed to get issue from firestore",
			goerr.V("issueID", id))
	}

	var issue model.Issue
	if err := doc.DataTo(&issue); err != nil {
		return nil, goerr.Wrap(err, "failed to decode issue")
	}
	return &issue, nil
}

// ListIssuesByAsset lists all issues of an asset ordered by report date
func (f *Firestore) ListIssuesByAsset(ctx context.Context, assetID types.AssetID) ([]*model.Issue, error) {
	if assetID == "" {
		return nil, goerr.New("asset ID is empty")
	}

	iter := f.client.Collection(issuesCollection).
		Where("AssetID", "==", assetID.String()).
		OrderBy("ReportDate", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var issues []*model.Issue
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate issues",
				goerr.V("assetID", assetID))
		}

		var issue model.Issue
		if err := doc.DataTo(&issue); err != nil {
			return nil, goerr.Wrap(err, "failed to decode issue",
				goerr.V("docID", doc.Ref.ID))
		}
		issues = append(issues, &issue)
	}
	return issues, nil
}

// PutSnapshot upserts a snapshot. The document ID is the
// (entity type, entity ID, period) key, so re-running a period
// overwrites the existing document instead of creating a duplicate.
func (f *Firestore) PutSnapshot(ctx context.Context, snapshot *model.Snapshot) error {
	if snapshot == nil {
		return goerr.New("snapshot is nil")
	}
	if err := snapshot.Validate(); err != nil {
		return err
	}

	_, err := f.client.Collection(snapshotsCollection).Doc(snapshot.Key()).Set(ctx, snapshot)
	if err != nil {
		return goerr.Wrap(err, "failed to save snapshot to firestore",
			goerr.V("key", snapshot.Key()))
	}
	return nil
}

// GetSnapshot retrieves one snapshot slot
func (f *Firestore) GetSnapshot(ctx context.Context, entityType types.EntityType, entityID string, period types.Period) (*model.Snapshot, error) {
	key := model.SnapshotKey(entityType, entityID, period)

	doc, err := f.client.Collection(snapshotsCollection).Doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrSnapshotNotFound, "snapshot not in firestore",
				goerr.V("key", key))
		}
		return nil, goerr.Wrap(err, "failed to get snapshot from firestore",
			goerr.V("key", key))
	}

	var snap model.Snapshot
	if err := doc.DataTo(&snap); err != nil {
		return nil, goerr.Wrap(err, "failed to decode snapshot")
	}
	return &snap, nil
}

// ListSnapshots lists an entity's snapshots from the given period
// onward, ascending by period
func (f *Firestore) ListSnapshots(ctx context.Context, entityType types.EntityType, entityID string, from types.Period) ([]*model.Snapshot, error) {
	iter := f.client.Collection(snapshotsCollection).
		Where("EntityType", "==", entityType.String()).
		Where("EntityID", "==", entityID).
		Where("Period", ">=", from.String()).
		OrderBy("Period", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var snaps []*model.Snapshot
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate snapshots",
				goerr.V("entityType", entityType),
				goerr.V("entityID", entityID))
		}

		var snap model.Snapshot
		if err := doc.DataTo(&snap); err != nil {
			return nil, goerr.Wrap(err, "failed to decode snapshot",
				goerr.V("docID", doc.Ref.ID))
		}
		snaps = append(snaps, &snap)
	}
	return snaps, nil
}

// Close closes the Firestore client
func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
