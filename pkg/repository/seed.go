package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/civicworks/mdi/pkg/domain/interfaces"
	"github.com/civicworks/mdi/pkg/domain/model"
	"github.com/civicworks/mdi/pkg/domain/types"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Seed loads a small demo dataset (wards, assets, issues with
// staggered report dates) so the service is usable without real data.
// Intended for the memory repository but works against any backend.
func Seed(ctx context.Context, repo interfaces.Repository, cfg *model.EngineConfig) error {
	logger := ctxlog.From(ctx)
	now := time.Now()

	wardDefs := []struct {
		code, name, zone string
		lat, lng         float64
	}{
		{"W001", "Downtown Central", "Central", 12.9716, 77.5946},
		{"W002", "Riverside East", "East", 12.9816, 77.6046},
		{"W003", "Industrial North", "North", 12.9916, 77.5846},
	}

	var wards []*model.Ward
	for _, d := range wardDefs {
		ward, err := model.NewWard(d.code, d.name)
		if err != nil {
			return goerr.Wrap(err, "failed to build seed ward", goerr.V("code", d.code))
		}
		ward.Zone = d.zone
		ward.Center = model.Location{Latitude: d.lat, Longitude: d.lng}
		if err := repo.PutWard(ctx, ward); err != nil {
			return goerr.Wrap(err, "failed to seed ward", goerr.V("code", d.code))
		}
		wards = append(wards, ward)
	}

	assetDefs := []struct {
		code      string
		assetType types.AssetTypeID
		ward      int // index into wards, -1 for unassigned
		cost      float64
	}{
		{"RD-001", "road", 0, 50000},
		{"RD-002", "road", 1, 75000},
		{"DR-001", "drain", 0, 15000},
		{"SL-001", "streetlight", 1, 8000},
		{"BR-001", "bridge", 2, 200000},
		{"SW-001", "sidewalk", -1, 12000},
	}

	var assets []*model.Asset
	for i, d := range assetDefs {
		at := cfg.FindAssetType(d.assetType)
		if at == nil {
			return goerr.New("seed asset type missing from engine config",
				goerr.V("assetType", d.assetType))
		}
		name := fmt.Sprintf("%s %d", at.Name, i+1)
		asset, err := model.NewAsset(d.code, name, d.assetType, d.cost)
		if err != nil {
			return goerr.Wrap(err, "failed to build seed asset", goerr.V("code", d.code))
		}
		if d.ward >= 0 {
			asset.WardID = wards[d.ward].ID
			asset.Location = wards[d.ward].Center
		}
		if err := repo.PutAsset(ctx, asset); err != nil {
			return goerr.Wrap(err, "failed to seed asset", goerr.V("code", d.code))
		}
		assets = append(assets, asset)
	}

	issueDefs := []struct {
		asset    int
		category string
		severity types.SeverityID
		ageDays  int
		resolved bool
	}{
		{0, "pothole", types.SeverityMedium, 45, false},
		{0, "crack", types.SeverityLow, 10, false},
		{1, "pothole", types.SeverityHigh, 60, false},
		{2, "blockage", types.SeverityCritical, 30, false},
		{3, "outage", types.SeverityMedium, 5, false},
		{4, "wear", types.SeverityLow, 90, true},
		{5, "damage", types.SeverityMedium, 20, false},
	}

	for _, d := range issueDefs {
		reportDate := now.AddDate(0, 0, -d.ageDays)
		issue, err := model.NewIssue(assets[d.asset].ID, d.category, d.severity, reportDate)
		if err != nil {
			return goerr.Wrap(err, "failed to build seed issue",
				goerr.V("assetCode", assets[d.asset].Code))
		}
		if d.resolved {
			if err := issue.Resolve(reportDate.AddDate(0, 0, d.ageDays/2)); err != nil {
				return goerr.Wrap(err, "failed to resolve seed issue")
			}
		}
		if err := repo.PutIssue(ctx, issue); err != nil {
			return goerr.Wrap(err, "failed to seed issue",
				goerr.V("assetCode", assets[d.asset].Code))
		}
	}

	logger.Info("Seeded demo data",
		"wards", len(wards),
		"assets", len(assets),
		"issues", len(issueDefs),
	)
	return nil
}
