package model

import (
	"sort"

	"github.com/civicworks/mdi/pkg/domain/types"
)

// ScoreCategory is the five-band label attached to an MDI score
type ScoreCategory string

const (
	CategoryExcellent ScoreCategory = "Excellent"
	CategoryGood      ScoreCategory = "Good"
	CategoryFair      ScoreCategory = "Fair"
	CategoryPoor      ScoreCategory = "Poor"
	CategoryCritical  ScoreCategory = "Critical"
)

// String returns the string representation
func (c ScoreCategory) String() string {
	return string(c)
}

// ScoreCategories lists all categories from best to worst
var ScoreCategories = []ScoreCategory{
	CategoryExcellent,
	CategoryGood,
	CategoryFair,
	CategoryPoor,
	CategoryCritical,
}

// CategoryForScore maps a 0-100 MDI score to its category band.
// Band lower bounds are inclusive: 90 Excellent, 70 Good, 50 Fair,
// 30 Poor, below 30 Critical.
func CategoryForScore(score float64) ScoreCategory {
	switch {
	case score >= 90:
		return CategoryExcellent
	case score >= 70:
		return CategoryGood
	case score >= 50:
		return CategoryFair
	case score >= 30:
		return CategoryPoor
	default:
		return CategoryCritical
	}
}

// MDIScore computes the normalized health score from aggregate debt:
// 100 x (1 - debt/base), clamped to [0, 100]. An entity with no base
// cost contributed scores a perfect 100 rather than dividing by zero.
func MDIScore(totalDebt, totalBaseCost float64) float64 {
	if totalBaseCost <= 0 {
		return 100
	}
	score := 100 * (1 - totalDebt/totalBaseCost)
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// AssetDebt is the asset-level aggregate over the asset's open issues
type AssetDebt struct {
	AssetID          types.AssetID
	AssetCode        string
	AssetName        string
	AssetType        types.AssetTypeID
	WardID           types.WardID
	TotalBaseCost    float64
	TotalCurrentCost float64
	TotalDebt        float64
	MDIScore         float64
	Category         ScoreCategory
	ScoreChange7d    *float64 // Delta vs the 7-day-old snapshot, nil without history
	ScoreChange30d   *float64 // Delta vs the 30-day-old snapshot, nil without history
	OpenIssues       int
	OverdueIssues    int
	CriticalIssues   int
	MaxDelayDays     int
	AvgDelayDays     float64
	AvgMultiplier    float64
	IssueDebts       []*IssueDebt
}

// AggregateAssetDebt combines the per-issue debts of one asset into
// the asset-level totals and MDI score
func AggregateAssetDebt(asset *Asset, debts []*IssueDebt) *AssetDebt {
	agg := &AssetDebt{
		AssetID:       asset.ID,
		AssetCode:     asset.Code,
		AssetName:     asset.Name,
		AssetType:     asset.AssetType,
		WardID:        asset.WardID,
		AvgMultiplier: 1,
		IssueDebts:    debts,
	}

	var totalDelay, totalMultiplier float64
	for _, d := range debts {
		agg.TotalBaseCost += d.BaseCost
		agg.TotalCurrentCost += d.CurrentCost
		agg.TotalDebt += d.Debt
		totalMultiplier += d.Multiplier
		if !d.Resolved {
			agg.OpenIssues++
			if d.Severity == types.SeverityCritical {
				agg.CriticalIssues++
			}
		}
		if d.IsOverdue {
			agg.OverdueIssues++
			totalDelay += float64(d.DelayDays)
			if d.DelayDays > agg.MaxDelayDays {
				agg.MaxDelayDays = d.DelayDays
			}
		}
	}

	if agg.OverdueIssues > 0 {
		agg.AvgDelayDays = totalDelay / float64(agg.OverdueIssues)
	}
	if len(debts) > 0 {
		agg.AvgMultiplier = totalMultiplier / float64(len(debts))
	}

	agg.MDIScore = MDIScore(agg.TotalDebt, agg.TotalBaseCost)
	agg.Category = CategoryForScore(agg.MDIScore)
	return agg
}

// WardScore is the ward-level aggregate over the ward's assets
type WardScore struct {
	WardID           types.WardID
	WardCode         string
	WardName         string
	Zone             string
	TotalBaseCost    float64
	TotalCurrentCost float64
	TotalDebt        float64
	MDIScore         float64
	Category         ScoreCategory
	ScoreChange7d    *float64 // Delta vs the 7-day-old snapshot, nil without history
	ScoreChange30d   *float64 // Delta vs the 30-day-old snapshot, nil without history
	Rank             int // Assigned by RankWards; 0 until ranked
	TotalAssets      int
	AssetsWithIssues int
	AssetsOverdue    int
	OpenIssues       int
	OverdueIssues    int
	CriticalIssues   int
	MaxDelayDays     int
	AvgDelayDays     float64
	CategoryCounts   map[ScoreCategory]int // Asset categories within the ward
}

// AggregateWardScore combines asset aggregates into a ward score. The
// score is cost-weighted over ward-level sums, not an average of child
// scores: an asset with a large base cost and large debt dominates the
// ward proportionally to its financial weight.
func AggregateWardScore(ward *Ward, assets []*AssetDebt) *WardScore {
	agg := &WardScore{
		WardID:         ward.ID,
		WardCode:       ward.Code,
		WardName:       ward.Name,
		Zone:           ward.Zone,
		TotalAssets:    len(assets),
		CategoryCounts: make(map[ScoreCategory]int),
	}

	var totalDelay float64
	var overdueForAvg int
	for _, a := range assets {
		agg.TotalBaseCost += a.TotalBaseCost
		agg.TotalCurrentCost += a.TotalCurrentCost
		agg.TotalDebt += a.TotalDebt
		agg.OpenIssues += a.OpenIssues
		agg.OverdueIssues += a.OverdueIssues
		agg.CriticalIssues += a.CriticalIssues
		agg.CategoryCounts[a.Category]++
		if a.OpenIssues > 0 {
			agg.AssetsWithIssues++
		}
		if a.OverdueIssues > 0 {
			agg.AssetsOverdue++
			totalDelay += a.AvgDelayDays * float64(a.OverdueIssues)
			overdueForAvg += a.OverdueIssues
		}
		if a.MaxDelayDays > agg.MaxDelayDays {
			agg.MaxDelayDays = a.MaxDelayDays
		}
	}

	if overdueForAvg > 0 {
		agg.AvgDelayDays = totalDelay / float64(overdueForAvg)
	}

	agg.MDIScore = MDIScore(agg.TotalDebt, agg.TotalBaseCost)
	agg.Category = CategoryForScore(agg.MDIScore)
	return agg
}

// RankWards assigns ranks 1..n by MDI score descending, ties broken by
// ward code ascending so UI ordering is deterministic. The slice is
// sorted in place.
func RankWards(wards []*WardScore) {
	sort.Slice(wards, func(i, j int) bool {
		if wards[i].MDIScore != wards[j].MDIScore {
			return wards[i].MDIScore > wards[j].MDIScore
		}
		return wards[i].WardCode < wards[j].WardCode
	})
	for i, w := range wards {
		w.Rank = i + 1
	}
}

// WardRanking is one entry of the city top/bottom ward listings
type WardRanking struct {
	Rank      int
	WardID    types.WardID
	WardName  string
	MDIScore  float64
	Category  ScoreCategory
	TotalDebt float64
}

// CityScore is the city-level aggregate over all wards plus assets not
// assigned to any ward
type CityScore struct {
	TotalBaseCost    float64
	TotalCurrentCost float64
	TotalDebt        float64
	MDIScore         float64
	Category         ScoreCategory
	ScoreChange7d    *float64 // Delta vs the 7-day-old snapshot, nil without history
	ScoreChange30d   *float64 // Delta vs the 30-day-old snapshot, nil without history
	TotalWards       int
	TotalAssets      int
	OpenIssues       int
	OverdueIssues    int
	MaxDelayDays     int
	CategoryCounts   map[ScoreCategory]int // Ward categories across the city
	TopWards         []WardRanking
	BottomWards      []WardRanking
}

const cityRankingSize = 5

// AggregateCityScore combines ranked ward scores and unassigned asset
// aggregates into the city score and ward category histogram. Wards
// must already be ranked via RankWards.
func AggregateCityScore(wards []*WardScore, unassigned []*AssetDebt) *CityScore {
	agg := &CityScore{
		TotalWards:     len(wards),
		CategoryCounts: make(map[ScoreCategory]int),
	}

	for _, w := range wards {
		agg.TotalBaseCost += w.TotalBaseCost
		agg.TotalCurrentCost += w.TotalCurrentCost
		agg.TotalDebt += w.TotalDebt
		agg.TotalAssets += w.TotalAssets
		agg.OpenIssues += w.OpenIssues
		agg.OverdueIssues += w.OverdueIssues
		agg.CategoryCounts[w.Category]++
		if w.MaxDelayDays > agg.MaxDelayDays {
			agg.MaxDelayDays = w.MaxDelayDays
		}
	}

	for _, a := range unassigned {
		agg.TotalBaseCost += a.TotalBaseCost
		agg.TotalCurrentCost += a.TotalCurrentCost
		agg.TotalDebt += a.TotalDebt
		agg.TotalAssets++
		agg.OpenIssues += a.OpenIssues
		agg.OverdueIssues += a.OverdueIssues
		if a.MaxDelayDays > agg.MaxDelayDays {
			agg.MaxDelayDays = a.MaxDelayDays
		}
	}

	for i, w := range wards {
		if i >= cityRankingSize {
			break
		}
		agg.TopWards = append(agg.TopWards, wardRanking(w))
	}
	for i := len(wards) - 1; i >= 0 && len(agg.BottomWards) < cityRankingSize; i-- {
		agg.BottomWards = append(agg.BottomWards, wardRanking(wards[i]))
	}

	agg.MDIScore = MDIScore(agg.TotalDebt, agg.TotalBaseCost)
	agg.Category = CategoryForScore(agg.MDIScore)
	return agg
}

func wardRanking(w *WardScore) WardRanking {
	return WardRanking{
		Rank:      w.Rank,
		WardID:    w.WardID,
		WardName:  w.WardName,
		MDIScore:  w.MDIScore,
		Category:  w.Category,
		TotalDebt: w.TotalDebt,
	}
}
