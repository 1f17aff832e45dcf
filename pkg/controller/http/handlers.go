package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/civicworks/mdi/pkg/domain/model"
	"github.com/civicworks/mdi/pkg/domain/types"
	"github.com/civicworks/mdi/pkg/usecase"
	"github.com/civicworks/mdi/pkg/utils/apperr"
	"github.com/civicworks/mdi/pkg/utils/async"
	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

const defaultHistoryDays = 30

type handlers struct {
	debt     usecase.Debt
	score    usecase.Score
	sim      usecase.Simulation
	explain  usecase.Explain
	snapshot usecase.Snapshot
}

// handleHealth handles health check requests
func handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "mdi",
	})
}

func (h *handlers) handleAssetDebt(w http.ResponseWriter, r *http.Request) {
	assetID := types.AssetID(chi.URLParam(r, "assetID"))

	debt, err := h.debt.ComputeAssetDebt(r.Context(), assetID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, debt)
}

func (h *handlers) handleIssueDebt(w http.ResponseWriter, r *http.Request) {
	issueID := types.IssueID(chi.URLParam(r, "issueID"))

	debt, err := h.debt.GetIssueDebt(r.Context(), issueID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, debt)
}

func (h *handlers) handleWardScore(w http.ResponseWriter, r *http.Request) {
	wardID := types.WardID(chi.URLParam(r, "wardID"))

	score, err := h.score.ComputeWardScore(r.Context(), wardID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, score)
}

func (h *handlers) handleCityScore(w http.ResponseWriter, r *http.Request) {
	score, err := h.score.ComputeCityScore(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, score)
}

func (h *handlers) handleHistory(w http.ResponseWriter, r *http.Request) {
	entityType := types.EntityType(chi.URLParam(r, "entityType"))
	entityID := chi.URLParam(r, "entityID")

	days := defaultHistoryDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, r, goerr.Wrap(model.ErrInvalidInput, "invalid days parameter",
				goerr.V("days", raw)))
			return
		}
		days = parsed
	}

	snapshots, err := h.score.GetHistory(r.Context(), entityType, entityID, days)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, snapshots)
}

type simulateRequest struct {
	BaseCost    float64 `json:"base_cost"`
	ReportDate  string  `json:"report_date"`
	AssetType   string  `json:"asset_type"`
	Severity    string  `json:"severity"`
	HorizonDays int     `json:"horizon_days"`
}

func (h *handlers) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, goerr.Wrap(model.ErrInvalidInput, "failed to decode simulation request",
			goerr.V("decodeError", err.Error())))
		return
	}

	reportDate, err := time.Parse("2006-01-02", req.ReportDate)
	if err != nil {
		respondError(w, r, goerr.Wrap(model.ErrInvalidInput, "invalid report date",
			goerr.V("reportDate", req.ReportDate)))
		return
	}

	result, err := h.sim.Simulate(r.Context(), model.SimulationInput{
		BaseCost:    req.BaseCost,
		ReportDate:  reportDate,
		AssetType:   types.AssetTypeID(req.AssetType),
		Severity:    types.SeverityID(req.Severity),
		HorizonDays: req.HorizonDays,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, result)
}

func (h *handlers) handleExplain(w http.ResponseWriter, r *http.Request) {
	entityType := types.EntityType(chi.URLParam(r, "entityType"))
	entityID := chi.URLParam(r, "entityID")

	explanation, err := h.explain.Explain(r.Context(), entityType, entityID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, explanation)
}

// handleSnapshotRun triggers a snapshot run in background and returns
// immediately. The run detaches from the request context so a client
// disconnect does not abort it.
func (h *handlers) handleSnapshotRun(w http.ResponseWriter, r *http.Request) {
	period := types.PeriodOf(time.Now())
	if raw := r.URL.Query().Get("period"); raw != "" {
		parsed, err := types.ParsePeriod(raw)
		if err != nil {
			respondError(w, r, goerr.Wrap(model.ErrInvalidInput, "invalid period",
				goerr.V("period", raw)))
			return
		}
		period = parsed
	}

	async.Dispatch(r.Context(), func(ctx context.Context) error {
		return h.snapshot.Run(ctx, period)
	})

	respondJSON(w, r, http.StatusAccepted, map[string]string{
		"status": "accepted",
		"period": period.String(),
	})
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		ctxlog.From(r.Context()).Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		status = http.StatusBadRequest
	case model.IsNotFound(err):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		apperr.Handle(r.Context(), err)
	}

	respondJSON(w, r, status, map[string]string{
		"error": err.Error(),
	})
}
