package opsapi

import (
	"encoding/json"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/teamarena/quotakit/pkg/logger"
	"github.com/teamarena/quotakit/pkg/quota"
)

// UsageEntry is one resource row of UsageResponse.
type UsageEntry struct {
	ResourceType    quota.ResourceType `json:"resource_type"`
	CurrentUsage    int64              `json:"current_usage"`
	Limit           int64              `json:"limit"`
	UsagePercentage *float64           `json:"usage_percentage"` // null for a zero limit
	LimitReached    bool               `json:"limit_reached"`
	NearLimit       bool               `json:"near_limit"`
}

// UsageResponse is the body of GET /v1/organizations/{org}/usage.
type UsageResponse struct {
	OrganizationID string         `json:"organization_id"`
	PlanTier       quota.PlanTier `json:"plan_tier"`
	Usages         []UsageEntry   `json:"usages"`
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (a *api) usage(w http.ResponseWriter, r *http.Request) {
	org := chi.URLParam(r, "org")
	ctx := logger.WithOrganization(r.Context(), org)

	p := a.providers.get(org)
	if err := p.SetOrganization(ctx, org); err != nil {
		a.logger.ErrorContext(ctx, "usage load failed", logger.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
		return
	}

	snap := p.Snapshot()
	resp := UsageResponse{
		OrganizationID: snap.OrganizationID,
		PlanTier:       snap.PlanTier,
		Usages:         make([]UsageEntry, 0, len(snap.Usages)),
	}
	for _, u := range snap.Usages {
		e := UsageEntry{
			ResourceType: u.ResourceType,
			CurrentUsage: u.CurrentUsage,
			Limit:        u.Limit,
			LimitReached: u.LimitReached,
			NearLimit:    u.NearLimit,
		}
		if !math.IsInf(u.UsagePercentage, 0) {
			pct := u.UsagePercentage
			e.UsagePercentage = &pct
		}
		resp.Usages = append(resp.Usages, e)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *api) reconcile(w http.ResponseWriter, r *http.Request) {
	org := chi.URLParam(r, "org")
	ctx := logger.WithOrganization(r.Context(), org)

	if !a.reconciler.Reconcile(ctx, org) {
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: "reconcile incomplete; see logs"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
