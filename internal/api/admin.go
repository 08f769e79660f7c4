package api

import (
	"context"
	"net/http"

	"github.com/dennisdiepolder/champkpi/internal/auth"
	"github.com/dennisdiepolder/champkpi/internal/cache"
	"github.com/dennisdiepolder/champkpi/internal/scoring"
	"github.com/dennisdiepolder/champkpi/internal/types"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Refresher reloads every table and announces the new snapshots
type Refresher interface {
	RefreshOnce(ctx context.Context) int
}

// AdminHandler exposes snapshot maintenance and the active scoring setup
type AdminHandler struct {
	cache     *cache.SnapshotCache
	refresher Refresher
	scoring   *scoring.Config
	logger    zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(c *cache.SnapshotCache, refresher Refresher, cfg *scoring.Config, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		cache:     c,
		refresher: refresher,
		scoring:   cfg,
		logger:    logger.With().Str("component", "admin_api").Logger(),
	}
}

// RequireAdmin lets only the admin role through
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.GetUserFromContext(r.Context())
		if !ok || !auth.HasRole(claims, auth.RoleAdmin) {
			writeError(w, http.StatusForbidden, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSupervisorOrAdmin lets supervisors and admins through
func RequireSupervisorOrAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.GetUserFromContext(r.Context())
		if !ok || (claims.Role != auth.RoleAdmin && claims.Role != auth.RoleSupervisor) {
			writeError(w, http.StatusForbidden, "supervisor or admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SnapshotStatus describes the cached copy of one table
type SnapshotStatus struct {
	Table      types.TableName `json:"table"`
	Cached     bool            `json:"cached"`
	AgeSeconds float64         `json:"ageSeconds,omitempty"`
}

// GetSnapshots handles GET /api/admin/snapshots
func (h *AdminHandler) GetSnapshots(w http.ResponseWriter, r *http.Request) {
	statuses := make([]SnapshotStatus, 0, len(types.AllTables))
	for _, table := range types.AllTables {
		s := SnapshotStatus{Table: table}
		if age, ok := h.cache.Age(table); ok {
			s.Cached = true
			s.AgeSeconds = age.Seconds()
		}
		statuses = append(statuses, s)
	}
	writeJSON(w, http.StatusOK, statuses)
}

// DeleteSnapshot handles DELETE /api/admin/snapshots/{table}. The next lookup
// reading the table goes to the source.
func (h *AdminHandler) DeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	table := types.TableName(chi.URLParam(r, "table"))
	if !table.Valid() {
		writeError(w, http.StatusBadRequest, "unknown table")
		return
	}

	h.cache.Invalidate(table)
	h.logger.Info().Str("table", string(table)).Msg("snapshot dropped via admin")

	w.WriteHeader(http.StatusNoContent)
}

// RefreshSnapshots handles POST /api/admin/refresh
func (h *AdminHandler) RefreshSnapshots(w http.ResponseWriter, r *http.Request) {
	refreshed := h.refresher.RefreshOnce(r.Context())

	h.logger.Info().Int("refreshed", refreshed).Msg("snapshot refresh requested via admin")

	status := http.StatusOK
	if refreshed < len(types.AllTables) {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]interface{}{
		"refreshed": refreshed,
		"tables":    len(types.AllTables),
	})
}

// GetScoring handles GET /api/admin/scoring
func (h *AdminHandler) GetScoring(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"scale":       h.scoring.Scale,
		"weights":     h.scoring.Weights,
		"totalWeight": h.scoring.TotalWeight(),
		"balanced":    h.scoring.Balanced(),
	})
}
