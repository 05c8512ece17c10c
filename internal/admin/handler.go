package admin

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"stacia/internal/admin/types"
	dErrors "stacia/pkg/domain-errors"
	"stacia/pkg/platform/httputil"
	adminmw "stacia/pkg/platform/middleware/admin"
	platformstrings "stacia/pkg/platform/strings"
	"stacia/pkg/requestcontext"
)

// AuditService is what the handler needs from Service.
type AuditService interface {
	ListAudit(ctx context.Context, limit int, actions []string) ([]*types.AuditEntry, error)
}

// Handler serves the administrator endpoints.
type Handler struct {
	service    AuditService
	adminToken string
	logger     *slog.Logger
}

func NewHandler(service AuditService, adminToken string, logger *slog.Logger) *Handler {
	return &Handler{
		service:    service,
		adminToken: adminToken,
		logger:     logger,
	}
}

// Register mounts /admin behind the admin token guard.
func (h *Handler) Register(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(adminmw.RequireAdminToken(h.adminToken, h.logger))
		r.Get("/audit", h.HandleListAudit)
	})
}

// HandleListAudit serves GET /admin/audit?limit=N&action=a,b.
func (h *Handler) HandleListAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	limit := 0
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "limit must be an integer"))
			return
		}
		limit = n
	}

	entries, err := h.service.ListAudit(ctx, limit, parseActions(query["action"]))
	if err != nil {
		if de, ok := dErrors.As(err); !ok || de.Code == dErrors.CodeInternal {
			h.logger.ErrorContext(ctx, "failed to list audit events",
				"request_id", requestcontext.RequestID(ctx),
				"error", err.Error(),
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAuditListResponse(entries))
}

// parseActions accepts repeated and comma separated action parameters.
func parseActions(values []string) []string {
	return platformstrings.SplitDedupeLower(values, ",")
}
