package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"stacia/internal/analysis/models"
	id "stacia/pkg/domain"
	dErrors "stacia/pkg/domain-errors"
	"stacia/pkg/platform/httputil"
	"stacia/pkg/requestcontext"
)

// Service defines the interface for analysis operations.
type Service interface {
	Start(ctx context.Context) (*models.Run, error)
	Get(ctx context.Context, runID id.RunID) (*models.Run, error)
}

// Handler serves the business analysis endpoints.
type Handler struct {
	logger   *slog.Logger
	analysis Service
}

func New(analysis Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:   logger,
		analysis: analysis,
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/business/analysis", func(r chi.Router) {
		r.Post("/", h.HandleStart)
		r.Get("/{id}", h.HandleGet)
	})
}

// HandleStart begins a run and returns it at 0%. Clients poll HandleGet.
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	run, err := h.analysis.Start(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to start analysis", err)
		return
	}
	w.Header().Set("Location", "/business/analysis/"+run.ID.String())
	httputil.WriteJSON(w, http.StatusAccepted, run)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	runID, err := id.ParseRunID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	run, err := h.analysis.Get(ctx, runID)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to load analysis", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, run)
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if de, ok := dErrors.As(err); !ok || de.Code == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	}
	httputil.WriteError(w, err)
}
