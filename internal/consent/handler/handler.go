package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"stacia/internal/consent/catalog"
	"stacia/internal/consent/models"
	id "stacia/pkg/domain"
	dErrors "stacia/pkg/domain-errors"
	"stacia/pkg/platform/httputil"
	"stacia/pkg/requestcontext"
)

// Service defines the interface for consent operations.
type Service interface {
	Businesses() []catalog.BusinessOption
	Policies(business id.BusinessCategory) []models.Definition
	StartSession(ctx context.Context, business id.BusinessCategory) (*models.Session, error)
	GetSession(ctx context.Context, sessionID id.SessionID) (*models.Session, error)
	SelectBusiness(ctx context.Context, sessionID id.SessionID, business id.BusinessCategory) (*models.Session, error)
	Toggle(ctx context.Context, sessionID id.SessionID, key string) (*models.ToggleResult, error)
	History(ctx context.Context, sessionID id.SessionID) ([]models.HistoryEntry, error)
	SubmitRequest(ctx context.Context, sessionID id.SessionID, kind models.RequestKind) (models.Acknowledgment, error)
}

// Handler handles the data principal endpoints.
type Handler struct {
	logger  *slog.Logger
	consent Service
}

// New creates a new consent Handler.
func New(consent Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		consent: consent,
	}
}

// Register registers the consent routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/consent", func(r chi.Router) {
		r.Get("/businesses", h.HandleBusinesses)
		r.Get("/policies", h.HandlePolicies)
		r.Post("/sessions", h.HandleStartSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGetSession)
			r.Put("/business", h.HandleSelectBusiness)
			r.Post("/toggle", h.HandleToggle)
			r.Get("/history", h.HandleHistory)
			r.Post("/requests", h.HandleSubmitRequest)
		})
	})
}

func (h *Handler) HandleBusinesses(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"businesses": h.consent.Businesses(),
	})
}

// HandlePolicies resolves the catalog for ?business=. Unknown businesses get
// the base set, unselected gets an empty list.
func (h *Handler) HandlePolicies(w http.ResponseWriter, r *http.Request) {
	business := id.BusinessCategory(r.URL.Query().Get("business"))
	httputil.WriteJSON(w, http.StatusOK, models.PoliciesResponse{
		Business:    business,
		Definitions: h.consent.Policies(business),
	})
}

func (h *Handler) HandleStartSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.StartSessionRequest
	if !h.decode(w, r, &req, true) {
		return
	}
	req.Normalize()
	business, err := id.ParseBusinessCategory(req.Business)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	session, err := h.consent.StartSession(ctx, business)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to start consent session", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, view(session))
}

func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	session, err := h.consent.GetSession(ctx, sessionID)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to load consent session", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view(session))
}

func (h *Handler) HandleSelectBusiness(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	var req models.SelectBusinessRequest
	if !h.decode(w, r, &req, false) {
		return
	}
	req.Normalize()
	business, err := id.ParseBusinessCategory(req.Business)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	session, err := h.consent.SelectBusiness(ctx, sessionID, business)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to select business", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view(session))
}

func (h *Handler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	var req models.ToggleRequest
	if !h.decode(w, r, &req, false) {
		return
	}
	req.Normalize()

	// Empty and unknown keys alike are left to the service's strict-keys setting.
	result, err := h.consent.Toggle(ctx, sessionID, req.Key)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to toggle consent", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ToggleResponse{
		Session:      view(result.Session),
		Notification: result.Notification,
	})
}

func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	entries, err := h.consent.History(ctx, sessionID)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to load consent history", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.HistoryResponse{
		Entries: entries,
		Total:   len(entries),
	})
}

func (h *Handler) HandleSubmitRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	var req models.DataRequest
	if !h.decode(w, r, &req, false) {
		return
	}
	req.Normalize()
	kind, err := models.ParseRequestKind(req.Kind)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	ack, err := h.consent.SubmitRequest(ctx, sessionID, kind)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to submit data request", err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, ack)
}

func view(session *models.Session) models.SessionView {
	return models.NewSessionView(session,
		catalog.Label(session.Business),
		catalog.Resolve(session.Business))
}

func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request) (id.SessionID, bool) {
	sessionID, err := id.ParseSessionID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.SessionID{}, false
	}
	return sessionID, true
}

// decode reads a JSON body into v. With allowEmpty an absent body leaves v zeroed.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || (allowEmpty && errors.Is(err, io.EOF)) {
		return true
	}
	h.logger.WarnContext(r.Context(), "invalid consent request body",
		"request_id", requestcontext.RequestID(r.Context()),
		"error", err.Error(),
	)
	httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
	return false
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
