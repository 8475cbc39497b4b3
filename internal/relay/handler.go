package relay

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"application-service/internal/form"
	"application-service/internal/httputil"
	"application-service/internal/metrics"

	"github.com/go-chi/chi/v5"
)

// Handler is the sole network-facing trust boundary. Every rule the intake
// client checks is re-checked here: the client validator can be bypassed
// with disabled scripts or a direct API call.
type Handler struct {
	service       Service
	maxFileBytes  int64
	maxTotalBytes int64
	production    bool
	logger        *slog.Logger
	metrics       *metrics.Metrics
}

func NewHandler(service Service, maxFileBytes, maxTotalBytes int64, production bool, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		service:       service,
		maxFileBytes:  maxFileBytes,
		maxTotalBytes: maxTotalBytes,
		production:    production,
		logger:        logger,
		metrics:       m,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/submit", h.Submit)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	sub, err := parseMultipart(r, h.maxFileBytes)
	if err != nil {
		h.rejectParse(w, r, err)
		return
	}

	// Fail fast on missing required fields, naming them.
	if missing := sub.missingRequired(); len(missing) > 0 {
		h.reject(w, r, http.StatusBadRequest, "Missing required fields: "+strings.Join(missing, ", "))
		return
	}

	if len(sub.Attachments) == 0 {
		h.reject(w, r, http.StatusBadRequest,
			"At least one file must be attached. Please upload your payment receipt and school results.")
		return
	}

	// NRC format is checked against the raw value, before sanitization, so
	// a legitimately formatted value is never rejected after escaping.
	if !form.ValidNRC(sub.Fields["nrc"]) {
		h.reject(w, r, http.StatusBadRequest, "Invalid NRC format. Expected 123456/78/9 or 123456789")
		return
	}

	app := sub.toApplication()
	form.SanitizeApplication(app)

	if app.Email != "" && !form.ValidEmail(app.Email) {
		h.reject(w, r, http.StatusBadRequest, "Invalid email address")
		return
	}

	if phone := strings.TrimSpace(sub.Fields["phone"]); phone != "" && !form.ValidPhoneWire(phone) {
		h.reject(w, r, http.StatusBadRequest, "Invalid phone number")
		return
	}

	if err := form.CheckAttachments(sub.Attachments, h.maxTotalBytes); err != nil {
		h.reject(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Process(r.Context(), app, sub.Attachments)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *Handler) rejectParse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, form.ErrFileTooLarge):
		h.reject(w, r, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, errNotMultipart):
		h.reject(w, r, http.StatusBadRequest, err.Error())
	default:
		h.reject(w, r, http.StatusBadRequest, "Malformed request body")
	}
}

// reject answers a client-input error. Submitted content is never logged,
// only the reason, so rejected personal data cannot leak into logs.
func (h *Handler) reject(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.logger.InfoContext(r.Context(), "submission rejected", "status", status, "reason", message)
	h.metrics.RecordSubmissionRejected(r.Context())
	httputil.RespondWithError(w, status, message)
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrServerConfig) {
		httputil.RespondWithError(w, http.StatusInternalServerError, "Server configuration error")
		return
	}
	h.logger.ErrorContext(r.Context(), "submit failed", "error", err)
	if h.production {
		httputil.RespondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}
	httputil.RespondWithError(w, http.StatusInternalServerError, err.Error())
}
