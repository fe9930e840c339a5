package api

import (
	"errors"
	"net/http"

	"github.com/okian/mergington/internal/adapters/repository"
	"github.com/okian/mergington/pkg/logger"
)

// Detail messages returned to clients.
const (
	detailNotFound        = "Activity not found"
	detailAlreadySignedUp = "Student is already signed up for this activity"
	detailNotSignedUp     = "Student is not signed up for this activity"
	detailMissingEmail    = "email query parameter is required"
	detailInternal        = "internal error"
)

// ActivitiesHandler serves the activity directory.
type ActivitiesHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewActivitiesHandler creates a new activities handler.
func NewActivitiesHandler(deps Dependencies) *ActivitiesHandler {
	return &ActivitiesHandler{deps: deps, logger: logger.Named("api")}
}

// HandleList handles GET /activities.
func (h *ActivitiesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.List(r.Context()))
}

// HandleSignup handles POST /activities/{activity}/signup?email=.
func (h *ActivitiesHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	activity, email, ok := rosterParams(w, r)
	if !ok {
		return
	}
	msg, err := h.deps.Enroll(r.Context(), activity, email)
	if err != nil {
		h.writeRosterError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msg})
}

// HandleUnregister handles DELETE /activities/{activity}/unregister?email=.
func (h *ActivitiesHandler) HandleUnregister(w http.ResponseWriter, r *http.Request) {
	activity, email, ok := rosterParams(w, r)
	if !ok {
		return
	}
	msg, err := h.deps.Withdraw(r.Context(), activity, email)
	if err != nil {
		h.writeRosterError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msg})
}

// rosterParams reads the activity path segment and the email query value.
// PathValue is already unescaped, so "Basketball%20Team" arrives with its space.
// Only an absent email is refused; any value that is present, even an empty
// one, is used as is.
func rosterParams(w http.ResponseWriter, r *http.Request) (activity, email string, ok bool) {
	query := r.URL.Query()
	if !query.Has("email") {
		writeDetail(w, http.StatusUnprocessableEntity, detailMissingEmail)
		return "", "", false
	}
	return r.PathValue("activity"), query.Get("email"), true
}

func (h *ActivitiesHandler) writeRosterError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeDetail(w, http.StatusNotFound, detailNotFound)
	case errors.Is(err, repository.ErrAlreadySignedUp):
		writeDetail(w, http.StatusBadRequest, detailAlreadySignedUp)
	case errors.Is(err, repository.ErrNotSignedUp):
		writeDetail(w, http.StatusBadRequest, detailNotSignedUp)
	default:
		h.logger.Error(r.Context(), "roster update failed",
			logger.String("path", r.URL.Path),
			logger.String("request_id", RequestIDFrom(r.Context())),
			logger.Error(err),
		)
		writeDetail(w, http.StatusInternalServerError, detailInternal)
	}
}
