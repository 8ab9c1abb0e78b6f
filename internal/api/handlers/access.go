package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/pratik-mahalle/docbrief/internal/api/middleware"
	"github.com/pratik-mahalle/docbrief/internal/pkg/logger"
	"github.com/pratik-mahalle/docbrief/internal/pkg/utils"
	"github.com/pratik-mahalle/docbrief/internal/services"
)

// maxAccessDelay caps the ?delay_ms hook
const maxAccessDelay = 10 * time.Second

// AccessHandler exposes the access gate
type AccessHandler struct {
	gate       *services.AccessGate
	allowDelay bool
	logger     *logger.Logger
}

// NewAccessHandler creates a new access handler. allowDelay enables the
// delay_ms query parameter used by demos and tests.
func NewAccessHandler(gate *services.AccessGate, allowDelay bool, log *logger.Logger) *AccessHandler {
	return &AccessHandler{
		gate:       gate,
		allowDelay: allowDelay,
		logger:     log,
	}
}

// Dashboard guards the dashboard page. Browsers are redirected to sign-in or
// pricing; JSON clients get the verdict.
// @Summary Dashboard access
// @Tags Access
// @Produce json
// @Success 200 {object} services.Verdict
// @Success 302 "Redirect to sign-in or pricing"
// @Router /dashboard [get]
func (h *AccessHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	v := h.check(r)

	if v.Kind != services.VerdictAllowed && !wantsJSON(r) {
		http.Redirect(w, r, v.RedirectTo, http.StatusFound)
		return
	}
	utils.WriteJSON(w, http.StatusOK, v)
}

// Access returns the verdict for the current session
func (h *AccessHandler) Access(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, h.check(r))
}

func (h *AccessHandler) check(r *http.Request) services.Verdict {
	userID, _ := middleware.GetUserID(r)

	req := services.AccessRequest{
		UserID:     userID,
		ReturnPath: r.URL.RequestURI(),
	}
	if h.allowDelay {
		if ms, err := strconv.Atoi(r.URL.Query().Get("delay_ms")); err == nil && ms > 0 {
			req.Delay = min(time.Duration(ms)*time.Millisecond, maxAccessDelay)
		}
	}

	return h.gate.Check(r.Context(), req)
}
