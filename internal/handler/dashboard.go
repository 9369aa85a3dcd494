package handler

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/coffeelog/coffee/internal/middleware"
	"github.com/coffeelog/coffee/internal/model"
	"github.com/coffeelog/coffee/internal/report"
	"github.com/coffeelog/coffee/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// DashboardHandler renders the HTML views.
type DashboardHandler struct {
	svc    *service.CoffeeService
	logger *slog.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(svc *service.CoffeeService, logger *slog.Logger) *DashboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardHandler{svc: svc, logger: logger}
}

type indexPage struct {
	Title string
}

type coffeePage struct {
	Title string
	Zone  string
	Days  []report.Day
	Cups  int
	Shots int64
}

type errorPage struct {
	Title   string
	Message string
}

// Index handles GET /.
func (h *DashboardHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "index", indexPage{Title: "coffee"})
}

// Coffee handles GET /c/{api_key}.
// The optional tz query parameter names an IANA zone used for day boundaries.
func (h *DashboardHandler) Coffee(w http.ResponseWriter, r *http.Request) {
	loc := time.UTC
	if tz := r.URL.Query().Get("tz"); tz != "" {
		parsed, err := time.LoadLocation(tz)
		if err != nil {
			h.render(w, http.StatusBadRequest, "error", errorPage{Title: "Bad request", Message: "Unknown time zone."})
			return
		}
		loc = parsed
	}

	items, err := h.svc.ListCoffee(r.Context(), chi.URLParam(r, "api_key"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthenticated):
			h.render(w, http.StatusUnauthorized, "error", errorPage{Title: "Unknown key", Message: "No coffee log belongs to this key."})
		default:
			h.logger.Error("internal_error", "error", err)
			h.render(w, http.StatusInternalServerError, "error", errorPage{Title: "Error", Message: "An internal error occurred."})
		}
		return
	}

	h.render(w, http.StatusOK, "coffee", coffeePage{
		Title: "Your coffee",
		Zone:  loc.String(),
		Days:  report.GroupByDay(items, loc),
		Cups:  len(items),
		Shots: model.TotalShots(items),
	})
}

// render executes into a buffer first so a template failure still yields a clean 500.
func (h *DashboardHandler) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error("render template", "template", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Security-Policy", middleware.HTMLContentSecurityPolicy)
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
