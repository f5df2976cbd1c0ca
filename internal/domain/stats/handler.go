package stats

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/docscode/clinic/internal/domain/directory"
	"github.com/docscode/clinic/pkg/pagination"
)

// Handler computes dashboard and directory views over a fresh snapshot of
// the doctor's patients on every request. Nothing is materialized.
type Handler struct {
	svc *directory.Service
	now func() time.Time
}

func NewHandler(svc *directory.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/patients/stats/:doctorUsername", h.GetStats)
	g.GET("/patients/series/:doctorUsername", h.GetVisitSeries)
	g.GET("/patients/latest/:doctorUsername", h.GetLatestPatients)
	g.GET("/patients/directory/:doctorUsername", h.GetDirectory)
}

func (h *Handler) snapshot(c echo.Context) ([]*directory.Patient, error) {
	patients, err := h.svc.ListByDoctor(c.Request().Context(), c.Param("doctorUsername"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return patients, nil
}

func (h *Handler) GetStats(c echo.Context) error {
	patients, err := h.snapshot(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ComputeStats(patients, h.now()))
}

func (h *Handler) GetVisitSeries(c echo.Context) error {
	g, ok := ParseGranularity(c.QueryParam("granularity"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "granularity must be weekly, monthly or yearly")
	}
	patients, err := h.snapshot(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, VisitSeries(patients, g, h.now()))
}

func (h *Handler) GetLatestPatients(c echo.Context) error {
	n, _ := strconv.Atoi(c.QueryParam("n"))
	patients, err := h.snapshot(c)
	if err != nil {
		return err
	}
	latest := LatestPatients(patients, n)
	if latest == nil {
		latest = []*directory.Patient{}
	}
	return c.JSON(http.StatusOK, latest)
}

func (h *Handler) GetDirectory(c echo.Context) error {
	patients, err := h.snapshot(c)
	if err != nil {
		return err
	}

	q := Query{
		Search: c.QueryParam("search"),
		Gender: c.QueryParam("gender"),
		Sort:   parseSortOrder(c.QueryParam("sort")),
	}
	filtered := FilterAndSort(patients, q)

	pg := pagination.FromContext(c)
	total := len(filtered)
	start := pg.Offset
	if start > total {
		start = total
	}
	end := start + pg.Limit
	if end > total {
		end = total
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(filtered[start:end], total, pg.Limit, pg.Offset))
}

func parseSortOrder(s string) SortOrder {
	switch SortOrder(strings.ToLower(s)) {
	case SortMostVisits:
		return SortMostVisits
	case SortFewestVisits:
		return SortFewestVisits
	}
	return SortLatest
}
