package directory

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/patients", h.CreatePatient)
	g.POST("/patients/:patientId/visit", h.AppendVisit)
	g.GET("/patients/doctor/:doctorUsername", h.ListByDoctor)
	g.GET("/patients/:patientId", h.GetPatient)
}

func (h *Handler) CreatePatient(c echo.Context) error {
	var in CreatePatientInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.CreatePatient(c.Request().Context(), in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) AppendVisit(c echo.Context) error {
	var body struct {
		Symptoms      string         `json:"symptoms"`
		Prescriptions []Prescription `json:"prescriptions"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.AppendVisit(c.Request().Context(), c.Param("patientId"), body.Symptoms, body.Prescriptions)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListByDoctor(c echo.Context) error {
	patients, err := h.svc.ListByDoctor(c.Request().Context(), c.Param("doctorUsername"))
	if err != nil {
		return httpError(err)
	}
	if patients == nil {
		patients = []*Patient{}
	}
	return c.JSON(http.StatusOK, patients)
}

func (h *Handler) GetPatient(c echo.Context) error {
	p, err := h.svc.GetPatient(c.Request().Context(), c.Param("patientId"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

// httpError maps the domain error taxonomy onto HTTP status codes.
func httpError(err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return echo.NewHTTPError(http.StatusBadRequest, ve.Msg)
	}
	var nfe *NotFoundError
	if errors.As(err, &nfe) {
		return echo.NewHTTPError(http.StatusNotFound, nfe.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
