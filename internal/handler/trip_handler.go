package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/djakk/covoiturage-libre/internal/dto"
	"github.com/djakk/covoiturage-libre/internal/models"
	"github.com/djakk/covoiturage-libre/internal/service"
	"github.com/djakk/covoiturage-libre/internal/validation"
)

type TripHandler struct {
	svc service.TripService
}

func NewTripHandler(svc service.TripService) *TripHandler {
	return &TripHandler{svc: svc}
}

func (h *TripHandler) RegisterRoutes(e *echo.Echo) {
	trips := e.Group("/api/v1/trips")
	trips.POST("", h.CreateTrip)
	trips.GET("/:token", h.GetTrip)
	trips.GET("/:token/segments", h.GetSegment)
	trips.POST("/:token/confirm", h.ConfirmTrip)
	trips.POST("/:token/duplicate", h.DuplicateTrip)
	trips.POST("/:token/return", h.ReturnTrip)
	trips.GET("/edition/:token", h.GetTripForEdit)
	trips.PUT("/edition/:token", h.UpdateTrip)
	trips.DELETE("/deletion/:token", h.DeleteTrip)
}

func (h *TripHandler) CreateTrip(c echo.Context) error {
	var req dto.TripRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	trip, err := h.svc.Create(c.Request().Context(), req.ToModel())
	if err != nil {
		return h.mapError(err)
	}

	min := h.svc.MinimumPrice(c.Request().Context(), trip)
	return c.JSON(http.StatusCreated, dto.ToPrivateTripResponse(trip, min))
}

func (h *TripHandler) GetTrip(c echo.Context) error {
	trip, err := h.svc.GetByConfirmationToken(c.Request().Context(), c.Param("token"))
	if err != nil {
		return h.mapError(err)
	}

	min := h.svc.MinimumPrice(c.Request().Context(), trip)
	return c.JSON(http.StatusOK, dto.ToTripResponse(trip, min))
}

// GetTripForEdit prefills the edit form; holding the edition token proves
// ownership, so the private view is returned.
func (h *TripHandler) GetTripForEdit(c echo.Context) error {
	trip, err := h.svc.GetByEditionToken(c.Request().Context(), c.Param("token"))
	if err != nil {
		return h.mapError(err)
	}

	min := h.svc.MinimumPrice(c.Request().Context(), trip)
	return c.JSON(http.StatusOK, dto.ToPrivateTripResponse(trip, min))
}

func (h *TripHandler) GetSegment(c echo.Context) error {
	start, err := strconv.Atoi(c.QueryParam("from"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid from position")
	}
	end, err := strconv.Atoi(c.QueryParam("to"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid to position")
	}

	price, seats, err := h.svc.SegmentQuote(c.Request().Context(), c.Param("token"), start, end)
	if err != nil {
		return h.mapError(err)
	}

	return c.JSON(http.StatusOK, dto.SegmentResponse{
		Start: start,
		End:   end,
		Price: price,
		Seats: seats,
	})
}

func (h *TripHandler) ConfirmTrip(c echo.Context) error {
	trip, err := h.svc.Confirm(c.Request().Context(), c.Param("token"))
	if err != nil {
		return h.mapError(err)
	}

	min := h.svc.MinimumPrice(c.Request().Context(), trip)
	return c.JSON(http.StatusOK, dto.ToTripResponse(trip, min))
}

func (h *TripHandler) UpdateTrip(c echo.Context) error {
	var req dto.TripRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	trip, err := h.svc.Update(c.Request().Context(), c.Param("token"), req.ToModel())
	if err != nil {
		return h.mapError(err)
	}

	min := h.svc.MinimumPrice(c.Request().Context(), trip)
	return c.JSON(http.StatusOK, dto.ToPrivateTripResponse(trip, min))
}

func (h *TripHandler) DeleteTrip(c echo.Context) error {
	trip, err := h.svc.SoftDelete(c.Request().Context(), c.Param("token"))
	if err != nil {
		return h.mapError(err)
	}

	min := h.svc.MinimumPrice(c.Request().Context(), trip)
	return c.JSON(http.StatusOK, dto.ToTripResponse(trip, min))
}

// DuplicateTrip returns an unsaved copy to prefill a new trip form; nothing
// is persisted until the copy is submitted through CreateTrip.
func (h *TripHandler) DuplicateTrip(c echo.Context) error {
	trip, err := h.svc.Duplicate(c.Request().Context(), c.Param("token"))
	if err != nil {
		return h.mapError(err)
	}

	return c.JSON(http.StatusOK, dto.ToTripResponse(trip, trip.MinimumPriceOrZero()))
}

// ReturnTrip returns the unsaved rank-reversed return trip.
func (h *TripHandler) ReturnTrip(c echo.Context) error {
	trip, err := h.svc.ReverseAsReturnTrip(c.Request().Context(), c.Param("token"))
	if err != nil {
		return h.mapError(err)
	}

	return c.JSON(http.StatusOK, dto.ToTripResponse(trip, trip.MinimumPriceOrZero()))
}

func (h *TripHandler) mapError(err error) error {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, dto.ValidationErrorResponse{Errors: verrs})
	case errors.Is(err, service.ErrTripNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "trip not found")
	case errors.Is(err, service.ErrTripDeleted):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrPointIndex):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
