package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/sport-hall-booking/internal/auth"
	"github.com/nekogravitycat/sport-hall-booking/internal/booking"
	"github.com/nekogravitycat/sport-hall-booking/internal/pkg/request"
	"github.com/nekogravitycat/sport-hall-booking/internal/pkg/response"
	"github.com/nekogravitycat/sport-hall-booking/internal/resource"
)

const dateFormatMessage = "date must be formatted as YYYY-MM-DD"

type Handler struct {
	service booking.Service
}

func NewHandler(service booking.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}
	date, err := booking.ParseDate(body.Date)
	if err != nil {
		response.BadRequest(c, dateFormatMessage, err)
		return
	}

	b, err := h.service.Create(c.Request.Context(), booking.CreateRequest{
		UserID:     auth.GetUserID(c),
		ResourceID: body.ResourceID,
		SportID:    body.SportID,
		Date:       date,
		TimeSlotID: body.TimeSlotID,
		Purpose:    body.Purpose,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

// Get returns a booking to its owner or to an admin.
func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	if b.UserID != auth.GetUserID(c) && !auth.IsAdmin(c) {
		response.Error(c, booking.ErrPermissionDenied)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// List returns bookings. Non-admins only ever see their own.
func (h *Handler) List(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	userID := req.UserID
	if !auth.IsAdmin(c) {
		userID = auth.GetUserID(c)
	}
	h.list(c, req, userID)
}

// ListMine returns the caller's own bookings.
func (h *Handler) ListMine(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	h.list(c, req, auth.GetUserID(c))
}

func (h *Handler) list(c *gin.Context, req ListBookingsRequest, userID string) {
	date, err := parseOptionalDate(req.Date)
	if err != nil {
		response.BadRequest(c, dateFormatMessage, err)
		return
	}

	bookings, total, err := h.service.List(c.Request.Context(), booking.ListFilter{
		UserID:       userID,
		ResourceID:   req.ResourceID,
		Date:         date,
		Status:       booking.Status(req.Status),
		LocationKind: resource.LocationKind(req.LocationKind),
		Page:         req.Page,
		PageSize:     req.PageSize,
		SortBy:       req.SortBy,
		SortOrder:    strings.ToUpper(req.SortOrder),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

// ListPending returns the admin review queue in admission order.
func (h *Handler) ListPending(c *gin.Context) {
	var req ListPendingRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	date, err := parseOptionalDate(req.Date)
	if err != nil {
		response.BadRequest(c, dateFormatMessage, err)
		return
	}

	seq := h.service.ListPending(c.Request.Context(), booking.PendingFilter{
		ResourceID:   req.ResourceID,
		UserID:       req.UserID,
		Date:         date,
		LocationKind: resource.LocationKind(req.LocationKind),
	})

	resp := PendingResponse{Items: make([]BookingResponse, 0)}
	for b, err := range seq {
		if err != nil {
			response.Error(c, err)
			return
		}
		if len(resp.Items) == req.Limit {
			resp.Truncated = true
			break
		}
		resp.Items = append(resp.Items, NewBookingResponse(b))
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Confirm(c *gin.Context) {
	h.decide(c, h.service.Confirm)
}

func (h *Handler) Reject(c *gin.Context) {
	h.decide(c, h.service.Reject)
}

type decision func(ctx context.Context, id, adminID string) (*booking.Booking, error)

func (h *Handler) decide(c *gin.Context, fn decision) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	b, err := fn(c.Request.Context(), req.ID, auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// Availability reports the state of every time slot of a resource on one date.
func (h *Handler) Availability(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}
	var req AvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	date, err := booking.ParseDate(req.Date)
	if err != nil {
		response.BadRequest(c, dateFormatMessage, err)
		return
	}

	slots, err := h.service.Availability(c.Request.Context(), uri.ID, date)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, AvailabilityResponse{
		ResourceID: uri.ID,
		Date:       date.Format(booking.DateLayout),
		Slots:      slots,
	})
}
