package handler

import (
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/gear-reservation/internal/booking"
    "github.com/iliyamo/gear-reservation/internal/catalog"
    "github.com/iliyamo/gear-reservation/internal/model"
)

// ReservationHandler serves the public booking, board, search, return
// and cancel endpoints.  None of them require authentication.
type ReservationHandler struct {
    Engine *booking.Engine
}

// NewReservationHandler panics on a nil engine.
func NewReservationHandler(e *booking.Engine) *ReservationHandler {
    if e == nil {
        panic("nil engine passed to NewReservationHandler")
    }
    return &ReservationHandler{Engine: e}
}

type createReq struct {
    RequesterName string   `json:"requester_name"`
    Department    string   `json:"department"`
    Resources     []string `json:"resources"`
    Date          string   `json:"date"` // YYYY-MM-DD
    Slots         []string `json:"slots"`
    Purpose       string   `json:"purpose"`
}

type createResp struct {
    OrderID string `json:"order_id"`
    Status  string `json:"status"`
    Rows    int    `json:"rows"`
}

// Catalog handles GET /v1/catalog and lists the bookable resources and the
// daily slot grid.
func (h *ReservationHandler) Catalog(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{
        "resources": catalog.Resources(),
        "slots":     catalog.Slots(time.Now()),
    })
}

// Create handles POST /v1/reservations.  Every resource is booked for
// every slot on the given date under one order id.  A taken slot fails
// the whole request with 409 and the list of conflicts.
func (h *ReservationHandler) Create(c echo.Context) error {
    var req createReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    date, err := model.ParseDate(req.Date)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
    }
    orderID, err := h.Engine.CreateReservation(c.Request().Context(), booking.CreateRequest{
        RequesterName: req.RequesterName,
        Department:    req.Department,
        Resources:     req.Resources,
        Date:          date,
        Slots:         req.Slots,
        Purpose:       req.Purpose,
    })
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, createResp{
        OrderID: orderID,
        Status:  string(model.StatusPending),
        Rows:    distinct(req.Resources) * distinct(req.Slots),
    })
}

// Availability handles GET /v1/availability?resource=&date= and returns
// the slot board of one resource for one day.
func (h *ReservationHandler) Availability(c echo.Context) error {
    resource := strings.TrimSpace(c.QueryParam("resource"))
    if !catalog.IsResource(resource) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown resource"})
    }
    date, err := model.ParseDate(c.QueryParam("date"))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
    }
    board, err := h.Engine.DailyAvailability(c.Request().Context(), resource, date)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "resource": resource,
        "date":     model.DateKey(date),
        "slots":    board,
    })
}

// Search handles GET /v1/reservations/search?q=.  A blank query returns an
// empty list.
func (h *ReservationHandler) Search(c echo.Context) error {
    recs, err := h.Engine.Search(c.Request().Context(), c.QueryParam("q"))
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": recs})
}

// Return handles POST /v1/reservations/:order_id/return.
func (h *ReservationHandler) Return(c echo.Context) error {
    orderID := c.Param("order_id")
    if err := h.Engine.Return(c.Request().Context(), orderID); err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"order_id": orderID, "status": model.StatusReturned})
}

// Cancel handles POST /v1/reservations/:order_id/cancel.
func (h *ReservationHandler) Cancel(c echo.Context) error {
    orderID := c.Param("order_id")
    if err := h.Engine.Cancel(c.Request().Context(), orderID); err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"order_id": orderID, "status": model.StatusCancelled})
}

// distinct counts the non-blank unique values of in, matching the engine's
// de-duplication of selections.
func distinct(in []string) int {
    seen := make(map[string]struct{}, len(in))
    for _, v := range in {
        if v = strings.TrimSpace(v); v != "" {
            seen[v] = struct{}{}
        }
    }
    return len(seen)
}
