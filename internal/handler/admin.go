package handler

import (
    "bytes"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/gear-reservation/internal/booking"
    "github.com/iliyamo/gear-reservation/internal/config"
    "github.com/iliyamo/gear-reservation/internal/export"
    "github.com/iliyamo/gear-reservation/internal/middleware"
    "github.com/iliyamo/gear-reservation/internal/model"
    "github.com/iliyamo/gear-reservation/internal/repository"
    "github.com/iliyamo/gear-reservation/internal/utils"
)

// adminSubject is the JWT subject issued to the single admin account.
const adminSubject = "admin"

// AdminHandler serves the approval queue and the record exports.  All
// methods except Login run behind JWTAuth and RequireRole(ADMIN).
type AdminHandler struct {
    Cfg    config.Config
    Engine *booking.Engine
    Log    *zap.Logger
}

func NewAdminHandler(cfg config.Config, e *booking.Engine, log *zap.Logger) *AdminHandler {
    if e == nil {
        panic("nil engine passed to NewAdminHandler")
    }
    if log == nil {
        log = zap.NewNop()
    }
    return &AdminHandler{Cfg: cfg, Engine: e, Log: log}
}

type loginReq struct {
    Password string `json:"password"`
}

type tokenResp struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}

type rowReq struct {
    Resource string `json:"resource"`
    Slot     string `json:"slot"`
}

// Login handles POST /v1/admin/login.  The password is checked against the
// bcrypt hash from ADMIN_PASSWORD_HASH.
func (h *AdminHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "password required"})
    }
    if !utils.VerifyPassword(h.Cfg.AdminPasswordHash, req.Password) {
        h.Log.Warn("admin login rejected", zap.String("ip", c.RealIP()))
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    }
    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, adminSubject, utils.RoleAdmin, h.Cfg.AccessTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
    }
    return c.JSON(http.StatusOK, tokenResp{Token: access.Token, Expires: access.Exp})
}

// Pending handles GET /v1/admin/pending.
func (h *AdminHandler) Pending(c echo.Context) error {
    recs, err := h.Engine.PendingQueue(c.Request().Context())
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": recs})
}

// Approve handles POST /v1/admin/reservations/:order_id/approve.
func (h *AdminHandler) Approve(c echo.Context) error {
    return h.decide(c, booking.ActionApprove)
}

// Reject handles POST /v1/admin/reservations/:order_id/reject.
func (h *AdminHandler) Reject(c echo.Context) error {
    return h.decide(c, booking.ActionReject)
}

func (h *AdminHandler) decide(c echo.Context, action booking.Action) error {
    var req rowReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if strings.TrimSpace(req.Resource) == "" || strings.TrimSpace(req.Slot) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "resource and slot required"})
    }
    orderID := c.Param("order_id")
    ctx := c.Request().Context()

    var err error
    status := model.StatusApproved
    if action == booking.ActionReject {
        status = model.StatusRejected
        err = h.Engine.Reject(ctx, orderID, req.Resource, req.Slot)
    } else {
        err = h.Engine.Approve(ctx, orderID, req.Resource, req.Slot)
    }
    if err != nil {
        return writeError(c, err)
    }
    h.Log.Info("admin decision",
        zap.String("by", middleware.Subject(c)),
        zap.String("action", string(action)),
        zap.String("order_id", orderID),
    )
    return c.JSON(http.StatusOK, echo.Map{
        "order_id": orderID,
        "resource": req.Resource,
        "slot":     req.Slot,
        "status":   status,
    })
}

// List handles GET /v1/admin/reservations and returns every record.
func (h *AdminHandler) List(c echo.Context) error {
    recs, err := h.Engine.AllRecords(c.Request().Context())
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": recs})
}

// Stats handles GET /v1/admin/stats.
func (h *AdminHandler) Stats(c echo.Context) error {
    stats, err := h.Engine.UsageStatistics(c.Request().Context())
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"usage": stats})
}

// ExportCSV handles GET /v1/admin/export.csv and streams every record in
// the persisted column layout.
func (h *AdminHandler) ExportCSV(c echo.Context) error {
    recs, err := h.Engine.AllRecords(c.Request().Context())
    if err != nil {
        return writeError(c, err)
    }
    var buf bytes.Buffer
    if err := repository.WriteCSV(&buf, recs); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "export failed"})
    }
    setAttachment(c, "csv")
    return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportXLSX handles GET /v1/admin/export.xlsx.
func (h *AdminHandler) ExportXLSX(c echo.Context) error {
    ctx := c.Request().Context()
    recs, err := h.Engine.AllRecords(ctx)
    if err != nil {
        return writeError(c, err)
    }
    data, err := export.XLSX(recs, booking.UsageStatistics(recs))
    if err != nil {
        h.Log.Error("xlsx export failed", zap.Error(err))
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "export failed"})
    }
    setAttachment(c, "xlsx")
    return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func setAttachment(c echo.Context, ext string) {
    name := fmt.Sprintf("reservation_records_%s.%s", time.Now().UTC().Format("20060102"), ext)
    c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
}
