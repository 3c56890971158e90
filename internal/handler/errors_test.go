package handler

import (
    "context"
    "errors"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"

    "github.com/iliyamo/gear-reservation/internal/booking"
    "github.com/iliyamo/gear-reservation/internal/model"
)

func TestWriteError(t *testing.T) {
    cases := []struct {
        err  error
        code int
        body string
    }{
        {&booking.ValidationError{Field: "slots", Reason: "select at least one"}, http.StatusBadRequest, "slots"},
        {&booking.ConflictError{Conflicts: []booking.Conflict{{Resource: "V8", Slot: "09:00-10:00", Status: model.StatusPending}}}, http.StatusConflict, `"conflicts"`},
        {&booking.NotFoundError{OrderID: "abc"}, http.StatusNotFound, "abc"},
        {&booking.InvalidTransitionError{OrderID: "abc", From: model.StatusReturned, Action: booking.ActionCancel}, http.StatusConflict, "RETURNED"},
        {&booking.StoreError{Op: "load", Err: errors.New("dial tcp 10.0.0.1:3306")}, http.StatusServiceUnavailable, "try again"},
        {errors.New("boom"), http.StatusInternalServerError, "internal error"},
    }
    e := echo.New()
    for _, tc := range cases {
        rec := httptest.NewRecorder()
        c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
        _ = writeError(c, tc.err)
        assert.Equal(t, tc.code, rec.Code, tc.err.Error())
        assert.Contains(t, rec.Body.String(), tc.body)
        assert.NotContains(t, rec.Body.String(), "10.0.0.1")
    }
}

type pinger struct{ err error }

func (p pinger) PingContext(ctx context.Context) error { return p.err }

func TestHealth(t *testing.T) {
    e := echo.New()
    for _, tc := range []struct {
        p    Pinger
        code int
    }{
        {nil, http.StatusOK},
        {pinger{}, http.StatusOK},
        {pinger{err: errors.New("down")}, http.StatusServiceUnavailable},
    } {
        rec := httptest.NewRecorder()
        c := e.NewContext(httptest.NewRequest(http.MethodGet, "/healthz", nil), rec)
        _ = Health(tc.p)(c)
        assert.Equal(t, tc.code, rec.Code)
    }
}
