package payment

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/LivrariumProject/back-end/model"
	psvc "github.com/LivrariumProject/back-end/service/payment"
)

type Controller struct {
	Svc psvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/payments
func (ct *Controller) Create(c echo.Context) error {
	var req CreatePaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := ct.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	out, err := ct.Svc.Create(c.Request().Context(), req.UserID, req.Amount, req.PaymentMethod, model.PaymentType(req.Type))
	if err != nil {
		switch psvc.Code(err) {
		case psvc.ErrInvalidPayMethod:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid payment method"})
		case psvc.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
		case psvc.ErrUserNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		default:
			ct.Log.Error("payment create", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": out})
}

// PATCH /v1/payments/:id/process
func (ct *Controller) Process(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req ProcessPaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}

	out, err := ct.Svc.Process(c.Request().Context(), id, req.Approve, req.TransactionID)
	if err != nil {
		switch psvc.Code(err) {
		case psvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "payment not found"})
		case psvc.ErrNotPending, psvc.ErrInvalidState:
			return c.JSON(http.StatusConflict, echo.Map{"message": "payment not pending"})
		default:
			ct.Log.Error("payment process", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "processed", "data": out})
}

// PATCH /v1/payments/:id/refund
func (ct *Controller) Refund(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	out, err := ct.Svc.Refund(c.Request().Context(), id)
	if err != nil {
		switch psvc.Code(err) {
		case psvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "payment not found"})
		case psvc.ErrNotCompleted, psvc.ErrInvalidState:
			return c.JSON(http.StatusConflict, echo.Map{"message": "payment not completed"})
		default:
			ct.Log.Error("payment refund", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "refunded", "data": out})
}

// GET /v1/payments/:id
func (ct *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	out, err := ct.Svc.ByID(c.Request().Context(), id)
	if err != nil {
		switch psvc.Code(err) {
		case psvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "payment not found"})
		default:
			ct.Log.Error("payment detail", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out})
}

// GET /v1/payments
func (ct *Controller) List(c echo.Context) error {
	rows, err := ct.Svc.List(c.Request().Context())
	if err != nil {
		ct.Log.Error("payment list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(rows), "data": rows})
}

// GET /v1/payments/user/:userId
func (ct *Controller) ByUser(c echo.Context) error {
	uid, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil || uid <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid user id"})
	}
	rows, err := ct.Svc.ByUser(c.Request().Context(), uid)
	if err != nil {
		switch psvc.Code(err) {
		case psvc.ErrUserNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		default:
			ct.Log.Error("payment by user", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(rows), "data": rows})
}

// GET /v1/payments/search?user_id=&status=&type=&method=
func (ct *Controller) Search(c echo.Context) error {
	var f psvc.Filters
	if s := c.QueryParam("user_id"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid user_id"})
		}
		f.UserID = &v
	}
	if s := c.QueryParam("status"); s != "" {
		v := model.PaymentStatus(s)
		f.Status = &v
	}
	if s := c.QueryParam("type"); s != "" {
		v := model.PaymentType(s)
		f.Type = &v
	}
	if s := c.QueryParam("method"); s != "" {
		v := model.PaymentMethod(s)
		f.Method = &v
	}

	rows, err := ct.Svc.Search(c.Request().Context(), f)
	if err != nil {
		ct.Log.Error("payment search", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(rows), "data": rows})
}

// GET /v1/payments/stats
func (ct *Controller) Stats(c echo.Context) error {
	st, err := ct.Svc.Stats(c.Request().Context())
	if err != nil {
		ct.Log.Error("payment stats", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": st})
}
