package purchase

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/LivrariumProject/back-end/model"
	psvc "github.com/LivrariumProject/back-end/service/purchase"
)

type Controller struct {
	Svc psvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/purchases
func (ct *Controller) Create(c echo.Context) error {
	var req CreatePurchaseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := ct.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	out, err := ct.Svc.Create(c.Request().Context(), req.UserID, req.BookID, req.PaymentMethod)
	if err != nil {
		switch psvc.Code(err) {
		case psvc.ErrInvalidPayMethod:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid payment method"})
		case psvc.ErrUserNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		case psvc.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		default:
			ct.Log.Error("purchase create", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": out})
}

// PATCH /v1/purchases/:id/confirm
func (ct *Controller) ConfirmPayment(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	out, err := ct.Svc.ConfirmPayment(c.Request().Context(), id)
	if err != nil {
		switch psvc.Code(err) {
		case psvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "purchase not found"})
		case psvc.ErrAlreadyCompleted:
			return c.JSON(http.StatusConflict, echo.Map{"message": "payment already completed"})
		case psvc.ErrAlreadyRefunded, psvc.ErrInvalidState:
			return c.JSON(http.StatusConflict, echo.Map{"message": "invalid payment state"})
		default:
			ct.Log.Error("purchase confirm", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "payment confirmed", "data": out})
}

// PATCH /v1/purchases/:id/fail
func (ct *Controller) FailPayment(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	out, err := ct.Svc.FailPayment(c.Request().Context(), id)
	if err != nil {
		switch psvc.Code(err) {
		case psvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "purchase not found"})
		case psvc.ErrAlreadyCompleted, psvc.ErrInvalidState:
			return c.JSON(http.StatusConflict, echo.Map{"message": "invalid payment state"})
		default:
			ct.Log.Error("purchase fail", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "payment failed", "data": out})
}

// PATCH /v1/purchases/:id/refund
func (ct *Controller) Refund(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	out, err := ct.Svc.Refund(c.Request().Context(), id)
	if err != nil {
		switch psvc.Code(err) {
		case psvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "purchase not found"})
		case psvc.ErrAlreadyRefunded, psvc.ErrInvalidState:
			return c.JSON(http.StatusConflict, echo.Map{"message": "invalid payment state"})
		default:
			ct.Log.Error("purchase refund", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "refunded", "data": out})
}

// DELETE /v1/purchases/:id
func (ct *Controller) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	out, err := ct.Svc.Delete(c.Request().Context(), id)
	if err != nil {
		switch psvc.Code(err) {
		case psvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "purchase not found"})
		default:
			ct.Log.Error("purchase delete", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted", "data": out})
}

// GET /v1/purchases/:id
func (ct *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	out, err := ct.Svc.ByID(c.Request().Context(), id)
	if err != nil {
		switch psvc.Code(err) {
		case psvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "purchase not found"})
		default:
			ct.Log.Error("purchase detail", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out})
}

// GET /v1/purchases
func (ct *Controller) List(c echo.Context) error {
	rows, err := ct.Svc.List(c.Request().Context())
	if err != nil {
		ct.Log.Error("purchase list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(rows), "data": rows})
}

// GET /v1/purchases/user/:userId
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
			ct.Log.Error("purchase by user", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(rows), "data": rows})
}

// GET /v1/purchases/book/:bookId
func (ct *Controller) ByBook(c echo.Context) error {
	bid, err := strconv.ParseInt(c.Param("bookId"), 10, 64)
	if err != nil || bid <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid book id"})
	}
	rows, err := ct.Svc.ByBook(c.Request().Context(), bid)
	if err != nil {
		switch psvc.Code(err) {
		case psvc.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		default:
			ct.Log.Error("purchase by book", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(rows), "data": rows})
}

// GET /v1/purchases/check/:userId/:bookId
func (ct *Controller) CheckUserPurchase(c echo.Context) error {
	uid, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil || uid <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid user id"})
	}
	bid, err := strconv.ParseInt(c.Param("bookId"), 10, 64)
	if err != nil || bid <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid book id"})
	}
	ok, err := ct.Svc.UserHasPurchased(c.Request().Context(), uid, bid)
	if err != nil {
		ct.Log.Error("purchase check", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"purchased": ok})
}

// GET /v1/purchases/search?user_id=&book_id=&payment_status=&start_date=&end_date=
func (ct *Controller) Search(c echo.Context) error {
	var f psvc.Filters
	if s := c.QueryParam("user_id"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid user_id"})
		}
		f.UserID = &v
	}
	if s := c.QueryParam("book_id"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid book_id"})
		}
		f.BookID = &v
	}
	if s := c.QueryParam("payment_status"); s != "" {
		v := model.PaymentStatus(s)
		f.PaymentStatus = &v
	}
	if s := c.QueryParam("start_date"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid start_date"})
		}
		f.StartDate = &t
	}
	if s := c.QueryParam("end_date"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid end_date"})
		}
		f.EndDate = &t
	}

	rows, err := ct.Svc.Search(c.Request().Context(), f)
	if err != nil {
		ct.Log.Error("purchase search", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(rows), "data": rows})
}

// GET /v1/purchases/stats
func (ct *Controller) Stats(c echo.Context) error {
	st, err := ct.Svc.Stats(c.Request().Context())
	if err != nil {
		ct.Log.Error("purchase stats", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": st})
}
