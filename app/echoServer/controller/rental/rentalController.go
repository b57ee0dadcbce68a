package rental

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/LivrariumProject/back-end/app/echoServer/jwtx"
	"github.com/LivrariumProject/back-end/model"
	rs "github.com/LivrariumProject/back-end/service/rental"
)

type Controller struct {
	Svc rs.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/rentals
func (ct *Controller) Create(c echo.Context) error {
	var req CreateRentalReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := ct.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	out, err := ct.Svc.Create(c.Request().Context(), req.UserID, req.BookID, req.PaymentMethod, req.RentalDays)
	if err != nil {
		switch rs.Code(err) {
		case rs.ErrInvalidPayMethod:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid payment method"})
		case rs.ErrInvalidPeriod:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "rental days must be between 1 and 30"})
		case rs.ErrUserNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		case rs.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		default:
			ct.Log.Error("rental create", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": out})
}

// PATCH /v1/rentals/:id/return
func (ct *Controller) Return(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	out, err := ct.Svc.Return(c.Request().Context(), id)
	if err != nil {
		switch rs.Code(err) {
		case rs.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "rental not found"})
		case rs.ErrAlreadyReturned:
			return c.JSON(http.StatusConflict, echo.Map{"message": "rental already returned"})
		default:
			ct.Log.Error("rental return", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "returned", "data": out})
}

// PATCH /v1/rentals/:id/confirm
func (ct *Controller) ConfirmPayment(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	out, err := ct.Svc.ConfirmPayment(c.Request().Context(), id)
	if err != nil {
		switch rs.Code(err) {
		case rs.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "rental not found"})
		case rs.ErrInvalidState:
			return c.JSON(http.StatusConflict, echo.Map{"message": "payment already completed"})
		default:
			ct.Log.Error("rental confirm", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "payment confirmed", "data": out})
}

// PATCH /v1/rentals/:id/renew
func (ct *Controller) Renew(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req RenewRentalReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := ct.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	out, err := ct.Svc.Renew(c.Request().Context(), id, req.AdditionalDays, req.PaymentMethod)
	if err != nil {
		switch rs.Code(err) {
		case rs.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "rental not found"})
		case rs.ErrInvalidPayMethod:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid payment method"})
		case rs.ErrInvalidPeriod:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "additional days must be between 1 and 30"})
		case rs.ErrNotActive:
			return c.JSON(http.StatusConflict, echo.Map{"message": "rental not active"})
		default:
			ct.Log.Error("rental renew", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "renewed", "data": out})
}

// DELETE /v1/rentals/:id
func (ct *Controller) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	out, err := ct.Svc.Delete(c.Request().Context(), id)
	if err != nil {
		switch rs.Code(err) {
		case rs.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "rental not found"})
		default:
			ct.Log.Error("rental delete", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted", "data": out})
}

// GET /v1/rentals/:id
func (ct *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	out, err := ct.Svc.ByID(c.Request().Context(), id)
	if err != nil {
		switch rs.Code(err) {
		case rs.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "rental not found"})
		default:
			ct.Log.Error("rental detail", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out})
}

// GET /v1/rentals
func (ct *Controller) List(c echo.Context) error {
	rows, err := ct.Svc.List(c.Request().Context())
	if err != nil {
		ct.Log.Error("rental list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(rows), "data": rows})
}

// GET /v1/rentals/active
func (ct *Controller) Active(c echo.Context) error {
	rows, err := ct.Svc.Active(c.Request().Context())
	if err != nil {
		ct.Log.Error("rental active", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(rows), "data": rows})
}

// GET /v1/rentals/overdue
func (ct *Controller) Overdue(c echo.Context) error {
	rows, err := ct.Svc.Overdue(c.Request().Context())
	if err != nil {
		ct.Log.Error("rental overdue", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(rows), "data": rows})
}

// GET /v1/rentals/my
func (ct *Controller) My(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	rows, err := ct.Svc.ByUser(c.Request().Context(), uid)
	if err != nil {
		ct.Log.Error("rental my", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(rows), "data": rows})
}

// GET /v1/rentals/user/:userId
func (ct *Controller) ByUser(c echo.Context) error {
	uid, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil || uid <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid user id"})
	}
	rows, err := ct.Svc.ByUser(c.Request().Context(), uid)
	if err != nil {
		switch rs.Code(err) {
		case rs.ErrUserNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		default:
			ct.Log.Error("rental by user", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(rows), "data": rows})
}

// GET /v1/rentals/user/:userId/active
func (ct *Controller) ActiveByUser(c echo.Context) error {
	uid, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil || uid <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid user id"})
	}
	rows, err := ct.Svc.ActiveByUser(c.Request().Context(), uid)
	if err != nil {
		switch rs.Code(err) {
		case rs.ErrUserNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		default:
			ct.Log.Error("rental active by user", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(rows), "data": rows})
}

// GET /v1/rentals/book/:bookId
func (ct *Controller) ByBook(c echo.Context) error {
	bid, err := strconv.ParseInt(c.Param("bookId"), 10, 64)
	if err != nil || bid <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid book id"})
	}
	rows, err := ct.Svc.ByBook(c.Request().Context(), bid)
	if err != nil {
		switch rs.Code(err) {
		case rs.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		default:
			ct.Log.Error("rental by book", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(rows), "data": rows})
}

// GET /v1/rentals/search?user_id=&book_id=&payment_status=&rental_status=&start_date=&end_date=
func (ct *Controller) Search(c echo.Context) error {
	var f rs.Filters
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
	if s := c.QueryParam("rental_status"); s != "" {
		v := model.RentalStatus(s)
		f.RentalStatus = &v
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
		ct.Log.Error("rental search", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(rows), "data": rows})
}

// GET /v1/rentals/stats
func (ct *Controller) Stats(c echo.Context) error {
	st, err := ct.Svc.Stats(c.Request().Context())
	if err != nil {
		ct.Log.Error("rental stats", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": st})
}
