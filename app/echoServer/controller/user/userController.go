package user

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	urepo "github.com/LivrariumProject/back-end/repository/user"
	usvc "github.com/LivrariumProject/back-end/service/user"
)

type Controller struct {
	Svc usvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/users
func (ct *Controller) Create(c echo.Context) error {
	var req CreateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := ct.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	u, err := ct.Svc.Create(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch usvc.Code(err) {
		case usvc.ErrEmailTaken:
			return c.JSON(http.StatusConflict, echo.Map{"message": "email already registered"})
		case usvc.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
		default:
			ct.Log.Error("user create", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": u})
}

// PUT /v1/users/:id
func (ct *Controller) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req UpdateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := ct.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	u, err := ct.Svc.Update(c.Request().Context(), id, req.Name, req.Email, req.Password)
	if err != nil {
		switch usvc.Code(err) {
		case usvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		case usvc.ErrEmailTaken:
			return c.JSON(http.StatusConflict, echo.Map{"message": "email already registered"})
		case usvc.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
		default:
			ct.Log.Error("user update", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": u})
}

// DELETE /v1/users/:id
func (ct *Controller) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	u, err := ct.Svc.Delete(c.Request().Context(), id)
	if err != nil {
		switch usvc.Code(err) {
		case usvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		default:
			ct.Log.Error("user delete", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted", "data": u})
}

// GET /v1/users/:id
func (ct *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	u, err := ct.Svc.ByID(c.Request().Context(), id)
	if err != nil {
		switch usvc.Code(err) {
		case usvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		default:
			ct.Log.Error("user detail", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": u})
}

// GET /v1/users/email/:email
func (ct *Controller) ByEmail(c echo.Context) error {
	email := c.Param("email")
	u, err := ct.Svc.ByEmail(c.Request().Context(), email)
	if err != nil {
		switch usvc.Code(err) {
		case usvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		default:
			ct.Log.Error("user by email", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": u})
}

// GET /v1/users/name/:name
func (ct *Controller) ByName(c echo.Context) error {
	rows, err := ct.Svc.ByName(c.Request().Context(), c.Param("name"))
	if err != nil {
		ct.Log.Error("user by name", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/users
func (ct *Controller) List(c echo.Context) error {
	rows, err := ct.Svc.List(c.Request().Context())
	if err != nil {
		ct.Log.Error("user list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/users/search?name=&email=
func (ct *Controller) Search(c echo.Context) error {
	var f urepo.Filters
	if s := c.QueryParam("name"); s != "" {
		f.Name = &s
	}
	if s := c.QueryParam("email"); s != "" {
		f.Email = &s
	}
	rows, err := ct.Svc.Search(c.Request().Context(), f)
	if err != nil {
		ct.Log.Error("user search", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/users/stats
func (ct *Controller) Stats(c echo.Context) error {
	st, err := ct.Svc.Stats(c.Request().Context())
	if err != nil {
		ct.Log.Error("user stats", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": st})
}
