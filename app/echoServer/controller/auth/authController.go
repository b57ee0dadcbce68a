package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	authsvc "github.com/LivrariumProject/back-end/service/auth"
)

type Controller struct {
	Svc authsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// Login
// @Summary      Login
// @Description  Login with email + password, returns JWT
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  LoginReq  true  "Login payload"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      401  {object}  map[string]any
// @Failure      500  {object}  map[string]any
// @Router       /v1/auth/login [post]
func (ct *Controller) Login(c echo.Context) error {
	var req LoginReq

	if err := c.Bind(&req); err != nil {
		if ct.Log != nil {
			ct.Log.Warn("bind failed", "path", c.Path(), "err", err)
		}
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}

	u, token, err := ct.Svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		switch authsvc.Code(err) {
		case authsvc.ErrInvalidCreds:
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
		default:
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			if ct.Log != nil {
				ct.Log.Error("login failed", "err", err, "req_id", rid, "path", c.Path())
			}
			return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "login success",
		"token":   token,
		"user":    u,
	})
}

// Logout
// @Summary      Logout
// @Description  Revokes the presented bearer token
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Router       /v1/auth/logout [post]
func (ct *Controller) Logout(c echo.Context) error {
	if err := ct.Svc.Logout(c.Request().Header.Get("Authorization")); err != nil {
		switch authsvc.Code(err) {
		case authsvc.ErrNoToken:
			return echo.NewHTTPError(http.StatusBadRequest, "no token")
		default:
			if ct.Log != nil {
				ct.Log.Error("logout failed", "err", err)
			}
			return echo.NewHTTPError(http.StatusInternalServerError, "logout failed")
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}
