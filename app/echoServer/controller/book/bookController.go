package book

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/LivrariumProject/back-end/model"
	bsvc "github.com/LivrariumProject/back-end/service/book"
)

type Controller struct {
	Svc bsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/books
func (ct *Controller) Create(c echo.Context) error {
	var req CreateBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := ct.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	b, err := ct.Svc.Create(c.Request().Context(), &model.Book{
		Title:         req.Title,
		Author:        req.Author,
		ISBN:          req.ISBN,
		PublishedYear: req.PublishedYear,
		Genre:         req.Genre,
		Price:         req.Price,
		RentalPrice:   req.RentalPrice,
		Available:     true,
		Description:   req.Description,
	})
	if err != nil {
		switch bsvc.Code(err) {
		case bsvc.ErrISBNTaken:
			return c.JSON(http.StatusConflict, echo.Map{"message": "isbn already registered"})
		case bsvc.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
		default:
			ct.Log.Error("book create", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": b})
}

// PUT /v1/books/:id
func (ct *Controller) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req UpdateBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := ct.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	b, err := ct.Svc.Update(c.Request().Context(), id, &model.Book{
		Title:         req.Title,
		Author:        req.Author,
		ISBN:          req.ISBN,
		PublishedYear: req.PublishedYear,
		Genre:         req.Genre,
		Price:         req.Price,
		RentalPrice:   req.RentalPrice,
		Available:     req.Available,
		Description:   req.Description,
	})
	if err != nil {
		switch bsvc.Code(err) {
		case bsvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case bsvc.ErrISBNTaken:
			return c.JSON(http.StatusConflict, echo.Map{"message": "isbn already registered"})
		case bsvc.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
		default:
			ct.Log.Error("book update", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": b})
}

// DELETE /v1/books/:id
func (ct *Controller) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	b, err := ct.Svc.Delete(c.Request().Context(), id)
	if err != nil {
		switch bsvc.Code(err) {
		case bsvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		default:
			ct.Log.Error("book delete", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted", "data": b})
}

// GET /v1/books/:id
func (ct *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	b, err := ct.Svc.ByID(c.Request().Context(), id)
	if err != nil {
		switch bsvc.Code(err) {
		case bsvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		default:
			ct.Log.Error("book detail", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": b})
}

// GET /v1/books/isbn/:isbn
func (ct *Controller) ByISBN(c echo.Context) error {
	b, err := ct.Svc.ByISBN(c.Request().Context(), c.Param("isbn"))
	if err != nil {
		switch bsvc.Code(err) {
		case bsvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		default:
			ct.Log.Error("book by isbn", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": b})
}

// GET /v1/books/author/:author
func (ct *Controller) ByAuthor(c echo.Context) error {
	rows, err := ct.Svc.ByAuthor(c.Request().Context(), c.Param("author"))
	if err != nil {
		ct.Log.Error("book by author", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/books/genre/:genre
func (ct *Controller) ByGenre(c echo.Context) error {
	rows, err := ct.Svc.ByGenre(c.Request().Context(), c.Param("genre"))
	if err != nil {
		ct.Log.Error("book by genre", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/books
func (ct *Controller) List(c echo.Context) error {
	rows, err := ct.Svc.List(c.Request().Context())
	if err != nil {
		ct.Log.Error("book list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/books/available
func (ct *Controller) Available(c echo.Context) error {
	rows, err := ct.Svc.Available(c.Request().Context())
	if err != nil {
		ct.Log.Error("book available", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/books/search?title=&author=&genre=&available=
func (ct *Controller) Search(c echo.Context) error {
	var f bsvc.Filters
	if s := c.QueryParam("title"); s != "" {
		f.Title = &s
	}
	if s := c.QueryParam("author"); s != "" {
		f.Author = &s
	}
	if s := c.QueryParam("genre"); s != "" {
		f.Genre = &s
	}
	if s := c.QueryParam("available"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid available"})
		}
		f.Available = &v
	}
	rows, err := ct.Svc.Search(c.Request().Context(), f)
	if err != nil {
		ct.Log.Error("book search", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/books/:id/availability
func (ct *Controller) CheckAvailability(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	ok, err := ct.Svc.CheckAvailability(c.Request().Context(), id)
	if err != nil {
		switch bsvc.Code(err) {
		case bsvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		default:
			ct.Log.Error("book availability", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"available": ok})
}

// PATCH /v1/books/:id/availability
func (ct *Controller) MarkAvailability(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req AvailabilityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := ct.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	b, err := ct.Svc.MarkAvailability(c.Request().Context(), id, *req.Available)
	if err != nil {
		switch bsvc.Code(err) {
		case bsvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		default:
			ct.Log.Error("book mark availability", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": b})
}

// GET /v1/books/stats
func (ct *Controller) Stats(c echo.Context) error {
	st, err := ct.Svc.Stats(c.Request().Context())
	if err != nil {
		ct.Log.Error("book stats", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": st})
}
