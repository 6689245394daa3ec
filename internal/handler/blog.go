package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vacation-rental/internal/model"
	"github.com/iliyamo/vacation-rental/internal/service"
)

type BlogHandler struct {
	blogs    *service.BlogService
	comments *service.CommentService
}

func NewBlogHandler(blogs *service.BlogService, comments *service.CommentService) *BlogHandler {
	if blogs == nil || comments == nil {
		panic("nil service passed to NewBlogHandler")
	}
	return &BlogHandler{blogs: blogs, comments: comments}
}

func (h *BlogHandler) Create(c echo.Context) error {
	var b model.Blog
	if err := c.Bind(&b); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.blogs.Create(ctx, &b); err != nil {
		return fail(c, err, "create blog")
	}
	return c.JSON(http.StatusCreated, b)
}

// List filters by ?blogType=customer|provider when given.
func (h *BlogHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.blogs.List(ctx, c.QueryParam("blogType"))
	if err != nil {
		return fail(c, err, "list blogs")
	}
	return c.JSON(http.StatusOK, list)
}

// Get resolves :ref as an id first and as a slug second.
func (h *BlogHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	b, err := h.blogs.Get(ctx, c.Param("ref"))
	if err != nil {
		return fail(c, err, "get blog")
	}
	return c.JSON(http.StatusOK, b)
}

func (h *BlogHandler) Update(c echo.Context) error {
	var b model.Blog
	if err := c.Bind(&b); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	out, err := h.blogs.Update(ctx, c.Param("ref"), b)
	if err != nil {
		return fail(c, err, "update blog")
	}
	return c.JSON(http.StatusOK, out)
}

func (h *BlogHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.blogs.Delete(ctx, c.Param("ref")); err != nil {
		return fail(c, err, "delete blog")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "blog deleted"})
}

// ----- comments -----

func (h *BlogHandler) CreateComment(c echo.Context) error {
	var in model.BlogComment
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.comments.Create(ctx, &in); err != nil {
		return fail(c, err, "create comment")
	}
	return c.JSON(http.StatusCreated, in)
}

// ListComments pages approved comments: ?page=1&limit=10&sort=newest.
func (h *BlogHandler) ListComments(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	ctx, cancel := reqCtx(c)
	defer cancel()
	out, err := h.comments.List(ctx, c.Param("blogId"), page, limit, c.QueryParam("sort"))
	if err != nil {
		return fail(c, err, "list comments")
	}
	return c.JSON(http.StatusOK, out)
}

func (h *BlogHandler) CommentStats(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	stats, err := h.comments.Stats(ctx, c.Param("blogId"))
	if err != nil {
		return fail(c, err, "comment stats")
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *BlogHandler) GetComment(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	cm, err := h.comments.Get(ctx, c.Param("commentId"))
	if err != nil {
		return fail(c, err, "get comment")
	}
	return c.JSON(http.StatusOK, cm)
}

func (h *BlogHandler) UpdateComment(c echo.Context) error {
	var in service.CommentUpdate
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	cm, err := h.comments.Update(ctx, c.Param("commentId"), in)
	if err != nil {
		return fail(c, err, "update comment")
	}
	return c.JSON(http.StatusOK, cm)
}

func (h *BlogHandler) DeleteComment(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.comments.Delete(ctx, c.Param("commentId")); err != nil {
		return fail(c, err, "delete comment")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "comment deleted"})
}
