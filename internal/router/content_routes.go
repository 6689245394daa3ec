package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vacation-rental/internal/handler"
)

// RegisterContent registers reviews, blogs, blog comments and the host
// login history.
func RegisterContent(e *echo.Echo, rv *handler.ReviewHandler, b *handler.BlogHandler, lh *handler.LoginHistoryHandler, g Guards) {
	// ---- Reviews ----
	e.POST("/reviews", rv.Create, g.open()...)
	e.GET("/reviews", rv.List, g.public()...)
	e.GET("/reviews/accommodation/:id", rv.ListByAccommodation, g.public()...)
	e.DELETE("/reviews/:id", rv.Delete, g.admin()...)

	// ---- Blogs ----
	blogs := e.Group("/blogs")
	blogs.POST("", b.Create, g.admin()...)
	blogs.GET("", b.List, g.public()...)
	blogs.GET("/:ref", b.Get, g.public()...)
	blogs.PUT("/:ref", b.Update, g.admin()...)
	blogs.DELETE("/:ref", b.Delete, g.admin()...)

	// ---- Comments ----
	cm := e.Group("/blog-comments")
	cm.POST("", b.CreateComment, g.open()...)
	cm.GET("/blog/:blogId", b.ListComments)
	cm.GET("/blog/:blogId/stats", b.CommentStats)
	cm.GET("/:commentId", b.GetComment)
	cm.PUT("/:commentId", b.UpdateComment, g.admin()...)
	cm.DELETE("/:commentId", b.DeleteComment, g.admin()...)

	// ---- Login history ----
	e.GET("/login-histories", lh.ByHost, g.host()...)
	e.GET("/login-histories/filter", lh.Filter, g.admin()...)
}
