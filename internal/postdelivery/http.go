// Package postdelivery manages delivery layer of social posts.
package postdelivery

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/doomscrollr/crowdbank/internal/domain"
	"github.com/doomscrollr/crowdbank/internal/middleware"
	"github.com/doomscrollr/crowdbank/pkg/errorspkg"
	"github.com/doomscrollr/crowdbank/pkg/tokenpkg"
	"github.com/doomscrollr/crowdbank/pkg/web"
)

// Service provides service layer interface needed by post delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package postdelivery
type Service interface {
	Create(ctx context.Context, owner, content string) (domain.Post, error)
	Get(ctx context.Context, id int64) (domain.Post, error)
	List(ctx context.Context, authorID, pageSize, pageID int32) ([]domain.Post, error)
	ToggleLike(ctx context.Context, owner string, postID int64) (bool, error)
	Comment(ctx context.Context, owner string, postID int64, content string) (domain.Comment, error)
	ListComments(ctx context.Context, postID int64, pageSize, pageID int32) ([]domain.Comment, error)
}

// Handler facilitates post delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns post handler.
func NewHandler(ps Service) *Handler {
	return &Handler{service: ps}
}

func postID(gctx *gin.Context) (int64, error) {
	return strconv.ParseInt(gctx.Param("id"), 10, 64)
}

type createRequest struct {
	Content string `json:"content" binding:"required,max=5000"`
}

// Create handles http request to publish a post by the caller's account.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			gctx.JSON(http.StatusBadRequest, web.Response{Error: web.GetErrorMsg(ve)})

			return
		}

		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	post, err := h.service.Create(ctx, authPayload.Username, req.Content)
	if err != nil {
		l.Info().Err(err).Send()

		if err == domain.ErrAccountNotFound {
			gctx.JSON(http.StatusNotFound, web.Error(err))

			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := web.Response{
		Data: struct {
			Post domain.Post `json:"post"`
		}{
			Post: post,
		},
	}

	gctx.JSON(http.StatusCreated, res)
}

// Get handles http request to return a post with its like count.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	id, err := postID(gctx)
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	post, err := h.service.Get(ctx, id)
	if err != nil {
		l.Info().Err(err).Send()

		if err == domain.ErrPostNotFound {
			gctx.JSON(http.StatusNotFound, web.Error(err))

			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := web.Response{
		Data: struct {
			Post domain.Post `json:"post"`
		}{
			Post: post,
		},
	}

	gctx.JSON(http.StatusOK, res)
}

type listRequest struct {
	AuthorID int32 `form:"author_id" binding:"min=0"`
	PageID   int32 `form:"page_id" binding:"required,min=1"`
	PageSize int32 `form:"page_size" binding:"required,min=1,max=50"`
}

// List handles http request to list posts newest first.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			gctx.JSON(http.StatusBadRequest, web.Response{Error: web.GetErrorMsg(ve)})

			return
		}

		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	posts, err := h.service.List(ctx, req.AuthorID, req.PageSize, req.PageID)
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := web.Response{
		Data: struct {
			Posts []domain.Post `json:"posts"`
		}{
			Posts: posts,
		},
	}

	gctx.JSON(http.StatusOK, res)
}

// ToggleLike handles http request to like or unlike a post.
func (h *Handler) ToggleLike(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	id, err := postID(gctx)
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	liked, err := h.service.ToggleLike(ctx, authPayload.Username, id)
	if err != nil {
		l.Info().Err(err).Send()

		switch err {
		case domain.ErrPostNotFound, domain.ErrAccountNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := web.Response{
		Data: struct {
			Liked bool `json:"liked"`
		}{
			Liked: liked,
		},
	}

	gctx.JSON(http.StatusOK, res)
}

type commentRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}

// Comment handles http request to comment on a post.
func (h *Handler) Comment(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	id, err := postID(gctx)
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	var req commentRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			gctx.JSON(http.StatusBadRequest, web.Response{Error: web.GetErrorMsg(ve)})

			return
		}

		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	comment, err := h.service.Comment(ctx, authPayload.Username, id, req.Content)
	if err != nil {
		l.Info().Err(err).Send()

		switch err {
		case domain.ErrPostNotFound, domain.ErrAccountNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := web.Response{
		Data: struct {
			Comment domain.Comment `json:"comment"`
		}{
			Comment: comment,
		},
	}

	gctx.JSON(http.StatusCreated, res)
}

type listCommentsRequest struct {
	PageID   int32 `form:"page_id" binding:"required,min=1"`
	PageSize int32 `form:"page_size" binding:"required,min=1,max=50"`
}

// ListComments handles http request to list comments of a post oldest first.
func (h *Handler) ListComments(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	id, err := postID(gctx)
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	var req listCommentsRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			gctx.JSON(http.StatusBadRequest, web.Response{Error: web.GetErrorMsg(ve)})

			return
		}

		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	comments, err := h.service.ListComments(ctx, id, req.PageSize, req.PageID)
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := web.Response{
		Data: struct {
			Comments []domain.Comment `json:"comments"`
		}{
			Comments: comments,
		},
	}

	gctx.JSON(http.StatusOK, res)
}
