// Package projectdelivery manages delivery layer of projects.
package projectdelivery

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

// Service provides service layer interface needed by project delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package projectdelivery
type Service interface {
	Create(ctx context.Context, owner, title, description, fundingGoal string) (domain.Project, error)
	Get(ctx context.Context, id int32) (domain.Project, error)
	List(ctx context.Context, ownerID, pageSize, pageID int32) ([]domain.Project, error)
}

// Handler facilitates project delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns project handler.
func NewHandler(ps Service) *Handler {
	return &Handler{service: ps}
}

type createRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"required"`
	FundingGoal string `json:"funding_goal" binding:"required,amount"`
}

// Create handles http request to create a project owned by the caller.
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

	project, err := h.service.Create(ctx, authPayload.Username, req.Title, req.Description, req.FundingGoal)
	if err != nil {
		l.Info().Err(err).Send()

		switch err {
		case domain.ErrAccountNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		case domain.ErrInvalidFundingGoal:
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := web.Response{
		Data: struct {
			Project domain.Project `json:"project"`
		}{
			Project: project,
		},
	}

	gctx.JSON(http.StatusCreated, res)
}

// Get handles http request to return the project with the given id.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	id, err := strconv.ParseInt(gctx.Param("id"), 10, 32)
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	project, err := h.service.Get(ctx, int32(id))
	if err != nil {
		l.Info().Err(err).Send()

		if err == domain.ErrProjectNotFound {
			gctx.JSON(http.StatusNotFound, web.Error(err))

			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := web.Response{
		Data: struct {
			Project domain.Project `json:"project"`
		}{
			Project: project,
		},
	}

	gctx.JSON(http.StatusOK, res)
}

type listRequest struct {
	OwnerID  int32 `form:"owner_id" binding:"min=0"`
	PageID   int32 `form:"page_id" binding:"required,min=1"`
	PageSize int32 `form:"page_size" binding:"required,min=1,max=50"`
}

// List handles http request to list projects newest first.
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

	projects, err := h.service.List(ctx, req.OwnerID, req.PageSize, req.PageID)
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := web.Response{
		Data: struct {
			Projects []domain.Project `json:"projects"`
		}{
			Projects: projects,
		},
	}

	gctx.JSON(http.StatusOK, res)
}
