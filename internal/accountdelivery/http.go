// Package accountdelivery manages delivery layer of accounts.
package accountdelivery

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

// Service provides service layer interface needed by account delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package accountdelivery
type Service interface {
	Get(ctx context.Context, id int32) (domain.Account, error)
	Profile(ctx context.Context, id int32) (domain.Profile, error)
	UpdateBio(ctx context.Context, owner, bio string) (domain.Account, error)
	ToggleFollow(ctx context.Context, followerOwner string, followeeID int32) (bool, error)
}

// Handler facilitates account delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns account handler.
func NewHandler(as Service) *Handler {
	return &Handler{service: as}
}

func accountID(gctx *gin.Context) (int32, error) {
	id, err := strconv.ParseInt(gctx.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}

	return int32(id), nil
}

// Get handles http request to return the account with the given id.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	id, err := accountID(gctx)
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	account, err := h.service.Get(ctx, id)
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
			Account domain.Account `json:"account"`
		}{
			Account: account,
		},
	}

	gctx.JSON(http.StatusOK, res)
}

// Profile handles http request to return the account profile
// including follower counts.
func (h *Handler) Profile(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	id, err := accountID(gctx)
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	profile, err := h.service.Profile(ctx, id)
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
			Profile domain.Profile `json:"profile"`
		}{
			Profile: profile,
		},
	}

	gctx.JSON(http.StatusOK, res)
}

type updateBioRequest struct {
	Bio string `json:"bio" binding:"max=500"`
}

// UpdateBio handles http request to change the bio of the caller's
// own account. An empty bio clears it.
func (h *Handler) UpdateBio(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req updateBioRequest
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

	account, err := h.service.UpdateBio(ctx, authPayload.Username, req.Bio)
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
			Account domain.Account `json:"account"`
		}{
			Account: account,
		},
	}

	gctx.JSON(http.StatusOK, res)
}

type followRequest struct {
	AccountID int32 `json:"account_id" binding:"required,min=1"`
}

// ToggleFollow handles http request to follow or unfollow an account.
func (h *Handler) ToggleFollow(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req followRequest
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

	following, err := h.service.ToggleFollow(ctx, authPayload.Username, req.AccountID)
	if err != nil {
		l.Info().Err(err).Send()

		switch err {
		case domain.ErrAccountNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		case domain.ErrSelfFollow:
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := web.Response{
		Data: struct {
			Following bool `json:"following"`
		}{
			Following: following,
		},
	}

	gctx.JSON(http.StatusOK, res)
}
