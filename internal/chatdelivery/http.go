// Package chatdelivery manages delivery layer of private chats.
package chatdelivery

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

// Service provides service layer interface needed by chat delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package chatdelivery
type Service interface {
	Send(ctx context.Context, owner string, receiverID int32, text string) (domain.Message, error)
	ListConversations(ctx context.Context, owner string, pageSize, pageID int32) ([]domain.Conversation, error)
	ListMessages(ctx context.Context, owner string, conversationID int32, pageSize, pageID int32) ([]domain.Message, error)
}

// Handler facilitates chat delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns chat handler.
func NewHandler(cs Service) *Handler {
	return &Handler{service: cs}
}

type sendRequest struct {
	ReceiverID int32  `json:"receiver_id" binding:"required,min=1"`
	Text       string `json:"text" binding:"required,max=5000"`
}

// Send handles http request to send a message to another account.
func (h *Handler) Send(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req sendRequest
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

	message, err := h.service.Send(ctx, authPayload.Username, req.ReceiverID, req.Text)
	if err != nil {
		l.Info().Err(err).Send()

		switch err {
		case domain.ErrAccountNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		case domain.ErrSelfConversation:
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := web.Response{
		Data: struct {
			Message domain.Message `json:"message"`
		}{
			Message: message,
		},
	}

	gctx.JSON(http.StatusCreated, res)
}

type listRequest struct {
	PageID   int32 `form:"page_id" binding:"required,min=1"`
	PageSize int32 `form:"page_size" binding:"required,min=1,max=50"`
}

// ListConversations handles http request to list the caller's conversations.
func (h *Handler) ListConversations(gctx *gin.Context) {
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

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	conversations, err := h.service.ListConversations(ctx, authPayload.Username, req.PageSize, req.PageID)
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
			Conversations []domain.Conversation `json:"conversations"`
		}{
			Conversations: conversations,
		},
	}

	gctx.JSON(http.StatusOK, res)
}

// ListMessages handles http request to list messages of a conversation.
func (h *Handler) ListMessages(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	id, err := strconv.ParseInt(gctx.Param("id"), 10, 32)
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

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

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	messages, err := h.service.ListMessages(ctx, authPayload.Username, int32(id), req.PageSize, req.PageID)
	if err != nil {
		l.Info().Err(err).Send()

		switch err {
		case domain.ErrConversationNotFound, domain.ErrAccountNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		case domain.ErrNotParticipant:
			gctx.JSON(http.StatusForbidden, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := web.Response{
		Data: struct {
			Messages []domain.Message `json:"messages"`
		}{
			Messages: messages,
		},
	}

	gctx.JSON(http.StatusOK, res)
}
