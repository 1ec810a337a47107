// Package ledgerdelivery manages delivery layer of funding transfers.
package ledgerdelivery

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/doomscrollr/crowdbank/internal/domain"
	"github.com/doomscrollr/crowdbank/internal/events"
	"github.com/doomscrollr/crowdbank/internal/middleware"
	"github.com/doomscrollr/crowdbank/pkg/errorspkg"
	"github.com/doomscrollr/crowdbank/pkg/moneypkg"
	"github.com/doomscrollr/crowdbank/pkg/tokenpkg"
	"github.com/doomscrollr/crowdbank/pkg/web"
)

// Service provides service layer interface needed by transfer delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package ledgerdelivery
type Service interface {
	Transfer(ctx context.Context, fromUsername string, arg domain.CreateTransferParams) (domain.TransferTxResult, error)
	Get(ctx context.Context, id int64) (domain.Transfer, error)
	List(ctx context.Context, owner string, accountID, pageSize, pageID int32) ([]domain.Transfer, error)
}

// Handler facilitates transfer delivery layer logic.
type Handler struct {
	service   Service
	publisher events.Publisher
}

// NewHandler returns transfer handler.
func NewHandler(ts Service, pub events.Publisher) *Handler {
	return &Handler{
		service:   ts,
		publisher: pub,
	}
}

type createRequest struct {
	SenderID   int32  `json:"sender_id" binding:"required,min=1"`
	ReceiverID int32  `json:"receiver_id" binding:"required,min=1"`
	ProjectID  int32  `json:"project_id" binding:"required,min=1"`
	Amount     string `json:"amount" binding:"required,amount"`
}

// Create handles http request to transfer funds between two accounts
// towards a project.
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

	arg := domain.CreateTransferParams{
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		ProjectID:  req.ProjectID,
		Amount:     req.Amount,
	}

	result, err := h.service.Transfer(ctx, authPayload.Username, arg)
	if err != nil {
		l.Info().Err(err).Send()

		switch err {
		case domain.ErrInvalidOwner:
			gctx.JSON(http.StatusUnauthorized, web.Error(err))
			return
		case
			domain.ErrAccountNotFound,
			domain.ErrProjectNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		case
			domain.ErrInvalidAmount,
			domain.ErrSelfTransfer,
			domain.ErrInsufficientBalance:
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		case domain.ErrConcurrencyConflict:
			gctx.JSON(http.StatusConflict, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	h.publish(ctx, result)

	res := web.Response{
		Data: struct {
			Transfer domain.TransferTxResult `json:"transfer"`
		}{
			Transfer: result,
		},
	}

	gctx.JSON(http.StatusCreated, res)
}

// publish emits the transfer completed event. Delivery is best effort
// and never affects the committed transfer.
func (h *Handler) publish(ctx context.Context, result domain.TransferTxResult) {
	l := zerolog.Ctx(ctx)

	event := events.TransferCompleted{
		TransferID: result.Transfer.ID,
		SenderID:   result.Transfer.SenderID,
		ReceiverID: result.Transfer.ReceiverID,
		ProjectID:  result.Transfer.ProjectID,
		Amount:     result.Transfer.Amount,
		OccurredAt: time.Now().UTC(),
	}

	if err := h.publisher.Publish(ctx, event); err != nil {
		l.Warn().Err(err).Int64("transfer_id", event.TransferID).Msg("publish transfer completed")
	}
}

// Get handles http request to return a single transfer by id.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	id, err := strconv.ParseInt(gctx.Param("id"), 10, 64)
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	transfer, err := h.service.Get(ctx, id)
	if err != nil {
		l.Info().Err(err).Send()

		if err == domain.ErrTransferNotFound {
			gctx.JSON(http.StatusNotFound, web.Error(err))

			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := web.Response{
		Data: struct {
			Transfer domain.Transfer `json:"transfer"`
		}{
			Transfer: transfer,
		},
	}

	gctx.JSON(http.StatusOK, res)
}

type listRequest struct {
	AccountID int32 `form:"account_id" binding:"required,min=1"`
	PageID    int32 `form:"page_id" binding:"required,min=1"`
	PageSize  int32 `form:"page_size" binding:"required,min=1,max=50"`
}

// List handles http request to list transfers of an account.
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

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	transfers, err := h.service.List(ctx, authPayload.Username, req.AccountID, req.PageSize, req.PageID)
	if err != nil {
		l.Info().Err(err).Send()

		switch err {
		case domain.ErrInvalidOwner:
			gctx.JSON(http.StatusUnauthorized, web.Error(err))
			return
		case domain.ErrAccountNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := web.Response{
		Data: struct {
			Transfers []domain.Transfer `json:"transfers"`
		}{
			Transfers: transfers,
		},
	}

	gctx.JSON(http.StatusOK, res)
}

// ValidAmount validates that a value is a positive money amount
// with at most two decimal places.
var ValidAmount validator.Func = func(fieldLevel validator.FieldLevel) bool {
	amount, ok := fieldLevel.Field().Interface().(string)
	if !ok {
		return false
	}

	return moneypkg.IsValid(amount)
}
