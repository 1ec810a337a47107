package ledgerdelivery

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/doomscrollr/crowdbank/internal/domain"
	"github.com/doomscrollr/crowdbank/internal/events"
	"github.com/doomscrollr/crowdbank/internal/middleware"
	"github.com/doomscrollr/crowdbank/pkg/randompkg"
	"github.com/doomscrollr/crowdbank/pkg/tokenpkg"
)

func randomAccount(owner string) domain.Account {
	return domain.Account{
		ID:        randompkg.IntBetween(1, 100),
		Owner:     owner,
		Balance:   randompkg.MoneyAmountBetween(1000, 10_000),
		CreatedAt: time.Now().Truncate(time.Second).UTC(),
	}
}

func TestCreateTransferAPI(t *testing.T) {
	testUsername1 := randompkg.Owner()
	testUsername2 := randompkg.Owner()

	testSender := randomAccount(testUsername1)
	testReceiver := randomAccount(testUsername2)
	testProject := domain.Project{
		ID:          randompkg.IntBetween(1, 100),
		OwnerID:     testReceiver.ID,
		Title:       randompkg.String(10),
		FundingGoal: "5000",
	}
	amount := "100"

	testTxResult := domain.TransferTxResult{
		Transfer: domain.Transfer{
			ID:         1,
			SenderID:   testSender.ID,
			ReceiverID: testReceiver.ID,
			ProjectID:  testProject.ID,
			Amount:     amount,
		},
		Sender:   testSender,
		Receiver: testReceiver,
		Project:  testProject,
	}

	tokenMaker, err := tokenpkg.NewPasetoMaker(randompkg.String(32))
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledgerService := NewMockService(ctrl)
	publisher := events.NewMockPublisher(ctrl)
	ledgerHandler := NewHandler(ledgerService, publisher)

	gin.SetMode(gin.ReleaseMode)
	server := gin.New()
	url := "/transfers"

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		require.NoError(t, v.RegisterValidation("amount", ValidAmount))
	}

	server.Use(middleware.AuthMiddleware(tokenMaker))
	server.POST(url, ledgerHandler.Create)

	testCases := []struct {
		name          string
		requestBody   gin.H
		setupAuth     func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker)
		buildStubs    func(ledgerService *MockService, publisher *events.MockPublisher)
		checkResponse func(recorder *httptest.ResponseRecorder)
	}{
		{
			name: "NoAuthorization",
			requestBody: gin.H{
				"sender_id":   testSender.ID,
				"receiver_id": testReceiver.ID,
				"project_id":  testProject.ID,
				"amount":      amount,
			},
			setupAuth: func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker) {
			},
			buildStubs: func(ledgerService *MockService, publisher *events.MockPublisher) {
				ledgerService.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusUnauthorized, recorder.Code)
			},
		},
		{
			name: "InvalidBindSenderID",
			requestBody: gin.H{
				"sender_id":   0,
				"receiver_id": testReceiver.ID,
				"project_id":  testProject.ID,
				"amount":      amount,
			},
			setupAuth: func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker) {
				err := middleware.AddAuthorization(request, tokenMaker,
					middleware.AuthTypeBearer, testUsername1, time.Minute)
				require.NoError(t, err)
			},
			buildStubs: func(ledgerService *MockService, publisher *events.MockPublisher) {
				ledgerService.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "InvalidBindAmount",
			requestBody: gin.H{
				"sender_id":   testSender.ID,
				"receiver_id": testReceiver.ID,
				"project_id":  testProject.ID,
				"amount":      "1.001",
			},
			setupAuth: func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker) {
				err := middleware.AddAuthorization(request, tokenMaker,
					middleware.AuthTypeBearer, testUsername1, time.Minute)
				require.NoError(t, err)
			},
			buildStubs: func(ledgerService *MockService, publisher *events.MockPublisher) {
				ledgerService.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "InvalidOwner",
			requestBody: gin.H{
				"sender_id":   testSender.ID,
				"receiver_id": testReceiver.ID,
				"project_id":  testProject.ID,
				"amount":      amount,
			},
			setupAuth: func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker) {
				err := middleware.AddAuthorization(request, tokenMaker,
					middleware.AuthTypeBearer, testUsername2, time.Minute)
				require.NoError(t, err)
			},
			buildStubs: func(ledgerService *MockService, publisher *events.MockPublisher) {
				ledgerService.EXPECT().Transfer(gomock.Any(), gomock.Eq(testUsername2), gomock.Any()).
					Times(1).
					Return(domain.TransferTxResult{}, domain.ErrInvalidOwner)
				publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusUnauthorized, recorder.Code)
			},
		},
		{
			name: "AccountNotFound",
			requestBody: gin.H{
				"sender_id":   testSender.ID,
				"receiver_id": testReceiver.ID,
				"project_id":  testProject.ID,
				"amount":      amount,
			},
			setupAuth: func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker) {
				err := middleware.AddAuthorization(request, tokenMaker,
					middleware.AuthTypeBearer, testUsername1, time.Minute)
				require.NoError(t, err)
			},
			buildStubs: func(ledgerService *MockService, publisher *events.MockPublisher) {
				ledgerService.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.TransferTxResult{}, domain.ErrAccountNotFound)
				publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusNotFound, recorder.Code)
			},
		},
		{
			name: "ProjectNotFound",
			requestBody: gin.H{
				"sender_id":   testSender.ID,
				"receiver_id": testReceiver.ID,
				"project_id":  testProject.ID,
				"amount":      amount,
			},
			setupAuth: func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker) {
				err := middleware.AddAuthorization(request, tokenMaker,
					middleware.AuthTypeBearer, testUsername1, time.Minute)
				require.NoError(t, err)
			},
			buildStubs: func(ledgerService *MockService, publisher *events.MockPublisher) {
				ledgerService.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.TransferTxResult{}, domain.ErrProjectNotFound)
				publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusNotFound, recorder.Code)
			},
		},
		{
			name: "SelfTransfer",
			requestBody: gin.H{
				"sender_id":   testSender.ID,
				"receiver_id": testSender.ID,
				"project_id":  testProject.ID,
				"amount":      amount,
			},
			setupAuth: func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker) {
				err := middleware.AddAuthorization(request, tokenMaker,
					middleware.AuthTypeBearer, testUsername1, time.Minute)
				require.NoError(t, err)
			},
			buildStubs: func(ledgerService *MockService, publisher *events.MockPublisher) {
				ledgerService.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.TransferTxResult{}, domain.ErrSelfTransfer)
				publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "InsufficientBalance",
			requestBody: gin.H{
				"sender_id":   testSender.ID,
				"receiver_id": testReceiver.ID,
				"project_id":  testProject.ID,
				"amount":      "1000000",
			},
			setupAuth: func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker) {
				err := middleware.AddAuthorization(request, tokenMaker,
					middleware.AuthTypeBearer, testUsername1, time.Minute)
				require.NoError(t, err)
			},
			buildStubs: func(ledgerService *MockService, publisher *events.MockPublisher) {
				ledgerService.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.TransferTxResult{}, domain.ErrInsufficientBalance)
				publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "ConcurrencyConflict",
			requestBody: gin.H{
				"sender_id":   testSender.ID,
				"receiver_id": testReceiver.ID,
				"project_id":  testProject.ID,
				"amount":      amount,
			},
			setupAuth: func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker) {
				err := middleware.AddAuthorization(request, tokenMaker,
					middleware.AuthTypeBearer, testUsername1, time.Minute)
				require.NoError(t, err)
			},
			buildStubs: func(ledgerService *MockService, publisher *events.MockPublisher) {
				ledgerService.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.TransferTxResult{}, domain.ErrConcurrencyConflict)
				publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusConflict, recorder.Code)
			},
		},
		{
			name: "OK",
			requestBody: gin.H{
				"sender_id":   testSender.ID,
				"receiver_id": testReceiver.ID,
				"project_id":  testProject.ID,
				"amount":      amount,
			},
			setupAuth: func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker) {
				err := middleware.AddAuthorization(request, tokenMaker,
					middleware.AuthTypeBearer, testUsername1, time.Minute)
				require.NoError(t, err)
			},
			buildStubs: func(ledgerService *MockService, publisher *events.MockPublisher) {
				arg := domain.CreateTransferParams{
					SenderID:   testSender.ID,
					ReceiverID: testReceiver.ID,
					ProjectID:  testProject.ID,
					Amount:     amount,
				}
				ledgerService.EXPECT().Transfer(gomock.Any(), gomock.Eq(testUsername1), gomock.Eq(arg)).
					Times(1).
					Return(testTxResult, nil)
				publisher.EXPECT().Publish(gomock.Any(), gomock.AssignableToTypeOf(events.TransferCompleted{})).
					Times(1).
					Return(nil)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusCreated, recorder.Code)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			tc.buildStubs(ledgerService, publisher)

			recorder := httptest.NewRecorder()

			data, err := json.Marshal(tc.requestBody)
			require.NoError(t, err)

			request, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
			require.NoError(t, err)

			tc.setupAuth(t, request, tokenMaker)
			server.ServeHTTP(recorder, request)
			tc.checkResponse(recorder)
		})
	}
}
