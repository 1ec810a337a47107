//go:build integration

package httpserver_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/doomscrollr/crowdbank/internal/domain"
	"github.com/doomscrollr/crowdbank/internal/integrationtest"
	"github.com/doomscrollr/crowdbank/internal/integrationtest/helpers"
	"github.com/doomscrollr/crowdbank/internal/middleware"
	"github.com/doomscrollr/crowdbank/pkg/randompkg"
	"github.com/doomscrollr/crowdbank/pkg/tokenpkg"
	"github.com/doomscrollr/crowdbank/pkg/web"
)

func TestUpdateBioAPI(t *testing.T) {
	server := integrationtest.SetupServer(t)

	user := helpers.SeedUser(t, server.DB)
	account := helpers.SeedAccountWith1000Balance(t, server.DB, user.Username)
	bio := randompkg.String(30)

	tokenMaker, err := tokenpkg.NewPasetoMaker(server.Config.TokenSymmetricKey)
	if err != nil {
		t.Fatalf("tokenpkg.NewPasetoMaker(%v) returned error: %v", server.Config.TokenSymmetricKey, err)
	}

	authType := middleware.AuthTypeBearer
	duration := server.Config.AccessTokenDuration

	testCases := []struct {
		name           string
		requestBody    gin.H
		setupAuth      func(t *testing.T, r *http.Request) error
		wantStatusCode int
		wantError      string
		checkData      func(data any)
	}{
		{
			name:        "OK",
			requestBody: gin.H{"bio": bio},
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, user.Username, duration)
			},
			wantStatusCode: http.StatusOK,
			checkData: func(data any) {
				got, ok := data.(*struct {
					Account domain.Account `json:"account"`
				})
				if !ok {
					t.Errorf(`res.Data=%#v, failed type conversion`, data)

					return
				}

				if got.Account.ID != account.ID {
					t.Errorf("got.Account.ID = %v, want %v", got.Account.ID, account.ID)
				}

				if got.Account.Bio != bio {
					t.Errorf("got.Account.Bio = %q, want %q", got.Account.Bio, bio)
				}
			},
		},
		{
			name:        "NoAuthorization",
			requestBody: gin.H{"bio": bio},
			setupAuth: func(t *testing.T, r *http.Request) error {
				return nil
			},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      middleware.ErrAuthHeaderNotFound.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			body, err := json.Marshal(tc.requestBody)
			if err != nil {
				t.Fatalf("Encoding request body error: %v", err)
			}

			req, err := http.NewRequest(http.MethodPatch, "/accounts", bytes.NewReader(body))
			if err != nil {
				t.Fatalf("Creating request error: %v", err)
			}

			if err = tc.setupAuth(t, req); err != nil {
				t.Fatalf("tc.setupAuth(t, %+v) returned error: %v", req, err)
			}

			w := httptest.NewRecorder()
			server.ServeHTTP(w, req)

			if got := w.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			res := web.Response{
				Data: &struct {
					Account domain.Account `json:"account"`
				}{},
			}
			if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
				t.Errorf("Decoding response body error: %v", err)
			}

			if tc.wantError != "" {
				if res.Error != tc.wantError {
					t.Errorf(`res.Error=%q, want %q`, res.Error, tc.wantError)
				}

				return
			}

			tc.checkData(res.Data)
		})
	}
}
