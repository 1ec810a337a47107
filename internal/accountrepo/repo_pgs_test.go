//go:build integration

package accountrepo_test

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/doomscrollr/crowdbank/internal/accountrepo"
	"github.com/doomscrollr/crowdbank/internal/domain"
	"github.com/doomscrollr/crowdbank/internal/integrationtest"
	"github.com/doomscrollr/crowdbank/internal/integrationtest/helpers"
	"github.com/doomscrollr/crowdbank/internal/middleware"
	"github.com/doomscrollr/crowdbank/pkg/configpkg"
	"github.com/doomscrollr/crowdbank/pkg/randompkg"
)

var (
	dbDriver string
	dbSource string
	ctx      context.Context
)

func TestMain(m *testing.M) {
	config, err := configpkg.Load("../../configs")
	if err != nil {
		log.Fatal("cannot load config:", err)
	}

	dbDriver = config.DBDriver
	dbSource = config.DBSource

	logger := middleware.CreateLogger(config)
	ctx = logger.WithContext(context.Background())

	os.Exit(m.Run())
}

func TestCreate(t *testing.T) {
	tx := integrationtest.SetupTX(t, dbDriver, dbSource)
	repo := accountrepo.NewRepoPGS(tx)

	user := helpers.SeedUser(t, tx)
	balance := randompkg.MoneyAmountBetween(1_000, 10_000)

	account, err := repo.Create(ctx, user.Username, balance, "")
	require.NoError(t, err)
	require.NotEmpty(t, account)

	require.Equal(t, user.Username, account.Owner)
	require.Equal(t, balance, account.Balance)
	require.NotZero(t, account.ID)
	require.NotZero(t, account.CreatedAt)
}

func TestCreateConstraintViolations(t *testing.T) {
	// Constraint violations abort the enclosing transaction, so the error
	// cases run against a plain connection instead of a shared test tx.
	db := integrationtest.SetupDB(t, dbDriver, dbSource)
	repo := accountrepo.NewRepoPGS(db)

	user := helpers.SeedUser(t, db)
	helpers.SeedAccountWith1000Balance(t, db, user.Username)

	testCases := []struct {
		name    string
		owner   string
		wantErr error
	}{
		{
			name:    "ErrOwnerNotFound",
			owner:   "NotFound",
			wantErr: domain.ErrOwnerNotFound,
		},
		{
			name:    "ErrAccountAlreadyExists",
			owner:   user.Username,
			wantErr: domain.ErrAccountAlreadyExists,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			account, err := repo.Create(ctx, tc.owner, randompkg.MoneyAmountBetween(1_000, 10_000), "")

			require.EqualError(t, err, tc.wantErr.Error())
			require.Empty(t, account)
		})
	}
}

func TestGet(t *testing.T) {
	tx := integrationtest.SetupTX(t, dbDriver, dbSource)
	repo := accountrepo.NewRepoPGS(tx)

	user := helpers.SeedUser(t, tx)
	account := helpers.SeedAccountWith1000Balance(t, tx, user.Username)

	got, err := repo.Get(ctx, account.ID)
	require.NoError(t, err)
	require.NotEmpty(t, got)

	require.Equal(t, account.ID, got.ID)
	require.Equal(t, account.Owner, got.Owner)
	require.Equal(t, account.Balance, got.Balance)
	require.WithinDuration(t, account.CreatedAt, got.CreatedAt, time.Second)

	_, err = repo.Get(ctx, account.ID+1)
	require.EqualError(t, err, domain.ErrAccountNotFound.Error())
}

func TestGetByOwner(t *testing.T) {
	tx := integrationtest.SetupTX(t, dbDriver, dbSource)
	repo := accountrepo.NewRepoPGS(tx)

	user := helpers.SeedUser(t, tx)
	account := helpers.SeedAccountWith1000Balance(t, tx, user.Username)

	got, err := repo.GetByOwner(ctx, user.Username)
	require.NoError(t, err)
	require.Equal(t, account.ID, got.ID)
	require.Equal(t, account.Owner, got.Owner)

	_, err = repo.GetByOwner(ctx, "NotFound")
	require.EqualError(t, err, domain.ErrAccountNotFound.Error())
}

func TestAddBalance(t *testing.T) {
	tx := integrationtest.SetupTX(t, dbDriver, dbSource)
	repo := accountrepo.NewRepoPGS(tx)

	user := helpers.SeedUser(t, tx)
	account := helpers.SeedAccountWith1000Balance(t, tx, user.Username)
	amount := randompkg.MoneyAmountBetween(100, 1_000)

	balanceBefore, err := decimal.NewFromString(account.Balance)
	require.NoError(t, err)
	delta, err := decimal.NewFromString(amount)
	require.NoError(t, err)

	got, err := repo.AddBalance(ctx, amount, account.ID)
	require.NoError(t, err)
	require.NotEmpty(t, got)

	balanceAfter, err := decimal.NewFromString(got.Balance)
	require.NoError(t, err)

	require.Equal(t, account.ID, got.ID)
	require.Equal(t, account.Owner, got.Owner)
	require.True(t, balanceBefore.Add(delta).Equal(balanceAfter))
}

func TestAddBalanceInsufficient(t *testing.T) {
	tx := integrationtest.SetupTX(t, dbDriver, dbSource)
	repo := accountrepo.NewRepoPGS(tx)

	user := helpers.SeedUser(t, tx)
	account := helpers.SeedAccountWith1000Balance(t, tx, user.Username)

	_, err := repo.AddBalance(ctx, "-2000", account.ID)
	require.EqualError(t, err, domain.ErrInsufficientBalance.Error())
}

func TestToggleFollow(t *testing.T) {
	tx := integrationtest.SetupTX(t, dbDriver, dbSource)
	repo := accountrepo.NewRepoPGS(tx)

	user1 := helpers.SeedUser(t, tx)
	follower := helpers.SeedAccountWith1000Balance(t, tx, user1.Username)
	user2 := helpers.SeedUser(t, tx)
	followee := helpers.SeedAccountWith1000Balance(t, tx, user2.Username)

	following, err := repo.ToggleFollow(ctx, follower.ID, followee.ID)
	require.NoError(t, err)
	require.True(t, following)

	followers, _, err := repo.FollowCounts(ctx, followee.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), followers)

	following, err = repo.ToggleFollow(ctx, follower.ID, followee.ID)
	require.NoError(t, err)
	require.False(t, following)

	followers, _, err = repo.FollowCounts(ctx, followee.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), followers)
}

func TestToggleFollowSelf(t *testing.T) {
	tx := integrationtest.SetupTX(t, dbDriver, dbSource)
	repo := accountrepo.NewRepoPGS(tx)

	user := helpers.SeedUser(t, tx)
	account := helpers.SeedAccountWith1000Balance(t, tx, user.Username)

	_, err := repo.ToggleFollow(ctx, account.ID, account.ID)
	require.EqualError(t, err, domain.ErrSelfFollow.Error())
}

func TestUpdateBio(t *testing.T) {
	tx := integrationtest.SetupTX(t, dbDriver, dbSource)
	repo := accountrepo.NewRepoPGS(tx)

	user := helpers.SeedUser(t, tx)
	account := helpers.SeedAccountWith1000Balance(t, tx, user.Username)

	bio := randompkg.String(30)

	got, err := repo.UpdateBio(ctx, user.Username, bio)
	require.NoError(t, err)
	require.Equal(t, account.ID, got.ID)
	require.Equal(t, bio, got.Bio)
	require.Equal(t, account.Balance, got.Balance)

	got, err = repo.UpdateBio(ctx, user.Username, "")
	require.NoError(t, err)
	require.Empty(t, got.Bio)

	_, err = repo.UpdateBio(ctx, "NotFound", bio)
	require.EqualError(t, err, domain.ErrAccountNotFound.Error())
}
