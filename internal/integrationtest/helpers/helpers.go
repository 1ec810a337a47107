// Package helpers provides data seeding helpers for integration tests.
package helpers

import (
	"context"
	"testing"

	"github.com/doomscrollr/crowdbank/internal/accountrepo"
	"github.com/doomscrollr/crowdbank/internal/domain"
	"github.com/doomscrollr/crowdbank/internal/projectrepo"
	"github.com/doomscrollr/crowdbank/internal/sessionrepo"
	"github.com/doomscrollr/crowdbank/internal/userrepo"
	"github.com/doomscrollr/crowdbank/pkg/dbpkg"
	"github.com/doomscrollr/crowdbank/pkg/passpkg"
	"github.com/doomscrollr/crowdbank/pkg/randompkg"
)

// SeedUser creates a random user without an account and returns it.
func SeedUser(t *testing.T, db dbpkg.SQLInterface) domain.User {
	t.Helper()

	return SeedUserWithPassword(t, db, randompkg.String(10))
}

// SeedUserWithPassword creates a random user with the given password.
func SeedUserWithPassword(t *testing.T, db dbpkg.SQLInterface, password string) domain.User {
	t.Helper()

	hashedPassword, err := passpkg.Hash(password)
	if err != nil {
		t.Fatalf("passpkg.Hash() failed: %v", err)
	}

	var user domain.User

	row := db.QueryRowContext(context.Background(), userrepo.CreateQuery,
		randompkg.Owner(),
		hashedPassword,
		randompkg.Owner(),
		randompkg.Email(),
	)

	err = row.Scan(
		&user.Username,
		&user.HashedPassword,
		&user.FullName,
		&user.Email,
		&user.PasswordChangedAt,
		&user.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seeding user failed: %v", err)
	}

	return user
}

// SeedAccount creates the user's account with the given starting balance.
func SeedAccount(t *testing.T, db dbpkg.SQLInterface, username, balance string) domain.Account {
	t.Helper()

	account, err := accountrepo.NewRepoPGS(db).Create(context.Background(), username, balance, "")
	if err != nil {
		t.Fatalf("seeding account failed: %v", err)
	}

	return account
}

// SeedAccountWith1000Balance creates the user's account holding 1000.
func SeedAccountWith1000Balance(t *testing.T, db dbpkg.SQLInterface, username string) domain.Account {
	t.Helper()

	return SeedAccount(t, db, username, "1000")
}

// SeedSession creates the given session.
func SeedSession(t *testing.T, db dbpkg.SQLInterface, arg domain.CreateSessionParams) domain.Session {
	t.Helper()

	sess, err := sessionrepo.NewRepoPGS(db).Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("seeding session failed: %v", err)
	}

	return sess
}

// SeedProject creates a random project owned by the given account.
func SeedProject(t *testing.T, db dbpkg.SQLInterface, ownerID int32) domain.Project {
	t.Helper()

	arg := domain.CreateProjectParams{
		OwnerID:     ownerID,
		Title:       randompkg.String(20),
		Description: randompkg.String(50),
		FundingGoal: randompkg.MoneyAmountBetween(100, 10000),
	}

	project, err := projectrepo.NewRepoPGS(db).Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("seeding project failed: %v", err)
	}

	return project
}
