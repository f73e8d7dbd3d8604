package auth_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	auth "github.com/softyse/unilink-auth"
)

func openTestDB(t *testing.T) *bun.DB {
	t.Helper()

	// one connection keeps each test's in-memory database alive and private
	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	assert.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	_, err = db.NewCreateTable().
		Model((*auth.User)(nil)).
		IfNotExists().
		Exec(context.Background())
	assert.NoError(t, err)

	return db
}

func seedRow(t *testing.T, repo auth.Users, email string) *auth.User {
	t.Helper()
	record, err := repo.Create(context.Background(), &auth.User{
		Name:         "Ada",
		Email:        email,
		PasswordHash: "$2a$04$notarealhashnotarealhashnotarea",
	})
	assert.NoError(t, err)
	return record
}

func TestUsersRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("create assigns an id and defaults the role", func(t *testing.T) {
		repo := auth.NewUsersRepository(openTestDB(t))

		record := seedRow(t, repo, "ada@example.com")
		assert.NotZero(t, record.ID)
		assert.Equal(t, auth.RoleUser, record.Role)
		assert.False(t, record.IsVerified)
	})

	t.Run("duplicate email maps to the conflict error", func(t *testing.T) {
		repo := auth.NewUsersRepository(openTestDB(t))
		seedRow(t, repo, "ada@example.com")

		_, err := repo.Create(ctx, &auth.User{
			Name:         "Imposter",
			Email:        "ada@example.com",
			PasswordHash: "$2a$04$notarealhashnotarealhashnotarea",
		})
		assert.ErrorIs(t, err, auth.ErrEmailTaken)
		assert.True(t, auth.IsConflictError(err))
	})

	t.Run("lookups by email and id agree", func(t *testing.T) {
		repo := auth.NewUsersRepository(openTestDB(t))
		created := seedRow(t, repo, "ada@example.com")

		byEmail, err := repo.GetByEmail(ctx, "ada@example.com")
		assert.NoError(t, err)
		byID, err := repo.GetByID(ctx, created.ID)
		assert.NoError(t, err)
		assert.Equal(t, byEmail.ID, byID.ID)
		assert.Equal(t, byEmail.Email, byID.Email)
	})

	t.Run("missing rows map to not found", func(t *testing.T) {
		repo := auth.NewUsersRepository(openTestDB(t))

		_, err := repo.GetByEmail(ctx, "nobody@example.com")
		assert.True(t, goerrors.IsNotFound(err))

		_, err = repo.GetByID(ctx, 999)
		assert.True(t, goerrors.IsNotFound(err))
	})

	t.Run("list returns rows in id order", func(t *testing.T) {
		repo := auth.NewUsersRepository(openTestDB(t))
		seedRow(t, repo, "a@example.com")
		seedRow(t, repo, "b@example.com")

		records, err := repo.List(ctx)
		assert.NoError(t, err)
		assert.Len(t, records, 2)
		assert.Equal(t, "a@example.com", records[0].Email)
		assert.Equal(t, "b@example.com", records[1].Email)
	})

	t.Run("update touches only the named columns", func(t *testing.T) {
		repo := auth.NewUsersRepository(openTestDB(t))
		record := seedRow(t, repo, "ada@example.com")

		record.Name = "Ada L"
		record.Email = "changed@example.com"
		updated, err := repo.Update(ctx, record, "name")
		assert.NoError(t, err)
		assert.Equal(t, "Ada L", updated.Name)

		stored, err := repo.GetByID(ctx, record.ID)
		assert.NoError(t, err)
		assert.Equal(t, "Ada L", stored.Name)
		assert.Equal(t, "ada@example.com", stored.Email)
	})

	t.Run("mark verified flips the flag", func(t *testing.T) {
		repo := auth.NewUsersRepository(openTestDB(t))
		record := seedRow(t, repo, "ada@example.com")

		assert.NoError(t, repo.MarkVerified(ctx, record.ID))

		stored, err := repo.GetByID(ctx, record.ID)
		assert.NoError(t, err)
		assert.True(t, stored.IsVerified)

		assert.ErrorIs(t, repo.MarkVerified(ctx, 999), auth.ErrUserNotFound)
	})

	t.Run("reset token set and clear", func(t *testing.T) {
		repo := auth.NewUsersRepository(openTestDB(t))
		record := seedRow(t, repo, "ada@example.com")
		expiry := time.Now().Add(auth.ResetTokenTTL).UTC().Truncate(time.Second)

		assert.NoError(t, repo.SetResetToken(ctx, record.ID, "123456", expiry))

		stored, err := repo.GetByID(ctx, record.ID)
		assert.NoError(t, err)
		assert.Equal(t, "123456", stored.ResetToken)
		assert.NotNil(t, stored.ResetTokenExpiry)

		assert.NoError(t, repo.ResetPassword(ctx, record.ID, "$2a$04$replacementhashreplacementhash"))

		stored, err = repo.GetByID(ctx, record.ID)
		assert.NoError(t, err)
		assert.Empty(t, stored.ResetToken)
		assert.Nil(t, stored.ResetTokenExpiry)
		assert.Equal(t, "$2a$04$replacementhashreplacementhash", stored.PasswordHash)

		assert.ErrorIs(t, repo.ResetPassword(ctx, 999, "x"), auth.ErrUserNotFound)
	})

	t.Run("delete removes the row once", func(t *testing.T) {
		repo := auth.NewUsersRepository(openTestDB(t))
		record := seedRow(t, repo, "ada@example.com")

		assert.NoError(t, repo.Delete(ctx, record.ID))
		assert.ErrorIs(t, repo.Delete(ctx, record.ID), auth.ErrUserNotFound)

		_, err := repo.GetByID(ctx, record.ID)
		assert.True(t, goerrors.IsNotFound(err))
	})
}

func TestRepositoryManager(t *testing.T) {
	t.Run("validates and exposes the users store", func(t *testing.T) {
		db := openTestDB(t)
		repo := auth.NewRepositoryManager(db)

		assert.NoError(t, repo.Validate())
		assert.NotNil(t, repo.Users())
	})

	t.Run("runs work in a transaction", func(t *testing.T) {
		db := openTestDB(t)
		repo := auth.NewRepositoryManager(db)
		ctx := context.Background()

		err := repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			_, err := repo.Users().CreateTx(ctx, tx, &auth.User{
				Name:         "Ada",
				Email:        "ada@example.com",
				PasswordHash: "$2a$04$notarealhashnotarealhashnotarea",
			})
			return err
		})
		assert.NoError(t, err)

		record, err := repo.Users().GetByEmail(ctx, "ada@example.com")
		assert.NoError(t, err)
		assert.Equal(t, "Ada", record.Name)
	})

	t.Run("honors a canceled context", func(t *testing.T) {
		db := openTestDB(t)
		repo := auth.NewRepositoryManager(db)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
