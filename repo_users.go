package auth

import (
	"context"
	"database/sql"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Users is the persistence collaborator the auth core reads and writes
// user records through. Each call is a single-row atomic operation; the
// unique email constraint is the only concurrency control signups rely on.
type Users interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	List(ctx context.Context) ([]*User, error)

	Create(ctx context.Context, record *User) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *User) (*User, error)
	Update(ctx context.Context, record *User, columns ...string) (*User, error)
	Delete(ctx context.Context, id int64) error

	// field-projected mutations used by the auth flows
	MarkVerified(ctx context.Context, id int64) error
	SetResetToken(ctx context.Context, id int64, token string, expiry time.Time) error
	ResetPassword(ctx context.Context, id int64, passwordHash string) error
}

type users struct {
	db bun.IDB
}

var _ Users = (*users)(nil)

// NewUsersRepository returns a bun-backed Users store
func NewUsersRepository(db bun.IDB) Users {
	return &users{db: db}
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, mapSelectError(err, map[string]any{"email": email})
	}
	return record, nil
}

func (a *users) GetByID(ctx context.Context, id int64) (*User, error) {
	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, mapSelectError(err, map[string]any{"id": id})
	}
	return record, nil
}

func (a *users) List(ctx context.Context) ([]*User, error) {
	var records []*User
	err := a.db.NewSelect().
		Model(&records).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list users")
	}
	return records, nil
}

func (a *users) Create(ctx context.Context, record *User) (*User, error) {
	return a.CreateTx(ctx, a.db, record)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, record *User) (*User, error) {
	if record.Role == "" {
		record.Role = RoleUser
	}

	if _, err := tx.NewInsert().Model(record).Returning("*").Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			// a concurrent signup won the race; surface the same
			// conflict the pre-check reports
			return nil, ErrEmailTaken
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not create user")
	}

	return record, nil
}

func (a *users) Update(ctx context.Context, record *User, columns ...string) (*User, error) {
	now := time.Now()
	record.UpdatedAt = &now

	q := a.db.NewUpdate().
		Model(record).
		WherePK().
		Returning("*")

	if len(columns) > 0 {
		q.Column(append(columns, "updated_at")...)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not update user")
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, ErrUserNotFound
	}

	return record, nil
}

func (a *users) Delete(ctx context.Context, id int64) error {
	res, err := a.db.NewDelete().
		Model((*User)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not delete user")
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (a *users) MarkVerified(ctx context.Context, id int64) error {
	return a.updateFields(ctx, id, map[string]any{
		"is_verified": true,
	}, "could not mark user as verified")
}

func (a *users) SetResetToken(ctx context.Context, id int64, token string, expiry time.Time) error {
	return a.updateFields(ctx, id, map[string]any{
		"reset_token":        token,
		"reset_token_expiry": expiry,
	}, "could not store reset token")
}

// ResetPassword swaps the password hash and clears the reset token and
// expiry in one statement.
func (a *users) ResetPassword(ctx context.Context, id int64, passwordHash string) error {
	res, err := a.db.NewUpdate().
		Model((*User)(nil)).
		Set("password_hash = ?", passwordHash).
		Set("reset_token = NULL").
		Set("reset_token_expiry = NULL").
		Set("updated_at = ?", time.Now()).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not reset password")
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (a *users) updateFields(ctx context.Context, id int64, fields map[string]any, failMsg string) error {
	q := a.db.NewUpdate().
		Model((*User)(nil)).
		Set("updated_at = ?", time.Now()).
		Where("?TableAlias.id = ?", id)

	for column, value := range fields {
		q.Set(column+" = ?", value)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, failMsg)
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrUserNotFound
	}

	return nil
}

func mapSelectError(err error, metadata map[string]any) error {
	if goerrors.Is(err, sql.ErrNoRows) {
		return goerrors.New("User not found", goerrors.CategoryNotFound).
			WithCode(goerrors.CodeNotFound).
			WithMetadata(metadata)
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user")
}

// isUniqueViolation matches the duplicate-key errors of the dialects we
// run against (sqlite in development and tests, postgres in deployment).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
