package auth_test

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"

	auth "github.com/softyse/unilink-auth"
)

// testConfig implements auth.Config with fast, deterministic settings
type testConfig struct {
	accessKey     string
	refreshKey    string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	bcryptCost    int
	clientURL     string
	production    bool
}

func newTestConfig() *testConfig {
	return &testConfig{
		accessKey:     "access-secret",
		refreshKey:    "refresh-secret",
		accessExpiry:  15 * time.Minute,
		refreshExpiry: 7 * 24 * time.Hour,
		bcryptCost:    bcrypt.MinCost,
		clientURL:     "http://localhost:3000",
	}
}

func (c *testConfig) GetAccessSigningKey() string              { return c.accessKey }
func (c *testConfig) GetRefreshSigningKey() string             { return c.refreshKey }
func (c *testConfig) GetAccessTokenExpiration() time.Duration  { return c.accessExpiry }
func (c *testConfig) GetRefreshTokenExpiration() time.Duration { return c.refreshExpiry }
func (c *testConfig) GetBcryptCost() int                       { return c.bcryptCost }
func (c *testConfig) GetClientURL() string                     { return c.clientURL }
func (c *testConfig) IsProduction() bool                       { return c.production }

// fakeClock is a movable time source
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// fakeUsers is an in-memory Users store
type fakeUsers struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*auth.User
}

var _ auth.Users = (*fakeUsers)(nil)

func newFakeUsers() *fakeUsers {
	return &fakeUsers{nextID: 1, rows: map[int64]*auth.User{}}
}

func notFoundErr() error {
	return goerrors.New("User not found", goerrors.CategoryNotFound).
		WithCode(goerrors.CodeNotFound)
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.rows {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, notFoundErr()
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.rows[id]
	if !ok {
		return nil, notFoundErr()
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUsers) List(_ context.Context) ([]*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*auth.User, 0, len(f.rows))
	for _, u := range f.rows {
		clone := *u
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUsers) Create(_ context.Context, record *auth.User) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.rows {
		if u.Email == record.Email {
			return nil, auth.ErrEmailTaken
		}
	}
	record.ID = f.nextID
	f.nextID++
	if record.Role == "" {
		record.Role = auth.RoleUser
	}
	clone := *record
	f.rows[record.ID] = &clone
	return record, nil
}

func (f *fakeUsers) CreateTx(ctx context.Context, _ bun.IDB, record *auth.User) (*auth.User, error) {
	return f.Create(ctx, record)
}

func (f *fakeUsers) Update(_ context.Context, record *auth.User, columns ...string) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.rows[record.ID]
	if !ok {
		return nil, notFoundErr()
	}
	if len(columns) == 0 {
		clone := *record
		f.rows[record.ID] = &clone
		return record, nil
	}
	for _, col := range columns {
		switch col {
		case "name":
			existing.Name = record.Name
		case "image":
			existing.Image = record.Image
		case "role":
			existing.Role = record.Role
		case "updated_at":
			existing.UpdatedAt = record.UpdatedAt
		}
	}
	clone := *existing
	return &clone, nil
}

func (f *fakeUsers) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return notFoundErr()
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeUsers) MarkVerified(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.rows[id]
	if !ok {
		return notFoundErr()
	}
	u.IsVerified = true
	return nil
}

func (f *fakeUsers) SetResetToken(_ context.Context, id int64, token string, expiry time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.rows[id]
	if !ok {
		return notFoundErr()
	}
	u.ResetToken = token
	u.ResetTokenExpiry = &expiry
	return nil
}

func (f *fakeUsers) ResetPassword(_ context.Context, id int64, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.rows[id]
	if !ok {
		return notFoundErr()
	}
	u.PasswordHash = passwordHash
	u.ResetToken = ""
	u.ResetTokenExpiry = nil
	return nil
}

// get returns the live row for state assertions
func (f *fakeUsers) get(id int64) *auth.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id]
}

// fakeRepo bundles the fake store behind the RepositoryManager interface
type fakeRepo struct {
	users *fakeUsers
}

var _ auth.RepositoryManager = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: newFakeUsers()}
}

func (r *fakeRepo) Validate() error { return nil }
func (r *fakeRepo) MustValidate()   {}

func (r *fakeRepo) RunInTx(ctx context.Context, _ *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

func (r *fakeRepo) Users() auth.Users { return r.users }

// sentEmail captures a dispatched message
type sentEmail struct {
	To      string
	Subject string
	HTML    string
}

// fakeMailer records sends and can be told to fail
type fakeMailer struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

var _ auth.Mailer = (*fakeMailer)(nil)

func (m *fakeMailer) Send(_ context.Context, to, subject, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentEmail{To: to, Subject: subject, HTML: html})
	return nil
}

func (m *fakeMailer) lastSent() *sentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return nil
	}
	return &m.sent[len(m.sent)-1]
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}
