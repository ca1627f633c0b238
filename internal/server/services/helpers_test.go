package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/dbx"
	"github.com/dmitrijs2005/gophjournal/internal/rowstore"
	"github.com/dmitrijs2005/gophjournal/internal/server/models"
	"github.com/dmitrijs2005/gophjournal/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/gophjournal/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/gophjournal/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophjournal/internal/server/repositories/rows"
	"github.com/dmitrijs2005/gophjournal/internal/server/repositories/users"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

type fakeUsers struct {
	mu        sync.Mutex
	byID      map[string]*models.User
	createErr error
	countErr  error
	lockErr   error
	calls     []string
}

func (f *fakeUsers) LockForSignUp(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "lock")
	return f.lockErr
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "create")
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	u.ID = fmt.Sprintf("u%d", len(f.byID)+1)
	u.CreatedAt = time.Now()
	cp := *u
	f.byID[u.ID] = &cp
	return u, nil
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) Count(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "count")
	return int64(len(f.byID)), f.countErr
}

type fakeProfiles struct {
	mu      sync.Mutex
	byUser  map[string]models.Profile
	saveErr error
}

func (f *fakeProfiles) Save(_ context.Context, p *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.byUser[p.UserID] = *p
	return nil
}

func (f *fakeProfiles) Get(_ context.Context, userID string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byUser[userID]
	if !ok {
		p = models.Profile{UserID: userID}
	}
	return &p, nil
}

type fakeRefresh struct {
	mu            sync.Mutex
	tokens        map[string]models.RefreshToken
	createErr     error
	expiredPurges int
}

func (f *fakeRefresh) Create(_ context.Context, rt *models.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.tokens[rt.Token] = *rt
	return nil
}

func (f *fakeRefresh) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rt, ok := f.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &rt, nil
}

func (f *fakeRefresh) Delete(_ context.Context, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.tokens[token]
	delete(f.tokens, token)
	return ok, nil
}

func (f *fakeRefresh) DeleteExpired(_ context.Context, userID string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expiredPurges++
	for k, rt := range f.tokens {
		if rt.UserID == userID && rt.Expires.Before(now) {
			delete(f.tokens, k)
		}
	}
	return nil
}

type rowsCall struct {
	method string
	table  string
	values map[string]any
	where  []rowstore.Predicate
	order  []rowstore.Order
	cols   []string
}

// fakeRows records statements and answers selects from canned results.
type fakeRows struct {
	rows.Repository
	calls   []rowsCall
	results map[string][]map[string]any
	err     error
	affect  int64
}

func (f *fakeRows) Select(_ context.Context, table string, columns []string, where []rowstore.Predicate, order []rowstore.Order) ([]map[string]any, error) {
	f.calls = append(f.calls, rowsCall{method: "select", table: table, cols: columns, where: where, order: order})
	if f.err != nil {
		return nil, f.err
	}
	return f.results[table], nil
}

func (f *fakeRows) Insert(_ context.Context, table string, values map[string]any) error {
	f.calls = append(f.calls, rowsCall{method: "insert", table: table, values: values})
	return f.err
}

func (f *fakeRows) Update(_ context.Context, table string, values map[string]any, where []rowstore.Predicate) (int64, error) {
	f.calls = append(f.calls, rowsCall{method: "update", table: table, values: values, where: where})
	return f.affect, f.err
}

func (f *fakeRows) Delete(_ context.Context, table string, where []rowstore.Predicate) (int64, error) {
	f.calls = append(f.calls, rowsCall{method: "delete", table: table, where: where})
	return f.affect, f.err
}

type fakeRepoManager struct {
	repomanager.RepositoryManager
	users    *fakeUsers
	profiles *fakeProfiles
	refresh  *fakeRefresh
	rows     *fakeRows
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:    &fakeUsers{byID: map[string]*models.User{}},
		profiles: &fakeProfiles{byUser: map[string]models.Profile{}},
		refresh:  &fakeRefresh{tokens: map[string]models.RefreshToken{}},
		rows:     &fakeRows{results: map[string][]map[string]any{}},
	}
}

func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return m.users }
func (m *fakeRepoManager) Profiles(dbx.DBTX) profiles.Repository           { return m.profiles }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.refresh }
func (m *fakeRepoManager) Rows(dbx.DBTX) rows.Repository                   { return m.rows }
