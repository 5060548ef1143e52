package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matoscout/api/internal/common"
	"github.com/matoscout/api/internal/cryptox"
	"github.com/matoscout/api/internal/dbx"
	"github.com/matoscout/api/internal/logging"
	"github.com/matoscout/api/internal/server/auth"
	"github.com/matoscout/api/internal/server/config"
	"github.com/matoscout/api/internal/server/models"
	"github.com/matoscout/api/internal/server/password"
	refreshtokensrepo "github.com/matoscout/api/internal/server/repositories/refreshtokens"
	usersrepo "github.com/matoscout/api/internal/server/repositories/users"
	"github.com/matoscout/api/internal/server/services"
)

// In-memory stores honoring the same contracts as the Postgres
// repositories, including the family-keyed upsert and the jit
// compare-and-swap. They let the full protocol run end to end without a
// database.

type memUsers struct {
	mu      sync.Mutex
	byEmail map[string]*models.User
	nextID  int
}

func newMemUsers() *memUsers { return &memUsers{byEmail: map[string]*models.User{}} }

func (m *memUsers) Create(ctx context.Context, user *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[user.Email]; ok {
		return nil, common.ErrEmailTaken
	}
	m.nextID++
	user.ID = "user-" + strconv.Itoa(m.nextID)
	user.CreatedAt = time.Now()
	m.byEmail[user.Email] = user
	return user, nil
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return user, nil
}

func (m *memUsers) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byEmail)
}

type memRefresh struct {
	mu       sync.Mutex
	byFamily map[string]*models.RefreshToken
}

func newMemRefresh() *memRefresh { return &memRefresh{byFamily: map[string]*models.RefreshToken{}} }

func (m *memRefresh) Save(ctx context.Context, token *models.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byFamily[token.Family] = token
	return nil
}

func (m *memRefresh) Rotate(ctx context.Context, token *models.RefreshToken, prevJIT string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.byFamily[token.Family]
	if !ok || current.JIT != prevJIT {
		// absent row: the family was revoked, rotation must not revive it
		return false, nil
	}
	m.byFamily[token.Family] = token
	return true, nil
}

func (m *memRefresh) FindByJIT(ctx context.Context, jit string) (*models.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, token := range m.byFamily {
		if token.JIT == jit {
			return token, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memRefresh) DeleteFamily(ctx context.Context, family string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byFamily, family)
	return nil
}

type memManager struct {
	users   *memUsers
	refresh *memRefresh
}

func (m *memManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *memManager) Users(dbx.DBTX) usersrepo.Repository          { return m.users }
func (m *memManager) RefreshTokens(dbx.DBTX) refreshtokensrepo.Repository {
	return m.refresh
}

// ---- flow harness ----

const flowSecret = "flow-secret"

type flowApp struct {
	server *httptest.Server
	users  *memUsers
}

func newFlowApp(t *testing.T) *flowApp {
	t.Helper()

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m := &memManager{users: newMemUsers(), refresh: newMemRefresh()}

	// fast parameters, test-only
	verifier, err := password.NewVerifier(cryptox.Params{
		Memory: 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32,
	}, 2, logging.Discard())
	require.NoError(t, err)

	cfg := &config.Config{
		SecretKey:                    flowSecret,
		AccessTokenValidityDuration:  10 * time.Minute,
		RefreshTokenValidityDuration: time.Hour,
	}

	svc := services.NewAuthService(db, m, verifier, cfg)

	ts := httptest.NewServer(NewServer(":0", logging.Discard(), svc).routes())
	t.Cleanup(ts.Close)

	return &flowApp{server: ts, users: m.users}
}

func (a *flowApp) post(t *testing.T, path, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := a.server.Client().Post(a.server.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, payload
}

func decodePair(t *testing.T, payload []byte) services.TokenPair {
	t.Helper()
	var pair services.TokenPair
	require.NoError(t, json.Unmarshal(payload, &pair))
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	return pair
}

// ---- the end-to-end property ----

func TestFlow_SignUpSignInRefreshReuse(t *testing.T) {
	app := newFlowApp(t)
	codec := auth.NewCodec([]byte(flowSecret))

	// sign-up
	resp, _ := app.post(t, "/auth/sign-up", `{"email":"a@b.com","password":"pw"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// duplicate sign-up: 409, no extra row
	resp, _ = app.post(t, "/auth/sign-up", `{"email":"a@b.com","password":"pw"}`)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, 1, app.users.count())

	// sign-in: pair whose halves share sub and iat
	resp, payload := app.post(t, "/auth/sign-in", `{"email":"a@b.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	pair := decodePair(t, payload)

	access, err := auth.Decode[auth.AccessClaims](codec, pair.AccessToken)
	require.NoError(t, err)
	refresh, err := auth.Decode[auth.RefreshClaims](codec, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, access.Subject, refresh.Subject)
	assert.Equal(t, access.IssuedAt.Unix(), refresh.IssuedAt.Unix())

	// refresh: new pair, same family, new jit, same subject
	resp, payload = app.post(t, "/auth/tokens/refresh",
		`{"refresh_token":"`+pair.RefreshToken+`"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	pair2 := decodePair(t, payload)

	refresh2, err := auth.Decode[auth.RefreshClaims](codec, pair2.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, refresh.Family, refresh2.Family)
	assert.NotEqual(t, refresh.JIT, refresh2.JIT)
	assert.Equal(t, refresh.Subject, refresh2.Subject)

	// reusing the already-rotated token: 401
	resp, _ = app.post(t, "/auth/tokens/refresh",
		`{"refresh_token":"`+pair.RefreshToken+`"}`)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// the reuse burned the whole family, including the current token
	resp, _ = app.post(t, "/auth/tokens/refresh",
		`{"refresh_token":"`+pair2.RefreshToken+`"}`)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// a fresh sign-in recovers
	resp, _ = app.post(t, "/auth/sign-in", `{"email":"a@b.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFlow_SignInFailuresAreUniform(t *testing.T) {
	app := newFlowApp(t)

	resp, _ := app.post(t, "/auth/sign-up", `{"email":"a@b.com","password":"pw"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// wrong password
	resp, wrongPass := app.post(t, "/auth/sign-in", `{"email":"a@b.com","password":"nope"}`)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// unknown email
	resp, unknown := app.post(t, "/auth/sign-in", `{"email":"ghost@b.com","password":"pw"}`)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// identical category: byte-for-byte equal problem bodies
	assert.JSONEq(t, string(wrongPass), string(unknown))
}
