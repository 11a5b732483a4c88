package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"stockyard/internal/core/id"
	"stockyard/internal/core/numerator"
)

// --- in-memory fakes ---

type passthroughTxManager struct{}

func (passthroughTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeUserRepo struct {
	users map[id.ID]*User
	roles map[id.ID][]Role
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users: make(map[id.ID]*User),
		roles: make(map[id.ID][]Role),
	}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *User) error {
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, userID id.ID) (*User, error) {
	if u, ok := r.users[userID]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, errNotFound
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, errNotFound
}

func (r *fakeUserRepo) GetByCode(ctx context.Context, code string) (*User, error) {
	for _, u := range r.users {
		if u.Code == code {
			copied := *u
			return &copied, nil
		}
	}
	return nil, errNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, user *User) error {
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, userID id.ID) error {
	delete(r.users, userID)
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context, filter UserFilter) ([]User, int, error) {
	var out []User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (r *fakeUserRepo) LoadRoles(ctx context.Context, userID id.ID) ([]Role, error) {
	return r.roles[userID], nil
}

func (r *fakeUserRepo) LoadPermissions(ctx context.Context, userID id.ID) ([]string, error) {
	var perms []string
	for _, role := range r.roles[userID] {
		for _, p := range role.Permissions {
			perms = append(perms, p.Code)
		}
	}
	return perms, nil
}

func (r *fakeUserRepo) AssignRole(ctx context.Context, userID, roleID id.ID, grantedBy id.ID) error {
	r.roles[userID] = append(r.roles[userID], Role{ID: roleID})
	return nil
}

func (r *fakeUserRepo) RevokeRole(ctx context.Context, userID, roleID id.ID) error {
	kept := r.roles[userID][:0]
	for _, role := range r.roles[userID] {
		if role.ID != roleID {
			kept = append(kept, role)
		}
	}
	r.roles[userID] = kept
	return nil
}

func (r *fakeUserRepo) Exists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

func (r *fakeUserRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	_, err := r.GetByCode(ctx, code)
	return err == nil, nil
}

type fakeRoleRepo struct {
	byCode map[string]*Role
}

func newFakeRoleRepo(codes ...string) *fakeRoleRepo {
	r := &fakeRoleRepo{byCode: make(map[string]*Role)}
	for _, code := range codes {
		r.byCode[code] = NewRole(code, code)
	}
	return r
}

func (r *fakeRoleRepo) Create(ctx context.Context, role *Role) error {
	r.byCode[role.Code] = role
	return nil
}

func (r *fakeRoleRepo) GetByID(ctx context.Context, roleID id.ID) (*Role, error) {
	for _, role := range r.byCode {
		if role.ID == roleID {
			return role, nil
		}
	}
	return nil, errNotFound
}

func (r *fakeRoleRepo) GetByCode(ctx context.Context, code string) (*Role, error) {
	if role, ok := r.byCode[code]; ok {
		return role, nil
	}
	return nil, errNotFound
}

func (r *fakeRoleRepo) Update(ctx context.Context, role *Role) error { return nil }

func (r *fakeRoleRepo) Delete(ctx context.Context, roleID id.ID) error { return nil }

func (r *fakeRoleRepo) List(ctx context.Context) ([]Role, error) {
	var out []Role
	for _, role := range r.byCode {
		out = append(out, *role)
	}
	return out, nil
}

func (r *fakeRoleRepo) LoadPermissions(ctx context.Context, roleID id.ID) ([]Permission, error) {
	return nil, nil
}

func (r *fakeRoleRepo) AssignPermission(ctx context.Context, roleID, permissionID id.ID) error {
	return nil
}

func (r *fakeRoleRepo) RevokePermission(ctx context.Context, roleID, permissionID id.ID) error {
	return nil
}

type fakePermRepo struct{}

func (fakePermRepo) GetByCode(ctx context.Context, code string) (*Permission, error) {
	return nil, errNotFound
}

func (fakePermRepo) List(ctx context.Context) ([]Permission, error) { return nil, nil }

func (fakePermRepo) ListByResource(ctx context.Context, resource string) ([]Permission, error) {
	return nil, nil
}

type fakeTokenRepo struct {
	refreshTokens map[string]*RefreshToken
	denylist      map[string]time.Time
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{
		refreshTokens: make(map[string]*RefreshToken),
		denylist:      make(map[string]time.Time),
	}
}

func (r *fakeTokenRepo) SaveRefreshToken(ctx context.Context, token *RefreshToken) error {
	r.refreshTokens[token.TokenHash] = token
	return nil
}

func (r *fakeTokenRepo) GetRefreshToken(ctx context.Context, tokenHash string) (*RefreshToken, error) {
	if t, ok := r.refreshTokens[tokenHash]; ok {
		return t, nil
	}
	return nil, errNotFound
}

func (r *fakeTokenRepo) RevokeRefreshToken(ctx context.Context, tokenID id.ID, reason string) error {
	for _, t := range r.refreshTokens {
		if t.ID == tokenID {
			now := time.Now()
			t.RevokedAt = &now
			t.RevokedReason = reason
		}
	}
	return nil
}

func (r *fakeTokenRepo) RevokeAllUserTokens(ctx context.Context, userID id.ID, reason string) error {
	for _, t := range r.refreshTokens {
		if t.UserID == userID && t.RevokedAt == nil {
			now := time.Now()
			t.RevokedAt = &now
			t.RevokedReason = reason
		}
	}
	return nil
}

func (r *fakeTokenRepo) InvalidateAccessToken(ctx context.Context, token *InvalidatedToken) error {
	r.denylist[token.ID] = token.ExpiryTime
	return nil
}

func (r *fakeTokenRepo) IsAccessTokenInvalidated(ctx context.Context, jti string) (bool, error) {
	_, ok := r.denylist[jti]
	return ok, nil
}

func (r *fakeTokenRepo) CleanupExpiredTokens(ctx context.Context) (int, error) {
	var removed int
	now := time.Now()
	for jti, expiry := range r.denylist {
		if expiry.Before(now) {
			delete(r.denylist, jti)
			removed++
		}
	}
	return removed, nil
}

var errNotFound = assert.AnError

// --- fixtures ---

type authFixture struct {
	svc       *Service
	userRepo  *fakeUserRepo
	tokenRepo *fakeTokenRepo
	jwt       *JWTService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	userRepo := newFakeUserRepo()
	tokenRepo := newFakeTokenRepo()
	jwtService := NewJWTService(DefaultJWTConfig("test-secret"))

	seq := 0
	gen := &numerator.MockGenerator{
		GetNextNumberFunc: func(ctx context.Context, cfg numerator.Config, opts *numerator.Options, period time.Time) (string, error) {
			seq++
			return "USR-0000" + string(rune('0'+seq)), nil
		},
	}

	svc := NewService(
		userRepo,
		newFakeRoleRepo("staff", "manager"),
		fakePermRepo{},
		tokenRepo,
		passthroughTxManager{},
		jwtService,
		gen,
		DefaultServiceConfig(),
	)

	return &authFixture{svc: svc, userRepo: userRepo, tokenRepo: tokenRepo, jwt: jwtService}
}

func (f *authFixture) registerAndLogin(t *testing.T, email, password string) *TokenPair {
	t.Helper()
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterRequest{
		Email:    email,
		Password: password,
		FullName: "Test User",
	})
	require.NoError(t, err)

	tokens, _, err := f.svc.Login(ctx, Credentials{Email: email, Password: password})
	require.NoError(t, err)
	return tokens
}

// --- tests ---

func TestRegister_Validation(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterRequest{Password: "Password1", FullName: "X"})
	assert.Error(t, err, "email required")

	_, err = f.svc.Register(ctx, RegisterRequest{Email: "a@b.c", Password: "short", FullName: "X"})
	assert.Error(t, err, "password too short")

	_, err = f.svc.Register(ctx, RegisterRequest{Email: "a@b.c", Password: "Password1"})
	assert.Error(t, err, "full name required")

	_, err = f.svc.Register(ctx, RegisterRequest{Email: "a@b.c", Password: "Password1", FullName: "X", RoleCode: "nope"})
	assert.Error(t, err, "unknown role")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	req := RegisterRequest{Email: "dup@example.com", Password: "Password1", FullName: "First"}
	_, err := f.svc.Register(ctx, req)
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, req)
	assert.Error(t, err)
}

func TestRegister_HashesPassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user, err := f.svc.Register(ctx, RegisterRequest{
		Email: "hash@example.com", Password: "Password1", FullName: "X",
	})
	require.NoError(t, err)

	assert.NotEqual(t, "Password1", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("Password1")))
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.registerAndLogin(t, "login@example.com", "Password1")

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := f.svc.Login(ctx, Credentials{Email: "login@example.com", Password: "wrong"})
		assert.Error(t, err)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := f.svc.Login(ctx, Credentials{Email: "ghost@example.com", Password: "Password1"})
		assert.Error(t, err)
	})

	t.Run("issues bearer pair", func(t *testing.T) {
		tokens, user, err := f.svc.Login(ctx, Credentials{Email: "login@example.com", Password: "Password1"})
		require.NoError(t, err)
		assert.Equal(t, "Bearer", tokens.TokenType)
		assert.NotEmpty(t, tokens.AccessToken)
		assert.NotEmpty(t, tokens.RefreshToken)
		assert.NotNil(t, user.LastLoginAt)
	})
}

func TestLogin_LockoutAfterRepeatedFailures(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.registerAndLogin(t, "lock@example.com", "Password1")

	cfg := DefaultServiceConfig()
	for i := 0; i < cfg.MaxLoginAttempts; i++ {
		_, _, err := f.svc.Login(ctx, Credentials{Email: "lock@example.com", Password: "wrong"})
		assert.Error(t, err)
	}

	// Even the correct password is rejected while locked.
	_, _, err := f.svc.Login(ctx, Credentials{Email: "lock@example.com", Password: "Password1"})
	assert.Error(t, err)
}

func TestLogout_DenylistsAccessToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	tokens := f.registerAndLogin(t, "out@example.com", "Password1")

	res, err := f.svc.Introspect(ctx, tokens.AccessToken)
	require.NoError(t, err)
	assert.True(t, res.Valid)

	require.NoError(t, f.svc.Logout(ctx, tokens.AccessToken))

	// The token still verifies cryptographically but the denylist kills it.
	res, err = f.svc.Introspect(ctx, tokens.AccessToken)
	require.NoError(t, err)
	assert.False(t, res.Valid)

	_, err = f.svc.CheckAccessToken(ctx, tokens.AccessToken)
	assert.Error(t, err)

	// Refresh tokens die with the session.
	_, err = f.svc.RefreshToken(ctx, tokens.RefreshToken)
	assert.Error(t, err)
}

func TestLogout_GarbageTokenIsNoop(t *testing.T) {
	f := newAuthFixture(t)
	assert.NoError(t, f.svc.Logout(context.Background(), "not-a-jwt"))
	assert.Empty(t, f.tokenRepo.denylist)
}

func TestIntrospect(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	t.Run("malformed token", func(t *testing.T) {
		res, err := f.svc.Introspect(ctx, "garbage")
		require.NoError(t, err)
		assert.False(t, res.Valid)
	})

	t.Run("valid token carries user and expiry", func(t *testing.T) {
		tokens := f.registerAndLogin(t, "intro@example.com", "Password1")

		res, err := f.svc.Introspect(ctx, tokens.AccessToken)
		require.NoError(t, err)
		assert.True(t, res.Valid)
		assert.NotEmpty(t, res.UserID)
		require.NotNil(t, res.ExpiresAt)
		assert.True(t, res.ExpiresAt.After(time.Now()))
	})

	t.Run("wrong signing key", func(t *testing.T) {
		other := NewJWTService(DefaultJWTConfig("other-secret"))
		user := NewUser("USR-X", "x@example.com", "", "X")
		token, _, err := other.GenerateAccessToken(user, nil, nil)
		require.NoError(t, err)

		res, err := f.svc.Introspect(ctx, token)
		require.NoError(t, err)
		assert.False(t, res.Valid)
	})
}

func TestRefreshToken_Rotation(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	tokens := f.registerAndLogin(t, "rotate@example.com", "Password1")

	fresh, err := f.svc.RefreshToken(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, fresh.RefreshToken)

	// Old refresh token dies on rotation.
	_, err = f.svc.RefreshToken(ctx, tokens.RefreshToken)
	assert.Error(t, err)

	// The new one still works.
	_, err = f.svc.RefreshToken(ctx, fresh.RefreshToken)
	assert.NoError(t, err)
}

func TestCleanupExpiredTokens(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.tokenRepo.denylist["stale"] = time.Now().Add(-time.Hour)
	f.tokenRepo.denylist["live"] = time.Now().Add(time.Hour)

	removed, err := f.svc.CleanupExpiredTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Contains(t, f.tokenRepo.denylist, "live")
}

func TestJWTService_Roundtrip(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("test-secret"))
	user := NewUser("USR-00001", "jwt@example.com", "", "JWT User")
	user.IsAdmin = true

	token, expiresAt, err := svc.GenerateAccessToken(user, []string{"manager"}, []string{"catalog:product:read"})
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, "USR-00001", claims.UserCode)
	assert.Equal(t, []string{"manager"}, claims.Roles)
	assert.True(t, claims.IsAdmin)
	assert.NotEmpty(t, claims.ID, "jti is required for logout denylisting")

	// Each token gets a fresh jti.
	second, _, err := svc.GenerateAccessToken(user, nil, nil)
	require.NoError(t, err)
	secondClaims, err := svc.ValidateToken(second)
	require.NoError(t, err)
	assert.NotEqual(t, claims.ID, secondClaims.ID)
}
