package auth

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"net/http"
	"portfolio-backend/app/server/apperr"
	"portfolio-backend/app/server/jwt"
	"portfolio-backend/app/server/models"
	"sync"
	"testing"
	"time"
)

const testPassword = "Secret123"

type fixture struct {
	svc    *Service
	store  *memStore
	hasher *Argon2idHasher
	tokens *jwt.JWT
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	tokens, err := jwt.New("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)

	store := newMemStore()
	hasher := NewArgon2idHasher(fastParams)
	svc, err := NewService(zap.NewNop(), store, hasher, tokens, time.Hour)
	require.NoError(t, err)

	return &fixture{svc: svc, store: store, hasher: hasher, tokens: tokens}
}

func (f *fixture) seed(t *testing.T, username string, role models.Role, active bool) *models.User {
	t.Helper()
	hash, err := f.hasher.Hash(testPassword)
	require.NoError(t, err)
	return f.store.put(models.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
		IsActive: active,
		Password: hash,
	})
}

func registerInput(username string) RegisterInput {
	return RegisterInput{
		Username: username,
		Email:    username + "@Example.com",
		Password: testPassword,
	}
}

func TestRegisterFirstAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.svc.RegisterFirstAdmin(ctx, registerInput("owner"))
	require.NoError(t, err)

	assert.Equal(t, models.RoleAdmin, session.User.Role)
	assert.True(t, session.User.IsActive)
	assert.Equal(t, "owner@example.com", session.User.Email)
	assert.NotEqual(t, testPassword, session.User.Password)

	id, err := f.svc.Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, id)
}

func TestRegisterFirstAdminClosedOnceAdminExists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.RegisterFirstAdmin(ctx, registerInput("owner"))
	require.NoError(t, err)

	_, err = f.svc.RegisterFirstAdmin(ctx, registerInput("second"))
	apperr.AssertCode(t, err, apperr.CodeConflict)
	assert.Equal(t, http.StatusForbidden, apperr.Status(err))
}

func TestRegisterFirstAdminIdentityTaken(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "owner", models.RoleUser, true)

	_, err := f.svc.RegisterFirstAdmin(context.Background(), registerInput("owner"))
	apperr.AssertCode(t, err, apperr.CodeConflict)
	assert.Equal(t, http.StatusBadRequest, apperr.Status(err))
}

func TestRegisterFirstAdminWeakPassword(t *testing.T) {
	f := newFixture(t)

	in := registerInput("owner")
	in.Password = "alllowercase"
	_, err := f.svc.RegisterFirstAdmin(context.Background(), in)
	apperr.AssertCode(t, err, apperr.CodeValidation)
	assert.Contains(t, apperr.Fields(err), "password")
}

func TestRegisterFirstAdminConcurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.RegisterFirstAdmin(ctx, registerInput("owner"+string(rune('a'+i))))
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.EqualValues(t, 1, f.store.adminCount())
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	admin := f.seed(t, "owner", models.RoleAdmin, true)

	t.Run("by email", func(t *testing.T) {
		session, err := f.svc.Login(context.Background(), "OWNER@example.com", testPassword)
		require.NoError(t, err)
		assert.Equal(t, admin.ID, session.User.ID)
		require.NotNil(t, session.User.LastLogin)

		stored, err := f.store.FindByID(context.Background(), admin.ID)
		require.NoError(t, err)
		assert.NotNil(t, stored.LastLogin)
	})

	t.Run("by username", func(t *testing.T) {
		_, err := f.svc.Login(context.Background(), "owner", testPassword)
		require.NoError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.svc.Login(context.Background(), "owner@example.com", "Wrong1234")
		apperr.AssertCode(t, err, apperr.CodeUnauthenticated)
		assert.Equal(t, "invalid credentials", apperr.Message(err))
	})

	t.Run("unknown identity", func(t *testing.T) {
		_, err := f.svc.Login(context.Background(), "nobody@example.com", testPassword)
		apperr.AssertCode(t, err, apperr.CodeUnauthenticated)
		assert.Equal(t, "invalid credentials", apperr.Message(err))
	})
}

func TestLoginRejectsNonAdminAndInactive(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "member", models.RoleUser, true)
	f.seed(t, "retired", models.RoleAdmin, false)

	_, err := f.svc.Login(context.Background(), "member@example.com", testPassword)
	apperr.AssertCode(t, err, apperr.CodeForbidden)

	_, err = f.svc.Login(context.Background(), "retired@example.com", testPassword)
	apperr.AssertCode(t, err, apperr.CodeUnauthenticated)
	assert.Equal(t, "account is deactivated", apperr.Message(err))
}

func TestLoginCredentialMismatchHidesRoleAndState(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "member", models.RoleUser, true)
	f.seed(t, "retired", models.RoleAdmin, false)

	for _, identity := range []string{"member@example.com", "retired@example.com"} {
		_, err := f.svc.Login(context.Background(), identity, "Wrong1234")
		apperr.AssertCode(t, err, apperr.CodeUnauthenticated)
		assert.Equal(t, "invalid credentials", apperr.Message(err))
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	f := newFixture(t)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := f.svc.Verify(token)
		apperr.AssertCode(t, err, apperr.CodeUnauthenticated)
	}
}

func TestRequireAdmin(t *testing.T) {
	f := newFixture(t)
	admin := f.seed(t, "owner", models.RoleAdmin, true)
	member := f.seed(t, "member", models.RoleUser, true)
	retired := f.seed(t, "retired", models.RoleAdmin, false)
	ctx := context.Background()

	got, err := f.svc.RequireAdmin(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, got.ID)

	_, err = f.svc.RequireAdmin(ctx, member.ID)
	apperr.AssertCode(t, err, apperr.CodeForbidden)

	_, err = f.svc.RequireAdmin(ctx, retired.ID)
	apperr.AssertCode(t, err, apperr.CodeUnauthenticated)

	_, err = f.svc.RequireAdmin(ctx, 999)
	apperr.AssertCode(t, err, apperr.CodeUnauthenticated)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	admin := f.seed(t, "owner", models.RoleAdmin, true)
	ctx := context.Background()

	err := f.svc.ChangePassword(ctx, admin.ID, "Wrong1234", "Fresh4567")
	apperr.AssertCode(t, err, apperr.CodeValidation)
	assert.Equal(t, http.StatusBadRequest, apperr.Status(err))

	err = f.svc.ChangePassword(ctx, admin.ID, testPassword, "weak")
	apperr.AssertCode(t, err, apperr.CodeValidation)

	require.NoError(t, f.svc.ChangePassword(ctx, admin.ID, testPassword, "Fresh4567"))

	_, err = f.svc.Login(ctx, "owner", testPassword)
	apperr.AssertCode(t, err, apperr.CodeUnauthenticated)

	_, err = f.svc.Login(ctx, "owner", "Fresh4567")
	require.NoError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	admin := f.seed(t, "owner", models.RoleAdmin, true)

	first, bio, github := "Ada", "builder", "https://github.com/ada"
	user, err := f.svc.UpdateProfile(context.Background(), admin.ID, &ProfilePatch{
		FirstName:   &first,
		Bio:         &bio,
		SocialLinks: &SocialLinksPatch{GitHub: &github},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Profile.Data().FirstName)

	stored, err := f.store.FindByID(context.Background(), admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "builder", stored.Profile.Data().Bio)
	assert.Equal(t, "https://github.com/ada", stored.Profile.Data().SocialLinks.GitHub)
}

func TestDeleteUserGuard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.seed(t, "owner", models.RoleAdmin, true)
	member := f.seed(t, "member", models.RoleUser, true)

	err := f.svc.DeleteUser(ctx, admin.ID)
	apperr.AssertCode(t, err, apperr.CodeConflict)
	assert.Equal(t, "cannot delete the last admin", apperr.Message(err))

	require.NoError(t, f.svc.DeleteUser(ctx, member.ID))

	_, err = f.store.FindByID(ctx, admin.ID)
	require.NoError(t, err)
}

func TestDeleteNonLastAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "owner", models.RoleAdmin, true)
	other := f.seed(t, "legacy", models.RoleAdmin, true)

	require.NoError(t, f.svc.DeleteUser(ctx, other.ID))
	assert.EqualValues(t, 1, f.store.adminCount())
}

func TestDeleteLastAdminConcurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.seed(t, "owner", models.RoleAdmin, true)
	b := f.seed(t, "legacy", models.RoleAdmin, true)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []uint{a.ID, b.ID} {
		wg.Add(1)
		go func(i int, id uint) {
			defer wg.Done()
			errs[i] = f.svc.DeleteUser(ctx, id)
		}(i, id)
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			apperr.AssertCode(t, err, apperr.CodeConflict)
			failures++
		}
	}
	assert.Equal(t, 1, failures)
	assert.EqualValues(t, 1, f.store.adminCount())
}

func TestUpdateAccountKeepsSingleAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.seed(t, "owner", models.RoleAdmin, true)
	member := f.seed(t, "member", models.RoleUser, true)

	userRole, adminRole, inactive := models.RoleUser, models.RoleAdmin, false

	_, err := f.svc.UpdateAccount(ctx, admin.ID, AccountPatch{Role: &userRole})
	apperr.AssertCode(t, err, apperr.CodeConflict)

	_, err = f.svc.UpdateAccount(ctx, admin.ID, AccountPatch{IsActive: &inactive})
	apperr.AssertCode(t, err, apperr.CodeConflict)

	_, err = f.svc.UpdateAccount(ctx, member.ID, AccountPatch{Role: &adminRole})
	apperr.AssertCode(t, err, apperr.CodeConflict)
	assert.Equal(t, http.StatusForbidden, apperr.Status(err))

	updated, err := f.svc.UpdateAccount(ctx, member.ID, AccountPatch{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
}

func TestPasswordStrongEnough(t *testing.T) {
	assert.True(t, PasswordStrongEnough("Abc123"))
	assert.False(t, PasswordStrongEnough("abc123"))
	assert.False(t, PasswordStrongEnough("ABC123"))
	assert.False(t, PasswordStrongEnough("Abcdef"))
}

func TestProfilePatchApply(t *testing.T) {
	base := models.Profile{FirstName: "Ada", LastName: "Lovelace"}
	last := "Byron"

	got := (&ProfilePatch{LastName: &last}).Apply(base)
	assert.Equal(t, "Ada", got.FirstName)
	assert.Equal(t, "Byron", got.LastName)

	var nilPatch *ProfilePatch
	assert.Equal(t, base, nilPatch.Apply(base))
}

func TestAccountPatchApplyProfile(t *testing.T) {
	u := models.User{Profile: datatypes.NewJSONType(models.Profile{Bio: "old"})}
	bio := "new"

	got := (&AccountPatch{Profile: &ProfilePatch{Bio: &bio}}).Apply(u)
	assert.Equal(t, "new", got.Profile.Data().Bio)
	assert.Equal(t, "old", u.Profile.Data().Bio)
}
