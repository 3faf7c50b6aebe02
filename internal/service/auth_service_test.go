package service

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/astrxnomo/agendaun/internal/models"
	"github.com/astrxnomo/agendaun/internal/repository"
	appErrors "github.com/astrxnomo/agendaun/pkg/errors"
)

type mockUserRepo struct {
	users            map[string]*models.User
	lastLoginUpdated bool
}

func newMockUserRepo(users ...*models.User) *mockUserRepo {
	m := &mockUserRepo{users: map[string]*models.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = uuid.NewString()
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func (m *mockUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	out := []models.User{}
	for _, u := range m.users {
		if filter.Role == nil || u.Role == *filter.Role {
			out = append(out, *u)
		}
	}
	return out, len(out), nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	m.users[user.ID] = user
	return nil
}

type mockLinkRepo struct {
	links map[string]*models.MagicLink
}

func (m *mockLinkRepo) Create(ctx context.Context, link *models.MagicLink) error {
	if m.links == nil {
		m.links = map[string]*models.MagicLink{}
	}
	m.links[link.ID] = link
	return nil
}

func (m *mockLinkRepo) FindByID(ctx context.Context, id string) (*models.MagicLink, error) {
	link, ok := m.links[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *link
	return &copied, nil
}

func (m *mockLinkRepo) MarkUsed(ctx context.Context, id string, at time.Time) error {
	link := m.links[id]
	if link.UsedAt != nil {
		return repository.ErrAlreadyUsed
	}
	link.UsedAt = &at
	return nil
}

func (m *mockLinkRepo) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	for id, link := range m.links {
		if link.ExpiresAt.Before(cutoff) {
			delete(m.links, id)
			removed++
		}
	}
	return removed, nil
}

type capturingSender struct {
	email string
	link  string
}

func (s *capturingSender) SendMagicLink(ctx context.Context, email, link string, expiresAt time.Time) error {
	s.email = email
	s.link = link
	return nil
}

func (s *capturingSender) token(t *testing.T) string {
	parsed, err := url.Parse(s.link)
	require.NoError(t, err)
	return parsed.Query().Get("token")
}

func newTestAuthService(users *mockUserRepo, links *mockLinkRepo, sender LinkSender) *AuthService {
	return NewAuthService(users, links, sender, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret: "secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "agendaun",
		LinkTTL:           15 * time.Minute,
		LinkBaseURL:       "https://agenda.example.edu/auth/callback",
	})
}

func TestAuthServiceMagicLinkRoundTrip(t *testing.T) {
	users := newMockUserRepo()
	links := &mockLinkRepo{}
	sender := &capturingSender{}
	svc := newTestAuthService(users, links, sender)

	err := svc.RequestMagicLink(context.Background(), models.MagicLinkRequest{Email: "Ana@Example.edu", RedirectTo: "/calendars/academico"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.edu", sender.email)
	assert.True(t, strings.HasPrefix(sender.link, "https://agenda.example.edu/auth/callback?token="))

	token := sender.token(t)
	id, secret, ok := strings.Cut(token, ".")
	require.True(t, ok)
	stored := links.links[id]
	require.NotNil(t, stored)
	assert.NotContains(t, stored.SecretHash, secret)

	session, err := svc.ConsumeMagicLink(context.Background(), models.ConsumeMagicLinkRequest{Token: token})
	require.NoError(t, err)
	assert.NotEmpty(t, session.AccessToken)
	assert.Equal(t, "/calendars/academico", session.RedirectTo)
	assert.Equal(t, models.RoleUser, session.User.Role)
	assert.Equal(t, int64(3600), session.ExpiresIn)
	assert.True(t, users.lastLoginUpdated)
	assert.Len(t, users.users, 1)

	claims, err := svc.ValidateToken(session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims.UserID)
	assert.Equal(t, "ana@example.edu", claims.Email)

	_, err = svc.ConsumeMagicLink(context.Background(), models.ConsumeMagicLinkRequest{Token: token})
	assert.True(t, errors.Is(err, appErrors.ErrInvalidMagicLink))
}

func TestAuthServiceMagicLinkRejections(t *testing.T) {
	existing := &models.User{ID: "u-1", Email: "editor@example.edu", Role: models.RoleEditor, Active: true}
	users := newMockUserRepo(existing)
	links := &mockLinkRepo{}
	sender := &capturingSender{}
	svc := newTestAuthService(users, links, sender)

	require.NoError(t, svc.RequestMagicLink(context.Background(), models.MagicLinkRequest{Email: "editor@example.edu"}))
	token := sender.token(t)
	id, _, _ := strings.Cut(token, ".")

	for _, bad := range []string{"", "sin-punto", id + ".otro-secreto", uuid.NewString() + ".x"} {
		_, err := svc.ConsumeMagicLink(context.Background(), models.ConsumeMagicLinkRequest{Token: bad})
		require.Error(t, err, bad)
		code := appErrors.FromError(err).Code
		assert.Contains(t, []string{appErrors.ErrInvalidMagicLink.Code, appErrors.ErrValidation.Code}, code, bad)
	}

	svc.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err := svc.ConsumeMagicLink(context.Background(), models.ConsumeMagicLinkRequest{Token: token})
	assert.True(t, errors.Is(err, appErrors.ErrInvalidMagicLink))

	svc.now = time.Now
	session, err := svc.ConsumeMagicLink(context.Background(), models.ConsumeMagicLinkRequest{Token: token})
	require.NoError(t, err)
	assert.Equal(t, models.RoleEditor, session.User.Role)
	assert.Equal(t, "u-1", session.User.ID)
}

func TestAuthServiceRejectsInactiveUser(t *testing.T) {
	users := newMockUserRepo(&models.User{ID: "u-1", Email: "baja@example.edu", Role: models.RoleUser, Active: false})
	sender := &capturingSender{}
	svc := newTestAuthService(users, &mockLinkRepo{}, sender)

	require.NoError(t, svc.RequestMagicLink(context.Background(), models.MagicLinkRequest{Email: "baja@example.edu"}))
	_, err := svc.ConsumeMagicLink(context.Background(), models.ConsumeMagicLinkRequest{Token: sender.token(t)})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}

func TestAuthServiceRequestValidation(t *testing.T) {
	svc := newTestAuthService(newMockUserRepo(), &mockLinkRepo{}, &capturingSender{})

	err := svc.RequestMagicLink(context.Background(), models.MagicLinkRequest{Email: "no-es-correo"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	err = svc.RequestMagicLink(context.Background(), models.MagicLinkRequest{Email: "ana@example.edu", RedirectTo: "https://evil.example.com"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	svc := newTestAuthService(newMockUserRepo(), &mockLinkRepo{}, nil)
	other := NewAuthService(newMockUserRepo(), &mockLinkRepo{}, nil, nil, nil, AuthConfig{AccessTokenSecret: "other"})

	token, _, err := other.generateAccessToken(&models.User{ID: "u-1", Role: models.RoleAdmin})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}

func TestAuthServiceMe(t *testing.T) {
	svc := newTestAuthService(newMockUserRepo(&models.User{ID: "u-1", Email: "ana@example.edu", Role: models.RoleAdmin, Active: true}), &mockLinkRepo{}, nil)

	info, err := svc.Me(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, info.Role)

	_, err = svc.Me(context.Background(), "u-2")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestPurgeExpiredLinks(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	links := &mockLinkRepo{links: map[string]*models.MagicLink{
		"stale":  {ID: "stale", ExpiresAt: now.Add(-48 * time.Hour)},
		"recent": {ID: "recent", ExpiresAt: now.Add(-time.Hour)},
		"live":   {ID: "live", ExpiresAt: now.Add(time.Hour)},
	}}
	svc := newTestAuthService(&mockUserRepo{}, links, &capturingSender{})
	svc.now = func() time.Time { return now }

	removed, err := svc.PurgeExpiredLinks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	assert.Len(t, links.links, 2)
	assert.NotContains(t, links.links, "stale")
}
