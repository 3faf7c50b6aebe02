package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/astrxnomo/agendaun/internal/models"
	"github.com/astrxnomo/agendaun/internal/repository"
	appErrors "github.com/astrxnomo/agendaun/pkg/errors"
	"github.com/astrxnomo/agendaun/pkg/logger"
)

type authUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
}

type magicLinkRepository interface {
	Create(ctx context.Context, link *models.MagicLink) error
	FindByID(ctx context.Context, id string) (*models.MagicLink, error)
	MarkUsed(ctx context.Context, id string, at time.Time) error
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// LinkSender delivers a sign-in link to its recipient.
type LinkSender interface {
	SendMagicLink(ctx context.Context, email, link string, expiresAt time.Time) error
}

// LogLinkSender writes sign-in links to the log instead of mailing them.
type LogLinkSender struct {
	Logger *zap.Logger
}

// SendMagicLink implements LinkSender.
func (s LogLinkSender) SendMagicLink(ctx context.Context, email, link string, expiresAt time.Time) error {
	logger.WithContext(ctx, s.Logger).Info("magic link issued",
		zap.String("email", email),
		zap.String("link", link),
		zap.Time("expires_at", expiresAt),
	)
	return nil
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
	LinkTTL           time.Duration
	LinkBaseURL       string
}

// AuthService implements passwordless sign in with single-use magic links.
type AuthService struct {
	users     authUserRepository
	links     magicLinkRepository
	sender    LinkSender
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance. A nil sender logs links.
func NewAuthService(users authUserRepository, links magicLinkRepository, sender LinkSender, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if sender == nil {
		sender = LogLinkSender{Logger: logger}
	}
	if config.LinkTTL <= 0 {
		config.LinkTTL = 15 * time.Minute
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 24 * time.Hour
	}
	return &AuthService{users: users, links: links, sender: sender, validator: validate, logger: logger, config: config, now: time.Now}
}

// RequestMagicLink issues a sign-in link for req.Email. The token is only ever
// handed to the sender.
func (s *AuthService) RequestMagicLink(ctx context.Context, req models.MagicLinkRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return invalidPayload(err, "invalid magic link payload")
	}

	secret, err := randomSecret()
	if err != nil {
		return appErrors.Internal(err, "failed to generate magic link")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Internal(err, "failed to hash magic link secret")
	}

	now := s.now().UTC()
	link := &models.MagicLink{
		ID:         uuid.NewString(),
		Email:      strings.ToLower(strings.TrimSpace(req.Email)),
		SecretHash: string(hash),
		RedirectTo: req.RedirectTo,
		ExpiresAt:  now.Add(s.config.LinkTTL),
		CreatedAt:  now,
	}
	if err := s.links.Create(ctx, link); err != nil {
		return appErrors.Internal(err, "failed to store magic link")
	}

	if err := s.sender.SendMagicLink(ctx, link.Email, s.linkURL(link.ID+"."+secret), link.ExpiresAt); err != nil {
		return appErrors.Internal(err, "failed to send magic link")
	}
	return nil
}

// ConsumeMagicLink exchanges a valid, unused, unexpired token for an access
// token. Unknown emails get a USER account.
func (s *AuthService) ConsumeMagicLink(ctx context.Context, req models.ConsumeMagicLinkRequest) (*models.SessionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid magic link token")
	}
	id, secret, ok := strings.Cut(req.Token, ".")
	if !ok || id == "" || secret == "" {
		return nil, appErrors.ErrInvalidMagicLink
	}

	link, err := s.links.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidMagicLink
		}
		return nil, appErrors.Internal(err, "failed to load magic link")
	}
	now := s.now().UTC()
	if link.UsedAt != nil || !now.Before(link.ExpiresAt) {
		return nil, appErrors.ErrInvalidMagicLink
	}
	if err := bcrypt.CompareHashAndPassword([]byte(link.SecretHash), []byte(secret)); err != nil {
		return nil, appErrors.ErrInvalidMagicLink
	}
	if err := s.links.MarkUsed(ctx, link.ID, now); err != nil {
		if errors.Is(err, repository.ErrAlreadyUsed) {
			return nil, appErrors.ErrInvalidMagicLink
		}
		return nil, appErrors.Internal(err, "failed to consume magic link")
	}

	user, err := s.findOrCreateUser(ctx, link.Email)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "account is inactive")
	}
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		logger.WithContext(ctx, s.logger).Warn("failed to update last login", zap.Error(err))
	}

	accessToken, _, err := s.generateAccessToken(user)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to create access token")
	}

	return &models.SessionResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		RedirectTo:  link.RedirectTo,
		IssuedAt:    now,
		User: models.UserInfo{
			ID:       user.ID,
			Email:    user.Email,
			FullName: user.FullName,
			Role:     user.Role,
		},
	}, nil
}

// Me returns the profile of an authenticated user.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.UserInfo, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "user not found", "failed to load user")
	}
	return &models.UserInfo{ID: user.ID, Email: user.Email, FullName: user.FullName, Role: user.Role}, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

// PurgeExpiredLinks removes links that expired more than a day ago.
func (s *AuthService) PurgeExpiredLinks(ctx context.Context) (int64, error) {
	removed, err := s.links.DeleteExpired(ctx, s.now().UTC().Add(-24*time.Hour))
	if err != nil {
		return 0, appErrors.Internal(err, "failed to purge magic links")
	}
	if removed > 0 {
		s.logger.Info("expired magic links purged", zap.Int64("count", removed))
	}
	return removed, nil
}

func (s *AuthService) findOrCreateUser(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Internal(err, "failed to fetch user")
	}

	user = &models.User{Email: email, Role: models.RoleUser, Active: true}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// created by a concurrent sign in
			return s.users.FindByEmail(ctx, email)
		}
		return nil, appErrors.Internal(err, "failed to create user")
	}
	logger.WithContext(ctx, s.logger).Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, time.Time, error) {
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.config.AccessTokenExpiry)
	claims := &models.JWTClaims{
		UserID:   user.ID,
		Role:     user.Role,
		Email:    user.Email,
		FullName: user.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.AccessTokenSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (s *AuthService) linkURL(token string) string {
	base := s.config.LinkBaseURL
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "token=" + url.QueryEscape(token)
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
