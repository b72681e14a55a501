package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/cityville/laundromat/internal/auth/domain"
	"github.com/cityville/laundromat/internal/auth/password"
	"github.com/cityville/laundromat/internal/config"
	userdomain "github.com/cityville/laundromat/internal/user/domain"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Config config.Config
	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Repo   domain.Repository
	Users  userdomain.Service
	Hasher password.Hasher
}

type Service struct {
	cfg    config.Config
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	repo   domain.Repository
	users  userdomain.Service
	hasher password.Hasher
}

func New(p Params) domain.Service {
	return &Service{
		cfg:    p.Config,
		db:     p.DB,
		log:    p.Log.Named("auth.service"),
		genID:  p.GenID,
		repo:   p.Repo,
		users:  p.Users,
		hasher: p.Hasher,
	}
}

// Register self-signs-up a customer account and opens a first session.
func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.Session, error) {
	user, err := s.users.Create(ctx, userdomain.CreateUserRequest{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      string(userdomain.RoleCustomer),
		Phone:     req.Phone,
		Address:   req.Address,
	})
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.Session, error) {
	user, err := s.users.GetByUsername(ctx, req.Username)
	if errors.Is(err, userdomain.ErrUserNotFound) && strings.Contains(req.Username, "@") {
		// Fall back to email lookup; logins accept either.
		user, err = s.users.GetByEmail(ctx, req.Username)
	}
	if err != nil {
		if errors.Is(err, userdomain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.hasher.Verify(user.PasswordHash, req.Password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, domain.ErrAccountDisabled
	}

	s.log.Info("login", zap.String("username", user.Username))
	return s.issue(ctx, user)
}

func (s *Service) Logout(ctx context.Context, token string) error {
	return s.repo.DeleteByHash(ctx, s.db, hashToken(token))
}

func (s *Service) Authenticate(ctx context.Context, token string) (*userdomain.User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, domain.ErrTokenInvalid
	}
	stored, err := s.repo.FindByHash(ctx, s.db, hashToken(token))
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, domain.ErrTokenInvalid
	}

	now := time.Now().UTC()
	if now.After(stored.ExpiresAt) {
		_ = s.repo.DeleteByHash(ctx, s.db, stored.TokenHash)
		return nil, domain.ErrTokenExpired
	}

	user, err := s.users.GetByID(ctx, stored.UserID.String())
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}
	if !user.Active {
		return nil, domain.ErrAccountDisabled
	}

	_ = s.repo.Touch(ctx, s.db, stored.ID, now)
	return user, nil
}

// ChangePassword verifies the old password, stores the new hash, and
// revokes every open session for the account.
func (s *Service) ChangePassword(ctx context.Context, user *userdomain.User, req domain.ChangePasswordRequest) error {
	if err := s.hasher.Verify(user.PasswordHash, req.OldPassword); err != nil {
		return domain.ErrInvalidCredentials
	}
	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.users.SetPasswordHash(ctx, tx, user.ID, hash); err != nil {
			return err
		}
		return s.repo.DeleteByUser(ctx, tx, user.ID)
	})
}

// PurgeExpired drops tokens past their expiry. The scheduler runs this
// nightly.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.db, time.Now().UTC())
}

func (s *Service) issue(ctx context.Context, user *userdomain.User) (*domain.Session, error) {
	plain := uuid.NewString()
	now := time.Now().UTC()
	expires := now.Add(time.Duration(s.cfg.AuthTokenTTLHours) * time.Hour)

	token := &domain.Token{
		ID:        s.genID.Generate(),
		UserID:    user.ID,
		TokenHash: hashToken(plain),
		ExpiresAt: expires,
		CreatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, token); err != nil {
		return nil, err
	}
	return &domain.Session{Token: plain, ExpiresAt: expires, User: *user}, nil
}

func hashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
