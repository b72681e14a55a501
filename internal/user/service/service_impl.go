package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/cityville/laundromat/internal/auth/password"
	"github.com/cityville/laundromat/internal/user/domain"
	"github.com/cityville/laundromat/pkg/db"
	"github.com/cityville/laundromat/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Repo   domain.Repository
	Hasher password.Hasher
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	repo   domain.Repository
	hasher password.Hasher
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("user.service"),
		genID:  p.GenID,
		repo:   p.Repo,
		hasher: p.Hasher,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, domain.ErrInvalidUsername
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidEmail
	}
	role := domain.Role(strings.TrimSpace(req.Role))
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           s.genID.Generate(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         role,
		Phone:        strings.TrimSpace(req.Phone),
		Address:      strings.TrimSpace(req.Address),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, user); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrDuplicateAccount
			}
			return err
		}
		if role == domain.RoleCustomer {
			prefs := &domain.Preferences{
				ID:        s.genID.Generate(),
				UserID:    user.ID,
				CreatedAt: now,
				UpdatedAt: now,
			}
			return s.repo.SavePreferences(ctx, tx, prefs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user created",
		zap.String("username", username),
		zap.String("role", string(role)),
	)
	return s.repo.FindByID(ctx, s.db, user.ID)
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.find(ctx, id)
}

func (s *Service) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.repo.FindByUsername(ctx, s.db, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.repo.FindByEmail(ctx, s.db, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *Service) List(ctx context.Context, f domain.ListUserFilter) ([]domain.User, *pagination.PageInfo, error) {
	f.Pagination = f.Pagination.Normalize()
	users, total, err := s.repo.List(ctx, s.db, f)
	if err != nil {
		return nil, nil, err
	}
	info := f.Pagination.Info(total)
	return users, &info, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateUserRequest) (*domain.User, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" || !strings.Contains(email, "@") {
			return nil, domain.ErrInvalidEmail
		}
		user.Email = email
	}
	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Phone != nil {
		user.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		user.Address = strings.TrimSpace(*req.Address)
	}
	if req.Active != nil {
		user.Active = *req.Active
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateAccount
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	user, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.Delete(ctx, tx, user.ID)
	})
}

func (s *Service) Stats(ctx context.Context) (*domain.UserStats, error) {
	byRole, err := s.repo.CountByRole(ctx, s.db)
	if err != nil {
		return nil, err
	}
	active, err := s.repo.CountActive(ctx, s.db)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, n := range byRole {
		total += n
	}
	return &domain.UserStats{Total: total, Active: active, ByRole: byRole}, nil
}

// SetPasswordHash runs on the caller's db handle so it can join an
// open transaction.
func (s *Service) SetPasswordHash(ctx context.Context, db *gorm.DB, id snowflake.ID, hash string) error {
	user, err := s.repo.FindByID(ctx, db, id)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	user.PasswordHash = hash
	user.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, db, user)
}

func (s *Service) GetPreferences(ctx context.Context, userID string) (*domain.Preferences, error) {
	user, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != domain.RoleCustomer {
		return nil, domain.ErrNotCustomer
	}
	prefs, err := s.repo.FindPreferences(ctx, s.db, user.ID)
	if err != nil {
		return nil, err
	}
	if prefs == nil {
		// Accounts created before preferences existed get an empty row
		// on first read.
		now := time.Now().UTC()
		prefs = &domain.Preferences{
			ID:        s.genID.Generate(),
			UserID:    user.ID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.SavePreferences(ctx, s.db, prefs); err != nil {
			return nil, err
		}
	}
	return prefs, nil
}

func (s *Service) UpdatePreferences(ctx context.Context, userID string, req domain.UpdatePreferencesRequest) (*domain.Preferences, error) {
	prefs, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.PreferredPickupTime != nil {
		prefs.PreferredPickupTime = strings.TrimSpace(*req.PreferredPickupTime)
	}
	if req.PreferredDetergent != nil {
		prefs.PreferredDetergent = strings.TrimSpace(*req.PreferredDetergent)
	}
	if req.FoldingStyle != nil {
		prefs.FoldingStyle = strings.TrimSpace(*req.FoldingStyle)
	}
	if req.DeliveryNotes != nil {
		prefs.DeliveryNotes = strings.TrimSpace(*req.DeliveryNotes)
	}
	prefs.UpdatedAt = time.Now().UTC()

	if err := s.repo.SavePreferences(ctx, s.db, prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.User, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return nil, domain.ErrUserNotFound
	}
	user, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}
