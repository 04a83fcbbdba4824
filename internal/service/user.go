package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/maxviazov/fabricare-service/internal/cache"
	applog "github.com/maxviazov/fabricare-service/internal/logger"
	"github.com/maxviazov/fabricare-service/internal/model"
	"github.com/maxviazov/fabricare-service/internal/pagination"
	"github.com/maxviazov/fabricare-service/internal/repository"
)

// userService holds account logic: validation, password hashing and lookups.
type userService struct {
	repo  repository.UserRepository
	list  *pagination.Responder[model.User]
	inval *cache.Invalidator
	cost  int
	log   zerolog.Logger
}

func NewUserService(repo repository.UserRepository, c cache.Cache, lists ListSettings, logger zerolog.Logger) UserService {
	l := logger.With().Str("module", "service").Str("component", "user").Logger()
	return &userService{
		repo:  repo,
		list:  newResponder[model.User](lists, c, l),
		inval: cache.NewInvalidator(c, l),
		cost:  bcrypt.DefaultCost,
		log:   l,
	}
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	start := time.Now()
	in.normalize()
	if err := checkStruct(in); err != nil {
		applog.Ctx(ctx, s.log).Debug().Str("username", in.Username).Interface("field_errors", FieldErrors(err)).Msg("registration validation failed")
		return model.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return model.User{}, err
	}
	out, err := s.repo.Create(ctx, model.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Username:     in.Username,
		Email:        in.Email,
		Role:         model.RoleClient,
		PasswordHash: string(hash),
	})
	if err != nil {
		applog.Ctx(ctx, s.log).Error().Err(err).Str("username", in.Username).Msg("create user failed")
		return model.User{}, err
	}
	s.inval.Invalidate(ctx, "user registered")
	applog.Ctx(ctx, s.log).Info().Dur("took", time.Since(start)).Int64("user_id", out.ID).Msg("user registered")
	return out, nil
}

// Authenticate accepts either a username or an e-mail address as login.
func (s *userService) Authenticate(ctx context.Context, login, password string) (model.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return model.User{}, ErrUnauthorized
	}
	u, err := s.repo.GetByUsername(ctx, login)
	if errors.Is(err, repository.ErrNotFound) {
		u, err = s.repo.GetByEmail(ctx, strings.ToLower(login))
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrUnauthorized
		}
		return model.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		applog.Ctx(ctx, s.log).Debug().Int64("user_id", u.ID).Msg("password mismatch")
		return model.User{}, ErrUnauthorized
	}
	return u, nil
}

func (s *userService) Get(ctx context.Context, id int64) (model.User, error) {
	if id <= 0 {
		return model.User{}, NewInvalidInputError([]FieldError{{Field: "id", Message: "must be > 0"}})
	}
	return s.repo.GetByID(ctx, id)
}

func (s *userService) Lookup(ctx context.Context, ident string) (model.User, error) {
	if id, err := strconv.ParseInt(ident, 10, 64); err == nil {
		return s.Get(ctx, id)
	}
	return s.repo.GetByUsername(ctx, strings.TrimSpace(ident))
}

func (s *userService) UpdateMe(ctx context.Context, me model.User, in UpdateUserInput) (model.User, error) {
	if err := checkStruct(in); err != nil {
		return model.User{}, err
	}
	current, err := s.repo.GetByID(ctx, me.ID)
	if err != nil {
		return model.User{}, err
	}

	if in.FirstName != nil {
		current.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		current.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Username != nil {
		current.Username = strings.TrimSpace(*in.Username)
	}
	if in.Email != nil {
		current.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Password != nil {
		if in.OldPassword == nil ||
			bcrypt.CompareHashAndPassword([]byte(current.PasswordHash), []byte(*in.OldPassword)) != nil {
			return model.User{}, NewInvalidInputError([]FieldError{{Field: "old_password", Message: "does not match the current password"}})
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), s.cost)
		if err != nil {
			return model.User{}, err
		}
		current.PasswordHash = string(hash)
	}

	out, err := s.repo.Update(ctx, current)
	if err != nil {
		applog.Ctx(ctx, s.log).Error().Err(err).Int64("user_id", me.ID).Msg("update user failed")
		return model.User{}, err
	}
	s.inval.Invalidate(ctx, "user updated")
	return out, nil
}

func (s *userService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.inval.Invalidate(ctx, "user deleted")
	applog.Ctx(ctx, s.log).Info().Int64("user_id", id).Msg("user deleted")
	return nil
}

func (s *userService) List(ctx context.Context, lr ListRequest) (pagination.Page[model.User], error) {
	page, err := s.list.Respond(ctx, lr.Key, lr.Page, loaderOf(s.repo.ListCustomers()))
	if err != nil && !errors.Is(err, pagination.ErrInvalidRequest) {
		applog.Ctx(ctx, s.log).Error().Err(err).Str("key", lr.Key).Msg("list users failed")
	}
	return page, err
}
