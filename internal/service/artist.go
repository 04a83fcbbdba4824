package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/maxviazov/fabricare-service/internal/cache"
	applog "github.com/maxviazov/fabricare-service/internal/logger"
	"github.com/maxviazov/fabricare-service/internal/model"
	"github.com/maxviazov/fabricare-service/internal/pagination"
	"github.com/maxviazov/fabricare-service/internal/repository"
)

type artistService struct {
	repo  repository.ArtistRepository
	list  *pagination.Responder[model.Artist]
	inval *cache.Invalidator
	log   zerolog.Logger
}

func NewArtistService(repo repository.ArtistRepository, c cache.Cache, lists ListSettings, logger zerolog.Logger) ArtistService {
	l := logger.With().Str("module", "service").Str("component", "artist").Logger()
	return &artistService{
		repo:  repo,
		list:  newResponder[model.Artist](lists, c, l),
		inval: cache.NewInvalidator(c, l),
		log:   l,
	}
}

func (s *artistService) Create(ctx context.Context, in ArtistInput) (model.Artist, error) {
	in.normalize()
	if err := checkStruct(in); err != nil {
		return model.Artist{}, err
	}
	out, err := s.repo.Create(ctx, model.Artist{
		Name:        in.Name,
		Image:       in.Image,
		Description: in.Description,
		Website:     in.Website,
	})
	if err != nil {
		applog.Ctx(ctx, s.log).Error().Err(err).Str("name", in.Name).Msg("create artist failed")
		return model.Artist{}, err
	}
	s.inval.Invalidate(ctx, "artist created")
	applog.Ctx(ctx, s.log).Info().Int64("artist_id", out.ID).Msg("artist created")
	return out, nil
}

func (s *artistService) GetByName(ctx context.Context, name string) (model.Artist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Artist{}, NewInvalidInputError([]FieldError{{Field: "name", Message: "must not be empty"}})
	}
	return s.repo.GetByName(ctx, name)
}

func (s *artistService) Names(ctx context.Context) ([]string, error) {
	names, err := s.repo.Names(ctx)
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

func (s *artistService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.inval.Invalidate(ctx, "artist deleted")
	return nil
}

func (s *artistService) List(ctx context.Context, lr ListRequest) (pagination.Page[model.Artist], error) {
	page, err := s.list.Respond(ctx, lr.Key, lr.Page, loaderOf(s.repo.List()))
	if err != nil && !errors.Is(err, pagination.ErrInvalidRequest) {
		applog.Ctx(ctx, s.log).Error().Err(err).Str("key", lr.Key).Msg("list artists failed")
	}
	return page, err
}
