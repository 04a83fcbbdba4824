package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxviazov/fabricare-service/internal/cache"
	applog "github.com/maxviazov/fabricare-service/internal/logger"
	"github.com/maxviazov/fabricare-service/internal/model"
	"github.com/maxviazov/fabricare-service/internal/pagination"
	"github.com/maxviazov/fabricare-service/internal/repository"
)

type productService struct {
	products repository.ProductRepository
	artists  repository.ArtistRepository
	carts    repository.CartRepository
	list     *pagination.Responder[model.Product]
	inval    *cache.Invalidator
	log      zerolog.Logger
}

func NewProductService(
	products repository.ProductRepository,
	artists repository.ArtistRepository,
	carts repository.CartRepository,
	c cache.Cache,
	lists ListSettings,
	logger zerolog.Logger,
) ProductService {
	l := logger.With().Str("module", "service").Str("component", "product").Logger()
	return &productService{
		products: products,
		artists:  artists,
		carts:    carts,
		list:     newResponder[model.Product](lists, c, l),
		inval:    cache.NewInvalidator(c, l),
		log:      l,
	}
}

func (s *productService) Create(ctx context.Context, in ProductInput) (model.Product, error) {
	start := time.Now()
	in.normalize()
	if err := checkStruct(in); err != nil {
		return model.Product{}, err
	}
	artist, err := s.artists.GetByName(ctx, in.ArtistName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			applog.Ctx(ctx, s.log).Debug().Str("artist_name", in.ArtistName).Msg("product references unknown artist")
		}
		return model.Product{}, err
	}

	out, err := s.products.Create(ctx, model.Product{
		Title:       in.Title,
		Deadline:    in.Deadline,
		Goal:        in.Goal,
		Price:       in.Price,
		ArtistID:    artist.ID,
		MainImage:   in.MainImage,
		SubImages:   in.SubImages,
		Composition: in.Composition,
		Color:       in.Color,
		Style:       in.Style,
		Quantity:    in.Quantity,
		Sizes:       in.Sizes,
	})
	if err != nil {
		applog.Ctx(ctx, s.log).Error().Err(err).Str("title", in.Title).Msg("create product failed")
		return model.Product{}, err
	}
	s.inval.Invalidate(ctx, "product created")
	applog.Ctx(ctx, s.log).Info().Dur("took", time.Since(start)).Int64("product_id", out.ID).Msg("product created")
	return out, nil
}

func (s *productService) Update(ctx context.Context, id int64, in ProductPatch) (model.Product, error) {
	if in.Sizes != nil {
		sizes := splitSizes(*in.Sizes)
		in.Sizes = &sizes
	}
	if err := checkStruct(in); err != nil {
		return model.Product{}, err
	}
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return model.Product{}, err
	}

	if in.ArtistName != nil {
		artist, err := s.artists.GetByName(ctx, strings.TrimSpace(*in.ArtistName))
		if err != nil {
			return model.Product{}, err
		}
		p.ArtistID = artist.ID
	}
	if in.Title != nil {
		p.Title = strings.TrimSpace(*in.Title)
	}
	if in.Deadline != nil {
		p.Deadline = *in.Deadline
	}
	if in.Goal != nil {
		p.Goal = *in.Goal
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.MainImage != nil {
		p.MainImage = *in.MainImage
	}
	if in.SubImages != nil {
		p.SubImages = *in.SubImages
	}
	if in.Composition != nil {
		p.Composition = *in.Composition
	}
	if in.Color != nil {
		p.Color = *in.Color
	}
	if in.Style != nil {
		p.Style = *in.Style
	}
	if in.Quantity != nil {
		p.Quantity = *in.Quantity
	}
	if in.Sizes != nil {
		p.Sizes = *in.Sizes
	}

	out, err := s.products.Update(ctx, p)
	if err != nil {
		applog.Ctx(ctx, s.log).Error().Err(err).Int64("product_id", id).Msg("update product failed")
		return model.Product{}, err
	}
	s.inval.Invalidate(ctx, "product updated")
	return out, nil
}

func (s *productService) Delete(ctx context.Context, id int64) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.inval.Invalidate(ctx, "product deleted")
	return nil
}

func (s *productService) GetSale(ctx context.Context, me model.User, id int64) (model.Product, error) {
	if id <= 0 {
		return model.Product{}, NewInvalidInputError([]FieldError{{Field: "id", Message: "must be > 0"}})
	}
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return model.Product{}, err
	}
	qty, err := s.carts.QuantityInCart(ctx, me.ID, id)
	if err != nil {
		return model.Product{}, err
	}
	p.QuantityInCart = qty
	return p, nil
}

func (s *productService) List(ctx context.Context, lr ListRequest) (pagination.Page[model.Product], error) {
	page, err := s.list.Respond(ctx, lr.Key, lr.Page, loaderOf(s.products.List()))
	if err != nil && !errors.Is(err, pagination.ErrInvalidRequest) {
		applog.Ctx(ctx, s.log).Error().Err(err).Str("key", lr.Key).Msg("list products failed")
	}
	return page, err
}

// ListByArtist resolves the artist only on a cache miss; an unknown artist is ErrNotFound.
func (s *productService) ListByArtist(ctx context.Context, artistName string, lr ListRequest) (pagination.Page[model.Product], error) {
	load := func(ctx context.Context) (pagination.Query[model.Product], pagination.Extra, error) {
		artist, err := s.artists.GetByName(ctx, strings.TrimSpace(artistName))
		if err != nil {
			return nil, nil, err
		}
		return s.products.ListByArtist(artist.ID), nil, nil
	}
	return s.list.Respond(ctx, lr.Key, lr.Page, load)
}
