package impl

import (
	"context"
	"log/slog"
	"math"

	"coderr/internal/domain/entity"
	"coderr/internal/domain/policy"
	"coderr/internal/domain/repository"
	"coderr/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"
)

// baseInfoService implements the BaseInfoUsecase interface.
type baseInfoService struct {
	userRepo   repository.UserRepository
	offerRepo  repository.OfferRepository
	reviewRepo repository.ReviewRepository
	logger     *slog.Logger
}

// BaseInfoServiceParams holds dependencies for BaseInfoService, injected by Fx.
type BaseInfoServiceParams struct {
	fx.In

	UserRepo   repository.UserRepository
	OfferRepo  repository.OfferRepository
	ReviewRepo repository.ReviewRepository
	Logger     *slog.Logger
}

// NewBaseInfoService is the constructor for baseInfoService.
func NewBaseInfoService(params BaseInfoServiceParams) usecase.BaseInfoUsecase {
	return &baseInfoService{
		userRepo:   params.UserRepo,
		offerRepo:  params.OfferRepo,
		reviewRepo: params.ReviewRepo,
		logger:     params.Logger,
	}
}

// GetBaseInfo runs the four aggregate queries concurrently.
func (srv *baseInfoService) GetBaseInfo(ctx context.Context) (*entity.BaseInfo, error) {
	if err := policy.Check(policy.BaseInfoRead, nil, nil); err != nil {
		return nil, err
	}

	var (
		info    entity.BaseInfo
		average float64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		info.ReviewCount, err = srv.reviewRepo.Count(gctx)

		return errors.Wrap(err, "failed to count reviews")
	})
	g.Go(func() (err error) {
		average, err = srv.reviewRepo.AverageRating(gctx)

		return errors.Wrap(err, "failed to average ratings")
	})
	g.Go(func() (err error) {
		info.BusinessProfileCount, err = srv.userRepo.CountByType(gctx, entity.ProfileTypeBusiness)

		return errors.Wrap(err, "failed to count business profiles")
	})
	g.Go(func() (err error) {
		info.OfferCount, err = srv.offerRepo.Count(gctx)

		return errors.Wrap(err, "failed to count offers")
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	info.AverageRating = math.Round(average*10) / 10

	return &info, nil
}
