package usecase

import (
	"context"

	"coderr/internal/domain/entity"
)

// BaseInfoUsecase exposes the public marketplace summary.
type BaseInfoUsecase interface {
	GetBaseInfo(ctx context.Context) (*entity.BaseInfo, error)
}
