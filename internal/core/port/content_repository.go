package port

import (
	"context"

	"github.com/nverdi/social-app-backend/internal/core/domain"
)

// BannerRepository exposes persistence behavior for banners.
type BannerRepository interface {
	ListActive(ctx context.Context) ([]domain.Banner, error)
	Create(ctx context.Context, banner domain.Banner) (*domain.Banner, error)
	Update(ctx context.Context, banner domain.Banner) error
	Delete(ctx context.Context, id uint64) error
}

// FAQRepository exposes persistence behavior for FAQ entries.
type FAQRepository interface {
	ListActive(ctx context.Context) ([]domain.FAQ, error)
	Create(ctx context.Context, faq domain.FAQ) (*domain.FAQ, error)
	Update(ctx context.Context, faq domain.FAQ) error
	Delete(ctx context.Context, id uint64) error
}
