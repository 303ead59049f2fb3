package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/nverdi/social-app-backend/internal/core/domain"
	"github.com/nverdi/social-app-backend/internal/core/port"
	"github.com/nverdi/social-app-backend/internal/repository"
)

// ErrContentNotFound indicates the banner or FAQ entry does not exist.
var ErrContentNotFound = errors.New("content not found")

// ContentService serves public banners and FAQ entries and their admin CRUD.
type ContentService struct {
	banners port.BannerRepository
	faqs    port.FAQRepository
}

// NewContentService constructs a content service.
func NewContentService(banners port.BannerRepository, faqs port.FAQRepository) *ContentService {
	return &ContentService{banners: banners, faqs: faqs}
}

// ListBanners returns active banners in display order.
func (s *ContentService) ListBanners(ctx context.Context) ([]domain.Banner, error) {
	banners, err := s.banners.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list banners: %w", err)
	}
	return banners, nil
}

// CreateBanner stores a new banner.
func (s *ContentService) CreateBanner(ctx context.Context, banner domain.Banner) (*domain.Banner, error) {
	if banner.Title == "" || banner.ImageURL == "" {
		return nil, fmt.Errorf("banner title and image URL are required")
	}

	created, err := s.banners.Create(ctx, banner)
	if err != nil {
		return nil, fmt.Errorf("create banner: %w", err)
	}
	return created, nil
}

// UpdateBanner modifies an existing banner.
func (s *ContentService) UpdateBanner(ctx context.Context, banner domain.Banner) error {
	if err := s.banners.Update(ctx, banner); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrContentNotFound
		}
		return fmt.Errorf("update banner: %w", err)
	}
	return nil
}

// DeleteBanner removes a banner.
func (s *ContentService) DeleteBanner(ctx context.Context, id uint64) error {
	if err := s.banners.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrContentNotFound
		}
		return fmt.Errorf("delete banner: %w", err)
	}
	return nil
}

// ListFAQs returns active FAQ entries in display order.
func (s *ContentService) ListFAQs(ctx context.Context) ([]domain.FAQ, error) {
	faqs, err := s.faqs.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list faqs: %w", err)
	}
	return faqs, nil
}

// CreateFAQ stores a new FAQ entry.
func (s *ContentService) CreateFAQ(ctx context.Context, faq domain.FAQ) (*domain.FAQ, error) {
	if faq.Question == "" || faq.Answer == "" {
		return nil, fmt.Errorf("faq question and answer are required")
	}

	created, err := s.faqs.Create(ctx, faq)
	if err != nil {
		return nil, fmt.Errorf("create faq: %w", err)
	}
	return created, nil
}

// UpdateFAQ modifies an existing FAQ entry.
func (s *ContentService) UpdateFAQ(ctx context.Context, faq domain.FAQ) error {
	if err := s.faqs.Update(ctx, faq); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrContentNotFound
		}
		return fmt.Errorf("update faq: %w", err)
	}
	return nil
}

// DeleteFAQ removes an FAQ entry.
func (s *ContentService) DeleteFAQ(ctx context.Context, id uint64) error {
	if err := s.faqs.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrContentNotFound
		}
		return fmt.Errorf("delete faq: %w", err)
	}
	return nil
}
