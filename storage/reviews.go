package storage

import (
	"context"

	"pasr-server/models"

	"github.com/google/uuid"
)

func (s *Store) CreateReview(ctx context.Context, r *models.Review) error {
	return translate(s.db.WithContext(ctx).Omit("Author").Create(r).Error)
}

func (s *Store) FindReview(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var r models.Review
	if err := s.db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

func (s *Store) DeleteReview(ctx context.Context, id uuid.UUID) error {
	return s.deleteByID(ctx, &models.Review{}, id)
}

func (s *Store) ReviewsFor(ctx context.Context, kind models.ListingKind, listingID uuid.UUID) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.WithContext(ctx).Preload("Author").
		Where("listing_kind = ? AND listing_id = ?", kind, listingID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

func (s *Store) DeleteReviewsForListing(ctx context.Context, kind models.ListingKind, listingID uuid.UUID) error {
	return s.db.WithContext(ctx).
		Where("listing_kind = ? AND listing_id = ?", kind, listingID).
		Delete(&models.Review{}).Error
}

func (s *Store) DeleteReviewsByAuthor(ctx context.Context, author uuid.UUID) (int64, error) {
	res := s.db.WithContext(ctx).Where("author_id = ?", author).Delete(&models.Review{})
	return res.RowsAffected, res.Error
}
