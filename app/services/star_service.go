package services

import (
	"context"
	"strings"

	"github.com/shashiranjanraj/laundry/app/models"
	"github.com/shashiranjanraj/laundry/app/repositories"
)

type CreateStarInput struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"nullable,max=500"`
}

type StarService struct {
	repo repositories.StarRepository
}

func NewStarService(repo repositories.StarRepository) *StarService {
	return &StarService{repo: repo}
}

func (s *StarService) List(ctx context.Context) ([]models.StarRating, error) {
	return s.repo.All(ctx)
}

func (s *StarService) Create(ctx context.Context, userID string, in CreateStarInput) (models.StarRating, error) {
	r := models.StarRating{UserID: userID, Rating: in.Rating, Comment: strings.TrimSpace(in.Comment)}
	if err := s.repo.Create(ctx, &r); err != nil {
		return models.StarRating{}, err
	}
	return r, nil
}

func (s *StarService) Summary(ctx context.Context) (models.StarSummary, error) {
	return s.repo.Summary(ctx)
}
