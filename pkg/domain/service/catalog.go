package service

import (
	"context"

	"storefront/pkg/domain/model"
)

type CatalogService interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
}

func NewCatalogService(repo model.ProductRepository) CatalogService {
	return &catalogService{repo: repo}
}

type catalogService struct {
	repo model.ProductRepository
}

func (s *catalogService) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.repo.FindAll(ctx)
}
