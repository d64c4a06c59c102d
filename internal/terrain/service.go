package terrain

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/terrabook/pitch-booking-backend/internal/pkg/storage"
)

type CreateRequest struct {
	Name         string
	Location     string
	PricePerSlot float64
	Description  string
}

type UpdateRequest struct {
	Name         *string
	Location     *string
	PricePerSlot *float64
	Description  *string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Terrain, error)
	GetByID(ctx context.Context, id string) (*Terrain, error)
	GetByName(ctx context.Context, name string) (*Terrain, error)
	List(ctx context.Context, filter Filter) ([]*Terrain, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Terrain, error)
	Delete(ctx context.Context, id string) error

	SetImage(ctx context.Context, id string, content io.Reader) (*Terrain, error)
	GetImage(ctx context.Context, id string) (io.ReadCloser, error)
}

type service struct {
	repo      Repository
	files     storage.Storage
	processor *storage.ImageProcessor
}

func NewService(repo Repository, files storage.Storage) Service {
	return &service{
		repo:      repo,
		files:     files,
		processor: storage.NewImageProcessor(),
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Terrain, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrEmptyName
	}
	if strings.TrimSpace(req.Location) == "" {
		return nil, ErrEmptyLocation
	}
	if req.PricePerSlot < 0 {
		return nil, ErrInvalidPrice
	}

	t := &Terrain{
		Name:         strings.TrimSpace(req.Name),
		Location:     strings.TrimSpace(req.Location),
		PricePerSlot: req.PricePerSlot,
		Description:  req.Description,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Terrain, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetByName(ctx context.Context, name string) (*Terrain, error) {
	return s.repo.GetByName(ctx, name)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Terrain, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Terrain, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, ErrEmptyName
		}
		t.Name = strings.TrimSpace(*req.Name)
	}
	if req.Location != nil {
		if strings.TrimSpace(*req.Location) == "" {
			return nil, ErrEmptyLocation
		}
		t.Location = strings.TrimSpace(*req.Location)
	}
	if req.PricePerSlot != nil {
		if *req.PricePerSlot < 0 {
			return nil, ErrInvalidPrice
		}
		t.PricePerSlot = *req.PricePerSlot
	}
	if req.Description != nil {
		t.Description = *req.Description
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	// Best effort: remove the cover photo from storage.
	if t.Image != "" {
		_ = s.files.Delete(ctx, t.Image)
	}
	return nil
}

// SetImage stores a resized cover photo for the terrain and records its path.
func (s *service) SetImage(ctx context.Context, id string, content io.Reader) (*Terrain, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resized, err := s.processor.GenerateThumbnail(content, 1000, 1000)
	if err != nil {
		return nil, fmt.Errorf("failed to process terrain image: %w", err)
	}

	path := "terrains/" + t.ID + ".jpg"
	if err := s.files.Save(ctx, path, resized); err != nil {
		return nil, fmt.Errorf("failed to store terrain image: %w", err)
	}

	t.Image = path
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// GetImage streams the terrain's cover photo from storage.
func (s *service) GetImage(ctx context.Context, id string) (io.ReadCloser, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Image == "" {
		return nil, ErrNotFound
	}
	return s.files.Get(ctx, t.Image)
}
