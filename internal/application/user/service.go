package user

import (
	"context"
	"fmt"
	"io"

	"github.com/go-auth-api/internal/domain"
	"github.com/go-auth-api/internal/pkg/id"
	"github.com/go-auth-api/internal/pkg/sanitize"
)

// Field names used in partial update maps.
const (
	fieldFirstName = "first_name"
	fieldLastName  = "last_name"
	fieldPhone     = "phone"
	fieldPhoto     = "photo"
)

type Service interface {
	List(ctx context.Context, limit int, cursor string) ([]domain.User, string, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, email string, req domain.UpdateUserRequest) (*domain.User, error)
	Delete(ctx context.Context, email string) error
	UploadPhoto(ctx context.Context, email string, r io.Reader, contentType string) (*domain.User, error)
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error)
	Update(ctx context.Context, email string, updates map[string]interface{}) error
	Delete(ctx context.Context, email string) error
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}

type service struct {
	repo   userStore
	photos objectStore
}

type ServiceDeps struct {
	UserRepo   userStore
	PhotoStore objectStore
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.UserRepo, photos: deps.PhotoStore}
}

func (s *service) List(ctx context.Context, limit int, cursor string) ([]domain.User, string, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repo.ScanPage(ctx, int32(limit), cursor)
}

func (s *service) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.repo.GetByEmail(ctx, sanitize.Email(email))
}

func (s *service) Update(ctx context.Context, email string, req domain.UpdateUserRequest) (*domain.User, error) {
	email = sanitize.Email(email)
	updates := map[string]interface{}{}
	if req.FirstName != nil {
		name := sanitize.String(*req.FirstName)
		if name == "" {
			return nil, fmt.Errorf("update user: %w", domain.ErrFirstNameRequired)
		}
		updates[fieldFirstName] = name
	}
	if req.LastName != nil {
		updates[fieldLastName] = sanitize.String(*req.LastName)
	}
	if req.Phone != nil {
		updates[fieldPhone] = sanitize.Phone(*req.Phone)
	}
	if req.Photo != nil {
		updates[fieldPhoto] = *req.Photo
	}
	if len(updates) == 0 {
		return s.repo.GetByEmail(ctx, email)
	}
	if err := s.repo.Update(ctx, email, updates); err != nil {
		return nil, err
	}
	return s.repo.GetByEmail(ctx, email)
}

func (s *service) Delete(ctx context.Context, email string) error {
	email = sanitize.Email(email)
	if _, err := s.repo.GetByEmail(ctx, email); err != nil {
		return err
	}
	return s.repo.Delete(ctx, email)
}

func (s *service) UploadPhoto(ctx context.Context, email string, r io.Reader, contentType string) (*domain.User, error) {
	email = sanitize.Email(email)
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("photos/%d/%s", u.ID, id.New())
	url, err := s.photos.Upload(ctx, key, r, contentType)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, email, map[string]interface{}{fieldPhoto: url}); err != nil {
		return nil, err
	}
	u.Photo = &url
	return u, nil
}
