// internal/service/template_service.go
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/jkarimi/wacrm-backend/internal/errors"
	"github.com/jkarimi/wacrm-backend/internal/model"
	"github.com/jkarimi/wacrm-backend/internal/repository"
)

// TemplateService manages message templates.
type TemplateService struct {
	TemplateRepo repository.TemplateRepositoryInterface
}

func (s *TemplateService) CreateTemplate(ctx context.Context, userID, name, content string) (*model.Template, error) {
	if strings.TrimSpace(content) == "" {
		return nil, appErrors.InvalidArgument("template content cannot be empty")
	}

	t := &model.Template{
		ID:           uuid.NewString(),
		UserID:       userID,
		Name:         name,
		Content:      content,
		Placeholders: ExtractPlaceholders(content),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.TemplateRepo.Insert(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TemplateService) ListTemplates(ctx context.Context, userID string) ([]model.Template, error) {
	return s.TemplateRepo.ListByUser(ctx, userID)
}

func (s *TemplateService) GetTemplate(ctx context.Context, templateID, userID string) (*model.Template, error) {
	t, err := s.TemplateRepo.GetByIDAndUser(ctx, templateID, userID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, appErrors.NotFound("Template not found")
	}
	return t, nil
}

func (s *TemplateService) DeleteTemplate(ctx context.Context, templateID, userID string) error {
	deleted, err := s.TemplateRepo.DeleteByIDAndUser(ctx, templateID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return appErrors.NotFound("Template not found")
	}
	return nil
}
