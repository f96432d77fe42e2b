package template

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	common_models "go-contractor/internal/common/models"
	"go-contractor/internal/engine"
	"go-contractor/internal/features/audit"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrReadOnlyTemplate = errors.New("standard templates are read-only")
	ErrForbidden        = errors.New("template belongs to another user")
	ErrNameRequired     = errors.New("template name is required")
)

type TemplateService interface {
	ListTemplates(ctx context.Context, userID string, category *engine.Category) ([]engine.Template, error)
	GetTemplate(ctx context.Context, userID, id string) (*engine.Template, error)
	Instantiate(ctx context.Context, userID, id string) (*Instance, error)
	SaveTemplate(ctx context.Context, userID string, req SaveTemplateRequest) (*engine.Template, error)
	SaveGenerated(ctx context.Context, userID string, req SaveTemplateRequest) (*engine.Template, error)
	DeleteTemplate(ctx context.Context, userID, id string) error
}

type TemplateServiceImpl struct {
	Catalog      *engine.Catalog
	Repo         TemplateRepository
	AuditService audit.AuditService
	Logger       *zap.Logger

	standard []engine.Template
	byID     map[string]int
}

func NewTemplateService(catalog *engine.Catalog, repo TemplateRepository, auditService audit.AuditService, logger *zap.Logger) (TemplateService, error) {
	standard, err := LoadStandardTemplates(catalog)
	if err != nil {
		return nil, err
	}
	return newTemplateService(catalog, repo, auditService, logger, standard), nil
}

func newTemplateService(catalog *engine.Catalog, repo TemplateRepository, auditService audit.AuditService, logger *zap.Logger, standard []engine.Template) *TemplateServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &TemplateServiceImpl{
		Catalog:      catalog,
		Repo:         repo,
		AuditService: auditService,
		Logger:       logger,
		standard:     standard,
		byID:         make(map[string]int, len(standard)),
	}
	for i, t := range standard {
		s.byID[t.ID] = i
	}
	return s
}

// ListTemplates returns the standard templates followed by the user's own.
func (s *TemplateServiceImpl) ListTemplates(ctx context.Context, userID string, category *engine.Category) ([]engine.Template, error) {
	var out []engine.Template
	if category == nil || *category == engine.CategoryStandard {
		out = append(out, s.standard...)
	}
	if category != nil && *category == engine.CategoryStandard {
		return out, nil
	}

	own, err := s.Repo.ListByOwner(ctx, userID, category)
	if err != nil {
		return nil, err
	}
	return append(out, own...), nil
}

func (s *TemplateServiceImpl) GetTemplate(ctx context.Context, userID, id string) (*engine.Template, error) {
	if i, ok := s.byID[id]; ok {
		t := s.standard[i]
		return &t, nil
	}

	t, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.OwnerID != userID {
		return nil, ErrForbidden
	}
	return t, nil
}

func (s *TemplateServiceImpl) Instantiate(ctx context.Context, userID, id string) (*Instance, error) {
	t, err := s.GetTemplate(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	cfg, fields := engine.Instantiate(s.Catalog, *t)
	return &Instance{
		Template:      t,
		Config:        cfg.Document(),
		Fields:        fields,
		Configuration: cfg,
	}, nil
}

func (s *TemplateServiceImpl) SaveTemplate(ctx context.Context, userID string, req SaveTemplateRequest) (*engine.Template, error) {
	return s.save(ctx, userID, engine.CategoryCustom, req)
}

// SaveGenerated stores a template produced by an external generator.
func (s *TemplateServiceImpl) SaveGenerated(ctx context.Context, userID string, req SaveTemplateRequest) (*engine.Template, error) {
	return s.save(ctx, userID, engine.CategoryAIGenerated, req)
}

func (s *TemplateServiceImpl) save(ctx context.Context, userID string, category engine.Category, req SaveTemplateRequest) (*engine.Template, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	cfg := req.Config.Configuration(s.Catalog)
	keys := req.Fields
	if len(keys) == 0 {
		keys = cfg.Fields
	}
	cfg = cfg.SetFields(engine.NumberBeforeName(s.Catalog, cfg.DataSource, keys))
	// runs fall back on an unknown sort key; a saved template must name a real one
	if err := cfg.Strict(s.Catalog); err != nil {
		return nil, err
	}

	now := time.Now()
	t := &engine.Template{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Category:    category,
		OwnerID:     userID,
		Config:      cfg.Document(),
		Fields:      s.Catalog.ResolveAll(cfg.DataSource, cfg.Fields),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("save template: %w", err)
	}

	if err := s.AuditService.LogChange(audit.WithActor(ctx, userID), common_models.AuditActionCreate, "templates", t.ID, map[string]common_models.Change{
		"name":        {New: t.Name},
		"category":    {New: t.Category},
		"data_source": {New: t.Config.DataSource},
	}); err != nil {
		s.Logger.Warn("Failed to audit template save", zap.String("template_id", t.ID), zap.Error(err))
	}
	return t, nil
}

func (s *TemplateServiceImpl) DeleteTemplate(ctx context.Context, userID, id string) error {
	if _, ok := s.byID[id]; ok {
		return ErrReadOnlyTemplate
	}

	t, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if t.ReadOnly() {
		return ErrReadOnlyTemplate
	}
	if t.OwnerID != userID {
		return ErrForbidden
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.AuditService.LogChange(audit.WithActor(ctx, userID), common_models.AuditActionDelete, "templates", id, map[string]common_models.Change{
		"name": {Old: t.Name},
	}); err != nil {
		s.Logger.Warn("Failed to audit template delete", zap.String("template_id", id), zap.Error(err))
	}
	return nil
}
