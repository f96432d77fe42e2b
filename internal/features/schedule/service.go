package schedule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	common_models "go-contractor/internal/common/models"
	"go-contractor/internal/engine"
	"go-contractor/internal/features/audit"
	"go-contractor/internal/features/report"
	"go-contractor/internal/features/template"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var (
	ErrScheduleNotFound = errors.New("schedule not found")
	ErrInvalidCron      = errors.New("invalid cron expression")
	ErrForbidden        = errors.New("schedule belongs to another user")
)

// Recorder counts scheduled runs.
type Recorder interface {
	ObserveScheduledRun(ok bool)
}

type ScheduleService interface {
	CreateSchedule(ctx context.Context, userID string, req CreateScheduleRequest) (*Schedule, error)
	ListSchedules(ctx context.Context, userID string) ([]Schedule, error)
	DeleteSchedule(ctx context.Context, userID, id string) error
	TriggerSchedule(ctx context.Context, userID, id string) (*Run, error)
	ListRuns(ctx context.Context, userID, id string, limit int) ([]Run, error)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

type ScheduleServiceImpl struct {
	repo         ScheduleRepository
	templates    template.TemplateService
	reports      report.ReportService
	sink         Sink
	auditService audit.AuditService
	recorder     Recorder
	logger       *zap.Logger
	now          func() time.Time

	scheduler  *cron.Cron
	jobEntries map[string]cron.EntryID
	mu         sync.RWMutex
}

func NewScheduleService(
	repo ScheduleRepository,
	templates template.TemplateService,
	reports report.ReportService,
	sink Sink,
	auditService audit.AuditService,
	recorder Recorder,
	logger *zap.Logger,
) ScheduleService {
	return &ScheduleServiceImpl{
		repo:         repo,
		templates:    templates,
		reports:      reports,
		sink:         sink,
		auditService: auditService,
		recorder:     recorder,
		logger:       logger,
		now:          time.Now,
		jobEntries:   make(map[string]cron.EntryID),
	}
}

func (s *ScheduleServiceImpl) CreateSchedule(ctx context.Context, userID string, req CreateScheduleRequest) (*Schedule, error) {
	spec, err := cron.ParseStandard(req.Cron)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCron, err)
	}

	format := strings.ToLower(req.Format)
	if format == "" {
		format = "csv"
	}
	exporter, err := engine.ExporterFor(format)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", report.ErrUnsupportedFormat, req.Format)
	}

	tmpl, err := s.templates.GetTemplate(ctx, userID, req.TemplateID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = tmpl.Name
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := s.now()
	next := spec.Next(now)
	sched := &Schedule{
		ID:         uuid.NewString(),
		Name:       name,
		TemplateID: tmpl.ID,
		OwnerID:    userID,
		Cron:       req.Cron,
		Format:     exporter.Format(),
		Active:     active,
		NextRunAt:  &next,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, sched); err != nil {
		return nil, err
	}

	s.audit(ctx, userID, common_models.AuditActionCreate, sched.ID, map[string]common_models.Change{
		"template_id": {New: sched.TemplateID},
		"cron":        {New: sched.Cron},
		"format":      {New: sched.Format},
	})

	if sched.Active && s.scheduler != nil {
		if err := s.register(sched); err != nil {
			s.logger.Error("Failed to register schedule", zap.String("schedule_id", sched.ID), zap.Error(err))
		}
	}
	return sched, nil
}

func (s *ScheduleServiceImpl) ListSchedules(ctx context.Context, userID string) ([]Schedule, error) {
	return s.repo.ListByOwner(ctx, userID)
}

func (s *ScheduleServiceImpl) owned(ctx context.Context, userID, id string) (*Schedule, error) {
	sched, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sched.OwnerID != userID {
		return nil, ErrForbidden
	}
	return sched, nil
}

func (s *ScheduleServiceImpl) DeleteSchedule(ctx context.Context, userID, id string) error {
	sched, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}
	s.unregister(id)
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, userID, common_models.AuditActionDelete, id, map[string]common_models.Change{
		"template_id": {Old: sched.TemplateID},
		"cron":        {Old: sched.Cron},
	})
	return nil
}

// TriggerSchedule runs a schedule now, outside its cron timing.
func (s *ScheduleServiceImpl) TriggerSchedule(ctx context.Context, userID, id string) (*Run, error) {
	sched, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, userID, common_models.AuditActionTrigger, id, nil)
	run := s.execute(ctx, sched, TriggerManual)
	return run, nil
}

func (s *ScheduleServiceImpl) ListRuns(ctx context.Context, userID, id string, limit int) ([]Run, error) {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.GetRuns(ctx, id, limit)
}

// execute runs one export and records the outcome. A failed run is recorded
// and not retried; the next cron tick runs it again.
func (s *ScheduleServiceImpl) execute(ctx context.Context, sched *Schedule, trigger string) *Run {
	run := &Run{
		ID:         uuid.NewString(),
		ScheduleID: sched.ID,
		StartTime:  s.now(),
		Trigger:    trigger,
	}

	rows, location, err := s.export(ctx, sched)
	end := s.now()
	run.EndTime = &end
	run.RowCount = rows
	run.Location = location
	if err != nil {
		run.Status = "failed"
		run.Error = err.Error()
		s.logger.Error("Scheduled export failed",
			zap.String("schedule_id", sched.ID),
			zap.String("template_id", sched.TemplateID),
			zap.Error(err))
	} else {
		run.Status = "success"
		s.logger.Info("Scheduled export delivered",
			zap.String("schedule_id", sched.ID),
			zap.String("location", location),
			zap.Int("row_count", rows))
	}
	if s.recorder != nil {
		s.recorder.ObserveScheduledRun(err == nil)
	}

	if err := s.repo.CreateRun(ctx, run); err != nil {
		s.logger.Warn("Failed to store schedule run", zap.String("schedule_id", sched.ID), zap.Error(err))
	}

	var next *time.Time
	if spec, perr := cron.ParseStandard(sched.Cron); perr == nil {
		n := spec.Next(end)
		next = &n
	}
	if err := s.repo.UpdateLastRun(ctx, sched.ID, *run, next); err != nil {
		s.logger.Warn("Failed to update schedule", zap.String("schedule_id", sched.ID), zap.Error(err))
	}
	return run
}

func (s *ScheduleServiceImpl) export(ctx context.Context, sched *Schedule) (int, string, error) {
	inst, err := s.templates.Instantiate(ctx, sched.OwnerID, sched.TemplateID)
	if err != nil {
		return 0, "", fmt.Errorf("load template: %w", err)
	}

	file, err := s.reports.Export(ctx, inst.Configuration, inst.Template.Name, sched.Format)
	if err != nil {
		return 0, "", err
	}

	location, err := s.sink.Put(ctx, file.Name, file.ContentType, file.Data)
	if err != nil {
		return 0, "", err
	}
	return file.Rows, location, nil
}

func (s *ScheduleServiceImpl) audit(ctx context.Context, userID string, action common_models.AuditAction, id string, changes map[string]common_models.Change) {
	if err := s.auditService.LogChange(audit.WithActor(ctx, userID), action, "schedules", id, changes); err != nil {
		s.logger.Warn("Failed to audit schedule change", zap.String("schedule_id", id), zap.Error(err))
	}
}

// Start loads active schedules and starts the cron scheduler.
func (s *ScheduleServiceImpl) Start(ctx context.Context) error {
	s.mu.Lock()
	s.scheduler = cron.New()
	s.mu.Unlock()

	schedules, err := s.repo.GetActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to load active schedules: %w", err)
	}
	for i := range schedules {
		if err := s.register(&schedules[i]); err != nil {
			s.logger.Error("Failed to register schedule", zap.String("schedule_id", schedules[i].ID), zap.Error(err))
		}
	}

	s.scheduler.Start()
	s.logger.Info("Report scheduler started", zap.Int("schedules", len(schedules)))
	return nil
}

func (s *ScheduleServiceImpl) Stop(ctx context.Context) error {
	if s.scheduler == nil {
		return nil
	}
	select {
	case <-s.scheduler.Stop().Done():
	case <-ctx.Done():
	}
	return nil
}

func (s *ScheduleServiceImpl) register(sched *Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduler == nil {
		return errors.New("scheduler not initialized")
	}

	id := sched.ID
	entryID, err := s.scheduler.AddFunc(sched.Cron, func() {
		ctx := context.Background()
		latest, err := s.repo.GetByID(ctx, id)
		if err != nil || !latest.Active {
			return
		}
		s.execute(ctx, latest, TriggerCron)
	})
	if err != nil {
		return fmt.Errorf("failed to add schedule to scheduler: %w", err)
	}

	s.jobEntries[id] = entryID
	return nil
}

func (s *ScheduleServiceImpl) unregister(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, ok := s.jobEntries[id]; ok {
		s.scheduler.Remove(entryID)
		delete(s.jobEntries, id)
	}
}
