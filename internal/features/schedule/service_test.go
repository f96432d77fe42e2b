package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	common_models "go-contractor/internal/common/models"
	"go-contractor/internal/engine"
	"go-contractor/internal/features/report"
	"go-contractor/internal/features/template"

	"go.uber.org/zap"
)

type MockRepo struct {
	Items   map[string]*Schedule
	Runs    []Run
	LastRun map[string]Run
}

func newMockRepo(items ...Schedule) *MockRepo {
	m := &MockRepo{Items: map[string]*Schedule{}, LastRun: map[string]Run{}}
	for i := range items {
		m.Items[items[i].ID] = &items[i]
	}
	return m
}

func (m *MockRepo) Create(ctx context.Context, s *Schedule) error {
	m.Items[s.ID] = s
	return nil
}

func (m *MockRepo) GetByID(ctx context.Context, id string) (*Schedule, error) {
	s, ok := m.Items[id]
	if !ok {
		return nil, ErrScheduleNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MockRepo) ListByOwner(ctx context.Context, ownerID string) ([]Schedule, error) {
	out := []Schedule{}
	for _, s := range m.Items {
		if s.OwnerID == ownerID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *MockRepo) GetActive(ctx context.Context) ([]Schedule, error) {
	out := []Schedule{}
	for _, s := range m.Items {
		if s.Active {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *MockRepo) Delete(ctx context.Context, id string) error {
	delete(m.Items, id)
	return nil
}

func (m *MockRepo) UpdateLastRun(ctx context.Context, id string, run Run, nextRun *time.Time) error {
	m.LastRun[id] = run
	return nil
}

func (m *MockRepo) CreateRun(ctx context.Context, run *Run) error {
	m.Runs = append(m.Runs, *run)
	return nil
}

func (m *MockRepo) GetRuns(ctx context.Context, scheduleID string, limit int) ([]Run, error) {
	return m.Runs, nil
}

type MockTemplates struct {
	template.TemplateService
}

func (m *MockTemplates) GetTemplate(ctx context.Context, userID, id string) (*engine.Template, error) {
	if id != "billable-hours" {
		return nil, template.ErrTemplateNotFound
	}
	return &engine.Template{ID: id, Name: "Billable Hours", Category: engine.CategoryStandard}, nil
}

func (m *MockTemplates) Instantiate(ctx context.Context, userID, id string) (*template.Instance, error) {
	t, err := m.GetTemplate(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return &template.Instance{
		Template:      t,
		Configuration: engine.NewConfiguration(engine.SourceTimeEntries, "employee_name", "hours"),
	}, nil
}

type MockReports struct {
	report.ReportService
	Err error
}

func (m *MockReports) Export(ctx context.Context, cfg engine.Configuration, name, format string) (*report.ExportFile, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return &report.ExportFile{Name: "billable_hours_report." + format, ContentType: "text/csv", Data: []byte("a\n"), Rows: 4}, nil
}

type MockSink struct {
	Names []string
}

func (m *MockSink) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	m.Names = append(m.Names, name)
	return "/exports/" + name, nil
}

type MockAudit struct {
	Actions []common_models.AuditAction
}

func (m *MockAudit) LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error {
	m.Actions = append(m.Actions, action)
	return nil
}

func (m *MockAudit) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, error) {
	return nil, nil
}

type MockRecorder struct {
	OK, Failed int
}

func (m *MockRecorder) ObserveScheduledRun(ok bool) {
	if ok {
		m.OK++
	} else {
		m.Failed++
	}
}

type fixture struct {
	svc      *ScheduleServiceImpl
	repo     *MockRepo
	sink     *MockSink
	audit    *MockAudit
	recorder *MockRecorder
}

func newFixture(reports *MockReports, items ...Schedule) fixture {
	f := fixture{repo: newMockRepo(items...), sink: &MockSink{}, audit: &MockAudit{}, recorder: &MockRecorder{}}
	f.svc = NewScheduleService(f.repo, &MockTemplates{}, reports, f.sink, f.audit, f.recorder, zap.NewNop()).(*ScheduleServiceImpl)
	return f
}

func TestCreateSchedule(t *testing.T) {
	inactive := false
	tests := []struct {
		name       string
		req        CreateScheduleRequest
		wantErr    error
		wantFormat string
		wantActive bool
	}{
		{"valid csv", CreateScheduleRequest{TemplateID: "billable-hours", Cron: "0 6 * * 1"}, nil, "csv", true},
		{"excel alias", CreateScheduleRequest{TemplateID: "billable-hours", Cron: "@daily", Format: "Excel"}, nil, "xlsx", true},
		{"inactive", CreateScheduleRequest{TemplateID: "billable-hours", Cron: "0 6 * * *", Active: &inactive}, nil, "csv", false},
		{"bad cron", CreateScheduleRequest{TemplateID: "billable-hours", Cron: "every monday"}, ErrInvalidCron, "", false},
		{"bad format", CreateScheduleRequest{TemplateID: "billable-hours", Cron: "0 6 * * *", Format: "pdf"}, report.ErrUnsupportedFormat, "", false},
		{"unknown template", CreateScheduleRequest{TemplateID: "nope", Cron: "0 6 * * *"}, template.ErrTemplateNotFound, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(&MockReports{})
			got, err := f.svc.CreateSchedule(context.Background(), "alice", tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got.Format != tt.wantFormat || got.Active != tt.wantActive {
				t.Errorf("schedule = %+v", got)
			}
			if got.Name != "Billable Hours" || got.NextRunAt == nil {
				t.Errorf("schedule = %+v", got)
			}
			if _, ok := f.repo.Items[got.ID]; !ok {
				t.Error("schedule not stored")
			}
			if len(f.audit.Actions) != 1 || f.audit.Actions[0] != common_models.AuditActionCreate {
				t.Errorf("audit = %v", f.audit.Actions)
			}
		})
	}
}

func testSchedule(owner string) Schedule {
	return Schedule{ID: "s1", Name: "Weekly hours", TemplateID: "billable-hours", OwnerID: owner, Cron: "0 6 * * 1", Format: "csv", Active: true}
}

func TestTriggerDeliversExport(t *testing.T) {
	f := newFixture(&MockReports{}, testSchedule("alice"))

	run, err := f.svc.TriggerSchedule(context.Background(), "alice", "s1")
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != "success" || run.RowCount != 4 || run.Trigger != TriggerManual {
		t.Errorf("run = %+v", run)
	}
	if len(f.sink.Names) != 1 || f.sink.Names[0] != "billable_hours_report.csv" {
		t.Errorf("sink received %v", f.sink.Names)
	}
	if last := f.repo.LastRun["s1"]; last.Location != "/exports/billable_hours_report.csv" || last.Error != "" {
		t.Errorf("last run = %+v", last)
	}
	if f.recorder.OK != 1 || len(f.repo.Runs) != 1 {
		t.Errorf("recorder = %+v, runs = %d", f.recorder, len(f.repo.Runs))
	}
}

func TestTriggerFailureRecordsLastError(t *testing.T) {
	f := newFixture(&MockReports{Err: engine.ErrNoResult}, testSchedule("alice"))

	run, err := f.svc.TriggerSchedule(context.Background(), "alice", "s1")
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != "failed" {
		t.Errorf("status = %s", run.Status)
	}
	if got := f.repo.LastRun["s1"].Error; got != "could not run report" {
		t.Errorf("last error = %q", got)
	}
	if len(f.sink.Names) != 0 {
		t.Error("failed run should not deliver a file")
	}
	if f.recorder.Failed != 1 {
		t.Errorf("recorder = %+v", f.recorder)
	}
}

func TestScheduleOwnership(t *testing.T) {
	f := newFixture(&MockReports{}, testSchedule("alice"))
	ctx := context.Background()

	if _, err := f.svc.TriggerSchedule(ctx, "bob", "s1"); !errors.Is(err, ErrForbidden) {
		t.Errorf("trigger err = %v", err)
	}
	if err := f.svc.DeleteSchedule(ctx, "bob", "s1"); !errors.Is(err, ErrForbidden) {
		t.Errorf("delete err = %v", err)
	}
	if _, err := f.svc.ListRuns(ctx, "bob", "s1", 10); !errors.Is(err, ErrForbidden) {
		t.Errorf("runs err = %v", err)
	}
	if err := f.svc.DeleteSchedule(ctx, "alice", "missing"); !errors.Is(err, ErrScheduleNotFound) {
		t.Errorf("missing err = %v", err)
	}
}

func TestSchedulerRegistration(t *testing.T) {
	paused := testSchedule("alice")
	paused.ID = "s2"
	paused.Active = false
	f := newFixture(&MockReports{}, testSchedule("alice"), paused)
	ctx := context.Background()

	if err := f.svc.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer f.svc.Stop(ctx)

	if len(f.svc.jobEntries) != 1 {
		t.Fatalf("registered %d schedules, want 1", len(f.svc.jobEntries))
	}
	if _, ok := f.svc.jobEntries["s1"]; !ok {
		t.Error("active schedule not registered")
	}

	created, err := f.svc.CreateSchedule(ctx, "alice", CreateScheduleRequest{TemplateID: "billable-hours", Cron: "@hourly"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := f.svc.jobEntries[created.ID]; !ok {
		t.Error("new schedule not registered")
	}

	if err := f.svc.DeleteSchedule(ctx, "alice", "s1"); err != nil {
		t.Fatal(err)
	}
	if _, ok := f.svc.jobEntries["s1"]; ok {
		t.Error("deleted schedule still registered")
	}
}
