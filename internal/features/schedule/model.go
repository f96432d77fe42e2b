package schedule

import "time"

// Schedule exports a template on a cron expression and hands the file to the
// configured sink.
type Schedule struct {
	ID         string     `json:"id" bson:"_id"`
	Name       string     `json:"name" bson:"name"`
	TemplateID string     `json:"template_id" bson:"template_id"`
	OwnerID    string     `json:"owner_id" bson:"owner_id"`
	Cron       string     `json:"cron" bson:"cron"`
	Format     string     `json:"format" bson:"format"`
	Active     bool       `json:"active" bson:"active"`
	LastRunAt  *time.Time `json:"last_run_at,omitempty" bson:"last_run_at,omitempty"`
	NextRunAt  *time.Time `json:"next_run_at,omitempty" bson:"next_run_at,omitempty"`
	LastError  string     `json:"last_error,omitempty" bson:"last_error,omitempty"`
	LastFile   string     `json:"last_file,omitempty" bson:"last_file,omitempty"`
	CreatedAt  time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" bson:"updated_at"`
}

// Run is one execution of a schedule.
type Run struct {
	ID         string     `json:"id" bson:"_id"`
	ScheduleID string     `json:"schedule_id" bson:"schedule_id"`
	StartTime  time.Time  `json:"start_time" bson:"start_time"`
	EndTime    *time.Time `json:"end_time,omitempty" bson:"end_time,omitempty"`
	Status     string     `json:"status" bson:"status"` // "success", "failed"
	Trigger    string     `json:"trigger" bson:"trigger"`
	RowCount   int        `json:"row_count" bson:"row_count"`
	Location   string     `json:"location,omitempty" bson:"location,omitempty"`
	Error      string     `json:"error,omitempty" bson:"error,omitempty"`
}

const (
	TriggerCron   = "cron"
	TriggerManual = "manual"
)

type CreateScheduleRequest struct {
	Name       string `json:"name"`
	TemplateID string `json:"template_id"`
	Cron       string `json:"cron"`
	Format     string `json:"format"`
	Active     *bool  `json:"active"`
}
