package schedule

import (
	"context"
	"errors"
	"time"

	"go-contractor/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ScheduleRepository interface {
	Create(ctx context.Context, s *Schedule) error
	GetByID(ctx context.Context, id string) (*Schedule, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Schedule, error)
	GetActive(ctx context.Context) ([]Schedule, error)
	Delete(ctx context.Context, id string) error
	UpdateLastRun(ctx context.Context, id string, run Run, nextRun *time.Time) error

	CreateRun(ctx context.Context, run *Run) error
	GetRuns(ctx context.Context, scheduleID string, limit int) ([]Run, error)
}

type ScheduleRepositoryImpl struct {
	collection    *mongo.Collection
	runCollection *mongo.Collection
}

func NewScheduleRepository(db *database.MongodbDB) ScheduleRepository {
	return &ScheduleRepositoryImpl{
		collection:    db.DB.Collection("report_schedules"),
		runCollection: db.DB.Collection("report_schedule_runs"),
	}
}

func (r *ScheduleRepositoryImpl) Create(ctx context.Context, s *Schedule) error {
	_, err := r.collection.InsertOne(ctx, s)
	return err
}

func (r *ScheduleRepositoryImpl) GetByID(ctx context.Context, id string) (*Schedule, error) {
	var s Schedule
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrScheduleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ScheduleRepositoryImpl) list(ctx context.Context, filter bson.M) ([]Schedule, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	schedules := []Schedule{}
	if err := cursor.All(ctx, &schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *ScheduleRepositoryImpl) ListByOwner(ctx context.Context, ownerID string) ([]Schedule, error) {
	return r.list(ctx, bson.M{"owner_id": ownerID})
}

func (r *ScheduleRepositoryImpl) GetActive(ctx context.Context) ([]Schedule, error) {
	return r.list(ctx, bson.M{"active": true})
}

func (r *ScheduleRepositoryImpl) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrScheduleNotFound
	}
	return nil
}

func (r *ScheduleRepositoryImpl) UpdateLastRun(ctx context.Context, id string, run Run, nextRun *time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"last_run_at": run.StartTime,
			"next_run_at": nextRun,
			"last_error":  run.Error,
			"last_file":   run.Location,
			"updated_at":  time.Now(),
		},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

func (r *ScheduleRepositoryImpl) CreateRun(ctx context.Context, run *Run) error {
	_, err := r.runCollection.InsertOne(ctx, run)
	return err
}

func (r *ScheduleRepositoryImpl) GetRuns(ctx context.Context, scheduleID string, limit int) ([]Run, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.runCollection.Find(ctx, bson.M{"schedule_id": scheduleID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	runs := []Run{}
	if err := cursor.All(ctx, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}
