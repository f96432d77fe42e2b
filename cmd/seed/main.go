package main

import (
	"context"
	"fmt"
	"time"

	"go-contractor/internal/config"
	"go-contractor/internal/database"
	"go-contractor/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// demoData returns documents per collection. Ids are strings so joins work
// without ObjectID conversion.
func demoData() map[string][]bson.M {
	created := day("2026-01-05")

	return map[string][]bson.M{
		"clients": {
			{"_id": "c-1", "name": "Harbor View HOA", "email": "board@harborview.example"},
			{"_id": "c-2", "name": "Maple Street Clinic", "email": "facilities@maplest.example"},
			{"_id": "c-3", "name": "County School District", "email": "capital@county.example"},
		},
		"payees": {
			{"_id": "v-1", "name": "Redline Electric", "trade": "Electrical"},
			{"_id": "v-2", "name": "Summit Plumbing", "trade": "Plumbing"},
			{"_id": "v-3", "name": "Ironside Framing", "trade": "Framing"},
			{"_id": "v-4", "name": "Metro Lumber Supply", "trade": "Materials"},
		},
		"employees": {
			{"_id": "e-1", "number": "E-101", "name": "Dana Ortiz"},
			{"_id": "e-2", "number": "E-102", "name": "Sam Whitfield"},
			{"_id": "e-3", "number": "E-103", "name": "Priya Raman"},
		},
		"projects": {
			{"_id": "p-1", "number": "P-001", "name": "Clubhouse Renovation", "client_id": "c-1", "payee_id": "v-3",
				"status": "active", "project_type": "Renovation", "start_date": day("2026-02-01"), "end_date": day("2026-07-30"),
				"contract_amount": 248500.00, "tax_exempt": false, "created_at": created},
			{"_id": "p-2", "number": "P-002", "name": "Clinic Tenant Fit-Out", "client_id": "c-2", "payee_id": "v-1",
				"status": "active", "project_type": "Commercial", "start_date": day("2026-03-10"), "end_date": nil,
				"contract_amount": 132000.00, "tax_exempt": false, "created_at": created},
			{"_id": "p-3", "number": "P-003", "name": "Elementary Roof Replacement", "client_id": "c-3", "payee_id": "v-3",
				"status": "completed", "project_type": "Public Works", "start_date": day("2025-06-15"), "end_date": day("2025-08-20"),
				"contract_amount": 415750.50, "tax_exempt": true, "created_at": created},
			{"_id": "p-4", "number": "P-004", "name": "Gym Locker Rooms", "client_id": "c-3", "payee_id": "v-2",
				"status": "bidding", "project_type": "Public Works", "start_date": nil, "end_date": nil,
				"contract_amount": nil, "tax_exempt": true, "created_at": created},
		},
		"estimates": {
			{"_id": "es-1", "number": "EST-1001", "name": "Clubhouse base scope", "project_id": "p-1", "client_id": "c-1",
				"status": "accepted", "revision": 2, "subtotal": 231000.00, "total_amount": 248500.00,
				"valid_until": day("2026-01-31"), "created_at": created},
			{"_id": "es-2", "number": "EST-1002", "name": "Locker rooms", "project_id": "p-4", "client_id": "c-3",
				"status": "sent", "revision": 1, "subtotal": 188400.00, "total_amount": 188400.00,
				"valid_until": day("2026-11-30"), "created_at": created},
			{"_id": "es-3", "number": "EST-1003", "name": "Locker rooms alternate", "project_id": "p-4", "client_id": "c-3",
				"status": "draft", "revision": 1, "subtotal": 201250.00, "total_amount": 201250.00,
				"valid_until": nil, "created_at": created},
		},
		"quotes": {
			{"_id": "q-1", "number": "Q-501", "name": "Locker room plumbing", "estimate_id": "es-2", "payee_id": "v-2",
				"trade": "Plumbing", "status": "received", "amount": 46200.00, "received_date": day("2026-09-02"),
				"accepted": false, "created_at": created},
			{"_id": "q-2", "number": "Q-502", "name": "Locker room electrical", "estimate_id": "es-2", "payee_id": "v-1",
				"trade": "Electrical", "status": "received", "amount": 28950.00, "received_date": day("2026-09-04"),
				"accepted": false, "created_at": created},
			{"_id": "q-3", "number": "Q-480", "name": "Clubhouse framing", "estimate_id": "es-1", "payee_id": "v-3",
				"trade": "Framing", "status": "accepted", "amount": 61800.00, "received_date": day("2025-12-12"),
				"accepted": true, "created_at": created},
		},
		"expenses": {
			{"_id": "x-1", "expense_date": day("2026-02-14"), "description": "Framing lumber", "category": "Materials",
				"amount": 8240.17, "project_id": "p-1", "payee_id": "v-4", "payment_method": "Account",
				"receipt_attached": true, "created_at": created},
			{"_id": "x-2", "expense_date": day("2026-03-02"), "description": "Dumpster rental", "category": "Equipment",
				"amount": 650.00, "project_id": "p-1", "payee_id": nil, "payment_method": "Card",
				"receipt_attached": false, "created_at": created},
			{"_id": "x-3", "expense_date": day("2026-03-18"), "description": "Panel upgrade", "category": "Subcontract",
				"amount": 12400.00, "project_id": "p-2", "payee_id": "v-1", "payment_method": "Check",
				"receipt_attached": false, "created_at": created},
			{"_id": "x-4", "expense_date": nil, "description": "Permit fees", "category": "Permits",
				"amount": 1875.00, "project_id": "p-2", "payee_id": nil, "payment_method": "Card",
				"receipt_attached": true, "created_at": created},
		},
		"time_entries": {
			{"_id": "t-1", "work_date": day("2026-03-09"), "employee_id": "e-1", "project_id": "p-1",
				"hours": 8.0, "hourly_rate": 62.50, "billable": true, "notes": "Demo and haul-off", "created_at": created},
			{"_id": "t-2", "work_date": day("2026-03-09"), "employee_id": "e-2", "project_id": "p-1",
				"hours": 7.5, "hourly_rate": 48.00, "billable": true, "notes": "", "created_at": created},
			{"_id": "t-3", "work_date": day("2026-03-10"), "employee_id": "e-3", "project_id": "p-2",
				"hours": 4.0, "hourly_rate": 75.00, "billable": false, "notes": "Estimating", "created_at": created},
		},
		"training_records": {
			{"_id": "tr-1", "employee_id": "e-1", "course_name": "OSHA 30 Construction", "provider": "SafetyFirst",
				"completed_date": day("2025-04-12"), "expires_date": day("2030-04-12"), "hours": 30.0,
				"cost": 189.00, "certified": true, "created_at": created},
			{"_id": "tr-2", "employee_id": "e-2", "course_name": "Fall Protection", "provider": "SafetyFirst",
				"completed_date": day("2026-01-20"), "expires_date": nil, "hours": 8.0,
				"cost": 95.00, "certified": true, "created_at": created},
			{"_id": "tr-3", "employee_id": "e-3", "course_name": "Lead Renovator (RRP)", "provider": "EPA",
				"completed_date": nil, "expires_date": nil, "hours": 8.0,
				"cost": 240.00, "certified": false, "created_at": created},
		},
	}
}

// upsertAll replaces documents by _id so the seeder can run repeatedly.
func upsertAll(ctx context.Context, coll *mongo.Collection, docs []bson.M) (int, error) {
	opts := options.Replace().SetUpsert(true)
	for i, doc := range docs {
		if _, err := coll.ReplaceOne(ctx, bson.M{"_id": doc["_id"]}, doc, opts); err != nil {
			return i, fmt.Errorf("%s %v: %w", coll.Name(), doc["_id"], err)
		}
	}
	return len(docs), nil
}

// Seed loads the demo construction data into MongoDB
func Seed(lc fx.Lifecycle, mongodb *database.MongodbDB, logger *zap.Logger, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						logger.Error("Failed to shutdown", zap.Error(err))
					}
				}()

				logger.Info("🌱 Seeding demo construction data...")

				ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
				defer cancel()

				// lookups first so joined fields resolve as soon as projects land
				order := []string{"clients", "payees", "employees", "projects", "estimates", "quotes", "expenses", "time_entries", "training_records"}
				data := demoData()
				for _, name := range order {
					n, err := upsertAll(ctx, mongodb.DB.Collection(name), data[name])
					if err != nil {
						logger.Error("Seeding failed", zap.String("collection", name), zap.Error(err))
						return
					}
					logger.Info("Seeded collection", zap.String("collection", name), zap.Int("documents", n))
				}

				logger.Info("✅ Seeding completed")
			}()
			return nil
		},
	})
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			database.NewDatabase,
			logger.NewLogger,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(Seed),
	)

	app.Run()
}
