package engine

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"go-contractor/internal/datastore"
)

type MockClient struct {
	Rows     []datastore.Row
	Err      error
	Calls    int
	Captured datastore.Request
}

func (m *MockClient) Query(ctx context.Context, req datastore.Request) ([]datastore.Row, error) {
	m.Calls++
	m.Captured = req
	return m.Rows, m.Err
}
func (m *MockClient) Ping(ctx context.Context) error { return nil }
func (m *MockClient) Driver() string                 { return "mock" }

type MockRecorder struct {
	OK, Failed int
	Dropped    int
}

func (m *MockRecorder) ObserveExecution(source string, ok bool, elapsed time.Duration, dropped int) {
	if ok {
		m.OK++
	} else {
		m.Failed++
	}
	m.Dropped += dropped
}

func TestExecuteFailureIsSentinelWithoutRetry(t *testing.T) {
	client := &MockClient{Err: errors.New("connection reset")}
	rec := &MockRecorder{}
	exec := NewExecutor(NewTranslator(NewConstructionCatalog(), 0, 0), client, nil, rec)

	res, err := exec.Execute(context.Background(), NewConfiguration(SourceProjects, "project_name"))
	if !errors.Is(err, ErrNoResult) || res != nil {
		t.Fatalf("Execute() = %v, %v; want nil, ErrNoResult", res, err)
	}
	if client.Calls != 1 {
		t.Errorf("backend called %d times, want 1", client.Calls)
	}
	if rec.Failed != 1 {
		t.Errorf("recorder failures = %d, want 1", rec.Failed)
	}
}

func TestExecuteCapsRowsAndProjectsFields(t *testing.T) {
	rows := make([]datastore.Row, 8)
	for i := range rows {
		rows[i] = datastore.Row{"project_name": "p", "extra": 1}
	}
	client := &MockClient{Rows: rows}
	exec := NewExecutor(NewTranslator(NewConstructionCatalog(), 0, 0), client, nil, nil)

	cfg := NewConfiguration(SourceProjects, "project_name", "legacy_code").SetLimit(3)
	res, err := exec.Execute(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.RowCount != 3 || len(res.Rows) != 3 {
		t.Errorf("RowCount = %d, want 3", res.RowCount)
	}
	row := res.Rows[0]
	if _, ok := row["extra"]; ok {
		t.Error("row kept a column outside the field list")
	}
	if v, ok := row["legacy_code"]; !ok || v != nil {
		t.Errorf("drifted field = %v (present %v), want absent value", v, ok)
	}
}

func TestExecuteDropsInvalidFilterAndAppliesTheRest(t *testing.T) {
	client := &MockClient{}
	exec := NewExecutor(NewTranslator(NewConstructionCatalog(), 0, 0), client, nil, nil)

	cfg := NewConfiguration(SourceExpenses, "amount")
	cfg, _ = cfg.AddFilter(NewPredicate("category", OpEquals, Single{V: Text("Fuel")}))
	withBad, badID := cfg.AddFilter(NewPredicate("does_not_exist", OpEquals, Single{V: Text("x")}))

	if _, err := exec.Execute(context.Background(), cfg); err != nil {
		t.Fatal(err)
	}
	clean := client.Captured

	res, err := exec.Execute(context.Background(), withBad)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Dropped) != 1 || res.Dropped[0] != badID {
		t.Errorf("Dropped = %v", res.Dropped)
	}
	if len(client.Captured.Where) != len(clean.Where) || client.Captured.Where[0].Values[0] != "Fuel" {
		t.Errorf("Where = %+v, want same as without the bad filter", client.Captured.Where)
	}
}

func newScenarioDB(t *testing.T) datastore.Client {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	for _, s := range []string{
		`CREATE TABLE projects (id TEXT, number TEXT, name TEXT, client_id TEXT, payee_id TEXT, status TEXT, project_type TEXT, start_date TEXT, end_date TEXT, contract_amount REAL, tax_exempt INTEGER, created_at TEXT)`,
		`CREATE TABLE clients (id TEXT, name TEXT, email TEXT)`,
		`INSERT INTO clients VALUES ('c1', 'Acme Homes', 'ops@acme.test')`,
		`INSERT INTO projects VALUES ('p1', 'P-001', 'Kitchen', 'c1', NULL, 'active', 'remodel', '2024-01-05', NULL, 1234.5, 0, '2024-01-01 08:00:00')`,
		`INSERT INTO projects VALUES ('p2', 'P-002', 'Deck', NULL, NULL, 'active', 'build', '2024-02-01', NULL, NULL, 0, '2024-01-02 08:00:00')`,
		`INSERT INTO projects VALUES ('p3', 'P-003', 'Roof', 'c1', NULL, 'closed', 'repair', '2023-12-31', NULL, 800, 1, '2024-01-03 08:00:00')`,
	} {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("%s: %v", s, err)
		}
	}
	return datastore.NewSQLClient(db, datastore.SQLite)
}

func TestBetweenDatesScenario(t *testing.T) {
	cat := NewConstructionCatalog()
	exec := NewExecutor(NewTranslator(cat, 0, 0), newScenarioDB(t), nil, nil)

	value, err := ParseValue(FieldTypeDate, OpBetween, []any{"2024-01-01", "2024-01-31"})
	if err != nil {
		t.Fatal(err)
	}
	cfg, _ := NewConfiguration(SourceProjects, "project_number", "start_date").AddFilter(NewPredicate("start_date", OpBetween, value))

	res, err := exec.Execute(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.RowCount != 1 || res.Rows[0]["project_number"] != "P-001" {
		t.Errorf("rows = %v, want only P-001", res.Rows)
	}
}

func TestMissingJoinMatchIsAbsentNotExcluded(t *testing.T) {
	exec := NewExecutor(NewTranslator(NewConstructionCatalog(), 0, 0), newScenarioDB(t), nil, nil)

	cfg := NewConfiguration(SourceProjects, "project_number", "client_name").SetSort("project_number", SortAsc)
	res, err := exec.Execute(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.RowCount != 3 {
		t.Fatalf("RowCount = %d, want 3", res.RowCount)
	}
	if res.Rows[1]["client_name"] != nil {
		t.Errorf("P-002 client_name = %v, want nil", res.Rows[1]["client_name"])
	}
}

func TestExecuteIsIdempotent(t *testing.T) {
	cat := NewConstructionCatalog()
	exec := NewExecutor(NewTranslator(cat, 0, 0), newScenarioDB(t), nil, nil)
	shaper := NewShaper("$", "", DateFallbackBlank)
	cfg := NewConfiguration(SourceProjects, "project_number", "contract_amount", "start_date")

	first, err := exec.Execute(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	second, err := exec.Execute(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	a, b := shaper.Shape(first.Rows, first.Fields), shaper.Shape(second.Rows, second.Fields)
	for i := range a.Rows {
		for j := range a.Rows[i] {
			if a.Rows[i][j] != b.Rows[i][j] {
				t.Fatalf("cell (%d,%d) differs: %q vs %q", i, j, a.Rows[i][j], b.Rows[i][j])
			}
		}
	}
	// created_at desc is the default order
	if a.Rows[0][0] != "P-003" {
		t.Errorf("first row = %v, want P-003", a.Rows[0])
	}
}

func TestTiedSortKeysOrderById(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	for _, s := range []string{
		`CREATE TABLE expenses (id TEXT, description TEXT, amount REAL, created_at TEXT)`,
		`INSERT INTO expenses VALUES ('x3', 'Dumpster', 650, '2026-01-05 00:00:00')`,
		`INSERT INTO expenses VALUES ('x1', 'Lumber', 8240.17, '2026-01-05 00:00:00')`,
		`INSERT INTO expenses VALUES ('x2', 'Permits', 1875, '2026-01-05 00:00:00')`,
	} {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("%s: %v", s, err)
		}
	}
	exec := NewExecutor(NewTranslator(NewConstructionCatalog(), 0, 0), datastore.NewSQLClient(db, datastore.SQLite), nil, nil)

	for _, limit := range []int{0, 2} {
		res, err := exec.Execute(context.Background(), NewConfiguration(SourceExpenses, "description").SetLimit(limit))
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		want := []string{"Lumber", "Permits", "Dumpster"}
		if limit > 0 {
			want = want[:limit]
		}
		if res.RowCount != len(want) {
			t.Fatalf("limit %d: RowCount = %d, want %d", limit, res.RowCount, len(want))
		}
		for i, w := range want {
			if res.Rows[i]["description"] != w {
				t.Errorf("limit %d: row %d = %v, want %s", limit, i, res.Rows[i]["description"], w)
			}
		}
	}
}
