//go:build integration

package mysql_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"flex_reviews/internal/app"
	"flex_reviews/internal/domain"
	mysqlrepo "flex_reviews/internal/storage/mysql"
)

func migrationsDir(t *testing.T) string {
	t.Helper()
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return filepath.Join("..", "..", "..", "migrations")
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := migrationsDir(t)

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir %s: %v", dir, err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=flex",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/flex?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		resource.GetPort("3306/tcp"))

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRepo_MySQL_StateRoundTrip(t *testing.T) {
	db := startMySQL(t)
	applyMigrations(t, db)

	repo := mysqlrepo.New(db)
	ctx := context.Background()

	// schema bootstrap must be idempotent on top of migrations
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}

	if _, ok, err := repo.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("expected absent key, got ok=%v err=%v", ok, err)
	}
	put := func(v string) func([]byte) ([]byte, error) {
		return func([]byte) ([]byte, error) { return []byte(v), nil }
	}
	if err := repo.Update(ctx, "flex-review-notes", put(`{"1":"a"}`)); err != nil {
		t.Fatalf("Update: %v", err)
	}
	var seen []byte
	err := repo.Update(ctx, "flex-review-notes", func(cur []byte) ([]byte, error) {
		seen = cur
		return []byte(`{"1":"b"}`), nil
	})
	if err != nil || string(seen) != `{"1":"a"}` {
		t.Fatalf("Update overwrite: seen=%q err=%v", seen, err)
	}
	b, ok, err := repo.Get(ctx, "flex-review-notes")
	if err != nil || !ok || string(b) != `{"1":"b"}` {
		t.Fatalf("unexpected Get: %q ok=%v err=%v", b, ok, err)
	}

	boom := errors.New("boom")
	if err := repo.Update(ctx, "flex-living-approvals", func([]byte) ([]byte, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}
	if _, ok, _ := repo.Get(ctx, "flex-living-approvals"); ok {
		t.Fatalf("rolled back update must not leave a row")
	}

	if err := repo.Update(ctx, "flex-review-notes", func([]byte) ([]byte, error) { return nil, nil }); err != nil {
		t.Fatalf("Update to nil: %v", err)
	}
	if _, ok, _ := repo.Get(ctx, "flex-review-notes"); ok {
		t.Fatalf("expected key gone")
	}
}

func TestRepo_MySQL_OverlaySurvivesReload(t *testing.T) {
	db := startMySQL(t)
	applyMigrations(t, db)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	ov := app.LoadOverlay(ctx, repo)
	if _, err := ov.ToggleApproval(ctx, "7453"); err != nil {
		t.Fatalf("ToggleApproval: %v", err)
	}
	if err := ov.SetStatus(ctx, "7453", domain.StatusResolved); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if err := ov.SetNote(ctx, "7453", "  called guest  "); err != nil {
		t.Fatalf("SetNote: %v", err)
	}

	reloaded := app.LoadOverlay(ctx, repo)
	e := reloaded.Entry("7453")
	if !e.Approved || e.Status != domain.StatusResolved || e.Note != "called guest" {
		t.Fatalf("unexpected overlay after reload: %+v", e)
	}
}

func TestRepo_MySQL_ConcurrentSessionsKeepEveryApproval(t *testing.T) {
	db := startMySQL(t)
	applyMigrations(t, db)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	sessions := []*app.OverlayStore{app.LoadOverlay(ctx, repo), app.LoadOverlay(ctx, repo)}
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := sessions[i%2].ToggleApproval(ctx, fmt.Sprintf("r%02d", i)); err != nil {
				t.Errorf("ToggleApproval: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if got := app.LoadOverlay(ctx, repo).ApprovedIDs(); len(got) != 20 {
		t.Fatalf("expected 20 approvals, got %d: %v", len(got), got)
	}
}
