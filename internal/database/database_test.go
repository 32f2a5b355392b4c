package database

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()
	d, err := New(context.Background(), filepath.Join(t.TempDir(), "pixelfin.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})
	return d
}

func testSettings() Settings {
	return Settings{
		Server:       "http://jellyfin:8096",
		APIKey:       "secret",
		Images:       []string{"p", "bd", "l"},
		MinWidth:     1280,
		MinHeight:    720,
		ZipNames:     map[string]string{"bd": "bg"},
		BGColor:      "#000000",
		TextColor:    "#ffffff",
		TableBGColor: "#111111",
	}
}

func TestSaveAndLoadSettings(t *testing.T) {
	d := newTestDB(t)
	want := testSettings()

	if err := d.SaveSettings("Movies", want); err != nil {
		t.Fatalf("SaveSettings() error: %v", err)
	}

	got, found, err := d.LibrarySettings("Movies")
	if err != nil {
		t.Fatalf("LibrarySettings() error: %v", err)
	}
	if !found {
		t.Fatal("expected stored settings to be found")
	}
	if got.Server != want.Server || got.MinWidth != want.MinWidth || len(got.Images) != 3 {
		t.Errorf("loaded settings = %+v, want %+v", got, want)
	}
	if got.ZipNames["bd"] != "bg" {
		t.Errorf("zip names not round-tripped: %+v", got.ZipNames)
	}

	last, found, err := d.LastUsed()
	if err != nil {
		t.Fatalf("LastUsed() error: %v", err)
	}
	if !found || last.Server != want.Server {
		t.Errorf("last-used settings = %+v (found=%v)", last, found)
	}
}

func TestLibrarySettingsNotFound(t *testing.T) {
	d := newTestDB(t)

	_, found, err := d.LibrarySettings("Nope")
	if err != nil {
		t.Fatalf("LibrarySettings() error: %v", err)
	}
	if found {
		t.Error("expected not found for unknown library")
	}
}

func TestHistory(t *testing.T) {
	d := newTestDB(t)

	s := testSettings()
	if err := d.SaveSettings("Movies", s); err != nil {
		t.Fatalf("SaveSettings() error: %v", err)
	}
	s.Server = "http://emby:8920"
	if err := d.SaveSettings("anime", s); err != nil {
		t.Fatalf("SaveSettings() error: %v", err)
	}

	servers, libraries, err := d.History()
	if err != nil {
		t.Fatalf("History() error: %v", err)
	}
	if len(servers) != 2 {
		t.Errorf("expected 2 servers, got %v", servers)
	}
	if len(libraries) != 2 || libraries[0] != "anime" || libraries[1] != "Movies" {
		t.Errorf("expected case-insensitive alphabetical libraries, got %v", libraries)
	}
}

func TestSaveSettingsIsIdempotent(t *testing.T) {
	d := newTestDB(t)
	s := testSettings()

	for i := 0; i < 3; i++ {
		if err := d.SaveSettings("Movies", s); err != nil {
			t.Fatalf("SaveSettings() round %d error: %v", i, err)
		}
	}

	servers, libraries, err := d.History()
	if err != nil {
		t.Fatalf("History() error: %v", err)
	}
	if len(servers) != 1 || len(libraries) != 1 {
		t.Errorf("repeated saves must not duplicate history: %v / %v", servers, libraries)
	}
}

func TestRunLifecycle(t *testing.T) {
	d := newTestDB(t)

	if err := d.CreateRun("run-1", "Movies", RunKindHTML); err != nil {
		t.Fatalf("CreateRun() error: %v", err)
	}

	rec, found, err := d.Run("run-1")
	if err != nil || !found {
		t.Fatalf("Run() = %v, found=%v", err, found)
	}
	if rec.Status != RunRunning || rec.FinishedAt != nil {
		t.Errorf("fresh run should be running with no finish time: %+v", rec)
	}

	if err := d.FinishRun("run-1", RunSucceeded, "output/Movies/r.html", 2, ""); err != nil {
		t.Fatalf("FinishRun() error: %v", err)
	}

	rec, _, err = d.Run("run-1")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if rec.Status != RunSucceeded || rec.Artifact != "output/Movies/r.html" || rec.Diagnostics != 2 {
		t.Errorf("finished run = %+v", rec)
	}
	if rec.FinishedAt == nil {
		t.Error("finished run must carry a finish time")
	}
}

func TestRunNotFound(t *testing.T) {
	d := newTestDB(t)

	_, found, err := d.Run("missing")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if found {
		t.Error("expected not found")
	}
}

func TestRecentRuns(t *testing.T) {
	d := newTestDB(t)

	for _, id := range []string{"a", "b", "c"} {
		if err := d.CreateRun(id, "Movies", RunKindZIP); err != nil {
			t.Fatalf("CreateRun(%s) error: %v", id, err)
		}
	}

	runs, err := d.RecentRuns(2)
	if err != nil {
		t.Fatalf("RecentRuns() error: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected limit to apply, got %d runs", len(runs))
	}
}
