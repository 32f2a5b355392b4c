// Package runner orchestrates report runs: it loads a library from the
// media server, resolves and classifies every artwork slot, and writes
// the HTML report or ZIP export artifact to the output directory.
//
// Runs triggered over HTTP execute in the background and are recorded in
// the run history. Only one run may be active at a time; a file lock on
// the output directory extends the guard across processes.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"pixelfin/internal/archive"
	"pixelfin/internal/artwork"
	"pixelfin/internal/database"
	"pixelfin/internal/imagemeta"
	"pixelfin/internal/jellyfin"
	"pixelfin/internal/logging"
	"pixelfin/internal/metrics"
	"pixelfin/internal/report"
	"pixelfin/internal/workers"
)

const (
	// Upper bound on concurrent image fetches against the media server.
	maxFetchWorkers = 16

	artifactTimeFormat = "2006-01-02 15-04-05"
)

var (
	ErrRunActive     = errors.New("runner: another run is already in progress")
	ErrInvalidConfig = errors.New("runner: invalid run configuration")
)

// Kind selects the artifact a run produces.
type Kind string

const (
	KindHTML Kind = "html"
	KindZIP  Kind = "zip"
)

// Config is the full input of one run. It is self-contained: the runner
// never reads stored settings itself.
type Config struct {
	Server  string
	APIKey  string
	Library string

	Types      []artwork.Type
	Thresholds artwork.Thresholds

	Colors        report.Colors
	Embedded      bool
	EmbedMaxWidth int

	// ZipBaseNames overrides per-type export file names; Selections
	// narrows the ZIP export to specific slots. An empty selection
	// exports every resolved slot.
	ZipBaseNames map[artwork.Type]string
	Selections   []archive.Selection
}

// Result describes a finished run.
type Result struct {
	Library      string
	ArtifactPath string
	Summary      artwork.Summary
	Diagnostics  []string
}

// Runner executes runs against an output directory and records them in
// the run history database.
type Runner struct {
	db        *database.Database
	outputDir string

	mu     sync.Mutex
	active bool
	lock   *flock.Flock
}

// New creates a runner. The database may be nil for one-shot use without
// run history (the CLI does this).
func New(db *database.Database, outputDir string) *Runner {
	return &Runner{
		db:        db,
		outputDir: outputDir,
		lock:      flock.New(filepath.Join(outputDir, ".pixelfin.lock")),
	}
}

// Validate rejects configurations that can never produce a meaningful
// run. Rejection happens before any server contact.
func Validate(cfg Config) error {
	if cfg.Server == "" {
		return fmt.Errorf("%w: server URL is required", ErrInvalidConfig)
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("%w: API key is required", ErrInvalidConfig)
	}
	if cfg.Library == "" {
		return fmt.Errorf("%w: library name is required", ErrInvalidConfig)
	}
	if len(artwork.Tracked(cfg.Types)) == 0 {
		return fmt.Errorf("%w: at least one artwork type must be tracked", ErrInvalidConfig)
	}
	if cfg.Thresholds.MinWidth < 0 || cfg.Thresholds.MinHeight < 0 {
		return fmt.Errorf("%w: resolution thresholds must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Active reports whether a run is currently executing in this process.
func (r *Runner) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Start launches a background run and returns its id. It fails fast on
// invalid configuration or when another run is active.
func (r *Runner) Start(kind Kind, cfg Config) (string, error) {
	if err := Validate(cfg); err != nil {
		return "", err
	}

	if err := r.acquire(); err != nil {
		return "", err
	}

	runID := uuid.NewString()
	if r.db != nil {
		if err := r.db.CreateRun(runID, cfg.Library, database.RunKind(kind)); err != nil {
			r.release()
			return "", err
		}
	}

	go func() {
		defer r.release()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		res, err := r.run(ctx, kind, cfg)
		if err != nil {
			logging.Error("run %s failed: %v", runID, err)
			if r.db != nil {
				if dbErr := r.db.FinishRun(runID, database.RunFailed, "", len(res.Diagnostics), err.Error()); dbErr != nil {
					logging.Error("failed to record run %s failure: %v", runID, dbErr)
				}
			}
			return
		}

		logging.Info("run %s finished: %s (%d items, %d diagnostics)",
			runID, res.ArtifactPath, res.Summary.Items, len(res.Diagnostics))
		if r.db != nil {
			if dbErr := r.db.FinishRun(runID, database.RunSucceeded, res.ArtifactPath, len(res.Diagnostics), ""); dbErr != nil {
				logging.Error("failed to record run %s success: %v", runID, dbErr)
			}
		}
	}()

	return runID, nil
}

// Execute runs synchronously and returns the result. Used by the CLI and
// by tests; HTTP-triggered runs go through Start.
func (r *Runner) Execute(ctx context.Context, kind Kind, cfg Config) (Result, error) {
	if err := Validate(cfg); err != nil {
		return Result{}, err
	}
	if err := r.acquire(); err != nil {
		return Result{}, err
	}
	defer r.release()

	return r.run(ctx, kind, cfg)
}

func (r *Runner) acquire() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active {
		return ErrRunActive
	}
	locked, err := r.lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire output lock: %w", err)
	}
	if !locked {
		return ErrRunActive
	}
	r.active = true
	return nil
}

func (r *Runner) release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.lock.Unlock(); err != nil {
		logging.Warn("failed to release output lock: %v", err)
	}
	r.active = false
}

func (r *Runner) run(ctx context.Context, kind Kind, cfg Config) (Result, error) {
	start := time.Now()
	metrics.RunsActive.Inc()
	defer metrics.RunsActive.Dec()

	res, err := r.generate(ctx, kind, cfg)

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.RunsTotal.WithLabelValues(string(kind), status).Inc()
	metrics.RunDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
	return res, err
}

func (r *Runner) generate(ctx context.Context, kind Kind, cfg Config) (Result, error) {
	client := jellyfin.New(cfg.Server, cfg.APIKey)
	tracked := artwork.Tracked(cfg.Types)

	logging.Info("starting %s run for library %q against %s", kind, cfg.Library, client.BaseURL())

	userID, err := client.FirstUserID(ctx)
	if err != nil {
		return Result{}, err
	}
	lib, err := client.LibraryByName(ctx, userID, cfg.Library)
	if err != nil {
		return Result{}, err
	}
	items, err := client.LibraryItems(ctx, userID, lib)
	if err != nil {
		return Result{}, err
	}
	logging.Info("library %q: %d items", lib.Name, len(items))

	// Resolve slots before any image fetch so absent slots never cost a
	// network round trip.
	slotsByItem := make(map[string][]artwork.Slot, len(items))
	for _, it := range items {
		slots := artwork.Resolve(it, tracked)
		for i := range slots {
			if slots[i].Present {
				slots[i].ImageURL = client.ImageURL(it.ID, slots[i].Type, slots[i].Index, slots[i].Tag)
			}
		}
		slotsByItem[it.ID] = slots
	}

	diags := r.probeDimensions(ctx, client, items, slotsByItem, cfg.Thresholds)

	artwork.Disambiguate(items)
	rows, summary := artwork.Aggregate(items, slotsByItem)
	metrics.RunItemsReported.Set(float64(summary.Items))

	src := func(itemID string, slot artwork.Slot) ([]byte, error) {
		return client.FetchImage(ctx, slot.ImageURL)
	}

	var artifact string
	switch kind {
	case KindZIP:
		var zipDiags []string
		artifact, zipDiags, err = r.writeZip(rows, cfg, src)
		diags = append(diags, zipDiags...)
	default:
		var htmlDiags []string
		artifact, htmlDiags, err = r.writeHTML(rows, summary, lib.Name, cfg, src)
		diags = append(diags, htmlDiags...)
	}
	if err != nil {
		return Result{Library: lib.Name, Diagnostics: diags}, err
	}

	return Result{
		Library:      lib.Name,
		ArtifactPath: artifact,
		Summary:      summary,
		Diagnostics:  diags,
	}, nil
}

// probeDimensions fetches every present slot's image concurrently,
// records its dimensions and classifies it against the thresholds.
// Fetch and decode failures leave the slot's dimensions unknown and are
// reported as diagnostics.
func (r *Runner) probeDimensions(ctx context.Context, client *jellyfin.Client, items []*artwork.Item, slotsByItem map[string][]artwork.Slot, thresholds artwork.Thresholds) []string {
	type job struct {
		itemID string
		title  string
		slot   *artwork.Slot
	}

	var jobs []job
	for _, it := range items {
		slots := slotsByItem[it.ID]
		for i := range slots {
			if slots[i].Present {
				jobs = append(jobs, job{itemID: it.ID, title: it.Title, slot: &slots[i]})
			}
		}
	}
	if len(jobs) == 0 {
		return nil
	}

	workerCount := workers.ForIO(maxFetchWorkers)
	logging.Debug("probing %d image slots with %d workers", len(jobs), workerCount)

	var (
		mu    sync.Mutex
		diags []string
		wg    sync.WaitGroup
	)
	ch := make(chan job)

	for w := 0; w < workerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range ch {
				metrics.SlotsChecked.Inc()

				data, err := client.FetchImage(ctx, j.slot.ImageURL)
				if err == nil {
					var dims imagemeta.Dimensions
					dims, err = imagemeta.Probe(data)
					if err == nil {
						j.slot.Width = dims.Width
						j.slot.Height = dims.Height
						j.slot.DimsKnown = true
					}
				}
				if err != nil {
					metrics.ImageFetchFailures.Inc()
					mu.Lock()
					diags = append(diags, fmt.Sprintf("%s: could not determine size of %s: %v",
						j.title, j.slot.Caption(), err))
					mu.Unlock()
				}
			}
		}()
	}

	for _, j := range jobs {
		ch <- j
	}
	close(ch)
	wg.Wait()

	for _, slots := range slotsByItem {
		for i := range slots {
			artwork.Classify(&slots[i], thresholds)
		}
	}
	return diags
}

func (r *Runner) writeHTML(rows []artwork.Row, summary artwork.Summary, library string, cfg Config, src report.ImageSource) (string, []string, error) {
	opts := report.Options{
		LibraryName:   library,
		TrackedTypes:  cfg.Types,
		Colors:        cfg.Colors,
		Embedded:      cfg.Embedded,
		EmbedMaxWidth: cfg.EmbedMaxWidth,
	}
	if opts.Colors == (report.Colors{}) {
		opts.Colors = report.DefaultColors()
	}

	html, diags, err := report.Render(rows, summary, opts, report.ImageSource(src))
	if err != nil {
		return "", diags, err
	}

	path, err := r.writeArtifact(library, "html", []byte(html))
	return path, diags, err
}

func (r *Runner) writeZip(rows []artwork.Row, cfg Config, src report.ImageSource) (string, []string, error) {
	selected := cfg.Selections
	if len(selected) == 0 {
		for _, row := range rows {
			for _, s := range row.Slots {
				selected = append(selected, archive.Selection{ItemID: row.Item.ID, Type: s.Type, Index: s.Index})
			}
		}
	}

	var buf bytes.Buffer
	diags, err := archive.Build(&buf, rows, selected,
		archive.Overrides{BaseNames: cfg.ZipBaseNames}, archive.ImageSource(src))
	if err != nil {
		return "", diags, err
	}

	path, err := r.writeArtifact(cfg.Library, "zip", buf.Bytes())
	return path, diags, err
}

// writeArtifact writes artifact bytes under the library's output folder
// via a temp file plus rename, and returns the path relative to the
// output directory. A half-written artifact is never visible under its
// final name.
func (r *Runner) writeArtifact(library, ext string, data []byte) (string, error) {
	folder := sanitizeLibrary(library)
	dir := filepath.Join(r.outputDir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create library output directory: %w", err)
	}

	name := fmt.Sprintf("%s - %s.%s", time.Now().Format(artifactTimeFormat), folder, ext)

	tmp, err := os.CreateTemp(dir, ".artifact-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp artifact: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()         //nolint:errcheck
		os.Remove(tmpName)  //nolint:errcheck
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName) //nolint:errcheck
		return "", fmt.Errorf("failed to close artifact: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(dir, name)); err != nil {
		os.Remove(tmpName) //nolint:errcheck
		return "", fmt.Errorf("failed to finalize artifact: %w", err)
	}

	return filepath.Join(folder, name), nil
}

// sanitizeLibrary strips characters unsafe in directory and file names.
func sanitizeLibrary(name string) string {
	replacer := strings.NewReplacer(
		"/", "-", "\\", "-", ":", "-", "*", "", "?", "",
		"\"", "'", "<", "(", ">", ")", "|", "-",
	)
	out := strings.TrimSpace(replacer.Replace(name))
	if out == "" {
		return "library"
	}
	return out
}
