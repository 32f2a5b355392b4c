package handlers

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"pixelfin/internal/imagemeta"
	"pixelfin/internal/logging"
)

// outputEntry describes one generated artifact on disk.
type outputEntry struct {
	Library  string    `json:"library"`
	File     string    `json:"file"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// ListOutputs walks the output directory and returns every artifact,
// newest first.
func (h *Handlers) ListOutputs(w http.ResponseWriter, _ *http.Request) {
	entries := []outputEntry{}

	libs, err := os.ReadDir(h.config.OutputDir)
	if err != nil {
		logging.Error("failed to read output directory: %v", err)
		h.writeError(w, http.StatusInternalServerError, "failed to list outputs")
		return
	}

	for _, lib := range libs {
		if !lib.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(h.config.OutputDir, lib.Name()))
		if err != nil {
			logging.Warn("failed to read output folder %s: %v", lib.Name(), err)
			continue
		}
		for _, f := range files {
			if f.IsDir() || strings.HasPrefix(f.Name(), ".") {
				continue
			}
			info, err := f.Info()
			if err != nil {
				continue
			}
			entries = append(entries, outputEntry{
				Library:  lib.Name(),
				File:     f.Name(),
				Size:     info.Size(),
				Modified: info.ModTime(),
			})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Modified.After(entries[j].Modified)
	})
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"outputs": entries})
}

// outputPath resolves and validates the on-disk path for a
// library/filename pair from the URL. Any path escaping the output
// directory is rejected.
func (h *Handlers) outputPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	vars := mux.Vars(r)
	library, filename := vars["library"], vars["filename"]

	if strings.Contains(library, "..") || strings.Contains(filename, "..") ||
		strings.ContainsAny(library, `/\`) || strings.ContainsAny(filename, `/\`) {
		h.writeError(w, http.StatusBadRequest, "invalid path")
		return "", false
	}

	path := filepath.Join(h.config.OutputDir, library, filename)
	if !strings.HasPrefix(path, h.config.OutputDir+string(filepath.Separator)) {
		h.writeError(w, http.StatusBadRequest, "invalid path")
		return "", false
	}
	if _, err := os.Stat(path); err != nil {
		h.writeError(w, http.StatusNotFound, "output not found")
		return "", false
	}
	return path, true
}

// ServeOutput serves a generated artifact for in-browser viewing.
func (h *Handlers) ServeOutput(w http.ResponseWriter, r *http.Request) {
	path, ok := h.outputPath(w, r)
	if !ok {
		return
	}
	http.ServeFile(w, r, path)
}

// DeleteOutput removes a generated artifact, and its library folder when
// that leaves the folder empty.
func (h *Handlers) DeleteOutput(w http.ResponseWriter, r *http.Request) {
	path, ok := h.outputPath(w, r)
	if !ok {
		return
	}

	if err := os.Remove(path); err != nil {
		logging.Error("failed to delete output %s: %v", path, err)
		h.writeError(w, http.StatusInternalServerError, "failed to delete output")
		return
	}

	dir := filepath.Dir(path)
	if remaining, err := os.ReadDir(dir); err == nil && len(remaining) == 0 {
		if err := os.Remove(dir); err != nil {
			logging.Warn("failed to remove empty output folder %s: %v", dir, err)
		}
	}

	logging.Info("deleted output %s", path)
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// imgSrcPattern matches external image references in a generated report.
var imgSrcPattern = regexp.MustCompile(`<img([^>]*?)src="(https?://[^"]+)"`)

// DownloadOutput serves an artifact as an attachment. HTML reports that
// still reference the media server get their images inlined as data URIs
// on the fly, producing a self-contained document that renders without
// server access. ZIP artifacts are served as-is.
func (h *Handlers) DownloadOutput(w http.ResponseWriter, r *http.Request) {
	path, ok := h.outputPath(w, r)
	if !ok {
		return
	}
	filename := filepath.Base(path)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if !strings.EqualFold(filepath.Ext(path), ".html") {
		http.ServeFile(w, r, path)
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logging.Error("failed to read output %s: %v", path, err)
		h.writeError(w, http.StatusInternalServerError, "failed to read output")
		return
	}

	inlined := h.inlineImages(r.Context(), string(data))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(inlined)) //nolint:errcheck
}

// inlineImages replaces every external image reference with a data URI.
// Fetch failures leave the original reference in place so the document
// still renders where the server is reachable.
func (h *Handlers) inlineImages(ctx context.Context, doc string) string {
	client := &http.Client{Timeout: 30 * time.Second}

	return imgSrcPattern.ReplaceAllStringFunc(doc, func(match string) string {
		groups := imgSrcPattern.FindStringSubmatch(match)
		// Image URLs carry query parameters, escaped by the template.
		rawURL := strings.ReplaceAll(groups[2], "&amp;", "&")

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return match
		}
		resp, err := client.Do(req)
		if err != nil {
			logging.Warn("failed to inline image %s: %v", rawURL, err)
			return match
		}
		defer resp.Body.Close() //nolint:errcheck

		if resp.StatusCode != http.StatusOK {
			logging.Warn("failed to inline image %s: status %d", rawURL, resp.StatusCode)
			return match
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			logging.Warn("failed to inline image %s: %v", rawURL, err)
			return match
		}

		shrunk := imagemeta.ShrinkToWidth(data, h.config.EmbedMaxWidth)
		return `<img` + groups[1] + `src="` + imagemeta.DataURI(shrunk) + `"`
	})
}
