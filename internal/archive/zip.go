// Package archive builds the selectable ZIP export: one folder per item,
// one file per selected slot, with per-type base-name overrides and
// zero-padded suffixes for multi-index slots.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"

	"pixelfin/internal/artwork"
	"pixelfin/internal/imagemeta"
	"pixelfin/internal/logging"
)

// Selection names one slot to export.
type Selection struct {
	ItemID string
	Type   artwork.Type
	Index  int
}

// Overrides customizes export naming. FolderNames replaces an item's
// folder name (keyed by item id); BaseNames replaces the per-type file
// base name. Unset entries fall back to the disambiguated display title
// and artwork.DefaultExportBase respectively.
type Overrides struct {
	FolderNames map[string]string
	BaseNames   map[artwork.Type]string
}

// ImageSource resolves raw image bytes for a present slot.
type ImageSource func(itemID string, slot artwork.Slot) ([]byte, error)

// Build writes a ZIP archive of the selected slots to w.
//
// Every selected item gets a top-level folder even when none of its
// selected slots turn out to be present: a selected-but-absent slot is a
// valid outcome that simply contributes no file. Per-slot fetch failures
// are returned as diagnostics, not errors; only archive-level write
// failures abort.
func Build(w io.Writer, rows []artwork.Row, selected []Selection, overrides Overrides, src ImageSource) ([]string, error) {
	var diags []string

	wantAll := make(map[Selection]bool, len(selected))
	wantItem := make(map[string]bool)
	for _, sel := range selected {
		wantAll[sel] = true
		wantItem[sel.ItemID] = true
	}

	zw := zip.NewWriter(w)

	for _, row := range rows {
		if !wantItem[row.Item.ID] {
			continue
		}

		folder := overrides.FolderNames[row.Item.ID]
		if folder == "" {
			folder = row.Item.DisplayTitle
		}
		folder = sanitizeName(folder)

		// Emit the folder entry up front so even an all-absent
		// selection leaves the item visible in the archive.
		if _, err := zw.Create(folder + "/"); err != nil {
			return diags, fmt.Errorf("failed to create archive folder %q: %w", folder, err)
		}

		for _, slot := range row.Slots {
			if !wantAll[Selection{ItemID: row.Item.ID, Type: slot.Type, Index: slot.Index}] {
				continue
			}
			if !slot.Present {
				continue
			}

			data, err := src(row.Item.ID, slot)
			if err != nil {
				diags = append(diags, fmt.Sprintf("%s: could not export %s: %v",
					row.Item.DisplayTitle, slot.Caption(), err))
				logging.Warn("export fetch failed for item %s slot %s: %v", row.Item.ID, slot.Caption(), err)
				continue
			}

			name := folder + "/" + FileName(slot, overrides.BaseNames) + extensionFor(data)
			fw, err := zw.Create(name)
			if err != nil {
				return diags, fmt.Errorf("failed to create archive entry %q: %w", name, err)
			}
			if _, err := fw.Write(data); err != nil {
				return diags, fmt.Errorf("failed to write archive entry %q: %w", name, err)
			}
		}
	}

	if err := zw.Close(); err != nil {
		return diags, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return diags, nil
}

// FileName returns the base file name (without extension) for a slot:
// the configured base name, plus a zero-padded 1-based two-digit suffix
// for multi-index types. Single-index types never get a suffix.
func FileName(slot artwork.Slot, baseNames map[artwork.Type]string) string {
	base := baseNames[slot.Type]
	if base == "" {
		base = artwork.DefaultExportBase[slot.Type]
	}
	if base == "" {
		base = strings.ToLower(string(slot.Type))
	}
	if slot.Type.MultiIndex() {
		return fmt.Sprintf("%s%02d", base, slot.Index+1)
	}
	return base
}

func extensionFor(data []byte) string {
	switch imagemeta.ContentType(data) {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/bmp":
		return ".bmp"
	default:
		return ".jpg"
	}
}

// sanitizeName strips characters that are unsafe in archive paths or on
// common filesystems.
func sanitizeName(name string) string {
	replacer := strings.NewReplacer(
		"/", "-", "\\", "-", ":", "-", "*", "", "?", "",
		"\"", "'", "<", "(", ">", ")", "|", "-",
	)
	out := strings.TrimSpace(replacer.Replace(name))
	if out == "" {
		return "item"
	}
	return out
}
