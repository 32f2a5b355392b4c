package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"sort"
	"testing"

	"pixelfin/internal/artwork"
)

// jpegMagic is enough of a JPEG header for content-type sniffing.
var jpegMagic = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

func exportRows() []artwork.Row {
	items := []*artwork.Item{
		{ID: "m1", Kind: artwork.KindMovie, Title: "Bar", Year: 1999},
		{ID: "m2", Kind: artwork.KindMovie, Title: "Empty", Year: 2003},
	}
	artwork.Disambiguate(items)

	slots := map[string][]artwork.Slot{
		"m1": {
			{Type: artwork.TypePrimary, Present: true},
			{Type: artwork.TypeBackdrop, Index: 0, Present: true},
			{Type: artwork.TypeBackdrop, Index: 1, Present: true},
		},
		"m2": {
			{Type: artwork.TypePrimary, Present: false},
		},
	}
	rows, _ := artwork.Aggregate(items, slots)
	return rows
}

func archiveNames(t *testing.T, data []byte) []string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

func TestBuildNaming(t *testing.T) {
	rows := exportRows()
	selected := []Selection{
		{ItemID: "m1", Type: artwork.TypePrimary},
		{ItemID: "m1", Type: artwork.TypeBackdrop, Index: 0},
		{ItemID: "m1", Type: artwork.TypeBackdrop, Index: 1},
	}
	overrides := Overrides{BaseNames: map[artwork.Type]string{
		artwork.TypePrimary:  "front",
		artwork.TypeBackdrop: "bg",
	}}

	src := func(string, artwork.Slot) ([]byte, error) { return jpegMagic, nil }

	var buf bytes.Buffer
	diags, err := Build(&buf, rows, selected, overrides, src)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}

	want := []string{
		"Bar (1999)/",
		"Bar (1999)/bg01.jpg",
		"Bar (1999)/bg02.jpg",
		"Bar (1999)/front.jpg",
	}
	got := archiveNames(t, buf.Bytes())
	if len(got) != len(want) {
		t.Fatalf("archive entries = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestBuildAbsentSlotSkippedSilently(t *testing.T) {
	rows := exportRows()
	selected := []Selection{
		{ItemID: "m2", Type: artwork.TypePrimary},
	}

	src := func(string, artwork.Slot) ([]byte, error) {
		t.Error("source should never be consulted for absent slots")
		return nil, nil
	}

	var buf bytes.Buffer
	diags, err := Build(&buf, rows, selected, Overrides{}, src)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}

	// The item's folder is present, but no file for the absent slot.
	got := archiveNames(t, buf.Bytes())
	if len(got) != 1 || got[0] != "Empty (2003)/" {
		t.Errorf("archive entries = %v, want only the empty folder", got)
	}
}

func TestBuildFolderOverride(t *testing.T) {
	rows := exportRows()
	selected := []Selection{{ItemID: "m1", Type: artwork.TypePrimary}}
	overrides := Overrides{FolderNames: map[string]string{"m1": "My: Movie?"}}

	src := func(string, artwork.Slot) ([]byte, error) { return jpegMagic, nil }

	var buf bytes.Buffer
	if _, err := Build(&buf, rows, selected, overrides, src); err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	got := archiveNames(t, buf.Bytes())
	if got[0] != "My- Movie/" {
		t.Errorf("expected sanitized override folder, got %q", got[0])
	}
}

func TestBuildFetchFailureIsDiagnostic(t *testing.T) {
	rows := exportRows()
	selected := []Selection{
		{ItemID: "m1", Type: artwork.TypePrimary},
		{ItemID: "m1", Type: artwork.TypeBackdrop, Index: 0},
	}

	src := func(_ string, slot artwork.Slot) ([]byte, error) {
		if slot.Type == artwork.TypeBackdrop {
			return nil, errors.New("connection reset")
		}
		return jpegMagic, nil
	}

	var buf bytes.Buffer
	diags, err := Build(&buf, rows, selected, Overrides{}, src)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %v", diags)
	}

	// The archive is still readable and contains the slot that worked.
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("archive unreadable after partial failure: %v", err)
	}
	found := false
	for _, f := range zr.File {
		if f.Name == "Bar (1999)/cover.jpg" {
			found = true
			rc, err := f.Open()
			if err != nil {
				t.Fatalf("failed to open entry: %v", err)
			}
			data, _ := io.ReadAll(rc)
			rc.Close()
			if !bytes.Equal(data, jpegMagic) {
				t.Error("entry bytes do not round-trip")
			}
		}
	}
	if !found {
		t.Error("expected cover.jpg despite the backdrop failure")
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name  string
		slot  artwork.Slot
		bases map[artwork.Type]string
		want  string
	}{
		{"default primary", artwork.Slot{Type: artwork.TypePrimary}, nil, "cover"},
		{"override single no suffix", artwork.Slot{Type: artwork.TypePrimary}, map[artwork.Type]string{artwork.TypePrimary: "front"}, "front"},
		{"backdrop index 0 one-based", artwork.Slot{Type: artwork.TypeBackdrop, Index: 0}, map[artwork.Type]string{artwork.TypeBackdrop: "bg"}, "bg01"},
		{"backdrop index 1", artwork.Slot{Type: artwork.TypeBackdrop, Index: 1}, map[artwork.Type]string{artwork.TypeBackdrop: "background"}, "background02"},
		{"default backdrop", artwork.Slot{Type: artwork.TypeBackdrop, Index: 9}, nil, "backdrop10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FileName(tt.slot, tt.bases); got != tt.want {
				t.Errorf("FileName() = %q, want %q", got, tt.want)
			}
		})
	}
}
