package report

import (
	"bytes"
	"fmt"
	"html/template"

	"pixelfin/internal/artwork"
	"pixelfin/internal/imagemeta"
	"pixelfin/internal/logging"
)

// Colors parameterizes the report's color scheme.
type Colors struct {
	Background      string
	Text            string
	TableBackground string
}

// DefaultColors matches the stock dark scheme.
func DefaultColors() Colors {
	return Colors{Background: "#000000", Text: "#ffffff", TableBackground: "#000000"}
}

// Options configures one render.
type Options struct {
	LibraryName  string
	TrackedTypes []artwork.Type
	Colors       Colors

	// Embedded inlines image bytes as data URIs instead of linking the
	// source server. EmbedMaxWidth caps the inline image width (0 keeps
	// original sizes).
	Embedded      bool
	EmbedMaxWidth int

	// BackLink, when set, renders a "back to main page" link at the top.
	BackLink string
}

// ImageSource resolves raw image bytes for a present slot. It is only
// consulted in embedded mode.
type ImageSource func(itemID string, slot artwork.Slot) ([]byte, error)

// Render produces the standalone HTML report document. The output is
// deterministic for identical inputs: no timestamps, no randomness and no
// map-ordered iteration reach the markup. Per-slot embed failures are
// returned as diagnostics; the affected image falls back to linking its
// source URL.
func Render(rows []artwork.Row, summary artwork.Summary, opts Options, src ImageSource) (string, []string, error) {
	view, diags := buildView(rows, summary, opts, src)

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, view); err != nil {
		return "", diags, fmt.Errorf("failed to execute report template: %w", err)
	}
	return buf.String(), diags, nil
}

type pageView struct {
	LibraryName string
	Colors      Colors
	BackLink    string
	Columns     []string
	Summary     artwork.Summary
	SummaryRows []summaryRowView
	Items       []itemView
}

type summaryRowView struct {
	Anchor  string
	Title   string
	PageURL string
	Class   string
	Cells   []cellView
}

type cellView struct {
	Mark  string
	Class string
}

type itemView struct {
	Anchor    string
	Title     string
	PageURL   string
	Left      []imageView
	RightFull []imageView
	BoxRow    []imageView
	Logos     []imageView
	Missing   []string
}

type imageView struct {
	Present bool
	Src     template.URL
	Caption string
	Class   string
	LowRes  bool
	Label   string
}

func buildView(rows []artwork.Row, summary artwork.Summary, opts Options, src ImageSource) (pageView, []string) {
	var diags []string

	tracked := artwork.Tracked(opts.TrackedTypes)
	columns := make([]string, 0, len(tracked))
	for _, t := range tracked {
		columns = append(columns, string(t))
	}

	view := pageView{
		LibraryName: opts.LibraryName,
		Colors:      opts.Colors,
		BackLink:    opts.BackLink,
		Columns:     columns,
		Summary:     summary,
	}

	for _, row := range rows {
		view.SummaryRows = append(view.SummaryRows, summaryRow(row, tracked))

		item, itemDiags := detailBlock(row, tracked, opts, src)
		view.Items = append(view.Items, item)
		diags = append(diags, itemDiags...)
	}
	return view, diags
}

func summaryRow(row artwork.Row, tracked []artwork.Type) summaryRowView {
	out := summaryRowView{
		Anchor:  "item_" + row.Item.ID,
		Title:   row.Item.DisplayTitle,
		PageURL: row.Item.PageURL,
	}
	if row.HasMissing || row.HasLowRes {
		out.Class = "needs-attention"
	}

	for _, t := range tracked {
		present, lowRes := false, false
		for _, s := range row.Slots {
			if s.Type != t {
				continue
			}
			if s.Present {
				present = true
				if s.LowRes {
					lowRes = true
				}
			}
		}
		switch {
		case !present:
			out.Cells = append(out.Cells, cellView{Mark: "✖", Class: "cell-missing"})
		case lowRes:
			out.Cells = append(out.Cells, cellView{Mark: "⚠", Class: "cell-lowres"})
		default:
			out.Cells = append(out.Cells, cellView{Mark: "✔", Class: "cell-ok"})
		}
	}
	return out
}

func detailBlock(row artwork.Row, tracked []artwork.Type, opts Options, src ImageSource) (itemView, []string) {
	var diags []string

	item := itemView{
		Anchor:  "item_" + row.Item.ID,
		Title:   row.Item.DisplayTitle,
		PageURL: row.Item.PageURL,
	}

	trackedSet := make(map[artwork.Type]bool, len(tracked))
	for _, t := range tracked {
		trackedSet[t] = true
	}

	for _, s := range row.Slots {
		if !s.Present {
			item.Missing = append(item.Missing, string(s.Type))
		}
	}

	toView := func(s artwork.Slot, class string) imageView {
		iv := imageView{
			Present: s.Present,
			Caption: s.Caption(),
			Class:   class,
			LowRes:  s.LowRes,
			Label:   string(s.Type),
		}
		if !s.Present {
			return iv
		}
		iv.Src = template.URL(s.ImageURL)
		if opts.Embedded && src != nil {
			data, err := src(row.Item.ID, s)
			if err != nil {
				diags = append(diags, fmt.Sprintf("%s: could not embed %s: %v",
					row.Item.DisplayTitle, s.Caption(), err))
				logging.Warn("embed failed for item %s slot %s: %v", row.Item.ID, s.Caption(), err)
				return iv
			}
			iv.Src = template.URL(imagemeta.DataURI(imagemeta.ShrinkToWidth(data, opts.EmbedMaxWidth)))
		}
		return iv
	}

	slotsOf := func(t artwork.Type) []artwork.Slot {
		var out []artwork.Slot
		for _, s := range row.Slots {
			if s.Type == t {
				out = append(out, s)
			}
		}
		return out
	}

	// Left column: Primary, Thumb, ClearArt, Menu, full width each.
	for _, t := range artwork.LeftColumn {
		if !trackedSet[t] {
			continue
		}
		for _, s := range slotsOf(t) {
			item.Left = append(item.Left, toView(s, ""))
		}
	}

	// Right column: Backdrop(s) and Banner full width, then the
	// Box/BoxRear/Disc row at a third each, then Logo at 60% width.
	for _, t := range []artwork.Type{artwork.TypeBackdrop, artwork.TypeBanner} {
		if !trackedSet[t] {
			continue
		}
		for _, s := range slotsOf(t) {
			item.RightFull = append(item.RightFull, toView(s, "banner-full"))
		}
	}
	for _, t := range []artwork.Type{artwork.TypeBox, artwork.TypeBoxRear, artwork.TypeDisc} {
		if !trackedSet[t] {
			continue
		}
		for _, s := range slotsOf(t) {
			item.BoxRow = append(item.BoxRow, toView(s, ""))
		}
	}
	if trackedSet[artwork.TypeLogo] {
		for _, s := range slotsOf(artwork.TypeLogo) {
			item.Logos = append(item.Logos, toView(s, "logo-img"))
		}
	}

	return item, diags
}
