package artwork

// Type identifies one canonical artwork category on a library item.
type Type string

const (
	TypePrimary  Type = "Primary"
	TypeThumb    Type = "Thumb"
	TypeClearArt Type = "ClearArt"
	TypeMenu     Type = "Menu"
	TypeBackdrop Type = "Backdrop"
	TypeBanner   Type = "Banner"
	TypeBox      Type = "Box"
	TypeBoxRear  Type = "BoxRear"
	TypeDisc     Type = "Disc"
	TypeLogo     Type = "Logo"
)

// CanonicalOrder is the fixed resolution and display order for tracked
// types. It matches the two-column gallery layout: LeftColumn types first,
// then RightColumn types. User selection narrows this list but never
// reorders it.
var CanonicalOrder = []Type{
	TypePrimary, TypeThumb, TypeClearArt, TypeMenu,
	TypeBackdrop, TypeBanner, TypeBox, TypeBoxRear, TypeDisc, TypeLogo,
}

// LeftColumn and RightColumn define gallery column membership.
var (
	LeftColumn  = []Type{TypePrimary, TypeThumb, TypeClearArt, TypeMenu}
	RightColumn = []Type{TypeBackdrop, TypeBanner, TypeBox, TypeBoxRear, TypeDisc, TypeLogo}
)

// typeCodes maps the short form codes used in settings and URLs to types.
var typeCodes = map[string]Type{
	"p":  TypePrimary,
	"t":  TypeThumb,
	"c":  TypeClearArt,
	"m":  TypeMenu,
	"bd": TypeBackdrop,
	"bn": TypeBanner,
	"b":  TypeBox,
	"br": TypeBoxRear,
	"d":  TypeDisc,
	"l":  TypeLogo,
}

// DefaultExportBase maps each type to the default base filename used in
// ZIP exports when no override is configured.
var DefaultExportBase = map[Type]string{
	TypePrimary:  "cover",
	TypeThumb:    "thumbnail",
	TypeClearArt: "clearart",
	TypeMenu:     "menu",
	TypeBackdrop: "backdrop",
	TypeBanner:   "banner",
	TypeBox:      "box",
	TypeBoxRear:  "boxrear",
	TypeDisc:     "disc",
	TypeLogo:     "logo",
}

// ParseType returns the Type matching a raw API type name. Unknown names
// are rejected so untyped upstream data never reaches the resolver.
func ParseType(name string) (Type, bool) {
	for _, t := range CanonicalOrder {
		if string(t) == name {
			return t, true
		}
	}
	return "", false
}

// ParseCode returns the Type for a settings short code ("p", "bd", ...).
func ParseCode(code string) (Type, bool) {
	t, ok := typeCodes[code]
	return t, ok
}

// Code returns the settings short code for a type.
func (t Type) Code() string {
	for code, typ := range typeCodes {
		if typ == t {
			return code
		}
	}
	return ""
}

// MultiIndex reports whether a type can carry more than one image.
// Backdrop is the only multi-index type.
func (t Type) MultiIndex() bool {
	return t == TypeBackdrop
}

// Tracked returns the subset of CanonicalOrder present in types, in
// canonical order regardless of the order the caller selected them in.
func Tracked(types []Type) []Type {
	set := make(map[Type]bool, len(types))
	for _, t := range types {
		set[t] = true
	}
	out := make([]Type, 0, len(types))
	for _, t := range CanonicalOrder {
		if set[t] {
			out = append(out, t)
		}
	}
	return out
}

// Kind is the library item kind as reported by the media server.
type Kind string

const (
	KindMovie   Kind = "Movie"
	KindSeries  Kind = "Series"
	KindSeason  Kind = "Season"
	KindEpisode Kind = "Episode"
	KindAlbum   Kind = "MusicAlbum"
	KindArtist  Kind = "MusicArtist"
)

// Item is one library entry for a single run. Tags is the validated
// image-tag map: type to index to opaque tag. DisplayTitle is empty until
// Disambiguate assigns it; the item is treated as immutable afterwards.
type Item struct {
	ID           string
	Kind         Kind
	Title        string
	Year         int
	Tags         map[Type]map[int]string
	PageURL      string
	DisplayTitle string
}

// HasTag reports whether the item carries a tag for the given type+index.
func (it *Item) HasTag(t Type, index int) bool {
	indexes, ok := it.Tags[t]
	if !ok {
		return false
	}
	_, ok = indexes[index]
	return ok
}

// Slot is the unit of classification: one (item, type, index) cell.
// Width/Height are only meaningful when DimsKnown is true, and LowRes is
// only meaningful when Present is true.
type Slot struct {
	Type      Type
	Index     int
	Present   bool
	Tag       string
	ImageURL  string
	Width     int
	Height    int
	DimsKnown bool
	LowRes    bool
}

// Caption returns the gallery caption for the slot, e.g. "Primary 600x900"
// or "Backdrop (1) 1920x1080" for multi-index slots. Dimensions are
// omitted when unknown.
func (s Slot) Caption() string {
	label := string(s.Type)
	if s.Type.MultiIndex() {
		label = fmtIndexLabel(label, s.Index)
	}
	if !s.DimsKnown {
		return label
	}
	return fmtDims(label, s.Width, s.Height)
}

// Thresholds holds the per-run minimum dimensions. A zero value disables
// the corresponding check entirely.
type Thresholds struct {
	MinWidth  int
	MinHeight int
}

// Enabled reports whether any dimension check is configured.
func (t Thresholds) Enabled() bool {
	return t.MinWidth > 0 || t.MinHeight > 0
}

// Row is the per-item aggregation: the disambiguated item, its resolved
// slots in canonical order, and the derived attention flags.
type Row struct {
	Item       *Item
	Slots      []Slot
	HasMissing bool
	HasLowRes  bool
}

// Summary is the run-level tally used for the generation result message.
type Summary struct {
	Items    int
	Complete int
	Missing  int
	LowRes   int
}
