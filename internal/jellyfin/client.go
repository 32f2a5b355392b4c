package jellyfin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"pixelfin/internal/artwork"
	"pixelfin/internal/logging"
)

const (
	// Page size for item listing requests.
	pageSize = 100

	defaultTimeout = 30 * time.Second
)

// Sentinel errors for run-level fatal conditions.
var (
	ErrUnauthorized    = errors.New("jellyfin: invalid or missing API key")
	ErrNoEnabledUser   = errors.New("jellyfin: no enabled user found")
	ErrLibraryNotFound = errors.New("jellyfin: library not found")
)

// Client talks to a Jellyfin or Emby server. The API key is treated as an
// opaque pass-through credential.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New creates a client for the given server URL and API key.
func New(serverURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(serverURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// BaseURL returns the normalized server URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("X-Emby-Token", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", c.baseURL, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn("failed to close response body: %v", err)
		}
	}()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

// FirstUserID returns the id of the first enabled (non-hidden) user.
// Library views are user-scoped in the Jellyfin API, so every run starts
// from some user context.
func (c *Client) FirstUserID(ctx context.Context) (string, error) {
	var users []rawUser
	if err := c.getJSON(ctx, "/Users", &users); err != nil {
		return "", err
	}
	for _, u := range users {
		if !u.IsHidden {
			return u.ID, nil
		}
	}
	return "", ErrNoEnabledUser
}

// Library describes one library view on the server.
type Library struct {
	ID             string
	Name           string
	CollectionType string
}

// LibraryByName resolves a library by case-insensitive name match.
func (c *Client) LibraryByName(ctx context.Context, userID, name string) (Library, error) {
	var views rawItemPage
	if err := c.getJSON(ctx, "/Users/"+url.PathEscape(userID)+"/Views", &views); err != nil {
		return Library{}, err
	}
	for _, v := range views.Items {
		if strings.EqualFold(v.Name, name) {
			return Library{ID: v.ID, Name: v.Name, CollectionType: v.CollectionType}, nil
		}
	}
	return Library{}, fmt.Errorf("%w: %q", ErrLibraryNotFound, name)
}

// LibraryItems pages through the top-level items of a library and returns
// them as validated artwork items, sorted by lowercased title. Unrecognized
// image-tag keys are discarded here so untyped API data never reaches the
// slot resolver.
func (c *Client) LibraryItems(ctx context.Context, userID string, lib Library) ([]*artwork.Item, error) {
	var items []*artwork.Item
	startIndex := 0

	for {
		path := fmt.Sprintf("/Users/%s/Items?ParentId=%s&Recursive=false&StartIndex=%d&Limit=%d",
			url.PathEscape(userID), url.QueryEscape(lib.ID), startIndex, pageSize)

		var page rawItemPage
		if err := c.getJSON(ctx, path, &page); err != nil {
			return nil, err
		}

		for _, raw := range page.Items {
			if !keepItem(raw, lib.CollectionType) {
				continue
			}
			items = append(items, c.toItem(raw))
		}

		if len(page.Items) < pageSize {
			break
		}
		startIndex += pageSize
	}

	sort.SliceStable(items, func(i, j int) bool {
		return strings.ToLower(items[i].Title) < strings.ToLower(items[j].Title)
	})
	return items, nil
}

// keepItem applies the per-collection-type item filter: series and movie
// libraries only report their primary kind, music video libraries report
// artists, albums and folders, everything else passes through.
func keepItem(raw rawItem, collectionType string) bool {
	kind := strings.ToLower(raw.Type)
	switch strings.ToLower(collectionType) {
	case "series":
		return kind == "series"
	case "movie":
		return kind == "movie"
	case "musicvideos":
		return kind == "musicartist" || kind == "musicvideoalbum" || kind == "folder"
	default:
		return true
	}
}

func (c *Client) toItem(raw rawItem) *artwork.Item {
	tags := make(map[artwork.Type]map[int]string)

	for key, tag := range raw.ImageTags {
		typ, ok := artwork.ParseType(key)
		if !ok {
			logging.Debug("discarding unrecognized image type %q on item %s", key, raw.ID)
			continue
		}
		if tags[typ] == nil {
			tags[typ] = make(map[int]string)
		}
		tags[typ][0] = tag
	}

	// Backdrops arrive as an ordered tag array, one entry per index.
	for idx, tag := range raw.BackdropImageTags {
		if tags[artwork.TypeBackdrop] == nil {
			tags[artwork.TypeBackdrop] = make(map[int]string)
		}
		tags[artwork.TypeBackdrop][idx] = tag
	}

	return &artwork.Item{
		ID:      raw.ID,
		Kind:    artwork.Kind(raw.Type),
		Title:   raw.Name,
		Year:    raw.ProductionYear,
		Tags:    tags,
		PageURL: c.ItemPageURL(raw.ID),
	}
}

// ImageURL builds the fetch URL for one image slot.
func (c *Client) ImageURL(itemID string, typ artwork.Type, index int, tag string) string {
	path := c.baseURL + "/Items/" + url.PathEscape(itemID) + "/Images/" + string(typ)
	if typ.MultiIndex() {
		path += "/" + strconv.Itoa(index)
	}
	return path + "?tag=" + url.QueryEscape(tag) + "&api_key=" + url.QueryEscape(c.apiKey)
}

// ItemPageURL returns the item's detail page on the server's web UI.
func (c *Client) ItemPageURL(itemID string) string {
	return c.baseURL + "/web/index.html#!/details?id=" + url.QueryEscape(itemID)
}

// FetchImage downloads raw image bytes from an image URL. Failures here
// are per-slot recoverable: callers record them as diagnostics instead of
// aborting the run.
func (c *Client) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build image request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image fetch failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn("failed to close image response body: %v", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image fetch returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image bytes: %w", err)
	}
	return data, nil
}
