// Command pixelfin-report generates a single artwork report or ZIP
// export from the command line, without running the web service.
//
// Options can come from a TOML config file, from flags, or both; flags
// win. The run executes synchronously and prints the artifact path.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"pixelfin/internal/artwork"
	"pixelfin/internal/logging"
	"pixelfin/internal/report"
	"pixelfin/internal/runner"
	"pixelfin/internal/startup"
)

// fileConfig is the TOML config file shape.
type fileConfig struct {
	Server    string   `toml:"server"`
	APIKey    string   `toml:"apikey"`
	Library   string   `toml:"library"`
	Output    string   `toml:"output"`
	Images    []string `toml:"images"`
	MinWidth  int      `toml:"min_width"`
	MinHeight int      `toml:"min_height"`

	BGColor      string `toml:"bgcolor"`
	TextColor    string `toml:"textcolor"`
	TableBGColor string `toml:"tablebgcolor"`

	Embedded      bool `toml:"embedded"`
	EmbedMaxWidth int  `toml:"embed_max_width"`

	ZipNames map[string]string `toml:"zipnames"`
}

type cliOptions struct {
	configPath string
	zip        bool
	timeout    time.Duration
	fileConfig
}

func main() {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:   "pixelfin-report",
		Short: "Generate an artwork report for a Jellyfin or Emby library",
		Long: `Generate an artwork report for a Jellyfin or Emby library.

Inspects every item in the library, flags missing and low-resolution
artwork and writes a standalone HTML report (or a ZIP export of the
artwork files) to the output directory.`,
		Version:       startup.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	flags := root.Flags()
	flags.StringVar(&opts.configPath, "config", "", "TOML config file")
	flags.StringVar(&opts.Server, "server", "", "media server URL")
	flags.StringVar(&opts.APIKey, "apikey", "", "media server API key")
	flags.StringVar(&opts.Library, "library", "", "library name")
	flags.StringVar(&opts.Output, "output", "output", "output directory")
	flags.StringSliceVar(&opts.Images, "images", nil,
		"artwork type codes to track (p,t,c,m,bd,bn,b,br,d,l)")
	flags.IntVar(&opts.MinWidth, "min-width", 0, "minimum artwork width, 0 disables the check")
	flags.IntVar(&opts.MinHeight, "min-height", 0, "minimum artwork height, 0 disables the check")
	flags.StringVar(&opts.BGColor, "bgcolor", "", "report background color")
	flags.StringVar(&opts.TextColor, "textcolor", "", "report text color")
	flags.StringVar(&opts.TableBGColor, "tablebgcolor", "", "summary table background color")
	flags.BoolVar(&opts.Embedded, "embedded", false, "inline images into the report")
	flags.IntVar(&opts.EmbedMaxWidth, "embed-max-width", 0, "max inlined image width, 0 keeps original sizes")
	flags.StringToStringVar(&opts.ZipNames, "zip-name", nil,
		"per-type export base name override, e.g. bd=background")
	flags.BoolVar(&opts.zip, "zip", false, "produce a ZIP export instead of an HTML report")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Minute, "overall run timeout")

	if err := root.Execute(); err != nil {
		logging.Error("%v", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, opts *cliOptions) error {
	if opts.configPath != "" {
		if err := applyConfigFile(cmd, opts); err != nil {
			return err
		}
	}

	cfg, err := buildRunConfig(opts)
	if err != nil {
		return err
	}

	kind := runner.KindHTML
	if opts.zip {
		kind = runner.KindZIP
	}

	if err := os.MkdirAll(opts.Output, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	res, err := runner.New(nil, opts.Output).Execute(ctx, kind, cfg)
	if err != nil {
		return err
	}

	for _, d := range res.Diagnostics {
		logging.Warn("%s", d)
	}
	fmt.Printf("%d items: %d complete, %d missing artwork, %d with low-resolution artwork.\n",
		res.Summary.Items, res.Summary.Complete, res.Summary.Missing, res.Summary.LowRes)
	fmt.Printf("Wrote %s\n", res.ArtifactPath)
	return nil
}

// applyConfigFile loads the TOML file into opts for every flag the user
// did not set explicitly.
func applyConfigFile(cmd *cobra.Command, opts *cliOptions) error {
	data, err := os.ReadFile(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	flags := cmd.Flags()
	if !flags.Changed("server") && fc.Server != "" {
		opts.Server = fc.Server
	}
	if !flags.Changed("apikey") && fc.APIKey != "" {
		opts.APIKey = fc.APIKey
	}
	if !flags.Changed("library") && fc.Library != "" {
		opts.Library = fc.Library
	}
	if !flags.Changed("output") && fc.Output != "" {
		opts.Output = fc.Output
	}
	if !flags.Changed("images") && len(fc.Images) > 0 {
		opts.Images = fc.Images
	}
	if !flags.Changed("min-width") {
		opts.MinWidth = fc.MinWidth
	}
	if !flags.Changed("min-height") {
		opts.MinHeight = fc.MinHeight
	}
	if !flags.Changed("bgcolor") && fc.BGColor != "" {
		opts.BGColor = fc.BGColor
	}
	if !flags.Changed("textcolor") && fc.TextColor != "" {
		opts.TextColor = fc.TextColor
	}
	if !flags.Changed("tablebgcolor") && fc.TableBGColor != "" {
		opts.TableBGColor = fc.TableBGColor
	}
	if !flags.Changed("embedded") {
		opts.Embedded = fc.Embedded
	}
	if !flags.Changed("embed-max-width") {
		opts.EmbedMaxWidth = fc.EmbedMaxWidth
	}
	if !flags.Changed("zip-name") && len(fc.ZipNames) > 0 {
		opts.ZipNames = fc.ZipNames
	}
	return nil
}

func buildRunConfig(opts *cliOptions) (runner.Config, error) {
	if len(opts.Images) == 0 {
		// Track everything when no selection is given.
		opts.Images = make([]string, 0, len(artwork.CanonicalOrder))
		for _, t := range artwork.CanonicalOrder {
			opts.Images = append(opts.Images, t.Code())
		}
	}

	types := make([]artwork.Type, 0, len(opts.Images))
	for _, code := range opts.Images {
		t, ok := artwork.ParseCode(strings.TrimSpace(code))
		if !ok {
			return runner.Config{}, fmt.Errorf("unknown artwork type code %q", code)
		}
		types = append(types, t)
	}

	colors := report.DefaultColors()
	if opts.BGColor != "" {
		colors.Background = opts.BGColor
	}
	if opts.TextColor != "" {
		colors.Text = opts.TextColor
	}
	if opts.TableBGColor != "" {
		colors.TableBackground = opts.TableBGColor
	}

	baseNames := make(map[artwork.Type]string, len(opts.ZipNames))
	for code, name := range opts.ZipNames {
		t, ok := artwork.ParseCode(code)
		if !ok {
			return runner.Config{}, fmt.Errorf("unknown artwork type code %q in zip-name", code)
		}
		baseNames[t] = name
	}

	return runner.Config{
		Server:        opts.Server,
		APIKey:        opts.APIKey,
		Library:       opts.Library,
		Types:         types,
		Thresholds:    artwork.Thresholds{MinWidth: opts.MinWidth, MinHeight: opts.MinHeight},
		Colors:        colors,
		Embedded:      opts.Embedded,
		EmbedMaxWidth: opts.EmbedMaxWidth,
		ZipBaseNames:  baseNames,
	}, nil
}
