package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/album-render/internal/config"
	"github.com/kozaktomas/album-render/internal/database"
	"github.com/kozaktomas/album-render/internal/database/postgres"
	"github.com/kozaktomas/album-render/internal/render"
	"github.com/kozaktomas/album-render/internal/storage"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render one album to a PDF file",
	Long: `Render one album to a PDF file.

The album is read from the database with --album, or from a JSON or YAML
file with --input containing {album, cover, pages} as the database would
return them.

Examples:
  album-render render --album 3f2b... --output album.pdf
  album-render render --input album.yaml --output album.pdf --report
  album-render render --test --output calibration.pdf`,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().String("album", "", "Album ID to load from the database")
	renderCmd.Flags().String("input", "", "JSON or YAML file with the album aggregate")
	renderCmd.Flags().StringP("output", "o", "album.pdf", "Output PDF path")
	renderCmd.Flags().Bool("report", false, "Print the render report as JSON")
	renderCmd.Flags().Bool("debug", false, "Outline every placement in the output")
	renderCmd.Flags().Bool("test", false, "Write the layout calibration document instead of an album")
	renderCmd.Flags().Bool("deliver", false, "Upload the PDF and record the delivery (requires --album and storage)")
	renderCmd.Flags().Bool("no-progress", false, "Disable the progress bar")
}

// loadRequest reads the album aggregate from the database or a file.
func loadRequest(ctx context.Context, cfg *config.Config, albumID, input string) (*database.AlbumRenderRequest, error) {
	switch {
	case albumID != "" && input != "":
		return nil, errors.New("use either --album or --input, not both")
	case input != "":
		data, err := os.ReadFile(input) //nolint:gosec // path comes from the operator
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
		return database.DecodeRenderRequest(data)
	case albumID != "":
		if cfg.Database.URL == "" {
			return nil, errors.New("DATABASE_URL environment variable is required with --album")
		}
		if err := postgres.Initialize(&cfg.Database); err != nil {
			return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
		}
		reader, err := database.GetAlbumReader(ctx)
		if err != nil {
			return nil, err
		}
		req, err := database.LoadRenderRequest(ctx, reader, albumID)
		if err != nil {
			return nil, fmt.Errorf("loading album: %w", err)
		}
		if req == nil {
			return nil, fmt.Errorf("%w: %s", render.ErrAlbumNotFound, albumID)
		}
		return req, nil
	}
	return nil, errors.New("either --album or --input is required")
}

func runRender(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := config.Load()
	output := mustGetString(cmd, "output")

	if mustGetBool(cmd, "test") {
		data, err := render.GenerateTestPDF(time.Now())
		if err != nil {
			return fmt.Errorf("generating test PDF: %w", err)
		}
		if err := os.WriteFile(output, data, 0o644); err != nil { //nolint:gosec // output is a public document
			return fmt.Errorf("writing output: %w", err)
		}
		fmt.Printf("Wrote calibration document to %s (%d bytes)\n", output, len(data))
		return nil
	}

	albumID := mustGetString(cmd, "album")
	deliver := mustGetBool(cmd, "deliver")
	if deliver && albumID == "" {
		return errors.New("--deliver requires --album")
	}

	req, err := loadRequest(ctx, cfg, albumID, mustGetString(cmd, "input"))
	if err != nil {
		return err
	}
	defer postgres.Shutdown()

	assetCache := newAssetCache(ctx, cfg)
	defer assetCache.Close()
	sc, err := newStorageClient(cfg)
	if err != nil {
		return err
	}

	var opts []render.Option
	if mustGetBool(cmd, "debug") {
		opts = append(opts, render.WithDebugOverlay())
	}
	total := render.CountAssets(req)
	var bar *progressbar.ProgressBar
	if total > 0 && !mustGetBool(cmd, "no-progress") {
		bar = progressbar.NewOptions(total,
			progressbar.OptionSetDescription("Fetching images"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("images"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionFullWidth(),
		)
		opts = append(opts, render.WithAssetProgress(func() { bar.Add(1) }))
	}

	result, err := newRenderer(cfg, assetCache, sc).Render(ctx, req, opts...)
	if bar != nil {
		bar.Finish()
		fmt.Println()
	}
	if err != nil {
		return fmt.Errorf("rendering album: %w", err)
	}

	if err := os.WriteFile(output, result.PDF, 0o644); err != nil { //nolint:gosec // output is a public document
		return fmt.Errorf("writing output: %w", err)
	}
	fmt.Printf("Wrote %d pages with %d images to %s\n", result.Report.PageCount, result.Report.PhotoCount, output)
	for _, w := range result.Report.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}

	if mustGetBool(cmd, "report") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result.Report); err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
	}

	if deliver {
		return deliverResult(ctx, cfg, sc, req, result.PDF)
	}
	return nil
}

// deliverResult uploads synchronously so failures surface as the exit status.
func deliverResult(ctx context.Context, cfg *config.Config, sc *storage.Client, req *database.AlbumRenderRequest, pdf []byte) error {
	sidecar := newSidecar(ctx, cfg, sc)
	if sidecar == nil {
		return errors.New("delivery is not configured: STORAGE_URL and STORAGE_SERVICE_KEY are required")
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Render.DeliveryTimeout)
	defer cancel()

	d, err := sidecar.Deliver(ctx, req.Album.ID, pdf, req.Album.CoverConfig.UserEmail)
	if err != nil {
		return fmt.Errorf("delivering PDF: %w", err)
	}
	fmt.Printf("Delivered to %s (delivery %s)\n", d.DocumentReference, d.ID)
	return nil
}
