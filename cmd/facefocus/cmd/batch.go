package cmd

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/JCookit/MMM-OneDrive-sub001/internal/pipeline"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".gif":  true,
	".tif":  true,
	".tiff": true,
}

// batchCmd represents the batch command.
var batchCmd = &cobra.Command{
	Use:   "batch [directory]",
	Short: "Process a directory of photos with the parallel pipeline",
	Long: `Process every image in a directory, writing one JSON result file per
photo into the output directory.

Examples:
  facefocus batch ./photos
  facefocus batch ./photos --workers 8 --output-dir ./results
  facefocus batch ./photos --continue-on-error`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		dir := args[0]
		paths, err := collectImages(dir)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return fmt.Errorf("no images found in %s", dir)
		}

		outputDir := cfg.Batch.OutputDir
		if outputDir == "" {
			outputDir = dir
		}
		if err := os.MkdirAll(outputDir, 0o750); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}

		pl, err := cfg.ToPipelineBuilder().Build()
		if err != nil {
			return err
		}
		defer func() { _ = pl.Close() }()

		images := make([]image.Image, 0, len(paths))
		kept := make([]string, 0, len(paths))
		for _, p := range paths {
			img, err := imaging.Open(p, imaging.AutoOrientation(true))
			if err != nil {
				if cfg.Batch.ContinueOnError {
					slog.Warn("Skipping unreadable image", "path", p, "error", err)
					continue
				}
				return fmt.Errorf("failed to open %s: %w", p, err)
			}
			images = append(images, img)
			kept = append(kept, p)
		}
		if len(images) == 0 {
			return errors.New("no readable images in batch")
		}

		parallelCfg := pipeline.ParallelConfig{
			MaxWorkers:       cfg.Batch.Workers,
			ProgressCallback: &logProgress{},
		}

		start := time.Now()
		results, err := pl.ProcessImagesParallel(images, parallelCfg)
		if err != nil && !cfg.Batch.ContinueOnError {
			return err
		}

		written := 0
		for i, res := range results {
			if res == nil {
				continue
			}
			if err := writeResultFile(outputDir, kept[i], res); err != nil {
				if cfg.Batch.ContinueOnError {
					slog.Warn("Failed to write result", "path", kept[i], "error", err)
					continue
				}
				return err
			}
			written++
		}

		stats := pipeline.CalculateParallelStats(results, time.Since(start), parallelCfg.MaxWorkers)
		slog.Info("Batch complete",
			"total", stats.TotalImages,
			"processed", stats.ProcessedImages,
			"failed", stats.FailedImages,
			"written", written,
			"throughput_per_sec", fmt.Sprintf("%.2f", stats.ThroughputPerSec))

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Processed %d/%d image(s), results in %s\n",
			stats.ProcessedImages, stats.TotalImages, outputDir)
		return err
	},
}

// collectImages returns the image files directly inside dir, sorted by the
// filesystem walk order.
func collectImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}

// writeResultFile writes one JSON result next to the batch output dir.
func writeResultFile(outputDir, srcPath string, res *pipeline.ImageResult) error {
	rendered, err := pipeline.ToJSONImage(res)
	if err != nil {
		return err
	}
	base := filepath.Base(srcPath)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + ".facefocus.json"
	return os.WriteFile(filepath.Join(outputDir, name), []byte(rendered), 0o600)
}

// logProgress reports batch progress through the structured logger.
type logProgress struct{}

func (l *logProgress) OnStart(total int) {
	slog.Info("Batch started", "images", total)
}

func (l *logProgress) OnProgress(done, total int) {
	slog.Debug("Batch progress", "done", done, "total", total)
}

func (l *logProgress) OnComplete() {
	slog.Debug("Batch workers drained")
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntP("workers", "w", 0, "number of parallel workers (0 = number of CPUs)")
	batchCmd.Flags().String("output-dir", "", "directory for result files (default: input directory)")
	batchCmd.Flags().Bool("continue-on-error", false, "keep processing when individual images fail")

	_ = viper.BindPFlag("batch.workers", batchCmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("batch.output_dir", batchCmd.Flags().Lookup("output-dir"))
	_ = viper.BindPFlag("batch.continue_on_error", batchCmd.Flags().Lookup("continue-on-error"))
}
