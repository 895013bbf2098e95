package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/JCookit/MMM-OneDrive-sub001/internal/framing"
	"github.com/JCookit/MMM-OneDrive-sub001/internal/pipeline"
)

const (
	outputFormatJSON = "json"
	outputFormatCSV  = "csv"
)

// imageCmd represents the image command.
var imageCmd = &cobra.Command{
	Use:   "image [files...]",
	Short: "Detect faces and the focal point in image files",
	Long: `Process one or more image files, printing the detected faces and the
focal point for each.

Supported formats: JPEG, PNG, BMP, GIF, TIFF

Examples:
  facefocus image photo.jpg
  facefocus image *.jpg --format csv
  facefocus image photo.jpg --overlay-dir ./debug --framing`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no input files provided")
		}

		cfg := GetConfig()
		format := cfg.Output.Format
		if format != outputFormatJSON && format != outputFormatCSV {
			return fmt.Errorf("invalid output format: %s (must be json or csv)", format)
		}

		withFraming, _ := cmd.Flags().GetBool("framing")

		pl, err := cfg.ToPipelineBuilder().Build()
		if err != nil {
			return err
		}
		defer func() { _ = pl.Close() }()

		out := cmd.OutOrStdout()
		for _, path := range args {
			img, err := imaging.Open(path, imaging.AutoOrientation(true))
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", path, err)
			}

			res, err := pl.ProcessImage(img)
			if err != nil {
				return fmt.Errorf("failed to process %s: %w", path, err)
			}

			if err := printResult(out, path, res, format); err != nil {
				return err
			}

			if withFraming {
				pz, err := framing.Plan(res.Width, res.Height, res.FocalPoint, cfg.Viewport(), cfg.Framing.Zoom)
				if err != nil {
					return err
				}
				b, err := json.MarshalIndent(pz, "", "  ")
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintf(out, "framing:\n%s\n", b); err != nil {
					return err
				}
			}

			if cfg.Output.OverlayDir != "" {
				if err := writeOverlay(cfg.Output.OverlayDir, path, img, res); err != nil {
					return err
				}
			}
		}
		return nil
	},
}

func printResult(out io.Writer, path string, res *pipeline.ImageResult, format string) error {
	var rendered string
	var err error
	switch format {
	case outputFormatCSV:
		rendered, err = pipeline.ToCSVImage(res)
	default:
		rendered, err = pipeline.ToJSONImage(res)
	}
	if err != nil {
		return fmt.Errorf("failed to render result for %s: %w", path, err)
	}
	_, err = fmt.Fprintf(out, "%s:\n%s\n", path, rendered)
	return err
}

// writeOverlay renders the debug overlay into dir, named after the input file.
func writeOverlay(dir, srcPath string, img image.Image, res *pipeline.ImageResult) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create overlay dir: %w", err)
	}
	overlay := pipeline.RenderOverlay(img, res, pipeline.OverlayFaceColor, pipeline.OverlayFocalColor)

	base := filepath.Base(srcPath)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + "_overlay.png"
	outPath := filepath.Join(dir, name)

	f, err := os.Create(outPath) //nolint:gosec // path derives from user-provided output dir
	if err != nil {
		return fmt.Errorf("failed to create overlay file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := png.Encode(f, overlay); err != nil {
		return fmt.Errorf("failed to encode overlay: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(imageCmd)

	imageCmd.Flags().StringP("format", "f", "json", "output format (json, csv)")
	imageCmd.Flags().String("overlay-dir", "", "write debug overlay images to this directory")
	imageCmd.Flags().Bool("framing", false, "also print the pan/zoom crop plan")
	imageCmd.Flags().Float64("confidence", 0.5, "face confidence threshold (exclusive)")
	imageCmd.Flags().Float64("iou", 0.45, "IoU suppression threshold")

	_ = viper.BindPFlag("output.format", imageCmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("output.overlay_dir", imageCmd.Flags().Lookup("overlay-dir"))
	_ = viper.BindPFlag("detector.confidence_threshold", imageCmd.Flags().Lookup("confidence"))
	_ = viper.BindPFlag("detector.iou_threshold", imageCmd.Flags().Lookup("iou"))
}
