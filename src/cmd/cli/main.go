package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"screen-cropper/src/config"
	"screen-cropper/src/screenshot"
	"screen-cropper/src/storage"
)

type cliOptions struct {
	verbose    bool
	jsonOutput bool
	display    int
	region     string
	out        string
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args), os.Stdout, screenshot.NewSystem())
}

// source is the part of the capture system the CLI needs.
type source interface {
	screenshot.Enumerator
	screenshot.Provider
}

func runWithArgs(args []string, stdout io.Writer, src source) error {
	if len(args) == 0 {
		args = []string{"cropper-cli"}
	}

	opts := &cliOptions{}
	cmd := newRootCmd(opts, src)
	cmd.SetOut(stdout)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *cliOptions, src source) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "cropper-cli",
		Short:         "Non-interactive display listing and capture",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Configure logging BEFORE any other operations.
			if opts.verbose {
				log.SetOutput(os.Stderr)
			} else {
				log.SetOutput(io.Discard)
			}
		},
	}
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")

	displays := &cobra.Command{
		Use:   "displays",
		Short: "List attached displays",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listDisplays(cmd.OutOrStdout(), src, opts.jsonOutput)
		},
	}
	displays.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")

	capture := &cobra.Command{
		Use:   "capture",
		Short: "Capture a display, or a region of it, to a PNG file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return captureToFile(cmd, src, *opts)
		},
	}
	capture.Flags().IntVar(&opts.display, "display", 0, "Display index to capture")
	capture.Flags().StringVar(&opts.region, "region", "", "Region x,y,w,h in the display's pixels (default: whole display)")
	capture.Flags().StringVar(&opts.out, "out", "", "Output PNG path ('-' for stdout; default: a timestamped file in SAVE_DIR)")

	cmd.AddCommand(displays, capture)
	return cmd
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		for _, name := range []string{"display", "region", "out", "json", "verbose"} {
			single := "-" + name
			if normalized[i] == single || strings.HasPrefix(normalized[i], single+"=") {
				normalized[i] = "-" + normalized[i]
				break
			}
		}
	}

	return normalized
}

type displayInfo struct {
	Index       int     `json:"index"`
	ID          string  `json:"id"`
	X           int     `json:"x"`
	Y           int     `json:"y"`
	PixelWidth  int     `json:"pixel_width"`
	PixelHeight int     `json:"pixel_height"`
	Scale       float64 `json:"scale"`
}

func listDisplays(w io.Writer, src screenshot.Enumerator, jsonOutput bool) error {
	displays, err := src.Displays()
	if err != nil {
		return err
	}
	if !jsonOutput {
		for _, d := range displays {
			fmt.Fprintln(w, d.String())
		}
		return nil
	}

	infos := make([]displayInfo, 0, len(displays))
	for _, d := range displays {
		infos = append(infos, displayInfo{
			Index:       d.Index,
			ID:          d.ID,
			X:           d.X,
			Y:           d.Y,
			PixelWidth:  d.PixelWidth,
			PixelHeight: d.PixelHeight,
			Scale:       d.Scale,
		})
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(infos); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}

func captureToFile(cmd *cobra.Command, src source, opts cliOptions) error {
	displays, err := src.Displays()
	if err != nil {
		return err
	}
	var target *screenshot.Display
	for i := range displays {
		if displays[i].Index == opts.display {
			target = &displays[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("no display with index %d (found %d displays)", opts.display, len(displays))
	}

	frame, err := src.Capture(cmd.Context(), *target)
	if err != nil {
		return err
	}
	defer frame.Release()

	img := frame.RGBA()
	if opts.region != "" {
		r, err := parseRegion(opts.region)
		if err != nil {
			return err
		}
		if img, err = frame.Crop(r.Rect()); err != nil {
			return err
		}
	}

	path := opts.out
	switch path {
	case "-":
		data, err := screenshot.EncodePNG(img)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	case "":
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if path, err = storage.New(cfg.SaveDir, cfg.SaveFormat, cfg.JPEGQuality).Save(img); err != nil {
			return err
		}
	default:
		data, err := screenshot.EncodePNG(img)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	log.Printf("Captured %s to %s", target.ID, path)
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

// parseRegion reads "x,y,w,h".
func parseRegion(s string) (screenshot.Region, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return screenshot.Region{}, fmt.Errorf("region must be x,y,w,h, got %q", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return screenshot.Region{}, fmt.Errorf("region must be x,y,w,h, got %q", s)
		}
		v[i] = n
	}
	if v[2] <= 0 || v[3] <= 0 {
		return screenshot.Region{}, fmt.Errorf("region width and height must be positive, got %q", s)
	}
	return screenshot.Region{X: v[0], Y: v[1], Width: v[2], Height: v[3]}, nil
}
