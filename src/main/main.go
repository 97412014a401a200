package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"screen-cropper/src/commit"
	"screen-cropper/src/config"
	"screen-cropper/src/coordinator"
	"screen-cropper/src/eventloop"
	"screen-cropper/src/logutil"
	"screen-cropper/src/notification"
	"screen-cropper/src/overlay"
	"screen-cropper/src/runtimeinit"
	"screen-cropper/src/screenshot"
	"screen-cropper/src/session"
	"screen-cropper/src/singleinstance"
	"screen-cropper/src/storage"
	"screen-cropper/src/tray"
)

type mainOptions struct {
	runOnce  bool
	save     bool
	displays []int
	saveDir  string
}

func (o mainOptions) loadOptions() config.LoadOptions {
	lo := config.LoadOptions{SaveDirOverride: o.saveDir, DisplaysOverride: o.displays}
	if o.save {
		lo.DefaultActionOverride = config.ActionSave
	}
	return lo
}

func (o mainOptions) mode() singleinstance.Mode {
	if o.save {
		return singleinstance.ModeSave
	}
	return singleinstance.ModeClipboard
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args))
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"screen-cropper"}
	}

	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "screen-cropper",
		Short:         "Select a screen region on any display and copy or save it",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.runOnce {
				return runOnce(*opts, cmd.OutOrStdout())
			}
			return runResident(*opts)
		},
	}

	cmd.Flags().BoolVar(&opts.runOnce, "run-once", false, "Select once, deliver the crop and exit (delegates to a running resident)")
	cmd.Flags().BoolVar(&opts.save, "save", false, "Save the crop to SAVE_DIR instead of copying it; prints the path")
	cmd.Flags().IntSliceVar(&opts.displays, "display", nil, "Limit selection to this display index (repeatable)")
	cmd.Flags().StringVar(&opts.saveDir, "save-dir", "", "Directory for saved crops (overrides SAVE_DIR)")

	return cmd
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		for _, name := range []string{"run-once", "save-dir", "save", "display"} {
			single := "-" + name
			if normalized[i] == single || strings.HasPrefix(normalized[i], single+"=") {
				normalized[i] = "-" + normalized[i]
				break
			}
		}
	}

	return normalized
}

// runOnce prefers delegating to a resident via TCP and falls back to a
// standalone selection.
func runOnce(opts mainOptions, stdout io.Writer) error {
	// Load .env early so SINGLEINSTANCE_PORT_* are applied before delegation scan
	_, _ = config.LoadWithOptions(opts.loadOptions())

	ctx, cancel := signalContext()
	defer cancel()
	return handleRunOnceWithDelegation(ctx, opts.mode(), singleinstance.NewClient(), stdout, func() error {
		return runStandalone(opts, stdout)
	})
}

func handleRunOnceWithDelegation(ctx context.Context, mode singleinstance.Mode, client singleinstance.Client, stdout io.Writer, fallback func() error) error {
	delegated, payload, err := client.TryRunOnce(ctx, mode)
	if err != nil {
		log.Printf("Delegation error: %v; falling back to standalone", err)
		return fallback()
	}
	if !delegated {
		log.Printf("No resident detected (not delegated), running standalone")
		return fallback()
	}
	log.Printf("Delegated to resident")
	if payload != "" {
		fmt.Fprintln(stdout, payload)
	}
	return nil
}

func runStandalone(opts mainOptions, stdout io.Writer) error {
	cfg, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions:  opts.loadOptions(),
		SetupLogging: logutil.Setup,
	})
	if err != nil {
		return err
	}
	coordOpts, err := coordinatorOptions(cfg)
	if err != nil {
		return err
	}
	deliverer := newDeliverer(cfg)
	target := commit.StdoutTarget{Writer: stdout}

	var runErr error
	overlay.Main(func(windows session.WindowFactory) {
		ctx, cancel := signalContext()
		defer cancel()

		sys := screenshot.NewSystem()
		capturer := eventloop.CoordinatorCapturer{Enumerator: sys, Provider: sys, Windows: windows, Options: coordOpts}
		out, err := capturer.Capture(ctx, defaultAction(cfg))
		if err != nil {
			_ = target.OnFailure(err)
			runErr = err
			return
		}
		payload, err := deliverer.Deliver(out.Action, out.Crop)
		if err != nil {
			runErr = err
			return
		}
		log.Printf("Standalone %s completed on %s", out.Action, out.Display)
		runErr = target.OnSuccess(out.Action, payload)
	})
	return runErr
}

func runResident(opts mainOptions) error {
	// Load .env early so SINGLEINSTANCE_PORT_* are available for pre-flight
	_, _ = config.LoadWithOptions(opts.loadOptions())
	if port, ok := singleinstance.DetectResidentPort(context.Background()); ok {
		log.Printf("Pre-flight: resident already answering on port %d", port)
		return fmt.Errorf("one is already running on port %d", port)
	}
	start, end := singleinstance.GetPortRangeForDebug()
	log.Printf("Pre-flight: no resident in ports %d-%d, starting", start, end)

	cfg, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions:        opts.loadOptions(),
		SetupLogging:       logutil.Setup,
		ShowBlockingErrors: true,
	})
	if err != nil {
		return err
	}
	coordOpts, err := coordinatorOptions(cfg)
	if err != nil {
		return err
	}

	log.Printf("Screen Cropper initialized")
	log.Printf("Hotkey: %s", cfg.Hotkey)
	log.Printf("Save directory: %s (%s)", cfg.SaveDir, cfg.SaveFormat)
	log.Printf("Partial failure policy: %s, linked sessions: %v", coordOpts.Policy, coordOpts.Linked)
	logMonitorConfiguration()

	notifier := notification.New(cfg.ShowNotifications)
	tooltip := fmt.Sprintf("Screen Cropper - Press %s to capture", cfg.Hotkey)

	var runErr error
	overlay.Main(func(windows session.WindowFactory) {
		ctx, cancel := signalContext()
		defer cancel()

		sys := screenshot.NewSystem()
		loop := eventloop.New(eventloop.Options{
			Capturer:       eventloop.CoordinatorCapturer{Enumerator: sys, Provider: sys, Windows: windows, Options: coordOpts},
			Deliver:        newDeliverer(cfg).Deliver,
			Notifier:       notifier,
			DefaultAction:  defaultAction(cfg),
			DefaultTooltip: tooltip,
		})

		tray.UpdateTooltip(tooltip)
		go tray.Run(tray.Menu{
			OnCapture:     func() { loop.Trigger(session.ActionCopy) },
			OnCaptureSave: func() { loop.Trigger(session.ActionSave) },
			OnQuit:        cancel,
		})
		defer tray.Quit()

		if err := loop.StartHotkey(ctx, cfg.Hotkey); err != nil {
			log.Printf("Hotkey unavailable: %v", err)
			_ = notifier.Show("Hotkey unavailable", err.Error())
		}

		if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("event loop stopped: %v", err)
			runErr = err
		}
	})
	return runErr
}

// signalContext is cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func coordinatorOptions(cfg *config.Config) (coordinator.Options, error) {
	policy, err := coordinator.ParsePolicy(cfg.PartialFailurePolicy)
	if err != nil {
		return coordinator.Options{}, err
	}
	return coordinator.Options{
		Policy:   policy,
		Linked:   cfg.LinkedSessions,
		Displays: cfg.Displays,
	}, nil
}

func defaultAction(cfg *config.Config) session.Action {
	if cfg.DefaultAction == config.ActionSave {
		return session.ActionSave
	}
	return session.ActionCopy
}

func newDeliverer(cfg *config.Config) commit.Deliverer {
	return commit.Deliverer{
		Clipboard: commit.SystemClipboard{},
		Storage:   storage.New(cfg.SaveDir, cfg.SaveFormat, cfg.JPEGQuality),
	}
}
