package runtimeinit

import (
	"fmt"

	"screen-cropper/src/clipboard"
	"screen-cropper/src/config"
	"screen-cropper/src/notification"
)

type Options struct {
	LoadOptions  config.LoadOptions
	SetupLogging func(bool)
	// ShowBlockingErrors pops a message box for startup failures; used by
	// the resident, which has no console.
	ShowBlockingErrors bool
	// SkipClipboard leaves the clipboard uninitialized, for runs that only
	// save to disk.
	SkipClipboard bool
}

func Bootstrap(opts Options) (*config.Config, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		err = fmt.Errorf("failed to load configuration: %w", err)
		if opts.ShowBlockingErrors {
			notification.ShowBlockingError("Configuration error", err.Error())
		}
		return nil, err
	}

	if opts.SetupLogging != nil {
		opts.SetupLogging(cfg.EnableFileLogging)
	}

	if opts.SkipClipboard {
		return cfg, nil
	}
	if err := clipboard.Init(); err != nil {
		err = fmt.Errorf("failed to initialize clipboard: %w", err)
		if opts.ShowBlockingErrors {
			notification.ShowBlockingError("Clipboard unavailable", err.Error())
		}
		return nil, err
	}

	return cfg, nil
}
