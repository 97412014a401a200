package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvPathEnvVar = "SCREEN_CROPPER_ENV"

	ActionCopy = "copy"
	ActionSave = "save"

	PolicyContinue = "continue"
	PolicyAbort    = "abort"

	DefaultHotkey      = "Ctrl+Alt+A"
	DefaultSaveFormat  = "png"
	DefaultJPEGQuality = 90
)

type LoadOptions struct {
	SaveDirOverride       string
	DefaultActionOverride string
	DisplaysOverride      []int
}

type Config struct {
	EnableFileLogging    bool
	Hotkey               string
	SaveDir              string
	SaveFormat           string
	JPEGQuality          int
	DefaultAction        string
	PartialFailurePolicy string
	LinkedSessions       bool
	Displays             []int
	ShowNotifications    bool
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) .env in the application (executable) directory
	// 2) If not found, use SCREEN_CROPPER_ENV env var as a path to a config file
	if envPath := resolveEnvPath(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	saveDir, err := resolveSaveDir(firstNonEmpty(opts.SaveDirOverride, os.Getenv("SAVE_DIR")))
	if err != nil {
		return nil, err
	}

	format := strings.ToLower(getEnvWithDefault("SAVE_FORMAT", DefaultSaveFormat))
	switch format {
	case "png":
	case "jpg", "jpeg":
		format = "jpg"
	default:
		return nil, fmt.Errorf("SAVE_FORMAT must be png or jpg, got %q", format)
	}

	quality := DefaultJPEGQuality
	if v := os.Getenv("JPEG_QUALITY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			return nil, fmt.Errorf("JPEG_QUALITY must be an integer in 1..100, got %q", v)
		}
		quality = n
	}

	action, err := resolveDefaultAction(firstNonEmpty(opts.DefaultActionOverride, os.Getenv("DEFAULT_ACTION")))
	if err != nil {
		return nil, err
	}

	policy := strings.ToLower(strings.TrimSpace(getEnvWithDefault("PARTIAL_FAILURE_POLICY", PolicyContinue)))
	if policy != PolicyContinue && policy != PolicyAbort {
		return nil, fmt.Errorf("PARTIAL_FAILURE_POLICY must be continue or abort, got %q", policy)
	}

	displays := opts.DisplaysOverride
	if len(displays) == 0 {
		displays, err = parseDisplays(os.Getenv("DISPLAYS"))
		if err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		EnableFileLogging:    strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true",
		Hotkey:               getEnvWithDefault("HOTKEY", DefaultHotkey),
		SaveDir:              saveDir,
		SaveFormat:           format,
		JPEGQuality:          quality,
		DefaultAction:        action,
		PartialFailurePolicy: policy,
		LinkedSessions:       getEnvBool("LINKED_SESSIONS", true),
		Displays:             displays,
		ShowNotifications:    getEnvBool("SHOW_NOTIFICATIONS", true),
	}

	return cfg, nil
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}

	execDir := filepath.Dir(execPath)
	exeEnv := filepath.Join(execDir, ".env")
	if _, err := os.Stat(exeEnv); err == nil {
		return exeEnv
	}

	if alt := os.Getenv(EnvPathEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

// resolveSaveDir expands a leading ~ and rejects parent-directory segments.
func resolveSaveDir(dir string) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot resolve default save directory: %w", err)
		}
		return filepath.Join(home, "Pictures", "screen-cropper"), nil
	}
	for _, part := range strings.FieldsFunc(dir, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return "", fmt.Errorf("SAVE_DIR must not contain '..': %q", dir)
		}
	}
	if dir == "~" || strings.HasPrefix(dir, "~/") || strings.HasPrefix(dir, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot expand ~ in SAVE_DIR: %w", err)
		}
		dir = filepath.Join(home, dir[1:])
	}
	return filepath.Clean(dir), nil
}

func resolveDefaultAction(value string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", ActionCopy, "clipboard":
		return ActionCopy, nil
	case ActionSave:
		return ActionSave, nil
	default:
		return "", fmt.Errorf("DEFAULT_ACTION must be copy or save, got %q", value)
	}
}

// parseDisplays reads a comma-separated list of display indices.
func parseDisplays(value string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("DISPLAYS must list non-negative display indices, got %q", part)
		}
		out = append(out, n)
	}
	return out, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultValue
	}
	return b
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
