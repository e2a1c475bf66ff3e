package config

import (
	"errors"
	"fmt"
)

// Validate checks cfg for internally inconsistent or out-of-range values,
// accumulating every problem found rather than failing on the first.
func Validate(cfg Config) error {
	var errs []error

	if cfg.General.Prefix == "" {
		errs = append(errs, errors.New("general.prefix must not be empty"))
	}
	switch cfg.General.OutputFormat {
	case "text", "json", "yaml":
	default:
		errs = append(errs, fmt.Errorf("general.output_format %q must be one of text, json, yaml", cfg.General.OutputFormat))
	}
	if cfg.General.Verbose < 0 {
		errs = append(errs, errors.New("general.verbose must not be negative"))
	}

	if cfg.Depot.LockWaitTimeoutSecs < 0 {
		errs = append(errs, errors.New("depot.lock_wait_timeout_seconds must not be negative"))
	}
	if cfg.Depot.RollbackRetention < 0 {
		errs = append(errs, errors.New("depot.rollback_retention must not be negative"))
	}

	for name, path := range map[string]string{
		"tools.tar_path":   cfg.Tools.TarPath,
		"tools.xar_path":   cfg.Tools.XarPath,
		"tools.cpio_path":  cfg.Tools.CpioPath,
		"tools.pax_path":   cfg.Tools.PaxPath,
		"tools.rsync_path": cfg.Tools.RsyncPath,
	} {
		if path == "" {
			errs = append(errs, fmt.Errorf("%s must not be empty", name))
		}
	}

	switch cfg.TUI.ColorProfile {
	case "auto", "ansi", "ansi256", "truecolor", "ascii":
	default:
		errs = append(errs, fmt.Errorf("tui.color_profile %q must be one of auto, ansi, ansi256, truecolor, ascii", cfg.TUI.ColorProfile))
	}

	return errors.Join(errs...)
}
