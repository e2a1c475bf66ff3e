// Package config implements rootup's hierarchical configuration.
// Precedence: defaults < user (~/.rootup/config.toml) < project
// (<prefix>/.RootDepot/config.toml) < environment (ROOTUP_*) < CLI flags.
package config

// Config is the top-level configuration structure.
type Config struct {
	General GeneralConfig `toml:"general" mapstructure:"general"`
	Depot   DepotConfig   `toml:"depot" mapstructure:"depot"`
	Tools   ToolsConfig   `toml:"tools" mapstructure:"tools"`
	TUI     TUIConfig     `toml:"tui" mapstructure:"tui"`
}

// GeneralConfig holds core CLI behavior knobs, the flag-settable defaults
// named in the external interfaces surface.
type GeneralConfig struct {
	Prefix       string `toml:"prefix" mapstructure:"prefix"`
	Force        bool   `toml:"force" mapstructure:"force"`
	Verbose      int    `toml:"verbose" mapstructure:"verbose"`
	SkipDyldHook bool   `toml:"skip_dyld_hook" mapstructure:"skip_dyld_hook"`
	LogLevel     string `toml:"log_level" mapstructure:"log_level"`
	OutputFormat string `toml:"output_format" mapstructure:"output_format"` // text | json | yaml
}

// DepotConfig holds depot-lifecycle knobs.
type DepotConfig struct {
	LockWaitTimeoutSecs int    `toml:"lock_wait_timeout_seconds" mapstructure:"lock_wait_timeout_seconds"`
	RollbackRetention   int    `toml:"rollback_retention" mapstructure:"rollback_retention"`
	DownloadDir         string `toml:"download_dir" mapstructure:"download_dir"`
	AutoResolveCrashes  bool   `toml:"auto_resolve_crashes" mapstructure:"auto_resolve_crashes"`
}

// ToolsConfig holds configured paths for external binaries. These values
// are loaded and validated but not read elsewhere: extraction, compaction
// and fetch invoke tar, xar, cpio, pax and rsync by bare name on PATH.
type ToolsConfig struct {
	TarPath   string `toml:"tar_path" mapstructure:"tar_path"`
	XarPath   string `toml:"xar_path" mapstructure:"xar_path"`
	CpioPath  string `toml:"cpio_path" mapstructure:"cpio_path"`
	PaxPath   string `toml:"pax_path" mapstructure:"pax_path"`
	RsyncPath string `toml:"rsync_path" mapstructure:"rsync_path"`
	DyldHook  string `toml:"dyld_cache_hook" mapstructure:"dyld_cache_hook"`
}

// TUIConfig holds settings for the optional interactive archive browser.
// ColorProfile is loaded and validated; the browser does not read it.
type TUIConfig struct {
	ColorProfile string `toml:"color_profile" mapstructure:"color_profile"` // auto | ansi | ansi256 | truecolor | ascii
}
