package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"dario.cat/mergo"
	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

// LoadOptions controls configuration loading.
type LoadOptions struct {
	// Prefix is the overlay prefix, used to locate
	// <prefix>/.RootDepot/config.toml. Defaults to "/" when empty.
	Prefix string
	// ConfigPath overrides the project config path if provided.
	ConfigPath string
	// FlagOverrides carries CLI-flag values as the highest-precedence
	// layer; only its non-zero fields are applied, via mergo.
	FlagOverrides *Config
}

// Load returns the effective configuration after applying precedence:
// defaults < user < project < env < flags.
func Load(opts LoadOptions) (Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "/"
	}

	if err := mergeConfigFile(v, userConfigPath()); err != nil {
		return Config{}, err
	}
	if err := mergeConfigFile(v, projectConfigPath(prefix, opts.ConfigPath)); err != nil {
		return Config{}, err
	}
	if err := applyEnvOverrides(v); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}

	if opts.FlagOverrides != nil {
		if err := mergo.Merge(&cfg, *opts.FlagOverrides, mergo.WithOverride); err != nil {
			return Config{}, fmt.Errorf("config: merge flag overrides: %w", err)
		}
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, def Config) {
	v.SetDefault("general.prefix", def.General.Prefix)
	v.SetDefault("general.force", def.General.Force)
	v.SetDefault("general.verbose", def.General.Verbose)
	v.SetDefault("general.skip_dyld_hook", def.General.SkipDyldHook)
	v.SetDefault("general.log_level", def.General.LogLevel)
	v.SetDefault("general.output_format", def.General.OutputFormat)

	v.SetDefault("depot.lock_wait_timeout_seconds", def.Depot.LockWaitTimeoutSecs)
	v.SetDefault("depot.rollback_retention", def.Depot.RollbackRetention)
	v.SetDefault("depot.download_dir", def.Depot.DownloadDir)
	v.SetDefault("depot.auto_resolve_crashes", def.Depot.AutoResolveCrashes)

	v.SetDefault("tools.tar_path", def.Tools.TarPath)
	v.SetDefault("tools.xar_path", def.Tools.XarPath)
	v.SetDefault("tools.cpio_path", def.Tools.CpioPath)
	v.SetDefault("tools.pax_path", def.Tools.PaxPath)
	v.SetDefault("tools.rsync_path", def.Tools.RsyncPath)
	v.SetDefault("tools.dyld_cache_hook", def.Tools.DyldHook)

	v.SetDefault("tui.color_profile", def.TUI.ColorProfile)
}

func mergeConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("config: %s is a directory", path)
	}
	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("config: merge %s: %w", path, err)
	}
	return nil
}

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindBool
)

var envBindings = []struct {
	Env  string
	Key  string
	Kind valueKind
}{
	{"ROOTUP_PREFIX", "general.prefix", kindString},
	{"ROOTUP_FORCE", "general.force", kindBool},
	{"ROOTUP_VERBOSE", "general.verbose", kindInt},
	{"ROOTUP_SKIP_DYLD_HOOK", "general.skip_dyld_hook", kindBool},
	{"ROOTUP_LOG_LEVEL", "general.log_level", kindString},
	{"ROOTUP_OUTPUT_FORMAT", "general.output_format", kindString},
	{"ROOTUP_LOCK_WAIT_TIMEOUT_SECONDS", "depot.lock_wait_timeout_seconds", kindInt},
	{"ROOTUP_ROLLBACK_RETENTION", "depot.rollback_retention", kindInt},
	{"ROOTUP_DOWNLOAD_DIR", "depot.download_dir", kindString},
	{"ROOTUP_AUTO_RESOLVE_CRASHES", "depot.auto_resolve_crashes", kindBool},
	{"ROOTUP_TAR_PATH", "tools.tar_path", kindString},
	{"ROOTUP_XAR_PATH", "tools.xar_path", kindString},
	{"ROOTUP_CPIO_PATH", "tools.cpio_path", kindString},
	{"ROOTUP_PAX_PATH", "tools.pax_path", kindString},
	{"ROOTUP_RSYNC_PATH", "tools.rsync_path", kindString},
	{"ROOTUP_TUI_COLOR_PROFILE", "tui.color_profile", kindString},
}

func applyEnvOverrides(v *viper.Viper) error {
	for _, b := range envBindings {
		raw := os.Getenv(b.Env)
		if raw == "" {
			continue
		}
		parsed, err := parseValueByKind(raw, b.Kind)
		if err != nil {
			return fmt.Errorf("config: env %s: %w", b.Env, err)
		}
		v.Set(b.Key, parsed)
	}
	return nil
}

func parseValueByKind(raw string, kind valueKind) (any, error) {
	switch kind {
	case kindInt:
		return strconv.Atoi(raw)
	case kindBool:
		return strconv.ParseBool(raw)
	default:
		return raw, nil
	}
}

func userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".rootup", "config.toml")
}

func projectConfigPath(prefix, override string) string {
	if override != "" {
		return override
	}
	return filepath.Join(prefix, ".RootDepot", "config.toml")
}

// ConfigPaths returns the user and project config file paths.
func ConfigPaths(prefix, override string) (string, string) {
	return userConfigPath(), projectConfigPath(prefix, override)
}

// WriteValue persists cfg to path in TOML form, creating parent
// directories as needed.
func WriteValue(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: mkdir for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: create %s: %w", path, err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("config: encode %s: %w", path, err)
	}
	return nil
}

// GetValue retrieves a dot-notated value from cfg, e.g. "general.prefix".
func GetValue(cfg Config, key string) (any, bool) {
	segs := strings.SplitN(key, ".", 2)
	if len(segs) != 2 {
		return nil, false
	}
	switch segs[0] {
	case "general":
		return fieldByTag(cfg.General, segs[1])
	case "depot":
		return fieldByTag(cfg.Depot, segs[1])
	case "tools":
		return fieldByTag(cfg.Tools, segs[1])
	case "tui":
		return fieldByTag(cfg.TUI, segs[1])
	default:
		return nil, false
	}
}

// fieldByTag reflects over a config section struct to find the field
// whose `toml` tag matches name, for GetValue's dot-notated lookups.
func fieldByTag(section any, name string) (any, bool) {
	v := reflect.ValueOf(section)
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag := strings.Split(t.Field(i).Tag.Get("toml"), ",")[0]
		if tag == name {
			return v.Field(i).Interface(), true
		}
	}
	return nil, false
}
