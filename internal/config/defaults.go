package config

// DefaultConfig returns the built-in defaults, the lowest layer of the
// precedence chain.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Prefix:       "/",
			Force:        false,
			Verbose:      0,
			SkipDyldHook: false,
			LogLevel:     "info",
			OutputFormat: "text",
		},
		Depot: DepotConfig{
			LockWaitTimeoutSecs: 30,
			RollbackRetention:   0, // 0 = keep every rollback archive
			DownloadDir:         "",
			AutoResolveCrashes:  false,
		},
		Tools: ToolsConfig{
			TarPath:   "tar",
			XarPath:   "xar",
			CpioPath:  "cpio",
			PaxPath:   "pax",
			RsyncPath: "rsync",
			DyldHook:  "update_dyld_shared_cache",
		},
		TUI: TUIConfig{
			ColorProfile: "auto",
		},
	}
}
