package tablewindow

import "github.com/cristianoliveira/workbench/internal/config"

// ConfigFromGlobal reads the window sizes from the global configuration.
func ConfigFromGlobal() Config {
	d := DefaultConfig()
	return Config{
		InitialWindowSize: config.GetInt("initial_rows", d.InitialWindowSize),
		PreloadThreshold:  config.GetInt("preload_rows", d.PreloadThreshold),
		DeltaRows:         config.GetInt("delta_rows", d.DeltaRows),
		FetchTimeout:      config.GetDuration("fetch_timeout", d.FetchTimeout),
		RetryBackoff:      config.GetDuration("retry_backoff", d.RetryBackoff),
	}.withDefaults()
}
