// pkg/config/config.go
package config

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/pentora-ai/reconcore/pkg/reconerr"
	"github.com/pentora-ai/reconcore/pkg/recontypes"
)

var validate = validator.New()

// Global Koanf instance, initialized once at startup.
var (
	k    *koanf.Koanf
	once sync.Once
)

// InitGlobalConfig initializes the global Koanf instance.
// This should be called early in the application lifecycle, before Load.
func InitGlobalConfig() {
	once.Do(func() {
		k = koanf.New(".")
	})
}

// Manager handles loading and accessing application configuration.
type Manager struct {
	koanfInstance *koanf.Koanf
	currentConfig Config
	mu            sync.RWMutex // To protect currentConfig during runtime updates
}

// NewManager creates a new Manager.
// It initializes the global Koanf instance if not already done.
func NewManager( /*dbProvider dbprovider.Provider*/ ) *Manager { // Pass DB provider if used
	InitGlobalConfig() // Ensure global k is initialized
	// Initialize the Koanf instance if it hasn't been done already
	return &Manager{
		koanfInstance: k, // Use the global instance
		// dbProvider:    dbProvider,
	}
}

// DefaultConfig returns a new Config struct populated with hardcoded default values.
// These serve as the baseline configuration if no other sources override them.
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			File:   "",
		},
		Scan: recontypes.DefaultScanConfig(),
	}
}

// Load loads the hardcoded defaults and then the command-line flags, which
// override them, and populates the manager's currentConfig. It reads no
// config file and no environment variables; customConfigFilePath is not used.
func (m *Manager) Load(flags *pflag.FlagSet, customConfigFilePath string) error {
	m.mu.Lock() // Lock for writing to m.koanfInstance and m.currentConfig
	defer m.mu.Unlock()

	defaultCfgMap := DefaultConfigAsMap()
	if err := m.koanfInstance.Load(confmap.Provider(defaultCfgMap, "."), nil); err != nil {
		return fmt.Errorf("error loading hardcoded defaults into koanf: %w", err)
	}

	// Load command-line flags on top of the defaults
	if flags != nil {
		// The posflag.Provider needs the Koanf instance to correctly map flag names to Koanf keys.
		if err := m.koanfInstance.Load(posflag.Provider(flags, ".", m.koanfInstance), nil); err != nil {
			return fmt.Errorf("error loading command-line flags: %w", err)
		}

		debugFlag := flags.Lookup("debug")
		if debugFlag != nil && debugFlag.Value.String() == "true" {
			_ = m.koanfInstance.Set("log.level", "debug")
		}
	}

	// Unmarshal the final merged configuration into m.currentConfig
	var newCfg Config
	if err := m.koanfInstance.UnmarshalWithConf("", &newCfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fmt.Errorf("error unmarshaling final config: %w", err)
	}
	if err := validate.Struct(newCfg.Scan); err != nil {
		return reconerr.Wrap(reconerr.ConfigInvalid, err)
	}
	m.currentConfig = newCfg

	// Apply any post-load processing or validation.
	m.postProcessConfig()

	return nil
}

// LoadWithSources loads configuration from an explicit, caller-ordered set
// of ConfigSources instead of the fixed defaults/flags pipeline Load
// hard-codes. Sources are applied in ascending Priority() order
// regardless of their position in sources, so a caller can insert a custom
// source (e.g. a secrets layer) without re-deriving the whole precedence
// chain.
func (m *Manager) LoadWithSources(sources []ConfigSource) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ordered := append([]ConfigSource(nil), sources...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Priority() < ordered[j].Priority() })

	for _, source := range ordered {
		if err := source.Load(m.koanfInstance); err != nil {
			return fmt.Errorf("error loading config source %q: %w", source.Name(), err)
		}
	}

	var newCfg Config
	if err := m.koanfInstance.UnmarshalWithConf("", &newCfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fmt.Errorf("error unmarshaling final config: %w", err)
	}
	if err := validate.Struct(newCfg.Scan); err != nil {
		return reconerr.Wrap(reconerr.ConfigInvalid, err)
	}
	m.currentConfig = newCfg
	m.postProcessConfig()
	return nil
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	// Return a copy to prevent modification of the internal state.
	// For deep copies, you might need a library or manual copying if structs are complex.
	// For this example, a shallow copy is shown.
	cfgCopy := m.currentConfig
	return cfgCopy
}

// UpdateRuntimeValue updates a specific configuration value at runtime.
// This is a simplified example; a more robust solution would involve:
// - Validating the key and value.
// - Potentially re-unmarshaling or selectively updating m.currentConfig.
// - Notifying other parts of the application about the change (e.g., via an event bus).
func (m *Manager) UpdateRuntimeValue(key string, value interface{}) error {
	return nil
}

// postProcessConfig handles any adjustments needed after loading and unmarshaling.
func (m *Manager) postProcessConfig() {}

// DefaultConfigAsMap converts the DefaultConfig struct to a map[string]interface{}
// for Koanf's confmap.Provider. This is a bit manual but ensures Koanf knows all keys.
func DefaultConfigAsMap() map[string]interface{} {
	def := DefaultConfig()
	return map[string]interface{}{
		"log.level":  def.Log.Level,
		"log.format": def.Log.Format,
		"log.file":   def.Log.File,

		"scan.preset_port_range":       def.Scan.PresetPortRange,
		"scan.preset_extra_ports":      def.Scan.PresetExtraPorts,
		"scan.web_ports":               def.Scan.WebPorts,
		"scan.banner_http_nudge_ports": def.Scan.BannerHTTPNudgePorts,

		"scan.smart_scan_enabled":   def.Scan.SmartScanEnabled,
		"scan.smart_scan_threshold": def.Scan.SmartScanThreshold,

		"scan.sweep_timeout_ms": def.Scan.SweepTimeoutMS,
		"scan.sweep_batch_size": def.Scan.SweepBatchSize,
		"scan.sweep_tries":      def.Scan.SweepTries,
		"scan.sweep_ulimit":     def.Scan.SweepUlimit,
		"scan.rustscan_path":    def.Scan.RustscanPath,

		"scan.banner_timeout_s": def.Scan.BannerTimeoutSeconds,
		"scan.banner_max_bytes": def.Scan.BannerMaxBytes,

		"scan.http_timeout_s":     def.Scan.HTTPTimeoutSeconds,
		"scan.http_max_redirects": def.Scan.HTTPMaxRedirects,
		"scan.http_user_agent":    def.Scan.HTTPUserAgent,

		"scan.directory_scan_enabled":  def.Scan.DirectoryScanEnabled,
		"scan.directory_concurrency":   def.Scan.DirectoryConcurrency,
		"scan.directory_timeout_s":     def.Scan.DirectoryTimeoutSeconds,

		"scan.max_concurrent_targets": def.Scan.MaxConcurrentTargets,
	}
}

// BindFlags defines command-line flags corresponding to configuration settings.
// These flags allow overriding config file / environment variable settings.
// This function should be called when setting up Cobra commands.
func BindFlags(flags *pflag.FlagSet) {
	// Get default config to provide default values for flags' help text
	// defaults := DefaultConfig()

	// Log flags
	// flags.String("log.level", defaults.Log.Level, "Log level (debug, info, warn, error)")
	// flags.String("log.format", defaults.Log.Format, "Log format (text, json)")
	// flags.String("log.file", defaults.Log.File, "Path to log file (optional, leave empty for stdout)")

	var flagvar bool
	flags.BoolVar(&flagvar, "debug", false, "Enable debug logging")

	// Note: The main --config / -c flag for specifying the config file path
	// is typically defined directly on the root Cobra command's PersistentFlags.
}
