package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/trackora/internal/paths"
	"github.com/mesh-intelligence/trackora/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	// Config keys.
	cfgKeyBackend  = "backend"
	cfgKeyDataDir  = "data_dir"
	cfgKeyStoreKey = "store_key"
	cfgKeyLogLevel = "log_level"

	defaultLogLevel = "warn"
)

// defaultConfigYAML is the content written to config.yaml on first run.
const defaultConfigYAML = `# Trackora configuration

# Storage backend: sqlite or file
backend: sqlite

# Data directory (optional; overridable by --data-dir flag)
# data_dir:

# Name of the slot holding the tracker document
# store_key: tracker-data-v2

# Log level: debug, info, warn or error
# log_level: warn
`

// loadConfig reads config.yaml from the resolved config directory using Viper.
// It creates the config directory and a default config.yaml on first run.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeyStoreKey, types.DefaultStoreKey)
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// ensureDefaultConfigFile creates a default config.yaml if the file does not
// exist in the config directory.
func ensureDefaultConfigFile(configDir string) error {
	path := paths.ConfigFile(configDir)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// effectiveConfig is the resolved configuration printed by "config show".
type effectiveConfig struct {
	ConfigFile string `yaml:"config_file" json:"config_file"`
	Backend    string `yaml:"backend" json:"backend"`
	DataDir    string `yaml:"data_dir" json:"data_dir"`
	StoreKey   string `yaml:"store_key" json:"store_key"`
	LogLevel   string `yaml:"log_level" json:"log_level"`
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.storeConfig()
			if err != nil {
				return err
			}
			eff := effectiveConfig{
				ConfigFile: a.config.ConfigFileUsed(),
				Backend:    cfg.Backend,
				DataDir:    cfg.DataDir,
				StoreKey:   cfg.Key(),
				LogLevel:   a.config.GetString(cfgKeyLogLevel),
			}
			if a.flags.jsonMode {
				return printJSON(cmd, eff)
			}
			data, err := yaml.Marshal(&eff)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			_, err = out(cmd).Write(data)
			return err
		},
	})
	return cmd
}
