package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/thoreinstein/claudeguard/internal/errors"
	"github.com/thoreinstein/claudeguard/internal/paths"
)

// EnvPrefix is the prefix for environment overrides.
const EnvPrefix = "CLAUDEGUARD"

// Config represents the top-level configuration structure.
type Config struct {
	Backup        BackupConfig        `mapstructure:"backup" yaml:"backup"`
	RiskDetection RiskDetectionConfig `mapstructure:"risk_detection" yaml:"risk_detection"`
	Verification  VerificationConfig  `mapstructure:"verification" yaml:"verification"`
	Storage       StorageConfig       `mapstructure:"storage" yaml:"storage"`

	// Source is the config file that was read, empty when defaults were used.
	Source string `mapstructure:"-" yaml:"-"`
}

// BackupConfig controls whether backups are taken and how long they are kept.
type BackupConfig struct {
	Enabled       bool `mapstructure:"enabled" yaml:"enabled"`
	MaxBackups    int  `mapstructure:"max_backups" yaml:"max_backups"`
	RetentionDays int  `mapstructure:"retention_days" yaml:"retention_days"`
	AutoCleanup   bool `mapstructure:"auto_cleanup" yaml:"auto_cleanup"`
}

// RiskDetectionConfig controls risk classification side effects.
type RiskDetectionConfig struct {
	Enabled        bool `mapstructure:"enabled" yaml:"enabled"`
	WarnOnHighRisk bool `mapstructure:"warn_on_high_risk" yaml:"warn_on_high_risk"`
}

// VerificationConfig controls compliance reporting.
type VerificationConfig struct {
	AutoVerify bool `mapstructure:"auto_verify" yaml:"auto_verify"`
	// ComplianceThreshold is the percentage at or above which the store is compliant.
	ComplianceThreshold float64 `mapstructure:"compliance_threshold" yaml:"compliance_threshold"`
}

// StorageConfig holds reserved options. Neither is implemented.
type StorageConfig struct {
	Compression bool `mapstructure:"compression" yaml:"compression"`
	Encryption  bool `mapstructure:"encryption" yaml:"encryption"`
}

// Default values.
const (
	DefaultMaxBackups          = 100
	DefaultRetentionDays       = 30
	DefaultComplianceThreshold = 100.0
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Backup: BackupConfig{
			Enabled:       true,
			MaxBackups:    DefaultMaxBackups,
			RetentionDays: DefaultRetentionDays,
			AutoCleanup:   true,
		},
		RiskDetection: RiskDetectionConfig{
			Enabled:        true,
			WarnOnHighRisk: true,
		},
		Verification: VerificationConfig{
			AutoVerify:          false,
			ComplianceThreshold: DefaultComplianceThreshold,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("backup.enabled", d.Backup.Enabled)
	v.SetDefault("backup.max_backups", d.Backup.MaxBackups)
	v.SetDefault("backup.retention_days", d.Backup.RetentionDays)
	v.SetDefault("backup.auto_cleanup", d.Backup.AutoCleanup)
	v.SetDefault("risk_detection.enabled", d.RiskDetection.Enabled)
	v.SetDefault("risk_detection.warn_on_high_risk", d.RiskDetection.WarnOnHighRisk)
	v.SetDefault("verification.auto_verify", d.Verification.AutoVerify)
	v.SetDefault("verification.compliance_threshold", d.Verification.ComplianceThreshold)
	v.SetDefault("storage.compression", d.Storage.Compression)
	v.SetDefault("storage.encryption", d.Storage.Encryption)
}

// Load reads the configuration for the project described by layout.
//
// If path is non-empty only that file is read and it must exist. Otherwise
// the project config and then the user-wide config are searched; finding
// neither is not an error. Every failure is marked with errors.ErrConfig.
func Load(path string, layout paths.Layout) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(paths.ConfigFileName, ".yaml"))
		v.AddConfigPath(layout.StateDir())
		v.AddConfigPath(paths.GlobalConfigDir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case path == "" && errors.As(err, &notFound):
			// Implicit load: defaults apply.
		case path != "":
			return nil, errors.Mark(errors.Wrapf(err, "reading config file %s", path), errors.ErrConfig)
		default:
			return nil, errors.Mark(errors.Wrap(err, "reading config file"), errors.ErrConfig)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "unmarshaling config"), errors.ErrConfig)
	}
	cfg.Source = v.ConfigFileUsed()

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Mark(errors.Wrap(errs[0], "validating config"), errors.ErrConfig)
	}

	return &cfg, nil
}

// Unsupported lists reserved options that are switched on but have no effect.
func (c *Config) Unsupported() []string {
	var names []string
	if c.Storage.Compression {
		names = append(names, "storage.compression")
	}
	if c.Storage.Encryption {
		names = append(names, "storage.encryption")
	}
	return names
}
