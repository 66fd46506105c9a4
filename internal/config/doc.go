// Package config loads the claudeguard configuration document.
//
// The document is YAML with four sections:
//
//	backup:
//	  enabled: true
//	  max_backups: 100
//	  retention_days: 30
//	  auto_cleanup: true
//	risk_detection:
//	  enabled: true
//	  warn_on_high_risk: true
//	verification:
//	  auto_verify: false
//	  compliance_threshold: 100
//	storage:
//	  compression: false   # reserved
//	  encryption: false    # reserved
//
// [Load] searches <project>/.claudeguard/config.yaml and then the user-wide
// XDG location, falling back to [Default] values when neither exists. Every
// key can be overridden from the environment with the CLAUDEGUARD_ prefix,
// e.g. CLAUDEGUARD_BACKUP_MAX_BACKUPS=20.
//
// A loaded *Config is treated as immutable; callers that need a variation
// copy the struct.
package config
