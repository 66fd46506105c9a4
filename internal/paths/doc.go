// Package paths resolves the on-disk layout used by claudeguard.
//
// Everything a project needs lives under a single state directory in the
// project root:
//
//	<project>/.claudeguard/
//	├── config.yaml
//	├── backups/
//	│   └── backup_<YYYYMMDD_HHMMSS_ffffff>/
//	│       ├── metadata.json
//	│       └── {copied files, mirroring project-relative paths}
//	└── logs/
//	    └── operation_history.jsonl
//
// This layout is shared with existing installations and must not change.
//
// A user-wide config file is also looked up under the XDG config home
// (via github.com/adrg/xdg), e.g. ~/.config/claudeguard/config.yaml on Linux.
package paths
