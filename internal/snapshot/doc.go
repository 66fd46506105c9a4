// Package snapshot stores backups on disk.
//
// Each backup is a directory under the backup root:
//
//	backups/
//	  backup_20260119_143012_004512/
//	    metadata.json
//	    src/main.go
//	    README.md
//
// The directory mirrors the project-relative paths of the files it holds,
// and metadata.json describes them with a [Record]. Metadata is written
// only after every file has been copied, so a directory without metadata
// is an incomplete backup and is not readable through [Store.Read].
package snapshot
