// Package version exposes build-time version information for the feedsync
// binary.
//
// The variables are set with ldflags:
//
//	go build -ldflags "\
//	  -X github.com/ncobase/feedsync/version.Version=1.2.3 \
//	  -X github.com/ncobase/feedsync/version.Branch=main \
//	  -X github.com/ncobase/feedsync/version.Revision=abc123 \
//	  -X 'github.com/ncobase/feedsync/version.BuiltAt=$(date)'"
//
// When they are left unset, GetVersionInfo falls back to the VCS settings the
// go tool stamps into the binary.
package version
