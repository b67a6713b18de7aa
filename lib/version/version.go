// Copyright 2026 The QIIME 2 Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package version provides build identity for the framework.
//
// The framework version is stamped into the VERSION resource of every
// archive this build writes. Release builds override it via -ldflags,
// for example:
//
//	go build -ldflags "-X github.com/cafferychen777/qiime2/lib/version.Framework=2023.2.0"
package version

import (
	"fmt"
	"runtime"
)

// These variables are set via -ldflags at build time.
var (
	// Framework is the framework release recorded in archives.
	Framework = "2023.2.0"

	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"
)

// Info returns a formatted version string suitable for --version output.
func Info() string {
	return fmt.Sprintf("%s (%s, %s)", Framework, GitCommit, BuildTime)
}

// Full returns detailed version information including Go version.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Short returns just the framework version.
func Short() string {
	return Framework
}
