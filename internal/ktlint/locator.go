/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package ktlint

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/fulmenhq/ktlint-review/pkg/logger"
)

// BinaryName is the executable looked up on PATH.
const BinaryName = "ktlint"

// EnvBinaryOverride points at a ktlint executable outside PATH.
const EnvBinaryOverride = "KTLINT_REVIEW_KTLINT_PATH"

// ResolveOptions configures how the ktlint binary is found
type ResolveOptions struct {
	// Explicit is a configured path (lint.ktlint_path); it wins over everything else
	Explicit string
	// EnvOverride names an environment variable holding a path
	EnvOverride string
}

// ResolveBinary finds ktlint following the resolution order:
// 1. Explicit configured path
// 2. Environment variable override
// 3. PATH lookup (the `which ktlint` check)
//
// A configured path that is not an executable file is an error rather than a
// reason to fall back to PATH. The returned error wraps ErrToolMissing.
func ResolveBinary(opts ResolveOptions) (string, error) {
	logger.Debug("starting ktlint resolution", logger.String("explicit", opts.Explicit), logger.String("env_override", opts.EnvOverride))

	if p := strings.TrimSpace(opts.Explicit); p != "" {
		if isExecutableFile(p) {
			logger.Debug("resolution successful: configured path", logger.String("path", p))
			return p, nil
		}
		logger.Warn("configured ktlint path is not an executable file", logger.String("path", p))
		return "", fmt.Errorf("%w: configured path %s is not an executable file", ErrToolMissing, p)
	}

	if opts.EnvOverride != "" {
		if p := os.Getenv(opts.EnvOverride); p != "" {
			if isExecutableFile(p) {
				logger.Debug("resolution successful: env override", logger.String("path", p))
				return p, nil
			}
			logger.Warn("ignoring ktlint override that is not an executable file", logger.String("env_var", opts.EnvOverride), logger.String("path", p))
		}
	}

	if p, err := exec.LookPath(BinaryName); err == nil {
		logger.Debug("resolution successful: PATH", logger.String("path", p))
		return p, nil
	}

	var suggestions []string
	if opts.EnvOverride != "" {
		suggestions = append(suggestions, fmt.Sprintf("set %s=/path/to/%s", opts.EnvOverride, BinaryName))
	}
	suggestions = append(suggestions, fmt.Sprintf("install %s and ensure it's in your PATH", BinaryName))
	return "", fmt.Errorf("%w: %s", ErrToolMissing, strings.Join(suggestions, " or "))
}

func isExecutableFile(p string) bool {
	st, err := os.Stat(p)
	if err != nil || st.IsDir() {
		return false
	}
	return true
}
