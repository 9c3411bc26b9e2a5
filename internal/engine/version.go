package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

const probeTimeout = 10 * time.Second

// Godot prints e.g. "4.2.1.stable.official.b09f793f5" or "4.3.stable.mono".
var godotVersionRe = regexp.MustCompile(`^v?(\d+\.\d+(?:\.\d+)?)`)

// EngineVersion is the parsed output of `<bin> --version`.
type EngineVersion struct {
	// Raw is the first line the engine printed.
	Raw string
	// Version is the numeric part of Raw.
	Version *semver.Version
}

// ProbeVersion runs `<bin> --version` and parses the result.
func ProbeVersion(ctx context.Context, bin string) (*EngineVersion, error) {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	var stdout bytes.Buffer

	cmd := exec.CommandContext(probeCtx, bin, "--version") //nolint:gosec
	cmd.Stdout = &stdout
	cmd.WaitDelay = waitDelay

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("running %s --version: %w", bin, err)
	}

	return ParseVersion(stdout.String())
}

// ParseVersion extracts the semantic version from engine --version output.
func ParseVersion(output string) (*EngineVersion, error) {
	line := strings.TrimSpace(output)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}

	m := godotVersionRe.FindStringSubmatch(line)
	if m == nil {
		return nil, fmt.Errorf("unrecognized engine version %q", line)
	}

	v, err := semver.NewVersion(m[1])
	if err != nil {
		return nil, fmt.Errorf("parsing engine version %q: %w", m[1], err)
	}

	return &EngineVersion{Raw: line, Version: v}, nil
}

// CheckVersion returns an error when v does not satisfy constraint.
func CheckVersion(v *semver.Version, constraint string) error {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("invalid engine constraint %q: %w", constraint, err)
	}

	if ok, errs := c.Validate(v); !ok {
		return fmt.Errorf("engine version %s does not satisfy %q: %w", v, constraint, errors.Join(errs...))
	}

	return nil
}
