// Package config holds qtest settings read from QTEST_* environment
// variables. Command-line flags take precedence over these values.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	// Set via QTEST_DEBUG in the environment
	Debug bool
	// Set via QTEST_COLOR in the environment
	Color bool
	// Set via QTEST_FAIL_PROB in the environment, percent of allocations to refuse
	FailProbability int
	// Set via QTEST_TIME_LIMIT in the environment, per command
	TimeLimit time.Duration
	// Set via QTEST_LOG in the environment, log file path
	LogPath string
	// Set via QTEST_SEED in the environment
	Seed int64
)

type EnvVar struct {
	Name        string
	Value       any
	Description string
}

func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"QTEST_DEBUG":      {"QTEST_DEBUG", Debug, "Show queue debug and trace records (e.g. QTEST_DEBUG=1)"},
		"QTEST_COLOR":      {"QTEST_COLOR", Color, "Colour log lines by level"},
		"QTEST_FAIL_PROB":  {"QTEST_FAIL_PROB", FailProbability, "Percent of allocations to fail (default 0)"},
		"QTEST_TIME_LIMIT": {"QTEST_TIME_LIMIT", TimeLimit, "Time limit for a single command (default 1s, 0 disables)"},
		"QTEST_LOG":        {"QTEST_LOG", LogPath, "Write logs to this file instead of stderr"},
		"QTEST_SEED":       {"QTEST_SEED", Seed, "Seed for RAND values, failure injection and fuzzing (default 1)"},
	}
}

func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}

// Clean quotes and spaces from the value
func clean(key string) string {
	return strings.Trim(os.Getenv(key), "\"' ")
}

func init() {
	LoadConfig()
}

func LoadConfig() {
	Debug, Color, FailProbability, LogPath = false, false, 0, ""
	TimeLimit = time.Second
	Seed = 1

	if debug := clean("QTEST_DEBUG"); debug != "" {
		d, err := strconv.ParseBool(debug)
		if err == nil {
			Debug = d
		} else {
			Debug = true
		}
	}

	if color := clean("QTEST_COLOR"); color != "" {
		if c, err := strconv.ParseBool(color); err == nil {
			Color = c
		}
	}

	if fp := clean("QTEST_FAIL_PROB"); fp != "" {
		p, err := strconv.Atoi(fp)
		if err != nil || p < 0 || p > 100 {
			slog.Error("invalid setting, must be 0-100", "QTEST_FAIL_PROB", fp, "error", err)
		} else {
			FailProbability = p
		}
	}

	if tl := clean("QTEST_TIME_LIMIT"); tl != "" {
		d, err := time.ParseDuration(tl)
		if err != nil {
			// bare numbers are seconds
			if secs, perr := strconv.ParseFloat(tl, 64); perr == nil && secs >= 0 {
				d, err = time.Duration(secs*float64(time.Second)), nil
			}
		}
		if err != nil || d < 0 {
			slog.Error("invalid setting", "QTEST_TIME_LIMIT", tl, "error", err)
		} else {
			TimeLimit = d
		}
	}

	LogPath = clean("QTEST_LOG")

	if seed := clean("QTEST_SEED"); seed != "" {
		s, err := strconv.ParseInt(seed, 10, 64)
		if err != nil {
			slog.Error("invalid setting", "QTEST_SEED", seed, "error", err)
		} else {
			Seed = s
		}
	}
}
