// Copyright 2024 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cfg

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// BindFlags registers the mount subcommand's flags and binds each one
// to the matching viper key, so a flag, a YAML config file entry, or
// the built-in default can all supply the same setting.
func BindFlags(v *viper.Viper, flagSet *pflag.FlagSet) error {
	flagSet.String("backend", string(DefaultBackend), "On-disk format adapter: fat or ext4.")
	flagSet.String("device", "", "Path to the block device or disk image to mount.")
	flagSet.Bool("read-only", false, "Mount the filesystem read-only.")
	flagSet.Int("file-mode", int(DefaultFileMode), "Permission bits for newly created files, in octal.")
	flagSet.Int("dir-mode", int(DefaultDirMode), "Permission bits for newly created directories, in octal.")
	flagSet.Int("uid", -1, "UID owner of all inodes; -1 leaves the backend's own value.")
	flagSet.Int("gid", -1, "GID owner of all inodes; -1 leaves the backend's own value.")
	flagSet.StringSlice("warmup-dirs", nil, "Comma-separated top-level directory names to prime on mount (FAT only).")

	flagSet.String("log-severity", DefaultLogSeverity, "Minimum severity logged: TRACE, DEBUG, INFO, WARNING, ERROR, or OFF.")
	flagSet.String("log-format", DefaultLogFormat, "Log line format: text or json.")
	flagSet.String("log-file", "", "Path to a log file; empty logs to stderr.")

	flagSet.Bool("metrics-enable", false, "Serve prometheus metrics.")
	flagSet.String("metrics-listen-addr", DefaultMetricsAddr, "Address the metrics HTTP server listens on.")

	binds := map[string]string{
		"backend":             "mount.backend",
		"device":              "mount.device",
		"read-only":           "mount.read-only",
		"file-mode":           "mount.file-mode",
		"dir-mode":            "mount.dir-mode",
		"uid":                 "mount.uid",
		"gid":                 "mount.gid",
		"warmup-dirs":         "mount.warmup-dirs",
		"log-severity":        "logging.severity",
		"log-format":          "logging.format",
		"log-file":            "logging.file-path",
		"metrics-enable":      "metrics.enable",
		"metrics-listen-addr": "metrics.listen-addr",
	}
	for flagName, key := range binds {
		if err := v.BindPFlag(key, flagSet.Lookup(flagName)); err != nil {
			return fmt.Errorf("bind flag %q: %w", flagName, err)
		}
	}
	return nil
}

// Load merges defaults, an optional YAML config file, and already-
// bound flags into a Config, in that increasing order of priority.
// Device and MountPoint are ordinarily filled in by the caller from
// positional arguments after Load returns (cmd/root.go does this), so
// Load itself does not call Validate; the caller validates once the
// config is fully assembled.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	def := Default()

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %q: %w", configFile, err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg, viper.DecodeHook(DecodeHook())); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Mount.Backend == "" {
		cfg.Mount.Backend = def.Mount.Backend
	}
	return cfg, nil
}
