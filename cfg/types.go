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

// Octal is an int that decode_hook.go parses from a base-8 string
// ("0755") instead of viper/mapstructure's default base-10 handling,
// for mode bits in the config file and on the command line.
type Octal int

// ResolvedPath is a filesystem path made absolute (and "~"-expanded)
// at decode time, so the rest of the program never has to reason
// about relative paths or the user's home directory.
type ResolvedPath string

// LogSeverity is one of the six severities internal/logger accepts.
type LogSeverity string

// Backend names a pluggable on-disk format adapter.
type Backend string

const (
	BackendFAT  Backend = "fat"
	BackendExt4 Backend = "ext4"
)

// Config is the root of the mount's configuration, assembled by
// viper from (in increasing priority) defaults, a YAML config file,
// and command-line flags.
type Config struct {
	Mount   MountConfig   `yaml:"mount" mapstructure:"mount"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
	Debug   DebugConfig   `yaml:"debug" mapstructure:"debug"`
}

// MountConfig names the backend, the block device it mounts, and
// where the resulting tree is exposed.
type MountConfig struct {
	MountPoint ResolvedPath `yaml:"mount-point" mapstructure:"mount-point"`
	Backend    Backend      `yaml:"backend" mapstructure:"backend"`
	Device     ResolvedPath `yaml:"device" mapstructure:"device"`
	ReadOnly   bool         `yaml:"read-only" mapstructure:"read-only"`
	FileMode   Octal        `yaml:"file-mode" mapstructure:"file-mode"`
	DirMode    Octal        `yaml:"dir-mode" mapstructure:"dir-mode"`
	UID        int          `yaml:"uid" mapstructure:"uid"`
	GID        int          `yaml:"gid" mapstructure:"gid"`

	// WarmupDirs names top-level directories to prime with stable
	// inode ids right after mount, so the first real lookup of each
	// one does not pay allocation cost under the mount's lock. Only
	// the FAT backend's adapter needs this (ext4 inode numbers are
	// already stable on disk); ignored on ext4.
	WarmupDirs []string `yaml:"warmup-dirs" mapstructure:"warmup-dirs"`
}

// LoggingConfig configures internal/logger's output.
type LoggingConfig struct {
	Severity  LogSeverity     `yaml:"severity" mapstructure:"severity"`
	Format    string          `yaml:"format" mapstructure:"format"`
	FilePath  ResolvedPath    `yaml:"file-path" mapstructure:"file-path"`
	LogRotate LogRotateConfig `yaml:"log-rotate" mapstructure:"log-rotate"`
}

// LogRotateConfig mirrors lumberjack.Logger's rotation knobs.
type LogRotateConfig struct {
	MaxFileSizeMB int  `yaml:"max-file-size-mb" mapstructure:"max-file-size-mb"`
	BackupFileCnt int  `yaml:"backup-file-count" mapstructure:"backup-file-count"`
	Compress      bool `yaml:"compress" mapstructure:"compress"`
}

// MetricsConfig toggles the prometheus exporter.
type MetricsConfig struct {
	Enable     bool   `yaml:"enable" mapstructure:"enable"`
	ListenAddr string `yaml:"listen-addr" mapstructure:"listen-addr"`
}

// DebugConfig controls internal invariant-checking.
type DebugConfig struct {
	ExitOnInvariantViolation bool `yaml:"exit-on-invariant-violation" mapstructure:"exit-on-invariant-violation"`
}
