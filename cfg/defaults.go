// Copyright 2024 Google LLC
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

const (
	DefaultBackend       = BackendExt4
	DefaultFileMode      Octal = 0o644
	DefaultDirMode       Octal = 0o755
	DefaultLogSeverity         = "INFO"
	DefaultLogFormat           = "text"
	DefaultMetricsAddr         = ":9090"
	DefaultMaxFileSizeMB       = 100
	DefaultBackupFileCnt       = 2
)

// Default returns a Config populated with this package's defaults,
// the base layer viper applies before a config file or flags.
func Default() *Config {
	return &Config{
		Mount: MountConfig{
			Backend:  DefaultBackend,
			FileMode: DefaultFileMode,
			DirMode:  DefaultDirMode,
			UID:      -1,
			GID:      -1,
		},
		Logging: LoggingConfig{
			Severity: DefaultLogSeverity,
			Format:   DefaultLogFormat,
			LogRotate: LogRotateConfig{
				MaxFileSizeMB: DefaultMaxFileSizeMB,
				BackupFileCnt: DefaultBackupFileCnt,
				Compress:      true,
			},
		},
		Metrics: MetricsConfig{
			ListenAddr: DefaultMetricsAddr,
		},
	}
}
