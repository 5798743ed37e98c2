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

import "fmt"

// Validate rejects configs that would fail at mount time anyway,
// catching the mistake before any backend I/O happens.
func Validate(c *Config) error {
	if c.Mount.Device == "" {
		return fmt.Errorf("mount.device is required")
	}
	if c.Mount.MountPoint == "" {
		return fmt.Errorf("mount.mount-point is required")
	}
	switch c.Mount.Backend {
	case BackendFAT, BackendExt4:
	default:
		return fmt.Errorf("mount.backend must be %q or %q, got %q", BackendFAT, BackendExt4, c.Mount.Backend)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", c.Logging.Format)
	}
	return nil
}
