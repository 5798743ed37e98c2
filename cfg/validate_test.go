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

import "testing"

func TestValidate_RequiresDeviceAndMountPoint(t *testing.T) {
	c := Default()
	c.Mount.Device = "/dev/sda1"
	if err := Validate(c); err == nil {
		t.Fatal("expected error for missing mount-point")
	}
	c.Mount.MountPoint = "/mnt"
	if err := Validate(c); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidate_RejectsUnknownBackend(t *testing.T) {
	c := Default()
	c.Mount.Device = "/dev/sda1"
	c.Mount.MountPoint = "/mnt"
	c.Mount.Backend = "btrfs"
	if err := Validate(c); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestValidate_RejectsUnknownLogFormat(t *testing.T) {
	c := Default()
	c.Mount.Device = "/dev/sda1"
	c.Mount.MountPoint = "/mnt"
	c.Logging.Format = "xml"
	if err := Validate(c); err == nil {
		t.Fatal("expected error for unknown log format")
	}
}
