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

// Package cmd is the CLI bring-up surface: parsing flags, loading
// config, and invoking the mount subcommand. The block device and the
// on-disk format codec it mounts are external collaborators (spec.md
// §1); this package only wires already-built Codec implementations
// into a Filesystem and the POSIX shim around it.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mivik/arceos/cfg"
)

var (
	cfgFile string
	bindErr error
	v       = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "arceos-mount [flags] device mount-point",
	Short: "Mount a FAT or ext4 device through the VFS/POSIX shim",
	Long: `arceos-mount brings up the VFS layer over a FAT or ext4 device and
exposes it through the POSIX file-descriptor shim, the way an embedded
or unikernel OS substrate would during bring-up.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if bindErr != nil {
			return bindErr
		}
		config, err := cfg.Load(v, cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		config.Mount.Device = cfg.ResolvedPath(args[0])
		config.Mount.MountPoint = cfg.ResolvedPath(args[1])
		if err := cfg.Validate(config); err != nil {
			return err
		}
		return runMount(cmd.Context(), config)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "Path to a YAML config file.")
	bindErr = cfg.BindFlags(v, rootCmd.Flags())
}

// Execute runs the CLI, exiting the process with a non-zero status on
// failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
