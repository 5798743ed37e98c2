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

package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mivik/arceos/cfg"
	"github.com/mivik/arceos/internal/logger"
	"github.com/mivik/arceos/posix"
	"github.com/mivik/arceos/vfs"
	"github.com/mivik/arceos/vfs/ext4"
	"github.com/mivik/arceos/vfs/fat"
)

// FATCodecOpener and Ext4CodecOpener are the seams a real bring-up
// binds to a concrete block-device driver and codec library (both
// external collaborators per spec.md §1). Left nil, mounting that
// backend fails cleanly instead of mounting nothing.
var (
	FATCodecOpener  func(device string) (fat.Codec, uint64, error)
	Ext4CodecOpener func(device string) (ext4.Codec, uint64, error)
)

func openBackend(config *cfg.Config) (vfs.Filesystem, error) {
	switch config.Mount.Backend {
	case cfg.BackendFAT:
		if FATCodecOpener == nil {
			return nil, fmt.Errorf("no FAT codec registered for device %q", config.Mount.Device)
		}
		codec, root, err := FATCodecOpener(string(config.Mount.Device))
		if err != nil {
			return nil, err
		}
		return fat.Mount(codec, root)
	case cfg.BackendExt4:
		if Ext4CodecOpener == nil {
			return nil, fmt.Errorf("no ext4 codec registered for device %q", config.Mount.Device)
		}
		codec, root, err := Ext4CodecOpener(string(config.Mount.Device))
		if err != nil {
			return nil, err
		}
		return ext4.Mount(codec, root)
	default:
		return nil, fmt.Errorf("unknown backend %q", config.Mount.Backend)
	}
}

func runMount(ctx context.Context, config *cfg.Config) error {
	if config.Logging.FilePath != "" {
		async, err := logger.InitLogFile(string(config.Logging.FilePath), logger.LogRotateConfig{
			MaxFileSizeMB: config.Logging.LogRotate.MaxFileSizeMB,
			BackupFileCnt: config.Logging.LogRotate.BackupFileCnt,
			Compress:      config.Logging.LogRotate.Compress,
		}, string(config.Logging.Severity), config.Logging.Format)
		if err != nil {
			return fmt.Errorf("init log file: %w", err)
		}
		defer async.Close()
	} else {
		logger.SetLevel(string(config.Logging.Severity))
	}

	fs, err := openBackend(config)
	if err != nil {
		return fmt.Errorf("mount %s backend: %w", config.Mount.Backend, err)
	}

	if config.Mount.Backend == cfg.BackendFAT && len(config.Mount.WarmupDirs) > 0 {
		if err := fat.WarmupSubtrees(ctx, fs.RootDir(), config.Mount.WarmupDirs); err != nil {
			logger.Warnf("warmup: %v", err)
		}
	}

	fc := vfs.NewFsContext(fs.RootDir())
	defer fc.Close()
	dispatcher := posix.NewDispatcher(fc)

	if config.Metrics.Enable {
		server := &http.Server{Addr: config.Metrics.ListenAddr, Handler: promhttp.Handler()}
		go func() {
			logger.Infof("metrics: listening on %s", config.Metrics.ListenAddr)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Errorf("metrics server: %v", err)
			}
		}()
		defer server.Close()
	}

	logger.Infof("mounted %s device %q at %q", config.Mount.Backend, config.Mount.Device, config.Mount.MountPoint)

	waitCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-waitCtx.Done()

	logger.Infof("unmounting %q", config.Mount.MountPoint)
	return dispatcher.Shutdown(context.Background())
}
