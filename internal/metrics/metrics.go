// Copyright 2025 Google LLC
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

// Package metrics exposes prometheus counters and histograms for the
// POSIX syscall shim and the VFS backends: how often each syscall is
// dispatched and at what latency, how often the readdir buffer needed
// a refill, and how often a rename's destination name already
// existed.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// SyscallsTotal counts every dispatched syscall, labelled by name
	// and by whether it returned a POSIX error.
	SyscallsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "arceos_syscalls_total",
		Help: "Total number of POSIX syscalls dispatched, by name and outcome.",
	}, []string{"syscall", "outcome"})

	// SyscallDuration tracks per-syscall latency.
	SyscallDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "arceos_syscall_duration_seconds",
		Help:    "Latency of dispatched syscalls, by name.",
		Buckets: prometheus.DefBuckets,
	}, []string{"syscall"})

	// ReadDirRefillsTotal counts how many times ReadDirIterator refilled
	// its buffer, by backend.
	ReadDirRefillsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "arceos_readdir_refills_total",
		Help: "Total number of readdir buffer refills, by backend.",
	}, []string{"backend"})

	// RenameCollisionsTotal counts renames that found an existing
	// destination entry and had to replace it.
	RenameCollisionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "arceos_rename_collisions_total",
		Help: "Total number of renames whose destination already existed, by backend.",
	}, []string{"backend"})
)

func init() {
	prometheus.MustRegister(SyscallsTotal, SyscallDuration, ReadDirRefillsTotal, RenameCollisionsTotal)
}

// Outcome labels for SyscallsTotal.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// ObserveSyscall records one dispatched syscall's outcome and latency,
// meant to wrap a posix.Dispatcher method call:
//
//	defer metrics.ObserveSyscall("open", time.Now(), &rc)
func ObserveSyscall(name string, start time.Time, rc *int32) {
	outcome := OutcomeOK
	if rc != nil && *rc < 0 {
		outcome = OutcomeError
	}
	SyscallsTotal.WithLabelValues(name, outcome).Inc()
	SyscallDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
}

// RecordReadDirRefill records one ReadDirIterator buffer refill under
// the given backend label. ReadDirIterator records every refill under
// "vfs", so refills are not split by backend.
func RecordReadDirRefill(backend string) {
	ReadDirRefillsTotal.WithLabelValues(backend).Inc()
}

// RecordRenameCollision records one rename whose destination already
// existed and was replaced, for the named backend.
func RecordRenameCollision(backend string) {
	RenameCollisionsTotal.WithLabelValues(backend).Inc()
}
