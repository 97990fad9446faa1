// SPDX-License-Identifier: AGPL-3.0-or-later
// DMRHub - Run a DMR network server in a single binary
// Copyright (C) 2023-2026 Jacob McSwain
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// The source code is available at <https://github.com/USA-RedDragon/DMRHub>

package cmd

import (
	"testing"
)

func TestNewCommandSetsVersionAnnotations(t *testing.T) {
	t.Parallel()

	cmd := NewCommand("1.2.3", "abcdef")

	if got := cmd.Annotations["version"]; got != "1.2.3" {
		t.Fatalf("version annotation = %q, want %q", got, "1.2.3")
	}
	if got := cmd.Annotations["commit"]; got != "abcdef" {
		t.Fatalf("commit annotation = %q, want %q", got, "abcdef")
	}
	if cmd.Use != "tetrarx" {
		t.Fatalf("Use = %q, want %q", cmd.Use, "tetrarx")
	}
}

func TestSetupSchedulerRegistersFragmentPruneJob(t *testing.T) {
	t.Parallel()

	scheduler, err := setupScheduler(nil)
	if err == nil {
		t.Cleanup(func() { _ = scheduler.Shutdown() })
	}
	// A nil pipeline is only exercised once the job actually fires, which
	// setupScheduler itself does not do; this just confirms job
	// registration succeeds.
	if err != nil {
		t.Fatalf("setupScheduler: %v", err)
	}
}
