// SPDX-License-Identifier: AGPL-3.0-or-later

package tracing

import (
	"context"
	"testing"
	"time"
)

func TestInitInstallsTracerProviderWithoutDialing(t *testing.T) {
	t.Parallel()

	// otlptracegrpc.NewClient dials lazily, so Init against an endpoint
	// with nothing listening still succeeds synchronously.
	shutdown, err := Init(context.Background(), "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if shutdown == nil {
		t.Fatal("expected a non-nil shutdown func")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = shutdown(ctx)
}
