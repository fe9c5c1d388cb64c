package main

import (
	"bytes"
	"context"
	"testing"
)

func TestCLIShutsDownOnCancel(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", dir)
	t.Setenv("HBNB_CONFIG", "")
	t.Setenv("HBNB_STORAGE_DRIVER", "memory")
	t.Setenv("HBNB_LOG_LEVEL", "error")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var stderr bytes.Buffer
	if code := cli(ctx, []string{"-addr", "127.0.0.1:0"}, &stderr); code != 0 {
		t.Fatalf("exit code %d, stderr %q", code, stderr.String())
	}
}

func TestCLIRejectsBadFlags(t *testing.T) {
	var stderr bytes.Buffer
	if code := cli(context.Background(), []string{"-nope"}, &stderr); code != 2 {
		t.Fatalf("expected usage error, got %d", code)
	}
}
