package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", dir)
	t.Setenv("HBNB_CONFIG", "")
	t.Setenv("HBNB_TYPE_STORAGE", "")
	t.Setenv("HBNB_STORAGE_DRIVER", "")
	t.Setenv("HBNB_FILE_PATH", "")
	t.Setenv("HBNB_BLOB_DRIVER", "")
	t.Setenv("HBNB_BLOB_FS_ROOT", "")
	t.Setenv("HBNB_METRICS_ADDR", "")
	t.Setenv("HBNB_LOG_LEVEL", "error")
	return dir
}

func TestCLIPipedSessionPersistsToFile(t *testing.T) {
	dir := isolate(t)
	var stdout, stderr bytes.Buffer
	in := strings.NewReader("create State name=\"New_York\"\ncount State\nquit\n")
	if code := cli(nil, in, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code %d, stderr %q", code, stderr.String())
	}
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) != 2 || lines[1] != "1" {
		t.Fatalf("unexpected output %q", stdout.String())
	}
	if strings.Contains(stdout.String(), "(hbnb)") {
		t.Fatalf("piped input must not prompt")
	}
	data, err := os.ReadFile(filepath.Join(dir, "file.json"))
	if err != nil {
		t.Fatalf("expected file.json: %v", err)
	}
	if !strings.Contains(string(data), `"State.`+lines[0]+`"`) || !strings.Contains(string(data), "New York") {
		t.Fatalf("unexpected document %s", data)
	}

	stdout.Reset()
	if code := cli([]string{"show", "State", lines[0]}, strings.NewReader(""), &stdout, &stderr); code != 0 {
		t.Fatalf("exit code %d", code)
	}
	if !strings.HasPrefix(stdout.String(), "[State] ("+lines[0]+")") {
		t.Fatalf("reloaded object not shown: %q", stdout.String())
	}
}

func TestCLIStorageOverride(t *testing.T) {
	dir := isolate(t)
	var stdout, stderr bytes.Buffer
	if code := cli([]string{"-storage", "memory", "create", "User"}, strings.NewReader(""), &stdout, &stderr); code != 0 {
		t.Fatalf("exit code %d", code)
	}
	if _, err := os.Stat(filepath.Join(dir, "file.json")); !os.IsNotExist(err) {
		t.Fatalf("memory driver must not write file.json")
	}
	if code := cli([]string{"-storage", "redis"}, strings.NewReader(""), &stdout, &stderr); code != 1 {
		t.Fatalf("expected failure for unknown driver, got %d", code)
	}
	if code := cli([]string{"-bogus"}, strings.NewReader(""), &stdout, &stderr); code != 2 {
		t.Fatalf("expected usage error, got %d", code)
	}
}
