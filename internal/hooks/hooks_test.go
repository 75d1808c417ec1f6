package hooks

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeScript(t *testing.T, dir, name, body string, mode os.FileMode) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), mode); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestScriptsFiltersAndSorts(t *testing.T) {
	root := t.TempDir()
	eventDir := filepath.Join(root, "on_save.d")
	if err := os.MkdirAll(filepath.Join(eventDir, "subdir"), 0755); err != nil {
		t.Fatal(err)
	}
	writeScript(t, eventDir, "20-backup.sh", "#!/bin/sh\n", 0755)
	writeScript(t, eventDir, "10-upload.sh", "#!/bin/sh\n", 0755)
	writeScript(t, eventDir, ".hidden.sh", "#!/bin/sh\n", 0755)
	writeScript(t, eventDir, "README", "docs", 0644)

	scripts, err := NewRunner(root, nil).Scripts(OnSave)
	if err != nil {
		t.Fatalf("Scripts() error: %v", err)
	}
	var names []string
	for _, s := range scripts {
		names = append(names, filepath.Base(s))
	}
	if strings.Join(names, ",") != "10-upload.sh,20-backup.sh" {
		t.Fatalf("scripts = %v", names)
	}
}

func TestMissingDirIsNoop(t *testing.T) {
	r := NewRunner(filepath.Join(t.TempDir(), "absent"), nil)
	if cmds := r.NotifySave("/tmp/x.png", 1, 2, "now"); len(cmds) != 0 {
		t.Fatalf("expected no hooks, got %d", len(cmds))
	}
	if cmds := NewRunner("", nil).Run(OnSave); len(cmds) != 0 {
		t.Fatal("empty hooks dir should disable hooks")
	}
}

func TestNotifySavePassesArgs(t *testing.T) {
	root := t.TempDir()
	eventDir := filepath.Join(root, "on_save.d")
	if err := os.MkdirAll(eventDir, 0755); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(root, "args.txt")
	writeScript(t, eventDir, "10-record.sh", "#!/bin/sh\necho \"$@\" > \""+out+"\"\n", 0755)

	cmds := NewRunner(root, nil).NotifySave("/tmp/shot.png", 800, 600, "2025-01-02T03:04:05Z")
	if len(cmds) != 1 {
		t.Fatalf("started %d hooks, want 1", len(cmds))
	}
	if err := cmds[0].Wait(); err != nil {
		t.Fatalf("hook exited with error: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read hook output: %v", err)
	}
	if got := strings.TrimSpace(string(data)); got != "/tmp/shot.png 800 600 2025-01-02T03:04:05Z" {
		t.Fatalf("hook args = %q", got)
	}
}

func TestContracts(t *testing.T) {
	c := Contracts("/home/u/.config/screenshot-tool/hooks")
	if len(c) != 1 || c[0].Event != OnSave || c[0].Directory != "/home/u/.config/screenshot-tool/hooks/on_save.d" {
		t.Fatalf("Contracts() = %+v", c)
	}
	if len(c[0].Args) != 4 {
		t.Fatalf("args = %v", c[0].Args)
	}
}
