package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGenerateHookScript(t *testing.T) {
	script := generateHookScript("text", false)

	if !strings.Contains(script, hookMarkerStart) {
		t.Error("Script missing start marker")
	}
	if !strings.Contains(script, hookMarkerEnd) {
		t.Error("Script missing end marker")
	}
	if !strings.Contains(script, "premerge scan staged --format text --fail-on-findings true\n") {
		t.Error("Script missing premerge command with correct flags")
	}
	if !strings.Contains(script, "PREMERGE_EXIT=$?") {
		t.Error("Script missing exit code capture")
	}
	if !strings.Contains(script, "exit 1") {
		t.Error("Script missing exit 1 for findings")
	}
	if !strings.Contains(script, "allowing commit") {
		t.Error("Script missing warning for errors")
	}
}

func TestGenerateHookScript_CustomFlags(t *testing.T) {
	script := generateHookScript("json", true)

	if !strings.Contains(script, "--format json") {
		t.Error("Script doesn't use custom format")
	}
	if !strings.Contains(script, "--mask") {
		t.Error("Script doesn't mask matches")
	}
}

func TestReplaceHookSection_NoExisting(t *testing.T) {
	existing := "#!/bin/sh\nsome-other-hook\n"
	section := generateHookScript("text", false)

	result := replaceHookSection(existing, section)

	if !strings.HasPrefix(result, "#!/bin/sh\nsome-other-hook\n") {
		t.Error("Existing content should be preserved")
	}
	if !strings.Contains(result, hookMarkerStart) {
		t.Error("New section should be appended")
	}
}

func TestReplaceHookSection_ExistingSection(t *testing.T) {
	oldSection := generateHookScript("text", false)
	existing := "#!/bin/sh\nbefore\n" + oldSection + "after\n"
	newSection := generateHookScript("json", true)

	result := replaceHookSection(existing, newSection)

	if !strings.Contains(result, "before") {
		t.Error("Content before premerge section should be preserved")
	}
	if !strings.Contains(result, "after") {
		t.Error("Content after premerge section should be preserved")
	}
	if !strings.Contains(result, "--format json") {
		t.Error("New section should have updated flags")
	}
	if strings.Contains(result, "--format text") {
		t.Error("Old section should be replaced")
	}
	if strings.Count(result, hookMarkerStart) != 1 {
		t.Error("Section should appear exactly once")
	}
}

func TestRemoveHookSection(t *testing.T) {
	section := generateHookScript("text", false)
	existing := "#!/bin/sh\nbefore\n" + section + "after\n"

	result := removeHookSection(existing)

	if strings.Contains(result, hookMarkerStart) {
		t.Error("premerge section should be removed")
	}
	if result != "#!/bin/sh\nbefore\nafter\n" {
		t.Errorf("unexpected result %q", result)
	}
}

func TestRemoveHookSection_NoSection(t *testing.T) {
	existing := "#!/bin/sh\nsome-hook\n"
	result := removeHookSection(existing)
	if result != existing {
		t.Error("Content without premerge section should be unchanged")
	}
}

func TestReplaceHookSection_NoTrailingNewline(t *testing.T) {
	existing := "#!/bin/sh\nsome-hook"
	section := generateHookScript("text", false)

	result := replaceHookSection(existing, section)

	if !strings.HasPrefix(result, "#!/bin/sh\nsome-hook\n"+hookMarkerStart) {
		t.Errorf("Section should be appended on a new line: %q", result)
	}
}

func TestInstallHook_NewFile(t *testing.T) {
	hookPath := filepath.Join(t.TempDir(), "hooks", "pre-commit")

	if err := installHook(hookPath, "text", false); err != nil {
		t.Fatalf("installHook: %v", err)
	}
	data, err := os.ReadFile(hookPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "#!/bin/sh\n"+hookMarkerStart) {
		t.Errorf("unexpected hook:\n%s", data)
	}
	info, err := os.Stat(hookPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0o100 == 0 {
		t.Errorf("hook not executable: %v", info.Mode())
	}
}

func TestInstallHook_KeepsOtherCommands(t *testing.T) {
	hookPath := filepath.Join(t.TempDir(), "pre-commit")
	if err := os.WriteFile(hookPath, []byte("#!/bin/sh\nmake lint\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := installHook(hookPath, "text", false); err != nil {
		t.Fatal(err)
	}
	if err := installHook(hookPath, "json", true); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(hookPath)
	hook := string(data)
	if !strings.HasPrefix(hook, "#!/bin/sh\nmake lint\n") {
		t.Errorf("existing commands lost:\n%s", hook)
	}
	if strings.Count(hook, hookMarkerStart) != 1 {
		t.Errorf("want one premerge section:\n%s", hook)
	}
	if !strings.Contains(hook, "--format json") {
		t.Errorf("section not refreshed:\n%s", hook)
	}
}

func TestUninstallHook(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing", func(t *testing.T) {
		msg, err := uninstallHook(filepath.Join(dir, "none"))
		if err != nil {
			t.Fatal(err)
		}
		if msg != "No pre-commit hook found." {
			t.Errorf("msg = %q", msg)
		}
	})

	t.Run("only premerge", func(t *testing.T) {
		hookPath := filepath.Join(dir, "solo")
		if err := installHook(hookPath, "text", false); err != nil {
			t.Fatal(err)
		}
		if _, err := uninstallHook(hookPath); err != nil {
			t.Fatal(err)
		}
		if _, err := os.Stat(hookPath); !os.IsNotExist(err) {
			t.Errorf("hook file should be deleted, stat err = %v", err)
		}
	})

	t.Run("shared", func(t *testing.T) {
		hookPath := filepath.Join(dir, "shared")
		if err := os.WriteFile(hookPath, []byte("#!/bin/sh\nmake lint\n"), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := installHook(hookPath, "text", false); err != nil {
			t.Fatal(err)
		}
		msg, err := uninstallHook(hookPath)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(msg, "Removed premerge section from") {
			t.Errorf("msg = %q", msg)
		}
		data, _ := os.ReadFile(hookPath)
		if string(data) != "#!/bin/sh\nmake lint\n" {
			t.Errorf("hook = %q", data)
		}
	})
}
