package discover

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiscoverSwiftFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "Sources/App/main.swift", "print(1)")
	writeFile(t, dir, "Sources/App/Model.swift", "struct Model {}")
	// Non-Swift files should be ignored
	writeFile(t, dir, "README.md", "hello")
	writeFile(t, dir, "Sources/App/Bridge.m", "@implementation X @end")
	// Hidden file should be ignored
	writeFile(t, dir, ".Secret.swift", "let x = 1")

	entries, err := Files(dir, Options{})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}

	paths := entryPaths(entries)
	want := []string{"Sources/App/Model.swift", "Sources/App/main.swift"}
	if len(paths) != len(want) {
		t.Fatalf("expected %v, got %v", want, paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("entry %d: got %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestDiscoverSkipDirs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "App.swift", "")
	writeFile(t, dir, "Pods/Alamofire/Session.swift", "")
	writeFile(t, dir, "Carthage/Checkouts/Lib.swift", "")
	writeFile(t, dir, ".build/checkouts/Dep.swift", "")
	writeFile(t, dir, "DerivedData/Gen.swift", "")
	writeFile(t, dir, ".hidden/Secret.swift", "")

	entries, err := Files(dir, Options{})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %v", entryPaths(entries))
	}
	if entries[0].Path != "App.swift" {
		t.Errorf("expected App.swift, got %q", entries[0].Path)
	}
}

func TestDiscoverIncludedExcluded(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "Sources/Core/A.swift", "")
	writeFile(t, dir, "Sources/Core/Generated/R.swift", "")
	writeFile(t, dir, "Sources/UI/View.swift", "")
	writeFile(t, dir, "Sources/UI/View+Preview.swift", "")
	writeFile(t, dir, "Scripts/tool.swift", "")

	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{
			name: "included dirs only",
			opts: Options{Included: []string{"Sources/Core"}},
			want: []string{"Sources/Core/A.swift", "Sources/Core/Generated/R.swift"},
		},
		{
			name: "excluded directory",
			opts: Options{Excluded: []string{"Sources/Core/Generated"}},
			want: []string{"Scripts/tool.swift", "Sources/Core/A.swift", "Sources/UI/View+Preview.swift", "Sources/UI/View.swift"},
		},
		{
			name: "excluded glob",
			opts: Options{Included: []string{"Sources"}, Excluded: []string{"**/*+Preview.swift", "**/Generated/**"}},
			want: []string{"Sources/Core/A.swift", "Sources/UI/View.swift"},
		},
		{
			name: "overlapping includes",
			opts: Options{Included: []string{"Sources/UI", "Sources"}, Excluded: []string{"Sources/Core"}},
			want: []string{"Sources/UI/View+Preview.swift", "Sources/UI/View.swift"},
		},
		{
			name: "missing include",
			opts: Options{Included: []string{"Nope"}},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			entries, err := Files(dir, tt.opts)
			if err != nil {
				t.Fatalf("Files: %v", err)
			}
			got := entryPaths(entries)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("entry %d: got %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDiscoverGitignore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, ".gitignore", "Generated/\n")
	writeFile(t, dir, "App.swift", "")
	writeFile(t, dir, "Generated/Assets.swift", "")

	entries, err := Files(dir, Options{})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if got := entryPaths(entries); len(got) != 1 || got[0] != "App.swift" {
		t.Errorf("got %v, want [App.swift]", got)
	}
}

func TestDiscoverSymlinksSkipped(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "Real.swift", "")

	err := os.Symlink(filepath.Join(dir, "Real.swift"), filepath.Join(dir, "Link.swift"))
	if err != nil {
		t.Skip("symlinks not supported")
	}

	entries, err := Files(dir, Options{})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry (no symlink), got %v", entryPaths(entries))
	}
	if entries[0].Path != "Real.swift" {
		t.Errorf("expected Real.swift, got %q", entries[0].Path)
	}
}

func entryPaths(entries []FileEntry) []string {
	var paths []string
	for _, e := range entries {
		paths = append(paths, e.Path)
	}
	return paths
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
