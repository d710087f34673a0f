package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "slang.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "calc"
version = "0.1.0"

[source]
dirs = ["lib", "app"]
entry = "main"

[image]
output = "calc.simg"
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load = %v", err)
	}
	if m.Project.Name != "calc" || m.Project.Version != "0.1.0" {
		t.Errorf("project = %+v", m.Project)
	}
	if len(m.Source.Dirs) != 2 || m.Source.Dirs[0] != "lib" {
		t.Errorf("source dirs = %v", m.Source.Dirs)
	}
	if m.Source.Entry != "main" {
		t.Errorf("entry = %q", m.Source.Entry)
	}
	if m.Image.Output != "calc.simg" {
		t.Errorf("image output = %q", m.Image.Output)
	}
	if m.Dir == "" || !filepath.IsAbs(m.Dir) {
		t.Errorf("Dir = %q, want absolute", m.Dir)
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "calc"
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load = %v", err)
	}
	if len(m.Source.Dirs) != 1 || m.Source.Dirs[0] != "src" {
		t.Errorf("default source dirs = %v, want [src]", m.Source.Dirs)
	}
	if m.Image.Output != "calc.simg" {
		t.Errorf("default image output = %q, want calc.simg", m.Image.Output)
	}
}

func TestLoadManifestMissing(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatal("Load without slang.toml succeeded")
	}
}

func TestLoadManifestBadTOML(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "[project\nname =")
	if _, err := Load(dir); err == nil {
		t.Fatal("Load accepted malformed TOML")
	}
}

func TestFindAndLoadWalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[project]\nname = \"walk\"\n")

	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	m, err := FindAndLoad(nested)
	if err != nil {
		t.Fatalf("FindAndLoad = %v", err)
	}
	if m == nil || m.Project.Name != "walk" {
		t.Fatalf("manifest = %+v, want project walk", m)
	}
}

func TestFindAndLoadNotFound(t *testing.T) {
	m, err := FindAndLoad(t.TempDir())
	if err != nil {
		t.Fatalf("FindAndLoad = %v", err)
	}
	if m != nil {
		t.Fatalf("manifest = %+v, want nil", m)
	}
}

func TestSourceFiles(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "[project]\nname = \"calc\"\n[source]\ndirs = [\"src\"]\n")

	src := filepath.Join(dir, "src")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"lib.slang", "main.slang", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(src, name), []byte("fn z() { 0 }\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	m, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	files, err := m.SourceFiles()
	if err != nil {
		t.Fatalf("SourceFiles = %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("SourceFiles = %v, want the two .slang files", files)
	}
	for _, f := range files {
		if filepath.Ext(f) != ".slang" {
			t.Errorf("unexpected file %s", f)
		}
	}
}
