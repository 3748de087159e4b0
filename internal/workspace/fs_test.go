package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newService(t *testing.T) *Service {
	t.Helper()
	svc, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestWriteReadRoundTrip(t *testing.T) {
	svc := newService(t)

	if err := svc.Write("src/main.py", "print('hi')"); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := svc.Read("src/main.py")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != "print('hi')" {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestReadMissingFile(t *testing.T) {
	svc := newService(t)
	if _, err := svc.Read("nope.txt"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTraversalRejected(t *testing.T) {
	svc := newService(t)

	for _, p := range []string{"../escape.txt", "a/../../escape.txt"} {
		if err := svc.Write(p, "x"); !errors.Is(err, ErrOutsideRoot) {
			t.Fatalf("write %q: expected ErrOutsideRoot, got %v", p, err)
		}
	}

	// Traversal attempts must leave nothing behind outside the root.
	parent := filepath.Dir(svc.Root())
	if _, err := os.Stat(filepath.Join(parent, "escape.txt")); !os.IsNotExist(err) {
		t.Fatal("traversal attempt created a file outside the root")
	}
}

func TestDeleteAndMkdir(t *testing.T) {
	svc := newService(t)

	if err := svc.Mkdir("pkg/sub"); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := svc.Write("pkg/sub/a.txt", "a"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := svc.Delete("pkg"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Read("pkg/sub/a.txt"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	if err := svc.Delete("pkg"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleting a missing path should fail with ErrNotFound, got %v", err)
	}
	if err := svc.Delete(""); !errors.Is(err, ErrOutsideRoot) {
		t.Fatalf("deleting the root should be refused, got %v", err)
	}
}

func TestListPrunesIgnoredDirs(t *testing.T) {
	svc := newService(t)

	mustWrite := func(p string) {
		t.Helper()
		if err := svc.Write(p, "x"); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
	mustWrite("main.go")
	mustWrite("lib/util.go")
	mustWrite("node_modules/pkg/index.js")
	mustWrite(".git/config")

	tree, err := svc.List("")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if tree.Kind != KindFolder {
		t.Fatalf("root should be a folder, got %q", tree.Kind)
	}

	names := make([]string, 0, len(tree.Children))
	for _, child := range tree.Children {
		names = append(names, child.Name)
	}
	// Folders sort before files.
	want := []string{"lib", "main.go"}
	if len(names) != len(want) {
		t.Fatalf("expected children %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected children %v, got %v", want, names)
		}
	}

	lib := tree.Children[0]
	if len(lib.Children) != 1 || lib.Children[0].Path != "lib/util.go" {
		t.Fatalf("unexpected lib subtree: %+v", lib.Children)
	}
}

func TestListSingleFile(t *testing.T) {
	svc := newService(t)
	if err := svc.Write("readme.md", "# hi"); err != nil {
		t.Fatalf("write: %v", err)
	}
	node, err := svc.List("readme.md")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if node.Kind != KindFile || node.Name != "readme.md" {
		t.Fatalf("unexpected node: %+v", node)
	}
}
