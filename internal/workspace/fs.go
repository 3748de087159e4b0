package workspace

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Directories that never show up in tree listings and are not watched.
var ignoredDirs = []string{
	"node_modules", ".git", "dist", "build", "target",
	"vendor", "__pycache__", ".venv", ".idea", ".vscode",
}

var (
	ErrOutsideRoot = errors.New("path escapes workspace root")
	ErrNotFound    = errors.New("path not found")
)

// Node is one entry of the explorer tree. Path is workspace-relative and
// slash-separated regardless of platform.
type Node struct {
	Name     string  `json:"name"`
	Path     string  `json:"path"`
	Kind     string  `json:"kind"`
	Children []*Node `json:"children,omitempty"`
}

const (
	KindFile   = "file"
	KindFolder = "folder"
)

// Service confines all file operations to one workspace root.
type Service struct {
	root string
}

func New(root string) (*Service, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat workspace root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace root %s is not a directory", abs)
	}
	return &Service{root: abs}, nil
}

func (s *Service) Root() string {
	return s.root
}

// resolve maps a workspace-relative path to an absolute one, rejecting
// anything that would land outside the root.
func (s *Service) resolve(rel string) (string, error) {
	rel = strings.TrimPrefix(path.Clean("/"+rel), "/")
	abs := filepath.Join(s.root, filepath.FromSlash(rel))
	if abs != s.root && !strings.HasPrefix(abs, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, rel)
	}
	return abs, nil
}

func (s *Service) Read(rel string) (string, error) {
	abs, err := s.resolve(rel)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, rel)
		}
		return "", fmt.Errorf("read %s: %w", rel, err)
	}
	return string(data), nil
}

func (s *Service) Write(rel, content string) error {
	abs, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("create parent of %s: %w", rel, err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return nil
}

func (s *Service) Mkdir(rel string) error {
	abs, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", rel, err)
	}
	return nil
}

func (s *Service) Delete(rel string) error {
	abs, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if abs == s.root {
		return fmt.Errorf("%w: refusing to delete workspace root", ErrOutsideRoot)
	}
	if _, err := os.Stat(abs); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, rel)
		}
		return fmt.Errorf("stat %s: %w", rel, err)
	}
	if err := os.RemoveAll(abs); err != nil {
		return fmt.Errorf("delete %s: %w", rel, err)
	}
	return nil
}

// List builds the explorer tree rooted at rel. Ignored directories are
// pruned entirely.
func (s *Service) List(rel string) (*Node, error) {
	abs, err := s.resolve(rel)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, rel)
		}
		return nil, fmt.Errorf("stat %s: %w", rel, err)
	}

	relClean := strings.TrimPrefix(path.Clean("/"+rel), "/")
	node := &Node{Name: info.Name(), Path: relClean, Kind: KindFolder}
	if relClean == "" {
		node.Name = filepath.Base(s.root)
	}
	if !info.IsDir() {
		node.Kind = KindFile
		return node, nil
	}

	if err := s.fillChildren(node, abs); err != nil {
		return nil, err
	}
	return node, nil
}

func (s *Service) fillChildren(parent *Node, abs string) error {
	entries, err := os.ReadDir(abs)
	if err != nil {
		return fmt.Errorf("list %s: %w", parent.Path, err)
	}

	for _, entry := range entries {
		if entry.IsDir() && lo.Contains(ignoredDirs, entry.Name()) {
			continue
		}
		child := &Node{
			Name: entry.Name(),
			Path: path.Join(parent.Path, entry.Name()),
			Kind: KindFile,
		}
		if entry.IsDir() {
			child.Kind = KindFolder
			if err := s.fillChildren(child, filepath.Join(abs, entry.Name())); err != nil {
				return err
			}
		}
		parent.Children = append(parent.Children, child)
	}

	// Folders first, then lexical, matching the explorer's display order.
	sort.Slice(parent.Children, func(i, j int) bool {
		a, b := parent.Children[i], parent.Children[j]
		if a.Kind != b.Kind {
			return a.Kind == KindFolder
		}
		return a.Name < b.Name
	})
	return nil
}
