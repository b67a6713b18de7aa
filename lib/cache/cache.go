// Copyright 2026 The QIIME 2 Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package cache manages the on-disk pool of materialized artifacts.
//
// A cache directory holds stable, read-only artifact trees under
// data/, reference records under keys/, and per-process working
// allocations under processes/. Loading an artifact allocates a
// working directory, materializes the tree there, then promotes it
// into data/ with an atomic rename; concurrent loaders of the same
// artifact race benignly because the first rename wins and later
// copies are discarded. Reference counting is structural: every
// consumer holds one alias record, and garbage collection reclaims
// trees no record references.
//
// All mutation of keys/ happens under a per-cache mutex. Cross-process
// coordination relies only on the atomicity of mkdir and rename.
package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/cafferychen777/qiime2/lib/version"
)

// Directory names within a cache root.
const (
	dataDirName      = "data"
	keysDirName      = "keys"
	processesDirName = "processes"
)

// VersionFileName is the cache layout declaration at the root.
const VersionFileName = "VERSION"

// cacheVersionTemplate is the exact contents of the cache VERSION
// file.
const cacheVersionTemplate = "QIIME 2\ncache: %s\nframework: %s\n"

// LayoutVersion is the cache layout this package reads and writes.
const LayoutVersion = "1"

// ErrNotACache reports that a non-empty directory lacks the cache
// layout declaration.
var ErrNotACache = errors.New("not an artifact cache")

// processStart pins one timestamp per process so every Cache handle
// in this process derives the same processes/ directory name.
var processStart = time.Now()

// Cache is a handle on one cache root. Handles are safe for
// concurrent use within a process.
type Cache struct {
	root      string
	processID string

	mu sync.Mutex
}

// Open opens the cache at root, initializing the layout if root is
// missing or empty. A non-empty directory that is not a cache fails
// with ErrNotACache; a cache written by a different layout version
// fails outright.
func Open(root string) (*Cache, error) {
	root = filepath.Clean(root)

	versionPath := filepath.Join(root, VersionFileName)
	contents, err := os.ReadFile(versionPath)
	switch {
	case err == nil:
		layout, _, parseErr := parseCacheVersion(string(contents))
		if parseErr != nil {
			return nil, fmt.Errorf("%s: %w", root, parseErr)
		}
		if layout != LayoutVersion {
			return nil, fmt.Errorf("cache %s uses layout version %s, this build supports %s", root, layout, LayoutVersion)
		}
	case errors.Is(err, fs.ErrNotExist):
		if populated, dirErr := hasEntries(root); dirErr != nil {
			return nil, dirErr
		} else if populated {
			return nil, fmt.Errorf("%s: %w", root, ErrNotACache)
		}
		if err := os.MkdirAll(root, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache root: %w", err)
		}
		declaration := fmt.Sprintf(cacheVersionTemplate, LayoutVersion, version.Framework)
		if err := os.WriteFile(versionPath, []byte(declaration), 0o644); err != nil {
			return nil, fmt.Errorf("writing cache VERSION: %w", err)
		}
	default:
		return nil, fmt.Errorf("opening cache %s: %w", root, err)
	}

	for _, dir := range []string{
		filepath.Join(root, dataDirName),
		filepath.Join(root, keysDirName),
		filepath.Join(root, processesDirName),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory %s: %w", dir, err)
		}
	}

	return &Cache{
		root:      root,
		processID: fmt.Sprintf("%d-%d", os.Getpid(), processStart.Unix()),
	}, nil
}

// Root returns the cache root directory.
func (c *Cache) Root() string { return c.root }

// hasEntries reports whether path is a directory with any entries.
// A missing path has none.
func hasEntries(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	return len(entries) > 0, nil
}

// parseCacheVersion parses the cache VERSION declaration: header
// "QIIME 2", a cache layout line, and a framework line.
func parseCacheVersion(contents string) (layout, framework string, err error) {
	malformed := fmt.Errorf("malformed cache VERSION file")
	segments := strings.Split(contents, "\n")
	if len(segments) != 4 || segments[3] != "" {
		return "", "", malformed
	}
	if strings.TrimSpace(segments[0]) != "QIIME 2" {
		return "", "", malformed
	}
	for i, key := range []string{"cache", "framework"} {
		gotKey, value, ok := strings.Cut(segments[i+1], ":")
		if !ok || strings.TrimSpace(gotKey) != key || strings.TrimSpace(value) == "" {
			return "", "", malformed
		}
		if i == 0 {
			layout = strings.TrimSpace(value)
		} else {
			framework = strings.TrimSpace(value)
		}
	}
	return layout, framework, nil
}

// Allocate claims the working directory for materializing artifact id
// in this process. The claim is exclusive: a second Allocate of the
// same id before the first is consumed (by RenameToStable or Remove)
// fails.
func (c *Cache) Allocate(id uuid.UUID) (string, error) {
	processDir := filepath.Join(c.root, processesDirName, c.processID)
	if err := os.MkdirAll(processDir, 0o755); err != nil {
		return "", fmt.Errorf("creating process pool: %w", err)
	}

	path := filepath.Join(processDir, id.String())
	if err := os.Mkdir(path, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("artifact %s is already allocated by this process", id)
		}
		return "", fmt.Errorf("allocating working directory: %w", err)
	}
	return path, nil
}

// Remove discards this process's pending allocation for id. Removing
// an allocation that does not exist is not an error; rollback paths
// call Remove without knowing how far materialization got.
func (c *Cache) Remove(id uuid.UUID) error {
	path := filepath.Join(c.root, processesDirName, c.processID, id.String())
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("removing allocation %s: %w", id, err)
	}
	return nil
}

// RenameToStable promotes the materialized tree at tmpPath into the
// stable pool as data/<id> and returns a fresh alias referencing it,
// along with the stable path. If the tree is already resident the
// pending copy is discarded and the resident tree is aliased: the
// first writer wins and later loaders converge on its copy. Either
// way the pending allocation is consumed.
func (c *Cache) RenameToStable(id uuid.UUID, tmpPath string) (Alias, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stable := filepath.Join(c.root, dataDirName, id.String())
	if _, err := os.Stat(stable); err == nil {
		if err := os.RemoveAll(tmpPath); err != nil {
			return Alias{}, "", fmt.Errorf("discarding duplicate tree: %w", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return Alias{}, "", fmt.Errorf("checking stable pool: %w", err)
	} else {
		if err := os.Rename(tmpPath, stable); err != nil {
			return Alias{}, "", fmt.Errorf("promoting %s to the stable pool: %w", id, err)
		}
		if err := makeReadOnly(stable); err != nil {
			return Alias{}, "", err
		}
	}

	alias, err := c.newAlias(id)
	if err != nil {
		return Alias{}, "", err
	}
	return alias, stable, nil
}

// AliasFor returns a fresh alias referencing the already-resident
// tree data/<id>.
func (c *Cache) AliasFor(id uuid.UUID) (Alias, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stable := filepath.Join(c.root, dataDirName, id.String())
	if _, err := os.Stat(stable); err != nil {
		return Alias{}, fmt.Errorf("artifact %s is not resident in the cache: %w", id, err)
	}
	return c.newAlias(id)
}

// StablePath returns where artifact id lives once resident.
func (c *Cache) StablePath(id uuid.UUID) string {
	return filepath.Join(c.root, dataDirName, id.String())
}

// newAlias creates and persists a reference record for id. Callers
// hold c.mu.
func (c *Cache) newAlias(id uuid.UUID) (Alias, error) {
	keysDir := filepath.Join(c.root, keysDirName)
	for {
		name, err := newAliasName(id)
		if err != nil {
			return Alias{}, err
		}
		if _, err := os.Stat(filepath.Join(keysDir, name)); err == nil {
			continue
		} else if !errors.Is(err, fs.ErrNotExist) {
			return Alias{}, fmt.Errorf("checking alias name: %w", err)
		}

		alias := Alias{Name: name, UUID: id, Created: time.Now().Unix()}
		if err := saveAlias(keysDir, alias); err != nil {
			return Alias{}, err
		}
		return alias, nil
	}
}

// Release drops one reference. Each alias releases exactly once; a
// second release of the same alias is an error, which the caller
// treats as a double-free bug rather than a benign no-op.
func (c *Cache) Release(alias Alias) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	path := filepath.Join(c.root, keysDirName, alias.Name)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("alias %s was already released", alias.Name)
		}
		return fmt.Errorf("releasing alias %s: %w", alias.Name, err)
	}
	return nil
}

// Referenced returns the set of tree UUIDs with at least one valid
// alias record. Records that fail decoding or their integrity check
// are skipped: a reference we cannot trust does not keep a tree
// alive.
func (c *Cache) Referenced() (map[uuid.UUID]int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.referencedLocked()
}

func (c *Cache) referencedLocked() (map[uuid.UUID]int, error) {
	keysDir := filepath.Join(c.root, keysDirName)
	entries, err := os.ReadDir(keysDir)
	if err != nil {
		return nil, fmt.Errorf("listing alias records: %w", err)
	}

	referenced := make(map[uuid.UUID]int)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		alias, err := loadAlias(filepath.Join(keysDir, entry.Name()))
		if err != nil {
			continue
		}
		referenced[alias.UUID]++
	}
	return referenced, nil
}

// GarbageCollect removes every stable tree no alias references and
// every process pool whose process is gone. It returns the names of
// the removed trees.
func (c *Cache) GarbageCollect() ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	referenced, err := c.referencedLocked()
	if err != nil {
		return nil, err
	}

	dataDir := filepath.Join(c.root, dataDirName)
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("listing stable pool: %w", err)
	}

	var removed []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id, err := uuid.Parse(entry.Name())
		if err != nil {
			continue
		}
		if referenced[id] > 0 {
			continue
		}
		tree := filepath.Join(dataDir, entry.Name())
		if err := os.RemoveAll(tree); err != nil {
			return removed, fmt.Errorf("removing %s: %w", tree, err)
		}
		removed = append(removed, entry.Name())
	}

	if err := c.collectDeadProcesses(); err != nil {
		return removed, err
	}
	return removed, nil
}

// collectDeadProcesses removes process pools left behind by exited
// processes. Pools whose liveness cannot be determined are left
// alone.
func (c *Cache) collectDeadProcesses() error {
	processesDir := filepath.Join(c.root, processesDirName)
	entries, err := os.ReadDir(processesDir)
	if err != nil {
		return fmt.Errorf("listing process pools: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == c.processID {
			continue
		}
		pidText, _, ok := strings.Cut(entry.Name(), "-")
		if !ok {
			continue
		}
		pid, err := strconv.Atoi(pidText)
		if err != nil {
			continue
		}
		if processAlive(pid) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(processesDir, entry.Name())); err != nil {
			return fmt.Errorf("removing dead process pool %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// processAlive probes pid with a null signal. Only a definitive
// "no such process" counts as dead; permission errors mean the
// process exists under another user.
func processAlive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = process.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	if errors.Is(err, os.ErrProcessDone) || errors.Is(err, syscall.ESRCH) {
		return false
	}
	return true
}

// Status summarizes a cache for operator tooling.
type Status struct {
	Root      string
	Artifacts int
	Aliases   int
	Processes int
}

// Status counts the cache's stable trees, live aliases, and process
// pools.
func (c *Cache) Status() (Status, error) {
	referenced, err := c.Referenced()
	if err != nil {
		return Status{}, err
	}
	aliases := 0
	for _, count := range referenced {
		aliases += count
	}

	status := Status{Root: c.root, Aliases: aliases}
	data, err := os.ReadDir(filepath.Join(c.root, dataDirName))
	if err != nil {
		return Status{}, fmt.Errorf("listing stable pool: %w", err)
	}
	for _, entry := range data {
		if entry.IsDir() {
			status.Artifacts++
		}
	}

	processes, err := os.ReadDir(filepath.Join(c.root, processesDirName))
	if err != nil {
		return Status{}, fmt.Errorf("listing process pools: %w", err)
	}
	for _, entry := range processes {
		if entry.IsDir() {
			status.Processes++
		}
	}
	return status, nil
}

// makeReadOnly strips write permission from every file in a stable
// tree. The data pool is shared state; nothing may mutate content
// other consumers read through their own aliases. Directories keep
// their modes so garbage collection can unlink the tree.
func makeReadOnly(root string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		if err := os.Chmod(path, info.Mode().Perm()&^0o222); err != nil {
			return fmt.Errorf("write-protecting %s: %w", path, err)
		}
		return nil
	})
}
