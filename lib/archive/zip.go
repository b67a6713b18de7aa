// Copyright 2026 The QIIME 2 Authors
// SPDX-License-Identifier: BSD-3-Clause

package archive

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zip"
)

// ZipBackend reads an artifact stored as a ZIP container. Every
// operation opens the container, does its work, and closes it again;
// the backend itself holds no file handle, so values can be kept
// around for as long as the path stays valid.
type ZipBackend struct {
	path             string
	uuid             uuid.UUID
	version          string
	frameworkVersion string
}

var _ Backend = (*ZipBackend)(nil)

// IsZipArchive reports whether the file at path is a readable ZIP
// container. It is a cheap sniff with no side effects and no claim
// about archive validity beyond the container format.
func IsZipArchive(path string) bool {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return false
	}
	reader.Close()
	return true
}

// NewZipBackend opens the container at path and discovers its
// identity: exactly one visible root entry named by a version 4 UUID,
// holding a well-formed VERSION resource. Any violation fails
// construction with one of the errors in errors.go.
func NewZipBackend(path string) (*ZipBackend, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNotAnArchive)
	}
	defer reader.Close()

	var names []string
	for _, file := range reader.File {
		names = append(names, topSegment(file.Name))
	}
	id, err := discoverRootUUID(dedupeSorted(names))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	backend := &ZipBackend{path: path, uuid: id}

	entry, err := findZipEntry(&reader.Reader, id.String()+"/"+VersionFileName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, ErrMalformedVersionFile)
	}
	contents, err := readZipEntry(entry)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, ErrMalformedVersionFile)
	}
	backend.version, backend.frameworkVersion, err = parseVersionContents(contents)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return backend, nil
}

// Path returns the container file location.
func (b *ZipBackend) Path() string { return b.path }

// UUID returns the artifact identity.
func (b *ZipBackend) UUID() uuid.UUID { return b.uuid }

// Version returns the archive format tag.
func (b *ZipBackend) Version() string { return b.version }

// FrameworkVersion returns the producing framework's version.
func (b *ZipBackend) FrameworkVersion() string { return b.frameworkVersion }

// ListEntries returns the sorted top-level segments of container
// entries whose name begins with prefix.
func (b *ZipBackend) ListEntries(prefix string) ([]string, error) {
	reader, err := zip.OpenReader(b.path)
	if err != nil {
		return nil, fmt.Errorf("opening container %s: %w", b.path, err)
	}
	defer reader.Close()

	prefix = asZipPath(prefix)
	var names []string
	for _, file := range reader.File {
		if strings.HasPrefix(file.Name, prefix) {
			names = append(names, topSegment(file.Name))
		}
	}
	return dedupeSorted(names), nil
}

// Open opens the named resource under the archive root. The returned
// reader owns a handle on the container and must be closed.
func (b *ZipBackend) Open(relative string) (io.ReadCloser, error) {
	reader, err := zip.OpenReader(b.path)
	if err != nil {
		return nil, fmt.Errorf("opening container %s: %w", b.path, err)
	}

	name := b.uuid.String() + "/" + asZipPath(relative)
	entry, err := findZipEntry(&reader.Reader, name)
	if err != nil {
		reader.Close()
		return nil, err
	}
	stream, err := entry.Open()
	if err != nil {
		reader.Close()
		return nil, fmt.Errorf("opening container entry %s: %w", name, err)
	}
	return &zipEntryReader{stream: stream, container: reader}, nil
}

// Extract copies every entry under the archive root into destination's
// parent. Entry paths are validated before anything is written: an
// entry that would resolve outside destination's parent fails the
// whole extraction with a [PathTraversalError].
func (b *ZipBackend) Extract(destination string) (string, error) {
	destination = filepath.Clean(destination)
	root := b.uuid.String()
	if filepath.Base(destination) != root {
		return "", fmt.Errorf("extract destination %s must be named by the archive UUID %s", destination, root)
	}
	parent := filepath.Dir(destination)

	reader, err := zip.OpenReader(b.path)
	if err != nil {
		return "", fmt.Errorf("opening container %s: %w", b.path, err)
	}
	defer reader.Close()

	// Validate every member before extracting any. A traversal
	// violation must leave the destination untouched. The cleaned
	// entry path must still live under the UUID root: an entry whose
	// ".." segments lift it out of the root would land outside the
	// destination.
	var members []*zip.File
	for _, file := range reader.File {
		if !underRoot(file.Name, root) {
			continue
		}
		if cleaned := path.Clean(file.Name); !underRoot(cleaned, root) {
			return "", &PathTraversalError{Entry: file.Name, Root: parent}
		}
		members = append(members, file)
	}

	for _, file := range members {
		if err := extractZipEntry(file, parent); err != nil {
			return "", err
		}
	}
	return destination, nil
}

// Mount materializes the archive at destination. If destination
// already holds a VERSION resource the archive is already mounted
// there (a stable cache tree, for example, which is read-only) and
// extraction is skipped.
func (b *ZipBackend) Mount(destination string) (Record, error) {
	if _, err := os.Stat(filepath.Join(destination, VersionFileName)); err != nil {
		if _, err := b.Extract(destination); err != nil {
			return Record{}, err
		}
	}

	return Record{
		Root:             destination,
		VersionFile:      filepath.Join(destination, VersionFileName),
		UUID:             b.uuid,
		Version:          b.version,
		FrameworkVersion: b.frameworkVersion,
	}, nil
}

// SaveZip serializes the archive tree rooted at source into a new ZIP
// container at destination. Entries are written with forward-slash
// names relative to source's parent, so the container is rooted at
// the UUID directory. Hidden files and directories are never written.
// A partially written container is removed on failure.
func SaveZip(source, destination string) error {
	source = filepath.Clean(source)
	parent := filepath.Dir(source)

	out, err := os.Create(destination)
	if err != nil {
		return fmt.Errorf("creating container %s: %w", destination, err)
	}

	success := false
	defer func() {
		if !success {
			out.Close()
			os.Remove(destination)
		}
	}()

	writer := zip.NewWriter(out)
	err = filepath.WalkDir(source, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		hidden := strings.HasPrefix(entry.Name(), ".")
		if entry.IsDir() {
			if hidden && path != source {
				return fs.SkipDir
			}
			return nil
		}
		if hidden {
			return nil
		}

		relative, err := filepath.Rel(parent, path)
		if err != nil {
			return err
		}
		return writeZipEntry(writer, path, asZipPath(filepath.ToSlash(relative)), entry)
	})
	if err != nil {
		writer.Close()
		return fmt.Errorf("saving %s: %w", source, err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalizing container %s: %w", destination, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing container %s: %w", destination, err)
	}

	success = true
	return nil
}

// writeZipEntry deflates one file into the container.
func writeZipEntry(writer *zip.Writer, path, name string, entry fs.DirEntry) error {
	info, err := entry.Info()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("building header for %s: %w", name, err)
	}
	header.Name = name
	header.Method = zip.Deflate

	target, err := writer.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("creating container entry %s: %w", name, err)
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := io.Copy(target, file); err != nil {
		return fmt.Errorf("writing container entry %s: %w", name, err)
	}
	return nil
}

// extractZipEntry writes one validated container entry beneath parent.
func extractZipEntry(file *zip.File, parent string) error {
	target := filepath.Join(parent, filepath.FromSlash(file.Name))

	if strings.HasSuffix(file.Name, "/") || file.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", file.Name, err)
	}

	mode := file.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("creating %s: %w", target, err)
	}

	stream, err := file.Open()
	if err != nil {
		out.Close()
		return fmt.Errorf("opening container entry %s: %w", file.Name, err)
	}

	_, err = io.Copy(out, stream)
	stream.Close()
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("extracting %s: %w", file.Name, err)
	}
	return nil
}

// findZipEntry locates a container entry by exact name.
func findZipEntry(reader *zip.Reader, name string) (*zip.File, error) {
	for _, file := range reader.File {
		if file.Name == name {
			return file, nil
		}
	}
	return nil, fmt.Errorf("container entry %s: %w", name, fs.ErrNotExist)
}

// readZipEntry reads a whole container entry into a string.
func readZipEntry(entry *zip.File) (string, error) {
	stream, err := entry.Open()
	if err != nil {
		return "", err
	}
	defer stream.Close()
	data, err := io.ReadAll(stream)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// topSegment returns the first path segment of a slash-separated
// container entry name.
func topSegment(name string) string {
	if index := strings.IndexByte(name, '/'); index >= 0 {
		return name[:index]
	}
	return name
}

// zipEntryReader couples an entry stream with the container handle it
// reads from, closing both together.
type zipEntryReader struct {
	stream    io.ReadCloser
	container *zip.ReadCloser
}

func (r *zipEntryReader) Read(p []byte) (int, error) {
	return r.stream.Read(p)
}

func (r *zipEntryReader) Close() error {
	err := r.stream.Close()
	if closeErr := r.container.Close(); err == nil {
		err = closeErr
	}
	return err
}
