// Package fs implements the local filesystem tool family. Every operation
// honors the caller-supplied path verbatim; paths are resolved to absolute
// form but never re-rooted.
package fs

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Service exposes the filesystem primitives backing the fs_* tools.
// Recoverable failures come back as an in-band error result, mirroring the
// contract every backend family follows.
type Service struct{}

// NewService creates a filesystem service.
func NewService() *Service {
	return &Service{}
}

func errResult(format string, args ...any) map[string]any {
	return map[string]any{"error": fmt.Sprintf(format, args...)}
}

func statusResult(format string, args ...any) map[string]any {
	return map[string]any{
		"status":  "success",
		"message": fmt.Sprintf(format, args...),
	}
}

// ReadFile returns the content of a regular file.
func (s *Service) ReadFile(path string) map[string]any {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errResult("%v", err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.Mode().IsRegular() {
		return errResult("Not a file: %s", path)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return errResult("%v", err)
	}
	return map[string]any{"content": string(data)}
}

// WriteFile writes content to a file, creating parent directories as needed.
func (s *Service) WriteFile(path, content string) map[string]any {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errResult("%v", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return errResult("%v", err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		return errResult("%v", err)
	}
	return statusResult("Wrote to %s", path)
}

// ListDirectory lists a directory with per-entry details.
func (s *Service) ListDirectory(path string) map[string]any {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errResult("%v", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return errResult("Directory does not exist: %s", path)
	}
	if !info.IsDir() {
		return errResult("Not a directory: %s", path)
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return errResult("Error listing directory: %v", err)
	}

	items := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		entryInfo, err := entry.Info()
		if err != nil {
			continue
		}
		var size int64
		if !entry.IsDir() {
			size = entryInfo.Size()
		}
		items = append(items, map[string]any{
			"name":     entry.Name(),
			"is_dir":   entry.IsDir(),
			"size":     size,
			"modified": entryInfo.ModTime().Unix(),
		})
	}

	return map[string]any{
		"items":       items,
		"path":        abs,
		"total_items": len(items),
	}
}

// CreateDirectory creates a directory and any missing parents.
func (s *Service) CreateDirectory(path string) map[string]any {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errResult("%v", err)
	}
	if _, err := os.Stat(abs); err == nil {
		return errResult("Directory already exists: %s", path)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return errResult("%v", err)
	}
	return statusResult("Created directory: %s", path)
}

// DeleteDirectory removes a directory; non-recursive deletes require it to
// be empty.
func (s *Service) DeleteDirectory(path string, recursive bool) map[string]any {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errResult("%v", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return errResult("Directory does not exist: %s", path)
	}
	if !info.IsDir() {
		return errResult("Not a directory: %s", path)
	}

	if recursive {
		err = os.RemoveAll(abs)
	} else {
		err = os.Remove(abs)
	}
	if err != nil {
		return errResult("%v", err)
	}
	return statusResult("Deleted directory: %s", path)
}

// SearchFiles matches files under a directory against a glob pattern.
func (s *Service) SearchFiles(path, pattern string, recursive bool) map[string]any {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errResult("%v", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return errResult("Directory does not exist: %s", path)
	}
	if !info.IsDir() {
		return errResult("Not a directory: %s", path)
	}
	if pattern == "" {
		pattern = "*"
	}

	matches := make([]map[string]any, 0)
	appendMatch := func(filePath string, entryInfo os.FileInfo) {
		matches = append(matches, map[string]any{
			"path":     filePath,
			"name":     entryInfo.Name(),
			"size":     entryInfo.Size(),
			"modified": entryInfo.ModTime().Unix(),
		})
	}

	if recursive {
		walkErr := filepath.WalkDir(abs, func(entryPath string, entry fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if entry.IsDir() {
				return nil
			}
			matched, matchErr := filepath.Match(pattern, entry.Name())
			if matchErr != nil {
				return matchErr
			}
			if matched {
				if entryInfo, infoErr := entry.Info(); infoErr == nil {
					appendMatch(entryPath, entryInfo)
				}
			}
			return nil
		})
		if walkErr != nil {
			return errResult("%v", walkErr)
		}
	} else {
		entries, readErr := os.ReadDir(abs)
		if readErr != nil {
			return errResult("%v", readErr)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			matched, matchErr := filepath.Match(pattern, entry.Name())
			if matchErr != nil {
				return errResult("%v", matchErr)
			}
			if matched {
				if entryInfo, infoErr := entry.Info(); infoErr == nil {
					appendMatch(filepath.Join(abs, entry.Name()), entryInfo)
				}
			}
		}
	}

	return map[string]any{
		"matches":       matches,
		"total_matches": len(matches),
		"search_path":   abs,
		"pattern":       pattern,
	}
}

// GetMetadata returns detailed metadata about a file.
func (s *Service) GetMetadata(path string) map[string]any {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errResult("%v", err)
	}
	info, err := os.Lstat(abs)
	if err != nil {
		return errResult("File does not exist: %s", path)
	}
	isSymlink := info.Mode()&os.ModeSymlink != 0
	if isSymlink {
		if info, err = os.Stat(abs); err != nil {
			return errResult("File does not exist: %s", path)
		}
	}
	if !info.Mode().IsRegular() {
		return errResult("Not a file: %s", path)
	}

	return map[string]any{
		"path":       abs,
		"name":       info.Name(),
		"size":       info.Size(),
		"modified":   info.ModTime().Unix(),
		"is_symlink": isSymlink,
		"extension":  filepath.Ext(abs),
		"parent":     filepath.Dir(abs),
	}
}

// DeleteFile removes a regular file.
func (s *Service) DeleteFile(path string) map[string]any {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errResult("%v", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return errResult("File does not exist: %s", path)
	}
	if !info.Mode().IsRegular() {
		return errResult("Not a file: %s", path)
	}
	if err := os.Remove(abs); err != nil {
		return errResult("%v", err)
	}
	return statusResult("Deleted file: %s", path)
}

// CopyFile copies a file from source to destination.
func (s *Service) CopyFile(src, dst string) map[string]any {
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return errResult("%v", err)
	}
	absDst, err := filepath.Abs(dst)
	if err != nil {
		return errResult("%v", err)
	}
	info, err := os.Stat(absSrc)
	if err != nil {
		return errResult("Source file does not exist: %s", src)
	}
	if !info.Mode().IsRegular() {
		return errResult("Source is not a file: %s", src)
	}

	if err := copyContents(absSrc, absDst, info); err != nil {
		return errResult("%v", err)
	}
	return statusResult("Copied %s to %s", src, dst)
}

// MoveFile moves a file from source to destination.
func (s *Service) MoveFile(src, dst string) map[string]any {
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return errResult("%v", err)
	}
	absDst, err := filepath.Abs(dst)
	if err != nil {
		return errResult("%v", err)
	}
	info, err := os.Stat(absSrc)
	if err != nil {
		return errResult("Source file does not exist: %s", src)
	}
	if !info.Mode().IsRegular() {
		return errResult("Source is not a file: %s", src)
	}

	if err := os.Rename(absSrc, absDst); err == nil {
		return statusResult("Moved %s to %s", src, dst)
	}
	// Rename fails across filesystems; fall back to copy and delete.
	if err := copyContents(absSrc, absDst, info); err != nil {
		return errResult("%v", err)
	}
	if err := os.Remove(absSrc); err != nil {
		return errResult("%v", err)
	}
	return statusResult("Moved %s to %s", src, dst)
}

func copyContents(src, dst string, info os.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
