//go:build !tinygo

package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// eraseBlockBytes is the NOR erase granularity of the board's flash.
const eraseBlockBytes = 4096

// eraseImage sets every byte of a flash image file to 0xFF, one erase block
// at a time, keeping its size. A missing file is already blank.
func eraseImage(path string, blockSize int) (int64, error) {
	if blockSize <= 0 || blockSize%256 != 0 {
		return 0, fmt.Errorf("flash: invalid erase size %d", blockSize)
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("open flash file %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	st, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat flash file %q: %w", path, err)
	}
	blank := make([]byte, blockSize)
	for i := range blank {
		blank[i] = 0xFF
	}
	size := st.Size()
	for off := int64(0); off < size; off += int64(blockSize) {
		chunk := blank
		if rest := size - off; rest < int64(len(chunk)) {
			chunk = chunk[:rest]
		}
		if _, err := f.WriteAt(chunk, off); err != nil {
			return off, fmt.Errorf("flash erase block at %d: %w", off, err)
		}
	}
	return size, nil
}

// copyTree copies the regular files under srcDir into dstDir, keeping the
// directory layout. Symlinks are skipped.
func copyTree(srcDir, dstDir string) (int, error) {
	srcDir = filepath.Clean(srcDir)
	st, err := os.Stat(srcDir)
	if err != nil {
		return 0, fmt.Errorf("stat src %q: %w", srcDir, err)
	}
	if !st.IsDir() {
		return 0, fmt.Errorf("src %q is not a directory", srcDir)
	}

	var dirs, files []string
	walkErr := filepath.WalkDir(srcDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == srcDir || entry.Type()&os.ModeSymlink != 0 {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		switch {
		case entry.IsDir():
			dirs = append(dirs, rel)
		case entry.Type().IsRegular():
			files = append(files, rel)
		}
		return nil
	})
	if walkErr != nil {
		return 0, fmt.Errorf("walk src %q: %w", srcDir, walkErr)
	}
	sort.Strings(dirs)
	sort.Strings(files)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return 0, fmt.Errorf("mkdir %q: %w", dstDir, err)
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dstDir, d), 0o755); err != nil {
			return 0, fmt.Errorf("mkdir %q: %w", d, err)
		}
	}
	for i, rel := range files {
		if err := copyFile(filepath.Join(srcDir, rel), filepath.Join(dstDir, rel)); err != nil {
			return i, err
		}
	}
	return len(files), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %q: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %q: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("write %q: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %q: %w", dst, err)
	}
	return nil
}
