// Package util - Input image list resolution.
package util

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// supported raster extensions, lower case.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
}

// IsImagePath reports whether a path has a supported image extension.
func IsImagePath(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// LoadImageList resolves the --image-path argument into an ordered list of
// image paths plus the root directory recorded file names are made relative
// to. Three input forms are accepted: a single image path, a directory
// (walked recursively, results sorted), or a text list file with one image
// path per line (first whitespace-separated token; blank lines and #
// comments skipped).
//
// Arguments:
//   - path: An image file, a directory, or a list file.
//
// Returns:
//   - []string: Ordered image paths.
//   - string: The image root directory, "" unless path was a directory.
//   - error: Unreadable input or an empty result.
func LoadImageList(path string) ([]string, string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, "", fmt.Errorf("image path unavailable: %w", err)
	}

	if info.IsDir() {
		images, err := loadDirectory(path)
		if err != nil {
			return nil, "", err
		}
		if len(images) == 0 {
			return nil, "", fmt.Errorf("no images found under %s", path)
		}
		return images, path, nil
	}

	if IsImagePath(path) {
		return []string{path}, "", nil
	}

	images, err := loadListFile(path)
	if err != nil {
		return nil, "", err
	}
	if len(images) == 0 {
		return nil, "", fmt.Errorf("image list %s is empty", path)
	}
	return images, "", nil
}

// loadDirectory walks dir collecting supported image files in sorted order.
func loadDirectory(dir string) ([]string, error) {
	var images []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsImagePath(path) {
			images = append(images, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk image directory: %w", err)
	}
	sort.Strings(images)
	return images, nil
}

// loadListFile reads one image path per line.
func loadListFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image list: %w", err)
	}
	defer f.Close()

	var images []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		images = append(images, strings.Fields(line)[0])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read image list: %w", err)
	}
	return images, nil
}
