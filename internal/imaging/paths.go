package imaging

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoImages is returned by ExpandPaths when no supported image file remains.
var ErrNoImages = errors.New("no supported images found")

// inputExts lists the extensions accepted as composition inputs.
var inputExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".gif":  true,
	".webp": true,
	".tif":  true,
	".tiff": true,
}

// IsImageFile reports whether path has a supported input extension.
func IsImageFile(path string) bool {
	return inputExts[strings.ToLower(filepath.Ext(path))]
}

// SplitDropList splits a drag-and-drop payload into individual paths.
//
// Entries are separated by spaces; a path that itself contains spaces is
// wrapped in braces, e.g. "{/tmp/my photo.png} /tmp/b.png".
func SplitDropList(data string) []string {
	var (
		result  []string
		token   strings.Builder
		inBrace bool
	)

	flush := func(trim bool) {
		s := token.String()
		if trim {
			s = strings.TrimSpace(s)
		}
		if s != "" {
			result = append(result, s)
		}
		token.Reset()
	}

	for _, ch := range data {
		switch {
		case ch == '{':
			inBrace = true
			flush(true)
		case ch == '}':
			inBrace = false
			flush(false)
		case ch == ' ' && !inBrace:
			flush(true)
		default:
			token.WriteRune(ch)
		}
	}
	flush(true)

	return result
}

// ExpandPaths turns a mix of files and directories into an ordered list of
// image files.
//
// Files keep their position and are dropped if their extension is not a
// supported image type. Directories are walked recursively in lexical order
// and contribute every supported image they contain; hidden entries are skipped.
//
// Returns ErrNoImages if nothing usable remains.
func ExpandPaths(paths []string) ([]string, error) {
	var out []string

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}

		if !info.IsDir() {
			if IsImageFile(p) {
				out = append(out, p)
			}
			continue
		}

		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path != p && strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.IsDir() && IsImageFile(path) {
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", p, err)
		}
	}

	if len(out) == 0 {
		return nil, ErrNoImages
	}
	return out, nil
}
