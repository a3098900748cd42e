package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vidaplena/psiweb"
)

// runImages normalizes every image in dir in place: wide images are
// scaled down and everything is re-encoded as JPEG under a slugified
// name. Cover images are dropped into the asset tree by hand, so this
// keeps what gets served uniform.
func runImages(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir: %w", err)
	}

	processed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		switch strings.ToLower(filepath.Ext(name)) {
		case ".jpg", ".jpeg", ".png", ".gif":
		default:
			continue
		}

		src, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("open %s: %w", name, err)
		}
		img, data, err := psiweb.ProcessImage(src, name)
		src.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "skipping %s: %v\n", name, err)
			continue
		}

		out := filepath.Join(dir, img.Filename)
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", img.Filename, err)
		}
		if img.Filename != name {
			if err := os.Remove(filepath.Join(dir, name)); err != nil {
				return fmt.Errorf("remove %s: %w", name, err)
			}
		}
		fmt.Printf("%s -> %s (%dx%d, %d bytes)\n", name, img.Filename, img.Width, img.Height, img.Size)
		processed++
	}
	fmt.Printf("%d image(s) processed\n", processed)
	return nil
}
