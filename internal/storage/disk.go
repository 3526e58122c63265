package storage

import (
	"io/fs"
	"os"
	"path/filepath"
)

// Usage is the on-disk size of one output path.
type Usage struct {
	Path   string `json:"path"`
	Bytes  int64  `json:"bytes"`
	Exists bool   `json:"exists"`
}

// OutputUsage reports the size of each path. Directories are summed
// recursively; a missing path is reported with Exists false. Empty paths are
// left out.
func OutputUsage(paths ...string) ([]Usage, error) {
	usages := make([]Usage, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		info, err := os.Stat(p)
		if os.IsNotExist(err) {
			usages = append(usages, Usage{Path: p})
			continue
		}
		if err != nil {
			return nil, err
		}
		u := Usage{Path: p, Bytes: info.Size(), Exists: true}
		if info.IsDir() {
			if u.Bytes, err = dirSize(p); err != nil {
				return nil, err
			}
		}
		usages = append(usages, u)
	}
	return usages, nil
}

// DiskUsageBytes returns the total size in bytes of the given paths.
func DiskUsageBytes(paths ...string) (int64, error) {
	usages, err := OutputUsage(paths...)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, u := range usages {
		total += u.Bytes
	}
	return total, nil
}

func dirSize(dir string) (int64, error) {
	var total int64
	err := filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	return total, err
}
