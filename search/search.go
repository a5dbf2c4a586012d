// Package search locates candidate DEM files under a filesystem or
// object-store URI, reusing TileDB's VFS so a single code path serves both.
package search

import (
	"path/filepath"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
)

// demPatterns are the basename globs recognised as DEM inputs, per
// the loader's supported extensions (.bt, .hgt).
var demPatterns = []string{"*.bt", "*.hgt"}

// trawl recursively walks uri, collecting files whose basename matches any
// of patterns.
func trawl(vfs *tiledb.VFS, patterns []string, uri string, items []string) ([]string, error) {
	dirs, files, err := vfs.List(uri)
	if err != nil {
		return items, err
	}

	for _, file := range files {
		base := filepath.Base(file)
		for _, pattern := range patterns {
			match, err := filepath.Match(pattern, base)
			if err != nil {
				return items, err
			}
			if match {
				items = append(items, file)
				break
			}
		}
	}

	for _, dir := range dirs {
		items, err = trawl(vfs, patterns, dir, items)
		if err != nil {
			return items, err
		}
	}

	return items, nil
}

// FindDEMs recursively searches uri for .bt and .hgt DEM files, using the
// TileDB Go bindings so the search transparently covers local filesystems
// and object stores such as S3. A TileDB config is required to search
// object stores with non-default permissions.
func FindDEMs(uri string, configURI string) ([]string, error) {
	var config *tiledb.Config
	var err error

	if configURI == "" {
		config, err = tiledb.NewConfig()
	} else {
		config, err = tiledb.LoadConfig(configURI)
	}
	if err != nil {
		return nil, err
	}
	defer config.Free()

	ctx, err := tiledb.NewContext(config)
	if err != nil {
		return nil, err
	}
	defer ctx.Free()

	vfs, err := tiledb.NewVFS(ctx, config)
	if err != nil {
		return nil, err
	}
	defer vfs.Free()

	return trawl(vfs, demPatterns, uri, make([]string, 0))
}
