package watch

import (
	"io/fs"
	"path/filepath"
)

// Module is a directory that owns a schema file.
type Module struct {
	// Name is the module directory relative to the watch root, in slash form.
	Name string `json:"name" yaml:"name"`
	// Dir is the module directory as seen from the current directory.
	Dir string `json:"dir" yaml:"dir"`
	// Schema is the path of the schema file.
	Schema string `json:"schema" yaml:"schema"`
}

// Discover lists the modules below root in lexical order. Hidden
// directories are skipped, as they are by the watcher.
func Discover(root, schemaFile string) ([]Module, error) {
	var modules []Module

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && isHidden(path) {
				return filepath.SkipDir
			}

			return nil
		}

		if !matchesSchema(path, schemaFile) {
			return nil
		}

		dir := filepath.Dir(path)

		name, relErr := filepath.Rel(root, dir)
		if relErr != nil {
			name = dir
		}

		modules = append(modules, Module{
			Name:   filepath.ToSlash(name),
			Dir:    dir,
			Schema: path,
		})

		return nil
	})

	return modules, err
}
