package script

import (
	"embed"
	"os"
	"path/filepath"
	"strings"
)

//go:embed scripts/*.tengo
var ScriptsFS embed.FS

// Source returns a script from disk, falling back to the embedded scripts
// by base name.
func Source(name string) ([]byte, error) {
	if data, err := os.ReadFile(name); err == nil {
		return data, nil
	}
	clean := filepath.ToSlash(name)
	if after, ok := strings.CutPrefix(clean, "scripts/"); ok {
		clean = after
	}
	if !strings.HasSuffix(clean, ".tengo") {
		clean += ".tengo"
	}
	return ScriptsFS.ReadFile("scripts/" + clean)
}
