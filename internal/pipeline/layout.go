package pipeline

import (
	"path/filepath"
	"strings"

	"resbuild/internal/cache"
)

// Layout names the paths the build owns inside the build directory:
//
//	bin/res/compiled/<type>_<name>.flat    flats from compile
//	bin/res/<library>.zip                  library bundles
//	bin/res/R.txt                          symbol table
//	bin/generated.apk.res                  linked resource archive
//	gen/                                   generated sources
//	intermediate/resources/<type>/<name>   fingerprint mirror
type Layout struct {
	Build string
}

func (l Layout) BinRes() string       { return filepath.Join(l.Build, "bin", "res") }
func (l Layout) Compiled() string     { return filepath.Join(l.BinRes(), "compiled") }
func (l Layout) Symbols() string      { return filepath.Join(l.BinRes(), "R.txt") }
func (l Layout) Archive() string      { return filepath.Join(l.Build, "bin", "generated.apk.res") }
func (l Layout) Gen() string          { return filepath.Join(l.Build, "gen") }
func (l Layout) Fingerprints() string { return filepath.Join(l.Build, "intermediate", "resources") }

// FlatName is the file name the compiler gives the flat of f. Values files
// become resource tables (<type>_<base>.arsc.flat); everything else keeps
// its full file name (<type>_<name>.flat).
func FlatName(f cache.ResourceFile) string {
	kind, _, _ := strings.Cut(f.Type, "-")
	if kind == "values" {
		base := strings.TrimSuffix(f.Name, filepath.Ext(f.Name))
		return f.Type + "_" + base + ".arsc.flat"
	}
	return f.Type + "_" + f.Name + ".flat"
}
