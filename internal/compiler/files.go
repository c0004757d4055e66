package compiler

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/propdeps/internal/ir"
)

// CompileFiles compiles the `type` declarations of standalone CUE files,
// in file order then source order. Files are compiled independently; use a
// CUE package directory (load.Instances) when declarations span files that
// must unify.
func CompileFiles(paths ...string) ([]ir.TypeSpec, error) {
	ctx := cuecontext.New()

	var specs []ir.TypeSpec
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		v := ctx.CompileBytes(data, cue.Filename(path))
		if err := v.Err(); err != nil {
			return nil, fmt.Errorf("compile %s: %w", path, formatCUEError(err))
		}

		typesVal := v.LookupPath(cue.ParsePath("type"))
		if !typesVal.Exists() {
			return nil, fmt.Errorf("compile %s: no type declarations", path)
		}

		fileSpecs, err := CompileTypes(typesVal)
		if err != nil {
			return nil, fmt.Errorf("compile %s: %w", path, err)
		}
		specs = append(specs, fileSpecs...)
	}
	return specs, nil
}
