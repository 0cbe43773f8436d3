// Package boundary reads patch metadata from the collaborator-owned
// OpenFOAM polyMesh/boundary file.
package boundary

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/okian/foamperf/internal/domain/model"
)

// The boundary file is an OpenFOAM dictionary. A full dictionary parser is
// not needed here: each patch is a named block whose body declares at least
// a type and a face count, which a block scan recovers reliably.
var (
	blockRe  = regexp.MustCompile(`(?s)([A-Za-z_][\w.\-]*)\s*\{([^{}]*)\}`)
	typeRe   = regexp.MustCompile(`\btype\s+(\w+)\s*;`)
	nFacesRe = regexp.MustCompile(`\bnFaces\s+(\d+)\s*;`)
)

// File returns the conventional boundary file path under a case directory.
func File(caseDir string) string {
	return filepath.Join(caseDir, "constant", "polyMesh", "boundary")
}

// ReadPatches extracts the patch list from a boundary file. Blocks without
// a type entry (the FoamFile header) are skipped.
func ReadPatches(path string) ([]model.Patch, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading boundary file: %w", err)
	}

	var patches []model.Patch
	for _, m := range blockRe.FindAllStringSubmatch(string(content), -1) {
		name, body := m[1], m[2]

		tm := typeRe.FindStringSubmatch(body)
		if tm == nil {
			continue
		}

		faces := 0
		if fm := nFacesRe.FindStringSubmatch(body); fm != nil {
			faces, _ = strconv.Atoi(fm[1])
		}

		patches = append(patches, model.Patch{
			Name:  name,
			Type:  tm[1],
			Faces: faces,
		})
	}
	return patches, nil
}
