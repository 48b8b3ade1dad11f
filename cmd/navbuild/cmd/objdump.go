package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/worldnav/worldnav/meshbuild"
)

// objDumpPath returns the debug .obj path for tile (x,y), sitting alongside
// the tile's .nav file.
func objDumpPath(x, y int) string {
	return filepath.Join(outDir, "Nav", mapName, fmt.Sprintf("%d_%d.obj", x, y))
}

// writeOBJ dumps soup as a plain-text Wavefront OBJ for visual inspection
// of exactly what recast rasterized. gobj, the one OBJ library in the
// teacher's dependency graph, only decodes OBJ files (see DESIGN.md); there
// is no encoder to reuse for a pipeline that only ever produces geometry.
func writeOBJ(path string, soup meshbuild.Soup) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i := 0; i < int(soup.VertCount()); i++ {
		fmt.Fprintf(w, "v %f %f %f\n", soup.Verts[i*3], soup.Verts[i*3+1], soup.Verts[i*3+2])
	}
	for i := 0; i < int(soup.TriCount()); i++ {
		// OBJ face indices are 1-based.
		fmt.Fprintf(w, "f %d %d %d\n", soup.Triangles[i*3]+1, soup.Triangles[i*3+1]+1, soup.Triangles[i*3+2]+1)
	}
	return w.Flush()
}
