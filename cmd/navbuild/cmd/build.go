package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/arl/gogeo/f32/d3"
	"github.com/spf13/cobra"
	yaml "gopkg.in/yaml.v2"

	"github.com/worldnav/worldnav/blob"
	"github.com/worldnav/worldnav/buildjob"
	"github.com/worldnav/worldnav/buildlog"
	"github.com/worldnav/worldnav/format/area"
	"github.com/worldnav/worldnav/meshbuild"
	"github.com/worldnav/worldnav/navfile"
	"github.com/worldnav/worldnav/navgen"
	"github.com/worldnav/worldnav/worldmap"
)

var (
	dataDir     string
	mapName     string
	outDir      string
	configPath  string
	areaPath    string
	wmoName     string
	adtX        int
	adtY        int
	jobs        int
	forceGlobal bool
	dumpOBJ     bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "build navmesh tiles for a map",
	Long: `Build reads a map's ADT tiles (or its single global WorldObject)
from --data, assembles each tile's full geometry soup (terrain, liquid,
WorldObjects and Doodads), runs it through the recast/detour build
pipeline and writes the resulting .nav files under --output, plus one
.bvh file per WorldObject and one .idx manifest per map listing them.

With neither -x nor -y given, every tile whose ADT file exists is built in
parallel across --jobs workers. With both given, only that single tile is
assembled and built; its neighbours are not loaded.`,
	RunE: runBuild,
}

func init() {
	RootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVarP(&dataDir, "data", "d", "", "game data directory (required)")
	buildCmd.Flags().StringVarP(&mapName, "map", "m", "", "map name (required)")
	buildCmd.Flags().StringVarP(&outDir, "output", "o", "output", "output directory for built navmesh data")
	buildCmd.Flags().IntVarP(&adtX, "adtX", "x", -1, "single tile's X coordinate (requires -y)")
	buildCmd.Flags().IntVarP(&adtY, "adtY", "y", -1, "single tile's Y coordinate (requires -x)")
	buildCmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "parallel build workers")
	buildCmd.Flags().StringVar(&configPath, "config", "", "YAML build settings file (defaults used if omitted)")
	buildCmd.Flags().StringVar(&areaPath, "area-table", "", "optional zone/area id CSV lookup table")
	buildCmd.Flags().BoolVar(&forceGlobal, "global", false, "treat the map as a single global WorldObject (auto-detected otherwise)")
	buildCmd.Flags().StringVar(&wmoName, "wmo", "", `global WorldObject file name (defaults to "<map>.wmo")`)
	buildCmd.Flags().BoolVar(&dumpOBJ, "dump-obj", false, "also write each built tile's rasterizer input as a .obj file")

	buildCmd.MarkFlagRequired("data")
	buildCmd.MarkFlagRequired("map")
}

func runBuild(cmd *cobra.Command, args []string) error {
	if (adtX >= 0) != (adtY >= 0) {
		return fmt.Errorf("navbuild: -x and -y must be given together")
	}

	provider := blob.NewDirProvider(dataDir)

	areaTable, err := loadAreaTable(areaPath)
	if err != nil {
		return err
	}

	settings, err := loadSettings(configPath)
	if err != nil {
		return err
	}

	log := buildlog.New(true)
	asm := worldmap.NewAssembler(provider, areaTable, mapName, log)

	global := forceGlobal || detectGlobal(provider, mapName)
	m := worldmap.NewMap(mapName, global)

	if global {
		name := wmoName
		if name == "" {
			name = mapName + ".wmo"
		}
		if err := asm.AssembleGlobal(m, name); err != nil {
			return fmt.Errorf("navbuild: assemble global world object %q: %w", name, err)
		}
		if err := buildGlobalTile(m, settings); err != nil {
			return err
		}
		return writeBVHIndex(m)
	}

	coords := tileCoords(provider)
	if len(coords) == 0 {
		return fmt.Errorf("navbuild: no tiles found for map %q under %q", mapName, dataDir)
	}

	job := buildjob.New(jobs, func(c buildjob.TileCoord) error {
		return buildOneTile(asm, m, c.X, c.Y, settings)
	}, log)
	results := job.Run(coords)

	built, failed := 0, 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "navbuild: tile (%d,%d): %v\n", r.Coord.X, r.Coord.Y, r.Err)
			continue
		}
		built++
	}
	fmt.Printf("built %d/%d tiles for %q (%d failed)\n", built, len(results), mapName, failed)
	if built == 0 && failed > 0 {
		return fmt.Errorf("navbuild: every tile failed for map %q", mapName)
	}

	return writeBVHIndex(m)
}

// detectGlobal reports whether mapName looks like a single-WorldObject map:
// the convention (matching the source tool's WDT-driven decision, which
// this repo's format packages don't parse) is that such a map ships
// "<map>.wmo" at the data root instead of any "<map>_X_Y.adt" tile.
func detectGlobal(provider blob.Provider, mapName string) bool {
	b, err := provider.Open(mapName + ".wmo")
	if err != nil {
		return false
	}
	b.Close()
	return true
}

// tileCoords returns every (x,y) in the 64x64 grid whose ADT file actually
// exists under provider, or just the single tile requested via -x/-y.
func tileCoords(provider blob.Provider) []buildjob.TileCoord {
	if adtX >= 0 {
		return []buildjob.TileCoord{{X: adtX, Y: adtY}}
	}
	var coords []buildjob.TileCoord
	for y := 0; y < worldmap.GridSize; y++ {
		for x := 0; x < worldmap.GridSize; x++ {
			b, err := provider.Open(tileFileName(mapName, x, y))
			if err != nil {
				continue
			}
			b.Close()
			coords = append(coords, buildjob.TileCoord{X: x, Y: y})
		}
	}
	return coords
}

func tileFileName(mapName string, x, y int) string {
	return fmt.Sprintf("%s_%d_%d.adt", mapName, x, y)
}

func loadAreaTable(path string) (*area.Table, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("navbuild: area table: %w", err)
	}
	defer f.Close()
	t, err := area.ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("navbuild: area table: %w", err)
	}
	return t, nil
}

func loadSettings(path string) (navgen.Settings, error) {
	settings := navgen.DefaultSettings()
	if path == "" {
		return settings, nil
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return settings, fmt.Errorf("navbuild: config: %w", err)
	}
	if err := yaml.Unmarshal(buf, &settings); err != nil {
		return settings, fmt.Errorf("navbuild: config: %w", err)
	}
	return settings, nil
}

func buildOneTile(asm *worldmap.Assembler, m *worldmap.Map, x, y int, settings navgen.Settings) error {
	tile, err := asm.AssembleTile(m, x, y)
	if err != nil {
		return err
	}
	m.SetTile(tile)

	soup := meshbuild.Build(m, tile, meshbuild.Options{SkipDoodadsNotTouchingTerrain: true})
	if soup.TriCount() == 0 {
		return nil
	}

	result, err := navgen.Build(soup, int32(x), int32(y), settings)
	if err != nil {
		return err
	}

	nt := navfile.Tile{
		X:      int32(x),
		Y:      int32(y),
		Bounds: boundsArray(tile.Bounds.Min, tile.Bounds.Max),
		Mesh:   result.Data,
	}
	fillAreaIDs(&nt, tile)

	if err := navfile.WriteTile(navfile.TilePath(outDir, mapName, x, y), nt); err != nil {
		return err
	}
	if dumpOBJ {
		if err := writeOBJ(objDumpPath(x, y), soup); err != nil {
			return err
		}
	}
	return nil
}

func buildGlobalTile(m *worldmap.Map, settings navgen.Settings) error {
	w, err := m.GlobalWorldObject()
	if err != nil {
		return err
	}
	soup := meshbuild.BuildGlobal(w)
	if soup.TriCount() == 0 {
		return fmt.Errorf("navbuild: global world object for %q has no geometry", mapName)
	}

	result, err := navgen.Build(soup, 0, 0, settings)
	if err != nil {
		return err
	}

	b := w.Bounds()
	nt := navfile.Tile{
		X:      0,
		Y:      0,
		Bounds: boundsArray(b.Min, b.Max),
		Mesh:   result.Data,
	}
	if err := navfile.WriteTile(navfile.TilePath(outDir, mapName, 0, 0), nt); err != nil {
		return err
	}
	if dumpOBJ {
		if err := writeOBJ(objDumpPath(0, 0), soup); err != nil {
			return err
		}
	}
	fmt.Printf("built global navmesh for %q\n", mapName)
	return nil
}

func boundsArray(min, max d3.Vec3) [6]float32 {
	return [6]float32{min[0], min[1], min[2], max[0], max[1], max[2]}
}

// fillAreaIDs copies tile's 16x16 chunk AreaId grid, row-major, into nt's
// additive AreaIDs field (see navfile.Tile's doc comment).
func fillAreaIDs(nt *navfile.Tile, tile *worldmap.Tile) {
	for cy := 0; cy < worldmap.ChunksPerTile; cy++ {
		for cx := 0; cx < worldmap.ChunksPerTile; cx++ {
			nt.AreaIDs[cy*worldmap.ChunksPerTile+cx] = tile.Chunks[cy][cx].AreaID
		}
	}
}

// writeBVHIndex writes one .bvh file per WorldObject the map has resolved,
// plus a shared .idx manifest listing them all.
func writeBVHIndex(m *worldmap.Map) error {
	ids := m.WorldObjectIDs()
	if len(ids) == 0 {
		return nil
	}
	entries := make([]navfile.IndexEntry, 0, len(ids))
	for _, id := range ids {
		w, ok := m.WorldObjectByID(id)
		if !ok {
			continue
		}
		bvh := navfile.BuildBVH(id, w.Mesh)
		if err := navfile.WriteBVH(navfile.BVHPath(outDir, id), bvh); err != nil {
			return err
		}
		// Each WorldObject's BVH lives in its own file, so there is no
		// combined record area to offset into yet; the field stays 0 until
		// a single-file BVH bundle format is worth building.
		entries = append(entries, navfile.IndexEntry{ID: id, BVHOffset: 0})
	}
	return navfile.WriteIndex(navfile.IndexPath(outDir, mapName), entries)
}
