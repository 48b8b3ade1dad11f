package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/worldnav/worldnav/navfile"
	"github.com/worldnav/worldnav/resultcode"
)

var infosCmd = &cobra.Command{
	Use:   "infos FILE",
	Short: "print the header of a .nav or .idx file",
	Long: `Read a previously built .nav tile file or .idx WorldObject
manifest, check it for consistency, and print its header fields on
standard output.`,
	Args: cobra.ExactArgs(1),
	RunE: runInfos,
}

func init() {
	RootCmd.AddCommand(infosCmd)
}

func runInfos(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	if tile, err := navfile.ReadTile(data); err == nil {
		printTileInfos(args[0], tile)
		return nil
	} else if !errors.Is(err, resultcode.ErrCorrupt) {
		return err
	}

	if entries, err := navfile.ReadIndex(data); err == nil {
		printIndexInfos(args[0], entries)
		return nil
	}

	return fmt.Errorf("navbuild: %s: not a recognized .nav or .idx file", args[0])
}

func printTileInfos(path string, t *navfile.Tile) {
	fmt.Printf("%s: navmesh tile\n", path)
	fmt.Printf("  tile:   (%d, %d)\n", t.X, t.Y)
	fmt.Printf("  bounds: min(%.2f, %.2f, %.2f) max(%.2f, %.2f, %.2f)\n",
		t.Bounds[0], t.Bounds[1], t.Bounds[2], t.Bounds[3], t.Bounds[4], t.Bounds[5])
	fmt.Printf("  mesh:   %d bytes\n", len(t.Mesh))
}

func printIndexInfos(path string, entries []navfile.IndexEntry) {
	fmt.Printf("%s: BVH index, %d world objects\n", path, len(entries))
	for _, e := range entries {
		fmt.Printf("  id %d -> offset %d\n", uint32(e.ID), e.BVHOffset)
	}
}
