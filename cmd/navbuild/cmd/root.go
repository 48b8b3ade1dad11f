// Package cmd implements navbuild's cobra command tree: build, config and
// infos, in the same shape as go-detour's own cmd/recast tool.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// RootCmd is the base command invoked when navbuild is run with no
// subcommand.
var RootCmd = &cobra.Command{
	Use:   "navbuild",
	Short: "build and inspect tiled navmeshes from game terrain data",
	Long: `navbuild turns ADT/WMO/M2 game data into the per-tile navigation
meshes the runtime query engine loads:

  - build    assemble one tile, a full map, or a global WorldObject, and
             write its .nav/.bvh/.idx artifacts
  - config   write a build-settings YAML file prefilled with defaults
  - infos    print the header of a previously built .nav or .idx file`,
}

// Execute runs the command tree. Called once from main.main.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
