// Command navbuild is the offline map-build driver: it reads ADT/WMO/M2
// game data through a blob.Provider, assembles each requested tile (or a
// map's single global WorldObject), runs it through navgen, and writes the
// resulting .nav/.bvh/.idx artifacts navfile defines.
package main

import "github.com/worldnav/worldnav/cmd/navbuild/cmd"

func main() {
	cmd.Execute()
}
