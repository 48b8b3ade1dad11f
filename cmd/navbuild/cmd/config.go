package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	yaml "gopkg.in/yaml.v2"

	"github.com/worldnav/worldnav/navgen"
)

var configCmd = &cobra.Command{
	Use:   "config [FILE]",
	Short: "write a build settings file",
	Long: `Write a build-settings file in YAML format, prefilled with
navgen's default values. If FILE is not given, "navbuild.yml" is used.`,
	RunE: runConfig,
}

func init() {
	RootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	path := "navbuild.yml"
	if len(args) >= 1 {
		path = args[0]
	}

	ok, err := confirmIfExists(path, fmt.Sprintf("%q already exists, overwrite? [y/N]", path))
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("aborted")
		return nil
	}

	buf, err := yaml.Marshal(navgen.DefaultSettings())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return err
	}
	fmt.Printf("build settings written to %q\n", path)
	return nil
}
