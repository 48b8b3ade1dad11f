package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	yaml "gopkg.in/yaml.v2"

	"github.com/worldnav/worldnav/navgen"
)

func TestRunConfigWritesDefaultSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "navbuild.yml")

	err := runConfig(nil, []string{path})
	assert.NoError(t, err)

	buf, err := os.ReadFile(path)
	assert.NoError(t, err)

	var got navgen.Settings
	assert.NoError(t, yaml.Unmarshal(buf, &got))
	assert.Equal(t, navgen.DefaultSettings(), got)
}

func TestRunConfigDefaultsToNavbuildYMLName(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	assert.NoError(t, err)
	defer os.Chdir(wd)
	assert.NoError(t, os.Chdir(dir))

	err = runConfig(nil, nil)
	assert.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "navbuild.yml"))
	assert.NoError(t, err)
}
