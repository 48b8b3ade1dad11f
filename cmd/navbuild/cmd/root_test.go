package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCmdRegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range RootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["build"])
	assert.True(t, names["config"])
	assert.True(t, names["infos"])
}

func TestRootCmdUse(t *testing.T) {
	assert.Equal(t, "navbuild", RootCmd.Use)
}
