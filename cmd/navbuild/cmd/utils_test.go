package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfirmIfExistsAbsentPathProceedsWithoutPrompting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.yml")
	ok, err := confirmIfExists(path, "overwrite?")
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestConfirmIfExistsExistingPathDefaultsToNoWithoutInput(t *testing.T) {
	// askForConfirmation reads stdin for a y/n answer; under `go test` stdin
	// carries no input, so ReadString hits EOF immediately and the helper
	// takes its documented "bare ENTER/EOF defaults to no" branch.
	dir := t.TempDir()
	existing := filepath.Join(dir, "present.yml")
	assert.NoError(t, os.WriteFile(existing, []byte("x"), 0o644))

	ok, err := confirmIfExists(existing, "overwrite?")
	assert.NoError(t, err)
	assert.False(t, ok)
}
