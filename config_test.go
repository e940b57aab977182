package rqlconform

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaultsWhenMissing(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "localhost", config.Host)
	assert.Equal(t, 30*time.Second, config.Connect.Timeout)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rqlconform.yaml")

	data := []byte("host: testhost\ncorpus_dir: ./cases\nconnect:\n  timeout: 5s\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "testhost", config.Host)
	assert.Equal(t, "./cases", config.CorpusDir)
	assert.Equal(t, 5*time.Second, config.Connect.Timeout)
}

func TestLoadConfigRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rqlconform.yaml")

	require.NoError(t, os.WriteFile(path, []byte("host: x\nbogus: true\n"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigExpandsEnvVars(t *testing.T) {
	t.Setenv("RQLCONFORM_TEST_HOST", "from-env")

	dir := t.TempDir()
	path := filepath.Join(dir, "rqlconform.yaml")

	require.NoError(t, os.WriteFile(path, []byte("host: ${RQLCONFORM_TEST_HOST}\n"), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", config.Host)
}
