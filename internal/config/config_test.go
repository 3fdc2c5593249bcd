package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Default Configuration Tests
// =============================================================================

func TestNewConfig_ReturnsDefaults(t *testing.T) {
	cfg := NewConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, runtime.NumCPU(), cfg.WriterThreads)
	assert.Equal(t, defaultWriterHeap, cfg.WriterHeapMB)
	assert.Nil(t, cfg.StopWords)
	assert.Equal(t, defaultQueryLimit, cfg.QueryLimit)
	assert.Equal(t, int64(defaultLockTimeout), cfg.LockTimeoutMs)
}

func TestConfig_WriterHeapBytes_ConvertsMBToBytes(t *testing.T) {
	cfg := NewConfig()
	cfg.WriterHeapMB = 64
	assert.Equal(t, uint64(64*1024*1024), cfg.WriterHeapBytes())
}

// =============================================================================
// Configuration File Loading Tests
// =============================================================================

func TestLoad_NoConfigFile_ReturnsDefaults(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, defaultQueryLimit, cfg.QueryLimit)
}

func TestLoad_YamlFile_OverridesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configContent := `
version: 1
writer_threads: 4
writer_heap_mb: 128
query_limit: 100
lock_timeout_ms: 2000
`
	err := os.WriteFile(filepath.Join(tmpDir, ".fcindex.yaml"), []byte(configContent), 0o644)
	require.NoError(t, err)

	cfg, err := Load(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, 4, cfg.WriterThreads)
	assert.Equal(t, 128, cfg.WriterHeapMB)
	assert.Equal(t, 100, cfg.QueryLimit)
	assert.Equal(t, int64(2000), cfg.LockTimeoutMs)
}

func TestLoad_YmlExtension_IsRecognized(t *testing.T) {
	tmpDir := t.TempDir()
	configContent := `
version: 1
query_limit: 77
`
	err := os.WriteFile(filepath.Join(tmpDir, ".fcindex.yml"), []byte(configContent), 0o644)
	require.NoError(t, err)

	cfg, err := Load(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, 77, cfg.QueryLimit)
}

func TestLoad_YamlPreferredOverYml(t *testing.T) {
	tmpDir := t.TempDir()
	yamlContent := "version: 1\nquery_limit: 10\n"
	ymlContent := "version: 1\nquery_limit: 20\n"
	err := os.WriteFile(filepath.Join(tmpDir, ".fcindex.yaml"), []byte(yamlContent), 0o644)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(tmpDir, ".fcindex.yml"), []byte(ymlContent), 0o644)
	require.NoError(t, err)

	cfg, err := Load(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, 10, cfg.QueryLimit)
}

func TestLoad_InvalidYaml_ReturnsError(t *testing.T) {
	tmpDir := t.TempDir()
	invalidContent := `
version: 1
writer_threads: [invalid yaml syntax
`
	err := os.WriteFile(filepath.Join(tmpDir, ".fcindex.yaml"), []byte(invalidContent), 0o644)
	require.NoError(t, err)

	cfg, err := Load(tmpDir)

	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "parse")
}

func TestLoad_InvalidFieldType_ReturnsError(t *testing.T) {
	tmpDir := t.TempDir()
	invalidContent := `
version: 1
query_limit: "not-a-number"
`
	err := os.WriteFile(filepath.Join(tmpDir, ".fcindex.yaml"), []byte(invalidContent), 0o644)
	require.NoError(t, err)

	cfg, err := Load(tmpDir)

	require.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_StopWordsFromYaml(t *testing.T) {
	tmpDir := t.TempDir()
	configContent := `
version: 1
stop_words: ["the", "a", "an"]
`
	err := os.WriteFile(filepath.Join(tmpDir, ".fcindex.yaml"), []byte(configContent), 0o644)
	require.NoError(t, err)

	cfg, err := Load(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, []string{"the", "a", "an"}, cfg.StopWords)
}

// =============================================================================
// Project Root Detection Tests
// =============================================================================

func TestFindProjectRoot_GitDirectory_ReturnsGitRoot(t *testing.T) {
	tmpDir := t.TempDir()
	gitDir := filepath.Join(tmpDir, ".git")
	nestedDir := filepath.Join(tmpDir, "src", "internal")
	require.NoError(t, os.Mkdir(gitDir, 0o755))
	require.NoError(t, os.MkdirAll(nestedDir, 0o755))

	root, err := FindProjectRoot(nestedDir)

	require.NoError(t, err)
	assert.Equal(t, tmpDir, root)
}

func TestFindProjectRoot_ConfigFile_ReturnsConfigLocation(t *testing.T) {
	tmpDir := t.TempDir()
	nestedDir := filepath.Join(tmpDir, "src", "internal")
	require.NoError(t, os.MkdirAll(nestedDir, 0o755))
	err := os.WriteFile(filepath.Join(tmpDir, ".fcindex.yaml"), []byte("version: 1"), 0o644)
	require.NoError(t, err)

	root, err := FindProjectRoot(nestedDir)

	require.NoError(t, err)
	assert.Equal(t, tmpDir, root)
}

func TestFindProjectRoot_NoMarkers_ReturnsCurrentDir(t *testing.T) {
	tmpDir := t.TempDir()

	root, err := FindProjectRoot(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, tmpDir, root)
}

// =============================================================================
// Environment Variable Override Tests
// =============================================================================

func TestLoad_EnvVarOverridesWriterThreads(t *testing.T) {
	tmpDir := t.TempDir()
	configContent := "version: 1\nwriter_threads: 2\n"
	err := os.WriteFile(filepath.Join(tmpDir, ".fcindex.yaml"), []byte(configContent), 0o644)
	require.NoError(t, err)
	t.Setenv("FCINDEX_WRITER_THREADS", "8")

	cfg, err := Load(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, 8, cfg.WriterThreads)
}

func TestLoad_EnvVarOverridesWriterHeap(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("FCINDEX_WRITER_HEAP_MB", "256")

	cfg, err := Load(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, 256, cfg.WriterHeapMB)
}

func TestLoad_EnvVarOverridesQueryLimit(t *testing.T) {
	tmpDir := t.TempDir()
	configContent := "version: 1\nquery_limit: 30\n"
	err := os.WriteFile(filepath.Join(tmpDir, ".fcindex.yaml"), []byte(configContent), 0o644)
	require.NoError(t, err)
	t.Setenv("FCINDEX_QUERY_LIMIT", "75")

	cfg, err := Load(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, 75, cfg.QueryLimit)
}

func TestLoad_EnvVarOverridesLockTimeout(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("FCINDEX_LOCK_TIMEOUT_MS", "9000")

	cfg, err := Load(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, int64(9000), cfg.LockTimeoutMs)
}

func TestLoad_EnvVarOverridesStopWords(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("FCINDEX_STOP_WORDS", "foo,bar,baz")

	cfg, err := Load(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, []string{"foo", "bar", "baz"}, cfg.StopWords)
}

func TestLoad_EnvVarEmptyString_DoesNotOverride(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("FCINDEX_WRITER_THREADS", "")

	cfg, err := Load(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, runtime.NumCPU(), cfg.WriterThreads)
}

// =============================================================================
// User/Global Configuration Tests
// =============================================================================

func TestGetUserConfigPath_DefaultsToXDGLocation(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")

	path := GetUserConfigPath()

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	expected := filepath.Join(home, ".config", "fcindex", "config.yaml")
	assert.Equal(t, expected, path)
}

func TestGetUserConfigPath_RespectsXDGConfigHome(t *testing.T) {
	customConfig := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", customConfig)

	path := GetUserConfigPath()

	expected := filepath.Join(customConfig, "fcindex", "config.yaml")
	assert.Equal(t, expected, path)
}

func TestGetUserConfigDir_ReturnsParentOfConfigPath(t *testing.T) {
	dir := GetUserConfigDir()
	path := GetUserConfigPath()

	assert.Equal(t, filepath.Dir(path), dir)
}

func TestUserConfigExists_ReturnsFalseWhenMissing(t *testing.T) {
	emptyDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", emptyDir)

	assert.False(t, UserConfigExists())
}

func TestUserConfigExists_ReturnsTrueWhenPresent(t *testing.T) {
	configDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configDir)
	fcindexDir := filepath.Join(configDir, "fcindex")
	require.NoError(t, os.MkdirAll(fcindexDir, 0o755))
	configPath := filepath.Join(fcindexDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("version: 1"), 0o644))

	assert.True(t, UserConfigExists())
}

func TestLoad_UserConfigOverridesDefaults(t *testing.T) {
	configDir := t.TempDir()
	projectDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configDir)

	fcindexDir := filepath.Join(configDir, "fcindex")
	require.NoError(t, os.MkdirAll(fcindexDir, 0o755))
	userConfig := "version: 1\nquery_limit: 200\n"
	require.NoError(t, os.WriteFile(filepath.Join(fcindexDir, "config.yaml"), []byte(userConfig), 0o644))

	cfg, err := Load(projectDir)

	require.NoError(t, err)
	assert.Equal(t, 200, cfg.QueryLimit)
}

func TestLoad_ProjectConfigOverridesUserConfig(t *testing.T) {
	configDir := t.TempDir()
	projectDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configDir)

	fcindexDir := filepath.Join(configDir, "fcindex")
	require.NoError(t, os.MkdirAll(fcindexDir, 0o755))
	userConfig := "version: 1\nquery_limit: 200\nwriter_threads: 2\n"
	require.NoError(t, os.WriteFile(filepath.Join(fcindexDir, "config.yaml"), []byte(userConfig), 0o644))

	projectConfig := "version: 1\nquery_limit: 10\n"
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, ".fcindex.yaml"), []byte(projectConfig), 0o644))

	cfg, err := Load(projectDir)

	require.NoError(t, err)
	assert.Equal(t, 10, cfg.QueryLimit)
	// User config's writer threads still apply since project config didn't set it.
	assert.Equal(t, 2, cfg.WriterThreads)
}

func TestLoad_EnvVarOverridesUserAndProjectConfig(t *testing.T) {
	configDir := t.TempDir()
	projectDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configDir)
	t.Setenv("FCINDEX_QUERY_LIMIT", "999")

	fcindexDir := filepath.Join(configDir, "fcindex")
	require.NoError(t, os.MkdirAll(fcindexDir, 0o755))
	userConfig := "version: 1\nquery_limit: 200\n"
	require.NoError(t, os.WriteFile(filepath.Join(fcindexDir, "config.yaml"), []byte(userConfig), 0o644))

	projectConfig := "version: 1\nquery_limit: 10\n"
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, ".fcindex.yaml"), []byte(projectConfig), 0o644))

	cfg, err := Load(projectDir)

	require.NoError(t, err)
	assert.Equal(t, 999, cfg.QueryLimit)
}

func TestLoad_InvalidUserConfig_ReturnsError(t *testing.T) {
	configDir := t.TempDir()
	projectDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configDir)

	fcindexDir := filepath.Join(configDir, "fcindex")
	require.NoError(t, os.MkdirAll(fcindexDir, 0o755))
	invalidConfig := "version: 1\nquery_limit: [invalid yaml\n"
	require.NoError(t, os.WriteFile(filepath.Join(fcindexDir, "config.yaml"), []byte(invalidConfig), 0o644))

	cfg, err := Load(projectDir)

	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "user config")
}
