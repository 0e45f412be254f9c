package config

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/pelletier/go-toml"
	"github.com/spf13/cobra"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

// cmdZero returns a command without the --config flag. GetConfig will search
// the local directory (and parent directories) for a config file.
func cmdZero() *cobra.Command {
	return &cobra.Command{}
}

// cmdWithConfig creates a command that has the --config flag set to the given filename
func cmdWithConfig(t *testing.T, filename string) *cobra.Command {
	cmd := cmdZero()
	AddConfigFlag(cmd)
	assert.NilError(t, cmd.PersistentFlags().Set(flagForConfigFile, filename))
	return cmd
}

func makeConfigAtPath(t *testing.T, path, serverGroup string) {
	file, err := os.Create(path)
	assert.NilError(t, err)
	defer file.Close()

	data := map[string]any{
		"mmc": map[string]any{
			"api_url":      "http://mmc.local:8585/mmc-console-3.8.0/api",
			"username":     "admin",
			"server_group": serverGroup,
		},
		"app": map[string]any{
			"name":       "orders",
			"final_name": "orders-1.0.0",
			"output_dir": "target",
		},
	}
	assert.NilError(t, toml.NewEncoder(file).Encode(data))
}

func makeConfigAtTemp(t *testing.T, serverGroup string) string {
	path := filepath.Join(t.TempDir(), "config.toml")
	makeConfigAtPath(t, path, serverGroup)
	return path
}

// makeTempDir cds into a fresh directory for the duration of the test.
func makeTempDir(t *testing.T) string {
	tempdir := t.TempDir()

	currDir, err := os.Getwd()
	assert.NilError(t, err)
	t.Cleanup(func() {
		assert.NilError(t, os.Chdir(currDir))
	})
	assert.NilError(t, os.Chdir(tempdir))
	return tempdir
}

// clearEnv blanks every MMC_* variable so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	for _, env := range []string{
		ConfigFileEnvVariable, EnvAPIURL, EnvUsername, EnvPassword,
		EnvServerGroup, EnvAppName, EnvAppVersion,
	} {
		t.Setenv(env, "")
	}
}

func TestCanLoadConfigWithFilename(t *testing.T) {
	clearEnv(t)
	file := makeConfigAtTemp(t, "alpha")

	cfg, err := GetConfig(cmdWithConfig(t, file))
	assert.NilError(t, err)
	assert.Equal(t, "alpha", cfg.MMC.ServerGroup)
	assert.Equal(t, "admin", cfg.MMC.Username)
	assert.Equal(t, "orders-1.0.0", cfg.App.FinalName)
	assert.Equal(t, file, cfg.Source)
}

func TestCanLoadConfigWithEnvVariable(t *testing.T) {
	clearEnv(t)
	file := makeConfigAtTemp(t, "alpha")
	t.Setenv(ConfigFileEnvVariable, file)

	cfg, err := GetConfig(cmdZero())
	assert.NilError(t, err)
	assert.Equal(t, "alpha", cfg.MMC.ServerGroup)
}

func TestConfigPreference(t *testing.T) {
	clearEnv(t)
	fileConfig := makeConfigAtTemp(t, "alpha")
	envConfig := makeConfigAtTemp(t, "beta")
	t.Setenv(ConfigFileEnvVariable, envConfig)

	cfg, err := GetConfig(cmdWithConfig(t, fileConfig))
	assert.NilError(t, err)
	assert.Equal(t, "alpha", cfg.MMC.ServerGroup)
}

func TestConfigFromLocalFile(t *testing.T) {
	clearEnv(t)
	tempdir := makeTempDir(t)
	makeConfigAtPath(t, filepath.Join(tempdir, ConfigFilename), "alpha")

	cfg, err := GetConfig(cmdZero())
	assert.NilError(t, err)
	assert.Equal(t, "alpha", cfg.MMC.ServerGroup)
}

func TestConfigFromParentDirectory(t *testing.T) {
	clearEnv(t)
	tempdir := makeTempDir(t)
	makeConfigAtPath(t, filepath.Join(tempdir, ConfigFilename), "alpha")

	child := filepath.Join(tempdir, "src", "main")
	assert.NilError(t, os.MkdirAll(child, 0755))
	assert.NilError(t, os.Chdir(child))

	cfg, err := GetConfig(cmdZero())
	assert.NilError(t, err)
	assert.Equal(t, "alpha", cfg.MMC.ServerGroup)
}

func TestRelativePathsResolveAgainstConfigDirectory(t *testing.T) {
	clearEnv(t)
	tempdir := makeTempDir(t)
	makeConfigAtPath(t, filepath.Join(tempdir, ConfigFilename), "alpha")

	child := filepath.Join(tempdir, "src", "main")
	assert.NilError(t, os.MkdirAll(child, 0755))
	assert.NilError(t, os.Chdir(child))

	cfg, err := GetConfig(cmdZero())
	assert.NilError(t, err)

	root, err := filepath.EvalSymlinks(tempdir)
	assert.NilError(t, err)
	assert.Equal(t, filepath.Join(root, "target"), cfg.App.OutputDir)
	assert.Equal(t, filepath.Join(root, "lib"), cfg.ResolvePath("lib"))
	assert.Equal(t, "orders-1.0.0", cfg.App.FinalName)
}

func TestAbsolutePathsAreKept(t *testing.T) {
	clearEnv(t)
	abs := filepath.Join(t.TempDir(), "build")
	file := filepath.Join(t.TempDir(), "config.toml")
	contents := "[app]\noutput_dir = " + strconv.Quote(filepath.ToSlash(abs)) + "\n"
	assert.NilError(t, os.WriteFile(file, []byte(contents), 0600))

	cfg, err := GetConfig(cmdWithConfig(t, file))
	assert.NilError(t, err)
	assert.Equal(t, filepath.ToSlash(abs), filepath.ToSlash(cfg.App.OutputDir))
	assert.Equal(t, "", cfg.App.AppDir)
}

func TestResolvePathWithoutConfigFile(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, "src/main/app", cfg.ResolvePath("src/main/app"))
}

func TestMissingLocalConfigIsNotAnError(t *testing.T) {
	clearEnv(t)
	makeTempDir(t)

	cfg, err := GetConfig(cmdZero())
	assert.NilError(t, err)
	assert.Equal(t, "", cfg.Source)
	assert.Equal(t, "", cfg.MMC.ServerGroup)
}

func TestExplicitMissingConfigFails(t *testing.T) {
	clearEnv(t)
	missing := filepath.Join(t.TempDir(), "missing.toml")

	_, err := GetConfig(cmdWithConfig(t, missing))
	assert.ErrorContains(t, err, "failed to open config file")
}

func TestEmptyConfigFlagFails(t *testing.T) {
	clearEnv(t)

	_, err := GetConfig(cmdWithConfig(t, ""))
	assert.ErrorIs(t, err, ErrEmptyConfigFlag)
}

func TestInvalidTomlFails(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.toml")
	assert.NilError(t, os.WriteFile(path, []byte("[mmc\napi_url = "), 0600))

	_, err := GetConfig(cmdWithConfig(t, path))
	assert.ErrorContains(t, err, "failed to decode config file")
}

func TestEnvironmentOverridesFile(t *testing.T) {
	clearEnv(t)
	file := makeConfigAtTemp(t, "alpha")
	t.Setenv(EnvServerGroup, "from-env")
	t.Setenv(EnvPassword, "secret")
	t.Setenv(EnvAppVersion, "2.0.0-SNAPSHOT")

	cfg, err := GetConfig(cmdWithConfig(t, file))
	assert.NilError(t, err)
	assert.Equal(t, "from-env", cfg.MMC.ServerGroup)
	assert.Equal(t, "secret", cfg.MMC.Password)
	assert.Equal(t, "2.0.0-SNAPSHOT", cfg.App.Version)
	assert.Equal(t, "admin", cfg.MMC.Username)
}

func TestDotEnvIsLoaded(t *testing.T) {
	clearEnv(t)
	tempdir := makeTempDir(t)
	assert.NilError(t, os.WriteFile(
		filepath.Join(tempdir, DotEnvFilename),
		[]byte("MMC_USERNAME=dotenv-user\nMMC_API_URL=http://dotenv:8585/api\n"),
		0600,
	))
	// godotenv.Load only fills unset variables, t.Setenv("") above counts as set.
	assert.NilError(t, os.Unsetenv(EnvUsername))
	assert.NilError(t, os.Unsetenv(EnvAPIURL))
	t.Cleanup(func() {
		os.Unsetenv(EnvUsername)
		os.Unsetenv(EnvAPIURL)
	})

	cfg, err := GetConfig(cmdZero())
	assert.NilError(t, err)
	assert.Equal(t, "dotenv-user", cfg.MMC.Username)
	assert.Check(t, is.Equal("http://dotenv:8585/api", cfg.MMC.APIURL))
}
