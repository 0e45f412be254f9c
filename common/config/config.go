package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/mule-tools/mmc-deploy/common/logger"
)

const (
	ConfigFileEnvVariable = "MMC_DEPLOY_CONFIG_FILE"
	ConfigFilename        = "mmc.toml"
	DotEnvFilename        = ".env"

	EnvAPIURL      = "MMC_API_URL"
	EnvUsername    = "MMC_USERNAME"
	EnvPassword    = "MMC_PASSWORD"
	EnvServerGroup = "MMC_SERVER_GROUP"
	EnvAppName     = "MMC_APP_NAME"
	EnvAppVersion  = "MMC_APP_VERSION"

	flagForConfigFile = "config"
)

var ErrEmptyConfigFlag = eris.New("config cannot be empty")

// Config holds deployment settings gathered from the config file and the
// environment. Flags are layered on top by the command.
type Config struct {
	MMC MMCConfig `toml:"mmc"`
	App AppConfig `toml:"app"`

	// Source is the file the config was read from, empty when none was found.
	Source string `toml:"-"`
	// RootDir is the directory of Source. Relative paths in the file are
	// resolved against it.
	RootDir string `toml:"-"`
}

type MMCConfig struct {
	APIURL      string `toml:"api_url"`
	Username    string `toml:"username"`
	Password    string `toml:"password"`
	ServerGroup string `toml:"server_group"`
}

type AppConfig struct {
	Name      string `toml:"name"`
	Version   string `toml:"version"`
	OutputDir string `toml:"output_dir"`
	FinalName string `toml:"final_name"`
	AppDir    string `toml:"app_dir"`
}

func AddConfigFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().String(flagForConfigFile, "", "a toml encoded config file")
}

// GetConfig loads the config file and overlays MMC_* environment variables.
// A config file named by --config or MMC_DEPLOY_CONFIG_FILE must exist; a
// missing mmc.toml in the working tree is not an error.
func GetConfig(cmd *cobra.Command) (*Config, error) {
	loadDotEnv()

	var (
		cfg *Config
		err error
	)
	flag := cmd.Flag(flagForConfigFile)
	if flag != nil && flag.Changed {
		// The config flag was explicitly set
		configFile := flag.Value.String()
		if configFile == "" {
			return nil, ErrEmptyConfigFlag
		}
		cfg, err = loadConfigFromFile(configFile)
	} else {
		cfg, err = loadConfig()
	}
	if err != nil {
		return nil, err
	}

	applyEnv(cfg)
	return cfg, nil
}

func loadConfig() (*Config, error) {
	// Was the file set as an environment variable
	if filename := os.Getenv(ConfigFileEnvVariable); filename != "" {
		return loadConfigFromFile(filename)
	}
	// Is there a config in this directory or one of its parents?
	currDir, err := os.Getwd()
	if err != nil {
		return nil, eris.Wrap(err, "failed to get working directory")
	}

	for {
		filename := filepath.Join(currDir, ConfigFilename)
		cfg, err := loadConfigFromFile(filename)
		if err == nil {
			return cfg, nil
		}
		if !os.IsNotExist(eris.Cause(err)) {
			return nil, err
		}
		parent := filepath.Dir(currDir)
		if parent == currDir {
			break
		}
		currDir = parent
	}

	logger.Debugf("no %s found, using flags and environment only", ConfigFilename)
	return &Config{}, nil
}

func loadConfigFromFile(filename string) (*Config, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to open config file %q", filename)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, eris.Wrapf(err, "failed to decode config file %q", filename)
	}
	cfg.Source = filename
	cfg.RootDir, _ = filepath.Split(filename)
	cfg.App.OutputDir = cfg.ResolvePath(cfg.App.OutputDir)
	cfg.App.AppDir = cfg.ResolvePath(cfg.App.AppDir)

	logger.Debugf("successfully loaded config from %q", filename)

	return &cfg, nil
}

// ResolvePath makes a relative path relative to the config file's directory.
// Absolute paths, empty paths and configs without a file are returned as is.
func (c *Config) ResolvePath(path string) string {
	if path == "" || c.RootDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.RootDir, path)
}

// loadDotEnv reads .env from the working directory. Variables already set in
// the environment win.
func loadDotEnv() {
	if _, err := os.Stat(DotEnvFilename); err != nil {
		return
	}
	if err := godotenv.Load(DotEnvFilename); err != nil {
		logger.Warnf("failed to load %s: %s", DotEnvFilename, err)
	}
}

func applyEnv(cfg *Config) {
	overrides := []struct {
		env    string
		target *string
	}{
		{EnvAPIURL, &cfg.MMC.APIURL},
		{EnvUsername, &cfg.MMC.Username},
		{EnvPassword, &cfg.MMC.Password},
		{EnvServerGroup, &cfg.MMC.ServerGroup},
		{EnvAppName, &cfg.App.Name},
		{EnvAppVersion, &cfg.App.Version},
	}
	for _, o := range overrides {
		if val, ok := os.LookupEnv(o.env); ok && val != "" {
			*o.target = val
		}
	}
}
