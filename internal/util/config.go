package util

import (
	"errors"
	"io/fs"

	"github.com/BurntSushi/toml"
)

// DefaultConfigFile is looked for in the working directory when no
// config flag is given.
const DefaultConfigFile = "chalk.toml"

// Configuration carries everything main wires together: build info,
// interpreter limits and the trace sink. File values load from TOML;
// flags override them afterwards.
type Configuration struct {
	Version   string `toml:"-"`
	BuildDate string `toml:"-"`
	Commit    string `toml:"-"`

	RootPath     string `toml:"root"`
	MaxCallDepth int    `toml:"max-call-depth"`
	ImplicitDecl bool   `toml:"implicit-decl"`
	TraceAll     bool   `toml:"trace-all"`
	TraceDriver  string `toml:"trace-driver"`
	TraceDSN     string `toml:"trace-dsn"`
	LogLevel     string `toml:"log-level"`
	LogFile      string `toml:"log-file"`
}

// Load reads path over a copy of base and returns the result. When
// explicit is false the path is the conventional default, and a
// missing file just means "no config"; an explicitly named file has
// to exist.
func Load(base Configuration, path string, explicit bool) (Configuration, error) {
	cfg := base
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return base, nil
		}
		return base, err
	}
	return cfg, nil
}
