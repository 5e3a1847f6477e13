package plugin

import (
	"log/slog"

	"github.com/wilbur182/pagegen/internal/config"
)

// Context provides shared resources to plugins during initialization.
type Context struct {
	WorkDir    string // directory relative config paths are resolved against
	ConfigPath string
	Config     *config.Config
	Logger     *slog.Logger
}
