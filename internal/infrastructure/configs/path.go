package configs

import (
	"flag"
	"os"

	"github.com/quizdefense/quizdefense/internal/infrastructure/env"
)

// DetermineConfigPath resolves the config file location from the --config
// flag, the QUIZDEF_CONFIG env var, or a well-known candidate list. An empty
// result means built-in defaults only.
func DetermineConfigPath() string {
	var configPath string

	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	if configPath == "" {
		configPath = env.GetString("QUIZDEF_CONFIG", "")
	}

	if configPath == "" {
		candidates := []string{
			"./config.yaml",
			"./config.yml",
			"../../config.yaml", // keep for local dev
			"/etc/quizdefense/config.yaml",
			"/app/config.yaml", // common in Docker
		}

		for _, p := range candidates {
			if _, err := os.Stat(p); err == nil {
				configPath = p
				break
			}
		}
	}

	return configPath
}
