package config

import (
	"os"

	"github.com/joho/godotenv"
)

// EnvFileName is the default environment file read at startup
const EnvFileName = ".env"

// LoadDotEnv loads variables from path if it exists. Variables already set in the
// process environment win over the file.
func LoadDotEnv(path string) error {
	if path == "" {
		path = EnvFileName
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}
