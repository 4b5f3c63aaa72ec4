package config

import "github.com/joho/godotenv"

// LoadDotEnv reads a .env file into the process environment.
// Variables already set in the environment take precedence.
// A missing file returns an error the caller may ignore.
func LoadDotEnv(paths ...string) error {
	return godotenv.Load(paths...)
}
