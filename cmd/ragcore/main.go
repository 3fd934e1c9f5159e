package main

import (
	"github.com/joho/godotenv"

	"ragcore/internal/cli"
)

func main() {
	// Optional; API keys may come from a local .env file.
	_ = godotenv.Load()
	cli.Execute()
}
