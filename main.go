package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/cogflow/linear-engine/internal/cli"
)

func main() {
	// A missing .env is fine; the environment may carry the key already.
	_ = godotenv.Load()

	os.Exit(cli.Execute())
}
