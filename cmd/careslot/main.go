package main

import (
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"github.com/example/careslot/internal/interfaces/cli"
)

func main() {
	// a missing .env is fine; real environment variables win
	_ = godotenv.Load()

	if err := cli.NewRoot().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
