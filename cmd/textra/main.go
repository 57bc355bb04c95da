package main

import (
	"os"

	"horse.fit/textra/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
