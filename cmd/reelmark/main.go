package main

import (
	"log"

	"github.com/MrSnakeDoc/reelmark/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("❌ reelmark failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ reelmark failed: %v", err)
	}
}
