package main

import (
	"log"

	"github.com/CoursePulse/coursepulse-go/internal/application/startup"
)

func main() {
	if err := startup.Initialize(); err != nil {
		log.Fatalf("startup failed: %v", err)
	}
}
