// Package main implements the entry point for the synthesis API server,
// which exposes long-running audio synthesis through an asynchronous job
// model: submit a task, poll for status and result.
package main

import (
	"log"
)

func main() {
	app, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
