package main

import (
	"flag"
	"log"
	"os"
	"strconv"

	"github.com/df07/go-sphere-tracer/web/server"
	"github.com/joho/godotenv"
)

func main() {
	// Missing .env files are fine
	_ = godotenv.Load()

	defaultPort := 8080
	if v, err := strconv.Atoi(os.Getenv("PORT")); err == nil {
		defaultPort = v
	}

	// Parse command line flags
	port := flag.Int("port", defaultPort, "Port to serve on")
	scenesDir := flag.String("scenes", "scenes", "Directory of JSON scene files")
	flag.Parse()

	// Create and start web server
	webServer := server.NewServer(*port, *scenesDir)

	log.Printf("Sphere Tracer Web Server")
	log.Printf("Try http://localhost:%d/api/render?scene=simple", *port)

	if err := webServer.Start(); err != nil {
		log.Printf("Error starting server: %v", err)
		os.Exit(1)
	}
}
