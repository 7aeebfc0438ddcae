package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/promptdeck/promptdeck/backend/internal/infrastructure/config"
	"github.com/promptdeck/promptdeck/backend/internal/infrastructure/server"
)

func main() {
	port := flag.String("port", "", "listen port (overrides PORT)")
	host := flag.String("host", "", "bind address (overrides HOST)")
	dev := flag.Bool("dev", false, "console logs at debug level")
	flag.Parse()

	// Flags win over the config file and the environment.
	cfg := config.LoadOrDefault()
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		log.Println("shutting down")
		if err := srv.Close(); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	case err := <-errChan:
		log.Fatalf("server error: %v", err)
	}
}
