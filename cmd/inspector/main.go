package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/log"

	"github.com/VoidMesh/voxelserver/cmd/inspector/models"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:6969", "Native address of the voxel server to inspect")
	logLevel := flag.String("log", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	switch *logLevel {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}

	// Always log to file when running the TUI to avoid disrupting the
	// interface.
	logFile, err := os.OpenFile("inspector.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}
	defer logFile.Close()
	log.SetOutput(logFile)

	app, err := models.New(*addr)
	if err != nil {
		log.Fatal("failed to connect", "addr", *addr, "error", err)
	}

	program := tea.NewProgram(app, tea.WithAltScreen())

	log.Info("starting voxelserver inspector", "addr", *addr)

	if _, err := program.Run(); err != nil {
		log.Fatal("error running inspector", "error", err)
	}
}
