package main

import (
	"log"

	"pocket-pulse/internal/apiclient"
	"pocket-pulse/internal/config"
	"pocket-pulse/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
)

var (
	loadEnvFunc    = godotenv.Load
	loadConfigFunc = config.Load
	runProgramFunc = func(model tea.Model) error {
		_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
		return err
	}
)

// Terminal dashboard for a running bot: it polls the REST API and renders
// status, market analysis and trade history, with key bindings for the
// control actions.
func main() {
	loadEnvFunc()
	cfg := loadConfigFunc()

	client := apiclient.New(cfg.ServerURL)
	app := tui.NewAppModel(tui.Services{API: client})

	if err := runProgramFunc(app); err != nil {
		log.Fatalf("dashboard failed: %v", err)
	}
}
