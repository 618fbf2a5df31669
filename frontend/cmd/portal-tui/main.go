package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/tbs-portal/portal/frontend/internal/apiclient"
	"github.com/tbs-portal/portal/frontend/internal/markdown"
	"github.com/tbs-portal/portal/frontend/internal/service"
	"github.com/tbs-portal/portal/frontend/internal/tui"
	"github.com/tbs-portal/portal/shared/config"
	"github.com/tbs-portal/portal/shared/logger"
	"github.com/tbs-portal/portal/shared/validation"
)

func main() {
	var configFolder, logPath string
	flag.StringVar(&configFolder, "config_folder", "config", "path to folder with configs")
	flag.StringVar(&logPath, "log", "portal-tui.log", "file to write logs to")
	flag.Parse()

	if err := run(configFolder, logPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configFolder, logPath string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read .env: %w", err)
	}

	public, err := config.LoadPublic(configFolder)
	if err != nil {
		return err
	}

	// The terminal belongs to the UI; logs go to a file.
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	logger.InitializeTo(logFile, public.LogLevel, public.LogJSON)

	rules := validation.Rules{EmailDomains: public.AllowedEmailDomains}
	client := apiclient.New(public.APIBaseURL, public.RequestTimeout)
	auth := service.NewAuth(client, validation.NewValidator(rules), markdown.New().PlainText, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	model := tui.New(ctx, auth, tui.Options{
		Rules:            rules,
		ModalCloseDelay:  public.ModalCloseDelay,
		ResetReturnDelay: public.ResetReturnDelay,
		NotificationTTL:  public.NotificationTTL,
	})

	logger.Log.Info("starting terminal portal", "api", public.APIBaseURL)
	_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
