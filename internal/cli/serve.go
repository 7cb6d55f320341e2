package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/VitaminP8/postery-admin/internal/seed"
	"github.com/VitaminP8/postery-admin/internal/telemetry"
)

const (
	addrFlag     = "addr"
	seedFlag     = "seed"
	shutdownWait = 10 * time.Second
)

var serveFlags = map[string]cobraflags.Flag{
	addrFlag: &cobraflags.StringFlag{
		Name:  addrFlag,
		Value: "",
		Usage: "Адрес HTTP сервера (по умолчанию HTTP_ADDR)",
	},
}

func newServeCommand() *cobra.Command {
	var withSeed bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the admin HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd, withSeed)
		},
	}
	cobraflags.RegisterMap(cmd, serveFlags)
	cmd.Flags().BoolVar(&withSeed, seedFlag, false, "Заполнить хранилище тестовыми данными перед запуском")
	return withStorage(cmd)
}

func serve(cmd *cobra.Command, withSeed bool) error {
	ctx := cmd.Context()
	rt, err := bootstrap(cmd, true, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	shutdownTracing, err := telemetry.Setup(ctx, rt.cfg)
	if err != nil {
		return fmt.Errorf("could not set up tracing: %w", err)
	}

	if withSeed {
		s := seed.New(rt.app.Stores.Users, rt.app.Stores.Posts, rt.app.Stores.Comments, rt.app.Locations)
		if _, err := s.Run(ctx, seed.Config{}); err != nil {
			return err
		}
	}

	addr := serveFlags[addrFlag].GetString()
	if addr == "" {
		addr = rt.cfg.HTTPAddr
	}
	if rt.cfg.JWTSecret == "" {
		log.Println("JWT_SECRET не задан: все запросы анонимные")
	}

	// HTTP сервер
	server := &http.Server{
		Addr:              addr,
		Handler:           rt.app.Resolver(rt.media.Fs(), rt.cfg.JWTSecret).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ListenAndServe блокирует до Shutdown, поэтому в goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Сервер запущен на %s", addr)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Ожидание SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("ошибка сервера: %w", err)
		}
	}

	log.Println("Завершение...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWait)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ошибка при завершении сервера: %w", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Printf("could not flush traces: %v", err)
	}

	log.Println("Сервер остановлен корректно")
	return nil
}
