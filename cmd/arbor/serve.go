package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/arbor"
	httpadapter "github.com/aretw0/arbor/internal/adapters/http"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	redisadapter "github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the journey over a JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		addr, _ := cmd.Flags().GetString("addr")
		redisAddr, _ := cmd.Flags().GetString("redis")

		logger := logging.New(slog.LevelInfo)
		metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

		wizard, err := arbor.NewFromFile(file,
			arbor.WithLogger(logger),
			arbor.WithMetrics(metrics),
		)
		if err != nil {
			return err
		}

		var store ports.JourneyStore = memory.NewStore()
		sessionOpts := []session.Option{session.WithLogger(logger)}
		if redisAddr != "" {
			client := backend.NewClient(&backend.Options{Addr: redisAddr})
			store = redisadapter.NewFromClient(client, redisadapter.WithTTL(24*time.Hour))
			sessionOpts = append(sessionOpts, session.WithLocker(redisadapter.NewLocker(client, "arbor:")))
		}
		sessions := session.NewManager(store, sessionOpts...)

		handler := httpadapter.NewHandler(wizard, sessions, httpadapter.WithMetrics(metrics))
		logger.Info("serving journey", "name", wizard.Name, "addr", addr)
		fmt.Printf("Listening on %s\n", addr)
		return http.ListenAndServe(addr, handler)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "Listen address")
	serveCmd.Flags().String("redis", "", "Redis address for journey persistence (empty = in-memory)")
	rootCmd.AddCommand(serveCmd)
}
