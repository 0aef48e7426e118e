package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/aretw0/lattice"
	httpadapter "github.com/aretw0/lattice/pkg/adapters/http"
	"github.com/aretw0/lattice/pkg/dispatch"
	"github.com/aretw0/lattice/pkg/observability"
	"github.com/aretw0/lattice/pkg/schemafile"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the schema HTTP server",
	Long: `Loads every schema file from the schema directory and exposes
validation and normalization over HTTP, with Prometheus metrics on /metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		dir, _ := cmd.Flags().GetString("schemas")
		port, _ := cmd.Flags().GetString("port")
		logger := newLogger(cmd)

		registry := httpadapter.NewRegistry()
		if err := loadSchemaDir(registry, dir); err != nil {
			fmt.Printf("Error loading schemas: %v\n", err)
			os.Exit(1)
		}

		// Dedicated dispatcher stack so the metrics hook never touches the
		// package-level defaults.
		metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
		hook := dispatch.WithHook(metrics)
		handler := httpadapter.NewHandler(registry, logger,
			httpadapter.WithDispatchers(
				lattice.NewValidate(hook),
				lattice.NewUndictify(hook),
				lattice.NewDictify(hook),
			))

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.Handle("/", handler)

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: mux,
		}

		serverErrors := make(chan error, 1)
		go func() {
			fmt.Printf("Starting Lattice Server on %s\n", srv.Addr)
			fmt.Printf("Serving %d schemas from: %s\n", len(registry.Names()), dir)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
		}
	},
}

func init() {
	serveCmd.Flags().String("port", "8080", "Port to listen on")
	serveCmd.Flags().String("schemas", ".", "Directory containing schema files")
	rootCmd.AddCommand(serveCmd)
}

// loadSchemaDir registers every .yaml/.yml file under dir by its basename.
func loadSchemaDir(registry *httpadapter.Registry, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return err
		}
		g, err := schemafile.Parse(raw)
		if err != nil {
			return fmt.Errorf("schema %s: %w", e.Name(), err)
		}
		registry.Put(strings.TrimSuffix(e.Name(), ext), g)
	}
	return nil
}
