package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dfarias/goauction/server"
)

func main() {
	var (
		port       string
		verbose    bool
		database   string
		configFile string
	)

	cmd := &cobra.Command{
		Use:   "auctiond",
		Short: "Auction service server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			// .env values feed the same knobs as the config file; flags win.
			godotenv.Load()

			cfg := server.DefaultConfig()
			if envPort := os.Getenv("AUCTIOND_PORT"); envPort != "" {
				cfg.Port = envPort
			}
			if envDB := os.Getenv("AUCTIOND_DATABASE"); envDB != "" {
				cfg.Database = envDB
			}
			if configFile != "" {
				loaded, err := server.LoadConfig(configFile, cfg)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("database") {
				cfg.Database = database
			}
			if cmd.Flags().Changed("verbose") {
				cfg.Verbose = verbose
			}

			if cfg.Verbose {
				log.SetLevel(log.InfoLevel)
			} else {
				log.SetLevel(log.WarnLevel)
			}

			srv, err := server.New(cfg)
			if err != nil {
				return err
			}

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-quit
				srv.Shutdown()
			}()

			return srv.Run()
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", server.DefaultPort, "port to listen on")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable [LOG] diagnostics")
	cmd.Flags().StringVarP(&database, "database", "d", server.DefaultDatabase, "state tree root")
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "INI config file")

	if err := cmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
