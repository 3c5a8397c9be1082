package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dfarias/goauction/client"
)

func main() {
	var (
		hostname string
		port     string
	)

	cmd := &cobra.Command{
		Use:   "auctionc",
		Short: "Auction service interactive client",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			c, err := client.New(hostname, port)
			if err != nil {
				return err
			}
			defer c.Close()
			return c.Run()
		},
	}

	cmd.Flags().StringVarP(&hostname, "hostname", "n", client.DefaultHostname, "server hostname")
	cmd.Flags().StringVarP(&port, "port", "p", client.DefaultPort, "server port")

	if err := cmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
