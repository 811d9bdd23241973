// SPDX-License-Identifier: MIT

// vidora-check resolves the processing status of one asset, for use from
// upload pipelines and cron jobs. Configuration comes from the environment;
// the asset id is the single positional argument.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	vidora "github.com/vidora/vidora-go"
	"github.com/vidora/vidora-go/internal/log"
	"github.com/vidora/vidora-go/session"
)

func main() {
	timeout := flag.Duration("timeout", 30*time.Second, "overall request timeout")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	log.Configure(log.Config{Level: *logLevel})
	logger := log.WithComponent("vidora-check")

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: vidora-check [flags] <asset-id>")
		os.Exit(2)
	}
	assetID := flag.Arg(0)

	cfg := vidora.Config{
		BaseURL:       os.Getenv("VIDORA_BASE_URL"),
		Token:         os.Getenv("VIDORA_TOKEN"),
		ClientToken:   os.Getenv("VIDORA_CLIENT_TOKEN"),
		SearchUUID:    os.Getenv("VIDORA_SEARCH_UUID"),
		Username:      os.Getenv("VIDORA_USERNAME"),
		Password:      os.Getenv("VIDORA_PASSWORD"),
		ReadOnlyToken: os.Getenv("VIDORA_READONLY_TOKEN"),
		FolderID:      os.Getenv("VIDORA_FOLDER_ID"),
		ClientName:    os.Getenv("VIDORA_CLIENT_NAME"),
	}

	client, err := vidora.New(cfg, session.NewNoopStore())
	if err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	status, err := client.CheckAssetStatus(ctx, assetID)
	if err != nil {
		logger.Error().Err(err).Str("asset_id", assetID).Msg("status check failed")
		os.Exit(1)
	}

	logger.Info().Str("asset_id", assetID).Str("status", string(status)).Msg("status resolved")
	fmt.Println(status)
}
