package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lazypower/hearth/internal/cloud"
	"github.com/lazypower/hearth/internal/config"
	"github.com/lazypower/hearth/internal/keeper"
	"github.com/lazypower/hearth/internal/offline"
	"github.com/lazypower/hearth/internal/persist"
	"github.com/lazypower/hearth/internal/server"
	"github.com/lazypower/hearth/internal/store"
)

var serveConfigPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the hearth daemon",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "", "Path to a hearth.toml")
}

func runServe(cmd *cobra.Command, args []string) error {
	var cfg *config.Config
	var err error
	if serveConfigPath != "" {
		cfg, err = config.LoadFrom(serveConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	dataDir, err := config.DataDir()
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	// Resolve database path
	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return fmt.Errorf("resolve db path: %w", err)
		}
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	// Persistence chain: NVRAM region first, JSON file second,
	// compiled-in defaults when both come up empty.
	nvPath := cfg.Soul.NVRAMPath
	if nvPath == "" {
		nvPath = filepath.Join(dataDir, "soul.nv")
	}
	filePath := cfg.Soul.FilePath
	if filePath == "" {
		filePath = filepath.Join(dataDir, "soul.json")
	}
	dev, err := persist.OpenRegion(nvPath)
	if err != nil {
		return fmt.Errorf("open nvram region: %w", err)
	}
	defer dev.Close()
	chain := persist.NewChain(
		persist.NewNVStore(dev, 0),
		persist.NewFileStore(filePath),
	)

	// Cloud client; an unpaired device just runs fully offline.
	deviceID := cfg.Cloud.DeviceID
	if deviceID == "" {
		deviceID, err = config.EnsureDeviceID(dataDir)
		if err != nil {
			return fmt.Errorf("ensure device id: %w", err)
		}
	}
	cl := cloud.New(cloud.Config{
		BaseURL:  cfg.Cloud.URL,
		Token:    cfg.Cloud.Token,
		DeviceID: deviceID,
		Firmware: Version,
	})

	k := keeper.New(chain, cl, offline.NewQueue(cfg.Offline.QueueCapacity), db, keeper.Options{
		Agent:          cfg.Cloud.Agent,
		Firmware:       Version,
		HeartbeatEvery: time.Duration(cfg.Soul.HeartbeatSecs) * time.Second,
		AutosaveEvery:  time.Duration(cfg.Soul.AutosaveSecs) * time.Second,
		AutosyncEvery:  time.Duration(cfg.Soul.AutosyncMins) * time.Minute,
	})
	k.Wake()
	k.Start()
	defer k.Stop()

	srv := server.New(k, VersionString())
	addr := cfg.ListenAddr()

	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		fmt.Fprintf(os.Stderr, "hearth tending the fire on %s\n", addr)
		fmt.Fprintf(os.Stderr, "  db: %s\n", dbPath)
		fmt.Fprintf(os.Stderr, "  soul: %s\n", nvPath)
		if cl.Configured() {
			fmt.Fprintf(os.Stderr, "  village: %s\n", cfg.Cloud.URL)
		} else {
			fmt.Fprintf(os.Stderr, "  village: not paired (offline mode)\n")
		}
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-done
	fmt.Fprintln(os.Stderr, "\nbanking the fire...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return httpServer.Shutdown(ctx)
}
