package main

import (
	"github.com/spf13/cobra"

	"github.com/williampepple1/trip-extractor/internal/config"
	tio "github.com/williampepple1/trip-extractor/internal/io"
	"github.com/williampepple1/trip-extractor/internal/logger"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

// app carries what every command needs once flags are parsed
type app struct {
	configFile string
	storeFile  string
	debug      bool

	cfg *config.AppConfig
	log logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "tripextract",
		Short:         "Extract upcoming hotel reservations from a signed-in reservations page",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "Path to configuration file (YAML)")
	root.PersistentFlags().StringVar(&a.storeFile, "store", "", "Reservation store file (overrides io.store_file)")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Log debug events to the console")

	root.AddCommand(newExtractCmd(a))
	root.AddCommand(newParseCmd(a))
	root.AddCommand(newShowCmd(a))
	root.AddCommand(newExportCmd(a))
	root.AddCommand(newClearCmd(a))
	root.AddCommand(newVersionCmd())

	return root
}

// init loads .env files, the config file and env overrides, then applies flags
func (a *app) init() error {
	if err := config.LoadEnvFiles(); err != nil {
		return err
	}

	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	if a.storeFile != "" {
		cfg.IO.StoreFile = a.storeFile
	}
	if a.debug {
		cfg.Logging.Level = "debug"
		cfg.Logging.Development = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log
	return nil
}

func (a *app) store() *tio.FileStore {
	return tio.NewFileStore(a.cfg.IO.StoreFile)
}
