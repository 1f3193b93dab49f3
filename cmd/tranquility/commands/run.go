package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/nohmar/tranquility/src/net"
	"github.com/nohmar/tranquility/src/node"
	"github.com/nohmar/tranquility/src/peers"
	"github.com/nohmar/tranquility/src/service"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRunCmd returns the command that starts a tranquility node
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Run node",
		PreRunE: loadConfig,
		RunE:    runNode,
	}
	AddRunFlags(cmd)
	return cmd
}

/*******************************************************************************
* RUN
*******************************************************************************/

func runNode(cmd *cobra.Command, args []string) error {
	logger := _config.Logger()

	// An optional peers.json in the datadir seeds the neighbor list before
	// any topology message arrives.
	var seed *peers.PeerSet
	store := peers.NewJSONPeerSet(_config.DataDir)
	if ps, err := store.PeerSet(); err == nil {
		logger.WithField("neighbors", ps.IDs()).Debug("Seeding topology from peers.json")
		seed = ps
	}

	trans := net.NewStreamTransport(os.Stdin, os.Stdout, logrus.NewEntry(logger))

	conf := node.NewConfig(_config.RetryTimeout, logger)
	n := node.NewNode(conf, trans, seed)

	if !_config.NoService {
		serviceServer := service.NewService(_config.ServiceAddr, n, logrus.NewEntry(logger))
		go serviceServer.Serve()
	}

	// A SIGINT drains in-flight retry loops before exiting.
	sigintCh := make(chan os.Signal, 1)
	signal.Notify(sigintCh, os.Interrupt, syscall.SIGINT)
	go func() {
		<-sigintCh
		logger.Debug("Reacting to SIGINT")
		n.Shutdown()
		os.Exit(0)
	}()

	n.Run()
	n.Shutdown()

	return nil
}

/*******************************************************************************
* CONFIG
*******************************************************************************/

// AddRunFlags adds flags to the Run command
func AddRunFlags(cmd *cobra.Command) {
	cmd.Flags().String("datadir", _config.DataDir, "Top-level directory for configuration and data")
	cmd.Flags().String("log", _config.LogLevel, "debug, info, warn, error, fatal, panic")
	cmd.Flags().String("log-file", _config.LogFile, "Copy log output to this file")

	// Service
	cmd.Flags().StringP("service-listen", "s", _config.ServiceAddr, "Listen IP:Port for HTTP service")
	cmd.Flags().Bool("no-service", _config.NoService, "Disable the HTTP service")

	// Node configuration
	cmd.Flags().DurationP("retry", "r", _config.RetryTimeout, "Interval between gossip retries")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	err := bindFlagsLoadViper(cmd)
	if err != nil {
		return err
	}

	_config.Logger().WithFields(logrus.Fields{
		"DataDir":      _config.DataDir,
		"LogLevel":     _config.LogLevel,
		"LogFile":      _config.LogFile,
		"ServiceAddr":  _config.ServiceAddr,
		"NoService":    _config.NoService,
		"RetryTimeout": _config.RetryTimeout,
	}).Debug("RUN")

	return nil
}

func bindFlagsLoadViper(cmd *cobra.Command) error {
	// Register flags with viper. Include flags from this command and all
	// other persistent flags from the parent
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// first unmarshal to read from CLI flags
	if err := viper.Unmarshal(_config); err != nil {
		return err
	}

	// look for config file in [datadir]/tranquility.toml (.json, .yaml also work)
	viper.SetConfigName("tranquility") // name of config file (without extension)
	viper.AddConfigPath(_config.DataDir)

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		_config.Logger().Debugf("Using config file: %s", viper.ConfigFileUsed())
	} else if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		_config.Logger().Debugf("No config file found in: %s", _config.DataDir)
	} else {
		return err
	}

	// second unmarshal to read from config file
	return viper.Unmarshal(_config)
}
