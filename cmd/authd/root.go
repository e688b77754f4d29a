package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"authd/internal/config"
	"authd/internal/logging"
	"authd/internal/store"
	"authd/internal/store/memstore"
	"authd/internal/store/mongostore"
)

// globalFlags are shared by every subcommand and override file and env values.
type globalFlags struct {
	configPath string
	mongoURI   string
	mongoDB    string
	env        string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "authd",
		Short:         "Minimal authentication backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "Config file (.yaml|.yml|.json|.toml); defaults to ./authd.yaml if present")
	pf.StringVar(&g.mongoURI, "mongo-uri", "", "MongoDB connection string (defaults MONGO_URI)")
	pf.StringVar(&g.mongoDB, "mongo-db", "", "Database name (defaults MONGO_DB or authdb)")
	pf.StringVar(&g.env, "env", "", "Environment: development|production (defaults AUTHD_ENV or NODE_ENV)")
	pf.StringVar(&g.logLevel, "log-level", "", "Log level: debug|info|warn|error|off (defaults AUTHD_LOG_LEVEL or info)")
	pf.StringVar(&g.logFormat, "log-format", "", "Log format: json|console")

	root.AddCommand(newServeCmd(g), newSeedCmd(g), newCheckCmd(g))
	return root
}

// load resolves configuration: file, then environment, then flags, then defaults.
func (g *globalFlags) load(cmd *cobra.Command) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if g.configPath != "" {
		cfg, err = config.Load(g.configPath)
	} else {
		cfg, _, err = config.Discover()
	}
	if err != nil {
		return cfg, err
	}
	cfg = config.FromEnv(cfg)
	flags := cmd.Flags()
	if flags.Changed("mongo-uri") {
		cfg.MongoURI = g.mongoURI
	}
	if flags.Changed("mongo-db") {
		cfg.MongoDB = g.mongoDB
	}
	if flags.Changed("env") {
		cfg.Env = g.env
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = g.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = g.logFormat
	}
	return cfg.WithDefaults(), nil
}

func (g *globalFlags) logger(cmd *cobra.Command, cfg config.Config) (zerolog.Logger, error) {
	return logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
}

// memoryStore backs every memory:// target in this process.
var memoryStore = memstore.New()

func dialerFor(target string) store.Dialer {
	if memstore.IsTarget(target) {
		return memstore.NewDialer(memoryStore)
	}
	return mongostore.NewDialer()
}
