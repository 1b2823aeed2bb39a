package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tosih/a2l-calreader/pkg/config"
	"github.com/tosih/a2l-calreader/pkg/image"
	"github.com/tosih/a2l-calreader/pkg/log"
	"github.com/tosih/a2l-calreader/pkg/symbols"
)

const (
	ConfigOptionName   = "config"
	LogLevelOptionName = "log-level"
	ImageOptionName    = "image"
	SymbolsOptionName  = "symbols"
	BaseOptionName     = "base"
	EncodingOptionName = "encoding"
	FilterOptionName   = "filter"
	JSONOptionName     = "json"
)

// environment is filled in before any subcommand runs
type environment struct {
	Config *config.Config
	Logger *zap.Logger
}

func NewRootCommand(out io.Writer) *cobra.Command {
	var configPath, logLevel string
	env := &environment{Config: config.NewDefaultConfig(), Logger: zap.NewNop()}
	cmd := &cobra.Command{
		Use:          "calreader",
		Short:        "Tool to decode ECU calibration parameters from memory images",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				env.Config.SetPath(configPath)
			}
			if err := env.Config.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("config %s: %w", env.Config.Path(), err)
			}
			if logLevel != "" {
				env.Config.LogLevel = logLevel
			}
			logger, err := log.New(cmd.ErrOrStderr(), env.Config.LogLevel)
			if err != nil {
				return err
			}
			env.Logger = logger
			return nil
		},
	}
	cmd.SetOut(out)
	cmd.AddCommand(newDecodeCommand(env))
	cmd.AddCommand(newPlanCommand(env))
	cmd.AddCommand(newEPKCommand(env))
	cmd.AddCommand(newExportCommand(env))
	cmd.AddCommand(newCompareCommand(env))
	cmd.AddCommand(newServeCommand(env))
	cmd.AddCommand(newUploadCommand(env))
	cmd.AddCommand(newScanCommand(env))
	cmd.AddCommand(newSnapshotCommand(env))
	cmd.AddCommand(newConfigCommand(env))
	cmd.PersistentFlags().StringVar(&configPath, ConfigOptionName, "", fmt.Sprintf("Config file. Default %s", config.DefaultConfigPath()))
	cmd.PersistentFlags().StringVar(&logLevel, LogLevelOptionName, "", fmt.Sprintf("Log level. %s", log.HelpLevels))
	return cmd
}

// inputs selects a memory image and the symbol database describing it
type inputs struct {
	image    string
	symbols  string
	base     uint32
	encoding string
}

func (in *inputs) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&in.image, ImageOptionName, "", "Memory image file. Default from config")
	cmd.Flags().StringVar(&in.symbols, SymbolsOptionName, "", "Symbol database file. Default from config")
	cmd.Flags().Uint32Var(&in.base, BaseOptionName, 0, "Address of the first image byte. Default from config")
	cmd.Flags().StringVar(&in.encoding, EncodingOptionName, "", fmt.Sprintf("ASCII encoding. Default %s", config.DefaultEncoding))
}

func (in *inputs) resolve(cmd *cobra.Command, cfg *config.Config) {
	if in.image == "" && cfg.Image != nil {
		in.image = cfg.Image.Path
	}
	if in.symbols == "" {
		in.symbols = cfg.SymbolsPath
	}
	if !cmd.Flags().Changed(BaseOptionName) && cfg.Image != nil {
		in.base = cfg.Image.BaseAddress
	}
	if in.encoding == "" {
		in.encoding = cfg.Encoding
	}
}

func (in *inputs) model(cmd *cobra.Command, env *environment) (*symbols.Model, error) {
	in.resolve(cmd, env.Config)
	if in.symbols == "" {
		return nil, fmt.Errorf("no symbol database, use --%s", SymbolsOptionName)
	}
	model, err := symbols.Load(in.symbols)
	if err != nil {
		return nil, err
	}
	env.Logger.Debug("symbols loaded", zap.String("path", in.symbols), zap.Int("objects", model.Len()))
	return model, nil
}

func (in *inputs) load(cmd *cobra.Command, env *environment) (*symbols.Model, *image.Image, error) {
	model, err := in.model(cmd, env)
	if err != nil {
		return nil, nil, err
	}
	if in.image == "" {
		return nil, nil, fmt.Errorf("no memory image, use --%s", ImageOptionName)
	}
	img, err := image.LoadFile(in.image, in.base, image.WithEncoding(in.encoding))
	if err != nil {
		return nil, nil, err
	}
	env.Logger.Debug("image loaded", zap.String("path", in.image), zap.Int("bytes", img.Size()))
	return model, img, nil
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// commandContext is the context of cmd, background when executed without one
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
