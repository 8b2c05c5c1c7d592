package main

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/defiant-labs/ptpfs/internal/logging"
)

const (
	programName = "ptpcli"
	programDesc = "PTP (PIMA 15740:2000) device inspector and downloader"
)

// cli is the kong command-line interface struct, one field per
// subcommand (§6.4): devices, info, list, download.
var cli struct {
	Verbose bool `short:"v" help:"Enable debug logging."`

	Devices  devicesCmd  `cmd:"" help:"Enumerate attached Still Image class USB devices."`
	Info     infoCmd     `cmd:"" help:"Print device and storage info."`
	List     listCmd     `cmd:"" help:"List every object across all mounted storages."`
	Download downloadCmd `cmd:"" help:"List and download objects larger than 1KiB to the working directory."`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name(programName),
		kong.Description(programDesc),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	logConfig := logging.DefaultConfig()
	if cli.Verbose {
		logConfig.Level = logging.LevelDebug
	}
	logger := logging.NewLogger(logConfig)
	logging.SetDefault(logger)

	err := kctx.Run(&cliContext{
		ctx:    context.Background(),
		logger: logger,
	})
	kctx.FatalIfErrorf(err)
}
