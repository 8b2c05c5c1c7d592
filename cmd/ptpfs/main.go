package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/defiant-labs/ptpfs/internal/devregistry"
	"github.com/defiant-labs/ptpfs/internal/fuseadapter"
	"github.com/defiant-labs/ptpfs/internal/logging"
	"github.com/defiant-labs/ptpfs/internal/usbdiscovery"
	"github.com/defiant-labs/ptpfs/internal/usbtransport"
	"github.com/defiant-labs/ptpfs/ptpsession"
	"github.com/defiant-labs/ptpfs/ptptree"
)

const (
	programName = "ptpfs"
	programDesc = "Mount a PTP camera's object store as a FUSE filesystem"
)

var cli struct {
	Mountpoint string `arg:"" help:"Directory to mount the camera's object tree on."`
	Device     int    `short:"n" default:"0" help:"Index into the enumerated device list."`
	UID        int    `name:"uid" default:"-1" help:"Owner uid applied to every inode (defaults to the current user)."`
	GID        int    `name:"gid" default:"-1" help:"Owner gid applied to every inode (defaults to the current group)."`
	Verbose    bool   `short:"v" help:"Enable debug logging."`
}

func main() {
	kong.Parse(&cli,
		kong.Name(programName),
		kong.Description(programDesc),
		kong.UsageOnError())

	logConfig := logging.DefaultConfig()
	if cli.Verbose {
		logConfig.Level = logging.LevelDebug
	}
	logger := logging.NewLogger(logConfig)
	logging.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("ptpfs exited with error", "error", err)
		os.Exit(1)
	}
}

func run(logger *logging.Logger) error {
	ctx := context.Background()

	descs, err := usbdiscovery.EnumerateStillImageDevices()
	if err != nil {
		return err
	}
	chosen, err := usbdiscovery.Select(descs, cli.Device)
	if err != nil {
		return err
	}
	logger.Info("selected device", "manufacturer", chosen.Manufacturer, "product", chosen.Product, "bus", chosen.Bus, "address", chosen.Address)

	registry := devregistry.New()
	deviceKey := devregistry.DeviceKey{Bus: chosen.Bus, Address: chosen.Address}

	var transport *usbtransport.GousbTransport
	session, err := registry.Acquire(ctx, deviceKey, func(ctx context.Context) (*ptpsession.Session, error) {
		var openErr error
		transport, openErr = usbtransport.Open(usbtransport.Config{VendorID: chosen.VendorID, ProductID: chosen.ProductID})
		if openErr != nil {
			return nil, fmt.Errorf("open transport: %w", openErr)
		}
		s, openErr := ptpsession.Open(ctx, transport, ptpsession.DefaultParams(), &ptpsession.Options{Logger: logger})
		if openErr != nil {
			transport.Close()
			return nil, fmt.Errorf("open PTP session: %w", openErr)
		}
		return s, nil
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := registry.Release(ctx, deviceKey); err != nil {
			logger.Warn("error releasing device", "error", err)
		}
		if transport != nil {
			transport.Close()
		}
	}()

	reconciliation := ptptree.ReconciliationPolicy(int(session.Params().CreateReconciliation))
	tree := ptptree.NewTree(session, reconciliation)

	uid, gid := uint32(os.Getuid()), uint32(os.Getgid())
	if cli.UID >= 0 {
		uid = uint32(cli.UID)
	}
	if cli.GID >= 0 {
		gid = uint32(cli.GID)
	}

	server, err := fuseadapter.Mount(cli.Mountpoint, tree, fuseadapter.Options{UID: uid, GID: gid}, logger)
	if err != nil {
		return fmt.Errorf("mount %s: %w", cli.Mountpoint, err)
	}
	logger.Info("mounted", "mountpoint", cli.Mountpoint)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("unmounting", "mountpoint", cli.Mountpoint)
		if err := server.Unmount(); err != nil {
			logger.Warn("unmount failed", "error", err)
		}
	}()

	server.Wait()
	return nil
}
