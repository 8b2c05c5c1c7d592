package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/defiant-labs/ptpfs/internal/logging"
	"github.com/defiant-labs/ptpfs/internal/ptpwire"
	"github.com/defiant-labs/ptpfs/ptpsession"
)

// cliContext is kong's run context, threaded into every command's Run.
type cliContext struct {
	ctx    context.Context
	logger *logging.Logger
}

// devicesCmd enumerates attached USB devices/interfaces; no PTP
// session required (§6.4).
type devicesCmd struct{}

func (c *devicesCmd) Run(rc *cliContext) error {
	descs, err := enumerateStillImageDevices()
	if err != nil {
		return err
	}
	if len(descs) == 0 {
		fmt.Println("no Still Image class USB devices found")
		return nil
	}
	for i, d := range descs {
		fmt.Printf("[%d] bus=%d addr=%d vid=%s pid=%s manufacturer=%q product=%q\n",
			i, d.Bus, d.Address, d.VendorID, d.ProductID, d.Manufacturer, d.Product)
	}
	return nil
}

// deviceSelector is embedded by every command that needs to pick one
// enumerated device.
type deviceSelector struct {
	Device int `short:"n" default:"0" help:"Index into the enumerated device list (see 'devices')."`
}

// infoCmd opens a session and prints device + storage info, then
// closes the session (§6.4).
type infoCmd struct {
	deviceSelector
}

func (c *infoCmd) Run(rc *cliContext) error {
	session, transport, err := openSession(rc.ctx, c.Device)
	if err != nil {
		return err
	}
	defer transport.Close()
	defer session.Close(rc.ctx)

	info := session.DeviceInfo()
	fmt.Printf("Manufacturer:  %s\n", info.Manufacturer)
	fmt.Printf("Model:         %s\n", info.Model)
	fmt.Printf("Device Version: %s\n", info.DeviceVersion)
	fmt.Printf("Serial Number: %s\n", info.SerialNumber)
	fmt.Printf("Standard:      %d\n", info.StandardVersion)

	ids, err := session.GetStorageIDs(rc.ctx)
	if err != nil {
		return fmt.Errorf("GetStorageIDs: %w", err)
	}
	for _, id := range ids {
		if !ptpwire.IsMounted(id) {
			continue
		}
		sinfo, err := session.GetStorageInfo(rc.ctx, id)
		if err != nil {
			rc.logger.Warn("GetStorageInfo failed", "storage_id", id, "error", err)
			continue
		}
		fmt.Printf("Storage 0x%08x: %q %d/%d bytes free\n", id, sinfo.Description, sinfo.FreeSpaceInBytes, sinfo.MaxCapacity)
	}
	return nil
}

// listCmd lists objects across all storages (§6.4).
type listCmd struct {
	deviceSelector
}

func (c *listCmd) Run(rc *cliContext) error {
	session, transport, err := openSession(rc.ctx, c.Device)
	if err != nil {
		return err
	}
	defer transport.Close()
	defer session.Close(rc.ctx)

	return forEachObject(rc.ctx, session, func(obj objectEntry) error {
		fmt.Println(listingLine(obj.Info, time.Now()))
		return nil
	})
}

// downloadCmd lists and downloads every object larger than 1024 bytes
// to the working directory (§6.4).
type downloadCmd struct {
	deviceSelector
}

func (c *downloadCmd) Run(rc *cliContext) error {
	session, transport, err := openSession(rc.ctx, c.Device)
	if err != nil {
		return err
	}
	defer transport.Close()
	defer session.Close(rc.ctx)

	return forEachObject(rc.ctx, session, func(obj objectEntry) error {
		now := time.Now()
		fmt.Println(listingLine(obj.Info, now))
		if obj.Info.CompressedSize <= 1024 {
			return nil
		}
		return downloadObject(rc, session, obj, now)
	})
}

func downloadObject(rc *cliContext, session *ptpsession.Session, obj objectEntry, now time.Time) error {
	info := obj.Info
	blocks, err := session.GetObject(rc.ctx, obj.Handle, int64(info.CompressedSize))
	if err != nil {
		return fmt.Errorf("GetObject(%s): %w", info.Filename, err)
	}
	defer blocks.Release()

	name := timestampedFilename(info, now)
	f, err := os.OpenFile(name, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	defer f.Close()

	buf := make([]byte, 64*1024)
	var off int64
	for off < blocks.Len() {
		n, rerr := blocks.ReadAt(buf, off)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				return fmt.Errorf("write %s: %w", name, werr)
			}
			off += int64(n)
		}
		if rerr != nil {
			break
		}
	}
	rc.logger.Info("downloaded object", "name", name, "bytes", blocks.Len())
	return nil
}

// objectEntry pairs a fetched ObjectInfo with the handle it was
// fetched for; ObjectInfo itself carries no handle field (the device
// assigns it out of band, same as SendObjectInfo's response).
type objectEntry struct {
	Handle uint32
	Info   ptpwire.ObjectInfo
}

// forEachObject walks every mounted storage's full object listing
// (format filter 0, parent 0 — every object on the storage, per the
// device-dependent storage-wide workaround §4.6 also relies on),
// fetching ObjectInfo for each handle and invoking fn.
func forEachObject(ctx context.Context, session *ptpsession.Session, fn func(objectEntry) error) error {
	ids, err := session.GetStorageIDs(ctx)
	if err != nil {
		return fmt.Errorf("GetStorageIDs: %w", err)
	}
	for _, storageID := range ids {
		if !ptpwire.IsMounted(storageID) {
			continue
		}
		handles, err := session.GetObjectHandles(ctx, storageID, 0, 0)
		if err != nil {
			return fmt.Errorf("GetObjectHandles(0x%08x): %w", storageID, err)
		}
		for _, h := range handles {
			info, err := session.GetObjectInfo(ctx, h)
			if err != nil {
				continue
			}
			if err := fn(objectEntry{Handle: h, Info: info}); err != nil {
				return err
			}
		}
	}
	return nil
}
