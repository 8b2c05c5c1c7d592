// Package usbdiscovery enumerates attached USB devices that carry a
// Still Image (PTP) class interface, shared by every adapter that
// needs to pick a device before opening a session (cmd/ptpcli,
// cmd/ptpfs).
package usbdiscovery

import (
	"fmt"

	"github.com/google/gousb"
)

// Device describes one enumerated Still Image class USB device.
type Device struct {
	Bus, Address int
	VendorID     gousb.ID
	ProductID    gousb.ID
	Manufacturer string
	Product      string
}

// EnumerateStillImageDevices lists every attached device carrying a
// Still Image (0x06) class interface, per §6.4's "enumerate attached
// USB devices/interfaces via gousb.Context.OpenDevices; no PTP session
// required". The traversal of Configs/Interfaces/AltSettings mirrors
// internal/usbtransport.GousbTransport's own device-matching walk.
func EnumerateStillImageDevices() ([]Device, error) {
	ctx := gousb.NewContext()
	defer ctx.Close()

	devices, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		for _, cfg := range desc.Configs {
			for _, intf := range cfg.Interfaces {
				for _, alt := range intf.AltSettings {
					if alt.Class == gousb.ClassImage {
						return true
					}
				}
			}
		}
		return false
	})
	if err != nil {
		return nil, fmt.Errorf("usbdiscovery: enumerate USB devices: %w", err)
	}

	out := make([]Device, 0, len(devices))
	for _, d := range devices {
		manufacturer, _ := d.Manufacturer()
		product, _ := d.Product()
		out = append(out, Device{
			Bus:          d.Desc.Bus,
			Address:      d.Desc.Address,
			VendorID:     d.Desc.Vendor,
			ProductID:    d.Desc.Product,
			Manufacturer: manufacturer,
			Product:      product,
		})
		d.Close()
	}
	return out, nil
}

// Select picks descs[index], bounds-checked with a descriptive error.
func Select(descs []Device, index int) (Device, error) {
	if len(descs) == 0 {
		return Device{}, fmt.Errorf("usbdiscovery: no Still Image class USB device found")
	}
	if index < 0 {
		index = 0
	}
	if index >= len(descs) {
		return Device{}, fmt.Errorf("usbdiscovery: device index %d out of range (%d found)", index, len(descs))
	}
	return descs[index], nil
}
