package usbtransport

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/gousb"
)

// Config configures a gousb-backed Transport.
type Config struct {
	VendorID     gousb.ID
	ProductID    gousb.ID
	WriteTimeout time.Duration // default 5s
	ReadTimeout  time.Duration // default 20s
}

func (c Config) withDefaults() Config {
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 5 * time.Second
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 20 * time.Second
	}
	return c
}

// GousbTransport drives a PTP device's bulk endpoints via
// github.com/google/gousb. Only one interface/config is claimed; the
// interrupt (event) endpoint is not opened, per the documented
// event-channel non-goal.
type GousbTransport struct {
	cfg    Config
	ctx    *gousb.Context
	device *gousb.Device
	config *gousb.Config
	intf   *gousb.Interface
	epOut  *gousb.OutEndpoint
	epIn   *gousb.InEndpoint
}

// Open claims the Still Image class interface on the first device
// matching vid/pid and returns a ready Transport.
func Open(cfg Config) (*GousbTransport, error) {
	const op = "usbtransport.Open"
	cfg = cfg.withDefaults()

	ctx := gousb.NewContext()
	device, err := ctx.OpenDeviceWithVIDPID(cfg.VendorID, cfg.ProductID)
	if err != nil {
		ctx.Close()
		return nil, newIOError(op, err)
	}
	if device == nil {
		ctx.Close()
		return nil, newDisconnectedError(op, fmt.Errorf("no device matching %s:%s", cfg.VendorID, cfg.ProductID))
	}

	intfNum, setting, outAddr, inAddr, err := findStillImageEndpoints(device)
	if err != nil {
		device.Close()
		ctx.Close()
		return nil, newIOError(op, err)
	}

	config, err := device.Config(1)
	if err != nil {
		device.Close()
		ctx.Close()
		return nil, newIOError(op, err)
	}

	intf, err := config.Interface(intfNum, setting)
	if err != nil {
		config.Close()
		device.Close()
		ctx.Close()
		return nil, newIOError(op, err)
	}

	epOut, err := intf.OutEndpoint(outAddr)
	if err != nil {
		intf.Close()
		config.Close()
		device.Close()
		ctx.Close()
		return nil, newIOError(op, err)
	}

	epIn, err := intf.InEndpoint(inAddr)
	if err != nil {
		intf.Close()
		config.Close()
		device.Close()
		ctx.Close()
		return nil, newIOError(op, err)
	}

	return &GousbTransport{cfg: cfg, ctx: ctx, device: device, config: config, intf: intf, epOut: epOut, epIn: epIn}, nil
}

// findStillImageEndpoints walks the device descriptor to find the Still
// Image (PTP) interface and its bulk IN/OUT endpoint addresses. Devices
// that misreport their interface class (some cameras ship Vendor
// Specific instead) are matched by endpoint shape as a fallback: an
// alt setting with at least one bulk OUT and one bulk IN endpoint is
// accepted even off-class, whatever other endpoints it has.
func findStillImageEndpoints(device *gousb.Device) (intfNum int, setting int, outAddr, inAddr gousb.EndpointAddress, err error) {
	if device.Desc == nil {
		return 0, 0, 0, 0, errors.New("device descriptor unavailable")
	}
	cfgDesc, ok := device.Desc.Configs[1]
	if !ok {
		return 0, 0, 0, 0, errors.New("device has no configuration 1")
	}

	var fallbackIntf, fallbackSetting int
	var fallbackOut, fallbackIn gousb.EndpointAddress
	haveFallback := false

	for _, ifDesc := range cfgDesc.Interfaces {
		for _, alt := range ifDesc.AltSettings {
			var out, in gousb.EndpointAddress
			var haveOut, haveIn bool
			for _, ep := range alt.Endpoints {
				if ep.TransferType != gousb.TransferTypeBulk {
					continue
				}
				if ep.Direction == gousb.EndpointDirectionOut {
					out, haveOut = ep.Address, true
				} else {
					in, haveIn = ep.Address, true
				}
			}
			if !haveOut || !haveIn {
				continue
			}
			if alt.Class == gousb.ClassImage {
				return ifDesc.Number, alt.Number, out, in, nil
			}
			if !haveFallback {
				fallbackIntf, fallbackSetting, fallbackOut, fallbackIn = ifDesc.Number, alt.Number, out, in
				haveFallback = true
			}
		}
	}
	if haveFallback {
		return fallbackIntf, fallbackSetting, fallbackOut, fallbackIn, nil
	}
	return 0, 0, 0, 0, errors.New("no still-image bulk interface found")
}

func (t *GousbTransport) Write(ctx context.Context, buf []byte) error {
	const op = "usbtransport.Write"
	wctx, cancel := context.WithTimeout(ctx, t.cfg.WriteTimeout)
	defer cancel()

	_, err := t.epOut.WriteContext(wctx, buf)
	return classifyErr(op, err)
}

func (t *GousbTransport) Read(ctx context.Context, max int) ([]byte, error) {
	const op = "usbtransport.Read"
	rctx, cancel := context.WithTimeout(ctx, t.cfg.ReadTimeout)
	defer cancel()

	buf := make([]byte, max)
	n, err := t.epIn.ReadContext(rctx, buf)
	if err != nil {
		return nil, classifyErr(op, err)
	}
	return buf[:n], nil
}

func (t *GousbTransport) ClearHalt(dir Direction) error {
	const op = "usbtransport.ClearHalt"
	var addr gousb.EndpointAddress
	if dir == DirectionOut {
		addr = t.epOut.Desc.Address
	} else {
		addr = t.epIn.Desc.Address
	}
	if err := t.device.ClearHalt(addr); err != nil {
		return newIOError(op, err)
	}
	return nil
}

func (t *GousbTransport) Close() error {
	if t.intf != nil {
		t.intf.Close()
	}
	if t.config != nil {
		t.config.Close()
	}
	if t.device != nil {
		t.device.Close()
	}
	if t.ctx != nil {
		t.ctx.Close()
	}
	return nil
}

// classifyErr sorts a libusb/gousb failure into the shared transport
// error taxonomy. gousb surfaces libusb error strings rather than a
// typed error hierarchy stable across versions, so this matches on the
// well-known libusb error text (as libusb itself never changes these)
// instead of a typed comparison.
func classifyErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return newTimeoutError(op, err)
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "pipe error") || strings.Contains(msg, "LIBUSB_ERROR_PIPE"):
		return newStalledError(op, err)
	case strings.Contains(msg, "no device") || strings.Contains(msg, "LIBUSB_ERROR_NO_DEVICE") || strings.Contains(msg, "LIBUSB_ERROR_NOT_FOUND"):
		return newDisconnectedError(op, err)
	default:
		return newIOError(op, err)
	}
}
