package main

import (
	"context"
	"fmt"

	"github.com/defiant-labs/ptpfs/internal/usbdiscovery"
	"github.com/defiant-labs/ptpfs/internal/usbtransport"
	"github.com/defiant-labs/ptpfs/ptpsession"
)

func enumerateStillImageDevices() ([]usbdiscovery.Device, error) {
	return usbdiscovery.EnumerateStillImageDevices()
}

// openSession opens the bulk transport for the enumerated Still Image
// device at selectIndex (0 if negative) and drives the
// OpenSession/GetDeviceInfo handshake, returning a ready Session.
// Callers own both the Session and the underlying transport and must
// close/Close them in that order.
func openSession(ctx context.Context, selectIndex int) (*ptpsession.Session, *usbtransport.GousbTransport, error) {
	descs, err := usbdiscovery.EnumerateStillImageDevices()
	if err != nil {
		return nil, nil, err
	}
	chosen, err := usbdiscovery.Select(descs, selectIndex)
	if err != nil {
		return nil, nil, err
	}

	transport, err := usbtransport.Open(usbtransport.Config{
		VendorID:  chosen.VendorID,
		ProductID: chosen.ProductID,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open transport for %s: %w", chosen.VendorID, err)
	}

	session, err := ptpsession.Open(ctx, transport, ptpsession.DefaultParams(), nil)
	if err != nil {
		transport.Close()
		return nil, nil, fmt.Errorf("open PTP session: %w", err)
	}
	return session, transport, nil
}
