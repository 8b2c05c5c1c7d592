package ptpwire

// DeviceInfo is the dataset returned by GetDeviceInfo.
type DeviceInfo struct {
	StandardVersion        uint16
	VendorExtensionID       uint32
	VendorExtensionVersion uint16
	VendorExtensionDesc    string
	FunctionalMode         uint16
	OperationsSupported    []uint16
	EventsSupported        []uint16
	PropertiesSupported    []uint16
	CaptureFormats         []uint16
	ImageFormats           []uint16
	Manufacturer           string
	Model                  string
	DeviceVersion          string
	SerialNumber           string
}

// SupportsOperation reports whether the device advertises the given
// operation code in OperationsSupported.
func (d DeviceInfo) SupportsOperation(opCode uint16) bool {
	for _, op := range d.OperationsSupported {
		if op == opCode {
			return true
		}
	}
	return false
}

// MarshalBinary packs a DeviceInfo dataset to its wire form.
func (d DeviceInfo) MarshalBinary() ([]byte, error) {
	w := newWriter(LittleEndian)
	w.putU16(d.StandardVersion)
	w.putU32(d.VendorExtensionID)
	w.putU16(d.VendorExtensionVersion)
	packString(w, d.VendorExtensionDesc)
	w.putU16(d.FunctionalMode)
	packU16Array(w, d.OperationsSupported)
	packU16Array(w, d.EventsSupported)
	packU16Array(w, d.PropertiesSupported)
	packU16Array(w, d.CaptureFormats)
	packU16Array(w, d.ImageFormats)
	packString(w, d.Manufacturer)
	packString(w, d.Model)
	packString(w, d.DeviceVersion)
	packString(w, d.SerialNumber)
	return w.bytes(), nil
}

// UnmarshalBinary unpacks a DeviceInfo dataset from its wire form.
func (d *DeviceInfo) UnmarshalBinary(data []byte) error {
	const op = "DeviceInfo.UnmarshalBinary"
	c := newCursor(data, LittleEndian)

	var err error
	if d.StandardVersion, err = c.u16(op); err != nil {
		return err
	}
	if d.VendorExtensionID, err = c.u32(op); err != nil {
		return err
	}
	if d.VendorExtensionVersion, err = c.u16(op); err != nil {
		return err
	}
	if d.VendorExtensionDesc, err = unpackString(c, op); err != nil {
		return err
	}
	if d.FunctionalMode, err = c.u16(op); err != nil {
		return err
	}
	if d.OperationsSupported, err = unpackU16Array(c, op); err != nil {
		return err
	}
	if d.EventsSupported, err = unpackU16Array(c, op); err != nil {
		return err
	}
	if d.PropertiesSupported, err = unpackU16Array(c, op); err != nil {
		return err
	}
	if d.CaptureFormats, err = unpackU16Array(c, op); err != nil {
		return err
	}
	if d.ImageFormats, err = unpackU16Array(c, op); err != nil {
		return err
	}
	if d.Manufacturer, err = unpackString(c, op); err != nil {
		return err
	}
	if d.Model, err = unpackString(c, op); err != nil {
		return err
	}
	if d.DeviceVersion, err = unpackString(c, op); err != nil {
		return err
	}
	if d.SerialNumber, err = unpackString(c, op); err != nil {
		return err
	}
	return nil
}
