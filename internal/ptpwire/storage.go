package ptpwire

// StorageInfo is the dataset returned by GetStorageInfo.
type StorageInfo struct {
	StorageType       uint16
	FilesystemType    uint16
	AccessCapability  uint16
	MaxCapacity       uint64
	FreeSpaceInBytes  uint64
	FreeSpaceInImages uint32
	Description       string
	VolumeLabel       string
}

// IsMounted reports whether a StorageID's low 16 bits are non-zero,
// meaning the storage is attached and mounted.
func IsMounted(storageID uint32) bool {
	return storageID&0xffff != 0
}

func (s StorageInfo) MarshalBinary() ([]byte, error) {
	w := newWriter(LittleEndian)
	w.putU16(s.StorageType)
	w.putU16(s.FilesystemType)
	w.putU16(s.AccessCapability)
	w.putU64(s.MaxCapacity)
	w.putU64(s.FreeSpaceInBytes)
	w.putU32(s.FreeSpaceInImages)
	packString(w, s.Description)
	packString(w, s.VolumeLabel)
	return w.bytes(), nil
}

func (s *StorageInfo) UnmarshalBinary(data []byte) error {
	const op = "StorageInfo.UnmarshalBinary"
	c := newCursor(data, LittleEndian)

	var err error
	if s.StorageType, err = c.u16(op); err != nil {
		return err
	}
	if s.FilesystemType, err = c.u16(op); err != nil {
		return err
	}
	if s.AccessCapability, err = c.u16(op); err != nil {
		return err
	}
	if s.MaxCapacity, err = c.u64(op); err != nil {
		return err
	}
	if s.FreeSpaceInBytes, err = c.u64(op); err != nil {
		return err
	}
	if s.FreeSpaceInImages, err = c.u32(op); err != nil {
		return err
	}
	if s.Description, err = unpackString(c, op); err != nil {
		return err
	}
	if s.VolumeLabel, err = unpackString(c, op); err != nil {
		return err
	}
	return nil
}
