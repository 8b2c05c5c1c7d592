package ptpwire

// ObjectInfo is the dataset returned by GetObjectInfo and sent by
// SendObjectInfo.
type ObjectInfo struct {
	StorageID           uint32
	ObjectFormat        uint16
	ProtectionStatus    uint16
	CompressedSize      uint32
	ThumbFormat         uint16
	ThumbCompressedSize uint32
	ThumbPixWidth       uint32
	ThumbPixHeight      uint32
	ImagePixWidth       uint32
	ImagePixHeight      uint32
	ImageBitDepth       uint32
	ParentObject        uint32
	AssociationType     uint16
	AssociationDesc     uint32
	SequenceNumber      uint32
	Filename            string
	CaptureDate         string
	ModificationDate    string
	Keywords            string
}

// IsDirectory reports whether this object is a navigable folder: an
// Association whose association_type is GenericFolder. Every other
// object (including non-folder associations) is a leaf.
func (o ObjectInfo) IsDirectory() bool {
	return o.ObjectFormat == ObjectFormatAssociation && o.AssociationType == AssociationGenericFolder
}

// IsRootOfStorage reports whether ParentObject is the root sentinel.
func (o ObjectInfo) IsRootOfStorage() bool {
	return o.ParentObject == RootHandle
}

func (o ObjectInfo) MarshalBinary() ([]byte, error) {
	w := newWriter(LittleEndian)
	w.putU32(o.StorageID)
	w.putU16(o.ObjectFormat)
	w.putU16(o.ProtectionStatus)
	w.putU32(o.CompressedSize)
	w.putU16(o.ThumbFormat)
	w.putU32(o.ThumbCompressedSize)
	w.putU32(o.ThumbPixWidth)
	w.putU32(o.ThumbPixHeight)
	w.putU32(o.ImagePixWidth)
	w.putU32(o.ImagePixHeight)
	w.putU32(o.ImageBitDepth)
	w.putU32(o.ParentObject)
	w.putU16(o.AssociationType)
	w.putU32(o.AssociationDesc)
	w.putU32(o.SequenceNumber)
	packString(w, o.Filename)
	packString(w, o.CaptureDate)
	packString(w, o.ModificationDate)
	packString(w, o.Keywords)
	return w.bytes(), nil
}

func (o *ObjectInfo) UnmarshalBinary(data []byte) error {
	const op = "ObjectInfo.UnmarshalBinary"
	c := newCursor(data, LittleEndian)

	var err error
	if o.StorageID, err = c.u32(op); err != nil {
		return err
	}
	if o.ObjectFormat, err = c.u16(op); err != nil {
		return err
	}
	if o.ProtectionStatus, err = c.u16(op); err != nil {
		return err
	}
	if o.CompressedSize, err = c.u32(op); err != nil {
		return err
	}
	if o.ThumbFormat, err = c.u16(op); err != nil {
		return err
	}
	if o.ThumbCompressedSize, err = c.u32(op); err != nil {
		return err
	}
	if o.ThumbPixWidth, err = c.u32(op); err != nil {
		return err
	}
	if o.ThumbPixHeight, err = c.u32(op); err != nil {
		return err
	}
	if o.ImagePixWidth, err = c.u32(op); err != nil {
		return err
	}
	if o.ImagePixHeight, err = c.u32(op); err != nil {
		return err
	}
	if o.ImageBitDepth, err = c.u32(op); err != nil {
		return err
	}
	if o.ParentObject, err = c.u32(op); err != nil {
		return err
	}
	if o.AssociationType, err = c.u16(op); err != nil {
		return err
	}
	if o.AssociationDesc, err = c.u32(op); err != nil {
		return err
	}
	if o.SequenceNumber, err = c.u32(op); err != nil {
		return err
	}
	if o.Filename, err = unpackString(c, op); err != nil {
		return err
	}
	if o.CaptureDate, err = unpackString(c, op); err != nil {
		return err
	}
	if o.ModificationDate, err = unpackString(c, op); err != nil {
		return err
	}
	if o.Keywords, err = unpackString(c, op); err != nil {
		return err
	}
	return nil
}

// ObjectFormatForSuffix derives the object_format to use when creating
// a new object from a local filename, per the suffix-to-format map.
// Unknown suffixes are stored as Undefined.
func ObjectFormatForSuffix(suffix string) uint16 {
	switch suffix {
	case "txt":
		return ObjectFormatText
	case "mp3":
		return ObjectFormatMP3
	case "mpg":
		return ObjectFormatMPEG
	case "wav":
		return ObjectFormatWAV
	case "avi":
		return ObjectFormatAVI
	case "asf":
		return ObjectFormatASF
	case "jpg", "jpeg":
		return ObjectFormatEXIF_JPEG
	case "tif", "tiff":
		return ObjectFormatTIFF
	case "bmp":
		return ObjectFormatBMP
	case "gif":
		return ObjectFormatGIF
	case "pcd":
		return ObjectFormatPhotoCD
	case "pct":
		return ObjectFormatPICT
	case "png":
		return ObjectFormatPNG
	default:
		return ObjectFormatUndefined
	}
}

// ExtensionForObjectFormat derives the local filename extension to use
// when downloading an object, per the format-to-extension map.
func ExtensionForObjectFormat(format uint16) string {
	switch format {
	case ObjectFormatAssociation:
		return ""
	case ObjectFormatScript:
		return ".bat"
	case ObjectFormatExecutable:
		return ".exe"
	case ObjectFormatHTML:
		return ".htm"
	case ObjectFormatDPOF:
		return ".dpof"
	case ObjectFormatAIFF:
		return ".aiff"
	case ObjectFormatQTMOV:
		return ".mov"
	case ObjectFormatJP2:
		return ".jpg"
	case ObjectFormatText:
		return ".txt"
	case ObjectFormatMP3:
		return ".mp3"
	case ObjectFormatMPEG:
		return ".mpg"
	case ObjectFormatWAV:
		return ".wav"
	case ObjectFormatAVI:
		return ".avi"
	case ObjectFormatASF:
		return ".asf"
	case ObjectFormatEXIF_JPEG, ObjectFormatJFIF:
		return ".jpg"
	case ObjectFormatTIFF, ObjectFormatTIFF_EP:
		return ".tif"
	case ObjectFormatBMP:
		return ".bmp"
	case ObjectFormatGIF:
		return ".gif"
	case ObjectFormatPhotoCD:
		return ".pcd"
	case ObjectFormatPICT:
		return ".pct"
	case ObjectFormatPNG:
		return ".png"
	default:
		return ""
	}
}
