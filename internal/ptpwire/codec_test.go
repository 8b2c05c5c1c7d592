package ptpwire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackString_Empty(t *testing.T) {
	w := newWriter(LittleEndian)
	packString(w, "")
	assert.Equal(t, []byte{0}, w.bytes())
}

// S3 (spec §8): "FILE.JPG" packs to the literal bytes given in the
// scenario and unpacks back to the trimmed string.
func TestPackString_Literal(t *testing.T) {
	w := newWriter(LittleEndian)
	packString(w, "FILE.JPG")
	want := []byte{0x08, 0x46, 0x00, 0x49, 0x00, 0x4C, 0x00, 0x45, 0x00, 0x2E, 0x00, 0x4A, 0x00, 0x50, 0x00, 0x47, 0x00, 0x00, 0x00}
	assert.Equal(t, want, w.bytes())

	got, err := unpackString(newCursor(want, LittleEndian), "test")
	require.NoError(t, err)
	assert.Equal(t, "FILE.JPG", got)
}

func TestStringRoundTrip(t *testing.T) {
	cases := []string{"", "a", "FILE.JPG", "a UCS2 str√ng"}
	for _, s := range cases {
		w := newWriter(LittleEndian)
		packString(w, s)
		got, err := unpackString(newCursor(w.bytes(), LittleEndian), "test")
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestUnpackString_Truncated(t *testing.T) {
	_, err := unpackString(newCursor([]byte{5, 1, 0}, LittleEndian), "test")
	assert.Error(t, err)
}

func TestArrayRoundTrip(t *testing.T) {
	w := newWriter(LittleEndian)
	packU16Array(w, []uint16{1, 2, 3})
	got, err := unpackU16Array(newCursor(w.bytes(), LittleEndian), "test")
	require.NoError(t, err)
	assert.Equal(t, []uint16{1, 2, 3}, got)

	w2 := newWriter(LittleEndian)
	packU16Array(w2, nil)
	assert.Equal(t, []byte{0, 0, 0, 0}, w2.bytes())
}

func TestArray_TruncatedCount(t *testing.T) {
	_, err := unpackU32Array(newCursor([]byte{10, 0, 0, 0}, LittleEndian), "test")
	assert.Error(t, err)
}

// Property 3 (spec §8): unpack(pack(D)) == D for every dataset.
func TestDeviceInfoRoundTrip(t *testing.T) {
	d := DeviceInfo{
		StandardVersion:        100,
		VendorExtensionID:      6,
		VendorExtensionVersion: 100,
		VendorExtensionDesc:    "microsoft.com: 1.0",
		FunctionalMode:         0,
		OperationsSupported:    []uint16{OpGetDeviceInfo, OpOpenSession, OpCloseSession},
		EventsSupported:        []uint16{},
		PropertiesSupported:    []uint16{0x5001},
		CaptureFormats:         []uint16{ObjectFormatEXIF_JPEG},
		ImageFormats:           []uint16{ObjectFormatEXIF_JPEG, ObjectFormatAssociation},
		Manufacturer:           "Acme",
		Model:                  "PowerShot X",
		DeviceVersion:          "1.0.0",
		SerialNumber:           "SN123456",
	}

	packed, err := d.MarshalBinary()
	require.NoError(t, err)

	var got DeviceInfo
	require.NoError(t, got.UnmarshalBinary(packed))
	assert.Equal(t, d, got)
}

func TestDeviceInfo_SupportsOperation(t *testing.T) {
	d := DeviceInfo{OperationsSupported: []uint16{OpEKSendObject, OpGetObject}}
	assert.True(t, d.SupportsOperation(OpEKSendObject))
	assert.False(t, d.SupportsOperation(OpSendObject))
}

func TestStorageInfoRoundTrip(t *testing.T) {
	s := StorageInfo{
		StorageType:       0x0003,
		FilesystemType:    0x0002,
		AccessCapability:  0x0000,
		MaxCapacity:       1 << 30,
		FreeSpaceInBytes:  1 << 20,
		FreeSpaceInImages: 42,
		Description:       "Internal RAM",
		VolumeLabel:       "",
	}
	packed, err := s.MarshalBinary()
	require.NoError(t, err)

	var got StorageInfo
	require.NoError(t, got.UnmarshalBinary(packed))
	assert.Equal(t, s, got)
}

func TestIsMounted(t *testing.T) {
	assert.True(t, IsMounted(0x00010001))
	assert.False(t, IsMounted(0x00010000))
}

// S3 (spec §8): object_format=EXIF_JPEG, association_type=0 classifies
// as a file.
func TestObjectInfoRoundTripAndClassification(t *testing.T) {
	o := ObjectInfo{
		StorageID:        0x00010001,
		ObjectFormat:     ObjectFormatEXIF_JPEG,
		ProtectionStatus: 0,
		CompressedSize:   123456,
		ParentObject:     RootHandle,
		AssociationType:  0,
		Filename:         "FILE.JPG",
		CaptureDate:      "20060102T150405",
		ModificationDate: "20060102T150405",
		Keywords:         "",
	}
	packed, err := o.MarshalBinary()
	require.NoError(t, err)

	var got ObjectInfo
	require.NoError(t, got.UnmarshalBinary(packed))
	assert.Equal(t, o, got)
	assert.False(t, got.IsDirectory())
	assert.True(t, got.IsRootOfStorage())
}

func TestObjectInfo_DirectoryClassification(t *testing.T) {
	dir := ObjectInfo{ObjectFormat: ObjectFormatAssociation, AssociationType: AssociationGenericFolder}
	assert.True(t, dir.IsDirectory())

	notAFolder := ObjectInfo{ObjectFormat: ObjectFormatAssociation, AssociationType: 0x0002}
	assert.False(t, notAFolder.IsDirectory())
}

func TestObjectFormatForSuffix(t *testing.T) {
	assert.Equal(t, ObjectFormatEXIF_JPEG, ObjectFormatForSuffix("jpg"))
	assert.Equal(t, ObjectFormatUndefined, ObjectFormatForSuffix("xyz"))
}

func TestExtensionForObjectFormat(t *testing.T) {
	assert.Equal(t, ".jpg", ExtensionForObjectFormat(ObjectFormatEXIF_JPEG))
	assert.Equal(t, "", ExtensionForObjectFormat(ObjectFormatAssociation))
	assert.Equal(t, ".mov", ExtensionForObjectFormat(ObjectFormatQTMOV))
}

func TestUnpackPropValue(t *testing.T) {
	w := newWriter(LittleEndian)
	w.putU32(7)
	v, err := UnpackPropValue(w.bytes(), DataTypeUint32)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), v.Uint)

	_, err = UnpackPropValue(nil, DataType(0x4001))
	assert.Error(t, err)
}
