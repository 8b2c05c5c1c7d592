package ptpwire

// Standard PTP operation codes used by the core (PIMA 15740:2000 §10).
const (
	OpGetDeviceInfo      uint16 = 0x1001
	OpOpenSession        uint16 = 0x1002
	OpCloseSession       uint16 = 0x1003
	OpGetStorageIDs      uint16 = 0x1004
	OpGetStorageInfo     uint16 = 0x1005
	OpGetObjectHandles   uint16 = 0x1007
	OpGetObjectInfo      uint16 = 0x1008
	OpGetObject          uint16 = 0x1009
	OpDeleteObject       uint16 = 0x100b
	OpSendObjectInfo     uint16 = 0x100c
	OpSendObject         uint16 = 0x100d
	OpGetDevicePropValue uint16 = 0x1015
)

// Eastman Kodak vendor-extension opcodes, substituted for the standard
// SendObjectInfo/SendObject pair when the device advertises them in
// DeviceInfo.OperationsSupported.
const (
	OpEKSendObjectInfo uint16 = 0x9001
	OpEKSendObject     uint16 = 0x9002
)

// Object format codes (PIMA 15740:2000 §B, the subset this core names).
const (
	ObjectFormatUndefined    uint16 = 0x3000
	ObjectFormatAssociation  uint16 = 0x3001
	ObjectFormatScript       uint16 = 0x3002
	ObjectFormatExecutable   uint16 = 0x3003
	ObjectFormatText         uint16 = 0x3004
	ObjectFormatHTML         uint16 = 0x3005
	ObjectFormatDPOF         uint16 = 0x3006
	ObjectFormatAIFF         uint16 = 0x3007
	ObjectFormatWAV          uint16 = 0x3008
	ObjectFormatMP3          uint16 = 0x3009
	ObjectFormatAVI          uint16 = 0x300a
	ObjectFormatMPEG         uint16 = 0x300b
	ObjectFormatASF          uint16 = 0x300c
	ObjectFormatQTMOV        uint16 = 0x300d
	ObjectFormatEXIF_JPEG    uint16 = 0x3801
	ObjectFormatTIFF_EP      uint16 = 0x3802
	ObjectFormatBMP          uint16 = 0x3804
	ObjectFormatGIF          uint16 = 0x3807
	ObjectFormatJFIF         uint16 = 0x3808
	ObjectFormatPhotoCD      uint16 = 0x3809
	ObjectFormatPICT         uint16 = 0x380a
	ObjectFormatPNG          uint16 = 0x380b
	ObjectFormatTIFF         uint16 = 0x380d
	ObjectFormatJP2          uint16 = 0x380f
)

// AssociationGenericFolder is the association_type value that marks an
// Association object as a navigable directory.
const AssociationGenericFolder uint16 = 0x0001

// RootHandle is the parent_object / handle sentinel meaning "root of
// storage".
const RootHandle uint32 = 0xffffffff

// PTP data-type codes used by GetDevicePropValue to select the width
// and shape of a property's value fields (PIMA 15740:2000 §5.1.1).
const (
	DataTypeUndefined DataType = 0x0000
	DataTypeInt8      DataType = 0x0001
	DataTypeUint8     DataType = 0x0002
	DataTypeInt16     DataType = 0x0003
	DataTypeUint16    DataType = 0x0004
	DataTypeInt32     DataType = 0x0005
	DataTypeUint32    DataType = 0x0006
	DataTypeInt64     DataType = 0x0007
	DataTypeUint64    DataType = 0x0008
	DataTypeString    DataType = 0xffff
)

// DataType is the wire representation of a GetDevicePropValue data
// type code.
type DataType uint16
