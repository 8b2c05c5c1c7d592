package ptpwire

import "github.com/defiant-labs/ptpfs/ptperr"

// PropValue is the tagged decode of a GetDevicePropValue response: the
// data type selects which field is meaningful.
type PropValue struct {
	DataType DataType
	Int      int64
	Uint     uint64
	Str      string
}

// UnpackPropValue decodes a device property value per its declared
// data type (PIMA 15740:2000 §5.1.1). Data types this core does not
// implement (arrays, ranges) return CodeUnsupportedDataType rather
// than silently misreading the buffer.
func UnpackPropValue(data []byte, dt DataType) (PropValue, error) {
	const op = "UnpackPropValue"
	c := newCursor(data, LittleEndian)

	switch dt {
	case DataTypeInt8:
		v, err := c.u8(op)
		if err != nil {
			return PropValue{}, err
		}
		return PropValue{DataType: dt, Int: int64(int8(v))}, nil
	case DataTypeUint8:
		v, err := c.u8(op)
		if err != nil {
			return PropValue{}, err
		}
		return PropValue{DataType: dt, Uint: uint64(v)}, nil
	case DataTypeInt16:
		v, err := c.u16(op)
		if err != nil {
			return PropValue{}, err
		}
		return PropValue{DataType: dt, Int: int64(int16(v))}, nil
	case DataTypeUint16:
		v, err := c.u16(op)
		if err != nil {
			return PropValue{}, err
		}
		return PropValue{DataType: dt, Uint: uint64(v)}, nil
	case DataTypeInt32:
		v, err := c.u32(op)
		if err != nil {
			return PropValue{}, err
		}
		return PropValue{DataType: dt, Int: int64(int32(v))}, nil
	case DataTypeUint32:
		v, err := c.u32(op)
		if err != nil {
			return PropValue{}, err
		}
		return PropValue{DataType: dt, Uint: uint64(v)}, nil
	case DataTypeInt64:
		v, err := c.u64(op)
		if err != nil {
			return PropValue{}, err
		}
		return PropValue{DataType: dt, Int: int64(v)}, nil
	case DataTypeUint64:
		v, err := c.u64(op)
		if err != nil {
			return PropValue{}, err
		}
		return PropValue{DataType: dt, Uint: v}, nil
	case DataTypeString:
		s, err := unpackString(c, op)
		if err != nil {
			return PropValue{}, err
		}
		return PropValue{DataType: dt, Str: s}, nil
	default:
		return PropValue{}, ptperr.New(op, ptperr.CodeUnsupportedDataType, "unsupported property data type")
	}
}
