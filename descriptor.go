package psd

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// DescriptorParser decodes Photoshop's generic key/value "descriptor"
// structure: the payload format backing a "TySh" text layer's engine
// data and warp, and a "SoLd"/"PlLd" smart object's placement,
// transform, and (quilt or named-style) warp. A descriptor nests
// arbitrarily — values can themselves be classes, lists, or further
// descriptors — so parsing is recursive over parseItem's type switch.
type DescriptorParser struct {
	reader *bytes.Reader
}

// NewDescriptorParser wraps a descriptor's raw bytes for decoding.
func NewDescriptorParser(data []byte) *DescriptorParser {
	return &DescriptorParser{reader: bytes.NewReader(data)}
}

// Parse decodes one descriptor: a class header followed by its key/
// value items, the items returned as a flat map (the class header
// itself is discarded after being read, since none of this package's
// callers need it).
func (d *DescriptorParser) Parse() (map[string]interface{}, error) {
	if _, err := d.parseClass(); err != nil {
		return nil, errors.Wrap(err, "descriptor: class header")
	}

	numItems, err := d.readUint32()
	if err != nil {
		return nil, errors.Wrap(err, "descriptor: item count")
	}

	result := make(map[string]interface{}, numItems)
	for i := uint32(0); i < numItems; i++ {
		key, value, err := d.parseKeyItem()
		if err != nil {
			return nil, errors.Wrapf(err, "descriptor: item %d", i)
		}
		result[key] = value
	}
	return result, nil
}

// parseClass reads a class header: a Unicode display name (usually
// empty) followed by a 4-byte or length-prefixed class ID.
func (d *DescriptorParser) parseClass() (map[string]interface{}, error) {
	name, err := d.readUnicodeString()
	if err != nil {
		return nil, errors.Wrap(err, "class name")
	}
	id, err := d.parseID()
	if err != nil {
		return nil, errors.Wrap(err, "class id")
	}
	return map[string]interface{}{"name": name, "id": id}, nil
}

// parseID reads either a 4-byte type code (length == 0, the common
// case for well-known keys) or a length-prefixed string.
func (d *DescriptorParser) parseID() (string, error) {
	length, err := d.readUint32()
	if err != nil {
		return "", err
	}
	if length == 0 {
		return d.readFixed(4)
	}
	return d.readFixed(int(length))
}

func (d *DescriptorParser) parseKeyItem() (string, interface{}, error) {
	key, err := d.parseID()
	if err != nil {
		return "", nil, errors.Wrap(err, "key")
	}
	value, err := d.parseItem("")
	if err != nil {
		return "", nil, errors.Wrapf(err, "value for key %q", key)
	}
	return key, value, nil
}

// parseItem decodes one descriptor value, reading its 4-byte type tag
// first unless the caller already knows it (as parseReference's items
// do, which carry their own differently-shaped type tag).
func (d *DescriptorParser) parseItem(itemType string) (interface{}, error) {
	if itemType == "" {
		tag, err := d.readFixed(4)
		if err != nil {
			return nil, err
		}
		itemType = tag
	}

	switch itemType {
	case "bool":
		return d.parseBoolean()
	case "type", "GlbC":
		return d.parseClass()
	case "Objc", "GlbO":
		return d.Parse()
	case "doub":
		return d.parseDouble()
	case "enum":
		return d.parseEnum()
	case "alis":
		return d.parseAlias()
	case "long":
		return d.parseInt()
	case "comp":
		return d.parseLargeInt()
	case "VlLs":
		return d.parseList()
	case "ObAr":
		return d.parseObjectArray()
	case "tdta":
		return d.parseRawData()
	case "obj ":
		return d.parseReference()
	case "TEXT":
		return d.readUnicodeString()
	case "UntF":
		return d.parseUnitDouble()
	default:
		return nil, errors.Wrapf(ErrFormat, "descriptor: unknown item type %q", itemType)
	}
}

func (d *DescriptorParser) parseBoolean() (bool, error) {
	b, err := d.reader.ReadByte()
	if err != nil {
		return false, errors.Wrap(ErrIO, err.Error())
	}
	return b != 0, nil
}

func (d *DescriptorParser) parseDouble() (float64, error)  { return d.readFloat64() }
func (d *DescriptorParser) parseInt() (int32, error)       { return d.readInt32() }
func (d *DescriptorParser) parseLargeInt() (int64, error)  { return d.readInt64() }

// parseEnum decodes an enumerated value as its type/value id pair,
// e.g. a warp's style ("wrpS"/"arc ") or rotate axis ("Ornt"/"Hrzn").
func (d *DescriptorParser) parseEnum() (map[string]interface{}, error) {
	typeID, err := d.parseID()
	if err != nil {
		return nil, errors.Wrap(err, "enum type")
	}
	valueID, err := d.parseID()
	if err != nil {
		return nil, errors.Wrap(err, "enum value")
	}
	return map[string]interface{}{"type": typeID, "value": valueID}, nil
}

func (d *DescriptorParser) parseAlias() ([]byte, error) {
	length, err := d.readUint32()
	if err != nil {
		return nil, err
	}
	return d.readBytes(int(length))
}

func (d *DescriptorParser) parseList() ([]interface{}, error) {
	count, err := d.readUint32()
	if err != nil {
		return nil, err
	}
	items := make([]interface{}, count)
	for i := uint32(0); i < count; i++ {
		value, err := d.parseItem("")
		if err != nil {
			return nil, errors.Wrapf(err, "list item %d", i)
		}
		items[i] = value
	}
	return items, nil
}

// parseObjectArray decodes an object array descriptor item. The wire
// layout beyond its leading class/count fields isn't exercised by any
// descriptor this package decodes (no "TySh"/"SoLd"/"PlLd" field this
// package reads is typed ObAr), so it's left unimplemented rather than
// guessed at.
func (d *DescriptorParser) parseObjectArray() (interface{}, error) {
	return nil, errors.Wrap(ErrFormat, "descriptor: object array items are not decoded")
}

func (d *DescriptorParser) parseRawData() ([]byte, error) {
	length, err := d.readUint32()
	if err != nil {
		return nil, err
	}
	return d.readBytes(int(length))
}

// parseReference decodes an "obj " reference: a sequence of items each
// tagged with one of a distinct set of reference-item type codes
// (property/class/enum-reference/identifier/index/name/offset), unlike
// parseItem's own type tag set.
func (d *DescriptorParser) parseReference() ([]map[string]interface{}, error) {
	numItems, err := d.readUint32()
	if err != nil {
		return nil, err
	}

	items := make([]map[string]interface{}, numItems)
	for i := uint32(0); i < numItems; i++ {
		refType, err := d.readFixed(4)
		if err != nil {
			return nil, err
		}

		var value interface{}
		switch refType {
		case "prop":
			value, err = d.parseProperty()
		case "Clss":
			value, err = d.parseClass()
		case "Enmr":
			value, err = d.parseEnumReference()
		case "Idnt", "indx", "rele":
			value, err = d.parseInt()
		case "name":
			value, err = d.readUnicodeString()
		default:
			return nil, errors.Wrapf(ErrFormat, "descriptor: unknown reference type %q", refType)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reference item %d", i)
		}
		items[i] = map[string]interface{}{"type": refType, "value": value}
	}
	return items, nil
}

func (d *DescriptorParser) parseProperty() (map[string]interface{}, error) {
	class, err := d.parseClass()
	if err != nil {
		return nil, errors.Wrap(err, "property class")
	}
	id, err := d.parseID()
	if err != nil {
		return nil, errors.Wrap(err, "property id")
	}
	return map[string]interface{}{"class": class, "id": id}, nil
}

func (d *DescriptorParser) parseEnumReference() (map[string]interface{}, error) {
	class, err := d.parseClass()
	if err != nil {
		return nil, errors.Wrap(err, "enum reference class")
	}
	typeID, err := d.parseID()
	if err != nil {
		return nil, errors.Wrap(err, "enum reference type")
	}
	valueID, err := d.parseID()
	if err != nil {
		return nil, errors.Wrap(err, "enum reference value")
	}
	return map[string]interface{}{"class": class, "type": typeID, "value": valueID}, nil
}

// unitKindNames maps a unit double's 4-byte unit code to a readable
// name; "Unknown" covers any code Photoshop hasn't documented.
var unitKindNames = map[string]string{
	"#Ang": "Angle",
	"#Rsl": "Density",
	"#Rlt": "Distance",
	"#Nne": "None",
	"#Prc": "Percent",
	"#Pxl": "Pixels",
	"#Mlm": "Millimeters",
	"#Pnt": "Points",
}

// parseUnitDouble decodes a "UntF" value: a 4-byte unit code followed
// by an 8-byte double, used throughout warp and placement descriptors
// (e.g. a smart object's "Rslt" resolution, in Pixels-per-inch).
func (d *DescriptorParser) parseUnitDouble() (map[string]interface{}, error) {
	unitID, err := d.readFixed(4)
	if err != nil {
		return nil, err
	}
	value, err := d.readFloat64()
	if err != nil {
		return nil, err
	}
	unit := unitKindNames[unitID]
	if unit == "" {
		unit = "Unknown"
	}
	return map[string]interface{}{"id": unitID, "unit": unit, "value": value}, nil
}

// readUnicodeString reads a UTF-16BE string: a uint32 code-unit count
// followed by that many 16-bit units, decoded with surrogate-pair
// awareness via unicode/utf16 rather than a naive rune-per-unit cast.
func (d *DescriptorParser) readUnicodeString() (string, error) {
	length, err := d.readUint32()
	if err != nil {
		return "", err
	}
	if length == 0 {
		return "", nil
	}
	units := make([]uint16, length)
	for i := range units {
		units[i], err = d.readUint16()
		if err != nil {
			return "", err
		}
	}
	return decodeUTF16BE(units), nil
}

func (d *DescriptorParser) readFixed(n int) (string, error) {
	buf, err := d.readBytes(n)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

func (d *DescriptorParser) readBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.reader, buf); err != nil {
		return nil, errors.Wrap(ErrIO, err.Error())
	}
	return buf, nil
}

func (d *DescriptorParser) readUint16() (uint16, error) {
	var v uint16
	if err := binary.Read(d.reader, binary.BigEndian, &v); err != nil {
		return 0, errors.Wrap(ErrIO, err.Error())
	}
	return v, nil
}

func (d *DescriptorParser) readUint32() (uint32, error) {
	var v uint32
	if err := binary.Read(d.reader, binary.BigEndian, &v); err != nil {
		return 0, errors.Wrap(ErrIO, err.Error())
	}
	return v, nil
}

func (d *DescriptorParser) readInt32() (int32, error) {
	var v int32
	if err := binary.Read(d.reader, binary.BigEndian, &v); err != nil {
		return 0, errors.Wrap(ErrIO, err.Error())
	}
	return v, nil
}

func (d *DescriptorParser) readInt64() (int64, error) {
	var v int64
	if err := binary.Read(d.reader, binary.BigEndian, &v); err != nil {
		return 0, errors.Wrap(ErrIO, err.Error())
	}
	return v, nil
}

func (d *DescriptorParser) readFloat64() (float64, error) {
	var v float64
	if err := binary.Read(d.reader, binary.BigEndian, &v); err != nil {
		return 0, errors.Wrap(ErrIO, err.Error())
	}
	return v, nil
}
