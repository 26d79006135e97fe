package scan

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strings"
)

// classMagic is the class file signature.
const classMagic = 0xCAFEBABE

// Constant pool tags (JVMS §4.4).
const (
	tagUtf8               = 1
	tagInteger            = 3
	tagFloat              = 4
	tagLong               = 5
	tagDouble             = 6
	tagClass              = 7
	tagString             = 8
	tagFieldref           = 9
	tagMethodref          = 10
	tagInterfaceMethodref = 11
	tagNameAndType        = 12
	tagMethodHandle       = 15
	tagMethodType         = 16
	tagDynamic            = 17
	tagInvokeDynamic      = 18
	tagModule             = 19
	tagPackage            = 20
)

// ParseClassFile extracts a Unit from raw class file bytes: the unit name
// from this_class and one reference per distinct CONSTANT_Class entry.
// Array descriptors are unwrapped to their element class; primitive arrays
// and self-references are skipped. Unit size is the byte length of the file.
func ParseClassFile(data []byte) (Unit, error) {
	r := &byteReader{data: data}

	magic, err := r.u4()
	if err != nil {
		return Unit{}, err
	}

	if magic != classMagic {
		return Unit{}, fmt.Errorf("bad magic 0x%08X", magic)
	}

	// minor_version, major_version
	if _, err := r.u4(); err != nil {
		return Unit{}, err
	}

	cpCount, err := r.u2()
	if err != nil {
		return Unit{}, err
	}

	utf8s := make(map[int]string)
	classNameIndexes := make(map[int]int) // pool index → utf8 index

	for i := 1; i < int(cpCount); i++ {
		tag, tagErr := r.u1()
		if tagErr != nil {
			return Unit{}, fmt.Errorf("constant pool entry %d: %w", i, tagErr)
		}

		switch tag {
		case tagUtf8:
			length, lenErr := r.u2()
			if lenErr != nil {
				return Unit{}, lenErr
			}

			raw, rawErr := r.bytes(int(length))
			if rawErr != nil {
				return Unit{}, rawErr
			}

			utf8s[i] = string(raw)
		case tagClass:
			nameIdx, idxErr := r.u2()
			if idxErr != nil {
				return Unit{}, idxErr
			}

			classNameIndexes[i] = int(nameIdx)
		case tagString, tagMethodType, tagModule, tagPackage:
			if err := r.skip(2); err != nil {
				return Unit{}, err
			}
		case tagMethodHandle:
			if err := r.skip(3); err != nil {
				return Unit{}, err
			}
		case tagInteger, tagFloat, tagFieldref, tagMethodref,
			tagInterfaceMethodref, tagNameAndType, tagDynamic, tagInvokeDynamic:
			if err := r.skip(4); err != nil {
				return Unit{}, err
			}
		case tagLong, tagDouble:
			if err := r.skip(8); err != nil {
				return Unit{}, err
			}

			// 8-byte constants occupy two pool slots.
			i++
		default:
			return Unit{}, fmt.Errorf("constant pool entry %d: unsupported tag %d", i, tag)
		}
	}

	// access_flags
	if _, err := r.u2(); err != nil {
		return Unit{}, err
	}

	thisClass, err := r.u2()
	if err != nil {
		return Unit{}, err
	}

	name, err := resolveClassName(int(thisClass), classNameIndexes, utf8s)
	if err != nil {
		return Unit{}, fmt.Errorf("resolving this_class: %w", err)
	}

	refs := make(map[string]struct{})

	for idx := range classNameIndexes {
		if idx == int(thisClass) {
			continue
		}

		ref, refErr := resolveClassName(idx, classNameIndexes, utf8s)
		if refErr != nil {
			return Unit{}, fmt.Errorf("resolving class reference: %w", refErr)
		}

		ref, ok := normalizeClassName(ref)
		if !ok || ref == name {
			continue
		}

		refs[ref] = struct{}{}
	}

	sorted := make([]string, 0, len(refs))
	for ref := range refs {
		sorted = append(sorted, ref)
	}

	sort.Strings(sorted)

	return Unit{Name: name, Size: len(data), Refs: sorted}, nil
}

// resolveClassName follows a CONSTANT_Class entry to its dotted name.
func resolveClassName(poolIdx int, classes map[int]int, utf8s map[int]string) (string, error) {
	nameIdx, ok := classes[poolIdx]
	if !ok {
		return "", fmt.Errorf("pool index %d is not a class entry", poolIdx)
	}

	raw, ok := utf8s[nameIdx]
	if !ok {
		return "", fmt.Errorf("class entry %d points to missing utf8 %d", poolIdx, nameIdx)
	}

	return strings.ReplaceAll(raw, "/", "."), nil
}

// normalizeClassName unwraps array descriptors to the element class.
// Primitive arrays have no class to reference and are dropped.
func normalizeClassName(name string) (string, bool) {
	if !strings.HasPrefix(name, "[") {
		return name, true
	}

	name = strings.TrimLeft(name, "[")

	if strings.HasPrefix(name, "L") && strings.HasSuffix(name, ";") {
		return name[1 : len(name)-1], true
	}

	return "", false
}

// byteReader is a bounds-checked big-endian reader over class file bytes.
type byteReader struct {
	data []byte
	off  int
}

func (r *byteReader) bytes(n int) ([]byte, error) {
	if r.off+n > len(r.data) {
		return nil, fmt.Errorf("truncated class file at offset %d", r.off)
	}

	b := r.data[r.off : r.off+n]
	r.off += n

	return b, nil
}

func (r *byteReader) skip(n int) error {
	_, err := r.bytes(n)

	return err
}

func (r *byteReader) u1() (uint8, error) {
	b, err := r.bytes(1)
	if err != nil {
		return 0, err
	}

	return b[0], nil
}

func (r *byteReader) u2() (uint16, error) {
	b, err := r.bytes(2)
	if err != nil {
		return 0, err
	}

	return binary.BigEndian.Uint16(b), nil
}

func (r *byteReader) u4() (uint32, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}

	return binary.BigEndian.Uint32(b), nil
}
