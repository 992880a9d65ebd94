package clrmeta

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const metadataSignature = 0x424A5342 // "BSJB"

// Metadata table numbers.
const (
	tableModule                 = 0x00
	tableTypeRef                = 0x01
	tableTypeDef                = 0x02
	tableFieldPtr               = 0x03
	tableField                  = 0x04
	tableMethodPtr              = 0x05
	tableMethodDef              = 0x06
	tableParamPtr               = 0x07
	tableParam                  = 0x08
	tableInterfaceImpl          = 0x09
	tableMemberRef              = 0x0A
	tableConstant               = 0x0B
	tableCustomAttribute        = 0x0C
	tableFieldMarshal           = 0x0D
	tableDeclSecurity           = 0x0E
	tableClassLayout            = 0x0F
	tableFieldLayout            = 0x10
	tableStandAloneSig          = 0x11
	tableEventMap               = 0x12
	tableEventPtr               = 0x13
	tableEvent                  = 0x14
	tablePropertyMap            = 0x15
	tablePropertyPtr            = 0x16
	tableProperty               = 0x17
	tableMethodSemantics        = 0x18
	tableMethodImpl             = 0x19
	tableModuleRef              = 0x1A
	tableTypeSpec               = 0x1B
	tableImplMap                = 0x1C
	tableFieldRVA               = 0x1D
	tableENCLog                 = 0x1E
	tableENCMap                 = 0x1F
	tableAssembly               = 0x20
	tableAssemblyProcessor      = 0x21
	tableAssemblyOS             = 0x22
	tableAssemblyRef            = 0x23
	tableAssemblyRefProcessor   = 0x24
	tableAssemblyRefOS          = 0x25
	tableFile                   = 0x26
	tableExportedType           = 0x27
	tableManifestResource       = 0x28
	tableNestedClass            = 0x29
	tableGenericParam           = 0x2A
	tableMethodSpec             = 0x2B
	tableGenericParamConstraint = 0x2C
)

// HeapSizes bits.
const (
	heapWideStrings = 0x01
	heapWideGUID    = 0x02
	heapWideBlob    = 0x04
	heapExtraData   = 0x40
)

// codedIndex is a column that may point into any of tables, with the table
// chosen by the low bits.
type codedIndex struct {
	bits   uint
	tables []int
}

var (
	resolutionScope    = codedIndex{2, []int{tableModule, tableModuleRef, tableAssemblyRef, tableTypeRef}}
	typeDefOrRef       = codedIndex{2, []int{tableTypeDef, tableTypeRef, tableTypeSpec}}
	hasConstant        = codedIndex{2, []int{tableField, tableParam, tableProperty}}
	hasFieldMarshal    = codedIndex{1, []int{tableField, tableParam}}
	hasDeclSecurity    = codedIndex{2, []int{tableTypeDef, tableMethodDef, tableAssembly}}
	memberRefParent    = codedIndex{3, []int{tableTypeDef, tableTypeRef, tableModuleRef, tableMethodDef, tableTypeSpec}}
	hasSemantics       = codedIndex{1, []int{tableEvent, tableProperty}}
	methodDefOrRef     = codedIndex{1, []int{tableMethodDef, tableMemberRef}}
	memberForwarded    = codedIndex{1, []int{tableField, tableMethodDef}}
	implementation     = codedIndex{2, []int{tableFile, tableAssemblyRef, tableExportedType}}
	attributeType      = codedIndex{3, []int{tableMethodDef, tableMemberRef}}
	hasCustomAttribute = codedIndex{5, []int{
		tableMethodDef, tableField, tableTypeRef, tableTypeDef, tableParam,
		tableInterfaceImpl, tableMemberRef, tableModule, tableDeclSecurity,
		tableProperty, tableEvent, tableStandAloneSig, tableModuleRef,
		tableTypeSpec, tableAssembly, tableAssemblyRef, tableFile,
		tableExportedType, tableManifestResource, tableGenericParam,
		tableGenericParamConstraint, tableMethodSpec,
	}}
)

// layout holds the row counts and column widths of one tables stream.
type layout struct {
	rows            [64]uint32
	str, guid, blob int
}

func (l *layout) index(table int) int {
	if l.rows[table] < 1<<16 {
		return 2
	}
	return 4
}

// list is the width of a column that starts a run in table, which goes
// through ptr when the stream carries that indirection table.
func (l *layout) list(table, ptr int) int {
	if l.rows[ptr] > 0 {
		return l.index(ptr)
	}
	return l.index(table)
}

func (l *layout) coded(c codedIndex) int {
	for _, t := range c.tables {
		if l.rows[t] >= 1<<(16-c.bits) {
			return 4
		}
	}
	return 2
}

// rowSize is the byte width of one row of table. Only tables up to and
// including NestedClass are known.
func (l *layout) rowSize(table int) int {
	s, g, b := l.str, l.guid, l.blob
	switch table {
	case tableModule:
		return 2 + s + 3*g
	case tableTypeRef:
		return l.coded(resolutionScope) + 2*s
	case tableTypeDef:
		return 4 + 2*s + l.coded(typeDefOrRef) + l.list(tableField, tableFieldPtr) + l.list(tableMethodDef, tableMethodPtr)
	case tableFieldPtr:
		return l.index(tableField)
	case tableField:
		return 2 + s + b
	case tableMethodPtr:
		return l.index(tableMethodDef)
	case tableMethodDef:
		return 8 + s + b + l.list(tableParam, tableParamPtr)
	case tableParamPtr:
		return l.index(tableParam)
	case tableParam:
		return 4 + s
	case tableInterfaceImpl:
		return l.index(tableTypeDef) + l.coded(typeDefOrRef)
	case tableMemberRef:
		return l.coded(memberRefParent) + s + b
	case tableConstant:
		return 2 + l.coded(hasConstant) + b
	case tableCustomAttribute:
		return l.coded(hasCustomAttribute) + l.coded(attributeType) + b
	case tableFieldMarshal:
		return l.coded(hasFieldMarshal) + b
	case tableDeclSecurity:
		return 2 + l.coded(hasDeclSecurity) + b
	case tableClassLayout:
		return 6 + l.index(tableTypeDef)
	case tableFieldLayout, tableFieldRVA:
		return 4 + l.index(tableField)
	case tableStandAloneSig, tableTypeSpec:
		return b
	case tableEventMap:
		return l.index(tableTypeDef) + l.list(tableEvent, tableEventPtr)
	case tableEventPtr:
		return l.index(tableEvent)
	case tableEvent:
		return 2 + s + l.coded(typeDefOrRef)
	case tablePropertyMap:
		return l.index(tableTypeDef) + l.list(tableProperty, tablePropertyPtr)
	case tablePropertyPtr:
		return l.index(tableProperty)
	case tableProperty:
		return 2 + s + b
	case tableMethodSemantics:
		return 2 + l.index(tableMethodDef) + l.coded(hasSemantics)
	case tableMethodImpl:
		return l.index(tableTypeDef) + 2*l.coded(methodDefOrRef)
	case tableModuleRef:
		return s
	case tableImplMap:
		return 2 + l.coded(memberForwarded) + s + l.index(tableModuleRef)
	case tableENCLog:
		return 8
	case tableENCMap, tableAssemblyProcessor:
		return 4
	case tableAssembly:
		return 16 + b + 2*s
	case tableAssemblyOS:
		return 12
	case tableAssemblyRef:
		return 12 + 2*b + 2*s
	case tableAssemblyRefProcessor:
		return 4 + l.index(tableAssemblyRef)
	case tableAssemblyRefOS:
		return 12 + l.index(tableAssemblyRef)
	case tableFile:
		return 4 + s + b
	case tableExportedType:
		return 8 + 2*s + l.coded(implementation)
	case tableManifestResource:
		return 8 + s + l.coded(implementation)
	case tableNestedClass:
		return 2 * l.index(tableTypeDef)
	}
	return 0
}

func (l *layout) span(table int) int {
	return int(l.rows[table]) * l.rowSize(table)
}

// parseMetadata decodes the TypeDef table from a metadata root.
func parseMetadata(blob []byte) ([]TypeDef, error) {
	streams, err := readStreams(blob)
	if err != nil {
		return nil, err
	}
	tables, ok := streams["#~"]
	if !ok {
		tables, ok = streams["#-"]
	}
	if !ok {
		return nil, fmt.Errorf("%w: no tables stream", ErrMalformedMetadata)
	}
	strs, ok := streams["#Strings"]
	if !ok {
		return nil, fmt.Errorf("%w: no #Strings heap", ErrMalformedMetadata)
	}
	return readTypeDefs(tables, strs)
}

func readStreams(blob []byte) (map[string][]byte, error) {
	r := &reader{buf: blob}
	if sig := r.u32(); r.err == nil && sig != metadataSignature {
		return nil, fmt.Errorf("%w: bad signature %#x", ErrMalformedMetadata, sig)
	}
	r.skip(8) // major, minor, reserved
	r.skip(int(r.u32()))
	r.skip(2) // flags
	count := int(r.u16())

	streams := make(map[string][]byte, count)
	for i := 0; i < count && r.err == nil; i++ {
		off, size := r.u32(), r.u32()
		name := r.paddedString()
		if r.err != nil {
			break
		}
		if uint64(off)+uint64(size) > uint64(len(blob)) {
			return nil, fmt.Errorf("%w: stream %s out of range", ErrMalformedMetadata, name)
		}
		streams[name] = blob[off : off+size]
	}
	if r.err != nil {
		return nil, r.err
	}
	return streams, nil
}

func readTypeDefs(tables, strs []byte) ([]TypeDef, error) {
	r := &reader{buf: tables}
	r.skip(6) // reserved, major, minor
	heapSizes := r.u8()
	r.skip(1)
	valid := r.u64()
	r.skip(8) // sorted
	l := layout{
		str:  heapWidth(heapSizes, heapWideStrings),
		guid: heapWidth(heapSizes, heapWideGUID),
		blob: heapWidth(heapSizes, heapWideBlob),
	}
	for i := range l.rows {
		if valid&(1<<uint(i)) != 0 {
			l.rows[i] = r.u32()
		}
	}
	if heapSizes&heapExtraData != 0 {
		r.skip(4)
	}
	if r.err != nil {
		return nil, r.err
	}

	r.skip(l.span(tableModule) + l.span(tableTypeRef))
	tail := l.rowSize(tableTypeDef) - 4 - 2*l.str
	types := make([]TypeDef, 0, l.rows[tableTypeDef])
	for i := uint32(0); i < l.rows[tableTypeDef]; i++ {
		flags := r.u32()
		name := r.index(l.str)
		ns := r.index(l.str)
		r.skip(tail)
		if r.err != nil {
			return nil, r.err
		}
		t := TypeDef{Flags: flags}
		var err error
		if t.Name, err = heapString(strs, name); err != nil {
			return nil, err
		}
		if t.Namespace, err = heapString(strs, ns); err != nil {
			return nil, err
		}
		types = append(types, t)
	}

	for table := tableTypeDef + 1; table < tableNestedClass; table++ {
		r.skip(l.span(table))
	}
	enclosing := make(map[int]int, l.rows[tableNestedClass])
	width := l.index(tableTypeDef)
	for i := uint32(0); i < l.rows[tableNestedClass]; i++ {
		nested, outer := r.index(width), r.index(width)
		if r.err != nil {
			return nil, r.err
		}
		if !validRow(nested, len(types)) || !validRow(outer, len(types)) {
			return nil, fmt.Errorf("%w: nested class row %d points outside the TypeDef table", ErrMalformedMetadata, i+1)
		}
		enclosing[int(nested)-1] = int(outer) - 1
	}
	if err := resolveDeclaringTypes(types, enclosing); err != nil {
		return nil, err
	}
	return types, nil
}

func validRow(row uint32, count int) bool {
	return row >= 1 && int(row) <= count
}

// resolveDeclaringTypes sets DeclaringType on every nested type to the
// dotted name of its enclosing type.
func resolveDeclaringTypes(types []TypeDef, enclosing map[int]int) error {
	var fullName func(i, depth int) (string, error)
	fullName = func(i, depth int) (string, error) {
		outer, ok := enclosing[i]
		if !ok {
			return types[i].FullName(), nil
		}
		if depth > len(types) {
			return "", fmt.Errorf("%w: nesting cycle at %s", ErrMalformedMetadata, types[i].Name)
		}
		prefix, err := fullName(outer, depth+1)
		if err != nil {
			return "", err
		}
		return prefix + "." + types[i].Name, nil
	}
	for i, outer := range enclosing {
		name, err := fullName(outer, 1)
		if err != nil {
			return err
		}
		types[i].DeclaringType = name
	}
	return nil
}

func heapWidth(heapSizes, bit byte) int {
	if heapSizes&bit != 0 {
		return 4
	}
	return 2
}

func heapString(heap []byte, idx uint32) (string, error) {
	if uint64(idx) >= uint64(len(heap)) {
		if idx == 0 {
			return "", nil
		}
		return "", fmt.Errorf("%w: string index %d past heap end %d", ErrMalformedMetadata, idx, len(heap))
	}
	s := heap[idx:]
	if end := bytes.IndexByte(s, 0); end >= 0 {
		s = s[:end]
	}
	return string(s), nil
}

// reader is a little-endian cursor; the first out-of-range read sticks in err
// and later reads return zero values.
type reader struct {
	buf []byte
	off int
	err error
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || n > len(r.buf)-r.off {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d of %d", ErrMalformedMetadata, n, r.off, len(r.buf))
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) skip(n int) { r.take(n) }

func (r *reader) u8() byte {
	if b := r.take(1); b != nil {
		return b[0]
	}
	return 0
}

func (r *reader) u16() uint16 {
	if b := r.take(2); b != nil {
		return binary.LittleEndian.Uint16(b)
	}
	return 0
}

func (r *reader) u32() uint32 {
	if b := r.take(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (r *reader) u64() uint64 {
	if b := r.take(8); b != nil {
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}

func (r *reader) index(width int) uint32 {
	if width == 4 {
		return r.u32()
	}
	return uint32(r.u16())
}

// paddedString reads a NUL-terminated name padded to a 4-byte boundary.
func (r *reader) paddedString() string {
	if r.err != nil {
		return ""
	}
	end := bytes.IndexByte(r.buf[r.off:], 0)
	if end < 0 {
		r.err = fmt.Errorf("%w: unterminated stream name", ErrMalformedMetadata)
		return ""
	}
	name := string(r.buf[r.off : r.off+end])
	r.skip((end + 4) &^ 3)
	return name
}
