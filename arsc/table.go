// Package arsc reads string resources out of a compiled Android resource
// table (resources.arsc).
//
// Only what is needed to resolve named string values is decoded: the global
// string pool, package headers with their type and key pools, and the type
// chunks holding entries. Complex (bag) entries and non-string values are
// skipped.
package arsc

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/jrsteele09/go-connectedcar/internal/errors"
)

const (
	chunkStringPool = 0x0001
	chunkTable      = 0x0002
	chunkPackage    = 0x0200
	chunkType       = 0x0201

	chunkHeaderSize   = 8
	tableHeaderSize   = 12
	packageHeaderSize = 284 // without typeIdOffset
	typeHeaderSize    = 20  // up to, not including, the config

	appPackageID = 0x7f
	stringType   = "string"
)

const (
	typeFlagSparse   = 0x01
	typeFlagOffset16 = 0x02

	entryFlagComplex = 0x0001
	entryFlagCompact = 0x0008

	noEntry32 = 0xffffffff
	noEntry16 = 0xffff

	valueTypeString = 0x03
)

var le = binary.LittleEndian

// Table is a parsed resource table.
type Table struct {
	strings  []string
	packages []*Package
}

// Package is one resource package of a table.
type Package struct {
	ID   uint32
	Name string

	typeNames    []string
	keyNames     map[string]uint32
	typeIDOffset uint32
	types        map[uint8][]*typeChunk
}

type typeChunk struct {
	defaultConfig bool
	entries       []entry
}

type entry struct {
	key      uint32
	dataType uint8
	data     uint32
}

type chunkHeader struct {
	Type       uint16
	HeaderSize uint16
	Size       uint32
}

// formatErr builds the error returned for every structural violation.
func formatErr(format string, args ...interface{}) error {
	return errors.New(errors.KindFormat, "arsc.Parse", format, args...)
}

// readChunkHeader reads the chunk header at off and checks that the chunk
// fits inside data.
func readChunkHeader(data []byte, off int) (chunkHeader, error) {
	if off < 0 || off+chunkHeaderSize > len(data) {
		return chunkHeader{}, formatErr("chunk header at offset %d out of bounds", off)
	}
	h := chunkHeader{
		Type:       le.Uint16(data[off:]),
		HeaderSize: le.Uint16(data[off+2:]),
		Size:       le.Uint32(data[off+4:]),
	}
	if h.HeaderSize < chunkHeaderSize || uint32(h.HeaderSize) > h.Size {
		return chunkHeader{}, formatErr("chunk 0x%04x at offset %d has invalid header size %d", h.Type, off, h.HeaderSize)
	}
	if uint64(off)+uint64(h.Size) > uint64(len(data)) {
		return chunkHeader{}, formatErr("chunk 0x%04x at offset %d overruns table (%d > %d)", h.Type, off, off+int(h.Size), len(data))
	}
	return h, nil
}

// Parse decodes a compiled resource table.
func Parse(data []byte) (*Table, error) {
	h, err := readChunkHeader(data, 0)
	if err != nil {
		return nil, err
	}
	if h.Type != chunkTable {
		return nil, formatErr("bad magic 0x%04x, expected resource table 0x%04x", h.Type, chunkTable)
	}
	if h.HeaderSize < tableHeaderSize {
		return nil, formatErr("table header too small (%d)", h.HeaderSize)
	}
	packageCount := le.Uint32(data[8:])
	table := &Table{}
	sawPool := false

	end := int(h.Size)
	for off := int(h.HeaderSize); off < end; {
		child, err := readChunkHeader(data[:end], off)
		if err != nil {
			return nil, err
		}
		chunk := data[off : off+int(child.Size)]
		switch child.Type {
		case chunkStringPool:
			if sawPool {
				return nil, formatErr("unexpected second global string pool at offset %d", off)
			}
			if table.strings, err = parseStringPool(chunk); err != nil {
				return nil, err
			}
			sawPool = true
		case chunkPackage:
			pkg, err := parsePackage(chunk)
			if err != nil {
				return nil, err
			}
			table.packages = append(table.packages, pkg)
		}
		off += int(child.Size)
	}

	if !sawPool {
		return nil, formatErr("missing global string pool")
	}
	if uint32(len(table.packages)) != packageCount {
		return nil, formatErr("header declares %d packages, found %d", packageCount, len(table.packages))
	}
	return table, nil
}

func parsePackage(chunk []byte) (*Package, error) {
	h, _ := readChunkHeader(chunk, 0)
	if h.HeaderSize < packageHeaderSize {
		return nil, formatErr("package header too small (%d)", h.HeaderSize)
	}
	pkg := &Package{
		ID:    le.Uint32(chunk[8:]),
		Name:  decodeUTF16Z(chunk[12:268]),
		types: make(map[uint8][]*typeChunk),
	}
	if h.HeaderSize >= packageHeaderSize+4 {
		pkg.typeIDOffset = le.Uint32(chunk[284:])
	}

	typeStrings := int(le.Uint32(chunk[268:]))
	keyStrings := int(le.Uint32(chunk[276:]))
	var err error
	if pkg.typeNames, err = parsePoolAt(chunk, typeStrings, "type"); err != nil {
		return nil, err
	}
	keys, err := parsePoolAt(chunk, keyStrings, "key")
	if err != nil {
		return nil, err
	}
	pkg.keyNames = make(map[string]uint32, len(keys))
	for i, k := range keys {
		if _, dup := pkg.keyNames[k]; !dup {
			pkg.keyNames[k] = uint32(i)
		}
	}

	for off := int(h.HeaderSize); off < len(chunk); {
		child, err := readChunkHeader(chunk, off)
		if err != nil {
			return nil, err
		}
		if child.Type == chunkType {
			id, tc, err := parseType(chunk[off : off+int(child.Size)])
			if err != nil {
				return nil, err
			}
			pkg.types[id] = append(pkg.types[id], tc)
		}
		off += int(child.Size)
	}
	return pkg, nil
}

func parsePoolAt(chunk []byte, off int, what string) ([]string, error) {
	h, err := readChunkHeader(chunk, off)
	if err != nil {
		return nil, err
	}
	if h.Type != chunkStringPool {
		return nil, formatErr("%s strings at offset %d are not a string pool (0x%04x)", what, off, h.Type)
	}
	return parseStringPool(chunk[off : off+int(h.Size)])
}

func parseType(chunk []byte) (uint8, *typeChunk, error) {
	h, _ := readChunkHeader(chunk, 0)
	if h.HeaderSize < typeHeaderSize+4 {
		return 0, nil, formatErr("type header too small (%d)", h.HeaderSize)
	}
	id := chunk[8]
	flags := chunk[9]
	entryCount := int(le.Uint32(chunk[12:]))
	entriesStart := int(le.Uint32(chunk[16:]))

	configSize := int(le.Uint32(chunk[typeHeaderSize:]))
	if configSize < 4 || typeHeaderSize+configSize > int(h.HeaderSize) {
		return 0, nil, formatErr("type %d has invalid config size %d", id, configSize)
	}
	tc := &typeChunk{defaultConfig: isZero(chunk[typeHeaderSize+4 : typeHeaderSize+configSize])}

	offsets, err := entryOffsets(chunk[h.HeaderSize:], flags, entryCount)
	if err != nil {
		return 0, nil, err
	}
	if entriesStart < int(h.HeaderSize) || entriesStart > len(chunk) {
		return 0, nil, formatErr("type %d entries start %d out of bounds", id, entriesStart)
	}
	entries := chunk[entriesStart:]
	for _, off := range offsets {
		e, ok, err := parseEntry(entries, off)
		if err != nil {
			return 0, nil, err
		}
		if ok {
			tc.entries = append(tc.entries, e)
		}
	}
	return id, tc, nil
}

func entryOffsets(raw []byte, flags uint8, count int) ([]int, error) {
	width := 4
	if flags&typeFlagSparse == 0 && flags&typeFlagOffset16 != 0 {
		width = 2
	}
	if count < 0 || count > len(raw)/width {
		return nil, formatErr("entry table of %d entries does not fit in %d bytes", count, len(raw))
	}
	offsets := make([]int, 0, count)
	switch {
	case flags&typeFlagSparse != 0:
		for i := 0; i < count; i++ {
			offsets = append(offsets, int(le.Uint16(raw[i*4+2:]))*4)
		}
	case flags&typeFlagOffset16 != 0:
		for i := 0; i < count; i++ {
			if v := le.Uint16(raw[i*2:]); v != noEntry16 {
				offsets = append(offsets, int(v)*4)
			}
		}
	default:
		for i := 0; i < count; i++ {
			if v := le.Uint32(raw[i*4:]); v != noEntry32 {
				offsets = append(offsets, int(v))
			}
		}
	}
	return offsets, nil
}

// parseEntry decodes the entry at off. ok is false for entries that can
// never hold a string value.
func parseEntry(entries []byte, off int) (e entry, ok bool, err error) {
	if off+8 > len(entries) {
		return entry{}, false, formatErr("entry at offset %d out of bounds", off)
	}
	size := le.Uint16(entries[off:])
	flags := le.Uint16(entries[off+2:])

	if flags&entryFlagCompact != 0 {
		return entry{key: uint32(size), dataType: uint8(flags >> 8), data: le.Uint32(entries[off+4:])}, true, nil
	}
	if flags&entryFlagComplex != 0 {
		return entry{}, false, nil
	}
	e.key = le.Uint32(entries[off+4:])
	v := off + int(size)
	if v+8 > len(entries) {
		return entry{}, false, formatErr("value at offset %d out of bounds", v)
	}
	e.dataType = entries[v+3]
	e.data = le.Uint32(entries[v+4:])
	return e, true, nil
}

func isZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// Packages returns the packages of the table in file order.
func (t *Table) Packages() []*Package {
	return t.packages
}

// MainPackage returns the application package: the one with id 0x7f, or the
// first package when none carries that id.
func (t *Table) MainPackage() (*Package, bool) {
	for _, p := range t.packages {
		if p.ID == appPackageID {
			return p, true
		}
	}
	if len(t.packages) == 0 {
		return nil, false
	}
	return t.packages[0], true
}

// Package returns the package named name.
func (t *Table) Package(name string) (*Package, bool) {
	for _, p := range t.packages {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// ResolveString returns the value of the string resource key declared in
// package packageName. The default configuration wins over qualified ones.
// There is no fallback to other packages.
func (t *Table) ResolveString(packageName, key string) (string, bool) {
	pkg, ok := t.Package(packageName)
	if !ok {
		return "", false
	}
	typeID, ok := pkg.typeID(stringType)
	if !ok {
		return "", false
	}
	keyIdx, ok := pkg.keyNames[key]
	if !ok {
		return "", false
	}

	chunks := append([]*typeChunk(nil), pkg.types[typeID]...)
	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].defaultConfig && !chunks[j].defaultConfig
	})
	for _, tc := range chunks {
		for _, e := range tc.entries {
			if e.key != keyIdx || e.dataType != valueTypeString {
				continue
			}
			if int(e.data) >= len(t.strings) {
				return "", false
			}
			return t.strings[e.data], true
		}
	}
	return "", false
}

// typeID maps a type name to the id used by its type chunks.
func (p *Package) typeID(name string) (uint8, bool) {
	for i, n := range p.typeNames {
		if n == name {
			return uint8(uint32(i) + 1 + p.typeIDOffset), true
		}
	}
	return 0, false
}

func (p *Package) String() string {
	return fmt.Sprintf("%s (0x%02x)", p.Name, p.ID)
}
