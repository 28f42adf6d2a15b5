// Package arsctest assembles compiled resource tables for tests.
package arsctest

import (
	"bytes"
	"encoding/binary"
	"unicode/utf16"
)

const configSize = 64

// Package describes one resource package and its string resources.
type Package struct {
	ID      uint32
	Name    string
	strings []stringRes
}

type stringRes struct {
	key, value    string
	lang, country string
}

// NewPackage returns an application package (id 0x7f).
func NewPackage(name string) *Package {
	return &Package{ID: 0x7f, Name: name}
}

// String adds a string resource in the default configuration.
func (p *Package) String(key, value string) *Package {
	p.strings = append(p.strings, stringRes{key: key, value: value})
	return p
}

// LocalizedString adds a string resource qualified by language and country.
func (p *Package) LocalizedString(key, value, lang, country string) *Package {
	p.strings = append(p.strings, stringRes{key: key, value: value, lang: lang, country: country})
	return p
}

// Bytes builds a table holding only this package.
func (p *Package) Bytes() []byte {
	return Build(p)
}

// Build assembles a table: a UTF-8 global string pool followed by packages
// whose type and key pools are UTF-16.
func Build(pkgs ...*Package) []byte {
	var values []string
	for _, p := range pkgs {
		for _, s := range p.strings {
			values = append(values, s.value)
		}
	}

	var body bytes.Buffer
	body.Write(stringPool(values, true))
	valueIdx := 0
	for _, p := range pkgs {
		body.Write(p.chunk(&valueIdx))
	}

	var out bytes.Buffer
	writeHeader(&out, 0x0002, 12, uint32(12+body.Len()))
	put32(&out, uint32(len(pkgs)))
	out.Write(body.Bytes())
	return out.Bytes()
}

type config struct{ lang, country string }

func (p *Package) chunk(valueIdx *int) []byte {
	var keys []string
	keyIdx := map[string]int{}
	var configs []config
	seen := map[config]bool{}
	for _, s := range p.strings {
		if _, ok := keyIdx[s.key]; !ok {
			keyIdx[s.key] = len(keys)
			keys = append(keys, s.key)
		}
		c := config{s.lang, s.country}
		if !seen[c] {
			seen[c] = true
			configs = append(configs, c)
		}
	}

	// "attr" first so the string type gets id 2.
	typePool := stringPool([]string{"attr", "string"}, false)
	keyPool := stringPool(keys, false)

	var children bytes.Buffer
	children.Write(typePool)
	children.Write(keyPool)
	children.Write(typeSpec(2, len(keys)))

	start := *valueIdx
	for _, c := range configs {
		values := make(map[int]uint32)
		idx := start
		for _, s := range p.strings {
			if (config{s.lang, s.country}) == c {
				values[keyIdx[s.key]] = uint32(idx)
			}
			idx++
		}
		children.Write(typeChunk(2, len(keys), c, values))
	}
	*valueIdx = start + len(p.strings)

	const headerSize = 288
	var out bytes.Buffer
	writeHeader(&out, 0x0200, headerSize, uint32(headerSize+children.Len()))
	put32(&out, p.ID)
	name := make([]uint16, 128)
	copy(name, utf16.Encode([]rune(p.Name)))
	for _, u := range name {
		put16(&out, u)
	}
	put32(&out, headerSize)                       // typeStrings
	put32(&out, 0)                                // lastPublicType
	put32(&out, uint32(headerSize+len(typePool))) // keyStrings
	put32(&out, 0)                                // lastPublicKey
	put32(&out, 0)                                // typeIdOffset
	out.Write(children.Bytes())
	return out.Bytes()
}

func typeSpec(id uint8, entryCount int) []byte {
	var out bytes.Buffer
	writeHeader(&out, 0x0202, 16, uint32(16+4*entryCount))
	out.WriteByte(id)
	out.WriteByte(0)
	put16(&out, 0)
	put32(&out, uint32(entryCount))
	for i := 0; i < entryCount; i++ {
		put32(&out, 0)
	}
	return out.Bytes()
}

func typeChunk(id uint8, entryCount int, c config, values map[int]uint32) []byte {
	headerSize := 20 + configSize
	entriesStart := headerSize + 4*entryCount

	var offsets, entries bytes.Buffer
	for i := 0; i < entryCount; i++ {
		v, ok := values[i]
		if !ok {
			put32(&offsets, 0xffffffff)
			continue
		}
		put32(&offsets, uint32(entries.Len()))
		put16(&entries, 8) // entry size
		put16(&entries, 0) // flags
		put32(&entries, uint32(i))
		put16(&entries, 8) // value size
		entries.WriteByte(0)
		entries.WriteByte(0x03) // string
		put32(&entries, v)
	}

	var out bytes.Buffer
	writeHeader(&out, 0x0201, uint16(headerSize), uint32(entriesStart+entries.Len()))
	out.WriteByte(id)
	out.WriteByte(0)
	put16(&out, 0)
	put32(&out, uint32(entryCount))
	put32(&out, uint32(entriesStart))

	cfg := make([]byte, configSize)
	binary.LittleEndian.PutUint32(cfg, configSize)
	copy(cfg[8:10], c.lang)
	copy(cfg[10:12], c.country)
	out.Write(cfg)
	out.Write(offsets.Bytes())
	out.Write(entries.Bytes())
	return out.Bytes()
}

func stringPool(values []string, utf8 bool) []byte {
	const headerSize = 28
	var offsets, data bytes.Buffer
	for _, s := range values {
		put32(&offsets, uint32(data.Len()))
		units := utf16.Encode([]rune(s))
		if utf8 {
			writeLength8(&data, len(units))
			writeLength8(&data, len(s))
			data.WriteString(s)
			data.WriteByte(0)
			continue
		}
		put16(&data, uint16(len(units)))
		for _, u := range units {
			put16(&data, u)
		}
		put16(&data, 0)
	}
	for data.Len()%4 != 0 {
		data.WriteByte(0)
	}

	var flags uint32
	if utf8 {
		flags = 0x0100
	}
	stringsStart := headerSize + offsets.Len()
	var out bytes.Buffer
	writeHeader(&out, 0x0001, headerSize, uint32(stringsStart+data.Len()))
	put32(&out, uint32(len(values)))
	put32(&out, 0) // styleCount
	put32(&out, flags)
	put32(&out, uint32(stringsStart))
	put32(&out, 0) // stylesStart
	out.Write(offsets.Bytes())
	out.Write(data.Bytes())
	return out.Bytes()
}

func writeLength8(b *bytes.Buffer, n int) {
	if n > 0x7f {
		b.WriteByte(byte(0x80 | n>>8))
	}
	b.WriteByte(byte(n))
}

func writeHeader(b *bytes.Buffer, typ, headerSize uint16, size uint32) {
	put16(b, typ)
	put16(b, headerSize)
	put32(b, size)
}

func put16(b *bytes.Buffer, v uint16) {
	_ = binary.Write(b, binary.LittleEndian, v)
}

func put32(b *bytes.Buffer, v uint32) {
	_ = binary.Write(b, binary.LittleEndian, v)
}
