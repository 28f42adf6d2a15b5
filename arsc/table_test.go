package arsc_test

import (
	"encoding/binary"
	"testing"

	"github.com/jrsteele09/go-connectedcar/arsc"
	"github.com/jrsteele09/go-connectedcar/arsc/arsctest"
	"github.com/jrsteele09/go-connectedcar/internal/errors"
	"github.com/stretchr/testify/require"
)

const testPackage = "com.psa.mym.mypeugeot"

func peugeotTable() []byte {
	return arsctest.NewPackage(testPackage).
		String("HOST_BRANDID_PROD", "https://id-dcr.peugeot.com").
		String("HOST_PSA_API_PROD", "https://api.groupe-psa.com").
		String("nologin_siteCode", "AP_FR_ESP").
		LocalizedString("nologin_siteCode", "AP_DE_ESP", "de", "DE").
		String("app_name", "MYPEUGEOT – Élan").
		Bytes()
}

func TestParseAndResolve(t *testing.T) {
	table, err := arsc.Parse(peugeotTable())
	require.NoError(t, err)

	pkg, ok := table.MainPackage()
	require.True(t, ok)
	require.Equal(t, testPackage, pkg.Name)
	require.Equal(t, uint32(0x7f), pkg.ID)

	t.Run("resolves default configuration", func(t *testing.T) {
		v, ok := table.ResolveString(testPackage, "HOST_BRANDID_PROD")
		require.True(t, ok)
		require.Equal(t, "https://id-dcr.peugeot.com", v)

		v, ok = table.ResolveString(testPackage, "HOST_PSA_API_PROD")
		require.True(t, ok)
		require.Equal(t, "https://api.groupe-psa.com", v)
	})

	t.Run("default configuration wins over localized value", func(t *testing.T) {
		v, ok := table.ResolveString(testPackage, "nologin_siteCode")
		require.True(t, ok)
		require.Equal(t, "AP_FR_ESP", v)
	})

	t.Run("non ascii value", func(t *testing.T) {
		v, ok := table.ResolveString(testPackage, "app_name")
		require.True(t, ok)
		require.Equal(t, "MYPEUGEOT – Élan", v)
	})

	t.Run("missing key", func(t *testing.T) {
		_, ok := table.ResolveString(testPackage, "HOST_UNKNOWN")
		require.False(t, ok)
	})

	t.Run("no fallback across packages", func(t *testing.T) {
		_, ok := table.ResolveString("com.psa.mym.myopel", "HOST_BRANDID_PROD")
		require.False(t, ok)
	})
}

func TestLocalizedOnlyValue(t *testing.T) {
	data := arsctest.NewPackage(testPackage).
		LocalizedString("greeting", "Hallo", "de", "DE").
		Bytes()
	table, err := arsc.Parse(data)
	require.NoError(t, err)

	v, ok := table.ResolveString(testPackage, "greeting")
	require.True(t, ok)
	require.Equal(t, "Hallo", v)
}

func TestMainPackageSelection(t *testing.T) {
	framework := arsctest.NewPackage("android")
	framework.ID = 0x01
	framework.String("ok", "OK")
	app := arsctest.NewPackage("com.psa.mym.myds").String("HOST_BRANDID_PROD", "https://id-dcr.driveds.com")

	table, err := arsc.Parse(arsctest.Build(framework, app))
	require.NoError(t, err)
	require.Len(t, table.Packages(), 2)

	pkg, ok := table.MainPackage()
	require.True(t, ok)
	require.Equal(t, "com.psa.mym.myds", pkg.Name)

	v, ok := table.ResolveString("android", "ok")
	require.True(t, ok)
	require.Equal(t, "OK", v)
	_, ok = table.ResolveString("android", "HOST_BRANDID_PROD")
	require.False(t, ok)
}

func TestParseErrors(t *testing.T) {
	valid := peugeotTable()

	t.Run("bad magic", func(t *testing.T) {
		data := append([]byte(nil), valid...)
		binary.LittleEndian.PutUint16(data, 0x0003)
		_, err := arsc.Parse(data)
		require.ErrorIs(t, err, errors.ErrFormat)
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := arsc.Parse(valid[:len(valid)/2])
		require.ErrorIs(t, err, errors.ErrFormat)
	})

	t.Run("chunk size beyond input", func(t *testing.T) {
		data := append([]byte(nil), valid...)
		binary.LittleEndian.PutUint32(data[4:], uint32(len(data)+8))
		_, err := arsc.Parse(data)
		require.ErrorIs(t, err, errors.ErrFormat)
	})

	t.Run("header size larger than chunk", func(t *testing.T) {
		data := append([]byte(nil), valid...)
		binary.LittleEndian.PutUint16(data[2:], 0xffff)
		_, err := arsc.Parse(data)
		require.ErrorIs(t, err, errors.ErrFormat)
	})

	t.Run("package count mismatch", func(t *testing.T) {
		data := append([]byte(nil), valid...)
		binary.LittleEndian.PutUint32(data[8:], 2)
		_, err := arsc.Parse(data)
		require.ErrorIs(t, err, errors.ErrFormat)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := arsc.Parse(nil)
		require.ErrorIs(t, err, errors.ErrFormat)
	})

	t.Run("hostile counts and offsets", func(t *testing.T) {
		le := binary.LittleEndian
		l := locate(t, valid)
		for _, tc := range []struct {
			name    string
			corrupt func(data []byte)
		}{
			{"huge type entry count", func(d []byte) { le.PutUint32(d[l.firstType+12:], 0x7fffffff) }},
			{"type entry count past chunk", func(d []byte) { le.PutUint32(d[l.firstType+12:], 1000) }},
			{"type entries start past chunk", func(d []byte) { le.PutUint32(d[l.firstType+16:], 0xfffffff0) }},
			{"type entries start inside header", func(d []byte) { le.PutUint32(d[l.firstType+16:], 8) }},
			{"type config size", func(d []byte) { le.PutUint32(d[l.firstType+20:], 0xffff) }},
			{"entry offset", func(d []byte) { le.PutUint32(d[l.firstType+84:], 0x00fffff0) }},
			{"huge global pool count", func(d []byte) { le.PutUint32(d[l.globalPool+8:], 0x7fffffff) }},
			{"global pool strings start", func(d []byte) { le.PutUint32(d[l.globalPool+20:], 0xfffffff0) }},
			{"global string offset", func(d []byte) { le.PutUint32(d[l.globalPool+28:], 0x7ffffff0) }},
			{"type pool offset", func(d []byte) { le.PutUint32(d[l.pkg+268:], 0xfffffff0) }},
			{"key pool offset", func(d []byte) { le.PutUint32(d[l.pkg+276:], 8) }},
			{"huge key pool count", func(d []byte) { le.PutUint32(d[l.keyPool+8:], 0x7fffffff) }},
		} {
			t.Run(tc.name, func(t *testing.T) {
				data := append([]byte(nil), valid...)
				tc.corrupt(data)
				_, err := arsc.Parse(data)
				require.ErrorIs(t, err, errors.ErrFormat)
			})
		}
	})
}

type offsets struct {
	globalPool, pkg, keyPool, firstType int
}

// locate finds the chunks of a single package table built by arsctest.
func locate(t *testing.T, data []byte) offsets {
	t.Helper()
	le := binary.LittleEndian
	l := offsets{globalPool: 12}
	l.pkg = l.globalPool + int(le.Uint32(data[l.globalPool+4:]))
	require.Equal(t, uint16(0x0200), le.Uint16(data[l.pkg:]))
	l.keyPool = l.pkg + int(le.Uint32(data[l.pkg+276:]))

	end := l.pkg + int(le.Uint32(data[l.pkg+4:]))
	for off := l.pkg + int(le.Uint16(data[l.pkg+2:])); off < end; off += int(le.Uint32(data[off+4:])) {
		if le.Uint16(data[off:]) == 0x0201 {
			l.firstType = off
			break
		}
	}
	require.NotZero(t, l.firstType)
	require.Equal(t, uint16(84), le.Uint16(data[l.firstType+2:]))
	return l
}
