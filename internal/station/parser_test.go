package station

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParser() *Parser {
	return NewParser(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestParse(t *testing.T) {
	p := newTestParser()

	t.Run("header, epicenter, and bad-record drop", func(t *testing.T) {
		raw := []byte("Header text Lon:120.57 Lat:23.23\n" +
			"Stacode=A1,Stalon=121.0,Stalat=23.5,Int=4級,PGA(SUM)=12.3,PGV(SUM)=5.1," +
			"Stacode=A2,Stalon=bad,Stalat=24.0,Int=3級,PGA(SUM)=5,PGV(SUM)=2")

		header, records, stats, err := p.Parse(raw)
		require.NoError(t, err)

		assert.Contains(t, header.Text, "Lon:120.57 Lat:23.23")
		require.NotNil(t, header.Epicenter)
		assert.Equal(t, 120.57, header.Epicenter.Lon)
		assert.Equal(t, 23.23, header.Epicenter.Lat)

		require.Len(t, records, 1)
		assert.Equal(t, "A1", records[0].Code)
		assert.Equal(t, 121.0, records[0].Geo.Lon)
		assert.Equal(t, 23.5, records[0].Geo.Lat)
		assert.Equal(t, "4級", records[0].ObservedIntensity)
		assert.Equal(t, 12.3, records[0].ObservedPGA)
		assert.Equal(t, 5.1, records[0].ObservedPGV)

		assert.Equal(t, 1, stats.Accepted)
		assert.Equal(t, 1, stats.DroppedBadNumber)
		assert.Zero(t, stats.DroppedMissing)
		assert.False(t, stats.UsedFallback)
	})

	t.Run("missing required key drops the record", func(t *testing.T) {
		raw := []byte("hdr\nStacode=B1,Stalon=121.0,Stalat=23.5,Int=2級,PGA(SUM)=3.0")

		_, records, stats, err := p.Parse(raw)
		require.NoError(t, err)
		assert.Empty(t, records)
		assert.Equal(t, 1, stats.DroppedMissing)
	})

	t.Run("header without epicenter tokens", func(t *testing.T) {
		raw := []byte("quake bulletin 114007\nStacode=C1,Stalon=120.0,Stalat=23.0,Int=1級,PGA(SUM)=1,PGV(SUM)=0.2")

		header, records, _, err := p.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, "quake bulletin 114007", header.Text)
		assert.Nil(t, header.Epicenter)
		assert.Len(t, records, 1)
	})

	t.Run("source order and duplicates preserved", func(t *testing.T) {
		raw := []byte("hdr\n" +
			"Stacode=D2,Stalon=121.0,Stalat=23.5,Int=2級,PGA(SUM)=3,PGV(SUM)=1," +
			"Stacode=D1,Stalon=120.5,Stalat=23.1,Int=3級,PGA(SUM)=9,PGV(SUM)=2," +
			"Stacode=D2,Stalon=121.0,Stalat=23.5,Int=2級,PGA(SUM)=3,PGV(SUM)=1")

		_, records, _, err := p.Parse(raw)
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "D2", records[0].Code)
		assert.Equal(t, "D1", records[1].Code)
		assert.Equal(t, "D2", records[2].Code)
	})

	t.Run("unrecognized keys land in Extra", func(t *testing.T) {
		raw := []byte("hdr\nStacode=E1,Stalon=121.0,Stalat=23.5,Int=2級,PGA(SUM)=3,PGV(SUM)=1,Staname=花蓮,Net=TSMIP")

		_, records, _, err := p.Parse(raw)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "花蓮", records[0].Extra["Staname"])
		assert.Equal(t, "TSMIP", records[0].Extra["Net"])
	})

	t.Run("empty input yields empty header and no records", func(t *testing.T) {
		header, records, stats, err := p.Parse(nil)
		require.NoError(t, err)
		assert.Empty(t, header.Text)
		assert.Nil(t, header.Epicenter)
		assert.Empty(t, records)
		assert.Zero(t, stats.Accepted)
	})
}

func TestParseEncodings(t *testing.T) {
	p := newTestParser()

	t.Run("big5 input", func(t *testing.T) {
		// "震央 Lon:120.57 Lat:23.23" + a record with Int=6強, in Big5.
		raw := append([]byte{0xBE, 0x5F, 0xA5, 0xA1}, []byte(" Lon:120.57 Lat:23.23\n")...)
		raw = append(raw, []byte("Stacode=F1,Stalon=121.6,Stalat=23.9,Int=6")...)
		raw = append(raw, 0xB1, 0x4A) // 強
		raw = append(raw, []byte(",PGA(SUM)=410,PGV(SUM)=86")...)

		header, records, stats, err := p.Parse(raw)
		require.NoError(t, err)
		assert.False(t, stats.UsedFallback)
		assert.Contains(t, header.Text, "震央")
		require.Len(t, records, 1)
		assert.Equal(t, "6強", records[0].ObservedIntensity)
	})

	t.Run("utf-8 fallback", func(t *testing.T) {
		raw := []byte("震央 Lon:120.57 Lat:23.23\nStacode=G1,Stalon=121.6,Stalat=23.9,Int=6強,PGA(SUM)=410,PGV(SUM)=86")

		header, records, stats, err := p.Parse(raw)
		require.NoError(t, err)
		assert.True(t, stats.UsedFallback)
		assert.Contains(t, header.Text, "震央")
		require.Len(t, records, 1)
		assert.Equal(t, "6強", records[0].ObservedIntensity)
	})

	t.Run("undecodable input is fatal", func(t *testing.T) {
		// Invalid under both Big5 (dangling lead byte before a control
		// character) and UTF-8.
		raw := []byte{0xFE, 0x01, 0xFF, 0x00, 0x80}

		_, _, _, err := p.Parse(raw)
		require.ErrorIs(t, err, ErrUndecodable)
	})
}
