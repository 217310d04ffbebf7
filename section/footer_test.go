package section

import (
	"testing"

	"github.com/arloliu/readpack/endian"
	"github.com/arloliu/readpack/errs"
	"github.com/stretchr/testify/require"
)

func sampleFooter() *Footer {
	return &Footer{
		Creator:   "readpack-copy",
		PoreTypes: []string{"pore_A", "pore_B"},
		RunInfos:  [][]byte{{1, 2, 3}, {}, {4}},
		Batches: []BatchIndexEntry{
			{Offset: 32, RowsSize: 10, SignalSize: 20, RowCount: 3, Checksum: 1},
			{Offset: 62, RowsSize: 5, SignalSize: 7, RowCount: 2, Checksum: 2},
		},
	}
}

func TestFooter_RoundTrip(t *testing.T) {
	for _, engine := range []endian.EndianEngine{endian.GetLittleEndianEngine(), endian.GetBigEndianEngine()} {
		original := sampleFooter()

		data, err := original.AppendTo([]byte("prefix"), engine)
		require.NoError(t, err)
		require.Equal(t, "prefix", string(data[:6]))

		parsed, err := ParseFooter(data[6:], engine)
		require.NoError(t, err)
		require.Equal(t, original.Creator, parsed.Creator)
		require.Equal(t, original.PoreTypes, parsed.PoreTypes)
		require.Equal(t, original.Batches, parsed.Batches)
		require.Len(t, parsed.RunInfos, 3)
		require.Equal(t, []byte{1, 2, 3}, parsed.RunInfos[0])
		require.Empty(t, parsed.RunInfos[1])
		require.Equal(t, []byte{4}, parsed.RunInfos[2])
	}
}

func TestFooter_Empty(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	data, err := (&Footer{}).AppendTo(nil, engine)
	require.NoError(t, err)

	parsed, err := ParseFooter(data, engine)
	require.NoError(t, err)
	require.Empty(t, parsed.Creator)
	require.Empty(t, parsed.PoreTypes)
	require.Empty(t, parsed.RunInfos)
	require.Empty(t, parsed.Batches)
}

func TestParseFooter_Corruption(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	data, err := sampleFooter().AppendTo(nil, engine)
	require.NoError(t, err)

	t.Run("flipped byte", func(t *testing.T) {
		corrupt := append([]byte(nil), data...)
		corrupt[5] ^= 0xFF

		_, err := ParseFooter(corrupt, engine)
		require.ErrorIs(t, err, errs.ErrChecksumMismatch)
	})

	t.Run("too short", func(t *testing.T) {
		_, err := ParseFooter(data[:4], engine)
		require.ErrorIs(t, err, errs.ErrCorruptPayload)
	})
}
