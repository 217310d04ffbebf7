package container

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/readpack/errs"
	"github.com/arloliu/readpack/format"
	"github.com/arloliu/readpack/internal/pool"
	"github.com/arloliu/readpack/section"
)

type testRead struct {
	pore   int16
	reason format.EndReason
	signal []int16
}

func testSignal(seed, n int) []int16 {
	s := make([]int16, n)
	v := int16(seed * 10)
	for i := range s {
		v += int16((i*seed)%7 - 3)
		s[i] = v
	}

	return s
}

func writeBatch(t *testing.T, w *Writer, reads []testRead) {
	t.Helper()

	batch := NewColumnBatch(len(reads))
	defer batch.Release()

	signals := make([][]int16, len(reads))
	for i, rd := range reads {
		batch.ReadIDs[i] = uuid.NewSHA1(uuid.NameSpaceOID, []byte{byte(i), byte(rd.pore)})
		batch.ReadNumbers[i] = uint32(100 + i)
		batch.StartSamples[i] = uint64(i * 4000)
		batch.MedianBefores[i] = 200.5
		batch.Channels[i] = uint16(i + 1)
		batch.Wells[i] = 1
		batch.PoreTypes[i] = rd.pore
		batch.CalibrationOffsets[i] = -240
		batch.CalibrationScales[i] = 0.1755
		batch.EndReasons[i] = rd.reason
		batch.EndReasonForced[i] = rd.reason.DefaultForced()
		batch.RunInfos[i] = 0
		batch.NumMinknowEvents[i] = 12
		batch.TrackedScalingScales[i] = 1.5
		batch.TrackedScalingShifts[i] = 2.5
		batch.PredictedScalingScales[i] = 3.5
		batch.PredictedScalingShifts[i] = 4.5
		batch.NumReadsSinceMuxChange[i] = 7
		batch.TimeSinceMuxChange[i] = 0.25
		batch.NumSamples[i] = uint64(len(rd.signal))
		signals[i] = rd.signal
	}

	require.NoError(t, w.AddReads(batch, signals))
}

func sampleRunInfo() *RunInfo {
	return &RunInfo{
		AcquisitionID:         "a1b2c3",
		AcquisitionStartTime:  1_700_000_000_000,
		AdcMax:                4095,
		AdcMin:                -4096,
		ContextTags:           map[string]string{"sample_frequency": "4000", "experiment_type": "genomic_dna"},
		ExperimentName:        "exp",
		FlowCellID:            "FAX12345",
		FlowCellProductCode:   "FLO-MIN114",
		ProtocolName:          "sequencing/sequencing_MIN114_DNA",
		ProtocolRunID:         "run-1",
		ProtocolStartTime:     1_700_000_001_000,
		SampleID:              "sample",
		SampleRate:            4000,
		SequencingKit:         "SQK-LSK114",
		SequencerPosition:     "MN12345",
		SequencerPositionType: "MinION",
		Software:              "MinKNOW",
		SystemName:            "host",
		SystemType:            "linux",
		TrackingID:            map[string]string{"device_id": "MN12345", "exp_start_time": "2023-11-14"},
	}
}

func TestWriterReader_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		opts []WriterOption
	}{
		{name: "defaults"},
		{name: "uncompressed signal", opts: []WriterOption{WithSignalCompression(format.SignalUncompressed)}},
		{name: "s2 rows big endian", opts: []WriterOption{WithRowCompression(format.CompressionS2), WithBigEndian()}},
		{name: "lz4 rows", opts: []WriterOption{WithRowCompression(format.CompressionLZ4)}},
		{name: "plain rows", opts: []WriterOption{WithRowCompression(format.CompressionNone), WithLittleEndian()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out.readpack")
			created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

			opts := append([]WriterOption{WithCreator("test"), WithCreatedAt(created)}, tt.opts...)
			w, err := Create(path, opts...)
			require.NoError(t, err)

			a, err := w.AddPore("pore_A")
			require.NoError(t, err)
			b, err := w.AddPore("pore_B")
			require.NoError(t, err)
			require.Equal(t, []string{"pore_A", "pore_B"}, w.PoreTypes())

			// only pore_B is used by the first batch, so its local code is 0
			writeBatch(t, w, []testRead{
				{pore: b, reason: format.EndReasonSignalPositive, signal: testSignal(1, 5000)},
				{pore: NoPoreType, reason: format.EndReasonMuxChange, signal: []int16{}},
			})
			writeBatch(t, w, []testRead{
				{pore: a, reason: format.EndReasonUnknown, signal: testSignal(2, 10)},
				{pore: b, reason: format.EndReasonUnknown, signal: testSignal(3, 77)},
				{pore: a, reason: format.EndReasonSignalNegative, signal: testSignal(4, 1)},
			})

			idx, err := w.AddRunInfo(sampleRunInfo())
			require.NoError(t, err)
			require.Equal(t, int16(0), idx)
			require.Equal(t, uint64(5), w.ReadCount())
			require.NoError(t, w.Close())
			require.NoError(t, w.Close())

			r, err := Open(path)
			require.NoError(t, err)
			defer r.Close()

			require.Equal(t, "test", r.Creator())
			require.Equal(t, 2, r.BatchCount())
			require.Equal(t, uint64(5), r.ReadCount())
			require.Equal(t, 1, r.RunInfoCount())
			require.Equal(t, []string{"pore_A", "pore_B"}, r.PoreTypes())
			require.Equal(t, created.UnixMicro(), r.Header().CreatedAt)
			require.Equal(t, format.RowInfoVersion, r.Header().RowInfoVersion)

			rows, err := r.BatchRowCount(1)
			require.NoError(t, err)
			require.Equal(t, 3, rows)

			ri, err := r.RunInfo(0)
			require.NoError(t, err)
			require.Equal(t, sampleRunInfo(), ri)

			batch0, err := r.Batch(0)
			require.NoError(t, err)
			require.Equal(t, 2, batch0.RowCount())

			rec, version, err := batch0.RowInfo(0, format.RowInfoVersion)
			require.NoError(t, err)
			require.Equal(t, format.RowInfoVersion, version)
			require.Equal(t, int16(0), rec.PoreType)
			require.Equal(t, uint32(100), rec.ReadNumber)
			require.Equal(t, uint16(1), rec.Channel)
			require.InDelta(t, 0.1755, rec.CalibrationScale, 1e-7)
			require.InDelta(t, 4.5, rec.PredictedScalingShift, 0)

			buf := make([]byte, 64)
			n, err := batch0.PoreType(rec.PoreType, buf)
			require.NoError(t, err)
			require.Equal(t, "pore_B", string(buf[:n]))

			reason, n, err := batch0.EndReason(rec.EndReason, buf)
			require.NoError(t, err)
			require.Equal(t, format.EndReasonSignalPositive, reason)
			require.Equal(t, "signal_positive", string(buf[:n]))

			rec1, _, err := batch0.RowInfo(1, format.RowInfoVersion)
			require.NoError(t, err)
			require.Equal(t, NoPoreType, rec1.PoreType)
			require.True(t, rec1.EndReasonForced)

			count, err := batch0.CompleteSampleCount(0)
			require.NoError(t, err)
			require.Equal(t, uint64(5000), count)

			signal := make([]int16, count)
			require.NoError(t, batch0.CompleteSignal(0, signal))
			require.Equal(t, testSignal(1, 5000), signal)

			count, err = batch0.CompleteSampleCount(1)
			require.NoError(t, err)
			require.Zero(t, count)
			require.NoError(t, batch0.CompleteSignal(1, nil))
			batch0.Release()

			batch1, err := r.Batch(1)
			require.NoError(t, err)
			defer batch1.Release()

			for row, want := range []struct {
				pore   string
				signal []int16
			}{
				{"pore_A", testSignal(2, 10)},
				{"pore_B", testSignal(3, 77)},
				{"pore_A", testSignal(4, 1)},
			} {
				rec, _, err := batch1.RowInfo(row, format.RowInfoVersion)
				require.NoError(t, err)

				n, err := batch1.PoreType(rec.PoreType, buf)
				require.NoError(t, err)
				require.Equal(t, want.pore, string(buf[:n]))

				// oversized buffers are fine
				signal := make([]int16, len(want.signal)+3)
				require.NoError(t, batch1.CompleteSignal(row, signal))
				require.Equal(t, want.signal, signal[:len(want.signal)])
			}
		})
	}
}

func TestReadBatch_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.readpack")
	w, err := Create(path)
	require.NoError(t, err)

	code, err := w.AddPore("a_rather_long_pore_type_name")
	require.NoError(t, err)
	writeBatch(t, w, []testRead{{pore: code, signal: testSignal(1, 20)}})
	require.NoError(t, w.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Batch(1)
	require.ErrorIs(t, err, errs.ErrInvalidBatchIndex)
	_, err = r.Batch(-1)
	require.ErrorIs(t, err, errs.ErrInvalidBatchIndex)
	_, err = r.RunInfo(0)
	require.ErrorIs(t, err, errs.ErrInvalidDictionaryIndex)

	b, err := r.Batch(0)
	require.NoError(t, err)

	t.Run("short string buffer reports required size", func(t *testing.T) {
		n, err := b.PoreType(0, make([]byte, 4))
		require.ErrorIs(t, err, errs.ErrStringNotLongEnough)
		require.Equal(t, len("a_rather_long_pore_type_name"), n)

		_, n, err = b.EndReason(0, make([]byte, 2))
		require.ErrorIs(t, err, errs.ErrStringNotLongEnough)
		require.Equal(t, len("unknown"), n)
	})

	t.Run("unknown codes", func(t *testing.T) {
		_, err := b.PoreType(1, make([]byte, 64))
		require.ErrorIs(t, err, errs.ErrInvalidDictionaryIndex)

		_, err = b.PoreType(NoPoreType, make([]byte, 64))
		require.ErrorIs(t, err, errs.ErrInvalidDictionaryIndex)

		_, _, err = b.EndReason(3, make([]byte, 64))
		require.ErrorIs(t, err, errs.ErrInvalidDictionaryIndex)
	})

	t.Run("row info version", func(t *testing.T) {
		_, _, err := b.RowInfo(0, format.RowInfoVersion+1)
		require.ErrorIs(t, err, errs.ErrUnsupportedRowInfoVersion)

		_, _, err = b.RowInfo(0, 0)
		require.ErrorIs(t, err, errs.ErrUnsupportedRowInfoVersion)

		_, _, err = b.RowInfo(1, format.RowInfoVersion)
		require.ErrorIs(t, err, errs.ErrInvalidRowIndex)
	})

	t.Run("signal buffer too small", func(t *testing.T) {
		err := b.CompleteSignal(0, make([]int16, 19))
		require.ErrorIs(t, err, errs.ErrSignalBufferTooSmall)
	})

	b.Release()
	b.Release()
	require.Zero(t, b.RowCount())

	_, err = b.PoreType(0, make([]byte, 64))
	require.ErrorIs(t, err, errs.ErrReaderClosed)

	require.NoError(t, r.Close())
	_, err = r.Batch(0)
	require.ErrorIs(t, err, errs.ErrReaderClosed)
}

func TestWriter_AddReadsValidation(t *testing.T) {
	w, err := Create(filepath.Join(t.TempDir(), "out.readpack"))
	require.NoError(t, err)
	defer w.Close()

	code, err := w.AddPore("pore_A")
	require.NoError(t, err)

	t.Run("signal count", func(t *testing.T) {
		batch := NewColumnBatch(2)
		defer batch.Release()

		err := w.AddReads(batch, [][]int16{{}})
		require.ErrorIs(t, err, errs.ErrRowCountMismatch)
	})

	t.Run("sample count", func(t *testing.T) {
		batch := NewColumnBatch(1)
		defer batch.Release()
		batch.NumSamples[0] = 3

		err := w.AddReads(batch, [][]int16{{1, 2}})
		require.ErrorIs(t, err, errs.ErrSampleCountMismatch)
	})

	t.Run("pore code out of range", func(t *testing.T) {
		batch := NewColumnBatch(1)
		defer batch.Release()
		batch.PoreTypes[0] = code + 1

		err := w.AddReads(batch, [][]int16{{}})
		require.ErrorIs(t, err, errs.ErrInvalidDictionaryIndex)
	})

	t.Run("end reason out of range", func(t *testing.T) {
		batch := NewColumnBatch(1)
		defer batch.Release()
		batch.EndReasons[0] = format.EndReason(42)

		err := w.AddReads(batch, [][]int16{{}})
		require.ErrorIs(t, err, errs.ErrInvalidDictionaryIndex)
	})

	t.Run("empty batch", func(t *testing.T) {
		empty := NewColumnBatch(0)
		defer empty.Release()

		require.NoError(t, w.AddReads(empty, nil))
		require.NoError(t, w.AddReads(nil, nil))
	})

	t.Run("nil run info", func(t *testing.T) {
		_, err := w.AddRunInfo(nil)
		require.ErrorIs(t, err, errs.ErrInvalidRunInfo)
	})

	require.NoError(t, w.Close())

	_, err = w.AddPore("late")
	require.ErrorIs(t, err, errs.ErrWriterClosed)
	require.ErrorIs(t, w.AddReads(nil, nil), errs.ErrWriterClosed)
	_, err = w.AddRunInfo(sampleRunInfo())
	require.ErrorIs(t, err, errs.ErrWriterClosed)
}

func TestCreate_Errors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "exists.readpack")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	_, err := Create(path)
	require.ErrorIs(t, err, os.ErrExist)

	_, err = Create(filepath.Join(dir, "bad.readpack"), WithRowCompression(format.CompressionType(0x9)))
	require.Error(t, err)
	require.NoFileExists(t, filepath.Join(dir, "bad.readpack"))

	_, err = Create(filepath.Join(dir, "bad.readpack"), WithSignalCompression(format.SignalCompression(9)))
	require.Error(t, err)
}

func TestOpen_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := Open(filepath.Join(dir, "missing.readpack"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("not a container", func(t *testing.T) {
		path := filepath.Join(dir, "junk")
		require.NoError(t, os.WriteFile(path, make([]byte, 64), 0o600))

		_, err := Open(path)
		require.ErrorIs(t, err, errs.ErrInvalidHeaderFlags)
	})

	t.Run("truncated header", func(t *testing.T) {
		path := filepath.Join(dir, "short")
		require.NoError(t, os.WriteFile(path, []byte{0x10, 0xEC}, 0o600))

		_, err := Open(path)
		require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
	})

	t.Run("unfinished write", func(t *testing.T) {
		path := filepath.Join(dir, "unfinished.readpack")
		w, err := Create(path)
		require.NoError(t, err)
		writeBatch(t, w, []testRead{{pore: NoPoreType, signal: testSignal(1, 8)}})

		_, err = Open(path)
		require.ErrorIs(t, err, errs.ErrCorruptPayload)
		require.NoError(t, w.Close())

		r, err := Open(path)
		require.NoError(t, err)
		require.NoError(t, r.Close())
	})

	t.Run("corrupt batch block", func(t *testing.T) {
		path := filepath.Join(dir, "corrupt.readpack")
		w, err := Create(path)
		require.NoError(t, err)
		writeBatch(t, w, []testRead{{pore: NoPoreType, signal: testSignal(1, 8)}})
		require.NoError(t, w.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		data[section.FirstBatchOffset+1] ^= 0xFF
		require.NoError(t, os.WriteFile(path, data, 0o600))

		r, err := Open(path)
		require.NoError(t, err)
		defer r.Close()

		_, err = r.Batch(0)
		require.ErrorIs(t, err, errs.ErrChecksumMismatch)
	})
}

func TestColumnBatch_Lifecycle(t *testing.T) {
	before := pool.Outstanding()

	batch := NewColumnBatch(3)
	require.Equal(t, 3, batch.Len())
	require.Len(t, batch.ReadIDs, 3)
	require.Len(t, batch.NumSamples, 3)
	require.Equal(t, before+20, pool.Outstanding())

	rec := &RowRecord{ReadNumber: 9, Channel: 4, EndReasonForced: true, TimeSinceMuxChange: 1.25}
	batch.SetRow(2, rec)
	require.Equal(t, uint32(9), batch.ReadNumbers[2])
	require.Equal(t, uint16(4), batch.Channels[2])
	require.True(t, batch.EndReasonForced[2])

	batch.Release()
	require.Equal(t, before, pool.Outstanding())
	require.Nil(t, batch.ReadIDs)
	require.Zero(t, batch.Len())

	batch.Release()
	require.Equal(t, before, pool.Outstanding())

	var nilBatch *ColumnBatch
	nilBatch.Release()
	require.Zero(t, nilBatch.Len())

	// reused columns come back zeroed
	again := NewColumnBatch(3)
	defer again.Release()
	require.Equal(t, []uint32{0, 0, 0}, again.ReadNumbers)
}
