//go:build !js

package pipeline

import (
	"math"

	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

type fixParquetRow struct {
	FixIndex         int64   `parquet:"name=fix_index, type=INT64"`
	Time             string  `parquet:"name=time, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	TimestampS       int64   `parquet:"name=timestamp_s, type=INT64"`
	ElapsedS         int64   `parquet:"name=elapsed_s, type=INT64"`
	Lat              float64 `parquet:"name=lat, type=DOUBLE"`
	Lng              float64 `parquet:"name=lng, type=DOUBLE"`
	Valid            bool    `parquet:"name=valid, type=BOOLEAN"`
	PressureAltitude int32   `parquet:"name=pressure_altitude_m, type=INT32"`
	GNSSAltitude     int32   `parquet:"name=gnss_altitude_m, type=INT32"`
	SegmentKm        float64 `parquet:"name=segment_km, type=DOUBLE"`
	CumulativeKm     float64 `parquet:"name=cumulative_km, type=DOUBLE"`
	VarioMPerMin     float64 `parquet:"name=vario_m_per_min, type=DOUBLE"`
}

func marshalFixesParquet(samples []FixSample) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	if err := writeFixRows(fw, samples); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}

func writeFixesParquet(path string, samples []FixSample) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	return writeFixRows(fw, samples)
}

// writeFixRows writes samples as snappy-compressed rows and closes fw.
func writeFixRows(fw source.ParquetFile, samples []FixSample) error {
	pw, err := writer.NewParquetWriter(fw, new(fixParquetRow), 4)
	if err != nil {
		_ = fw.Close()
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, s := range samples {
		row := fixParquetRow{
			FixIndex:         int64(s.FixIndex),
			Time:             s.Time,
			TimestampS:       int64(s.TimestampS),
			ElapsedS:         int64(s.ElapsedS),
			Lat:              s.Lat,
			Lng:              s.Lng,
			Valid:            s.Valid,
			PressureAltitude: int32(s.PressureAltitude),
			GNSSAltitude:     int32(s.GNSSAltitude),
			SegmentKm:        s.SegmentKm,
			CumulativeKm:     s.CumulativeKm,
			VarioMPerMin:     valueOrNaN(s.VarioMPerMin),
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			_ = fw.Close()
			return err
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
