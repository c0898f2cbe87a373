package pipeline

import (
	"math"
	"time"

	"github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"

	tcx "github.com/lucasjlepore/tcx-intervals"
)

type trackpointParquetRow struct {
	TSUTCISO   string  `parquet:"name=ts_utc_iso, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	ElapsedS   float64 `parquet:"name=elapsed_s, type=DOUBLE"`
	Latitude   float64 `parquet:"name=latitude_deg, type=DOUBLE"`
	Longitude  float64 `parquet:"name=longitude_deg, type=DOUBLE"`
	AltitudeM  float64 `parquet:"name=altitude_m, type=DOUBLE"`
	DistanceM  float64 `parquet:"name=distance_m, type=DOUBLE"`
	HRBPM      float64 `parquet:"name=hr_bpm, type=DOUBLE"`
	CadenceRPM float64 `parquet:"name=cadence_rpm, type=DOUBLE"`
	SpeedMPS   float64 `parquet:"name=speed_mps, type=DOUBLE"`
	PowerW     float64 `parquet:"name=power_w, type=DOUBLE"`
	Index      int64   `parquet:"name=index, type=INT64"`
}

func writeTrackpointParquet(path string, points []tcx.Trackpoint) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	if err := writeParquetRows(fw, points); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}

func marshalTrackpointParquet(points []tcx.Trackpoint) ([]byte, error) {
	fw := buffer.NewBufferFile()
	if err := writeParquetRows(fw, points); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}

func writeParquetRows(fw source.ParquetFile, points []tcx.Trackpoint) error {
	pw, err := writer.NewParquetWriter(fw, new(trackpointParquetRow), 4)
	if err != nil {
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	var start time.Time
	if len(points) > 0 {
		start = points[0].Time
	}
	for i, p := range points {
		row := trackpointParquetRow{
			TSUTCISO:   p.Time.UTC().Format(time.RFC3339Nano),
			ElapsedS:   p.Time.Sub(start).Seconds(),
			Latitude:   valueOrNaN(p.Latitude),
			Longitude:  valueOrNaN(p.Longitude),
			AltitudeM:  valueOrNaN(p.Altitude),
			DistanceM:  valueOrNaN(p.Distance),
			HRBPM:      valueOrNaN(p.HeartRate),
			CadenceRPM: valueOrNaN(p.Cadence),
			SpeedMPS:   valueOrNaN(p.Speed),
			PowerW:     valueOrNaN(p.Power),
			Index:      int64(i),
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			return err
		}
	}
	return pw.WriteStop()
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
