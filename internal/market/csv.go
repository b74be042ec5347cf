package market

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ReadCSV 读取 timestamp,open,high,low,close,volume 格式的 CSV；首行若非数字视为表头。
func ReadCSV(r io.Reader) (Series, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	rows := make([][]float64, 0, 256)
	line := 0
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Series{}, fmt.Errorf("%w: csv: %v", ErrMalformed, err)
		}
		line++
		if len(rec) == 0 || (len(rec) == 1 && strings.TrimSpace(rec[0]) == "") {
			continue
		}
		if line == 1 && !looksNumeric(rec[0]) {
			continue
		}
		row := make([]float64, len(rec))
		for i, field := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return Series{}, fmt.Errorf("%w: line %d column %d: %v", ErrMalformed, line, i+1, err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	return FromRows(rows)
}

func looksNumeric(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}

const (
	// PrecisionAuto 根据价格区间自动决定精度。
	PrecisionAuto = math.MinInt32
	// PrecisionRaw 保留原始精度。
	PrecisionRaw = -1
)

// WriteCSV 以 ReadCSV 可读取的格式导出序列，首行为表头。
func WriteCSV(w io.Writer, s Series, precision int) error {
	if precision == PrecisionAuto {
		precision = autoPrecision(s)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}
	for _, c := range s.candles {
		rec := []string{
			strconv.FormatInt(c.OpenTime, 10),
			formatPrice(c.Open, precision),
			formatPrice(c.High, precision),
			formatPrice(c.Low, precision),
			formatPrice(c.Close, precision),
			strconv.FormatFloat(c.Volume, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func autoPrecision(s Series) int {
	maxVal := 0.0
	for _, c := range s.candles {
		for _, v := range []float64{c.Open, c.High, c.Low, c.Close} {
			maxVal = math.Max(maxVal, math.Abs(v))
		}
	}
	switch {
	case maxVal >= 1000:
		return 1
	case maxVal >= 100:
		return 2
	default:
		return PrecisionRaw
	}
}

func formatPrice(value float64, precision int) string {
	if precision == PrecisionRaw {
		return strconv.FormatFloat(value, 'f', -1, 64)
	}
	out := strconv.FormatFloat(value, 'f', precision, 64)
	if precision > 0 {
		out = strings.TrimRight(strings.TrimRight(out, "0"), ".")
	}
	return out
}
