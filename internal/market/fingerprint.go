package market

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint 是缓存键：最后一根 K 线的原始字节哈希 + 序列长度。
// 只改动中间 K 线而长度与最后一根不变时不会被识别（数据源按追加方式更新）。
type Fingerprint struct {
	Length int
	Last   uint64
}

func (f Fingerprint) String() string {
	return fmt.Sprintf("%016x_%d", f.Last, f.Length)
}

// Fingerprint computes the approximate content key for the series.
func (s Series) Fingerprint() Fingerprint {
	last, ok := s.Last()
	if !ok {
		return Fingerprint{}
	}
	var buf [48]byte
	binary.LittleEndian.PutUint64(buf[0:], uint64(last.OpenTime))
	binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(last.Open))
	binary.LittleEndian.PutUint64(buf[16:], math.Float64bits(last.High))
	binary.LittleEndian.PutUint64(buf[24:], math.Float64bits(last.Low))
	binary.LittleEndian.PutUint64(buf[32:], math.Float64bits(last.Close))
	binary.LittleEndian.PutUint64(buf[40:], math.Float64bits(last.Volume))
	return Fingerprint{Length: s.Len(), Last: xxhash.Sum64(buf[:])}
}
