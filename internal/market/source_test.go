package market

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileSourceFetchHistory(t *testing.T) {
	s, _ := FromRows(rows(10))
	var buf bytes.Buffer
	if err := WriteCSV(&buf, s, PrecisionRaw); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "btcusdt.csv")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	src := NewFileSource()
	src.Register("btcusdt", "1H", path)
	got, err := src.FetchHistory(context.Background(), "BTCUSDT", "1h", 4)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got.Len() != 4 || got.Closes()[3] != s.Closes()[9] {
		t.Fatalf("expected the last 4 candles, got %v", got.Closes())
	}
	if _, err := src.FetchHistory(context.Background(), "ETHUSDT", "1h", 0); err == nil {
		t.Fatalf("unregistered symbol must fail")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.FetchHistory(ctx, "BTCUSDT", "1h", 0); err == nil {
		t.Fatalf("cancelled context must fail")
	}
}
