package inflate

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"strings"
	"testing"
)

// deflateBytes compresses want using the standard library's flate
// implementation at the given compression level, producing a raw DEFLATE
// stream to exercise this package's decoder against a trusted encoder.
func deflateBytes(t *testing.T, want []byte, level int) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, level)
	if err != nil {
		t.Fatalf("flate.NewWriter: %v", err)
	}
	if _, err := w.Write(want); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return buf.Bytes()
}

func TestInflateFixedAndDynamicHuffman(t *testing.T) {
	cases := map[string]string{
		"empty":      "",
		"short":      "hello, world",
		"repetitive": strings.Repeat("tzdata ", 500),
		"mixed":      strings.Repeat("Rule\tUS\t1918\t1919\t-\tMar\tlastSun\t2:00\t1:00\tD\n", 200),
	}
	for name, want := range cases {
		t.Run(name, func(t *testing.T) {
			for _, level := range []int{flate.BestSpeed, flate.BestCompression} {
				compressed := deflateBytes(t, []byte(want), level)
				got, err := Inflate(compressed, 64)
				if err != nil {
					t.Fatalf("Inflate() error: %v", err)
				}
				if string(got) != want {
					t.Errorf("Inflate() = %q, want %q", got, want)
				}
			}
		})
	}
}

func TestGunzip(t *testing.T) {
	want := []byte(strings.Repeat("# tzdb data for Africa and environs\n", 100))

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(want); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	got, err := Gunzip(buf.Bytes())
	if err != nil {
		t.Fatalf("Gunzip() error: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Gunzip() = %d bytes, want %d bytes (mismatch)", len(got), len(want))
	}
}

func TestGunzipRejectsBadMagic(t *testing.T) {
	_, err := Gunzip(bytes.Repeat([]byte{0}, 32))
	if err == nil {
		t.Error("Gunzip() with bad magic: want error, got nil")
	}
}

func TestInflateStoredBlock(t *testing.T) {
	// A stored (uncompressed) DEFLATE block for "hi" per RFC 1951 §3.2.4:
	// BFINAL=1, BTYPE=00, then byte-aligned LEN/NLEN/data.
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.NoCompression)
	if err != nil {
		t.Fatalf("flate.NewWriter: %v", err)
	}
	if _, err := w.Write([]byte("hi")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	got, err := Inflate(buf.Bytes(), 16)
	if err != nil {
		t.Fatalf("Inflate() error: %v", err)
	}
	if string(got) != "hi" {
		t.Errorf("Inflate() = %q, want %q", got, "hi")
	}
}
