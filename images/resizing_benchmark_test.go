package images

import "testing"

// BenchmarkResample_1000To512 shrinks an odd-sized RGBA icon to the next
// power of two, the common path for hand-exported artwork.
func BenchmarkResample_1000To512(b *testing.B) {
	src, err := NewRasterImage(1000, 1000, RGBA8, make([]byte, 1000*1000*4))
	if err != nil {
		b.Fatal(err)
	}
	target := NextSizeDown(src.Square())

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := Resample(src, target); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkNextSizeDown(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = NextSizeDown(i%4096 + 1)
	}
}
