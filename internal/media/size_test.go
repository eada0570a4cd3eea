package media

import "testing"

func TestComputeThumbnailSize(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		maxEdge       int
		want          Dimensions
	}{
		{"square", 400, 400, 100, Dimensions{100, 100}},
		{"landscape", 800, 400, 100, Dimensions{100, 50}},
		{"portrait", 400, 800, 100, Dimensions{50, 100}},
		{"zero width", 0, 500, 100, Dimensions{1, 1}},
		{"zero height", 500, 0, 100, Dimensions{1, 1}},
		{"negative", -3, 10, 100, Dimensions{1, 1}},
		{"already small", 60, 30, 100, Dimensions{60, 30}},
		{"small square never upsampled", 16, 16, 256, Dimensions{16, 16}},
		{"extreme landscape clamps to 1", 1000, 2, 100, Dimensions{100, 1}},
		{"extreme portrait clamps to 1", 3, 5000, 256, Dimensions{1, 256}},
		{"floor not round", 300, 200, 100, Dimensions{100, 66}},
		{"scenario 1200x600 in 256", 1200, 600, 256, Dimensions{256, 128}},
		{"large values do not overflow", 1 << 30, 1 << 29, 1 << 20, Dimensions{1 << 20, 1 << 19}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeThumbnailSize(tt.width, tt.height, tt.maxEdge)
			if got != tt.want {
				t.Errorf("ComputeThumbnailSize(%d, %d, %d) = %v, want %v",
					tt.width, tt.height, tt.maxEdge, got, tt.want)
			}
		})
	}
}

func TestComputeThumbnailSizeProperties(t *testing.T) {
	for w := 0; w <= 64; w++ {
		for h := 0; h <= 64; h++ {
			for _, edge := range []int{1, 7, 32, 100} {
				got := ComputeThumbnailSize(w, h, edge)
				if got.Width < 1 || got.Height < 1 {
					t.Fatalf("(%d,%d,%d) produced zero dimension %v", w, h, edge, got)
				}
				if w <= 0 || h <= 0 {
					continue
				}
				longest := max(got.Width, got.Height)
				if longest != min(max(w, h), edge) {
					t.Fatalf("(%d,%d,%d) = %v: longest side %d, want %d", w, h, edge, got, longest, min(max(w, h), edge))
				}
				if got.Width > w || got.Height > h {
					t.Fatalf("(%d,%d,%d) = %v upsampled", w, h, edge, got)
				}
			}
		}
	}
}

func TestRequestedSize(t *testing.T) {
	tests := []struct {
		size         RequestedSize
		wantOriginal bool
		wantString   string
	}{
		{OriginalSize, true, "original"},
		{RequestedSize{0, 0}, true, "original"},
		{RequestedSize{256, 0}, true, "original"},
		{RequestedSize{-1, 100}, true, "original"},
		{Square(256), false, "256x256"},
		{RequestedSize{300, 200}, false, "300x200"},
	}

	for _, tt := range tests {
		if got := tt.size.IsOriginal(); got != tt.wantOriginal {
			t.Errorf("%+v.IsOriginal() = %v, want %v", tt.size, got, tt.wantOriginal)
		}
		if got := tt.size.String(); got != tt.wantString {
			t.Errorf("%+v.String() = %q, want %q", tt.size, got, tt.wantString)
		}
	}

	if got := (RequestedSize{300, 200}).MaxEdge(); got != 200 {
		t.Errorf("MaxEdge() = %d, want 200", got)
	}
}

func BenchmarkComputeThumbnailSize(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = ComputeThumbnailSize(1200, 600, 256)
	}
}
