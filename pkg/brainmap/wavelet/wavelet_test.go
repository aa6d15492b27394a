package wavelet

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func randomImage(r, c int, seed uint64) *mat.Dense {
	rng := rand.New(rand.NewPCG(seed, seed))
	m := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			m.Set(i, j, float64(rng.IntN(256)))
		}
	}
	return m
}

func TestSplitKnownBlock(t *testing.T) {
	sb, err := Split(mat.NewDense(2, 2, []float64{1, 2, 3, 4}))
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	want := map[string]float64{"A": 5, "H": -2, "V": -1, "D": 0}
	got := map[string]float64{"A": sb.A.At(0, 0), "H": sb.H.At(0, 0), "V": sb.V.At(0, 0), "D": sb.D.At(0, 0)}
	for k, w := range want {
		if got[k] != w {
			t.Errorf("%s = %v, want %v", k, got[k], w)
		}
	}
}

func TestDecomposePreservesShape(t *testing.T) {
	img := randomImage(256, 256, 1)

	composite, err := Composite(img)
	if err != nil {
		t.Fatalf("Composite failed: %v", err)
	}
	r, c := composite.Dims()
	if r != 256 || c != 256 {
		t.Errorf("Expected 256x256 composite, got %dx%d", r, c)
	}
}

func TestDecomposePreservesEnergy(t *testing.T) {
	img := randomImage(64, 128, 2)

	composite, err := Composite(img)
	if err != nil {
		t.Fatalf("Composite failed: %v", err)
	}

	in := mat.Norm(img, 2)
	out := mat.Norm(composite, 2)
	if math.Abs(in-out) > 1e-6*in {
		t.Errorf("Orthogonal transform changed Frobenius norm: %f -> %f", in, out)
	}
}

func TestCompositeLayoutIsDeepestFirst(t *testing.T) {
	img := randomImage(256, 256, 3)

	dec, err := Decompose(img)
	if err != nil {
		t.Fatalf("Decompose failed: %v", err)
	}
	w := dec.Composite()

	quadrants := []struct {
		name       string
		i, k, j, l int
		want       *mat.Dense
	}{
		{"A3", 0, 32, 0, 32, dec.A(3)},
		{"H3", 0, 32, 32, 64, dec.H(3)},
		{"V3", 32, 64, 0, 32, dec.V(3)},
		{"D3", 32, 64, 32, 64, dec.D(3)},
		{"H2", 0, 64, 64, 128, dec.H(2)},
		{"V2", 64, 128, 0, 64, dec.V(2)},
		{"D2", 64, 128, 64, 128, dec.D(2)},
		{"H1", 0, 128, 128, 256, dec.H(1)},
		{"V1", 128, 256, 0, 128, dec.V(1)},
		{"D1", 128, 256, 128, 256, dec.D(1)},
	}

	for _, q := range quadrants {
		t.Run(q.name, func(t *testing.T) {
			if !mat.Equal(w.Slice(q.i, q.k, q.j, q.l), q.want) {
				t.Errorf("%s is not at rows %d:%d cols %d:%d", q.name, q.i, q.k, q.j, q.l)
			}
		})
	}
}

func TestConstantImageConcentratesInApproximation(t *testing.T) {
	img := mat.NewDense(16, 16, nil)
	img.Apply(func(_, _ int, _ float64) float64 { return 10 }, img)

	dec, err := Decompose(img)
	if err != nil {
		t.Fatalf("Decompose failed: %v", err)
	}

	// each level doubles the approximation of a constant
	a3 := dec.A(3)
	if r, c := a3.Dims(); r != 2 || c != 2 {
		t.Fatalf("Expected 2x2 A3, got %dx%d", r, c)
	}
	if v := a3.At(1, 1); v != 80 {
		t.Errorf("Expected A3 = 80, got %v", v)
	}
	for n := 1; n <= Levels; n++ {
		for _, m := range []*mat.Dense{dec.H(n), dec.V(n), dec.D(n)} {
			if mat.Max(m) != 0 || mat.Min(m) != 0 {
				t.Errorf("Level %d detail of a constant image should be zero", n)
			}
		}
	}
}

func TestDecomposeErrors(t *testing.T) {
	var nilDense *mat.Dense
	tests := []struct {
		name string
		img  mat.Matrix
	}{
		{"nil", nil},
		{"nil dense", nilDense},
		{"empty", &mat.Dense{}},
		{"4x4", mat.NewDense(4, 4, nil)},
		{"12x16", mat.NewDense(12, 16, nil)},
		{"256x100", mat.NewDense(256, 100, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decompose(tt.img); !errors.Is(err, ErrDecomposition) {
				t.Errorf("Expected ErrDecomposition, got %v", err)
			}
		})
	}
}

func TestSplitRejectsOddDims(t *testing.T) {
	if _, err := Split(mat.NewDense(3, 4, nil)); !errors.Is(err, ErrDecomposition) {
		t.Errorf("Expected ErrDecomposition for odd rows, got %v", err)
	}
}

func TestNamedIntermediates(t *testing.T) {
	dec, err := Decompose(randomImage(32, 32, 4))
	if err != nil {
		t.Fatalf("Decompose failed: %v", err)
	}

	named := dec.Named()
	if len(named) != 12 {
		t.Fatalf("Expected 12 named sub-bands, got %d", len(named))
	}
	if named["D2"] != dec.D(2) {
		t.Error("Named D2 does not match accessor")
	}
	if r, _ := named["A1"].Dims(); r != 16 {
		t.Errorf("Expected A1 with 16 rows, got %d", r)
	}
}

func TestLevelOutOfRangePanics(t *testing.T) {
	dec, err := Decompose(randomImage(8, 8, 5))
	if err != nil {
		t.Fatalf("Decompose failed: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("Expected panic for level 0")
		}
	}()
	dec.Level(0)
}

func BenchmarkDecompose(b *testing.B) {
	img := randomImage(256, 256, 6)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Decompose(img); err != nil {
			b.Fatal(err)
		}
	}
}
