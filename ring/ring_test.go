package ring_test

import (
	"math"
	"math/rand"
	"testing"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	. "github.com/renproject/duoram/ring"
)

func TestRing(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "ring")
}

// Vectors drawn over the full i64 width, so that wraparound paths are
// actually exercised.
func wideVec(dim int) Vec {
	v := make(Vec, dim)
	for i := range v {
		v[i] = int64(rand.Uint64())
	}
	return v
}

var _ = Describe("Vec", func() {
	rand.Seed(int64(time.Now().Nanosecond()))

	trials := 50

	Context("when splitting into additive shares", func() {
		It("should produce shares that sum to the original", func() {
			for i := 0; i < trials; i++ {
				dim := rand.Intn(32) + 1
				v := wideVec(dim)
				x, f := Split(v)
				sum := x.Clone()
				sum.Add(f)
				Expect(sum).To(Equal(v))
			}
		})

		It("should draw the blinding share independently of the value", func() {
			// The blinding vector is sampled from the fixed range
			// regardless of the value being split.
			for i := 0; i < trials; i++ {
				v := wideVec(8)
				_, f := Split(v)
				for j := range f {
					Expect(f[j]).To(BeNumerically(">=", 1))
					Expect(f[j]).To(BeNumerically("<=", 1024))
				}
			}
		})
	})

	Context("when computing inner products", func() {
		It("should select an element via a basis vector", func() {
			for i := 0; i < trials; i++ {
				dim := rand.Intn(32) + 1
				idx := rand.Intn(dim)
				v := wideVec(dim)
				Expect(Basis(dim, idx, 1).Dot(v)).To(Equal(v[idx]))
			}
		})

		It("should distribute over additive shares", func() {
			for i := 0; i < trials; i++ {
				dim := rand.Intn(32) + 1
				x, y := wideVec(dim), wideVec(dim)
				x0, x1 := Split(x)
				Expect(x0.Dot(y) + x1.Dot(y)).To(Equal(x.Dot(y)))
			}
		})
	})

	Context("when arithmetic overflows", func() {
		It("should wrap in two's complement", func() {
			v := Vec{math.MaxInt64}
			v.Add(Vec{1})
			Expect(v[0]).To(Equal(int64(math.MinInt64)))

			w := Vec{math.MinInt64}
			w.Sub(Vec{1})
			Expect(w[0]).To(Equal(int64(math.MaxInt64)))
		})

		It("should be undone by the inverse operation", func() {
			for i := 0; i < trials; i++ {
				dim := rand.Intn(32) + 1
				v := wideVec(dim)
				w := wideVec(dim)
				sum := v.Clone()
				sum.Add(w)
				sum.Sub(w)
				Expect(sum).To(Equal(v))
			}
		})
	})

	Context("when negating", func() {
		It("should cancel against the original", func() {
			for i := 0; i < trials; i++ {
				dim := rand.Intn(32) + 1
				v := wideVec(dim)
				sum := v.Clone()
				sum.Add(v.Neg())
				Expect(sum).To(Equal(NewVec(dim)))
			}
		})
	})
})
