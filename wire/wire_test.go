package wire_test

import (
	"bytes"
	"math/rand"
	"testing"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	. "github.com/renproject/duoram/wire"

	"github.com/renproject/duoram/ring"
)

func TestWire(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "wire")
}

var _ = Describe("Wire codec", func() {
	rand.Seed(int64(time.Now().Nanosecond()))

	trials := 50

	Context("when round-tripping primitives", func() {
		It("should preserve u8 values", func() {
			for i := 0; i < trials; i++ {
				v := uint8(rand.Intn(256))
				buf := new(bytes.Buffer)
				Expect(WriteU8(buf, v)).To(Succeed())
				got, err := ReadU8(buf)
				Expect(err).ToNot(HaveOccurred())
				Expect(got).To(Equal(v))
			}
		})

		It("should preserve u32 values", func() {
			for i := 0; i < trials; i++ {
				v := rand.Uint32()
				buf := new(bytes.Buffer)
				Expect(WriteU32(buf, v)).To(Succeed())
				got, err := ReadU32(buf)
				Expect(err).ToNot(HaveOccurred())
				Expect(got).To(Equal(v))
			}
		})

		It("should preserve i64 values including negatives", func() {
			for i := 0; i < trials; i++ {
				v := int64(rand.Uint64())
				buf := new(bytes.Buffer)
				Expect(WriteI64(buf, v)).To(Succeed())
				got, err := ReadI64(buf)
				Expect(err).ToNot(HaveOccurred())
				Expect(got).To(Equal(v))
			}
		})
	})

	Context("when encoding to the wire", func() {
		It("should write big-endian u32", func() {
			buf := new(bytes.Buffer)
			Expect(WriteU32(buf, 0x01020304)).To(Succeed())
			Expect(buf.Bytes()).To(Equal([]byte{0x01, 0x02, 0x03, 0x04}))
		})

		It("should write two's-complement big-endian i64", func() {
			buf := new(bytes.Buffer)
			Expect(WriteI64(buf, -2)).To(Succeed())
			Expect(buf.Bytes()).To(Equal([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFE}))
		})

		It("should prefix vectors with their u32 element count", func() {
			buf := new(bytes.Buffer)
			Expect(WriteVec(buf, ring.Vec{1, -2})).To(Succeed())
			Expect(buf.Bytes()).To(Equal([]byte{
				0x00, 0x00, 0x00, 0x02,
				0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01,
				0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFE,
			}))
		})

		It("should write raw elements without a prefix", func() {
			buf := new(bytes.Buffer)
			Expect(WriteElems(buf, ring.Vec{1})).To(Succeed())
			Expect(buf.Bytes()).To(Equal([]byte{
				0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01,
			}))
		})
	})

	Context("when round-tripping vectors", func() {
		It("should preserve length-prefixed vectors", func() {
			for i := 0; i < trials; i++ {
				dim := rand.Intn(64)
				v := make(ring.Vec, dim)
				for j := range v {
					v[j] = int64(rand.Uint64())
				}
				buf := new(bytes.Buffer)
				Expect(WriteVec(buf, v)).To(Succeed())
				got, err := ReadVec(buf)
				Expect(err).ToNot(HaveOccurred())
				Expect(got).To(HaveLen(dim))
				for j := range v {
					Expect(got[j]).To(Equal(v[j]))
				}
			}
		})

		It("should preserve raw element runs", func() {
			for i := 0; i < trials; i++ {
				dim := rand.Intn(64) + 1
				v := make(ring.Vec, dim)
				for j := range v {
					v[j] = int64(rand.Uint64())
				}
				buf := new(bytes.Buffer)
				Expect(WriteElems(buf, v)).To(Succeed())
				got, err := ReadElems(buf, dim)
				Expect(err).ToNot(HaveOccurred())
				Expect(got).To(Equal(v))
			}
		})
	})

	Context("when a frame is truncated", func() {
		It("should fail reading a short i64", func() {
			_, err := ReadI64(bytes.NewReader([]byte{0x00, 0x01}))
			Expect(err).To(HaveOccurred())
		})

		It("should fail reading a vector cut off mid-element", func() {
			buf := new(bytes.Buffer)
			Expect(WriteVec(buf, ring.Vec{1, 2, 3})).To(Succeed())
			short := buf.Bytes()[:buf.Len()-5]
			_, err := ReadVec(bytes.NewReader(short))
			Expect(err).To(HaveOccurred())
		})

		It("should fail reading a vector missing elements entirely", func() {
			// Length prefix promises 4 elements but none follow.
			_, err := ReadVec(bytes.NewReader([]byte{0x00, 0x00, 0x00, 0x04}))
			Expect(err).To(HaveOccurred())
		})
	})

	Context("when a length prefix is absurd", func() {
		It("should reject it before allocating", func() {
			_, err := ReadVec(bytes.NewReader([]byte{0xFF, 0xFF, 0xFF, 0xFF}))
			Expect(err).To(HaveOccurred())
		})
	})
})
