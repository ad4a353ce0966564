// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package sc_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"

	"github.com/db47h/prbsim/sc"
)

// window returns the most-recent-first window whose value is r.
func window(bits int, r uint) []bool {
	w := make([]bool, bits)
	for tt := range w {
		w[tt] = r>>uint(bits-1-tt)&1 != 0
	}
	return w
}

var _ = Describe("SNG", func() {
	It("should weigh the most recent bit highest", func() {
		Expect(sc.Rand([]bool{true, false, false, false})).To(Equal(uint(8)))
		Expect(sc.Rand([]bool{false, false, false, true})).To(Equal(uint(1)))
		Expect(sc.Rand([]bool{true, false, true, true})).To(Equal(uint(11)))
		Expect(sc.Rand(nil)).To(BeZero())
	})

	It("should emit 1 iff threshold > rand for every 4-bit pair", func() {
		for t := uint(0); t < 16; t++ {
			for r := uint(0); r < 16; r++ {
				w := window(4, r)
				Expect(sc.Rand(w)).To(Equal(r))
				Expect(sc.Bit(w, t)).To(Equal(t > r), "T=%d R=%d", t, r)
			}
		}
	})

	It("should emit 0 on equality", func() {
		for r := uint(0); r < 16; r++ {
			Expect(sc.Bit(window(4, r), r)).To(BeFalse())
		}
	})

	DescribeTable("should validate thresholds",
		func(bits int, threshold uint, expected error) {
			err := sc.CheckThreshold(bits, threshold)
			if expected == nil {
				Expect(err).NotTo(HaveOccurred())
			} else {
				Expect(errors.Cause(err)).To(Equal(expected))
			}
		},
		Entry("lowest", 4, uint(0), nil),
		Entry("highest", 4, uint(15), nil),
		Entry("too high", 4, uint(16), sc.ErrThreshold),
		Entry("8 bits", 8, uint(255), nil),
		Entry("zero width", 0, uint(0), sc.ErrBits),
		Entry("too wide", sc.MaxBits+1, uint(0), sc.ErrBits),
	)

	It("should shift bits into its window", func() {
		s, err := sc.NewSNG(4, 8, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Next(true)).To(BeFalse()) // 1000 = 8
		Expect(s.Rand()).To(Equal(uint(8)))
		Expect(s.Next(false)).To(BeTrue()) // 0100 = 4
		Expect(s.Rand()).To(Equal(uint(4)))
		Expect(s.Next(true)).To(BeFalse()) // 1010 = 10
		Expect(s.Window()).To(Equal([]bool{true, false, true, false}))
		Expect(s.Threshold()).To(Equal(uint(8)))
	})

	It("should start from the given history", func() {
		// history: cycle -1 = 1, cycle -2 = 1, cycle -3 = 0
		s, err := sc.NewSNG(4, 15, []bool{true, true, false})
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Next(false)).To(BeTrue()) // 0110 = 6
		Expect(s.Rand()).To(Equal(uint(6)))
		// extra history bits are ignored
		s, err = sc.NewSNG(2, 3, []bool{true, true, true})
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Next(true)).To(BeFalse()) // 11 = 3
	})

	It("should weigh every history bit at its own position", func() {
		// history: cycle -1 = 1, cycle -2 = 0, cycle -3 = 1
		s, err := sc.NewSNG(4, 0, []bool{true, false, true})
		Expect(err).NotTo(HaveOccurred())
		s.Next(true) // 1101 = 13
		Expect(s.Rand()).To(Equal(uint(13)))
		s.Next(false) // 0110 = 6
		Expect(s.Rand()).To(Equal(uint(6)))
		s.Next(false) // 0011 = 3
		Expect(s.Rand()).To(Equal(uint(3)))
		Expect(s.Window()).To(Equal([]bool{false, false, true, true}))
	})

	It("should reject invalid thresholds", func() {
		_, err := sc.NewSNG(4, 16, nil)
		Expect(errors.Cause(err)).To(Equal(sc.ErrThreshold))
	})
})

var _ = Describe("Multiply", func() {
	DescribeTable("should implement XNOR",
		func(a, b, expected bool) {
			Expect(sc.Multiply(a, b)).To(Equal(expected))
		},
		Entry("0 x 0", false, false, true),
		Entry("0 x 1", false, true, false),
		Entry("1 x 0", true, false, false),
		Entry("1 x 1", true, true, true),
	)
})

var _ = Describe("Decoder", func() {
	var d *sc.Decoder

	BeforeEach(func() {
		var err error
		d, err = sc.NewDecoder(8)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should flag exactly one overflow on the W-th 1 bit", func() {
		var flags []int
		for i := 0; i < 8; i++ {
			if d.Step(true).Overflow {
				flags = append(flags, i)
			}
		}
		Expect(flags).To(Equal([]int{7}))
		Expect(d.Count()).To(BeZero())
	})

	It("should emit the previous window count on boundaries", func() {
		o := d.Step(true)
		Expect(o).To(Equal(sc.Output{Value: 0, Valid: true}))
		for i := 1; i < 8; i++ {
			o = d.Step(i%2 == 0)
			Expect(o.Valid).To(BeFalse())
		}
		// cycles 0, 2, 4, 6 were 1
		Expect(d.Count()).To(Equal(4))
		o = d.Step(false)
		Expect(o).To(Equal(sc.Output{Value: 4, Valid: true}))
		Expect(d.Count()).To(BeZero())
		Expect(d.State().Cycle).To(Equal(9))
	})

	It("should emit before counting the boundary cycle", func() {
		for i := 0; i < 8; i++ {
			d.Step(i < 3)
		}
		o := d.Step(true)
		Expect(o.Value).To(Equal(3))
		Expect(d.Count()).To(Equal(1))
	})

	It("should be a pure step function", func() {
		s := sc.DecoderState{Cycle: 15, Count: 7}
		n, o := sc.DecodeStep(s, true, 8)
		Expect(n).To(Equal(sc.DecoderState{Cycle: 16, Count: 0}))
		Expect(o).To(Equal(sc.Output{Overflow: true}))
		Expect(s).To(Equal(sc.DecoderState{Cycle: 15, Count: 7}))
		n, o = sc.DecodeStep(n, false, 8)
		Expect(n).To(Equal(sc.DecoderState{Cycle: 17, Count: 0}))
		Expect(o).To(Equal(sc.Output{Value: 0, Valid: true}))
	})

	It("should restart on reset", func() {
		d.Step(true)
		d.Step(true)
		d.Reset()
		Expect(d.State()).To(Equal(sc.DecoderState{}))
		Expect(d.Window()).To(Equal(8))
	})

	It("should reject invalid windows", func() {
		_, err := sc.NewDecoder(0)
		Expect(errors.Cause(err)).To(Equal(sc.ErrWindow))
	})
})
