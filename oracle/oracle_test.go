// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package oracle_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"

	"github.com/db47h/prbsim/lfsr"
	"github.com/db47h/prbsim/oracle"
)

func bitString(s string) []bool {
	out := make([]bool, len(s))
	for i := range s {
		out[i] = s[i] == '1'
	}
	return out
}

func overflows(t oracle.Trace) []bool {
	out := make([]bool, len(t))
	for i := range t {
		out[i] = t[i].Overflow
	}
	return out
}

func sum(vs []int) int {
	var s int
	for _, v := range vs {
		s += v
	}
	return s
}

var _ = Describe("Config", func() {
	It("should validate the defaults", func() {
		for _, c := range []oracle.Config{oracle.DefaultConfig(), oracle.DefaultSingleConfig()} {
			Expect(c.Validate()).To(Succeed())
		}
	})

	DescribeTable("should reject invalid configurations",
		func(f func(c *oracle.Config)) {
			c := oracle.DefaultConfig()
			f(&c)
			err := c.Validate()
			Expect(err).To(HaveOccurred())
			Expect(errors.Cause(err)).To(Equal(oracle.ErrConfig))
			_, err = oracle.NewSequence(c)
			Expect(errors.Cause(err)).To(Equal(oracle.ErrConfig))
		},
		Entry("zero cycles", func(c *oracle.Config) { c.Cycles = 0 }),
		Entry("seed A", func(c *oracle.Config) { c.SeedA = lfsr.Width }),
		Entry("seed B", func(c *oracle.Config) { c.SeedB = -1 }),
		Entry("threshold A", func(c *oracle.Config) { c.ThresholdA = 16 }),
		Entry("threshold B", func(c *oracle.Config) { c.InputBits, c.ThresholdB = 2, 4 }),
		Entry("bit width", func(c *oracle.Config) { c.InputBits = 0 }),
		Entry("window", func(c *oracle.Config) { c.Window = 0 }),
		Entry("mode", func(c *oracle.Config) { c.Mode = 7 }),
		Entry("history", func(c *oracle.Config) { c.History = 3 }),
	)

	It("should ignore multiplier fields in single mode", func() {
		c := oracle.DefaultSingleConfig()
		c.ThresholdA, c.Window = 1000, 0
		Expect(c.Validate()).To(Succeed())
	})

	It("should parse modes and policies", func() {
		var m oracle.Mode
		Expect(m.UnmarshalText([]byte("multiplier"))).To(Succeed())
		Expect(m).To(Equal(oracle.ModeMultiplier))
		Expect(oracle.ModeSingle.String()).To(Equal("single"))
		_, err := oracle.ParseMode("dual")
		Expect(errors.Cause(err)).To(Equal(oracle.ErrConfig))

		var h oracle.HistoryPolicy
		Expect(h.UnmarshalText([]byte("zero"))).To(Succeed())
		Expect(h).To(Equal(oracle.HistoryZero))
		txt, err := oracle.HistoryWrap.MarshalText()
		Expect(err).NotTo(HaveOccurred())
		Expect(string(txt)).To(Equal("wrap"))
		Expect(oracle.HistoryPolicy(5).String()).To(Equal("HistoryPolicy(5)"))
	})
})

var _ = Describe("Generate", func() {
	Context("in single mode", func() {
		var tr oracle.Trace

		BeforeEach(func() {
			var err error
			tr, err = oracle.Generate(oracle.DefaultSingleConfig())
			Expect(err).NotTo(HaveOccurred())
		})

		It("should produce the reference sequence from seed 30", func() {
			Expect(tr).To(HaveLen(10000))
			Expect(tr[0].Bit).To(BeFalse())
			var ones []int
			for _, r := range tr {
				if r.Bit && len(ones) < 5 {
					ones = append(ones, r.Cycle)
				}
			}
			Expect(ones).To(Equal([]int{30, 58, 61, 86, 92}))
			Expect(tr.Ones()).To(Equal(3952))
		})

		It("should match the raw generator output", func() {
			seed, _ := lfsr.Seed(lfsr.DefaultSeed)
			bits, err := lfsr.Bits(seed, len(tr))
			Expect(err).NotTo(HaveOccurred())
			Expect(tr.Bits()).To(Equal(bits))
			for _, r := range tr {
				Expect(r.A).To(Equal(r.Bit))
				Expect(r.Valid || r.Overflow || r.SA || r.SB).To(BeFalse())
			}
		})
	})

	Context("in multiplier mode", func() {
		It("should decode a mean close to 0.5 for p = 0.5", func() {
			tr, err := oracle.Generate(oracle.DefaultConfig())
			Expect(err).NotTo(HaveOccurred())
			vs := tr.Values()
			Expect(vs).To(HaveLen(12500))
			Expect(tr.Mean() / 7).To(BeNumerically("~", 0.5, 0.1))
			Expect(sum(vs)).To(Equal(49203))
			Expect(tr.Overflows()).To(Equal(150))
			Expect(tr.Ones()).To(Equal(50405))
		})

		DescribeTable("should reproduce the first 64 cycles",
			func(h oracle.HistoryPolicy) {
				c := oracle.DefaultConfig()
				c.Cycles, c.History = 64, h
				tr, err := oracle.Generate(c)
				Expect(err).NotTo(HaveOccurred())
				Expect(tr.Values()).To(Equal([]int{0, 7, 0, 0, 6, 0, 0, 0}))
				Expect(overflows(tr)).To(Equal(bitString(
					"0000000000000001000000010000000000000001000000010000000100000000")))
				Expect(tr.Bits()).To(Equal(bitString(
					"0111111111111111111111111111110011111111111111111111111111001001")))
			},
			Entry("wrap", oracle.HistoryWrap),
			Entry("zero", oracle.HistoryZero),
		)

		It("should hold the presented value between boundaries", func() {
			c := oracle.DefaultConfig()
			c.Cycles = 24
			tr, err := oracle.Generate(c)
			Expect(err).NotTo(HaveOccurred())
			for _, r := range tr {
				Expect(r.Valid).To(Equal(r.Cycle%8 == 0))
				switch {
				case r.Cycle < 8:
					Expect(r.Value).To(Equal(0))
				case r.Cycle < 16:
					Expect(r.Value).To(Equal(7))
				default:
					Expect(r.Value).To(Equal(0))
				}
			}
		})

		It("should wrap the SNG history over the run", func() {
			c := oracle.DefaultConfig()
			c.Cycles = 93
			wrap, err := oracle.Generate(c)
			Expect(err).NotTo(HaveOccurred())
			c.History = oracle.HistoryZero
			zero, err := oracle.Generate(c)
			Expect(err).NotTo(HaveOccurred())

			// channel A outputs 1 on cycle 92, channel B 0 on cycles 90 to 92.
			for i, r := range []uint{4, 2, 1, 0} {
				Expect(wrap[i].RandA).To(Equal(r))
				Expect(zero[i].RandA).To(BeZero())
			}
			for i, r := range []uint{8, 4, 2, 1} {
				Expect(wrap[i].RandB).To(Equal(r))
				Expect(zero[i].RandB).To(Equal(r))
			}
			// with threshold 8 the difference does not reach the stochastic bits.
			Expect(oracle.Diff(wrap, zero)).NotTo(BeEmpty())
			Expect(oracle.ObservableDiff(c.Mode, wrap, zero)).To(BeEmpty())
		})

		DescribeTable("should read wrapped history modulo the run length",
			func(n int) {
				c := oracle.DefaultConfig()
				c.Cycles = n
				tr, err := oracle.Generate(c)
				Expect(err).NotTo(HaveOccurred())
				sa, _ := lfsr.Seed(c.SeedA)
				sb, _ := lfsr.Seed(c.SeedB)
				a, err := lfsr.Bits(sa, n)
				Expect(err).NotTo(HaveOccurred())
				b, err := lfsr.Bits(sb, n)
				Expect(err).NotTo(HaveOccurred())
				for i := 0; i < c.InputBits; i++ {
					Expect(tr[i].RandA).To(Equal(wrappedRand(a, i, c.InputBits)), "cycle %d", i)
					Expect(tr[i].RandB).To(Equal(wrappedRand(b, i, c.InputBits)), "cycle %d", i)
				}
			},
			Entry("61 cycles", 61),
			Entry("62 cycles", 62),
			Entry("93 cycles", 93),
			Entry("95 cycles", 95),
			Entry("1000 cycles", 1000),
		)

		It("should saturate the decoder with p = 1", func() {
			c := oracle.DefaultConfig()
			c.ThresholdA, c.ThresholdB = 0, 0
			c.Cycles = 800
			tr, err := oracle.Generate(c)
			Expect(err).NotTo(HaveOccurred())
			Expect(tr.Ones()).To(Equal(800))
			Expect(tr.Mean()).To(BeZero())
			Expect(tr.Overflows()).To(Equal(100))
			for _, r := range tr {
				Expect(r.Overflow).To(Equal(r.Cycle%8 == 7))
			}
		})

		DescribeTable("should track the threshold",
			func(t uint, mean float64) {
				c := oracle.DefaultConfig()
				c.ThresholdA, c.ThresholdB = t, t
				tr, err := oracle.Generate(c)
				Expect(err).NotTo(HaveOccurred())
				Expect(tr.Mean() / 7).To(BeNumerically("~", mean, 1e-4))
			},
			Entry("p = 0.75", uint(12), 0.65784),
			Entry("p = 0.9375", uint(15), 0.236),
		)
	})

	It("should be deterministic", func() {
		c := oracle.DefaultConfig()
		c.Cycles = 5000
		a, err := oracle.Generate(c)
		Expect(err).NotTo(HaveOccurred())
		b, err := oracle.Generate(c)
		Expect(err).NotTo(HaveOccurred())
		Expect(oracle.Diff(a, b)).To(BeEmpty())
	})
})

var _ = Describe("Sequence", func() {
	It("should yield the same records as Generate", func() {
		c := oracle.DefaultConfig()
		c.Cycles = 2000
		tr, err := oracle.Generate(c)
		Expect(err).NotTo(HaveOccurred())
		s, err := oracle.NewSequence(c)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Len()).To(Equal(2000))
		for pass := 0; pass < 2; pass++ {
			var got oracle.Trace
			for r, ok := s.Next(); ok; r, ok = s.Next() {
				got = append(got, r)
			}
			Expect(oracle.Diff(tr, got)).To(BeEmpty())
			Expect(s.Cycle()).To(Equal(2000))
			s.Reset()
		}
	})

	It("should stop after the last cycle", func() {
		c := oracle.DefaultSingleConfig()
		c.Cycles = 3
		s, err := oracle.NewSequence(c)
		Expect(err).NotTo(HaveOccurred())
		for i := 0; i < 3; i++ {
			_, ok := s.Next()
			Expect(ok).To(BeTrue())
		}
		_, ok := s.Next()
		Expect(ok).To(BeFalse())
		Expect(s.Config()).To(Equal(c))
	})
})

// wrappedRand returns the SNG random value of cycle i, reading cycle i-tt at
// out[(i-tt) mod len(out)].
func wrappedRand(out []bool, i, bits int) uint {
	n := len(out)
	var r uint
	for tt := 0; tt < bits; tt++ {
		r <<= 1
		if out[((i-tt)%n+n)%n] {
			r |= 1
		}
	}
	return r
}
