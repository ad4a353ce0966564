// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package lfsr_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"

	"github.com/db47h/prbsim/lfsr"
)

// packs the first 64 bits of a stream, bit i = cycle i.
func pack(bits []bool) uint64 {
	var v uint64
	for i, b := range bits {
		if b {
			v |= 1 << uint(i)
		}
	}
	return v
}

var _ = Describe("LFSR", func() {
	Describe("State", func() {
		It("should seed exactly one register", func() {
			for p := 0; p < lfsr.Width; p++ {
				s, err := lfsr.Seed(p)
				Expect(err).NotTo(HaveOccurred())
				Expect(uint32(s)).To(Equal(uint32(1) << uint(p)))
				Expect(s.Bit(p)).To(BeTrue())
				Expect(s.Valid()).To(BeTrue())
			}
		})

		It("should reject out of range seed positions", func() {
			for _, p := range []int{-1, lfsr.Width, 64} {
				_, err := lfsr.Seed(p)
				Expect(errors.Cause(err)).To(Equal(lfsr.ErrSeedPosition))
			}
		})

		It("should reject the all-zero state", func() {
			_, err := lfsr.NewState(0)
			Expect(errors.Cause(err)).To(Equal(lfsr.ErrZeroState))
			// bit 31 is outside the register
			_, err = lfsr.NewState(1 << 31)
			Expect(errors.Cause(err)).To(Equal(lfsr.ErrZeroState))
			_, err = lfsr.NewGenerator(0)
			Expect(errors.Cause(err)).To(Equal(lfsr.ErrZeroState))
		})

		It("should print registers from position 0", func() {
			s, _ := lfsr.Seed(30)
			Expect(s.String()).To(Equal("0000000000000000000000000000001"))
			s, _ = lfsr.Seed(0)
			Expect(s.String()).To(Equal("1000000000000000000000000000000"))
		})
	})

	Describe("Step", func() {
		It("should shift the feedback into position 0", func() {
			seed, _ := lfsr.Seed(30)
			s, out := lfsr.Step(seed)
			// feedback = s[27] ^ s[30] = 0 ^ 1
			Expect(s.Bit(0)).To(BeTrue())
			// output is the new position 30, i.e. the old position 29
			Expect(out).To(BeFalse())
			Expect(uint32(s)).To(Equal(uint32(1)))
		})

		It("should move every register up one position", func() {
			s := lfsr.State(0x12345678 & (1<<lfsr.Width - 1))
			n, _ := lfsr.Step(s)
			for p := 1; p < lfsr.Width; p++ {
				Expect(n.Bit(p)).To(Equal(s.Bit(p-1)), "position %d", p)
			}
			Expect(n.Bit(0)).To(Equal(s.Bit(lfsr.TapA) != s.Bit(lfsr.TapB)))
		})

		It("should output the register content of position 30", func() {
			s, _ := lfsr.Seed(7)
			for i := 0; i < 1000; i++ {
				var out bool
				s, out = lfsr.Step(s)
				Expect(out).To(Equal(s.Bit(lfsr.Output)))
			}
		})
	})

	Describe("Generator", func() {
		var g *lfsr.Generator

		BeforeEach(func() {
			seed, err := lfsr.Seed(lfsr.DefaultSeed)
			Expect(err).NotTo(HaveOccurred())
			g, err = lfsr.NewGenerator(seed)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should reproduce the reference sequence", func() {
			var ones []int
			for i := 0; i < 100; i++ {
				if g.Next() {
					ones = append(ones, i)
				}
			}
			Expect(ones).To(Equal([]int{30, 58, 61, 86, 92}))
		})

		It("should reproduce the first 64 bits", func() {
			seed, _ := lfsr.Seed(lfsr.DefaultSeed)
			bits, err := lfsr.Bits(seed, 64)
			Expect(err).NotTo(HaveOccurred())
			Expect(pack(bits)).To(Equal(uint64(0x2400000040000000)))
		})

		It("should reach the reference state after 10000 cycles", func() {
			ones := 0
			for i := 0; i < 10000; i++ {
				if g.Next() {
					ones++
				}
			}
			Expect(g.Cycles()).To(Equal(uint64(10000)))
			Expect(uint32(g.State())).To(Equal(uint32(0x893ad83)))
			Expect(ones).To(Equal(3952))
		})

		It("should restart from the seed on reset", func() {
			first := make([]bool, 200)
			for i := range first {
				first[i] = g.Next()
			}
			g.Reset()
			Expect(g.State()).To(Equal(g.Seed()))
			Expect(g.Cycles()).To(BeZero())
			for i := range first {
				Expect(g.Next()).To(Equal(first[i]), "cycle %d", i)
			}
		})

		It("should run independent instances", func() {
			sa, _ := lfsr.Seed(lfsr.DefaultSeedA)
			sb, _ := lfsr.Seed(lfsr.DefaultSeedB)
			a, _ := lfsr.NewGenerator(sa)
			b, _ := lfsr.NewGenerator(sb)
			a.Next()
			// B was seeded one shift behind A.
			Expect(b.State()).NotTo(Equal(a.State()))
			b.Next()
			Expect(b.State()).To(Equal(sa))
			b.Next()
			Expect(b.State()).To(Equal(a.State()))
		})
	})

	Describe("Tail", func() {
		It("should return the last bits of a run, most recent first", func() {
			seed, _ := lfsr.Seed(lfsr.DefaultSeed)
			tail, err := lfsr.Tail(seed, 93, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(tail).To(Equal([]bool{true, false, false}))
		})

		It("should wrap over runs shorter than the tail", func() {
			seed, _ := lfsr.Seed(lfsr.DefaultSeed)
			tail, err := lfsr.Tail(seed, 31, 33)
			Expect(err).NotTo(HaveOccurred())
			Expect(tail[0]).To(BeTrue())
			Expect(tail[1]).To(BeFalse())
			Expect(tail[31]).To(BeTrue())
			Expect(tail[32]).To(BeFalse())
		})

		It("should match Bits", func() {
			seed, _ := lfsr.Seed(3)
			bits, _ := lfsr.Bits(seed, 500)
			tail, err := lfsr.Tail(seed, 500, 16)
			Expect(err).NotTo(HaveOccurred())
			for j := range tail {
				Expect(tail[j]).To(Equal(bits[499-j]))
			}
		})

		It("should reject empty runs", func() {
			seed, _ := lfsr.Seed(3)
			_, err := lfsr.Tail(seed, 0, 3)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Sequence properties", func() {
		It("should not repeat a state early", func() {
			seed, _ := lfsr.Seed(lfsr.DefaultSeed)
			seen := make(map[lfsr.State]struct{}, 1<<18)
			s := seed
			for i := 0; i < 1<<18; i++ {
				_, dup := seen[s]
				Expect(dup).To(BeFalse(), "state %v repeats at step %d", s, i)
				seen[s] = struct{}{}
				s, _ = lfsr.Step(s)
				Expect(s.Valid()).To(BeTrue())
			}
		})

		DescribeTable("should have maximal length",
			func(v uint32) {
				if testing.Short() {
					Skip("full period walk skipped in short mode")
				}
				seed, err := lfsr.NewState(v)
				Expect(err).NotTo(HaveOccurred())
				s := seed
				var first uint64
				for i := uint64(1); i <= lfsr.Period; i++ {
					s, _ = lfsr.Step(s)
					if s == 0 {
						Fail("reached the all-zero state")
					}
					if s == seed {
						first = i
						break
					}
				}
				Expect(first).To(Equal(uint64(lfsr.Period)))
			},
			Entry("seed at position 30", uint32(1)<<30),
			Entry("seed at position 0", uint32(1)),
			Entry("arbitrary seed", uint32(0x5a5a5a5a)),
		)
	})
})
