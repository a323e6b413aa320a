// Package mxf is the container engine's root facade: edit-rate
// reconciliation shared by the application layers, and the file envelope
// that orchestrates header, body, and footer partitions, the RIP, and the
// back-patching of offsets once a file is complete.
//
// For fine-grained control over any one layer, use the klv, partition,
// datamodel, metadata, indextable, and rip packages directly.
package mxf

import (
	"math/big"

	"github.com/mxfgo/mxf/partition"
	"github.com/mxfgo/mxf/rip"
	"github.com/mxfgo/mxf/ulid"
)

// ConvertEditRate converts position, expressed in fromRate edit units, into
// the equivalent position in toRate edit units, rounding half away from
// zero. Used to reconcile durations across structural components and
// descriptors that track different edit rates (e.g. video at 25/1, audio
// at 48000/1).
func ConvertEditRate(position int64, fromRate, toRate ulid.Rational) int64 {
	if fromRate.Numerator == 0 || toRate.Denominator == 0 {
		return 0
	}

	// position * toRate.Num * fromRate.Den, over fromRate.Num * toRate.Den,
	// rounded half away from zero. big.Rat keeps this exact regardless of
	// how large position or the rate components get.
	num := big.NewInt(position)
	num.Mul(num, big.NewInt(int64(toRate.Numerator)))
	num.Mul(num, big.NewInt(int64(fromRate.Denominator)))

	den := big.NewInt(int64(fromRate.Numerator))
	den.Mul(den, big.NewInt(int64(toRate.Denominator)))

	return roundHalfAwayFromZero(num, den)
}

func roundHalfAwayFromZero(num, den *big.Int) int64 {
	neg := (num.Sign() < 0) != (den.Sign() < 0)
	absNum := new(big.Int).Abs(num)
	absDen := new(big.Int).Abs(den)

	quo, rem := new(big.Int), new(big.Int)
	quo.QuoRem(absNum, absDen, rem)

	doubledRem := new(big.Int).Lsh(rem, 1)
	if doubledRem.Cmp(absDen) >= 0 {
		quo.Add(quo, big.NewInt(1))
	}

	result := quo.Int64()
	if neg {
		result = -result
	}

	return result
}

// Envelope tracks the partitions written to one file in creation order, so
// that UpdatePartitions can be run and the RIP built once the file is
// complete.
type Envelope struct {
	Packs    []*partition.Pack
	Offsets  []int64
	BodySIDs []uint32
}

// NewEnvelope creates an empty envelope.
func NewEnvelope() *Envelope {
	return &Envelope{}
}

// RecordPartition appends a partition to the envelope's write-order list,
// along with the absolute byte offset it was written at and the body SID
// it carries (0 for the header/footer partitions, which have no essence).
func (e *Envelope) RecordPartition(pack *partition.Pack, offset int64, bodySID uint32) {
	e.Packs = append(e.Packs, pack)
	e.Offsets = append(e.Offsets, offset)
	e.BodySIDs = append(e.BodySIDs, bodySID)
}

// Finalize propagates the final this/previous/footer offsets into every
// recorded partition pack (partition.UpdatePartitions) and builds the RIP
// pack listing every partition's body SID and offset. Header and index byte
// counts are not touched here; partition.Markers.ApplyTo sets those.
func (e *Envelope) Finalize() (*rip.Pack, error) {
	partition.UpdatePartitions(e.Packs, e.Offsets)

	return rip.FromPartitions(e.BodySIDs, e.Offsets)
}
