package partition

// UpdatePartitions back-patches every pack's ThisPartition, PreviousPartition,
// and FooterPartition fields from the packs' recorded absolute offsets,
// given in file order. offsets[i] is the byte offset at which packs[i]'s
// partition pack KLV begins.
//
// After this call, for every i>=1: packs[i].PreviousPartition ==
// packs[i-1].ThisPartition, and for all i: packs[i].FooterPartition ==
// offsets of the last (Footer) partition (spec §8).
func UpdatePartitions(packs []*Pack, offsets []int64) {
	if len(packs) == 0 {
		return
	}

	footerOffset := offsets[len(offsets)-1]

	for i, p := range packs {
		p.ThisPartition = uint64(offsets[i]) //nolint:gosec
		if i == 0 {
			p.PreviousPartition = 0
		} else {
			p.PreviousPartition = uint64(offsets[i-1]) //nolint:gosec
		}
		p.FooterPartition = uint64(footerOffset) //nolint:gosec
	}
}
