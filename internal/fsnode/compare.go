package fsnode

// Compare returns a bitmask of Compare* flags describing how b differs
// from a. Two absent nodes are identity-equal; an absent node compared
// against a present one is maximally different (every applicable bit
// set). Equality of digests follows the null-digest rule: a node with no
// digest only compares equal in that respect to another node with no
// digest.
func Compare(a, b Node) uint32 {
	if !a.IsPresent() && !b.IsPresent() {
		return CompareIdentical
	}
	if a.IsPresent() != b.IsPresent() {
		return CompareTypeDiffers | CompareModeDiffers | ComparePermDiffers |
			CompareUIDDiffers | CompareGIDDiffers | CompareSizeDiffers | CompareDataDiffers
	}

	var flags uint32
	if (a.Mode & uint32(typeMask)) != (b.Mode & uint32(typeMask)) {
		flags |= CompareTypeDiffers
	}
	if a.Mode != b.Mode {
		flags |= CompareModeDiffers
	}
	if (a.Mode &^ uint32(typeMask)) != (b.Mode &^ uint32(typeMask)) {
		flags |= ComparePermDiffers
	}
	if a.UID != b.UID {
		flags |= CompareUIDDiffers
	}
	if a.GID != b.GID {
		flags |= CompareGIDDiffers
	}
	if a.Size != b.Size {
		flags |= CompareSizeDiffers
	}
	if !digestEqual(a, b) {
		flags |= CompareDataDiffers
	}
	return flags
}

func digestEqual(a, b Node) bool {
	if a.digestSet != b.digestSet {
		return false
	}
	if !a.digestSet {
		return true
	}
	return a.digest == b.digest
}

// Differs reports whether flags (as returned by Compare) indicates any
// difference at all.
func Differs(flags uint32) bool { return flags != CompareIdentical }
