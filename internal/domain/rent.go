package domain

// AccountStorageOverhead is the per-account metadata size charged on top of
// an account's data when computing rent.
const AccountStorageOverhead = 128

// Rent holds the parameters used to price account storage.
type Rent struct {
	LamportsPerByteYear uint64
	ExemptionThreshold  float64
}

// DefaultRent returns the mainnet rent parameters.
func DefaultRent() Rent {
	return Rent{
		LamportsPerByteYear: 3480,
		ExemptionThreshold:  2.0,
	}
}

// MinimumBalance returns the lamports an account of the given data size must
// hold to be rent exempt.
func (r Rent) MinimumBalance(space int) uint64 {
	bytes := uint64(AccountStorageOverhead + space)
	return uint64(float64(bytes*r.LamportsPerByteYear) * r.ExemptionThreshold)
}
