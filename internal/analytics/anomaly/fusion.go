package anomaly

// Fuse combines the three detector flag columns into the final verdict with
// a logical OR: any single detector triggering marks the row anomalous. This
// is a deliberate high-recall policy; in this domain a missed fault costs
// more than a false positive. The inputs must all align to the table's row
// order.
func Fuse(z, iso, residual []bool) []bool {
	out := make([]bool, len(z))
	for i := range out {
		out[i] = z[i] || iso[i] || residual[i]
	}
	return out
}
