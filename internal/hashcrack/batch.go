package hashcrack

// Batch is the half-open index range [Start, End) of the candidate list
// handled by one task.
type Batch struct {
	Start int
	End   int
}

func (b Batch) Len() int {
	return b.End - b.Start
}

// Partition splits n candidates into ceil(n/size) contiguous batches. Only
// the last batch may be shorter than size.
func Partition(n, size int) []Batch {
	if n <= 0 || size <= 0 {
		return nil
	}
	batches := make([]Batch, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		batches = append(batches, Batch{Start: start, End: min(start+size, n)})
	}
	return batches
}
