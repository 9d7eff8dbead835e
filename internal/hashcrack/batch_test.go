package hashcrack

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionCoversRangeExactlyOnce(t *testing.T) {
	for _, n := range []int{1, 63, 64, 65, 511, 512, 513, 10_000, 12_345} {
		for _, size := range []int{64, 100, 512, 4096} {
			t.Run(fmt.Sprintf("n=%d/size=%d", n, size), func(t *testing.T) {
				batches := Partition(n, size)
				require.Len(t, batches, (n+size-1)/size)

				next := 0
				for i, b := range batches {
					require.Equal(t, next, b.Start, "batch %d must start where the previous ended", i)
					require.Greater(t, b.End, b.Start)
					if i < len(batches)-1 {
						require.Equal(t, size, b.Len())
					} else {
						require.LessOrEqual(t, b.Len(), size)
					}
					next = b.End
				}
				assert.Equal(t, n, next)
			})
		}
	}
}

func TestPartitionEmpty(t *testing.T) {
	assert.Empty(t, Partition(0, 64))
	assert.Empty(t, Partition(10, 0))
}

func TestChooseBatchSize(t *testing.T) {
	tests := []struct {
		total int
		want  int
	}{
		{0, 512},
		{9_999, 512},
		{10_000, 1024},
		{99_999, 1024},
		{100_000, 2048},
		{999_999, 2048},
		{1_000_000, 4096},
		{50_000_000, 4096},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ChooseBatchSize(tt.total), "total=%d", tt.total)
	}
}

func TestConfigNormalize(t *testing.T) {
	cpus := runtime.NumCPU()
	tests := []struct {
		name  string
		in    Config
		total int
		want  Config
	}{
		{
			name:  "defaults",
			in:    Config{},
			total: 20_000,
			want: Config{
				Workers:         cpus,
				BatchSize:       1024,
				QueueCapacity:   4 * cpus,
				ShutdownTimeout: DefaultShutdownTimeout,
			},
		},
		{
			name:  "clamped",
			in:    Config{Workers: 3, BatchSize: 10, QueueCapacity: 1},
			total: 5,
			want: Config{
				Workers:         3,
				BatchSize:       MinBatchSize,
				QueueCapacity:   6,
				ShutdownTimeout: DefaultShutdownTimeout,
			},
		},
		{
			name:  "negative workers",
			in:    Config{Workers: -4, BatchSize: 128, QueueCapacity: 1000},
			total: 5,
			want: Config{
				Workers:         cpus,
				BatchSize:       128,
				QueueCapacity:   1000,
				ShutdownTimeout: DefaultShutdownTimeout,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.normalize(tt.total))
		})
	}
}
