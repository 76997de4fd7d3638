// Package pool provides bucketed sync.Pool instances for reducing allocations
// in the segmentation pipeline's hot paths: the animation writer's RGB,
// palette-index and palette buffers, and the quantizer's median-cut
// histogram.
package pool

import "sync"

// Size classes for the byte-slice pool.
const (
	Size256B = 256
	Size1K   = 1024
	Size4K   = 4096
	Size16K  = 16384
	Size64K  = 65536
	Size256K = 262144
	Size1M   = 1048576
)

var byteSizes = [7]int{Size256B, Size1K, Size4K, Size16K, Size64K, Size256K, Size1M}

func bucketIndex(size int) int {
	switch {
	case size <= Size256B:
		return 0
	case size <= Size1K:
		return 1
	case size <= Size4K:
		return 2
	case size <= Size16K:
		return 3
	case size <= Size64K:
		return 4
	case size <= Size256K:
		return 5
	default:
		return 6
	}
}

var bytePools [7]sync.Pool

func init() {
	for i := range bytePools {
		sz := byteSizes[i]
		bytePools[i] = sync.Pool{
			New: func() any {
				b := make([]byte, sz)
				return &b
			},
		}
	}
}

// Get returns a byte slice of at least the requested size. The returned
// slice has length == size and may have a larger capacity. The caller must
// call Put when done.
//
// Used for the concatenated multi-frame RGB buffer handed to the quantizer
// and for per-frame palette-index buffers handed to the GIF encoder.
func Get(size int) []byte {
	idx := bucketIndex(size)
	bp := bytePools[idx].Get().(*[]byte)
	b := *bp
	if cap(b) < size {
		b = make([]byte, size)
		*bp = b
		return b
	}
	return b[:size]
}

// Put returns a byte slice obtained from Get to the pool. Slices smaller
// than Size256B are not pooled.
func Put(b []byte) {
	c := cap(b)
	if c < Size256B {
		return
	}
	idx := bucketIndex(c)
	b = b[:c]
	bytePools[idx].Put(&b)
}

// int32Sizes mirrors byteSizes but counts in int32 elements rather than
// bytes, since the quantizer's per-box histogram is fixed-shape but gets
// allocated once per split.
const (
	Int32Size256 = 256
	Int32Size1K  = 1024
	Int32Size8K  = 8192
)

var int32Sizes = [3]int{Int32Size256, Int32Size1K, Int32Size8K}

func int32BucketIndex(size int) int {
	switch {
	case size <= Int32Size256:
		return 0
	case size <= Int32Size1K:
		return 1
	default:
		return 2
	}
}

var int32Pools [3]sync.Pool

func init() {
	for i := range int32Pools {
		n := int32Sizes[i]
		int32Pools[i] = sync.Pool{
			New: func() any {
				s := make([]int32, n)
				return &s
			},
		}
	}
}

// GetInt32 returns an int32 slice of at least the requested length, zeroed.
// Used for the median-cut histogram (256 bins) and similar small fixed-shape
// scratch arrays that are allocated once per split and would otherwise
// generate garbage proportional to the number of box splits.
func GetInt32(length int) []int32 {
	if length > Int32Size8K {
		return make([]int32, length)
	}
	idx := int32BucketIndex(length)
	sp := int32Pools[idx].Get().(*[]int32)
	s := *sp
	if cap(s) < length {
		s = make([]int32, length)
		*sp = s
		return s
	}
	s = s[:length]
	for i := range s {
		s[i] = 0
	}
	return s
}

// PutInt32 returns an int32 slice obtained from GetInt32 to the pool.
func PutInt32(s []int32) {
	c := cap(s)
	if c > Int32Size8K {
		return
	}
	idx := int32BucketIndex(c)
	s = s[:c]
	int32Pools[idx].Put(&s)
}
