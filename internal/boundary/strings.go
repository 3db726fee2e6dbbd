package boundary

import "github.com/ZaguanLabs/mtbridge"

// Allocator hands out caller-owned copies of strings. The zero value of P is
// the null pointer.
type Allocator[P comparable] interface {
	Alloc(s string) (P, bool)
	Free(p P)
}

// Fill copies values into dst, which the caller allocated with room for
// len(values) entries. On failure every copy made so far is freed, dst is
// zeroed and an *mtbridge.AllocationError is returned.
func Fill[P comparable](dst []P, values []string, a Allocator[P]) error {
	if len(dst) < len(values) {
		return &mtbridge.InvalidArgumentError{Name: "outputs", Message: "destination shorter than values"}
	}

	for i, v := range values {
		p, ok := a.Alloc(v)
		if !ok {
			Release(dst[:i], a)
			var zero P
			for j := range dst {
				dst[j] = zero
			}
			return &mtbridge.AllocationError{Index: i, Size: len(v) + 1}
		}
		dst[i] = p
	}
	return nil
}

// Release frees every non-null entry of arr and nulls it. It does not guard
// against a second release of the same C array.
func Release[P comparable](arr []P, a Allocator[P]) {
	var zero P
	for i, p := range arr {
		if p == zero {
			continue
		}
		a.Free(p)
		arr[i] = zero
	}
}

// CollectInputs reads a pointer array, treating null entries as "".
func CollectInputs[P comparable](ptrs []P, read func(P) string) []string {
	var zero P
	inputs := make([]string, len(ptrs))
	for i, p := range ptrs {
		if p == zero {
			continue
		}
		inputs[i] = read(p)
	}
	return inputs
}
