//go:build cgo

// Command libmtbridge builds the C shared library:
//
//	go build -buildmode=c-shared -o libmtbridge.so ./cmd/libmtbridge
//
// Configuration is read from the environment on first use. Every string
// array returned through an outputs parameter is owned by the caller and
// must be released with mtbridge_free_string_array.
package main

/*
#include <stdbool.h>
#include <stdlib.h>

typedef struct {
	char language[8];
	bool is_reliable;
	int  confidence;
} MTBridgeDetectionResult;

static inline void* mtbridge_malloc(size_t n) {
	return malloc(n);
}
*/
import "C"

import (
	"context"
	"os"
	"unsafe"

	"github.com/rs/zerolog"

	"github.com/ZaguanLabs/mtbridge"
	"github.com/ZaguanLabs/mtbridge/internal/boundary"
	"github.com/ZaguanLabs/mtbridge/internal/host"
)

// Used until the host logger exists, or when it could not be built.
var fallbackLogger = zerolog.New(os.Stderr).Level(zerolog.WarnLevel).With().Timestamp().Logger()

var versionString = C.CString(mtbridge.FullVersion())

// cHeap allocates NUL-terminated copies on the C heap.
type cHeap struct{}

func (cHeap) Alloc(s string) (*C.char, bool) {
	p := (*C.char)(C.mtbridge_malloc(C.size_t(len(s) + 1)))
	if p == nil {
		return nil, false
	}
	buf := unsafe.Slice((*byte)(unsafe.Pointer(p)), len(s)+1)
	copy(buf, s)
	buf[len(s)] = 0
	return p, true
}

func (cHeap) Free(p *C.char) {
	C.free(unsafe.Pointer(p))
}

// call runs fn against the process-wide service under the boundary guard.
func call(op string, fn func(svc *mtbridge.Service) error) C.int {
	h, err := host.Default()
	if err != nil {
		return C.int(boundary.Guard(fallbackLogger, op, func() error { return err }))
	}
	return C.int(boundary.Guard(h.Logger, op, func() error { return fn(h.Service) }))
}

// reject reports a bad argument without touching shared state.
func reject(op, name, message string) C.int {
	return C.int(boundary.Guard(fallbackLogger, op, func() error {
		return &mtbridge.InvalidArgumentError{Name: name, Message: message}
	}))
}

func readInputs(inputs **C.char, count C.int) []string {
	ptrs := unsafe.Slice(inputs, int(count))
	return boundary.CollectInputs(ptrs, func(p *C.char) string { return C.GoString(p) })
}

// publish hands values to the caller as a malloc'ed array of malloc'ed
// strings. Nothing is left allocated on failure.
func publish(values []string, outputs ***C.char, outputCount *C.int) error {
	size := C.size_t(len(values)) * C.size_t(unsafe.Sizeof((*C.char)(nil)))
	arr := (**C.char)(C.mtbridge_malloc(size))
	if arr == nil {
		return &mtbridge.AllocationError{Index: -1, Size: int(size)}
	}

	dst := unsafe.Slice(arr, len(values))
	for i := range dst {
		dst[i] = nil
	}
	if err := boundary.Fill(dst, values, cHeap{}); err != nil {
		C.free(unsafe.Pointer(arr))
		return err
	}

	*outputs = arr
	*outputCount = C.int(len(values))
	return nil
}

//export mtbridge_initialize_service
func mtbridge_initialize_service() C.int {
	return call("initialize_service", func(svc *mtbridge.Service) error {
		_, err := svc.Initialize()
		return err
	})
}

//export mtbridge_load_model
func mtbridge_load_model(cfg *C.char, key *C.char) C.int {
	const op = "load_model"
	if cfg == nil {
		return reject(op, "cfg", "must not be null")
	}
	if key == nil {
		return reject(op, "key", "must not be null")
	}

	return call(op, func(svc *mtbridge.Service) error {
		return svc.LoadModel(context.Background(), []byte(C.GoString(cfg)), C.GoString(key))
	})
}

//export mtbridge_translate_multiple
func mtbridge_translate_multiple(inputs **C.char, inputCount C.int, key *C.char, outputs ***C.char, outputCount *C.int) C.int {
	const op = "translate_multiple"
	switch {
	case inputs == nil:
		return reject(op, "inputs", "must not be null")
	case inputCount <= 0:
		return reject(op, "input_count", "must be positive")
	case key == nil:
		return reject(op, "key", "must not be null")
	case outputs == nil || outputCount == nil:
		return reject(op, "outputs", "must not be null")
	}
	*outputs = nil
	*outputCount = 0

	return call(op, func(svc *mtbridge.Service) error {
		out, err := svc.Translate(context.Background(), readInputs(inputs, inputCount), C.GoString(key))
		if err != nil {
			return err
		}
		return publish(out, outputs, outputCount)
	})
}

//export mtbridge_pivot_multiple
func mtbridge_pivot_multiple(firstKey, secondKey *C.char, inputs **C.char, inputCount C.int, outputs ***C.char, outputCount *C.int) C.int {
	const op = "pivot_multiple"
	switch {
	case firstKey == nil:
		return reject(op, "first_key", "must not be null")
	case secondKey == nil:
		return reject(op, "second_key", "must not be null")
	case inputs == nil:
		return reject(op, "inputs", "must not be null")
	case inputCount <= 0:
		return reject(op, "input_count", "must be positive")
	case outputs == nil || outputCount == nil:
		return reject(op, "outputs", "must not be null")
	}
	*outputs = nil
	*outputCount = 0

	return call(op, func(svc *mtbridge.Service) error {
		out, err := svc.Pivot(context.Background(), readInputs(inputs, inputCount), C.GoString(firstKey), C.GoString(secondKey))
		if err != nil {
			return err
		}
		return publish(out, outputs, outputCount)
	})
}

//export mtbridge_detect_language
func mtbridge_detect_language(text, hint *C.char, result *C.MTBridgeDetectionResult) C.int {
	const op = "detect_language"
	if text == nil {
		return reject(op, "text", "must not be null")
	}
	if result == nil {
		return reject(op, "result", "must not be null")
	}

	return call(op, func(svc *mtbridge.Service) error {
		h := ""
		if hint != nil {
			h = C.GoString(hint)
		}

		res, err := svc.Detect(C.GoString(text), h)
		if err != nil {
			return err
		}

		lang, reliable, confidence := boundary.EncodeDetection(res)
		for i, b := range lang {
			result.language[i] = C.char(b)
		}
		result.is_reliable = C.bool(reliable)
		result.confidence = C.int(confidence)
		return nil
	})
}

// mtbridge_cleanup resets the service if it was ever built. It never builds
// it, so a cleanup without a prior call opens no connections.
//
//export mtbridge_cleanup
func mtbridge_cleanup() {
	h, ok := host.Current()
	if !ok {
		return
	}
	boundary.Guard(h.Logger, "cleanup", h.Service.Reset)
}

//export mtbridge_free_string_array
func mtbridge_free_string_array(array **C.char, count C.int) {
	if array == nil {
		return
	}
	if count > 0 {
		boundary.Release(unsafe.Slice(array, int(count)), cHeap{})
	}
	C.free(unsafe.Pointer(array))
}

//export mtbridge_version
func mtbridge_version() *C.char {
	return versionString
}

func main() {}
