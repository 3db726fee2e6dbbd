// Package mtbridge is a process-wide translation façade.
//
// It keeps a cache of loaded translation models keyed by caller-chosen
// strings, owns a single shared translation-engine handle, and exposes direct
// and pivot batch translation plus language detection. The package is the
// core behind the C ABI in cmd/libmtbridge, but it is an ordinary Go library
// and can be used directly.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/mtbridge"
//	    "github.com/ZaguanLabs/mtbridge/engine"
//	    "github.com/ZaguanLabs/mtbridge/langdetect"
//	)
//
//	func main() {
//	    svc := mtbridge.NewService(engine.NewMockEngine(),
//	        mtbridge.WithDetector(langdetect.New()),
//	    )
//
//	    ctx := context.Background()
//	    if err := svc.LoadModel(ctx, []byte(cfg), "en-de"); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    out, err := svc.Translate(ctx, []string{"Hello"}, "en-de")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(out[0])
//	}
package mtbridge
