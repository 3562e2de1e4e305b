// Package optflate is the LZ77 stage of an optimal DEFLATE compressor.
//
// A DEFLATE compressor has two main parts:
//   - Something that looks for repeated sequences of bytes
//   - An encoder for the compressed data format (Huffman coding)
//
// This package holds the first part: a hash chain over a 32 KiB window, a
// longest-match finder with a per-block cache, a store for the resulting
// literal/length/distance commands, and a shortest-path parser that iterates
// with a statistical cost model until the parse stops improving. The
// flate subpackage turns stores into a bit stream, choosing block boundaries
// and Huffman codes.
package optflate

import "log"

const (
	// WindowSize is the size of the sliding window, in bytes.
	WindowSize = 32768
	windowMask = WindowSize - 1

	// MinMatch is the shortest back-reference DEFLATE can express.
	MinMatch = 3

	// MaxMatch is the longest back-reference DEFLATE can express.
	MaxMatch = 258

	// maxChainHits limits how many hash chain links are followed
	// per match search.
	maxChainHits = 8192

	// cacheLength is the number of sublength entries kept per position in
	// the match cache.
	cacheLength = 8

	// NumLL is the size of the literal/length alphabet (including the two
	// unused symbols 286 and 287).
	NumLL = 288

	// NumD is the size of the distance alphabet (including the two unused
	// symbols 30 and 31).
	NumD = 32

	largeFloat = 1e30
)

// Options controls how hard the compressor works.
type Options struct {
	// Verbose logs a summary of block sizes and iteration progress.
	Verbose bool

	// VerboseMore logs every iteration of the optimal parser.
	VerboseMore bool

	// NumIterations is how many times the optimal parser refines its cost
	// model. More iterations give slightly smaller output, and take
	// proportionally longer. 0 keeps only the parse made with the fixed
	// code costs; a negative value selects the default of 15.
	NumIterations int

	// BlockSplitting enables searching for block boundaries where a new set
	// of Huffman codes pays off.
	BlockSplitting bool

	// BlockSplittingMax is the maximum number of blocks the input is split
	// into; 0 means unlimited. The default is 15.
	BlockSplittingMax int

	// Logger receives the verbose output. If it is nil, the standard
	// logger is used.
	Logger *log.Logger
}

// DefaultOptions returns the recommended settings.
func DefaultOptions() *Options {
	return &Options{
		NumIterations:     15,
		BlockSplitting:    true,
		BlockSplittingMax: 15,
	}
}

func (o *Options) logf(format string, args ...interface{}) {
	if o.Logger != nil {
		o.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

// Logf writes to the configured logger if Verbose or VerboseMore is set.
func (o *Options) Logf(format string, args ...interface{}) {
	if o == nil || !(o.Verbose || o.VerboseMore) {
		return
	}
	o.logf(format, args...)
}
