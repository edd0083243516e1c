// Package pipeline runs SVG documents through an ordered list of steps.
//
// A file is read, optimized, verified against attribute loss, guarded
// against growth and finally written to the output directory. Each stage
// is a Step that receives the current model.Document and can modify it.
// BatchProcessor runs one fresh pipeline per document, sequentially by
// default or with a bounded number of workers using errgroup.
package pipeline
