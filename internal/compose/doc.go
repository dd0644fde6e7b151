// Package compose lays retained frames out onto A4 pages and assembles the
// paginated PDF. Layout is a deterministic single greedy pass over the
// sequence; rendering rasterizes each page and hands the page images to
// pdfcpu for assembly.
package compose
