// Package analysis looks at recorded metric series after the fact.
//
//   - [Spectrum] and [Dominant]: where a metric's energy sits in frequency
//   - [Crossings] and [Period]: upward threshold crossings of a metric
//   - [Portrait]: one metric plotted against another as text
//
// Lesson metrics are sums of sine and cosine terms, so the dominant
// frequency of a clean recording recovers the fastest-moving term:
//
//	f, ok := analysis.Dominant(values, dt)
//	// f ≈ term.Freq / (2π) for the largest term
package analysis
