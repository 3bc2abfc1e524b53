// Package textutil provides text processing utilities for comparison
// normalization, token-set similarity scoring, and filename sanitization.
//
// The primary use cases are:
//   - Normalizing artist/album strings for case- and accent-insensitive
//     comparison
//   - Computing a 0-100 token-set similarity ratio between two titles
//   - Sanitizing filenames for safe filesystem use
//
// Tokenization lowercases text and splits on non-alphanumeric characters.
// Similarity scoring compares token sets regardless of order, so
// "Abbey Road (Remastered)" and "Remastered Abbey Road" score as equal.
package textutil
