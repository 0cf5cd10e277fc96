// Package inline implements per-token spelling correction for OCR output.
//
// Correction is driven by indices built from a training corpus: a case
// preserving unigram counter and its folded form, a bigram counter, a map
// from lowercased words to their observed casings, a map from OCR shape
// keys to dictionary words, and a map from anagram hashes to words. The
// two shape indices answer the question "which known words could this
// broken token have been" without scanning the vocabulary:
//
//   - the anagram hash is invariant under character permutation, and
//     adding or removing a character shifts it by a known delta, so a
//     neighbourhood is enumerated by adding hash deltas drawn from a
//     precomputed character alphabet;
//   - the OCR key collapses characters into eight visual shape classes,
//     so digit/letter confusions ("b00k") land on the shape of their
//     correction, reachable by perturbing one run weight.
//
// Candidates from both indices are fused, recased against the observed
// casings, boosted with bigram context and settled into at most two
// spellings; callers usually reduce that to one.
//
// Frequency counters are pruned before indexing (see Prune) so the hash
// neighbourhoods stay small; candidate scoring still reads the unpruned
// folded counters.
package inline
