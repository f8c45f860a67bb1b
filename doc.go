// Package fiscal computes the realized capital gains and losses of a
// portfolio, year by year, from its list of buy and sell operations.
//
// The calculation is a pipeline of small stateless steps:
//   - Normalization: every operation priced in a foreign currency gets a
//     price and fees expressed in the reporting currency, using rates from a
//     rates.Provider. Missing rates degrade to a 1:1 conversion and are
//     reported as such.
//   - Matching: operations are replayed in chronological order (ties keep
//     the feed order). Buys open lots, sells consume the oldest open lots
//     first (FIFO) and each consumed lot produces one MatchResult.
//   - Wash sales: a loss is partially or totally disallowed when the same
//     instrument was bought again within 60 days around the sale, in
//     proportion to the quantity bought again.
//   - Aggregation: results are grouped by calendar year of the sale into
//     YearSummary buckets.
//
// All amounts use arbitrary precision decimals, results are deterministic.
package fiscal
