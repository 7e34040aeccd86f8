// Package model defines the domain types shared across the client:
// orders, trades, depth, prices, and markets, plus the price-domain
// constants for binary Yes/No markets.
package model
