// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Key Principles:
// 1. Domain entities carry no GORM tags
// 2. Persistence models hold table mappings and indexes
// 3. ToDomain / FromDomain functions convert between the two
//
// Structure:
// - base.go: OwnedModel shared by every user-owned table
// - catalog_item.go: source and channel catalog items
// - match.go: matches and their input/output join rows
// - order.go: orders, line items and planned purchases
// - platform.go: platforms, shops and channels
package models
