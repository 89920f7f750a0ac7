// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Key Principles:
// 1. Domain entities are free of GORM tags and infrastructure concerns
// 2. Persistence models contain all GORM annotations and table mappings
// 3. Each model converts to and from its domain entity (ToDomain / FromDomain)
// 4. Repositories use persistence models for database operations
//
// Structure:
// - base.go: BaseModel, AggregateModel and the AutoMigrate list
// - catalog.go: products and categories
// - partner.go: suppliers and customers
// - inventory.go: batches, stock movements and adjustments
// - trade.go: purchase orders, purchase returns, sales and sale returns
// - finance.go: supplier bills, bill payments and customer due payments
// - sequence.go: per-day document number counters
//
// Columns avoid database-specific defaults so the same models migrate on
// both PostgreSQL and SQLite.
package models
