// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
// - base.go: BaseModel shared by every table
// - identity.go: project authorizations
// - app.go: installed Apps with their JSON configuration
// - catalog.go: catalogs, product feeds and products
// - template.go: templates, translations, headers and buttons
package models
