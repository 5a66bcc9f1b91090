package model

import "time"

// Movie represents a film in the catalog. Movies are managed by
// administration; the reservation core only reads them to enrich
// schedule listings and ticket views. This struct corresponds to a
// row in the `movies` table.
//
// Fields:
//  ID          – primary key identifier.
//  Title       – movie title shown on tickets and listings.
//  Description – optional synopsis.
//  Duration    – running time in minutes (nil if unknown).
//  CreatedAt   – timestamp when the movie was created.
//  UpdatedAt   – timestamp of last update.
type Movie struct {
	ID          uint64    // movies.id
	Title       string    // movies.title
	Description *string   // movies.description (nullable)
	Duration    *uint32   // movies.duration_min (nullable)
	CreatedAt   time.Time // movies.created_at
	UpdatedAt   time.Time // movies.updated_at
}
