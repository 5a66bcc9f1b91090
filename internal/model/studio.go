package model

import "time"

// Studio represents a single screening room. Each studio has a fixed
// physical seating layout described by rows in the `seats` table.
// Studios are created by administration and are read-only to the
// reservation core.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – unique studio name.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Studio struct {
	ID        uint64    // studios.id
	Name      string    // studios.name
	CreatedAt time.Time // studios.created_at
	UpdatedAt time.Time // studios.updated_at
}
