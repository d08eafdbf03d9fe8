package projection

import "time"

// Metadata holds the persistence timestamps of a stored aggregate.
type Metadata struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Created stamps an aggregate inserted at the given instant.
func Created(at time.Time) Metadata {
	return Metadata{CreatedAt: at, UpdatedAt: at}
}

// Touched keeps the creation time and moves UpdatedAt forward.
func (m Metadata) Touched(at time.Time) Metadata {
	m.UpdatedAt = at
	return m
}

// Projection is an aggregate as read back from a store.
type Projection[T any] struct {
	Entity   T
	Metadata Metadata
}

// Map converts the entity and keeps the metadata. A nil projection maps to nil.
func Map[T, U any](p *Projection[T], fn func(T) U) *Projection[U] {
	if p == nil {
		return nil
	}
	return &Projection[U]{Entity: fn(p.Entity), Metadata: p.Metadata}
}
