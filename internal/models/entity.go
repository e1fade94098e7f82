package models

import "fmt"

// EntityType identifies the kind of bookable capacity unit
type EntityType string

const (
	EntityTrip EntityType = "trip"
	EntityCar  EntityType = "car"
)

// Valid reports whether t is a known entity type
func (t EntityType) Valid() bool {
	return t == EntityTrip || t == EntityCar
}

// EntityRef addresses a single seat ledger entry
type EntityRef struct {
	Type EntityType `json:"entity_type"`
	ID   int64      `json:"entity_id"`
}

// TripRef returns the ledger reference for a scheduled bus trip
func TripRef(tripID int64) EntityRef {
	return EntityRef{Type: EntityTrip, ID: tripID}
}

// CarRef returns the ledger reference for a private car
func CarRef(carID int64) EntityRef {
	return EntityRef{Type: EntityCar, ID: carID}
}

func (r EntityRef) String() string {
	return fmt.Sprintf("%s:%d", r.Type, r.ID)
}
