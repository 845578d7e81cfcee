// Package model defines the shipment tracking domain records and their
// closed enumerations. Field-level validity is enforced by the storage
// layer; these types only describe shape.
package model

import "time"

// ShipmentStatus is the lifecycle state of a shipment.
type ShipmentStatus string

const (
	StatusPending        ShipmentStatus = "PENDING"
	StatusInTransit      ShipmentStatus = "IN_TRANSIT"
	StatusOutForDelivery ShipmentStatus = "OUT_FOR_DELIVERY"
	StatusDelivered      ShipmentStatus = "DELIVERED"
	StatusDelayed        ShipmentStatus = "DELAYED"
	StatusCancelled      ShipmentStatus = "CANCELLED"
)

// ShipmentStatuses lists every valid status in declaration order.
var ShipmentStatuses = []ShipmentStatus{
	StatusPending,
	StatusInTransit,
	StatusOutForDelivery,
	StatusDelivered,
	StatusDelayed,
	StatusCancelled,
}

// Priority orders shipments by urgency.
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityStandard Priority = "STANDARD"
	PriorityHigh     Priority = "HIGH"
	PriorityUrgent   Priority = "URGENT"
)

// Priorities lists every valid priority in declaration order.
var Priorities = []Priority{PriorityLow, PriorityStandard, PriorityHigh, PriorityUrgent}

// ShipmentType classifies how a shipment moves.
type ShipmentType string

const (
	TypeParcel        ShipmentType = "PARCEL"
	TypeFreight       ShipmentType = "FREIGHT"
	TypeExpress       ShipmentType = "EXPRESS"
	TypeInternational ShipmentType = "INTERNATIONAL"
)

// ShipmentTypes lists every valid shipment type in declaration order.
var ShipmentTypes = []ShipmentType{TypeParcel, TypeFreight, TypeExpress, TypeInternational}

// Role is the authorization role attached to a user account.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleEmployee Role = "EMPLOYEE"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleEmployee}

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// Shipment is a tracked shipment record.
type Shipment struct {
	ID                string
	TrackingNumber    string
	Description       string
	Status            ShipmentStatus
	Priority          Priority
	ShipmentType      ShipmentType
	Carrier           string
	Flagged           bool
	OriginCity        string
	OriginState       string
	DestinationCity   string
	DestinationState  string
	Cost              float64
	EstimatedDelivery time.Time
	DeliveredAt       *time.Time
	CreatedBy         string
	UpdatedBy         string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// User is an account that creates and updates shipments.
type User struct {
	ID        string
	Email     string
	Name      string
	Role      Role
	CreatedAt time.Time
}

// ShipmentStats aggregates counters over the shipment collection.
type ShipmentStats struct {
	CountsByStatus map[ShipmentStatus]int
	FlaggedCount   int
	AverageCost    float64
	TotalCost      float64
}
