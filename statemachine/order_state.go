package statemachine

import (
	"errors"
	"fmt"
	"strings"

	"restaurant-dashboard/models"
)

var (
	ErrTerminal       = errors.New("order is in a terminal state")
	ErrUnknownStatus  = errors.New("unknown order status")
	ErrOverrideDenied = errors.New("only admin may override an order status")
	ErrNoChange       = errors.New("order already has this status")
)

// ErrInvalidTransition wraps every refused move between live states
var ErrInvalidTransition = errors.New("invalid transition")

// Transition defines a valid state change and who can perform it
type Transition struct {
	From  models.OrderStatus `json:"from"`
	To    models.OrderStatus `json:"to"`
	Actor models.UserRole    `json:"actor"`
}

// validTransitions is the authoritative state machine definition
var validTransitions = []Transition{
	// Kitchen takes the order and cooks it
	{From: models.StatusPending, To: models.StatusPreparing, Actor: models.RoleChef},
	{From: models.StatusPending, To: models.StatusPreparing, Actor: models.RoleAdmin},
	{From: models.StatusPreparing, To: models.StatusReady, Actor: models.RoleChef},
	{From: models.StatusPreparing, To: models.StatusReady, Actor: models.RoleAdmin},
	// Driver collects and delivers
	{From: models.StatusReady, To: models.StatusShipping, Actor: models.RoleDriver},
	{From: models.StatusReady, To: models.StatusShipping, Actor: models.RoleAdmin},
	{From: models.StatusShipping, To: models.StatusDelivered, Actor: models.RoleDriver},
	{From: models.StatusShipping, To: models.StatusDelivered, Actor: models.RoleAdmin},
	// Cancellation
	{From: models.StatusPending, To: models.StatusCancelled, Actor: models.RoleClient},
	{From: models.StatusPending, To: models.StatusCancelled, Actor: models.RoleChef},
	{From: models.StatusPreparing, To: models.StatusCancelled, Actor: models.RoleChef},
	{From: models.StatusPending, To: models.StatusCancelled, Actor: models.RoleAdmin},
	{From: models.StatusPreparing, To: models.StatusCancelled, Actor: models.RoleAdmin},
	{From: models.StatusReady, To: models.StatusCancelled, Actor: models.RoleAdmin},
	{From: models.StatusShipping, To: models.StatusCancelled, Actor: models.RoleAdmin},
}

// transitionKey is used to look up valid transitions quickly
type transitionKey struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor models.UserRole
}

var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// ValidTransitionsFrom returns all valid next states from a given state, any actor
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	seen := map[models.OrderStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// ValidNext returns the states a given actor may move an order to. It feeds
// the status dropdown so illegal targets are never offered.
func ValidNext(status models.OrderStatus, actor models.UserRole) []models.OrderStatus {
	var nexts []models.OrderStatus
	for _, t := range validTransitions {
		if t.From == status && t.Actor == actor {
			nexts = append(nexts, t.To)
		}
	}
	return nexts
}

// CanTransition checks if a given actor can move from one state to another
func CanTransition(from, to models.OrderStatus, actor models.UserRole) error {
	if !from.Valid() || !to.Valid() {
		return ErrUnknownStatus
	}
	if from == to {
		return ErrNoChange
	}
	if transitionMap[transitionKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	if from.Terminal() {
		return ErrTerminal
	}
	return fmt.Errorf(
		"%w: %s → %s is not allowed for actor '%s'. Valid transitions from %s are: %s",
		ErrInvalidTransition, from, to, actor, from, describeValidFrom(from),
	)
}

// Override is the admin escape hatch for manual corrections. Any move to a
// different known status is accepted, backward ones included.
func Override(from, to models.OrderStatus, actor models.UserRole) error {
	if actor != models.RoleAdmin {
		return ErrOverrideDenied
	}
	if !from.Valid() || !to.Valid() {
		return ErrUnknownStatus
	}
	if from == to {
		return ErrNoChange
	}
	return nil
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	names := make([]string, len(nexts))
	for i, s := range nexts {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}
