package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeGroupCreated             = "group.created"
	EventTypeGroupRenamed             = "group.renamed"
	EventTypeGroupDeleted             = "group.deleted"
	EventTypeGroupMenusReplaced       = "group.menus_replaced"
	EventTypeGroupPermissionsReplaced = "group.permissions_replaced"

	EventTypeEmployeeCreated = "employee.created"
	EventTypeEmployeeUpdated = "employee.updated"
	EventTypeEmployeeDeleted = "employee.deleted"
)

// AccessEventTypes lists every event the audit log subscribes to.
var AccessEventTypes = []string{
	EventTypeGroupCreated,
	EventTypeGroupRenamed,
	EventTypeGroupDeleted,
	EventTypeGroupMenusReplaced,
	EventTypeGroupPermissionsReplaced,
	EventTypeEmployeeCreated,
	EventTypeEmployeeUpdated,
	EventTypeEmployeeDeleted,
}

func newBaseEvent(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// GroupEvent covers the lifecycle of a group and changes to its menus or grants.
type GroupEvent struct {
	BaseEvent
	GroupID   int64  `json:"group_id"`
	GroupName string `json:"group_name,omitempty"`
	ActorID   int64  `json:"actor_id,omitempty"`
	Count     int    `json:"count"`
}

func NewGroupEvent(eventType string, groupID int64, groupName string, actorID int64, count int) *GroupEvent {
	return &GroupEvent{
		BaseEvent: newBaseEvent(eventType, map[string]interface{}{
			"group_id":   groupID,
			"group_name": groupName,
			"actor_id":   actorID,
			"count":      count,
		}),
		GroupID:   groupID,
		GroupName: groupName,
		ActorID:   actorID,
		Count:     count,
	}
}

type EmployeeEvent struct {
	BaseEvent
	EmployeeID int64  `json:"employee_id"`
	Email      string `json:"email"`
	GroupID    *int64 `json:"group_id,omitempty"`
	ActorID    int64  `json:"actor_id,omitempty"`
}

func NewEmployeeEvent(eventType string, employeeID int64, email string, groupID *int64, actorID int64) *EmployeeEvent {
	data := map[string]interface{}{
		"employee_id": employeeID,
		"email":       email,
		"actor_id":    actorID,
	}
	if groupID != nil {
		data["group_id"] = *groupID
	}
	return &EmployeeEvent{
		BaseEvent:  newBaseEvent(eventType, data),
		EmployeeID: employeeID,
		Email:      email,
		GroupID:    groupID,
		ActorID:    actorID,
	}
}
