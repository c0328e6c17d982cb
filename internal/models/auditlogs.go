package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

const (
	ActionCreate = "CREATE"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
	ActionImport = "IMPORT"
)

type AuditLog struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Timestamp   time.Time          `bson:"timestamp" json:"timestamp"`
	Entity      string             `bson:"entity" json:"entity"`
	Action      string             `bson:"action" json:"action"`
	PerformedBy string             `bson:"performed_by" json:"performed_by"` // user id, or "system" for batch jobs
	Data        any                `bson:"data" json:"data"`
	Exported    bool               `bson:"exported" json:"exported"`
}
