package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// SyncStatus tracks where a cached record stands relative to the server.
type SyncStatus string

const (
	SyncSynced          SyncStatus = "synced"
	SyncPendingUpload   SyncStatus = "pending_upload"
	SyncPendingDownload SyncStatus = "pending_download"
	SyncConflict        SyncStatus = "conflict"
	SyncError           SyncStatus = "error"
)

// Meta is the sync metadata the cache stamps onto every record. LastModified
// is set on every local mutation and is informational only; it takes no part
// in conflict detection.
type Meta struct {
	Status       SyncStatus `json:"status"`
	LastModified time.Time  `json:"lastModified"`
	Deleted      bool       `json:"deleted"`
}

// Entity constrains the generic cache and repository layers to the cached
// record kinds. Every cached entity exposes its identifier.
type Entity interface {
	User | Exercise | Workout | Assignment
	EntityID() string
}

// Kind names one of the cached entity kinds.
type Kind string

const (
	KindUser       Kind = "user"
	KindExercise   Kind = "exercise"
	KindWorkout    Kind = "workout"
	KindAssignment Kind = "assignment"
)

// KindOrder is the fixed order entity kinds are synced in. A slow or failing
// kind never blocks the kinds after it.
var KindOrder = []Kind{KindUser, KindExercise, KindWorkout, KindAssignment}

// Record is a tagged union over the four cached entity kinds. It replaces
// opaque any-typed records at the points where the sync layer has to handle
// heterogeneous entities (pending listings, cycle reports): the set of
// variants is closed and each one has a typed accessor.
type Record struct {
	kind       Kind
	user       *User
	exercise   *Exercise
	workout    *Workout
	assignment *Assignment
}

func UserRecord(u User) Record             { return Record{kind: KindUser, user: &u} }
func ExerciseRecord(e Exercise) Record     { return Record{kind: KindExercise, exercise: &e} }
func WorkoutRecord(w Workout) Record       { return Record{kind: KindWorkout, workout: &w} }
func AssignmentRecord(a Assignment) Record { return Record{kind: KindAssignment, assignment: &a} }

func (r Record) Kind() Kind { return r.kind }

// ID returns the wrapped entity's identifier.
func (r Record) ID() string {
	switch r.kind {
	case KindUser:
		return r.user.ID
	case KindExercise:
		return r.exercise.ID
	case KindWorkout:
		return r.workout.ID
	case KindAssignment:
		return r.assignment.ID
	}
	return ""
}

func (r Record) User() (User, bool) {
	if r.kind != KindUser {
		return User{}, false
	}
	return *r.user, true
}

func (r Record) Exercise() (Exercise, bool) {
	if r.kind != KindExercise {
		return Exercise{}, false
	}
	return *r.exercise, true
}

func (r Record) Workout() (Workout, bool) {
	if r.kind != KindWorkout {
		return Workout{}, false
	}
	return *r.workout, true
}

func (r Record) Assignment() (Assignment, bool) {
	if r.kind != KindAssignment {
		return Assignment{}, false
	}
	return *r.assignment, true
}

// MarshalJSON emits {"kind": ..., "<kind>": {...}} so the control API can
// report mixed-kind listings without losing the variant tag.
func (r Record) MarshalJSON() ([]byte, error) {
	payload := map[string]any{"kind": r.kind}
	switch r.kind {
	case KindUser:
		payload["user"] = r.user
	case KindExercise:
		payload["exercise"] = r.exercise
	case KindWorkout:
		payload["workout"] = r.workout
	case KindAssignment:
		payload["assignment"] = r.assignment
	default:
		return nil, fmt.Errorf("record has unknown kind %q", r.kind)
	}
	return json.Marshal(payload)
}
