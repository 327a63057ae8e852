package types

import "time"

// Project is a persisted unit of user code plus the metadata needed to
// render and run it.
type Project struct {
	// ID is the unique identifier of the project, a UUID string.
	ID string `json:"_id" bson:"_id" db:"id"`

	// Name is the mutable display name.
	Name string `json:"name" bson:"name" db:"name"`

	// Language is the language key the project was created with
	// (python, java, javascript, cpp, c, go, bash or anything else).
	Language string `json:"projLanguage" bson:"projLanguage" db:"language"`

	// Code is the current source body. It starts as the starter template
	// for Language and is overwritten verbatim on every save.
	Code string `json:"code" bson:"code" db:"code"`

	// OwnerID references the user who created the project. Immutable.
	OwnerID string `json:"createdBy" bson:"createdBy" db:"owner_id"`

	// Version is an opaque runtime version tag supplied by the client.
	Version string `json:"version" bson:"version" db:"version"`

	// CreatedAt is the creation timestamp.
	CreatedAt time.Time `json:"date" bson:"date" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent save or rename.
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt" db:"updated_at"`
}

// Language describes a language the playground knows how to seed and run.
type Language struct {
	// Key is the value clients send as projLanguage.
	Key string `json:"key"`

	// Extension is the default file extension for source files.
	Extension string `json:"extension"`

	// StarterCode is the template a new project starts with.
	StarterCode string `json:"starterCode"`

	// RunnerID is the Judge0 language id used to execute the code.
	RunnerID int `json:"runnerId"`
}

// RunResult is the outcome of executing a project's code.
type RunResult struct {
	// Output is the text shown to the user: stdout on success, otherwise
	// stderr, compiler output or the runner's status message.
	Output string `json:"output"`

	// IsError reports whether Output came from an error channel.
	IsError bool `json:"isError"`

	// Status is the runner's status description (e.g. "Accepted").
	Status string `json:"status,omitempty"`

	// Time is the wall time reported by the runner, in seconds.
	Time string `json:"time,omitempty"`

	// Memory is the peak memory reported by the runner, in kilobytes.
	Memory int64 `json:"memory,omitempty"`
}
