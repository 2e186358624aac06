package atlas

import (
	"time"
)

// Status is the lifecycle state of a managed atlas.
type Status string

const (
	// StatusInstalled indicates that the atlas was downloaded during this run.
	StatusInstalled Status = "installed"

	// StatusCurrent indicates that the atlas was already present and left untouched.
	StatusCurrent Status = "current"

	// StatusUpdated indicates that an outdated atlas was replaced by the latest version.
	StatusUpdated Status = "updated"

	// StatusFailed indicates that installing or updating the atlas failed.
	StatusFailed Status = "failed"
)

// Instance records the state of an atlas managed by Sync.
type Instance struct {
	SyncedAt time.Time `json:"synced_at"`
	Name     string    `json:"name"`
	Path     string    `json:"path,omitempty"`
	Version  string    `json:"version,omitempty"`
	Status   Status    `json:"status"`
	Error    string    `json:"error,omitempty"`
}

// NewInstance creates a new atlas instance.
func NewInstance(name string) *Instance {
	return &Instance{Name: name}
}

// SetStatus sets the status of the instance and stamps the sync time.
func (i *Instance) SetStatus(status Status) {
	i.Status = status
	i.SyncedAt = time.Now()
	if status != StatusFailed {
		i.Error = ""
	}
}

// SetError marks the instance as failed with err.
func (i *Instance) SetError(err error) {
	i.SetStatus(StatusFailed)
	i.Error = err.Error()
}
