// Package config parses and validates podtend manifests: the YAML
// documents declaring resources and their desired state.
package config

import (
	"time"

	"gopkg.in/yaml.v3"

	"github.com/podtend/podtend/internal/reconcile"
)

// Manifest is the full manifest document.
type Manifest struct {
	Version     string     `yaml:"version,omitempty"`
	Name        string     `yaml:"name,omitempty" validate:"omitempty,max=100"`
	Description string     `yaml:"description,omitempty"`
	Settings    Settings   `yaml:"settings,omitempty"`
	Resources   []Resource `yaml:"resources" validate:"required,min=1,dive"`
}

// Settings holds global execution parameters. Everything here can also
// be set per invocation with CLI flags; flags win.
type Settings struct {
	Executable string   `yaml:"executable,omitempty"`
	GlobalArgs []string `yaml:"global_args,omitempty"`
	// Timeout bounds each external invocation, in seconds. Zero means
	// no timeout.
	Timeout int  `yaml:"timeout,omitempty" validate:"omitempty,min=1,max=86400"`
	DryRun  bool `yaml:"dry_run,omitempty"`
	Verbose bool `yaml:"verbose,omitempty"`
}

// TimeoutDuration returns the configured per-invocation timeout.
func (s Settings) TimeoutDuration() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

// Resource declares one managed resource. The kind-specific options
// live in a block named after the kind:
//
//	- kind: container
//	  name: web
//	  state: started
//	  container:
//	    image: nginx
//	    publish: ["8080:80"]
type Resource struct {
	Kind    string         `yaml:"kind" validate:"required,resource_kind"`
	Name    string         `yaml:"name" validate:"required,resource_name"`
	State   string         `yaml:"state,omitempty" validate:"omitempty,oneof=present started stopped absent"`
	Options map[string]any `yaml:"-"`
}

// UnmarshalYAML decodes the fixed fields, then lifts the kind-named
// block into the open option map. Deep option validation belongs to the
// engine's normalizer, which knows each kind's registry.
func (r *Resource) UnmarshalYAML(value *yaml.Node) error {
	type baseResource struct {
		Kind  string `yaml:"kind"`
		Name  string `yaml:"name"`
		State string `yaml:"state"`
	}

	var base baseResource
	if err := value.Decode(&base); err != nil {
		return err
	}
	r.Kind = base.Kind
	r.Name = base.Name
	r.State = base.State
	r.Options = nil

	if r.Kind == "" {
		return nil
	}

	var raw map[string]any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if options, ok := raw[r.Kind].(map[string]any); ok {
		r.Options = options
	}
	return nil
}

// Spec converts the declared resource to the engine's spec type.
func (r Resource) Spec() reconcile.ResourceSpec {
	return reconcile.ResourceSpec{
		Kind:    reconcile.Kind(r.Kind),
		Name:    r.Name,
		State:   reconcile.State(r.State),
		Options: r.Options,
	}
}
