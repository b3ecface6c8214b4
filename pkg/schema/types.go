package schema

import (
	"maps"
	"slices"
)

// Chart is the record set of one chart. Nested action charts are embedded in
// the step that owns them.
type Chart struct {
	ID          string            `json:"id" yaml:"id" msgpack:"id"`
	Name        string            `json:"name" yaml:"name" msgpack:"name"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty" msgpack:"description,omitempty"`
	Steps       []Step            `json:"steps" yaml:"steps" msgpack:"steps"`
	Transitions []Transition      `json:"transitions" yaml:"transitions" msgpack:"transitions"`
	Links       []Link            `json:"links" yaml:"links" msgpack:"links"`
	Macros      map[string]string `json:"macros,omitempty" yaml:"macros,omitempty" msgpack:"macros,omitempty"`
	Cursors     Cursors           `json:"cursors" yaml:"cursors" msgpack:"cursors"`
}

// Cursors is the naming and sequencing state of the chart's element factory.
type Cursors struct {
	Step       int    `json:"step" yaml:"step" msgpack:"step"`
	Transition int    `json:"transition" yaml:"transition" msgpack:"transition"`
	Link       int    `json:"link" yaml:"link" msgpack:"link"`
	Seq        uint64 `json:"seq" yaml:"seq" msgpack:"seq"`
}

// Step is the record of a step node.
type Step struct {
	ID          string   `json:"id" yaml:"id" msgpack:"id"`
	Name        string   `json:"name" yaml:"name" msgpack:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty" msgpack:"description,omitempty"`
	Layout      string   `json:"layout,omitempty" yaml:"layout,omitempty" msgpack:"layout,omitempty"`
	Seq         uint64   `json:"seq" yaml:"seq" msgpack:"seq"`
	Ordinal     int      `json:"ordinal" yaml:"ordinal" msgpack:"ordinal"`
	Null        bool     `json:"null" yaml:"null" msgpack:"null"`
	Unit        string   `json:"unit,omitempty" yaml:"unit,omitempty" msgpack:"unit,omitempty"`
	Actions     []Action `json:"actions,omitempty" yaml:"actions,omitempty" msgpack:"actions,omitempty"`
}

// Action is a named sub-chart nested under a step.
type Action struct {
	Name  string `json:"name" yaml:"name" msgpack:"name"`
	Chart Chart  `json:"chart" yaml:"chart" msgpack:"chart"`
}

// Transition is the record of a transition node.
type Transition struct {
	ID          string `json:"id" yaml:"id" msgpack:"id"`
	Name        string `json:"name" yaml:"name" msgpack:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" msgpack:"description,omitempty"`
	Layout      string `json:"layout,omitempty" yaml:"layout,omitempty" msgpack:"layout,omitempty"`
	Seq         uint64 `json:"seq" yaml:"seq" msgpack:"seq"`
	Ordinal     int    `json:"ordinal" yaml:"ordinal" msgpack:"ordinal"`
	Expression  string `json:"expression,omitempty" yaml:"expression,omitempty" msgpack:"expression,omitempty"`
}

// Link is the record of a link. Predecessor and Successor hold node ids.
type Link struct {
	ID          string `json:"id" yaml:"id" msgpack:"id"`
	Name        string `json:"name" yaml:"name" msgpack:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" msgpack:"description,omitempty"`
	Seq         uint64 `json:"seq" yaml:"seq" msgpack:"seq"`
	Predecessor string `json:"predecessor" yaml:"predecessor" msgpack:"predecessor"`
	Successor   string `json:"successor" yaml:"successor" msgpack:"successor"`
	Priority    int    `json:"priority,omitempty" yaml:"priority,omitempty" msgpack:"priority,omitempty"`
}

// NodeCount returns the number of steps and transitions, nested charts excluded.
func (c *Chart) NodeCount() int {
	return len(c.Steps) + len(c.Transitions)
}

// Clone returns a deep copy of the record set.
func (c *Chart) Clone() *Chart {
	cp := *c
	cp.Steps = slices.Clone(c.Steps)
	cp.Transitions = slices.Clone(c.Transitions)
	cp.Links = slices.Clone(c.Links)
	cp.Macros = maps.Clone(c.Macros)
	for i := range cp.Steps {
		if c.Steps[i].Actions == nil {
			continue
		}
		cp.Steps[i].Actions = make([]Action, len(c.Steps[i].Actions))
		for j, a := range c.Steps[i].Actions {
			cp.Steps[i].Actions[j] = Action{Name: a.Name, Chart: *a.Chart.Clone()}
		}
	}
	return &cp
}
