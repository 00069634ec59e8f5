package domain

import (
	"encoding/json"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Message is a single validation message with an optional numeric code.
type Message struct {
	Code int    `json:"code,omitempty"`
	Text string `json:"message"`
}

func (m Message) String() string { return m.Text }

// PathMessages pairs a dotted property path with the messages found there.
type PathMessages struct {
	Path     string    `json:"path"`
	Messages []Message `json:"messages"`
}

// Result is a validation result tree. Each node carries its own messages and
// child results addressable by property name, in insertion order.
type Result struct {
	errors     []Message
	warnings   []Message
	notices    []Message
	properties *orderedmap.OrderedMap[string, *Result]
}

// NewResult creates an empty result node.
func NewResult() *Result {
	return &Result{properties: orderedmap.New[string, *Result]()}
}

func (r *Result) AddError(m Message)   { r.errors = append(r.errors, m) }
func (r *Result) AddWarning(m Message) { r.warnings = append(r.warnings, m) }
func (r *Result) AddNotice(m Message)  { r.notices = append(r.notices, m) }

// Errors returns the errors attached to this node only.
func (r *Result) Errors() []Message   { return r.errors }
func (r *Result) Warnings() []Message { return r.warnings }
func (r *Result) Notices() []Message  { return r.notices }

// ForProperty narrows the tree to a dotted property path. An empty path
// returns the receiver untouched. A path that does not exist yields an empty,
// detached node; the tree itself is never modified.
func (r *Result) ForProperty(path string) *Result {
	if path == "" {
		return r
	}
	node := r
	for _, name := range strings.Split(path, ".") {
		child, ok := node.child(name)
		if !ok {
			return NewResult()
		}
		node = child
	}
	return node
}

// ForPropertyCreate narrows the tree like ForProperty but creates missing
// nodes along the way. Used when building results.
func (r *Result) ForPropertyCreate(path string) *Result {
	if path == "" {
		return r
	}
	node := r
	for _, name := range strings.Split(path, ".") {
		child, ok := node.child(name)
		if !ok {
			child = NewResult()
			if node.properties == nil {
				node.properties = orderedmap.New[string, *Result]()
			}
			node.properties.Set(name, child)
		}
		node = child
	}
	return node
}

func (r *Result) child(name string) (*Result, bool) {
	if r.properties == nil {
		return nil, false
	}
	return r.properties.Get(name)
}

func (r *Result) oldest() *orderedmap.Pair[string, *Result] {
	if r.properties == nil {
		return nil
	}
	return r.properties.Oldest()
}

// HasErrors reports whether this node or any descendant holds an error.
func (r *Result) HasErrors() bool {
	return r.hasMessages(func(n *Result) []Message { return n.errors })
}

func (r *Result) HasWarnings() bool {
	return r.hasMessages(func(n *Result) []Message { return n.warnings })
}

func (r *Result) HasNotices() bool {
	return r.hasMessages(func(n *Result) []Message { return n.notices })
}

func (r *Result) hasMessages(pick func(*Result) []Message) bool {
	if len(pick(r)) > 0 {
		return true
	}
	for pair := r.oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.hasMessages(pick) {
			return true
		}
	}
	return false
}

// FlattenedErrors lists every node holding errors with its full dotted path,
// depth first in insertion order. The root node uses the empty path.
func (r *Result) FlattenedErrors() []PathMessages {
	var out []PathMessages
	r.flatten("", &out)
	return out
}

func (r *Result) flatten(prefix string, out *[]PathMessages) {
	if len(r.errors) > 0 {
		*out = append(*out, PathMessages{Path: prefix, Messages: r.errors})
	}
	for pair := r.oldest(); pair != nil; pair = pair.Next() {
		path := pair.Key
		if prefix != "" {
			path = prefix + "." + pair.Key
		}
		pair.Value.flatten(path, out)
	}
}

// Merge copies all messages and children of other into r.
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}
	r.errors = append(r.errors, other.errors...)
	r.warnings = append(r.warnings, other.warnings...)
	r.notices = append(r.notices, other.notices...)
	for pair := other.oldest(); pair != nil; pair = pair.Next() {
		r.ForPropertyCreate(pair.Key).Merge(pair.Value)
	}
}

type resultJSON struct {
	Errors     []Message                                   `json:"errors,omitempty"`
	Warnings   []Message                                   `json:"warnings,omitempty"`
	Notices    []Message                                   `json:"notices,omitempty"`
	Properties *orderedmap.OrderedMap[string, *resultJSON] `json:"properties,omitempty"`
}

func (r *Result) toJSON() *resultJSON {
	out := &resultJSON{Errors: r.errors, Warnings: r.warnings, Notices: r.notices}
	if r.properties != nil && r.properties.Len() > 0 {
		out.Properties = orderedmap.New[string, *resultJSON]()
		for pair := r.oldest(); pair != nil; pair = pair.Next() {
			out.Properties.Set(pair.Key, pair.Value.toJSON())
		}
	}
	return out
}

func (j *resultJSON) toResult() *Result {
	r := NewResult()
	r.errors = j.Errors
	r.warnings = j.Warnings
	r.notices = j.Notices
	if j.Properties != nil {
		for pair := j.Properties.Oldest(); pair != nil; pair = pair.Next() {
			if pair.Value == nil {
				r.properties.Set(pair.Key, NewResult())
				continue
			}
			r.properties.Set(pair.Key, pair.Value.toResult())
		}
	}
	return r
}

func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.toJSON())
}

func (r *Result) UnmarshalJSON(data []byte) error {
	var j resultJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*r = *j.toResult()
	return nil
}
