// Package overlay keeps the visible overlay in sync with the modal and id
// query parameters, preserves the page scroll position across an overlay's
// lifetime, and guards overlay content fetches with generation tags.
package overlay

import "net/url"

// Query parameters that mirror the overlay state.
const (
	ParamModal = "modal"
	ParamID    = "id"
)

// Kind identifies an overlay variant. The set is closed.
type Kind string

const (
	None          Kind = ""
	ProductDetail Kind = "product"
	CartSummary   Kind = "cart"
)

// ParseKind maps a modal tag to a Kind. Unknown tags report false.
func ParseKind(tag string) (Kind, bool) {
	switch k := Kind(tag); k {
	case None, ProductDetail, CartSummary:
		return k, true
	default:
		return None, false
	}
}

// RequiresTarget reports whether the kind needs a target id.
func (k Kind) RequiresTarget() bool {
	return k == ProductDetail
}

func (k Kind) String() string {
	if k == None {
		return "none"
	}
	return string(k)
}

// State is a snapshot of the overlay. TargetID is empty unless Kind requires
// one. Generation increases on every transition.
type State struct {
	Kind       Kind   `json:"kind"`
	TargetID   string `json:"targetId,omitempty"`
	Generation uint64 `json:"generation"`
}

// IsOpen reports whether an overlay is visible.
func (s State) IsOpen() bool {
	return s.Kind != None
}

// Missing reports an open overlay whose required target id is absent.
// Consumers render it as an error.
func (s State) Missing() bool {
	return s.Kind.RequiresTarget() && s.TargetID == ""
}

// Same compares kind and target, ignoring the generation.
func (s State) Same(o State) bool {
	return s.Kind == o.Kind && s.TargetID == o.TargetID
}

// Derive reads the overlay state from query parameters. Unknown kinds fail
// closed to None, and id is only honoured for kinds that need a target.
func Derive(q url.Values) State {
	kind, ok := ParseKind(q.Get(ParamModal))
	if !ok || kind == None {
		return State{}
	}
	s := State{Kind: kind}
	if kind.RequiresTarget() {
		s.TargetID = q.Get(ParamID)
	}
	return s
}

// Encode returns a copy of q with the overlay parameters set for s. Every
// other parameter is preserved.
func Encode(s State, q url.Values) url.Values {
	out := make(url.Values, len(q)+2)
	for k, v := range q {
		out[k] = append([]string(nil), v...)
	}
	out.Del(ParamModal)
	out.Del(ParamID)

	if !s.IsOpen() {
		return out
	}
	out.Set(ParamModal, string(s.Kind))
	if s.Kind.RequiresTarget() && s.TargetID != "" {
		out.Set(ParamID, s.TargetID)
	}
	return out
}

// WithState returns a copy of u whose query encodes s. When no parameters
// remain the query is dropped entirely, leaving the bare path.
func WithState(u *url.URL, s State) *url.URL {
	next := *u
	next.RawQuery = Encode(s, u.Query()).Encode()
	next.ForceQuery = false
	return &next
}
