package bridge

import "sort"

// ConfigType is the directionality class a route was compiled from.
type ConfigType string

const (
	TypeOneWay ConfigType = "one_way"
	TypeTwoWay ConfigType = "two_way"
	TypeReply  ConfigType = "reply"
)

// Route is a resolved destination. The set of implementations is closed:
// OneWayRoute, TwoWayRoute and ReplyRoute.
type Route interface {
	Kind() ConfigType
	Target() DestinationOptions
	route()
}

// OneWayRoute is compiled from a OneWay rule.
type OneWayRoute struct {
	Destination DestinationOptions
}

func (OneWayRoute) Kind() ConfigType             { return TypeOneWay }
func (r OneWayRoute) Target() DestinationOptions { return r.Destination }
func (OneWayRoute) route()                       {}

// TwoWayRoute is compiled from a TwoWay rule, in either direction.
type TwoWayRoute struct {
	Destination DestinationOptions
}

func (TwoWayRoute) Kind() ConfigType             { return TypeTwoWay }
func (r TwoWayRoute) Target() DestinationOptions { return r.Destination }
func (TwoWayRoute) route()                       {}

// ReplyRoute is compiled from a Reply rule, in either direction.
type ReplyRoute struct {
	Destination DestinationOptions
	Mode        ReplyMode
}

func (ReplyRoute) Kind() ConfigType             { return TypeReply }
func (r ReplyRoute) Target() DestinationOptions { return r.Destination }
func (ReplyRoute) route()                       {}

// Entry is one row of a Table.
type Entry struct {
	Key   RoutingKey
	Route Route
}

// Table maps routing keys to routes. It is never modified after Compile.
type Table struct {
	routes    map[RoutingKey]Route
	overrides []RoutingKey
}

// Compile builds the destination table for cfg. Sections are applied in the
// order OneWay, TwoWay, Reply; a later rule replaces an earlier one with the
// same routing key.
func Compile(cfg *Config) *Table {
	t := &Table{routes: make(map[RoutingKey]Route, 2*cfg.RuleCount())}

	for _, r := range cfg.OneWay {
		t.put(r.Source.Key(), OneWayRoute{Destination: r.Destination})
	}
	for _, r := range cfg.TwoWay {
		t.put(r.Source.Key(), TwoWayRoute{Destination: r.Destination})
		t.put(r.Destination.Key(), TwoWayRoute{Destination: mirror(r.Source, r.Destination)})
	}
	for _, r := range cfg.Reply {
		t.put(r.Source.Key(), ReplyRoute{Destination: r.Destination, Mode: r.Mode})
		t.put(r.Destination.Key(), ReplyRoute{Destination: mirror(r.Source, r.Destination), Mode: r.Mode})
	}
	return t
}

// mirror points back at the rule source. Flags and template are taken from
// the declared destination; directions cannot be templated separately.
func mirror(src Endpoint, dst DestinationOptions) DestinationOptions {
	return DestinationOptions{
		Side:            src.Side,
		Identifier:      src.Identifier,
		AllowImages:     dst.AllowImages,
		AllowLinks:      dst.AllowLinks,
		AllowThreads:    dst.AllowThreads,
		MessageTemplate: dst.MessageTemplate,
	}
}

func (t *Table) put(key RoutingKey, r Route) {
	if _, ok := t.routes[key]; ok {
		t.overrides = append(t.overrides, key)
	}
	t.routes[key] = r
}

// Lookup returns the route registered for key.
func (t *Table) Lookup(key RoutingKey) (Route, bool) {
	r, ok := t.routes[key]
	return r, ok
}

// Len returns the number of routing keys.
func (t *Table) Len() int { return len(t.routes) }

// Keys returns all routing keys in sorted order.
func (t *Table) Keys() []RoutingKey {
	keys := make([]RoutingKey, 0, len(t.routes))
	for k := range t.routes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Entries returns a sorted copy of the table.
func (t *Table) Entries() []Entry {
	keys := t.Keys()
	entries := make([]Entry, len(keys))
	for i, k := range keys {
		entries[i] = Entry{Key: k, Route: t.routes[k]}
	}
	return entries
}

// Overrides lists, in compile order, every key that an earlier rule had
// already claimed.
func (t *Table) Overrides() []RoutingKey {
	return append([]RoutingKey(nil), t.overrides...)
}
