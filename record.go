package sqldatabase

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/Sterbis/sqldatabase/schema"
)

// Record is an insertion-ordered mapping from schema items to native values.
// It is the unit of data exchange with the database: inserts and updates
// consume records, selects produce them. Keys are the items' canonical
// aliases, so the same column object always lands on the same entry.
type Record struct {
	aliases []string
	items   map[string]schema.Item
	values  map[string]any
	err     error
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{
		items:  make(map[string]schema.Item),
		values: make(map[string]any),
	}
}

// Set binds value to item and returns the record for chaining. Setting an
// already present item overwrites its value and keeps its position. Errors
// are deferred to Err so literals can be built in one expression.
func (r *Record) Set(item schema.Item, value any) *Record {
	if r.err != nil {
		return r
	}
	if item == nil {
		r.err = fmt.Errorf("sqldatabase: record key must not be nil")
		return r
	}
	alias, err := item.Alias()
	if err != nil {
		r.err = err
		return r
	}
	if _, ok := r.values[alias]; !ok {
		r.aliases = append(r.aliases, alias)
		r.items[alias] = item
	}
	r.values[alias] = value
	return r
}

// Err returns the first error deferred by Set.
func (r *Record) Err() error { return r.err }

// Len returns the number of entries.
func (r *Record) Len() int { return len(r.aliases) }

// Items returns the record's items in insertion order.
func (r *Record) Items() []schema.Item {
	items := make([]schema.Item, len(r.aliases))
	for i, alias := range r.aliases {
		items[i] = r.items[alias]
	}
	return items
}

// Values returns the record's values in insertion order.
func (r *Record) Values() []any {
	values := make([]any, len(r.aliases))
	for i, alias := range r.aliases {
		values[i] = r.values[alias]
	}
	return values
}

// Value returns the value bound to item and whether the item is present.
func (r *Record) Value(item schema.Item) (any, bool) {
	if item == nil {
		return nil, false
	}
	alias, err := item.Alias()
	if err != nil {
		return nil, false
	}
	value, ok := r.values[alias]
	return value, ok
}

// At returns the entry at position i in insertion order.
func (r *Record) At(i int) (schema.Item, any, bool) {
	if i < 0 || i >= len(r.aliases) {
		return nil, nil, false
	}
	alias := r.aliases[i]
	return r.items[alias], r.values[alias], true
}

// Equal reports whether both records hold the same items with equal values.
// Insertion order does not participate in the comparison. Times compare with
// time.Time.Equal, byte slices with bytes.Equal and everything else with
// reflect.DeepEqual.
func (r *Record) Equal(other *Record) bool {
	if other == nil || len(r.aliases) != len(other.aliases) {
		return false
	}
	for _, alias := range r.aliases {
		value, ok := other.values[alias]
		if !ok || !valueEqual(r.values[alias], value) {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	switch av := a.(type) {
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	case []byte:
		bv, ok := b.([]byte)
		return ok && bytes.Equal(av, bv)
	default:
		return reflect.DeepEqual(a, b)
	}
}

// FromRow builds a record from one result row: values[i] is the raw database
// value for items[i] and runs through the item's from-raw pipeline.
func FromRow(items []schema.Item, values []any) (*Record, error) {
	if len(items) != len(values) {
		return nil, fmt.Errorf("sqldatabase: row holds %d values for %d items", len(values), len(items))
	}
	record := NewRecord()
	for i, item := range items {
		value, err := schema.FromRawValue(item, normalizeRaw(item, values[i]))
		if err != nil {
			return nil, err
		}
		record.Set(item, value)
	}
	return record, record.Err()
}

// normalizeRaw folds driver- and codec-specific representations onto the
// canonical raw forms the converters accept: integer widths widen to int64,
// float32 to float64 and []byte narrows to string for non-byte kinds.
func normalizeRaw(item schema.Item, value any) any {
	switch v := value.(type) {
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case uint:
		return int64(v)
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		return int64(v)
	case float32:
		return float64(v)
	case []byte:
		if dt := item.DataType(); dt == nil || dt.Kind() != schema.KindBytes {
			return string(v)
		}
	}
	return value
}

// MarshalJSON implements json.Marshaler. The object preserves insertion
// order, keys are canonical aliases and values are the JSON forms of the
// native values: bytes as base64, temporal values as ISO-8601 text.
func (r *Record) MarshalJSON() ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, alias := range r.aliases {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(alias)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := toJSONValue(r.items[alias], r.values[alias])
		if err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		buf.Write(encoded)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// toJSONValue converts a native value to its JSON form: the item-level
// to-raw converter applies first, then bytes and temporal values take their
// text encodings. Type-level converters do not apply; JSON keeps the native
// shape, not the storage shape.
func toJSONValue(item schema.Item, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	if conv := item.ToRawConverter(); conv != nil {
		converted, err := conv(value)
		if err != nil {
			return nil, err
		}
		if converted == nil {
			return nil, nil
		}
		value = converted
	}
	dt := item.DataType()
	if dt == nil {
		return value, nil
	}
	switch kind := dt.Kind(); {
	case kind == schema.KindBytes:
		b, ok := value.([]byte)
		if !ok {
			return nil, fmt.Errorf("sqldatabase: cannot encode %T as %s", value, kind)
		}
		return base64.StdEncoding.EncodeToString(b), nil
	case kind.Temporal():
		switch v := value.(type) {
		case time.Time:
			return kind.FormatTime(v), nil
		case string:
			return v, nil
		default:
			return nil, fmt.Errorf("sqldatabase: cannot encode %T as %s", value, kind)
		}
	default:
		return value, nil
	}
}

// RecordFromJSON decodes a JSON object into a record. Keys must be canonical
// aliases known to the database; values decode by the item's declared kind
// and then run through the item-level from-raw converter. Entry order in the
// JSON text becomes the record's insertion order.
func (db *Database) RecordFromJSON(data []byte) (*Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("sqldatabase: decode record: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("sqldatabase: record JSON must be an object, got %v", tok)
	}
	record := NewRecord()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("sqldatabase: decode record: %w", err)
		}
		alias, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("sqldatabase: decode record: object key is %T", tok)
		}
		item, err := db.ItemByAlias(alias)
		if err != nil {
			return nil, err
		}
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("sqldatabase: decode record value %q: %w", alias, err)
		}
		value, err := fromJSONValue(item, raw)
		if err != nil {
			return nil, err
		}
		record.Set(item, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("sqldatabase: decode record: %w", err)
	}
	return record, record.Err()
}

// TableRecordFromJSON decodes a JSON object into a record destined for
// table: every key must name a column of the table and every mandatory
// column of the table must be present. Mandatory means NOT NULL without a
// default and not autoincremented.
func (db *Database) TableRecordFromJSON(table *schema.Table, data []byte) (*Record, error) {
	record, err := db.RecordFromJSON(data)
	if err != nil {
		return nil, err
	}
	for _, item := range record.Items() {
		column, ok := item.(*schema.Column)
		if !ok {
			alias, _ := item.Alias()
			return nil, fmt.Errorf("sqldatabase: record item %q is not a column of table %s", alias, table.Name())
		}
		if column.Table() != table {
			return nil, fmt.Errorf("sqldatabase: column %q does not belong to table %s", column.Name(), table.Name())
		}
	}
	for _, column := range table.Columns() {
		if column.IsAutoincrement() || !column.IsNotNull() {
			continue
		}
		if _, ok := column.DefaultValue(); ok {
			continue
		}
		if _, ok := record.Value(column); !ok {
			return nil, fmt.Errorf("sqldatabase: record is missing mandatory column %q of table %s", column.Name(), table.Name())
		}
	}
	return record, nil
}

// fromJSONValue reverses toJSONValue: decode by the declared kind, then
// apply the item-level from-raw converter.
func fromJSONValue(item schema.Item, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	decoded, err := decodeJSONKind(item, value)
	if err != nil {
		return nil, err
	}
	if decoded == nil {
		return nil, nil
	}
	if conv := item.FromRawConverter(); conv != nil {
		return conv(decoded)
	}
	return decoded, nil
}

func decodeJSONKind(item schema.Item, value any) (any, error) {
	dt := item.DataType()
	if dt == nil {
		// COUNT(*) carries no type; keep integers integral.
		if n, ok := value.(json.Number); ok {
			if i, err := n.Int64(); err == nil {
				return i, nil
			}
			return n.Float64()
		}
		return value, nil
	}
	kind := dt.Kind()
	switch {
	case kind == schema.KindBool:
		v, ok := value.(bool)
		if !ok {
			return nil, decodeKindError(item, kind, value)
		}
		return v, nil
	case kind == schema.KindInt:
		n, ok := value.(json.Number)
		if !ok {
			return nil, decodeKindError(item, kind, value)
		}
		i, err := n.Int64()
		if err != nil {
			return nil, fmt.Errorf("sqldatabase: decode %s value %q: %w", kind, n.String(), err)
		}
		return i, nil
	case kind == schema.KindFloat:
		n, ok := value.(json.Number)
		if !ok {
			return nil, decodeKindError(item, kind, value)
		}
		f, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("sqldatabase: decode %s value %q: %w", kind, n.String(), err)
		}
		return f, nil
	case kind == schema.KindString:
		v, ok := value.(string)
		if !ok {
			return nil, decodeKindError(item, kind, value)
		}
		return v, nil
	case kind == schema.KindBytes:
		s, ok := value.(string)
		if !ok {
			return nil, decodeKindError(item, kind, value)
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("sqldatabase: decode %s value: %w", kind, err)
		}
		return b, nil
	case kind.Temporal():
		s, ok := value.(string)
		if !ok {
			return nil, decodeKindError(item, kind, value)
		}
		return kind.ParseTime(s)
	default:
		return value, nil
	}
}

func decodeKindError(item schema.Item, kind schema.Kind, value any) error {
	alias, _ := item.Alias()
	return fmt.Errorf("sqldatabase: cannot decode %T as %s for %q", value, kind, alias)
}
