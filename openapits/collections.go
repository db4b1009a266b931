package openapits

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// CollectionExtension is the schema extension naming the backing collection.
const CollectionExtension = "x-collection"

// AppCollectionPrefix marks the schemas of user-created collections.
const AppCollectionPrefix = "Items"

// ErrMissingCollection is returned under MissingError for a schema without x-collection.
var ErrMissingCollection = errors.New("schema has no " + CollectionExtension + " extension")

// CollectionKind partitions collections into user-defined and system ones.
type CollectionKind int

const (
	CollectionSystem CollectionKind = iota
	CollectionApp
)

func (k CollectionKind) String() string {
	if k == CollectionApp {
		return "app"
	}
	return "system"
}

// Classify reports whether schemaKey belongs to a user-defined collection.
func Classify(schemaKey string) CollectionKind {
	if strings.HasPrefix(schemaKey, AppCollectionPrefix) {
		return CollectionApp
	}
	return CollectionSystem
}

// MissingPolicy decides what happens to a schema entry without x-collection.
type MissingPolicy string

const (
	// MissingUndefined emits the entry with the literal key "undefined".
	MissingUndefined MissingPolicy = "undefined"
	MissingSkip      MissingPolicy = "skip"
	MissingError     MissingPolicy = "error"
)

// ParseMissingPolicy accepts "undefined", "skip" or "error"; empty means undefined.
func ParseMissingPolicy(s string) (MissingPolicy, error) {
	switch MissingPolicy(strings.ToLower(s)) {
	case "", MissingUndefined:
		return MissingUndefined, nil
	case MissingSkip:
		return MissingSkip, nil
	case MissingError:
		return MissingError, nil
	}
	return "", fmt.Errorf("unknown missing collection policy %q (want undefined, skip or error)", s)
}

// SchemaEntry is one entry of the schema registry seen as a collection.
type SchemaEntry struct {
	Key string
	// Collection is the raw x-collection value; only meaningful when HasCollection.
	Collection    any
	HasCollection bool
}

// CollectionID renders the collection identifier the way JavaScript template
// interpolation would, including "undefined" for an absent extension.
func (e SchemaEntry) CollectionID() string {
	if !e.HasCollection {
		return "undefined"
	}
	switch v := e.Collection.(type) {
	case string:
		return v
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// SchemaEntries lists the schema registry in document order.
func SchemaEntries(spec *Spec) []SchemaEntry {
	schemas := spec.Doc.Components.Schemas
	entries := make([]SchemaEntry, 0, len(spec.SchemaOrder))
	for _, key := range spec.SchemaOrder {
		entry := SchemaEntry{Key: key}
		if ref := schemas[key]; ref != nil && ref.Value != nil {
			entry.Collection, entry.HasCollection = ref.Value.Extensions[CollectionExtension]
		}
		entries = append(entries, entry)
	}
	return entries
}

// TypeNames are the names of the three generated collection types.
type TypeNames struct {
	App      string
	Directus string
	All      string
}

// DefaultTypeNames returns AppCollections, DirectusCollections and Collections.
func DefaultTypeNames() TypeNames {
	return TypeNames{
		App:      "AppCollections",
		Directus: "DirectusCollections",
		All:      "Collections",
	}
}

// withDefaults fills empty names from DefaultTypeNames.
func (n TypeNames) withDefaults() TypeNames {
	def := DefaultTypeNames()
	if n.App == "" {
		n.App = def.App
	}
	if n.Directus == "" {
		n.Directus = def.Directus
	}
	if n.All == "" {
		n.All = def.All
	}
	return n
}

// Declarations are the generated collection type declarations.
type Declarations struct {
	App      string
	Directus string
	All      string
}

// Blocks returns the declarations in emission order.
func (d Declarations) Blocks() []string {
	return []string{d.App, d.Directus, d.All}
}

// CollectionLine renders the property line mapping a collection to its schema.
func CollectionLine(collectionID, schemaKey string) string {
	return fmt.Sprintf(`  %s: components["schemas"]["%s"];`, collectionID, schemaKey)
}

// AssembleCollections partitions entries into app and system collections and
// renders the three collection types.
func AssembleCollections(entries []SchemaEntry, names TypeNames, policy MissingPolicy) (Declarations, error) {
	names = names.withDefaults()

	var appLines, systemLines []string
	for _, entry := range entries {
		if !entry.HasCollection {
			switch policy {
			case MissingSkip:
				continue
			case MissingError:
				return Declarations{}, fmt.Errorf("%w: %s", ErrMissingCollection, entry.Key)
			}
		}

		line := CollectionLine(entry.CollectionID(), entry.Key)
		if Classify(entry.Key) == CollectionApp {
			appLines = append(appLines, line)
		} else {
			systemLines = append(systemLines, line)
		}
	}

	return Declarations{
		App:      objectType(names.App, appLines),
		Directus: objectType(names.Directus, systemLines),
		All:      fmt.Sprintf("export type %s = %s & %s;\n", names.All, names.Directus, names.App),
	}, nil
}

func objectType(name string, lines []string) string {
	return fmt.Sprintf("export type %s = {\n%s\n};\n", name, strings.Join(lines, "\n"))
}
