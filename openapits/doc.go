// Package openapits turns a Directus OpenAPI document into TypeScript type
// declarations.
//
// LoadSpec parses the document and remembers the order of its schema
// registry. GenerateBase renders the paths, components and operations
// interfaces. AssembleCollections appends the AppCollections,
// DirectusCollections and Collections types that map collection names to
// their schemas, and Document joins everything in the order the types refer
// to each other.
package openapits
