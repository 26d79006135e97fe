// Package output serializes dependency graphs into interchange formats and
// writes them to their destination.
//
// The package is organized around three concerns:
//
//   - Serializers (gml.go, graphml.go, dot.go, json.go): deterministic
//     renderings of a graph — nodes and edges emitted in sorted order so the
//     same graph always produces identical bytes.
//
//   - Registry (registry.go): pluggable format lookup by name.
//
//   - Writers (writer.go): output destinations via the [Writer] interface,
//     with [StdoutWriter] and [FileWriter] implementations.
package output
