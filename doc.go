// Package docbind maps typed values to and from structured documents through
// a format-neutral token protocol.
//
// A format backend implements Writer (sink) and Reader (source). Values are
// described by Type descriptors, and a Registry resolves each descriptor to a
// TypeAdapter by walking an ordered chain of factories:
//
//   - fragment wrappers (*yaml.Node, go-json RawMessage, structpb values)
//   - lists, sets, queues and collections
//   - maps whose key type supports key encoding
//   - scalars (string, int, long, float, double, bool)
//   - enums declared with Enum
//   - structured objects declared with NewObject
//   - types declaring their own adapter (SerializedBy)
//
// Resolved adapters are cached per descriptor. Custom adapters and factories
// are registered ahead of the built-ins, before the first resolution.
//
// Design policy:
//   - Keep the engine in the root package; format backends live under format/,
//     the file-oriented façade under config/ and the CLI under cmd/docbind.
//   - No reflection-based discovery: object fields are declared explicitly
//     with typed getter and setter closures.
//
// Typical usage:
//
//	type Server struct {
//		Host string
//		Port int
//	}
//
//	srv := docbind.NewObject[Server]("Server").Field(
//		docbind.Prop("host", docbind.String,
//			func(s *Server) string { return s.Host },
//			func(s *Server, v string) { s.Host = v }),
//		docbind.Prop("port", docbind.Int,
//			func(s *Server) int { return s.Port },
//			func(s *Server, v int) { s.Port = v }).Describe("listen port"),
//	).Type()
//
//	h := docbind.NewHandler(nil)
//	toks, err := h.Encode(srv, &Server{Host: "localhost", Port: 8080})
//	s, err := docbind.DecodeAs[*Server](h, srv, toks)
package docbind
