// Package metadata handles the gRPC request headers of the game service.
//
//   - RequestIDHeader correlates a call across logs and responses. The server
//     generates one when the caller sends none.
//   - LocaleHeader selects the language of user-facing error messages.
package metadata
