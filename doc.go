// Package authkit implements the client side authentication state for the
// AccessManagerPro web client: a reducer-driven auth store, the operations
// that mutate it, and the synchronizer that reconciles hosted session truth
// into it.
//
// State container:
//   - Store holds AuthState (user, authenticated, loading, error) behind a
//     mutex; every change goes through one of the named actions in state.go
//     and updates all four fields together, so observers never see a torn
//     combination. Construct one store per client session and inject it;
//     there is no package level singleton.
//   - Container exposes Login, Register, Logout and UpdateUser. Login and
//     Register re-raise failures after recording them in the store, so the
//     presentation layer can pick its own display strategy. Login resolving
//     is not the same event as becoming authenticated; LoginAndWait composes
//     the two for callers who need a single awaitable.
//
// Session synchronization:
//   - Synchronizer subscribes to the identity client's session changes.
//     Session present: fetch the profile row, project it into a User and
//     dispatch the success transition. Session absent: dispatch logout. The
//     subscription returned by Bind must be released with the owning scope.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by the container and
//     the synchronizer. Sinks run best-effort (errors are logged) so you can
//     forward events to a database or queue without blocking authentication.
//
// The provider/hosted subpackage ships a self-contained identity provider and
// profile store backed by Bun for development and testing.
package authkit
