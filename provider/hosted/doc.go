// Package hosted implements the identity provider and profile store surfaces
// the authkit core consumes, backed by a local Bun database. It stands in for
// the hosted backend-as-a-service in development and tests: credential
// verification, sign-up, sign-out, JWT session tokens, session change
// notifications, and a profiles table whose reads are restricted to the
// caller's own row.
package hosted
