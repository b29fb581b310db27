// Package guard decides whether the current session may enter a destination.
//
// [Decide] is pure and total: every (session, requirement) pair maps to exactly
// one [Outcome]. Checks run in a fixed order:
//
//  1. bootstrap not finished → [Pending]
//  2. not authenticated → [DenyUnauthenticated], redirect to login
//  3. requirement open to any authenticated user → [Allow]
//  4. role in the required set → [Allow]
//  5. otherwise → [DenyForbidden], redirect to home
//
// A forbidden user is sent home, never to login: they are already signed in.
//
// Decisions are advisory. The server that issued the token remains the
// authority for every data request.
package guard
