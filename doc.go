// Package auth implements the account activation and session token lifecycle:
// registration with out-of-band activation codes, activation, login/logout
// with access and refresh tokens, and server-side session snapshots.
//
// Token lifecycle:
//   - TokenCodec signs three token kinds with independent secrets and TTLs:
//     a short-lived activation token carrying the pending registration plus a
//     4-digit verification code, a short-lived access token, and a longer
//     lived refresh token. A token signed for one kind never verifies as
//     another.
//   - Registration is stateless between register and activate. The signed
//     activation token is the sole carrier of pending state; nothing touches
//     the store until the code is redeemed.
//
// Account lifecycle:
//   - Users carry a UserStatus field that is persisted via Bun. Statuses cover
//     pending, active, suspended, disabled, and archived flows.
//   - AccountStateMachine centralizes the transition graph. Activation is the
//     only path that creates a durable user; suspended and disabled accounts
//     cannot authenticate.
//
// Sessions:
//   - Login writes a JSON session snapshot into the SessionCache keyed by
//     user id, last-write-wins. Logout clears client cookies only; issued
//     tokens stay valid until their own TTL elapses.
package auth
