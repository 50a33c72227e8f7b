// Package auth implements a token-based session lifecycle: credential
// verification against a user store, JWT issuance and validation, and the
// HTTP surface that exposes sign-up, sign-in, sign-out, and identity lookup
// as a JSON API.
//
// Token lifecycle:
//   - Tokens are HS256-signed JWTs carrying the subject id, email, and
//     display name, minted with a fixed TTL. Verification is stateless and
//     side-effect free; expiry is the only invalidation mechanism. There is
//     no server-side revocation list: sign-out clears client state and a
//     captured token remains valid until its encoded expiry. Deployments
//     needing hard revocation must layer a denylist on top.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by Auther to describe
//     login and registration events. Sinks run best-effort (errors are
//     logged) so you can forward to a database or queue without blocking
//     authentication.
//
// Claims decoration:
//   - ClaimsDecorator is invoked before JWTs are signed. Decorators may only
//     enrich the Metadata extension field; registered/identity claims remain
//     immutable so core auth semantics stay stable.
//
// The client package provides the consumer half of the lifecycle: a durable
// session store and an orchestrator that persists the token/user pair,
// attaches it to outbound requests, and restores it across restarts.
package auth
