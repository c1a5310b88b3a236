// Package flow drives the client side of authentication.
//
// Machine sequences login, registration, the second factor challenge and
// logout. TwoFactorSettings and PasswordChange handle the pages available to an
// authenticated user. Front ends call intent methods (Submit, Navigate, Logout,
// ...) and render the snapshots the controllers return; they never talk to the
// service directly.
//
// Every controller guards its state with a mutex that is released while a
// request is in flight. A second submit of the same form during that window is
// refused with ErrSubmitInFlight, and completions that arrive after a cancel or
// logout are dropped with ErrSuperseded.
package flow
